package affect

import "sort"

// DefaultPersonality is the preset used for fresh conversations and as the
// fallback for unknown personality names.
const DefaultPersonality = "balanced"

// GenerationParams are the sampling parameters a personality maps to.
type GenerationParams struct {
	Temperature float64
	TopP        float64
	TopK        int
}

// Personality is one named generation preset with display metadata.
type Personality struct {
	Name        string // display name
	Description string
	Emoji       string
	Params      GenerationParams
	StyleGuide  string // tone directive prepended to the system instructions
}

// Registry is the closed set of personalities. Immutable after construction;
// safe for concurrent use.
type Registry struct {
	personalities map[string]Personality
	def           string
}

// DefaultRegistry returns the built-in personality table.
func DefaultRegistry() *Registry {
	return &Registry{
		def: DefaultPersonality,
		personalities: map[string]Personality{
			"balanced": {
				Name:        "Balanced",
				Description: "A well-rounded assistant that balances helpfulness, creativity, and precision.",
				Emoji:       "⚖️",
				Params:      GenerationParams{Temperature: 0.7, TopP: 0.9, TopK: 40},
				StyleGuide:  "Balanced and adaptable, I provide comprehensive but concise answers.",
			},
			"creative": {
				Name:        "Creative",
				Description: "Emphasizes creative and imaginative responses with more varied output.",
				Emoji:       "🎨",
				Params:      GenerationParams{Temperature: 0.9, TopP: 0.95, TopK: 50},
				StyleGuide:  "I'm particularly creative and expressive, offering imaginative and detailed responses.",
			},
			"precise": {
				Name:        "Precise",
				Description: "Focuses on accuracy and conciseness with less creative variation.",
				Emoji:       "🎯",
				Params:      GenerationParams{Temperature: 0.3, TopP: 0.75, TopK: 20},
				StyleGuide:  "I'm precise and to-the-point, focusing on accuracy and brevity.",
			},
			"friendly": {
				Name:        "Friendly",
				Description: "Warm and conversational, with a focus on approachability.",
				Emoji:       "🤗",
				Params:      GenerationParams{Temperature: 0.8, TopP: 0.9, TopK: 45},
				StyleGuide:  "I'm warm, friendly, and conversational, like talking to a helpful friend.",
			},
			"technical": {
				Name:        "Technical",
				Description: "Specializes in detailed technical explanations with appropriate terminology.",
				Emoji:       "🔧",
				Params:      GenerationParams{Temperature: 0.5, TopP: 0.85, TopK: 30},
				StyleGuide:  "I focus on technical accuracy and detail, using appropriate terminology and structure.",
			},
		},
	}
}

// Get returns the personality for name, falling back to the default preset
// when name is unknown.
func (r *Registry) Get(name string) Personality {
	if p, ok := r.personalities[name]; ok {
		return p
	}
	return r.personalities[r.def]
}

// ParamsFor returns the generation parameters for name (default preset's
// parameters when unknown).
func (r *Registry) ParamsFor(name string) GenerationParams {
	return r.Get(name).Params
}

// Has reports whether name is a registered personality.
func (r *Registry) Has(name string) bool {
	_, ok := r.personalities[name]
	return ok
}

// Default returns the registry's default personality name.
func (r *Registry) Default() string {
	return r.def
}

// Names returns all personality names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.personalities))
	for name := range r.personalities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
