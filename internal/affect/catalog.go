// Package affect holds the static affect tables (moods, personalities) and
// the energy tracker that derives a smoothed intensity scalar from
// conversational signals. Tables are closed, typed records validated at load
// time; unknown names fall back to the catalog defaults at lookup time.
package affect

import "sort"

// DefaultMood is the mood assigned to fresh conversations and the fallback
// for unknown mood names.
const DefaultMood = "thoughtful"

// DefaultMoodChangeProbability is the per-turn chance of a spontaneous mood
// transition.
const DefaultMoodChangeProbability = 0.2

// Mood describes one named affective state.
type Mood struct {
	Emoji      string
	Prefixes   []string
	Suffixes   []string
	BaseEnergy int // 0 (flat) .. 5 (maximal)
}

// Catalog is the closed set of moods. Immutable after construction; safe for
// concurrent use.
type Catalog struct {
	moods       map[string]Mood
	defaultMood string
	changeProb  float64
}

// DefaultCatalog returns the built-in mood table.
func DefaultCatalog() *Catalog {
	return &Catalog{
		defaultMood: DefaultMood,
		changeProb:  DefaultMoodChangeProbability,
		moods: map[string]Mood{
			"happy": {
				Emoji:      "😊",
				Prefixes:   []string{"Happily, ", "With joy, ", "Excitedly, "},
				Suffixes:   []string{" Feeling cheerful today!", " That was fun to answer!", " Hope that helps!"},
				BaseEnergy: 5,
			},
			"thoughtful": {
				Emoji:      "🤔",
				Prefixes:   []string{"Hmm, ", "Let me think... ", "Considering that, "},
				Suffixes:   []string{" Still pondering this one...", " Quite an interesting question!", " What do you think?"},
				BaseEnergy: 3,
			},
			"curious": {
				Emoji:      "🧐",
				Prefixes:   []string{"Interestingly, ", "Curiously, ", "I wonder... "},
				Suffixes:   []string{" That's fascinating!", " I'd like to learn more about that.", " What else can we explore here?"},
				BaseEnergy: 4,
			},
			"playful": {
				Emoji:      "😏",
				Prefixes:   []string{"Oh! ", "Fun fact: ", "Ready for this? "},
				Suffixes:   []string{" Bet you didn't expect that answer!", " That's a fun one!", " *winks*"},
				BaseEnergy: 5,
			},
			"professional": {
				Emoji:      "👨‍💼",
				Prefixes:   []string{"Professionally speaking, ", "According to best practices, ", "In my analysis, "},
				Suffixes:   []string{" Hope that clarifies things.", " Let me know if you need more specific information.", " Is there anything else you'd like to know?"},
				BaseEnergy: 2,
			},
			"calm": {
				Emoji:      "😌",
				Prefixes:   []string{"Calmly, ", "With measured thought, ", "Serenely, "},
				Suffixes:   []string{" Take your time to digest that.", " How does that resonate with you?", " I'm here whenever you're ready for more."},
				BaseEnergy: 1,
			},
			"excited": {
				Emoji:      "🤩",
				Prefixes:   []string{"WOW! ", "How exciting! ", "Oh my goodness! "},
				Suffixes:   []string{" Isn't that AMAZING?!", " This is so cool!", " I'm thrilled to share this with you!"},
				BaseEnergy: 5,
			},
		},
	}
}

// WithChangeProbability returns a copy of the catalog with the mood
// transition probability replaced. Values outside [0,1] are clamped.
func (c *Catalog) WithChangeProbability(p float64) *Catalog {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &Catalog{moods: c.moods, defaultMood: c.defaultMood, changeProb: p}
}

// Mood returns the definition for name, falling back to the default mood
// when name is unknown.
func (c *Catalog) Mood(name string) Mood {
	if m, ok := c.moods[name]; ok {
		return m
	}
	return c.moods[c.defaultMood]
}

// Has reports whether name is a known mood.
func (c *Catalog) Has(name string) bool {
	_, ok := c.moods[name]
	return ok
}

// Default returns the catalog's default mood name.
func (c *Catalog) Default() string {
	return c.defaultMood
}

// Names returns all mood names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.moods))
	for name := range c.moods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaybeChange rolls for a spontaneous mood transition. With the configured
// probability it returns a uniformly random mood name; otherwise it returns
// current unchanged. The caller owns writing the result back to the
// conversation.
func (c *Catalog) MaybeChange(current string, rng Rand) string {
	if rng.Float64() >= c.changeProb {
		return current
	}
	names := c.Names()
	return names[rng.Intn(len(names))]
}

// Decorate picks one random prefix and one random suffix for the given mood.
// Empty lists yield empty strings.
func (c *Catalog) Decorate(mood string, rng Rand) (prefix, suffix string) {
	m := c.Mood(mood)
	if len(m.Prefixes) > 0 {
		prefix = m.Prefixes[rng.Intn(len(m.Prefixes))]
	}
	if len(m.Suffixes) > 0 {
		suffix = m.Suffixes[rng.Intn(len(m.Suffixes))]
	}
	return prefix, suffix
}
