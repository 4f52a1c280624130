package affect

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// catalogSchema is the closed-shape contract for catalog override files.
// additionalProperties is false throughout so misspelled or unknown keys are
// rejected at load time instead of silently defaulting at point of use.
const catalogSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "defaultMood": {"type": "string", "minLength": 1},
    "defaultPersonality": {"type": "string", "minLength": 1},
    "moodChangeProbability": {"type": "number", "minimum": 0, "maximum": 1},
    "moods": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["emoji", "baseEnergy"],
        "properties": {
          "emoji": {"type": "string", "minLength": 1},
          "prefixes": {"type": "array", "items": {"type": "string"}},
          "suffixes": {"type": "array", "items": {"type": "string"}},
          "baseEnergy": {"type": "integer", "minimum": 0, "maximum": 5}
        }
      }
    },
    "personalities": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "temperature", "topP", "topK"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "emoji": {"type": "string"},
          "temperature": {"type": "number", "minimum": 0, "maximum": 2},
          "topP": {"type": "number", "minimum": 0, "maximum": 1},
          "topK": {"type": "integer", "minimum": 1},
          "styleGuide": {"type": "string"}
        }
      }
    }
  }
}`

type moodSpec struct {
	Emoji      string   `yaml:"emoji"`
	Prefixes   []string `yaml:"prefixes"`
	Suffixes   []string `yaml:"suffixes"`
	BaseEnergy int      `yaml:"baseEnergy"`
}

type personalitySpec struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Emoji       string  `yaml:"emoji"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"topP"`
	TopK        int     `yaml:"topK"`
	StyleGuide  string  `yaml:"styleGuide"`
}

type catalogFile struct {
	DefaultMood           string                     `yaml:"defaultMood"`
	DefaultPersonality    string                     `yaml:"defaultPersonality"`
	MoodChangeProbability *float64                   `yaml:"moodChangeProbability"`
	Moods                 map[string]moodSpec        `yaml:"moods"`
	Personalities         map[string]personalitySpec `yaml:"personalities"`
}

// LoadFile reads a YAML catalog override, validates it against the embedded
// schema, and returns the resulting catalog and registry. Sections left out
// of the file keep the built-in tables. An invalid file returns an error and
// no partial state.
func LoadFile(path string) (*Catalog, *Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog file: %w", err)
	}

	catalog, registry, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	slog.Info("affect catalog loaded",
		"path", path,
		"moods", len(catalog.moods),
		"personalities", len(registry.personalities),
	)
	return catalog, registry, nil
}

// Parse decodes and validates a raw YAML catalog payload. It is the
// canonical entry point for catalog overrides.
func Parse(data []byte) (*Catalog, *Registry, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	catalog := DefaultCatalog()
	registry := DefaultRegistry()

	if len(file.Moods) > 0 {
		moods := make(map[string]Mood, len(file.Moods))
		for name, s := range file.Moods {
			moods[name] = Mood{
				Emoji:      s.Emoji,
				Prefixes:   s.Prefixes,
				Suffixes:   s.Suffixes,
				BaseEnergy: s.BaseEnergy,
			}
		}
		catalog.moods = moods
	}
	if file.DefaultMood != "" {
		catalog.defaultMood = file.DefaultMood
	}
	if file.MoodChangeProbability != nil {
		catalog.changeProb = *file.MoodChangeProbability
	}
	if !catalog.Has(catalog.defaultMood) {
		return nil, nil, fmt.Errorf("default mood %q is not defined in the mood table", catalog.defaultMood)
	}

	if len(file.Personalities) > 0 {
		personalities := make(map[string]Personality, len(file.Personalities))
		for name, s := range file.Personalities {
			personalities[name] = Personality{
				Name:        s.Name,
				Description: s.Description,
				Emoji:       s.Emoji,
				Params:      GenerationParams{Temperature: s.Temperature, TopP: s.TopP, TopK: s.TopK},
				StyleGuide:  s.StyleGuide,
			}
		}
		registry.personalities = personalities
	}
	if file.DefaultPersonality != "" {
		registry.def = file.DefaultPersonality
	}
	if !registry.Has(registry.def) {
		return nil, nil, fmt.Errorf("default personality %q is not defined in the personality table", registry.def)
	}

	return catalog, registry, nil
}

// validateAgainstSchema checks the document shape before any typed decoding.
// The YAML tree is round-tripped through JSON so the validator sees the
// value kinds it expects.
func validateAgainstSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse catalog yaml: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize catalog document: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(jsonBytes, &normalized); err != nil {
		return fmt.Errorf("normalize catalog document: %w", err)
	}

	schema, err := jsonschema.CompileString("catalog.schema.json", catalogSchema)
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}
