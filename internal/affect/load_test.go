package affect

import (
	"strings"
	"testing"
)

const validCatalogYAML = `
defaultMood: zen
moodChangeProbability: 0.5
moods:
  zen:
    emoji: "🧘"
    prefixes: ["Breathing deeply, "]
    suffixes: [" Namaste."]
    baseEnergy: 1
personalities:
  minimal:
    name: Minimal
    temperature: 0.2
    topP: 0.8
    topK: 10
defaultPersonality: minimal
`

func TestParseOverridesTables(t *testing.T) {
	catalog, registry, err := Parse([]byte(validCatalogYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if catalog.Default() != "zen" {
		t.Errorf("default mood = %q", catalog.Default())
	}
	if catalog.Has("happy") {
		t.Error("override should replace the built-in mood table")
	}
	if m := catalog.Mood("zen"); m.Emoji != "🧘" || m.BaseEnergy != 1 {
		t.Errorf("zen = %+v", m)
	}
	if catalog.changeProb != 0.5 {
		t.Errorf("change probability = %v", catalog.changeProb)
	}

	if registry.Default() != "minimal" {
		t.Errorf("default personality = %q", registry.Default())
	}
	if p := registry.ParamsFor("minimal"); p.Temperature != 0.2 || p.TopK != 10 {
		t.Errorf("minimal params = %+v", p)
	}
}

func TestParseEmptyDocumentKeepsDefaults(t *testing.T) {
	catalog, registry, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if catalog.Default() != DefaultMood || !catalog.Has("happy") {
		t.Error("built-in moods lost")
	}
	if registry.Default() != DefaultPersonality || !registry.Has("technical") {
		t.Error("built-in personalities lost")
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown top-level key",
			"mods: {}",
			"invalid catalog",
		},
		{
			"unknown mood field",
			"moods: {zen: {emoji: \"🧘\", baseEnergy: 1, color: blue}}",
			"invalid catalog",
		},
		{
			"energy out of range",
			"moods: {zen: {emoji: \"🧘\", baseEnergy: 9}}",
			"invalid catalog",
		},
		{
			"missing personality params",
			"personalities: {broken: {name: Broken}}",
			"invalid catalog",
		},
		{
			"default mood not in table",
			"defaultMood: zen",
			"not defined in the mood table",
		},
		{
			"default personality not in table",
			"defaultPersonality: ghost",
			"not defined in the personality table",
		},
		{
			"not yaml",
			"moods: [:::",
			"parse catalog yaml",
		},
	}
	for _, tc := range cases {
		_, _, err := Parse([]byte(tc.yaml))
		if err == nil {
			t.Errorf("%s: no error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want substring %q", tc.name, err, tc.want)
		}
	}
}
