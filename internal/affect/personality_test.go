package affect

import (
	"reflect"
	"testing"
)

func TestDefaultRegistryParams(t *testing.T) {
	r := DefaultRegistry()

	want := map[string]GenerationParams{
		"balanced":  {Temperature: 0.7, TopP: 0.9, TopK: 40},
		"creative":  {Temperature: 0.9, TopP: 0.95, TopK: 50},
		"precise":   {Temperature: 0.3, TopP: 0.75, TopK: 20},
		"friendly":  {Temperature: 0.8, TopP: 0.9, TopK: 45},
		"technical": {Temperature: 0.5, TopP: 0.85, TopK: 30},
	}
	for name, params := range want {
		if !r.Has(name) {
			t.Errorf("missing personality %q", name)
			continue
		}
		if got := r.ParamsFor(name); got != params {
			t.Errorf("%s params = %+v, want %+v", name, got, params)
		}
		p := r.Get(name)
		if p.Emoji == "" || p.Description == "" || p.StyleGuide == "" {
			t.Errorf("%s is missing display fields", name)
		}
	}

	names := []string{"balanced", "creative", "friendly", "precise", "technical"}
	if got := r.Names(); !reflect.DeepEqual(got, names) {
		t.Errorf("Names() = %v", got)
	}
	if r.Default() != "balanced" {
		t.Errorf("default = %q", r.Default())
	}
}

func TestGetFallsBackToDefault(t *testing.T) {
	r := DefaultRegistry()
	if got := r.Get("pirate"); got.Name != "Balanced" {
		t.Errorf("unknown personality resolved to %+v", got)
	}
}
