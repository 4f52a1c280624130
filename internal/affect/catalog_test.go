package affect

import (
	"reflect"
	"testing"
)

// seqRand plays back scripted values.
type seqRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *seqRand) Float64() float64 {
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *seqRand) Intn(n int) int {
	v := r.ints[r.ii%len(r.ints)]
	r.ii++
	return v % n
}

func TestDefaultCatalogShape(t *testing.T) {
	c := DefaultCatalog()

	want := []string{"calm", "curious", "excited", "happy", "playful", "professional", "thoughtful"}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v", got)
	}
	if c.Default() != "thoughtful" {
		t.Errorf("default = %q", c.Default())
	}

	baselines := map[string]int{
		"happy": 5, "thoughtful": 3, "curious": 4, "playful": 5,
		"professional": 2, "calm": 1, "excited": 5,
	}
	for name, base := range baselines {
		if !c.Has(name) {
			t.Errorf("missing mood %q", name)
			continue
		}
		m := c.Mood(name)
		if m.BaseEnergy != base {
			t.Errorf("%s base energy = %d, want %d", name, m.BaseEnergy, base)
		}
		if m.Emoji == "" || len(m.Prefixes) == 0 || len(m.Suffixes) == 0 {
			t.Errorf("%s is missing display fields", name)
		}
	}
}

func TestMoodFallsBackToDefault(t *testing.T) {
	c := DefaultCatalog()
	if got := c.Mood("grumpy"); got.Emoji != "🤔" {
		t.Errorf("unknown mood resolved to %+v", got)
	}
}

func TestMaybeChange(t *testing.T) {
	c := DefaultCatalog()

	// Roll above the threshold: no change.
	r := &seqRand{floats: []float64{0.5}, ints: []int{0}}
	if got := c.MaybeChange("happy", r); got != "happy" {
		t.Errorf("mood changed on losing roll: %q", got)
	}

	// Roll under the threshold: uniform pick from sorted names.
	r = &seqRand{floats: []float64{0.19}, ints: []int{2}}
	if got := c.MaybeChange("happy", r); got != "excited" {
		t.Errorf("mood after change = %q, want excited", got)
	}
}

func TestDecorate(t *testing.T) {
	c := DefaultCatalog()

	r := &seqRand{floats: []float64{0}, ints: []int{0, 1}}
	prefix, suffix := c.Decorate("happy", r)
	if prefix != "Happily, " {
		t.Errorf("prefix = %q", prefix)
	}
	if suffix != " That was fun to answer!" {
		t.Errorf("suffix = %q", suffix)
	}
}

func TestWithChangeProbability(t *testing.T) {
	c := DefaultCatalog().WithChangeProbability(0)

	// Probability zero never changes the mood, whatever the roll.
	r := &seqRand{floats: []float64{0.0}, ints: []int{3}}
	if got := c.MaybeChange("calm", r); got != "calm" {
		t.Errorf("mood = %q, want calm", got)
	}

	// Probability one always changes it.
	c = c.WithChangeProbability(1)
	r = &seqRand{floats: []float64{0.999}, ints: []int{2}}
	if got := c.MaybeChange("calm", r); got != "excited" {
		t.Errorf("mood = %q, want excited", got)
	}

	// Out-of-range values clamp instead of misbehaving.
	c = DefaultCatalog().WithChangeProbability(-3)
	r = &seqRand{floats: []float64{0.0}, ints: []int{0}}
	if got := c.MaybeChange("happy", r); got != "happy" {
		t.Errorf("clamped probability changed mood to %q", got)
	}
}
