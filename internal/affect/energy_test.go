package affect

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNextSmoothsTowardClampedTarget(t *testing.T) {
	tr := NewEnergyTracker(DefaultCatalog())

	// Long, shouty, exclamation-heavy message: raw target 3+1+1+1 = 6,
	// clamped to 5 before smoothing, so one turn moves 3.0 to 3.6.
	excited := strings.Repeat("GO IS AMAZING!!! ", 7)
	if got := tr.Next(3.0, "thoughtful", true, excited); !almostEqual(got, 3.6) {
		t.Errorf("excited turn = %v, want 3.6", got)
	}
}

func TestNextModifiers(t *testing.T) {
	tr := NewEnergyTracker(DefaultCatalog())

	cases := []struct {
		name    string
		current float64
		mood    string
		content string
		want    float64
	}{
		// Plain message at the mood baseline: no movement.
		{"at baseline", 3.0, "thoughtful", "okay", 3.0},
		// Question adds 0.5: target 3.5, move 0.15.
		{"question", 3.0, "thoughtful", "how does this work?", 3.15},
		// Calm baseline 1 pulls a high level down.
		{"calm pulldown", 4.0, "calm", "fine", 3.1},
		// Excited baseline 5 pulls upward without modifiers.
		{"excited pull", 3.0, "excited", "ok", 3.6},
	}
	for _, tc := range cases {
		if got := tr.Next(tc.current, tc.mood, true, tc.content); !almostEqual(got, tc.want) {
			t.Errorf("%s: Next = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNextIgnoresAssistantSignals(t *testing.T) {
	tr := NewEnergyTracker(DefaultCatalog())

	// Assistant turns converge on the mood baseline only, however shouty.
	loud := strings.Repeat("WOW!!! ", 30)
	if got := tr.Next(3.0, "thoughtful", false, loud); !almostEqual(got, 3.0) {
		t.Errorf("assistant turn = %v, want 3.0", got)
	}
}

func TestNextStaysInBounds(t *testing.T) {
	tr := NewEnergyTracker(DefaultCatalog())

	level := 0.0
	for i := 0; i < 100; i++ {
		level = tr.Next(level, "excited", true, strings.Repeat("YES!!! ", 20))
		if level < EnergyMin || level > EnergyMax {
			t.Fatalf("level escaped bounds: %v", level)
		}
	}
	// Repeated maximal input converges on the cap.
	if level < 4.99 {
		t.Errorf("level after convergence = %v", level)
	}
}

func TestIndicator(t *testing.T) {
	cases := []struct {
		level float64
		want  string
	}{
		{0, "🔋"},
		{0.4, "🔋"},
		{0.6, "⚡"},
		{3.0, "⚡⚡⚡"},
		{3.6, "⚡⚡⚡⚡"},
		{5.0, "⚡⚡⚡⚡⚡"},
		{9.9, "⚡⚡⚡⚡⚡"},
	}
	for _, tc := range cases {
		if got := Indicator(tc.level); got != tc.want {
			t.Errorf("Indicator(%v) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestCapsRatioCountsCharacters(t *testing.T) {
	// "HI there" has 2 upper of 8 characters.
	if got := capsRatio("HI there"); !almostEqual(got, 0.25) {
		t.Errorf("capsRatio = %v", got)
	}
	// Multibyte runes count once each: 3 upper of 8 characters, not of
	// 20 bytes.
	if got := capsRatio("WOW 😀😀😀😀"); !almostEqual(got, 0.375) {
		t.Errorf("capsRatio(emoji) = %v", got)
	}
	if got := capsRatio(""); got != 0 {
		t.Errorf("capsRatio(empty) = %v", got)
	}
}

func TestNextCapsNudgeWithEmojiContent(t *testing.T) {
	tr := NewEnergyTracker(DefaultCatalog())

	// A shouted message padded with emoji still trips the caps nudge:
	// target 3+1=4, smoothed 3.0 + (4-3)*0.3 = 3.3.
	if got := tr.Next(3.0, "thoughtful", true, "WOW 😀😀😀😀"); !almostEqual(got, 3.3) {
		t.Errorf("Next = %v, want 3.3", got)
	}
}
