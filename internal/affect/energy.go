package affect

import (
	"math"
	"strings"
	"unicode"
)

// Energy bounds and smoothing factor. Energy never snaps to its target; it
// moves 30% of the remaining distance per turn, producing a momentum effect.
const (
	EnergyMin      = 0.0
	EnergyMax      = 5.0
	energyStep     = 0.3
	longMessageLen = 100
	capsThreshold  = 0.3
)

// EnergyTracker derives the next energy level for a conversation from the
// mood's baseline and the surface features of an incoming message.
type EnergyTracker struct {
	catalog *Catalog
}

// NewEnergyTracker returns a tracker reading mood baselines from catalog.
func NewEnergyTracker(catalog *Catalog) *EnergyTracker {
	return &EnergyTracker{catalog: catalog}
}

// Next computes the smoothed energy level after one message. The target is
// the mood's base energy, nudged upward by user-authored excitement signals
// (length, exclamations, caps ratio, questions), clamped to [0,5] before
// smoothing so a single turn moves energy by at most 30% of the remaining
// headroom.
func (t *EnergyTracker) Next(current float64, mood string, fromUser bool, content string) float64 {
	target := float64(t.catalog.Mood(mood).BaseEnergy)

	if fromUser {
		if len(content) > longMessageLen {
			target++
		}
		if strings.Count(content, "!") > 2 {
			target++
		}
		if capsRatio(content) > capsThreshold {
			target++
		}
		if strings.Contains(content, "?") {
			target += 0.5
		}
	}

	target = clampEnergy(target)
	return clampEnergy(current + (target-current)*energyStep)
}

// Indicator renders an energy level as the fixed 0-5 step meter. The level
// is rounded to the nearest integer for display.
func Indicator(level float64) string {
	n := int(math.Round(clampEnergy(level)))
	if n <= 0 {
		return "🔋"
	}
	return strings.Repeat("⚡", n)
}

// capsRatio returns the fraction of characters that are upper-case letters.
// Both sides count runes, so multibyte content does not dilute the ratio.
func capsRatio(content string) float64 {
	upper, total := 0, 0
	for _, r := range content {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

func clampEnergy(v float64) float64 {
	if v < EnergyMin {
		return EnergyMin
	}
	if v > EnergyMax {
		return EnergyMax
	}
	return v
}
