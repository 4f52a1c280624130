package affect

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the source of randomness for mood transitions and decoration
// picks. It exists so tests can supply a deterministic source and assert
// exact outputs instead of statistical properties.
type Rand interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
	// Intn returns a pseudo-random number in [0, n). n must be > 0.
	Intn(n int) int
}

// lockedRand wraps a *rand.Rand so it is safe for concurrent use from
// multiple request-handling goroutines.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

// SystemRand returns a time-seeded Rand safe for concurrent use.
func SystemRand() Rand {
	return &lockedRand{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}
