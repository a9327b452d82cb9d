package simulation

import (
	"math/rand"
	"sync"
)

// Rand is the randomness the generators consume. *math/rand.Rand
// satisfies it; tests substitute scripted sequences.
type Rand interface {
	// Intn returns a value in [0,n). n > 0.
	Intn(n int) int
	// Float64 returns a value in [0.0,1.0).
	Float64() float64
}

// lockedRand serializes access to a Rand shared between the tick loop
// and, when passed as a narrative picker, the fetch goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

// NewRand returns a goroutine-safe Rand seeded with seed.
func NewRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

// Locked wraps r so it can be shared across goroutines.
func Locked(r Rand) Rand {
	if _, ok := r.(*lockedRand); ok {
		return r
	}
	return &lockedRand{r: r}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// between returns a uniform integer in [lo, hi].
func between(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
