package simulation

import (
	"sync"
)

// scriptedRand replays fixed sequences. Exhausted sequences repeat their
// last value, or zero when empty.
type scriptedRand struct {
	mu         sync.Mutex
	ints       []int
	floats     []float64
	intCalls   int
	floatCalls int
}

func (r *scriptedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var v int
	switch {
	case r.intCalls < len(r.ints):
		v = r.ints[r.intCalls]
	case len(r.ints) > 0:
		v = r.ints[len(r.ints)-1]
	}
	r.intCalls++
	if v >= n {
		v = n - 1
	}
	return v
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var v float64
	switch {
	case r.floatCalls < len(r.floats):
		v = r.floats[r.floatCalls]
	case len(r.floats) > 0:
		v = r.floats[len(r.floats)-1]
	}
	r.floatCalls++
	return v
}

func (r *scriptedRand) calls() (ints, floats int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intCalls, r.floatCalls
}

// alwaysEmit emits on every tick. The first alert gets the first label, and
// with the default jitter of 5 every score is the plain weight.
func alwaysEmit() *scriptedRand {
	return &scriptedRand{floats: []float64{0}, ints: []int{0, 5}}
}
