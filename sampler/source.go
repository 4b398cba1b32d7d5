package sampler

import (
	"context"
	"math/rand"
)

// Source produces readings for one bound resource.
type Source interface {
	Read(ctx context.Context) (float64, error)
}

// RandomWalk is a simulated source drifting inside [min, max].
type RandomWalk struct {
	rng   *rand.Rand
	min   float64
	max   float64
	step  float64
	value float64
}

// NewRandomWalk starts at the middle of the range and moves at most a
// fiftieth of the range per reading.
func NewRandomWalk(min, max float64, seed int64) *RandomWalk {
	if max < min {
		min, max = max, min
	}
	return &RandomWalk{
		rng:   rand.New(rand.NewSource(seed)),
		min:   min,
		max:   max,
		step:  (max - min) / 50,
		value: min + (max-min)/2,
	}
}

func (w *RandomWalk) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	w.value += (w.rng.Float64()*2 - 1) * w.step
	if w.value < w.min {
		w.value = w.min
	}
	if w.value > w.max {
		w.value = w.max
	}
	return w.value, nil
}
