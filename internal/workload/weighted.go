// Package workload drives the training service. Each scenario hands out
// actors that own their counters, fixtures and random source, and run one
// paced request cycle per iteration.
package workload

import (
	"errors"
	"math/rand"
)

// Choice is one entry of a weighted table.
type Choice[T any] struct {
	Weight int
	Value  T
}

// Weighted is a discrete weighted-choice table. Entries with weight 0 are
// never picked.
type Weighted[T any] struct {
	choices []Choice[T]
	total   int
}

// NewWeighted builds a table. It fails on negative weights or when no entry
// can be picked.
func NewWeighted[T any](choices ...Choice[T]) (*Weighted[T], error) {
	w := &Weighted[T]{}
	for _, c := range choices {
		if c.Weight < 0 {
			return nil, errors.New("weights must not be negative")
		}
		if c.Weight == 0 {
			continue
		}
		w.choices = append(w.choices, c)
		w.total += c.Weight
	}
	if w.total == 0 {
		return nil, errors.New("at least one weight must be positive")
	}
	return w, nil
}

// Pick draws one value using rng.
func (w *Weighted[T]) Pick(rng *rand.Rand) T {
	n := rng.Intn(w.total)
	for _, c := range w.choices {
		if n < c.Weight {
			return c.Value
		}
		n -= c.Weight
	}
	return w.choices[len(w.choices)-1].Value
}

// Total returns the sum of all weights.
func (w *Weighted[T]) Total() int {
	return w.total
}
