package bound

import (
	"planner/pomdp"
)

type upperKey struct {
	state uint64
	depth int
}

// Hindsight is the general-case upper bound: a weighted average over
// particles of a per-state optimal-value estimate, cached per (state,
// depth). The cache belongs to the bound, not the model.
type Hindsight[S any] struct {
	model   pomdp.Model[S]
	upper   StateUpper[S]
	keyer   StateKeyer[S]
	horizon int
	cache   map[upperKey]float64
}

// StateUpper supplies an upper estimate of the optimal value attainable
// from a fully observed state with the given number of steps to go.
type StateUpper[S any] interface {
	StateUpperValue(state S, stepsToGo int) float64
}

func NewHindsight[S any](model pomdp.Model[S], upper StateUpper[S], keyer StateKeyer[S], horizon int) *Hindsight[S] {
	return &Hindsight[S]{
		model:   model,
		upper:   upper,
		keyer:   keyer,
		horizon: horizon,
		cache:   make(map[upperKey]float64),
	}
}

func (b *Hindsight[S]) Value(history *pomdp.History, particles []pomdp.Particle[S], depth int) float64 {
	total := 0.0
	weight := 0.0
	for _, p := range particles {
		weight += p.Weight
		if b.model.IsTerminal(p.State) {
			continue
		}
		key := upperKey{state: b.keyer.StateKey(p.State), depth: depth}
		v, ok := b.cache[key]
		if !ok {
			v = b.upper.StateUpperValue(p.State, b.horizon-depth)
			b.cache[key] = v
		}
		total += p.Weight * v
	}
	return total / weight
}

// Trajectory is an upper bound for deterministic-transition models: each
// distinct state contributes the return of the single trajectory obtained
// by following the state policy. That return equals the optimal value only
// when transitions are deterministic and the policy is optimal per state;
// the model owner guarantees both. Cached per (state, depth).
type Trajectory[S any] struct {
	model    pomdp.Model[S]
	policy   StatePolicy[S]
	keyer    StateKeyer[S]
	streams  *pomdp.RandomStreams
	discount float64
	cache    map[upperKey]float64
}

func NewTrajectory[S any](model pomdp.Model[S], policy StatePolicy[S], keyer StateKeyer[S], streams *pomdp.RandomStreams, discount float64) *Trajectory[S] {
	return &Trajectory[S]{
		model:    model,
		policy:   policy,
		keyer:    keyer,
		streams:  streams,
		discount: discount,
		cache:    make(map[upperKey]float64),
	}
}

func (b *Trajectory[S]) Value(history *pomdp.History, particles []pomdp.Particle[S], depth int) float64 {
	total := 0.0
	weight := 0.0
	for _, p := range particles {
		weight += p.Weight
		if b.model.IsTerminal(p.State) {
			continue
		}
		key := upperKey{state: b.keyer.StateKey(p.State), depth: depth}
		v, ok := b.cache[key]
		if !ok {
			v = b.rollout(p, depth)
			b.cache[key] = v
		}
		total += p.Weight * v
	}
	return total / weight
}

func (b *Trajectory[S]) rollout(p pomdp.Particle[S], depth int) float64 {
	state := b.model.Copy(p.State)
	value := 0.0
	gamma := 1.0
	for d := depth; d < b.streams.Length(); d++ {
		r, _ := b.model.Step(state, b.streams.Entry(p.ID, d), b.policy.BestAction(state))
		value += gamma * r
		gamma *= b.discount
		if b.model.IsTerminal(state) {
			break
		}
	}
	b.model.Free(state)
	return value
}
