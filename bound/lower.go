package bound

import (
	"golang.org/x/exp/rand"

	"planner/pomdp"
)

// StatePolicy supplies the preferred action for a single fully observed
// state. ModePolicy and the trajectory upper bound require it from the
// model.
type StatePolicy[S any] interface {
	BestAction(state S) int
}

// StateKeyer collapses a state to a comparable key, used for mode counting
// and bound caching.
type StateKeyer[S any] interface {
	StateKey(state S) uint64
}

// RandomPolicy is a rollout lower bound: each particle follows a uniformly
// random action sequence over its scenario draws until its stream runs out
// or it terminates. The action sequence is derived from the model seed and
// the rollout depth, so repeated queries are identical.
type RandomPolicy[S any] struct {
	model    pomdp.Model[S]
	streams  *pomdp.RandomStreams
	discount float64
}

func NewRandomPolicy[S any](model pomdp.Model[S], streams *pomdp.RandomStreams, discount float64) *RandomPolicy[S] {
	return &RandomPolicy[S]{model: model, streams: streams, discount: discount}
}

func (b *RandomPolicy[S]) Value(history *pomdp.History, particles []pomdp.Particle[S], depth int) (float64, int) {
	rng := rand.New(rand.NewSource(b.streams.ModelSeed() ^ uint64(depth)))
	defaultAction := rng.Intn(b.model.NumActions())

	total := 0.0
	weight := 0.0
	for _, p := range particles {
		weight += p.Weight
		if b.model.IsTerminal(p.State) {
			continue
		}
		state := b.model.Copy(p.State)
		value := 0.0
		gamma := 1.0
		action := defaultAction
		for d := depth; d < b.streams.Length(); d++ {
			r, _ := b.model.Step(state, b.streams.Entry(p.ID, d), action)
			value += gamma * r
			gamma *= b.discount
			if b.model.IsTerminal(state) {
				break
			}
			action = rng.Intn(b.model.NumActions())
		}
		b.model.Free(state)
		total += p.Weight * value
	}
	return total / weight, defaultAction
}

// ModePolicy is a rollout lower bound that, at every step, takes the
// preferred action of the most frequent state in the evolving particle
// set. Weight ties break toward the smaller state key so the rollout is
// order-independent.
type ModePolicy[S any] struct {
	model    pomdp.Model[S]
	policy   StatePolicy[S]
	keyer    StateKeyer[S]
	streams  *pomdp.RandomStreams
	discount float64
}

func NewModePolicy[S any](model pomdp.Model[S], policy StatePolicy[S], keyer StateKeyer[S], streams *pomdp.RandomStreams, discount float64) *ModePolicy[S] {
	return &ModePolicy[S]{model: model, policy: policy, keyer: keyer, streams: streams, discount: discount}
}

func (b *ModePolicy[S]) Value(history *pomdp.History, particles []pomdp.Particle[S], depth int) (float64, int) {
	copies := make([]pomdp.Particle[S], len(particles))
	done := make([]bool, len(particles))
	weight := 0.0
	for i, p := range particles {
		copies[i] = pomdp.Particle[S]{State: b.model.Copy(p.State), ID: p.ID, Weight: p.Weight}
		done[i] = b.model.IsTerminal(p.State)
		weight += p.Weight
	}

	defaultAction := 0
	total := 0.0
	gamma := 1.0
	for d := depth; d < b.streams.Length(); d++ {
		mode, ok := b.mode(copies, done)
		if !ok {
			break
		}
		action := b.policy.BestAction(mode)
		if d == depth {
			defaultAction = action
		}
		for i := range copies {
			if done[i] {
				continue
			}
			r, _ := b.model.Step(copies[i].State, b.streams.Entry(copies[i].ID, d), action)
			total += gamma * copies[i].Weight * r
			done[i] = b.model.IsTerminal(copies[i].State)
		}
		gamma *= b.discount
	}

	for _, p := range copies {
		b.model.Free(p.State)
	}
	return total / weight, defaultAction
}

// mode returns the state of highest total weight among the live particles;
// ok is false once every particle is terminal.
func (b *ModePolicy[S]) mode(copies []pomdp.Particle[S], done []bool) (S, bool) {
	sums := make(map[uint64]float64)
	reps := make(map[uint64]S)
	var bestKey uint64
	best := -1.0
	found := false
	for i, p := range copies {
		if done[i] {
			continue
		}
		k := b.keyer.StateKey(p.State)
		sums[k] += p.Weight
		if _, ok := reps[k]; !ok {
			reps[k] = p.State
		}
		if sums[k] > best || (sums[k] == best && k < bestKey) {
			best = sums[k]
			bestKey = k
			found = true
		}
	}
	return reps[bestKey], found
}
