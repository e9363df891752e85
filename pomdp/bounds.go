package pomdp

// LowerBound computes a realizable value for a belief, typically by rolling
// out a policy over the particles' scenarios, together with the action that
// policy would take first. The action doubles as a safe fallback when the
// search tree is not informative.
//
// Implementations must be deterministic given (history, particles, depth)
// and the stream table they were constructed with.
type LowerBound[S any] interface {
	Value(history *History, particles []Particle[S], depth int) (value float64, defaultAction int)
}

// UpperBound returns a value at least as large as the optimal value of the
// belief. Implementations may cache; the cache belongs to the bound, never
// to the model.
type UpperBound[S any] interface {
	Value(history *History, particles []Particle[S], depth int) float64
}

// BeliefUpdate maintains the posterior over hidden states.
//
// Sample draws k particles from the initial pool by importance-weighted
// resampling and assigns each a distinct stream id in [0, NumStreams), so
// each scenario is represented at most once. Returned particles are fresh
// copies; the pool stays owned by the caller.
//
// Update produces the posterior after committing (action, observation).
// The input particles stay owned by the caller.
type BeliefUpdate[S any] interface {
	Sample(pool []Particle[S], k int) []Particle[S]
	Update(particles []Particle[S], k int, action int, obs Observation) []Particle[S]
	Reset()
}
