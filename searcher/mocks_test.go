package searcher

import (
	"planner/pomdp"
)

type mockState struct {
	id   int
	done bool
}

type mockModel struct {
	actions     int
	terminalObs pomdp.Observation
	step        func(s *mockState, u float64, action int) (float64, pomdp.Observation)
}

func (m *mockModel) NumActions() int {
	return m.actions
}

func (m *mockModel) IsTerminal(s *mockState) bool {
	return s.done
}

func (m *mockModel) TerminalObs() pomdp.Observation {
	return m.terminalObs
}

func (m *mockModel) Step(s *mockState, u float64, action int) (float64, pomdp.Observation) {
	return m.step(s, u, action)
}

func (m *mockModel) Allocate() *mockState {
	return &mockState{}
}

func (m *mockModel) Copy(s *mockState) *mockState {
	c := *s
	return &c
}

func (m *mockModel) Free(s *mockState) {}

type mockLower struct {
	value  func(particles []pomdp.Particle[*mockState], depth int) float64
	action int
}

func (b mockLower) Value(history *pomdp.History, particles []pomdp.Particle[*mockState], depth int) (float64, int) {
	return b.value(particles, depth), b.action
}

type mockUpper struct {
	value func(particles []pomdp.Particle[*mockState], depth int) float64
}

func (b mockUpper) Value(history *pomdp.History, particles []pomdp.Particle[*mockState], depth int) float64 {
	return b.value(particles, depth)
}

// mockBelief resamples round-robin and assigns stream ids 0..k-1, so test
// runs are fully deterministic.
type mockBelief struct {
	model *mockModel
}

func (b mockBelief) Sample(pool []pomdp.Particle[*mockState], k int) []pomdp.Particle[*mockState] {
	particles := make([]pomdp.Particle[*mockState], k)
	for i := range particles {
		src := pool[i%len(pool)]
		particles[i] = pomdp.Particle[*mockState]{
			State:  b.model.Copy(src.State),
			ID:     i,
			Weight: 1.0 / float64(k),
		}
	}
	return particles
}

func (b mockBelief) Update(particles []pomdp.Particle[*mockState], k int, action int, obs pomdp.Observation) []pomdp.Particle[*mockState] {
	out := make([]pomdp.Particle[*mockState], k)
	for i := range out {
		src := particles[i%len(particles)]
		state := b.model.Copy(src.State)
		b.model.Step(state, 0.5, action)
		out[i] = pomdp.Particle[*mockState]{
			State:  state,
			ID:     i,
			Weight: 1.0 / float64(k),
		}
	}
	return out
}

func (b mockBelief) Reset() {}

func newTestSolver(model *mockModel, lb mockLower, ub mockUpper, streams *pomdp.RandomStreams, options ...Option) *Solver[*mockState] {
	initial := []pomdp.Particle[*mockState]{
		{State: &mockState{}, Weight: 1.0},
	}
	return NewSolver[*mockState](model, initial, lb, ub, mockBelief{model: model}, streams, options...)
}

// walkTree visits every belief node in the subtree, parents first.
func walkTree[S any](v *vnode[S], visit func(*vnode[S])) {
	visit(v)
	for _, q := range v.qnodes {
		for _, obs := range q.obsKeys {
			walkTree(q.children[obs], visit)
		}
	}
}
