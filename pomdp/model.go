package pomdp

// Observation identifies an observation emitted by the model. The model
// reserves one value as the terminal observation.
type Observation uint64

// Particle is a weighted hidden-state sample. ID indexes the particle's
// scenario in RandomStreams; it is assigned when the belief is sampled and
// preserved when the particle is copied forward during simulation.
type Particle[S any] struct {
	State  S
	ID     int
	Weight float64
}

// Model is the problem definition the solver plans against. Implementations
// hold no search state; the solver consumes the model as immutable.
//
// Step advances state in place using the scenario draw u in [0,1) and must
// emit TerminalObs() iff the resulting state is terminal.
//
// Allocate, Copy and Free manage particle state memory. Every state handed
// out by Allocate or Copy is eventually returned through Free.
type Model[S any] interface {
	NumActions() int
	IsTerminal(state S) bool
	TerminalObs() Observation
	Step(state S, u float64, action int) (reward float64, obs Observation)

	Allocate() S
	Copy(state S) S
	Free(state S)
}
