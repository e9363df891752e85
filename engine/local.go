package engine

import (
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"planner/pomdp"
	"planner/searcher"
	"planner/utils"
)

// MaxSteps caps an episode that never reaches a terminal state.
const MaxSteps = 1000

// StepResult captures one executed action.
type StepResult struct {
	Action int
	Obs    pomdp.Observation
	Reward float64
	Search searcher.SearchMetrics
}

// Local owns the true hidden state of one episode. It executes the
// solver's chosen actions against that state with world randomness and
// feeds the resulting observations back into the belief.
type Local[S any] struct {
	model    pomdp.Model[S]
	solver   *searcher.Solver[S]
	state    S
	rng      *rand.Rand
	discount float64
	budget   time.Duration
}

// NewLocal samples the true state from the initial belief using the world
// seed, so the episode's hidden truth is fixed by the stream table.
func NewLocal[S any](
	model pomdp.Model[S],
	solver *searcher.Solver[S],
	initial []pomdp.Particle[S],
	streams *pomdp.RandomStreams,
	discount float64,
	budget time.Duration,
) *Local[S] {
	if len(initial) == 0 {
		panic("initial belief is empty")
	}
	rng := rand.New(rand.NewSource(streams.WorldSeed()))
	weights := make([]float64, len(initial))
	for i, p := range initial {
		weights[i] = p.Weight
	}
	src := initial[utils.WeightedPick(rng.Float64(), weights)]
	return &Local[S]{
		model:    model,
		solver:   solver,
		state:    model.Copy(src.State),
		rng:      rng,
		discount: discount,
		budget:   budget,
	}
}

// Run plays one episode to termination (or the step cap) and returns the
// discounted return together with one result per executed action.
func (e *Local[S]) Run() (float64, []StepResult) {
	e.solver.Init()

	total := 0.0
	gamma := 1.0
	results := []StepResult{}
	for len(results) < MaxSteps && !e.model.IsTerminal(e.state) {
		action, trials := e.solver.Search(e.budget)
		reward, obs := e.model.Step(e.state, e.rng.Float64(), action)
		total += gamma * reward
		gamma *= e.discount
		results = append(results, StepResult{
			Action: action,
			Obs:    obs,
			Reward: reward,
			Search: e.solver.LastSearch(),
		})

		log.Info().Msgf("step %d: action=%d obs=%d reward=%.2f trials=%d",
			len(results), action, obs, reward, trials)

		if e.model.IsTerminal(e.state) {
			break
		}
		e.solver.UpdateBelief(action, obs)
	}
	return total, results
}

// State exposes the true hidden state, for inspection after Run.
func (e *Local[S]) State() S {
	return e.state
}

// Close releases the engine's copy of the hidden state.
func (e *Local[S]) Close() {
	e.model.Free(e.state)
}
