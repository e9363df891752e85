package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"planner/belief"
	"planner/bound"
	"planner/pomdp"
	"planner/searcher"
	"planner/tiger"
)

// rescueState is a one-shot world: the rewarding action ends the episode,
// the other loops in place.
type rescueState struct {
	done bool
}

type rescueModel struct{}

func (m rescueModel) NumActions() int                { return 2 }
func (m rescueModel) IsTerminal(s *rescueState) bool { return s.done }
func (m rescueModel) TerminalObs() pomdp.Observation { return 9 }
func (m rescueModel) Allocate() *rescueState         { return &rescueState{} }
func (m rescueModel) Free(s *rescueState)            {}

func (m rescueModel) Step(s *rescueState, u float64, action int) (float64, pomdp.Observation) {
	if action == 0 {
		s.done = true
		return 10, 9
	}
	return 0, 0
}

func (m rescueModel) Copy(s *rescueState) *rescueState {
	c := *s
	return &c
}

type rescueLower struct{}

func (rescueLower) Value(h *pomdp.History, ps []pomdp.Particle[*rescueState], depth int) (float64, int) {
	return 0, 1
}

type rescueUpper struct{}

func (rescueUpper) Value(h *pomdp.History, ps []pomdp.Particle[*rescueState], depth int) float64 {
	if ps[0].State.done {
		return 0
	}
	return 10
}

func TestLocalRunRescue(t *testing.T) {
	model := rescueModel{}
	streams := pomdp.NewRandomStreams(4, 5, 21)
	initial := []pomdp.Particle[*rescueState]{{State: &rescueState{}, Weight: 1.0}}
	filter := belief.NewFilter[*rescueState](model, streams)

	solver := searcher.NewSolver[*rescueState](model, initial, rescueLower{}, rescueUpper{}, filter, streams,
		searcher.WithNumParticles(4),
		searcher.WithSearchDepth(5),
		searcher.WithDiscount(1.0),
		searcher.WithXi(0.5),
	)

	e := NewLocal[*rescueState](model, solver, initial, streams, 1.0, 50*time.Millisecond)
	defer e.Close()

	total, results := e.Run()

	require.Len(t, results, 1, "One rewarding action should end the episode")
	require.Equal(t, 0, results[0].Action)
	require.Equal(t, pomdp.Observation(9), results[0].Obs)
	require.Equal(t, 10.0, results[0].Reward)
	require.Equal(t, 10.0, total)
	require.True(t, model.IsTerminal(e.State()))
}

func TestLocalRunTiger(t *testing.T) {
	model := tiger.NewModel()
	streams := pomdp.NewRandomStreams(20, 10, 3)
	initial := model.InitialBelief()
	filter := belief.NewFilter[*tiger.State](model, streams)
	lb := bound.NewModePolicy[*tiger.State](model, model, model, streams, 0.95)
	ub := bound.NewHindsight[*tiger.State](model, model, model, streams.Length())

	solver := searcher.NewSolver[*tiger.State](model, initial, lb, ub, filter, streams,
		searcher.WithNumParticles(20),
		searcher.WithSearchDepth(10),
		searcher.WithDiscount(0.95),
		searcher.WithXi(0.95),
	)

	e := NewLocal[*tiger.State](model, solver, initial, streams, 0.95, 2*time.Millisecond)
	defer e.Close()

	total, results := e.Run()

	require.NotEmpty(t, results)
	require.LessOrEqual(t, len(results), MaxSteps)
	require.Greater(t, total, float64(tiger.TigerPenalty)*2,
		"A sane planner must not keep opening the tiger door")
	if model.IsTerminal(e.State()) {
		last := results[len(results)-1]
		require.Equal(t, tiger.ObsDone, last.Obs,
			"A finished episode must end on the terminal observation")
	}
}
