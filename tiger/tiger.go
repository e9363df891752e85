// Package tiger implements the classic two-door diagnosis problem: a tiger
// hides behind the left or right door, listening is noisy and costs a
// little, opening a door ends the episode with a large reward or penalty.
package tiger

import (
	"fmt"
	"sync"

	"planner/pomdp"
)

const (
	ActionListen = iota
	ActionOpenLeft
	ActionOpenRight
)

const (
	ObsGrowlLeft  pomdp.Observation = 0
	ObsGrowlRight pomdp.Observation = 1
	ObsDone       pomdp.Observation = 2
)

const (
	ListenAccuracy = 0.85
	ListenPenalty  = -1.0
	EscapeReward   = 10.0
	TigerPenalty   = -100.0
)

type State struct {
	TigerLeft bool
	Done      bool
}

// Model pools particle states so simulation churn stays off the allocator.
type Model struct {
	pool sync.Pool
}

func NewModel() *Model {
	m := &Model{}
	m.pool.New = func() any { return new(State) }
	return m
}

func (m *Model) NumActions() int {
	return 3
}

func (m *Model) IsTerminal(s *State) bool {
	return s.Done
}

func (m *Model) TerminalObs() pomdp.Observation {
	return ObsDone
}

func (m *Model) Step(s *State, u float64, action int) (float64, pomdp.Observation) {
	switch action {
	case ActionListen:
		correct := u < ListenAccuracy
		if s.TigerLeft == correct {
			return ListenPenalty, ObsGrowlLeft
		}
		return ListenPenalty, ObsGrowlRight
	case ActionOpenLeft:
		s.Done = true
		if s.TigerLeft {
			return TigerPenalty, ObsDone
		}
		return EscapeReward, ObsDone
	case ActionOpenRight:
		s.Done = true
		if s.TigerLeft {
			return EscapeReward, ObsDone
		}
		return TigerPenalty, ObsDone
	}
	panic(fmt.Sprintf("unknown action %d", action))
}

func (m *Model) Allocate() *State {
	return m.pool.Get().(*State)
}

func (m *Model) Copy(s *State) *State {
	c := m.pool.Get().(*State)
	*c = *s
	return c
}

func (m *Model) Free(s *State) {
	*s = State{}
	m.pool.Put(s)
}

// BestAction for a fully observed state: open the safe door.
func (m *Model) BestAction(s *State) int {
	if s.TigerLeft {
		return ActionOpenRight
	}
	return ActionOpenLeft
}

func (m *Model) StateKey(s *State) uint64 {
	key := uint64(0)
	if s.TigerLeft {
		key |= 1
	}
	if s.Done {
		key |= 2
	}
	return key
}

// StateUpperValue: with the state known, the best move is to open the safe
// door immediately.
func (m *Model) StateUpperValue(s *State, stepsToGo int) float64 {
	if s.Done || stepsToGo <= 0 {
		return 0
	}
	return EscapeReward
}

// InitialBelief returns the uniform two-state prior. The caller owns the
// returned particle states.
func (m *Model) InitialBelief() []pomdp.Particle[*State] {
	left := m.Allocate()
	*left = State{TigerLeft: true}
	right := m.Allocate()
	*right = State{TigerLeft: false}
	return []pomdp.Particle[*State]{
		{State: left, Weight: 0.5},
		{State: right, Weight: 0.5},
	}
}
