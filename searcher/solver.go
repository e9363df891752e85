package searcher

import (
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/exp/rand"

	"planner/pomdp"
)

// Solver runs the anytime belief-tree search. It exclusively owns the tree
// through the root node; trials tighten the root's bounds until the time
// budget expires or the root's excess uncertainty drops below the numeric
// floor. The solver is strictly single-threaded: trials are not
// interruptible, so the time budget is only checked between trials.
type Solver[S any] struct {
	model   pomdp.Model[S]
	initial []pomdp.Particle[S]
	lb      pomdp.LowerBound[S]
	ub      pomdp.UpperBound[S]
	bu      pomdp.BeliefUpdate[S]
	streams *pomdp.RandomStreams

	cfg     Config
	root    *vnode[S]
	history *pomdp.History
	rng     *rand.Rand
	metrics Collector
	last    SearchMetrics
}

func NewSolver[S any](
	model pomdp.Model[S],
	initial []pomdp.Particle[S],
	lb pomdp.LowerBound[S],
	ub pomdp.UpperBound[S],
	bu pomdp.BeliefUpdate[S],
	streams *pomdp.RandomStreams,
	options ...Option,
) *Solver[S] {
	cfg := defaultConfig()
	for _, option := range options {
		option(&cfg)
	}
	if cfg.Xi <= 0 || cfg.Xi >= 1 {
		panic(fmt.Sprintf("xi must be in (0, 1), got %v", cfg.Xi))
	}
	if cfg.Discount <= 0 || cfg.Discount > 1 {
		panic(fmt.Sprintf("discount must be in (0, 1], got %v", cfg.Discount))
	}
	if cfg.NumParticles > streams.NumStreams() {
		panic(fmt.Sprintf("%d particles need %d scenario streams, have %d",
			cfg.NumParticles, cfg.NumParticles, streams.NumStreams()))
	}
	if cfg.SearchDepth > streams.Length() {
		panic(fmt.Sprintf("search depth %d exceeds stream length %d",
			cfg.SearchDepth, streams.Length()))
	}

	metrics := NewNoCollector()
	if cfg.CollectMetrics {
		metrics = NewCollector()
	}

	return &Solver[S]{
		model:   model,
		initial: initial,
		lb:      lb,
		ub:      ub,
		bu:      bu,
		streams: streams,
		cfg:     cfg,
		history: &pomdp.History{},
		rng:     rand.New(rand.NewSource(streams.BeliefUpdateSeed())),
		metrics: metrics,
	}
}

// Init samples the root belief: one particle per initial-belief entry,
// shuffled, then resampled down to K scenarios by the belief updater.
func (s *Solver[S]) Init() {
	pool := make([]pomdp.Particle[S], len(s.initial))
	for i, p := range s.initial {
		pool[i] = pomdp.Particle[S]{State: s.model.Copy(p.State), ID: p.ID, Weight: p.Weight}
	}
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	particles := s.bu.Sample(pool, s.cfg.NumParticles)
	for _, p := range pool {
		s.model.Free(p.State)
	}
	s.newRoot(particles)
}

// Reset rewinds the solver to its just-constructed, just-initialized state.
func (s *Solver[S]) Reset() {
	s.bu.Reset()
	s.history.Truncate(0)
	s.rng = rand.New(rand.NewSource(s.streams.BeliefUpdateSeed()))
	s.Init()
}

// Search runs trials until the wall-clock budget is spent or the root's
// excess uncertainty falls below the numeric floor, then commits to an
// action. Degenerate searches (no useful trial completed) fall back to the
// root's default action; that is the documented anytime semantics, not an
// error.
func (s *Solver[S]) Search(maxTime time.Duration) (action int, trials int) {
	if s.root == nil {
		panic("search before Init")
	}

	s.metrics.Start()
	start := time.Now()
	for time.Since(start) < maxTime {
		if s.cfg.MaxTrials > 0 && trials >= s.cfg.MaxTrials {
			break
		}
		if excessUncertainty(s.root.lower, s.root.upper, s.root.lower, s.root.upper, 0, s.cfg) <= Tiny {
			break
		}
		s.trial(s.root)
		trials++
		s.metrics.AddTrial()
	}
	s.metrics.SetTreeNodes(s.root.treeSize)
	s.last = s.metrics.Complete()

	switch {
	case s.cfg.PruningConstant > 0:
		s.root.prune(s.cfg)
		s.root.dropPruned(s.model)
		if s.root.prunedAction == -1 {
			return s.root.defaultAction, trials
		}
		return s.root.prunedAction, trials
	case !s.root.inTree:
		return s.root.defaultAction, trials
	default:
		if a := s.root.lowerBoundAction(s.cfg.Discount); a != -1 {
			return a, trials
		}
		return s.root.defaultAction, trials
	}
}

// UpdateBelief commits an executed (action, observation) pair: the belief
// updater produces the posterior particles and the entire old tree is
// replaced by a fresh root.
func (s *Solver[S]) UpdateBelief(action int, obs pomdp.Observation) {
	particles := s.bu.Update(s.root.particles, s.cfg.NumParticles, action, obs)
	s.history.Add(action, obs)
	s.newRoot(particles)
}

// Finished reports whether every root particle is terminal.
func (s *Solver[S]) Finished() bool {
	for _, p := range s.root.particles {
		if !s.model.IsTerminal(p.State) {
			return false
		}
	}
	return true
}

func (s *Solver[S]) GetHistory() *pomdp.History {
	return s.history
}

// RootBounds returns the root belief's current bound interval.
func (s *Solver[S]) RootBounds() (lower, upper float64) {
	return s.root.lower, s.root.upper
}

// LastSearch returns the metrics of the most recent Search call. Empty
// unless the solver was built with WithMetrics.
func (s *Solver[S]) LastSearch() SearchMetrics {
	return s.last
}

func (s *Solver[S]) newRoot(particles []pomdp.Particle[S]) {
	if s.root != nil {
		s.root.free(s.model)
	}
	s.root = s.newVNode(particles, 0)
}

// newVNode seeds a belief node's bounds from the lower- and upper-bound
// heuristics.
func (s *Solver[S]) newVNode(particles []pomdp.Particle[S], depth int) *vnode[S] {
	weight := 0.0
	for _, p := range particles {
		weight += p.Weight
	}
	lower, defaultAction := s.lb.Value(s.history, particles, depth)
	upper := s.ub.Value(s.history, particles, depth)
	if lower > upper+Tiny {
		panic(fmt.Sprintf("lower bound %v exceeds upper bound %v at depth %d", lower, upper, depth))
	}
	return &vnode[S]{
		particles:     particles,
		depth:         depth,
		weight:        weight,
		lower:         lower,
		upper:         upper,
		lowerSeed:     lower,
		defaultAction: defaultAction,
		bestUBAction:  -1,
		prunedAction:  -1,
	}
}

// trial descends from node to a fringe, expands it, and backs bounds up the
// visited path. Returns the number of nodes newly counted as in the tree.
func (s *Solver[S]) trial(node *vnode[S]) int {
	if node.depth >= s.cfg.SearchDepth || s.model.IsTerminal(node.particles[0].State) {
		return 0
	}
	if node.qnodes == nil {
		s.expandOneStep(node)
		s.metrics.AddExpansion()
	}
	s.metrics.ReachDepth(node.depth)

	added := 0
	q := node.qnodes[node.bestUBAction]
	if obs, child := s.bestWEUO(q); child != nil {
		s.history.Add(q.action, obs)
		added += s.trial(child)
		s.history.Truncate(s.history.Len() - 1)
	}

	// Lower-bound backup is monotone non-decreasing.
	node.lower = math.Max(node.lower, q.reward+s.cfg.Discount*q.lowerBound())

	// The upper bound is recomputed across all actions: per-scenario best
	// first actions differ, so inheriting the searched action's bound is
	// incorrect. Not necessarily monotone.
	best := -1
	bestVal := math.Inf(-1)
	for a, qa := range node.qnodes {
		if val := qa.reward + s.cfg.Discount*qa.upperBound(); val > bestVal+Tiny {
			bestVal = val
			best = a
		}
	}
	node.upper = bestVal
	node.bestUBAction = best

	if node.lower > node.upper+Tiny {
		panic(fmt.Sprintf("backup left lower bound %v above upper bound %v at depth %d",
			node.lower, node.upper, node.depth))
	}

	if !node.inTree {
		node.inTree = true
		added++
	}
	node.treeSize += added
	return added
}

// expandOneStep creates one qnode per action, partitioning stepped particle
// copies by emitted observation. Each new child belief is seeded with the
// bound heuristics at depth+1.
func (s *Solver[S]) expandOneStep(node *vnode[S]) {
	numActions := s.model.NumActions()
	node.qnodes = make([]*qnode[S], 0, numActions)

	best := -1
	bestVal := math.Inf(-1)
	for a := 0; a < numActions; a++ {
		groups := make(map[pomdp.Observation][]pomdp.Particle[S])
		reward := 0.0
		for _, p := range node.particles {
			state := s.model.Copy(p.State)
			r, obs := s.model.Step(state, s.streams.Entry(p.ID, node.depth), a)
			if s.model.IsTerminal(state) != (obs == s.model.TerminalObs()) {
				panic(fmt.Sprintf(
					"model emitted observation %d for scenario %d under action %d: terminal states and the terminal observation must coincide",
					obs, p.ID, a))
			}
			groups[obs] = append(groups[obs], pomdp.Particle[S]{State: state, ID: p.ID, Weight: p.Weight})
			reward += p.Weight * r
		}
		reward /= node.weight

		q := newQNode[S](a, node.depth, reward, node.weight)
		for _, obs := range sortedObs(groups) {
			q.add(obs, s.newVNode(groups[obs], node.depth+1))
		}
		node.qnodes = append(node.qnodes, q)

		if val := reward + s.cfg.Discount*q.upperBound(); val > bestVal+Tiny {
			bestVal = val
			best = a
		}
	}
	if best == -1 {
		panic("no best upper-bound action after expansion")
	}
	node.bestUBAction = best
}

// bestWEUO picks the observation branch with the highest weighted excess
// uncertainty relative to the root bounds, or nil when no branch is worth
// tightening further.
func (s *Solver[S]) bestWEUO(q *qnode[S]) (pomdp.Observation, *vnode[S]) {
	var bestObs pomdp.Observation
	var best *vnode[S]
	bestScore := 0.0
	for _, obs := range q.obsKeys {
		c := q.children[obs]
		score := c.weight / q.parentWeight *
			excessUncertainty(c.lower, c.upper, s.root.lower, s.root.upper, c.depth, s.cfg)
		if score > bestScore {
			bestScore = score
			best = c
			bestObs = obs
		}
	}
	return bestObs, best
}

// excessUncertainty is the discount-normalized bound gap less the
// root-referenced regularization baseline.
func excessUncertainty(lower, upper, rootLower, rootUpper float64, depth int, cfg Config) float64 {
	return (upper-lower)*math.Pow(cfg.Discount, float64(-depth)) - cfg.Xi*(rootUpper-rootLower)
}

func sortedObs[S any](groups map[pomdp.Observation][]pomdp.Particle[S]) []pomdp.Observation {
	keys := make([]pomdp.Observation, 0, len(groups))
	for obs := range groups {
		keys = append(keys, obs)
	}
	slices.Sort(keys)
	return keys
}
