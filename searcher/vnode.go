package searcher

import (
	"math"

	"planner/pomdp"
)

// vnode is a belief node: it owns a weighted particle set and, once
// expanded, one qnode per action. Bounds are per-unit-weight values over
// the belief; lower never exceeds upper by more than Tiny.
type vnode[S any] struct {
	particles []pomdp.Particle[S]
	depth     int
	weight    float64

	lower float64
	upper float64

	// Lower bound as seeded at construction: the value realizable by the
	// default policy alone. The pruning pass compares actions against this,
	// not the searched lower bound.
	lowerSeed float64

	defaultAction int
	bestUBAction  int

	qnodes []*qnode[S] // nil until expanded; terminal beliefs never expand

	inTree       bool
	treeSize     int
	prunedAction int
}

// lowerBoundAction returns the action maximizing the one-step lower bound,
// -1 when the node has no children. Ties go to the earliest action.
func (v *vnode[S]) lowerBoundAction(discount float64) int {
	best := -1
	bestVal := math.Inf(-1)
	for a, q := range v.qnodes {
		if val := q.reward + discount*q.lowerBound(); val > bestVal+Tiny {
			bestVal = val
			best = a
		}
	}
	return best
}

// prune computes the penalized realizable value of the subtree in
// unnormalized terms: in-tree children contribute their searched values,
// fringe children the value realizable by the default policy, and every
// node costs PruningConstant. prunedAction records the surviving action,
// -1 when falling back to the default policy beats every action.
func (v *vnode[S]) prune(cfg Config) float64 {
	v.prunedAction = -1
	best := v.weight * v.lowerSeed
	if v.inTree && v.qnodes != nil {
		for a, q := range v.qnodes {
			if val := q.prune(cfg); val > best+Tiny {
				best = val
				v.prunedAction = a
			}
		}
	}
	return best - cfg.PruningConstant
}

// dropPruned releases every subtree the pruning pass made unreachable.
func (v *vnode[S]) dropPruned(m pomdp.Model[S]) {
	if v.qnodes == nil {
		return
	}
	for a, q := range v.qnodes {
		if a == v.prunedAction {
			for _, obs := range q.obsKeys {
				q.children[obs].dropPruned(m)
			}
		} else {
			q.free(m)
		}
	}
	if v.prunedAction == -1 {
		v.qnodes = nil
	}
}

// free recursively releases the subtree's particles back to the model.
func (v *vnode[S]) free(m pomdp.Model[S]) {
	for _, p := range v.particles {
		m.Free(p.State)
	}
	v.particles = nil
	for _, q := range v.qnodes {
		q.free(m)
	}
	v.qnodes = nil
}
