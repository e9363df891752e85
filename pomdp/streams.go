package pomdp

import "golang.org/x/exp/rand"

// RandomStreams pre-samples the random numbers used in state transitions
// during simulation: one stream per scenario, one draw per depth. Action
// sequences are compared against the same stochastic realization, so every
// hypothetical branch sees identical future randomness.
//
// The table also derives fixed seeds for the other components of the
// system, so a single construction seed pins down an entire run. Streams
// and seeds never change for the lifetime of a search.
type RandomStreams struct {
	streams [][]float64
	seed    uint64
}

// NewRandomStreams fills a numStreams x length table of uniform draws in
// [0,1), seeding the stream s PRNG with seed XOR s.
func NewRandomStreams(numStreams, length int, seed uint64) *RandomStreams {
	streams := make([][]float64, numStreams)
	for s := range streams {
		rng := rand.New(rand.NewSource(seed ^ uint64(s)))
		draws := make([]float64, length)
		for d := range draws {
			draws[d] = rng.Float64()
		}
		streams[s] = draws
	}
	return &RandomStreams{streams: streams, seed: seed}
}

func (rs *RandomStreams) NumStreams() int {
	return len(rs.streams)
}

func (rs *RandomStreams) Length() int {
	if len(rs.streams) == 0 {
		return 0
	}
	return len(rs.streams[0])
}

// Entry returns the scenario's draw at the given depth.
func (rs *RandomStreams) Entry(stream, depth int) float64 {
	return rs.streams[stream][depth]
}

func (rs *RandomStreams) WorldSeed() uint64 {
	return rs.seed ^ uint64(len(rs.streams))
}

func (rs *RandomStreams) BeliefUpdateSeed() uint64 {
	return rs.seed ^ uint64(len(rs.streams)+1)
}

func (rs *RandomStreams) ModelSeed() uint64 {
	return rs.seed ^ uint64(len(rs.streams)+2)
}
