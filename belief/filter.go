package belief

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"planner/pomdp"
	"planner/utils"
)

// updateAttemptFactor bounds the rejection loop in Update at factor*k
// attempts: a degenerate observation must not wedge an episode.
const updateAttemptFactor = 100

// Filter is a sampling-importance-resampling belief updater. Sampling
// assigns each particle a distinct scenario stream id; posterior updates
// use rejection on the committed observation.
type Filter[S any] struct {
	model   pomdp.Model[S]
	streams *pomdp.RandomStreams
	rng     *rand.Rand
}

func NewFilter[S any](model pomdp.Model[S], streams *pomdp.RandomStreams) *Filter[S] {
	return &Filter[S]{
		model:   model,
		streams: streams,
		rng:     rand.New(rand.NewSource(streams.BeliefUpdateSeed())),
	}
}

// Sample resamples k particles from the pool by weight. Stream ids are
// drawn without replacement so each scenario is represented at most once.
func (f *Filter[S]) Sample(pool []pomdp.Particle[S], k int) []pomdp.Particle[S] {
	if k > f.streams.NumStreams() {
		panic("cannot sample more particles than scenario streams")
	}

	weights := make([]float64, len(pool))
	for i, p := range pool {
		weights[i] = p.Weight
	}
	ids := f.rng.Perm(f.streams.NumStreams())[:k]

	particles := make([]pomdp.Particle[S], k)
	for i := range particles {
		src := pool[utils.WeightedPick(f.rng.Float64(), weights)]
		particles[i] = pomdp.Particle[S]{
			State:  f.model.Copy(src.State),
			ID:     ids[i],
			Weight: 1.0 / float64(k),
		}
	}
	return particles
}

// Update produces the posterior after committing (action, obs): resampled
// particles are stepped forward and kept only when they reproduce the
// committed observation. If too few particles match, the remainder is
// filled without rejection so the episode can continue on a degenerate
// observation.
func (f *Filter[S]) Update(particles []pomdp.Particle[S], k int, action int, obs pomdp.Observation) []pomdp.Particle[S] {
	weights := make([]float64, len(particles))
	for i, p := range particles {
		weights[i] = p.Weight
	}
	ids := f.rng.Perm(f.streams.NumStreams())[:k]

	posterior := make([]pomdp.Particle[S], 0, k)
	attempts := 0
	for len(posterior) < k && attempts < k*updateAttemptFactor {
		attempts++
		src := particles[utils.WeightedPick(f.rng.Float64(), weights)]
		state := f.model.Copy(src.State)
		if _, simObs := f.model.Step(state, f.rng.Float64(), action); simObs != obs {
			f.model.Free(state)
			continue
		}
		posterior = append(posterior, pomdp.Particle[S]{
			State:  state,
			ID:     ids[len(posterior)],
			Weight: 1.0 / float64(k),
		})
	}

	if len(posterior) < k {
		log.Warn().Msgf("belief update matched %d of %d particles for observation %d after %d attempts; filling without rejection",
			len(posterior), k, obs, attempts)
		for len(posterior) < k {
			src := particles[utils.WeightedPick(f.rng.Float64(), weights)]
			state := f.model.Copy(src.State)
			f.model.Step(state, f.rng.Float64(), action)
			posterior = append(posterior, pomdp.Particle[S]{
				State:  state,
				ID:     ids[len(posterior)],
				Weight: 1.0 / float64(k),
			})
		}
	}
	return posterior
}

func (f *Filter[S]) Reset() {
	f.rng = rand.New(rand.NewSource(f.streams.BeliefUpdateSeed()))
}
