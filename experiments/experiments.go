package experiments

import (
	"time"

	"github.com/rs/zerolog/log"

	"planner/belief"
	"planner/bound"
	"planner/engine"
	"planner/experiments/metrics"
	"planner/pomdp"
	"planner/searcher"
	"planner/tiger"
)

// RunTigerBenchmark plays cfg.Episodes episodes of the tiger problem, one
// planner per episode, and writes episode and step records as CSV.
func RunTigerBenchmark(cfg Config) error {
	writer, err := metrics.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	log.Info().Msgf("starting tiger benchmark: %d episodes, budget %s, output %s",
		cfg.Episodes, time.Duration(cfg.TimeBudget), writer.BaseDir())

	episodeRecords := []metrics.EpisodeRecord{}
	stepRecords := []metrics.StepRecord{}
	for i := 0; i < cfg.Episodes; i++ {
		start := time.Now()
		ret, steps := runTigerEpisode(cfg, cfg.Seed+uint64(i))

		episodeRecords = append(episodeRecords, metrics.EpisodeRecord{
			ID:        i,
			Return:    ret,
			Steps:     len(steps),
			StartTime: start,
			Duration:  time.Since(start),
		})
		for step, result := range steps {
			stepRecords = append(stepRecords, metrics.StepRecord{
				Episode:   i,
				Step:      step,
				Action:    result.Action,
				Trials:    result.Search.Trials,
				TreeNodes: result.Search.TreeNodes,
				Duration:  result.Search.Duration,
			})
		}
		log.Info().Msgf("episode %d of %d: return=%.2f steps=%d", i+1, cfg.Episodes, ret, len(steps))
	}

	err = writer.WriteEpisodeRecords(episodeRecords)
	if err != nil {
		return err
	}
	err = writer.WriteStepRecords(stepRecords)
	if err != nil {
		return err
	}

	log.Info().Msgf("finished tiger benchmark")
	return nil
}

func runTigerEpisode(cfg Config, seed uint64) (float64, []engine.StepResult) {
	model := tiger.NewModel()
	streams := pomdp.NewRandomStreams(cfg.NumParticles, cfg.SearchDepth, seed)
	initial := model.InitialBelief()

	filter := belief.NewFilter[*tiger.State](model, streams)
	lb := bound.NewModePolicy[*tiger.State](model, model, model, streams, cfg.Discount)
	ub := bound.NewHindsight[*tiger.State](model, model, model, streams.Length())

	solver := searcher.NewSolver[*tiger.State](model, initial, lb, ub, filter, streams,
		searcher.WithNumParticles(cfg.NumParticles),
		searcher.WithSearchDepth(cfg.SearchDepth),
		searcher.WithDiscount(cfg.Discount),
		searcher.WithXi(cfg.Xi),
		searcher.WithMetrics(),
	)

	e := engine.NewLocal[*tiger.State](model, solver, initial, streams, cfg.Discount, time.Duration(cfg.TimeBudget))
	defer e.Close()

	ret, steps := e.Run()

	for _, p := range initial {
		model.Free(p.State)
	}
	return ret, steps
}
