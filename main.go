package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"planner/experiments"
)

func main() {
	cfg := experiments.DefaultConfig()
	if len(os.Args) > 1 {
		loaded, err := experiments.LoadConfig(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}

	err := experiments.RunTigerBenchmark(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("benchmark failed")
	}
}
