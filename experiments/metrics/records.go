package metrics

import "time"

// EpisodeRecord captures one episode of a benchmark run.
type EpisodeRecord struct {
	ID        int
	Return    float64
	Steps     int
	StartTime time.Time
	Duration  time.Duration
}

// StepRecord captures one search within an episode.
type StepRecord struct {
	Episode   int
	Step      int
	Action    int
	Trials    int
	TreeNodes int
	Duration  time.Duration
}
