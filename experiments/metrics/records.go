package metrics

import "time"

// SeatConfig describes one seat in a matchup.
type SeatConfig struct {
	Seat int
	Name string
	Kind string // greedy, random, http
	URL  string // http kind only
}

// GameMetric is collected per completed game.
type GameMetric struct {
	Winner    string
	Turns     int
	Events    uint64
	Decisions int
	Retried   int
	Fallbacks int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// GameRecord ties a game metric to the run it came from.
type GameRecord struct {
	ID    int
	RunID string
	Seed  uint64
	GameMetric
}

// DecisionRecord is one row per decision across the experiment.
type DecisionRecord struct {
	Game      int
	Ordinal   int
	Turn      int
	Type      string
	Player    string
	Outcome   string
	Attempts  int
	ElapsedMS int64
}
