package metrics

import (
	"monopoly/protocol"
)

// Collector tallies decisions while a game runs. It satisfies the engine's
// sink interface, so it rides along a run next to the artifact store.
type Collector struct {
	game      int
	ordinal   int
	decisions []DecisionRecord
	retried   int
	fallbacks int
}

// NewCollector numbers its rows with the given game id.
func NewCollector(game int) *Collector {
	return &Collector{game: game}
}

func (c *Collector) WriteEvent(protocol.Event) error       { return nil }
func (c *Collector) WriteSnapshot(protocol.Snapshot) error { return nil }

func (c *Collector) WriteDecision(rec protocol.DecisionRecord) error {
	c.ordinal++
	var elapsed int64
	for _, attempt := range rec.Attempts {
		elapsed += attempt.ElapsedMS
	}
	switch rec.Outcome {
	case protocol.OutcomeRetried:
		c.retried++
	case protocol.OutcomeFallback:
		c.fallbacks++
	}
	c.decisions = append(c.decisions, DecisionRecord{
		Game:      c.game,
		Ordinal:   c.ordinal,
		Turn:      rec.Turn,
		Type:      rec.Type,
		Player:    rec.Player,
		Outcome:   string(rec.Outcome),
		Attempts:  len(rec.Attempts),
		ElapsedMS: elapsed,
	})
	return nil
}

// Decisions returns the collected rows.
func (c *Collector) Decisions() []DecisionRecord {
	return c.decisions
}

// Retried counts decisions that needed the second attempt.
func (c *Collector) Retried() int {
	return c.retried
}

// Fallbacks counts decisions resolved by the engine fallback.
func (c *Collector) Fallbacks() int {
	return c.fallbacks
}
