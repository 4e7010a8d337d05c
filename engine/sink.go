package engine

import "monopoly/protocol"

// Sink persists run artifacts: every committed event, per-turn snapshots, and
// per-decision audit records. Writes happen on the engine goroutine; a write
// error aborts the run.
type Sink interface {
	WriteEvent(protocol.Event) error
	WriteSnapshot(protocol.Snapshot) error
	WriteDecision(protocol.DecisionRecord) error
}

// Broadcaster pushes committed events and snapshots to observers. Delivery is
// best effort and must never block the engine.
type Broadcaster interface {
	BroadcastEvent(protocol.Event)
	BroadcastSnapshot(protocol.Snapshot)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) WriteEvent(protocol.Event) error             { return nil }
func (NopSink) WriteSnapshot(protocol.Snapshot) error       { return nil }
func (NopSink) WriteDecision(protocol.DecisionRecord) error { return nil }

// NopBroadcaster drops everything.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastEvent(protocol.Event)       {}
func (NopBroadcaster) BroadcastSnapshot(protocol.Snapshot) {}

// MultiSink fans each write out to every member, stopping at the first error.
type MultiSink []Sink

func (m MultiSink) WriteEvent(ev protocol.Event) error {
	for _, s := range m {
		if err := s.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) WriteSnapshot(snap protocol.Snapshot) error {
	for _, s := range m {
		if err := s.WriteSnapshot(snap); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) WriteDecision(rec protocol.DecisionRecord) error {
	for _, s := range m {
		if err := s.WriteDecision(rec); err != nil {
			return err
		}
	}
	return nil
}

// MultiBroadcaster forwards to every member.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) BroadcastEvent(ev protocol.Event) {
	for _, b := range m {
		b.BroadcastEvent(ev)
	}
}

func (m MultiBroadcaster) BroadcastSnapshot(snap protocol.Snapshot) {
	for _, b := range m {
		b.BroadcastSnapshot(snap)
	}
}
