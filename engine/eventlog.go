package engine

import (
	"time"

	"monopoly/protocol"
)

// Log is the append-only event sequence of one run. It owns sequence
// numbering: seq starts at 1, increases by exactly one per event, and is
// never reused. Timestamps are observability only and carry no game meaning.
type Log struct {
	events []protocol.Event
	seq    uint64
	now    func() time.Time
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append stamps a batch with sequence numbers and timestamps and stores it,
// returning the stamped events.
func (l *Log) Append(events []protocol.Event) []protocol.Event {
	for i := range events {
		l.seq++
		events[i].Seq = l.seq
		events[i].Timestamp = l.now().UnixMilli()
	}
	l.events = append(l.events, events...)
	return events
}

// Seq is the sequence number of the latest event, 0 when empty.
func (l *Log) Seq() uint64 {
	return l.seq
}

// Events returns a copy of the full log.
func (l *Log) Events() []protocol.Event {
	out := make([]protocol.Event, len(l.events))
	copy(out, l.events)
	return out
}
