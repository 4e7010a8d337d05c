package artifacts

import (
	"context"

	"monopoly/protocol"
)

// Recorder binds a Store to a single run and satisfies the engine's sink
// interface. It numbers decisions in arrival order so replays can fetch the
// action sequence back out with ListActions.
type Recorder struct {
	store   *Store
	runID   string
	ordinal int
}

// NewRecorder registers the run in the store and returns a sink for it.
func NewRecorder(ctx context.Context, store *Store, meta RunMeta) (*Recorder, error) {
	if err := store.CreateRun(ctx, meta); err != nil {
		return nil, err
	}
	return &Recorder{store: store, runID: meta.RunID}, nil
}

func (r *Recorder) WriteEvent(ev protocol.Event) error {
	return r.store.AppendEvent(context.Background(), r.runID, ev)
}

func (r *Recorder) WriteSnapshot(snap protocol.Snapshot) error {
	return r.store.AppendSnapshot(context.Background(), r.runID, snap)
}

func (r *Recorder) WriteDecision(rec protocol.DecisionRecord) error {
	r.ordinal++
	return r.store.AppendDecision(context.Background(), r.runID, r.ordinal, rec)
}

// Finish closes out the run registry row with the result.
func (r *Recorder) Finish(ctx context.Context, winner string, turns int, finishedMS int64) error {
	return r.store.FinishRun(ctx, r.runID, winner, turns, finishedMS)
}
