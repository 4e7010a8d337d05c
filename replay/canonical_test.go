package replay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"monopoly/game"
	"monopoly/protocol"
)

func rentEvent(seq uint64, amount int, ts int64) protocol.Event {
	return protocol.Event{
		SchemaVersion: protocol.SchemaVersion,
		Seq:           seq,
		Turn:          3,
		Phase:         "resolving_move",
		Actor:         "alice",
		Type:          game.EventRentPaid,
		Payload:       game.RentPayload{Player: "alice", Owner: "bob", Space: 9, Amount: amount},
		Timestamp:     ts,
	}
}

func TestCanonicalLine(t *testing.T) {
	t.Run("drops the wall clock timestamp", func(t *testing.T) {
		early := rentEvent(4, 12, 1_700_000_000_000)
		late := rentEvent(4, 12, 1_700_000_009_999)

		a, err := CanonicalLine(early)
		require.NoError(t, err, "Canonicalizing a well-formed event should succeed")
		b, err := CanonicalLine(late)
		require.NoError(t, err, "Canonicalizing a well-formed event should succeed")

		require.Equal(t, a, b, "Events differing only in timestamp should canonicalize identically")
		require.NotContains(t, string(a), "ts_ms", "Canonical form should carry no timestamp field")
	})

	t.Run("struct and map payloads produce the same bytes", func(t *testing.T) {
		live := rentEvent(4, 12, 1_700_000_000_000)
		stored := live
		stored.Payload = map[string]any{
			"player": "alice",
			"owner":  "bob",
			"space":  9,
			"amount": 12,
		}

		a, err := CanonicalLine(live)
		require.NoError(t, err)
		b, err := CanonicalLine(stored)
		require.NoError(t, err)

		require.Equal(t, a, b, "A payload loaded back as a map should match its struct form")
	})

	t.Run("object keys come out sorted", func(t *testing.T) {
		line, err := CanonicalLine(rentEvent(4, 12, 0))
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(string(line), `{"actor":"alice"`),
			"Canonical JSON should start with the alphabetically first key, got %s", line)
	})
}

func TestCanonicalLog(t *testing.T) {
	events := []protocol.Event{
		rentEvent(1, 6, 100),
		rentEvent(2, 12, 200),
		rentEvent(3, 24, 300),
	}

	log, err := CanonicalLog(events)
	require.NoError(t, err, "Canonicalizing a log should succeed")

	lines := strings.Split(strings.TrimSuffix(string(log), "\n"), "\n")
	require.Len(t, lines, len(events), "Log should hold one line per event")
	for i, ev := range events {
		want, err := CanonicalLine(ev)
		require.NoError(t, err)
		require.Equal(t, string(want), lines[i], "Line %d should be the event's canonical form", i)
	}
}

func TestCompare(t *testing.T) {
	recorded := []protocol.Event{
		rentEvent(1, 6, 100),
		rentEvent(2, 12, 200),
		rentEvent(3, 24, 300),
	}

	t.Run("identical logs match despite timestamps", func(t *testing.T) {
		replayed := []protocol.Event{
			rentEvent(1, 6, 0),
			rentEvent(2, 12, 0),
			rentEvent(3, 24, 0),
		}

		div, err := Compare(recorded, replayed)

		require.NoError(t, err, "Comparing well-formed logs should succeed")
		require.Nil(t, div, "Logs differing only in timestamps should match")
	})

	t.Run("first mutated event is reported", func(t *testing.T) {
		replayed := []protocol.Event{
			rentEvent(1, 6, 0),
			rentEvent(2, 99, 0),
			rentEvent(3, 24, 0),
		}

		div, err := Compare(recorded, replayed)

		require.NoError(t, err)
		require.NotNil(t, div, "A changed payload should diverge")
		require.Equal(t, uint64(2), div.Seq, "Divergence should carry the first mismatched seq")
		require.Contains(t, div.Want, `"amount":12`, "Want should hold the recorded line")
		require.Contains(t, div.Got, `"amount":99`, "Got should hold the replayed line")
	})

	t.Run("truncated replay is reported", func(t *testing.T) {
		div, err := Compare(recorded, recorded[:2])

		require.NoError(t, err)
		require.NotNil(t, div, "A shorter replay should diverge")
		require.Equal(t, uint64(3), div.Seq, "Divergence should sit at the first missing seq")
		require.NotEmpty(t, div.Want, "Want should hold the unmatched recorded line")
		require.Empty(t, div.Got, "Got should be empty when the replay ended early")
	})

	t.Run("extra replay event is reported", func(t *testing.T) {
		replayed := append(append([]protocol.Event{}, recorded...), rentEvent(4, 48, 0))

		div, err := Compare(recorded, replayed)

		require.NoError(t, err)
		require.NotNil(t, div, "A longer replay should diverge")
		require.Equal(t, uint64(4), div.Seq, "Divergence should sit at the first extra seq")
		require.Empty(t, div.Want, "Want should be empty when the replay ran long")
		require.NotEmpty(t, div.Got, "Got should hold the extra replayed line")
	})
}

func TestDivergenceString(t *testing.T) {
	t.Run("truncation", func(t *testing.T) {
		d := &Divergence{Seq: 7, Want: `{"seq":7}`}
		require.Equal(t, `seq 7: replay log ended early, recorded {"seq":7}`, d.String())
	})

	t.Run("extra event", func(t *testing.T) {
		d := &Divergence{Seq: 7, Got: `{"seq":7}`}
		require.Equal(t, `seq 7: replay produced extra event {"seq":7}`, d.String())
	})

	t.Run("mismatch", func(t *testing.T) {
		d := &Divergence{Seq: 7, Want: `{"a":1}`, Got: `{"a":2}`}
		require.Equal(t, "seq 7:\n  recorded: {\"a\":1}\n  replayed: {\"a\":2}", d.String())
	})
}
