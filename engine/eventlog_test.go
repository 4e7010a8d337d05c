package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monopoly/protocol"
)

func TestLogAppend(t *testing.T) {
	l := NewLog()
	tick := 0
	l.now = func() time.Time {
		tick++
		return time.UnixMilli(int64(1_700_000_000_000 + tick))
	}

	first := l.Append([]protocol.Event{{Type: "a"}, {Type: "b"}})

	require.Equal(t, uint64(1), first[0].Seq)
	require.Equal(t, uint64(2), first[1].Seq)
	require.Equal(t, int64(1_700_000_000_001), first[0].Timestamp)
	require.Equal(t, int64(1_700_000_000_002), first[1].Timestamp)
	require.Equal(t, uint64(2), l.Seq())

	second := l.Append([]protocol.Event{{Type: "c"}})
	require.Equal(t, uint64(3), second[0].Seq, "Numbering should continue across batches")
	require.Equal(t, uint64(3), l.Seq())

	require.Empty(t, l.Append(nil), "An empty batch should change nothing")
	require.Equal(t, uint64(3), l.Seq())
}

func TestLogEventsCopy(t *testing.T) {
	l := NewLog()
	l.Append([]protocol.Event{{Type: "a"}})

	events := l.Events()
	events[0].Type = "mutated"

	require.Equal(t, "a", l.Events()[0].Type, "Callers should not reach the backing array")
}
