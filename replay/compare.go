package replay

import (
	"bytes"
	"fmt"

	"monopoly/protocol"
)

// Divergence pinpoints the first event where two logs disagree. An empty Want
// or Got means that side's log ended early.
type Divergence struct {
	Seq  uint64
	Want string
	Got  string
}

func (d *Divergence) String() string {
	switch {
	case d.Got == "":
		return fmt.Sprintf("seq %d: replay log ended early, recorded %s", d.Seq, d.Want)
	case d.Want == "":
		return fmt.Sprintf("seq %d: replay produced extra event %s", d.Seq, d.Got)
	default:
		return fmt.Sprintf("seq %d:\n  recorded: %s\n  replayed: %s", d.Seq, d.Want, d.Got)
	}
}

// Compare canonicalizes both logs and returns the first divergence, or nil
// when they are byte-identical.
func Compare(recorded, replayed []protocol.Event) (*Divergence, error) {
	n := len(recorded)
	if len(replayed) < n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		want, err := CanonicalLine(recorded[i])
		if err != nil {
			return nil, err
		}
		got, err := CanonicalLine(replayed[i])
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(want, got) {
			return &Divergence{Seq: recorded[i].Seq, Want: string(want), Got: string(got)}, nil
		}
	}
	switch {
	case len(recorded) > n:
		line, err := CanonicalLine(recorded[n])
		if err != nil {
			return nil, err
		}
		return &Divergence{Seq: recorded[n].Seq, Want: string(line)}, nil
	case len(replayed) > n:
		line, err := CanonicalLine(replayed[n])
		if err != nil {
			return nil, err
		}
		return &Divergence{Seq: replayed[n].Seq, Got: string(line)}, nil
	}
	return nil, nil
}
