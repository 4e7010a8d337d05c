// Package replay canonicalizes event logs and verifies that a stored run can
// be regenerated byte for byte from its seed and resolved actions.
package replay

import (
	"bytes"
	"encoding/json"
	"fmt"

	"monopoly/protocol"
)

// CanonicalLine renders one event in canonical form: the wall-clock timestamp
// is dropped and the whole event is re-encoded through a generic value so all
// object keys come out sorted. Struct-backed payloads from a live run and
// map-backed payloads loaded from the store produce the same bytes.
func CanonicalLine(ev protocol.Event) ([]byte, error) {
	ev.Timestamp = 0
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event seq %d: %w", ev.Seq, err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("reshape event seq %d: %w", ev.Seq, err)
	}
	line, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("re-encode event seq %d: %w", ev.Seq, err)
	}
	return line, nil
}

// CanonicalLog renders a full log as newline-delimited canonical JSON.
func CanonicalLog(events []protocol.Event) ([]byte, error) {
	var buf bytes.Buffer
	for _, ev := range events {
		line, err := CanonicalLine(ev)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
