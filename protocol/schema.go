package protocol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"
)

// BoundaryRecords lists every versioned record shape shared with external
// collaborators, keyed by schema file name.
func BoundaryRecords() map[string]any {
	return map[string]any{
		"snapshot":         &Snapshot{},
		"event":            &Event{},
		"decision_point":   &DecisionPoint{},
		"decision_request": &DecisionRequest{},
		"action":           &Action{},
		"decision_record":  &DecisionRecord{},
		"handshake":        &Handshake{},
	}
}

// WriteSchemas reflects a JSON Schema for each boundary record into dir, one
// file per record, so collaborators can validate messages without importing
// this module.
func WriteSchemas(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	records := BoundaryRecords()
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	reflector := jsonschema.Reflector{}
	for _, name := range names {
		schema := reflector.Reflect(records[name])
		schema.Title = name
		schema.Description = fmt.Sprintf("schema_version %d", SchemaVersion)

		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s schema: %w", name, err)
		}

		path := filepath.Join(dir, name+".schema.json")
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s schema: %w", name, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("replace %s schema: %w", name, err)
		}
	}
	return nil
}
