package protocol

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteSchemas(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schemas")

	require.NoError(t, WriteSchemas(dir))

	for name := range BoundaryRecords() {
		data, err := os.ReadFile(filepath.Join(dir, name+".schema.json"))
		require.NoError(t, err, "Every boundary record should get a schema file")

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc), "Schema files should be valid JSON")
		require.Equal(t, name, doc["title"])
		require.Contains(t, doc["description"], "schema_version 1")
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, len(BoundaryRecords()), "No stray files besides the schemas")
}
