package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonprof/jsonprof/internal/merger"
	"github.com/jsonprof/jsonprof/internal/models"
	"github.com/jsonprof/jsonprof/internal/parser"
	"github.com/jsonprof/jsonprof/internal/walker"
)

func fileSchema(t *testing.T, file, doc string) models.FileSchema {
	t.Helper()
	v, err := parser.ParseString(doc)
	require.NoError(t, err)
	return models.FileSchema{File: file, PathTypes: walker.PathTypes(v, walker.DefaultArraySample)}
}

func TestBuildSchemaReport(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "a.json", `{"name": "x"}`),
		fileSchema(t, "b.json", `{"name": 1}`),
	}
	merged := merger.Merge(schemas)
	rep := BuildSchemaReport("full", schemas, merged)

	assert.Equal(t, "full", rep.Folder)
	assert.Equal(t, 2, rep.FilesCount)
	assert.Equal(t, []string{"a.json", "b.json"}, rep.Files)
	assert.Equal(t, merged, rep.MergedSchema)
	assert.Equal(t, 1, rep.Summary.TypeConflictCount)
}

func TestWriteSchemaReport(t *testing.T) {
	dir := t.TempDir()
	schemas := []models.FileSchema{
		fileSchema(t, "a.json", `{"name": "x", "extra": true}`),
		fileSchema(t, "b.json", `{"name": 1}`),
	}
	rep := BuildSchemaReport("full", schemas, merger.Merge(schemas))

	jsonPath, mdPath, err := WriteSchemaReport(dir, rep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "full_schema_report.json"), jsonPath)
	assert.Equal(t, filepath.Join(dir, "full_schema_summary.md"), mdPath)

	// The JSON report round-trips.
	loaded, err := ReadSchemaReport(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "full", loaded.Folder)
	assert.Equal(t, 2, loaded.FilesCount)
	rec := loaded.MergedSchema["name"]
	require.NotNil(t, rec)
	assert.Equal(t, []string{"number", "string"}, rec.Types)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	text := string(md)
	assert.True(t, strings.HasPrefix(text, "# Schema report for full\n"))
	assert.Contains(t, text, "Files analyzed: 2")
	assert.Contains(t, text, "Paths with type conflicts: 1 (examples: [name])")
	assert.Contains(t, text, "Unique paths (present in only 1 file): 1 (examples: [extra])")
}

func TestWriteJSON_Deterministic(t *testing.T) {
	dir := t.TempDir()
	v := map[string]int{"zebra": 1, "apple": 2, "mango": 3}

	path1 := filepath.Join(dir, "one.json")
	path2 := filepath.Join(dir, "two.json")
	require.NoError(t, WriteJSON(path1, v))
	require.NoError(t, WriteJSON(path2, v))

	one, err := os.ReadFile(path1)
	require.NoError(t, err)
	two, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, one, two)
	// Map keys come out sorted.
	assert.Less(t, strings.Index(string(one), "apple"), strings.Index(string(one), "zebra"))
	assert.True(t, strings.HasSuffix(string(one), "\n"))
}

func TestWriteJSON_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.json")
	require.NoError(t, WriteJSON(path, map[string]string{"a": "b"}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
