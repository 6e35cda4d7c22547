package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/merger"
	"github.com/jsonprof/jsonprof/internal/models"
)

func TestFindSchemaReports(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full_schema_report.json")
	single := filepath.Join(dir, "single_agent_schema_report.json")
	for _, p := range []string{full, single} {
		require.NoError(t, os.WriteFile(p, []byte(`{}`), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata_summary.json"), []byte(`{}`), 0644))

	all, err := FindSchemaReports(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{full, single}, all)

	filtered, err := FindSchemaReports(dir, []string{"single_agent"})
	require.NoError(t, err)
	assert.Equal(t, []string{single}, filtered)
}

func TestFindSchemaReports_NoneFound(t *testing.T) {
	_, err := FindSchemaReports(t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoReports)
}

func TestReadSchemaReport_FolderFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy_schema_report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files_count": 1}`), 0644))

	rep, err := ReadSchemaReport(path)
	require.NoError(t, err)
	assert.Equal(t, "legacy", rep.Folder)
	assert.Equal(t, 1, rep.FilesCount)
}

func TestBuildUniquePaths(t *testing.T) {
	dir := t.TempDir()
	only := filepath.Join(dir, "only.json")
	require.NoError(t, os.WriteFile(only, []byte(`{"shared": 1,`+"\n"+`"special_key": "rare value"}`), 0644))

	schemas := []models.FileSchema{
		fileSchema(t, only, `{"shared": 1, "special_key": "rare value"}`),
		fileSchema(t, "other.json", `{"shared": 2}`),
	}
	rep := BuildSchemaReport("full", schemas, merger.Merge(schemas))

	out := BuildUniquePaths(rep, true, DefaultSnippetContext)
	assert.Equal(t, "full", out.Folder)
	require.Len(t, out.UniquePaths, 1)

	up := out.UniquePaths[0]
	assert.Equal(t, "special_key", up.Path)
	assert.Equal(t, []string{"string"}, up.Types)
	assert.Equal(t, only, up.File)
	require.NotNil(t, up.Snippet)
	// The snippet flattens newlines and carries the surrounding text.
	assert.Contains(t, *up.Snippet, `"special_key"`)
	assert.NotContains(t, *up.Snippet, "\n")
}

func TestBuildUniquePaths_NoSnippets(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "a.json", `{"x": 1}`),
		fileSchema(t, "b.json", `{"shared": 1}`),
	}
	rep := BuildSchemaReport("full", schemas, merger.Merge(schemas))

	out := BuildUniquePaths(rep, false, 0)
	require.Len(t, out.UniquePaths, 2)
	for _, up := range out.UniquePaths {
		assert.Nil(t, up.Snippet)
	}
}

func TestKeyNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"rootElements[].description", "description"},
		{"a.b.c", "c"},
		{"top", "top"},
		{"items[]", "items"},
		{models.RootPath, models.RootPath},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyNameFromPath(tt.path), "path %q", tt.path)
	}
}

func TestExtractSnippet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	content := `{"before": "` + strings.Repeat("a", 200) + `", "needle": true, "after": "` + strings.Repeat("z", 200) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	snippet := ExtractSnippet(path, "needle", 10)
	require.NotNil(t, snippet)
	assert.Contains(t, *snippet, `"needle"`)
	// 10 chars each side plus the quoted key itself.
	assert.Len(t, *snippet, 10+len(`"needle"`)+10)

	assert.Nil(t, ExtractSnippet(path, "absent", 10))
	assert.Nil(t, ExtractSnippet(filepath.Join(dir, "missing.json"), "needle", 10))
}

func TestWriteUniquePaths(t *testing.T) {
	dir := t.TempDir()
	snippet := "…context…"
	rep := models.UniquePathsReport{
		Folder: "full",
		UniquePaths: []models.UniquePath{
			{Path: "a.b", Types: []string{"number", "string"}, File: "x.json", Snippet: &snippet},
			{Path: "c", Types: []string{"null"}, File: "y.json"},
		},
	}

	jsonPath, csvPath, err := WriteUniquePaths(dir, rep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "full_unique_paths.json"), jsonPath)
	assert.Equal(t, filepath.Join(dir, "full_unique_paths.csv"), csvPath)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "path,types,file,snippet", lines[0])
	assert.Contains(t, lines[1], "number;string")
}
