package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jsonprof/jsonprof/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "experiments")
	require.NoError(t, os.MkdirAll(folder, 0755))

	writeFile(t, folder, "doc.json", `{"zeta": 1, "alpha": {"nested": true}}`)
	writeFile(t, folder, "sub/list.json", `[1, 2, 3]`)
	writeFile(t, folder, "broken.json", "{oops")
	writeFile(t, folder, "readme.txt", "not indexed")

	idx, err := Build(folder, DefaultPreviewLen)
	require.NoError(t, err)

	assert.Equal(t, 3, idx.FilesCount)
	require.Len(t, idx.Entries, 3)

	byName := make(map[string]int)
	for i, e := range idx.Entries {
		byName[filepath.Base(e.File)] = i
	}

	doc := idx.Entries[byName["doc.json"]]
	assert.True(t, doc.IsValidJSON)
	// Top-level keys keep document order, not sorted order.
	assert.Equal(t, []string{"zeta", "alpha"}, doc.TopLevelKeys)
	assert.Equal(t, filepath.Join("experiments", "doc.json"), doc.RelPath)
	assert.Equal(t, int64(len(`{"zeta": 1, "alpha": {"nested": true}}`)), doc.SizeBytes)
	assert.Contains(t, doc.Preview, `"zeta"`)

	list := idx.Entries[byName["list.json"]]
	assert.True(t, list.IsValidJSON)
	assert.Empty(t, list.TopLevelKeys)

	broken := idx.Entries[byName["broken.json"]]
	assert.False(t, broken.IsValidJSON)
	assert.Equal(t, "{oops", broken.Preview)
	assert.Empty(t, broken.TopLevelKeys)
}

func TestBuild_PreviewCap(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "big")
	require.NoError(t, os.MkdirAll(folder, 0755))

	long := `{"text": "` + strings.Repeat("x", 2000) + `"}`
	writeFile(t, folder, "big.json", long)

	idx, err := Build(folder, 100)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 1)
	assert.Len(t, []rune(idx.Entries[0].Preview), 100)
	assert.Equal(t, long[:100], idx.Entries[0].Preview)
}

func TestBuild_EntriesSorted(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(folder, 0755))
	writeFile(t, folder, "b.json", `{}`)
	writeFile(t, folder, "a.json", `{}`)

	idx, err := Build(folder, DefaultPreviewLen)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 2)
	assert.True(t, idx.Entries[0].File < idx.Entries[1].File)
}

func TestBuild_MissingFolder(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing"), DefaultPreviewLen)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFolderNotFound)
}
