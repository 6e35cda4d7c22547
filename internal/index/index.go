// Package index builds a per-folder inventory of JSON files: size, validity,
// top-level keys and a short content preview, for later manual analysis.
package index

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
	"github.com/jsonprof/jsonprof/internal/parser"
)

// DefaultPreviewLen is how many characters of each file are kept as preview.
const DefaultPreviewLen = 500

// Build walks folder for *.json files and returns the index. Relative paths
// are reported against the folder's parent, so they keep the folder name as
// their first segment.
func Build(folder string, previewLen int) (*models.Index, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, errors.NewScanError(fmt.Sprintf("failed to resolve folder '%s'", folder), err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, errors.NewScanError(
			fmt.Sprintf("folder '%s' does not exist", folder),
			errors.ErrFolderNotFound,
		)
	}

	entries := []models.IndexEntry{}
	parent := filepath.Dir(abs)
	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}
		entries = append(entries, buildEntry(p, parent, previewLen))
		return nil
	})
	if walkErr != nil {
		return nil, errors.NewScanError(fmt.Sprintf("failed to walk folder '%s'", folder), walkErr)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	return &models.Index{Root: abs, FilesCount: len(entries), Entries: entries}, nil
}

func buildEntry(file, parent string, previewLen int) models.IndexEntry {
	rel, err := filepath.Rel(parent, file)
	if err != nil {
		rel = file
	}

	entry := models.IndexEntry{
		RelPath:      rel,
		File:         file,
		TopLevelKeys: []string{},
	}
	if info, err := os.Stat(file); err == nil {
		entry.SizeBytes = info.Size()
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return entry
	}
	entry.Preview = preview(string(data), previewLen)

	v, err := parser.ParseBytes(data)
	if err != nil {
		return entry
	}
	entry.IsValidJSON = true
	if doc, ok := v.(models.Document); ok {
		keys := make([]string, 0, len(doc))
		for _, m := range doc {
			keys = append(keys, m.Key)
		}
		entry.TopLevelKeys = keys
	}
	return entry
}

// preview returns the first n characters (runes, so a truncated preview is
// still valid UTF-8).
func preview(text string, n int) string {
	if n <= 0 {
		n = DefaultPreviewLen
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
