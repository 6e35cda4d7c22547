// Package corpus locates the JSON files of a named corpus and runs the
// per-file walks that feed the merger.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
	"github.com/jsonprof/jsonprof/internal/parser"
	"github.com/jsonprof/jsonprof/internal/walker"
)

// LoadIndexIfExists reads a previously written folder index. A missing or
// unreadable index is not an error; discovery falls back to a folder walk.
func LoadIndexIfExists(indexPath string) *models.Index {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil
	}
	var idx models.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil
	}
	return &idx
}

// FindJSONFiles returns the sorted, de-duplicated JSON files of a corpus,
// either from a folder index (entries whose files still exist) or by walking
// the folder for *.json files. Ignore patterns are path.Match patterns
// applied to the bare file name.
func FindJSONFiles(folder string, index *models.Index, ignorePatterns []string) ([]string, error) {
	var files []string
	if index != nil {
		for _, e := range index.Entries {
			if _, err := os.Stat(e.File); err == nil {
				files = append(files, e.File)
			}
		}
	} else {
		err := filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewScanError(
					fmt.Sprintf("folder '%s' not found", folder),
					errors.ErrFolderNotFound,
				)
			}
			return nil, errors.NewScanError(
				fmt.Sprintf("failed to walk folder '%s'", folder),
				err,
			)
		}
	}

	files = sortUnique(files)
	if len(ignorePatterns) > 0 {
		kept := files[:0]
		for _, f := range files {
			if !matchesAny(filepath.Base(f), ignorePatterns) {
				kept = append(kept, f)
			}
		}
		files = kept
	}
	return files, nil
}

// AnalyzeFile walks a single document. Any read or parse failure is recovered
// locally into the synthetic invalid_json schema, never returned as an error;
// one bad file must not stop the rest of the corpus.
func AnalyzeFile(file string, sample int) models.FileSchema {
	v, err := parser.ParseFile(file)
	if err != nil {
		return models.InvalidFileSchema(file)
	}
	return models.FileSchema{File: file, PathTypes: walker.PathTypes(v, sample)}
}

// AnalyzeFiles walks every file on a bounded worker pool. Each walk is a pure
// function of its own document, so the walks run concurrently and the
// disjoint per-file results are reduced afterwards by merger.Merge; nothing
// is shared while walking. workers <= 0 uses one worker per CPU.
func AnalyzeFiles(files []string, sample, workers int) []models.FileSchema {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]models.FileSchema, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = AnalyzeFile(f, sample)
		}(i, f)
	}
	wg.Wait()
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, err := path.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func sortUnique(files []string) []string {
	sort.Strings(files)
	out := files[:0]
	var prev string
	for i, f := range files {
		if i == 0 || f != prev {
			out = append(out, f)
		}
		prev = f
	}
	return out
}
