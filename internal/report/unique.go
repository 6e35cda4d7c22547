package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
)

// DefaultSnippetContext is how many characters of context surround a snippet
// match on each side.
const DefaultSnippetContext = 80

// FindSchemaReports lists the *_schema_report.json files in reportsDir,
// optionally narrowed to the named folders.
func FindSchemaReports(reportsDir string, folders []string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(reportsDir, "*_schema_report.json"))
	if err != nil {
		return nil, errors.NewScanError("failed to list schema reports", err)
	}
	if len(folders) > 0 {
		kept := matches[:0]
		for _, m := range matches {
			name := filepath.Base(m)
			for _, f := range folders {
				if strings.HasPrefix(name, f+"_") {
					kept = append(kept, m)
					break
				}
			}
		}
		matches = kept
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, errors.NewInputError("no schema report files found", errors.ErrNoReports)
	}
	return matches, nil
}

// ReadSchemaReport loads a previously written schema report.
func ReadSchemaReport(path string) (models.SchemaReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SchemaReport{}, errors.NewInputError(fmt.Sprintf("failed to read '%s'", path), err)
	}
	var rep models.SchemaReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return models.SchemaReport{}, errors.NewInputError(fmt.Sprintf("failed to parse '%s'", path), err)
	}
	if rep.Folder == "" {
		rep.Folder = strings.TrimSuffix(filepath.Base(path), "_schema_report.json")
	}
	return rep, nil
}

// BuildUniquePaths extracts the paths present in exactly one file of the
// corpus, optionally attaching a text snippet from the containing file.
func BuildUniquePaths(rep models.SchemaReport, withSnippets bool, snippetCtx int) models.UniquePathsReport {
	paths := make([]string, 0, len(rep.MergedSchema))
	for p := range rep.MergedSchema {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := models.UniquePathsReport{Folder: rep.Folder, UniquePaths: []models.UniquePath{}}
	for _, p := range paths {
		rec := rep.MergedSchema[p]
		if len(rec.Files) != 1 {
			continue
		}
		entry := models.UniquePath{
			Path:  p,
			Types: rec.Types,
			File:  rec.Files[0],
		}
		if withSnippets {
			entry.Snippet = ExtractSnippet(rec.Files[0], KeyNameFromPath(p), snippetCtx)
		}
		out.UniquePaths = append(out.UniquePaths, entry)
	}
	return out
}

// KeyNameFromPath returns the final key of a path with array markers removed,
// e.g. "rootElements[].description" yields "description".
func KeyNameFromPath(path string) string {
	parts := strings.Split(strings.TrimSpace(path), ".")
	last := parts[len(parts)-1]
	return strings.ReplaceAll(last, "[]", "")
}

// ExtractSnippet searches the containing file for the quoted key (then the
// bare key) and returns the surrounding text with newlines flattened. Nil
// when the file is unreadable or the key is not found.
func ExtractSnippet(file, key string, ctx int) *string {
	if ctx <= 0 {
		ctx = DefaultSnippetContext
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	text := string(data)
	for _, target := range []string{`"` + key + `"`, key} {
		idx := strings.Index(text, target)
		if idx < 0 {
			continue
		}
		start := idx - ctx
		if start < 0 {
			start = 0
		}
		end := idx + len(target) + ctx
		if end > len(text) {
			end = len(text)
		}
		snippet := strings.ReplaceAll(text[start:end], "\n", " ")
		return &snippet
	}
	return nil
}

// WriteUniquePaths writes the unique-paths report as JSON and CSV, returning
// both output paths.
func WriteUniquePaths(outDir string, rep models.UniquePathsReport) (jsonPath, csvPath string, err error) {
	jsonPath = filepath.Join(outDir, rep.Folder+"_unique_paths.json")
	if err := WriteJSON(jsonPath, rep); err != nil {
		return "", "", err
	}

	csvPath = filepath.Join(outDir, rep.Folder+"_unique_paths.csv")
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"path", "types", "file", "snippet"}); err != nil {
		return "", "", errors.NewReportError("failed to write unique paths header", err)
	}
	for _, e := range rep.UniquePaths {
		snippet := ""
		if e.Snippet != nil {
			snippet = *e.Snippet
		}
		row := []string{e.Path, strings.Join(e.Types, ";"), e.File, snippet}
		if err := w.Write(row); err != nil {
			return "", "", errors.NewReportError("failed to write unique paths row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", "", errors.NewReportError("failed to flush unique paths CSV", err)
	}
	if err := writeFile(csvPath, buf.Bytes()); err != nil {
		return "", "", err
	}
	return jsonPath, csvPath, nil
}
