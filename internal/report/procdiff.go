package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
)

// ProcessTotals holds one pipeline stage's token figures for one process run.
type ProcessTotals struct {
	File             string
	PromptTokens     *int64
	CompletionTokens *int64
	TotalTokens      *int64
}

// ProcessComparison groups metadata records folder → process id → stage kind
// (modeler, parser, full, other).
type ProcessComparison map[string]map[string]map[string]ProcessTotals

// processID derives the process a metadata file belongs to. Most corpora key
// processes by directory; the single_agent corpus keys them by the basename
// prefix before the first underscore.
func processID(rec models.MetadataRecord) string {
	if rec.Folder == "single_agent" {
		if i := strings.Index(rec.Basename, "_"); i > 0 {
			return rec.Basename[:i]
		}
		return rec.Basename
	}
	return filepath.Base(filepath.Dir(rec.File))
}

// stageKind classifies a metadata file by its basename.
func stageKind(basename string) string {
	switch {
	case strings.Contains(basename, "modeler"):
		return "modeler"
	case strings.Contains(basename, "parser"):
		return "parser"
	case strings.Contains(basename, "full_response"),
		strings.Contains(basename, "fullresponse"),
		strings.HasSuffix(basename, "full.json"):
		return "full"
	default:
		return "other"
	}
}

// BuildProcessComparison groups detail records into the per-process
// modeler/parser/full structure.
func BuildProcessComparison(records []models.MetadataRecord) ProcessComparison {
	cmp := make(ProcessComparison)
	for _, rec := range records {
		procs, ok := cmp[rec.Folder]
		if !ok {
			procs = make(map[string]map[string]ProcessTotals)
			cmp[rec.Folder] = procs
		}
		proc := processID(rec)
		kinds, ok := procs[proc]
		if !ok {
			kinds = make(map[string]ProcessTotals)
			procs[proc] = kinds
		}
		kinds[stageKind(rec.Basename)] = ProcessTotals{
			File:             rec.File,
			PromptTokens:     rec.PromptTokens,
			CompletionTokens: rec.CompletionTokens,
			TotalTokens:      rec.TotalTokens,
		}
	}
	return cmp
}

// WriteProcessComparison writes the comparison as CSV and Markdown, returning
// both output paths. Rows are ordered by folder then process id.
func WriteProcessComparison(outDir string, cmp ProcessComparison) (csvPath, mdPath string, err error) {
	csvPath = filepath.Join(outDir, "metadata_process_comparison.csv")
	if err := writeProcessCSV(csvPath, cmp); err != nil {
		return "", "", err
	}
	mdPath = filepath.Join(outDir, "metadata_process_comparison.md")
	if err := writeFile(mdPath, []byte(processMarkdown(cmp))); err != nil {
		return "", "", err
	}
	return csvPath, mdPath, nil
}

func writeProcessCSV(path string, cmp ProcessComparison) error {
	header := []string{
		"folder", "process",
		"modeler_file", "modeler_prompt", "modeler_completion", "modeler_total",
		"parser_file", "parser_prompt", "parser_completion", "parser_total",
		"combined_prompt", "combined_completion", "combined_total",
		"full_file", "full_total",
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return errors.NewReportError("failed to write process comparison header", err)
	}
	forEachProcess(cmp, func(folder, proc string, kinds map[string]ProcessTotals) {
		m := kinds["modeler"]
		p := kinds["parser"]
		full := kinds["full"]
		row := []string{
			folder, proc,
			m.File, intPtr(m.PromptTokens), intPtr(m.CompletionTokens), intPtr(m.TotalTokens),
			p.File, intPtr(p.PromptTokens), intPtr(p.CompletionTokens), intPtr(p.TotalTokens),
			fmt.Sprint(orZero(m.PromptTokens) + orZero(p.PromptTokens)),
			fmt.Sprint(orZero(m.CompletionTokens) + orZero(p.CompletionTokens)),
			fmt.Sprint(orZero(m.TotalTokens) + orZero(p.TotalTokens)),
			full.File, intPtr(full.TotalTokens),
		}
		_ = w.Write(row)
	})
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewReportError("failed to flush process comparison CSV", err)
	}
	return writeFile(path, buf.Bytes())
}

func processMarkdown(cmp ProcessComparison) string {
	var b strings.Builder
	b.WriteString("# Per-process metadata comparison\n\n")
	b.WriteString("| Folder | Process | Modeler total | Parser total | Combined total | Full total (if present) |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	forEachProcess(cmp, func(folder, proc string, kinds map[string]ProcessTotals) {
		m := kinds["modeler"]
		p := kinds["parser"]
		full := kinds["full"]
		combined := orZero(m.TotalTokens) + orZero(p.TotalTokens)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s |\n",
			folder, proc, intPtr(m.TotalTokens), intPtr(p.TotalTokens), combined, intPtr(full.TotalTokens))
	})
	return b.String()
}

func forEachProcess(cmp ProcessComparison, fn func(folder, proc string, kinds map[string]ProcessTotals)) {
	folders := make([]string, 0, len(cmp))
	for f := range cmp {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	for _, folder := range folders {
		procs := make([]string, 0, len(cmp[folder]))
		for p := range cmp[folder] {
			procs = append(procs, p)
		}
		sort.Strings(procs)
		for _, proc := range procs {
			fn(folder, proc, cmp[folder][proc])
		}
	}
}

func orZero(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
