package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
)

// SummaryRow is one folder's line of the metadata summary table.
type SummaryRow struct {
	Folder               string
	FilesCount           int
	Models               string
	PromptTokensAvg      *float64
	CompletionTokensAvg  *float64
	TotalTokensAvg       *float64
	GenerationCountTotal int
	MaxMetricFile        string
	MaxMetricValue       *int64
	MinMetricFile        string
	MinMetricValue       *int64
}

// ReadSummary loads a previously written metadata_summary.json.
func ReadSummary(path string) (*models.MetadataSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("'%s' not found; run 'jsonprof metadata' first", path),
				errors.ErrMissingInput,
			)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read '%s'", path), err)
	}
	var summary models.MetadataSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to parse '%s'", path), err)
	}
	return &summary, nil
}

// SummaryRows flattens the per-folder aggregates into table rows, picking the
// min/max file for the chosen metric. Rows are sorted by folder name.
func SummaryRows(summary *models.MetadataSummary, metric string) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summary.Folders))
	for folder, stats := range summary.Folders {
		row := SummaryRow{
			Folder:               folder,
			FilesCount:           stats.FilesCount,
			Models:               modelsCell(stats.Models),
			PromptTokensAvg:      stats.PromptTokensAvg,
			CompletionTokensAvg:  stats.CompletionTokensAvg,
			TotalTokensAvg:       stats.TotalTokensAvg,
			GenerationCountTotal: stats.GenerationCountTotal,
		}
		for _, rec := range stats.Files {
			v := metricValue(rec, metric)
			if v == nil {
				continue
			}
			if row.MaxMetricValue == nil || *v > *row.MaxMetricValue {
				row.MaxMetricValue, row.MaxMetricFile = v, rec.File
			}
			if row.MinMetricValue == nil || *v < *row.MinMetricValue {
				row.MinMetricValue, row.MinMetricFile = v, rec.File
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Folder < rows[j].Folder })
	return rows
}

func metricValue(rec models.MetadataRecord, metric string) *int64 {
	switch metric {
	case "prompt_tokens":
		return rec.PromptTokens
	case "completion_tokens":
		return rec.CompletionTokens
	default:
		return rec.TotalTokens
	}
}

func modelsCell(hist map[string]int) string {
	names := make([]string, 0, len(hist))
	for name := range hist {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, hist[name]))
	}
	return strings.Join(parts, ";")
}

// WriteSummaryTable writes the summary table as CSV and Markdown, returning
// both output paths.
func WriteSummaryTable(outDir, metric string, rows []SummaryRow) (csvPath, mdPath string, err error) {
	csvPath = filepath.Join(outDir, "metadata_summary_table.csv")
	if err := writeSummaryCSV(csvPath, rows); err != nil {
		return "", "", err
	}
	mdPath = filepath.Join(outDir, "metadata_summary_table.md")
	if err := writeFile(mdPath, []byte(summaryMarkdown(metric, rows))); err != nil {
		return "", "", err
	}
	return csvPath, mdPath, nil
}

func writeSummaryCSV(path string, rows []SummaryRow) error {
	header := []string{
		"folder", "files_count", "models",
		"prompt_tokens_avg", "completion_tokens_avg", "total_tokens_avg",
		"generation_count_total",
		"max_metric_file", "max_metric_value", "min_metric_file", "min_metric_value",
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return errors.NewReportError("failed to write summary table header", err)
	}
	for _, r := range rows {
		row := []string{
			r.Folder,
			strconv.Itoa(r.FilesCount),
			r.Models,
			fmtAvg(r.PromptTokensAvg),
			fmtAvg(r.CompletionTokensAvg),
			fmtAvg(r.TotalTokensAvg),
			strconv.Itoa(r.GenerationCountTotal),
			r.MaxMetricFile,
			intPtr(r.MaxMetricValue),
			r.MinMetricFile,
			intPtr(r.MinMetricValue),
		}
		if err := w.Write(row); err != nil {
			return errors.NewReportError("failed to write summary table row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewReportError("failed to flush summary table CSV", err)
	}
	return writeFile(path, buf.Bytes())
}

func summaryMarkdown(metric string, rows []SummaryRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Metadata summary table (metric: %s)\n\n", metric)
	header := []string{
		"Folder", "Files", "Models", "Prompt avg", "Completion avg",
		"Total avg", "Gen count", "Max " + metric, "Min " + metric,
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, r := range rows {
		cells := []string{
			r.Folder,
			strconv.Itoa(r.FilesCount),
			r.Models,
			fmtAvg(r.PromptTokensAvg),
			fmtAvg(r.CompletionTokensAvg),
			fmtAvg(r.TotalTokensAvg),
			strconv.Itoa(r.GenerationCountTotal),
			metricCell(r.MaxMetricValue, r.MaxMetricFile),
			metricCell(r.MinMetricValue, r.MinMetricFile),
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func metricCell(value *int64, file string) string {
	if value == nil || file == "" {
		return ""
	}
	return fmt.Sprintf("%d (%s)", *value, filepath.Base(file))
}

// fmtAvg renders an average with one decimal place, empty when absent.
func fmtAvg(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 1, 64)
}
