package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
)

var detailsHeader = []string{
	"file", "folder", "basename", "model", "temperature",
	"prompt_tokens", "completion_tokens", "total_tokens", "generation_count",
}

// WriteMetadataOutputs writes the per-file details CSV, the cross-folder
// summary JSON and one aggregate JSON per folder.
func WriteMetadataOutputs(outDir string, records []models.MetadataRecord, byFolder map[string]*models.FolderStats) error {
	if err := writeDetailsCSV(filepath.Join(outDir, "metadata_details.csv"), records); err != nil {
		return err
	}

	summary := models.MetadataSummary{Folders: byFolder}
	if err := WriteJSON(filepath.Join(outDir, "metadata_summary.json"), summary); err != nil {
		return err
	}

	for folder, stats := range byFolder {
		path := filepath.Join(outDir, folder+"_metadata.json")
		if err := WriteJSON(path, stats); err != nil {
			return err
		}
	}
	return nil
}

func writeDetailsCSV(path string, records []models.MetadataRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(detailsHeader); err != nil {
		return errors.NewReportError("failed to write details CSV header", err)
	}
	for _, r := range records {
		row := []string{
			r.File,
			r.Folder,
			r.Basename,
			strPtr(r.Model),
			floatPtr(r.Temperature),
			intPtr(r.PromptTokens),
			intPtr(r.CompletionTokens),
			intPtr(r.TotalTokens),
			strconv.Itoa(r.GenerationCount),
		}
		if err := w.Write(row); err != nil {
			return errors.NewReportError("failed to write details CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewReportError("failed to flush details CSV", err)
	}
	return writeFile(path, buf.Bytes())
}

// ReadDetailsCSV loads a previously written metadata_details.csv back into
// records, for the commands that post-process it.
func ReadDetailsCSV(path string) ([]models.MetadataRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("'%s' not found; run 'jsonprof metadata' first", path),
				errors.ErrMissingInput,
			)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open '%s'", path), err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read '%s'", path), err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]models.MetadataRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.MetadataRecord{
			File:     field(row, "file"),
			Folder:   field(row, "folder"),
			Basename: field(row, "basename"),
		}
		if s := field(row, "model"); s != "" {
			rec.Model = &s
		}
		if f, err := strconv.ParseFloat(field(row, "temperature"), 64); err == nil {
			rec.Temperature = &f
		}
		rec.PromptTokens = parseIntField(field(row, "prompt_tokens"))
		rec.CompletionTokens = parseIntField(field(row, "completion_tokens"))
		rec.TotalTokens = parseIntField(field(row, "total_tokens"))
		if n, err := strconv.Atoi(field(row, "generation_count")); err == nil {
			rec.GenerationCount = n
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseIntField(s string) *int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func intPtr(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}
