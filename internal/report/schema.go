package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsonprof/jsonprof/internal/merger"
	"github.com/jsonprof/jsonprof/internal/models"
)

// BuildSchemaReport assembles the per-corpus report from the merged schema
// and the per-file schemas it was folded from.
func BuildSchemaReport(folder string, schemas []models.FileSchema, merged models.MergedSchema) models.SchemaReport {
	files := make([]string, 0, len(schemas))
	for _, s := range schemas {
		files = append(files, s.File)
	}
	return models.SchemaReport{
		Folder:       folder,
		FilesCount:   len(schemas),
		Files:        files,
		MergedSchema: merged,
		Summary:      merger.Summarize(merged),
	}
}

// WriteSchemaReport writes the JSON report and the short Markdown summary for
// one corpus, returning both output paths.
func WriteSchemaReport(reportsDir string, rep models.SchemaReport) (jsonPath, mdPath string, err error) {
	jsonPath = filepath.Join(reportsDir, rep.Folder+"_schema_report.json")
	if err := WriteJSON(jsonPath, rep); err != nil {
		return "", "", err
	}

	mdPath = filepath.Join(reportsDir, rep.Folder+"_schema_summary.md")
	if err := writeFile(mdPath, []byte(schemaSummaryMarkdown(rep))); err != nil {
		return "", "", err
	}
	return jsonPath, mdPath, nil
}

func schemaSummaryMarkdown(rep models.SchemaReport) string {
	sm := rep.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "# Schema report for %s\n\n", rep.Folder)
	fmt.Fprintf(&b, "Files analyzed: %d\n\n", rep.FilesCount)
	fmt.Fprintf(&b, "- Total unique JSON paths: %d\n", sm.TotalPaths)
	fmt.Fprintf(&b, "- Paths with type conflicts: %d (examples: %s)\n", sm.TypeConflictCount, exampleList(sm.TypeConflictExamples))
	fmt.Fprintf(&b, "- Paths missing in some files: %d (examples: %s)\n", sm.MissingCount, exampleList(sm.MissingExamples))
	fmt.Fprintf(&b, "- Unique paths (present in only 1 file): %d (examples: %s)\n", sm.UniqueCount, exampleList(sm.UniqueExamples))
	return b.String()
}

func exampleList(paths []string) string {
	if len(paths) == 0 {
		return "[]"
	}
	return "[" + strings.Join(paths, ", ") + "]"
}
