package metadata

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
	"github.com/jsonprof/jsonprof/internal/parser"
)

// filePatterns are the filename shapes that carry experiment metadata.
var filePatterns = []string{
	"*modeler_metadata.json",
	"*parser_metadata.json",
	"modeler.json",
	"parser.json",
	"*_full_response.json",
	"*full_response.json",
}

// FindFiles walks root for metadata and response files by filename pattern.
func FindFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, pat := range filePatterns {
			if ok, _ := path.Match(pat, d.Name()); ok {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewScanError("failed to scan for metadata files", err)
	}
	sort.Strings(files)
	return files, nil
}

// FilterByFolders keeps files that have one of the wanted folder names among
// their path segments.
func FilterByFolders(files, folders []string) []string {
	if len(folders) == 0 {
		return files
	}
	wanted := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		wanted[f] = struct{}{}
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		for _, part := range strings.Split(filepath.ToSlash(f), "/") {
			if _, ok := wanted[part]; ok {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// FolderOf derives the folder a metadata file belongs to: the grandparent
// directory name, falling back to the parent for shallow paths.
func FolderOf(file string) string {
	parent := filepath.Dir(file)
	grand := filepath.Dir(parent)
	name := filepath.Base(grand)
	if name == "." || name == string(filepath.Separator) {
		name = filepath.Base(parent)
	}
	return name
}

// AnalyzeFiles builds one record per metadata file. Unparseable files are
// kept as rows flagged invalid_json rather than dropped.
func AnalyzeFiles(files []string) []models.MetadataRecord {
	records := make([]models.MetadataRecord, 0, len(files))
	for _, f := range files {
		rec := models.MetadataRecord{
			File:     f,
			Folder:   FolderOf(f),
			Basename: filepath.Base(f),
		}
		v, err := parser.ParseFile(f)
		if err != nil {
			rec.Error = "invalid_json"
			records = append(records, rec)
			continue
		}

		usage := ExtractTokenUsage(v)
		info := ExtractModelInfo(v)
		rec.Model = info.Model
		rec.Temperature = info.Temperature
		rec.PromptTokens = usage.PromptTokens
		rec.CompletionTokens = usage.CompletionTokens
		rec.TotalTokens = usage.TotalTokens
		rec.GenerationCount = len(FindGenerationTexts(v))
		records = append(records, rec)
	}
	return records
}

// AggregateByFolder folds records into per-folder statistics: file counts, a
// model histogram, token totals and averages over the files that carried
// each figure.
func AggregateByFolder(records []models.MetadataRecord) map[string]*models.FolderStats {
	byFolder := make(map[string]*models.FolderStats)
	for _, r := range records {
		folder := r.Folder
		if folder == "" {
			folder = "<unknown>"
		}
		stats, ok := byFolder[folder]
		if !ok {
			stats = &models.FolderStats{Models: make(map[string]int)}
			byFolder[folder] = stats
		}

		stats.FilesCount++
		model := "<unknown>"
		if r.Model != nil {
			model = *r.Model
		}
		stats.Models[model]++

		if r.PromptTokens != nil {
			stats.PromptTokensTotal += *r.PromptTokens
			stats.PromptTokensCount++
		}
		if r.CompletionTokens != nil {
			stats.CompletionTokensTotal += *r.CompletionTokens
			stats.CompletionTokensCount++
		}
		if r.TotalTokens != nil {
			stats.TotalTokensTotal += *r.TotalTokens
			stats.TotalTokensCount++
		}
		stats.GenerationCountTotal += r.GenerationCount
		stats.Files = append(stats.Files, r)
	}

	for _, stats := range byFolder {
		stats.PromptTokensAvg = average(stats.PromptTokensTotal, stats.PromptTokensCount)
		stats.CompletionTokensAvg = average(stats.CompletionTokensTotal, stats.CompletionTokensCount)
		stats.TotalTokensAvg = average(stats.TotalTokensTotal, stats.TotalTokensCount)
	}
	return byFolder
}

// average returns nil when no file carried the figure.
func average(total int64, count int) *float64 {
	if count == 0 {
		return nil
	}
	avg := float64(total) / float64(count)
	return &avg
}
