// Package merger folds per-file walker results into one corpus-wide merged
// schema and derives its summary statistics.
//
// The fold is commutative and associative: per-path type sets and file sets
// only ever grow by union, so file order never changes the outcome and
// per-file walks may be computed out of order or in parallel and reduced
// afterwards.
package merger

import (
	"sort"

	"github.com/jsonprof/jsonprof/internal/models"
)

// MaxExamples caps the example path lists in a summary.
const MaxExamples = 20

// Merge combines per-file path-type sets into a finalized MergedSchema: per
// path, sorted observed types, sorted containing files, and the sorted list
// of corpus files missing that path.
func Merge(schemas []models.FileSchema) models.MergedSchema {
	type accum struct {
		types models.TypeSet
		files map[string]struct{}
	}

	acc := make(map[string]*accum)
	allFiles := make(map[string]struct{}, len(schemas))
	for _, s := range schemas {
		allFiles[s.File] = struct{}{}
		for path, types := range s.PathTypes {
			a, ok := acc[path]
			if !ok {
				a = &accum{types: make(models.TypeSet), files: make(map[string]struct{})}
				acc[path] = a
			}
			for t := range types {
				a.types.Add(t)
			}
			a.files[s.File] = struct{}{}
		}
	}

	merged := make(models.MergedSchema, len(acc))
	for path, a := range acc {
		missing := make([]string, 0)
		for f := range allFiles {
			if _, ok := a.files[f]; !ok {
				missing = append(missing, f)
			}
		}
		sort.Strings(missing)
		merged[path] = &models.PathRecord{
			Types:          a.types.Sorted(),
			Files:          sortedKeys(a.files),
			MissingInFiles: missing,
		}
	}
	return merged
}

// Summarize computes the corpus statistics for a finalized merged schema.
// Example lists are sorted and capped at MaxExamples.
func Summarize(merged models.MergedSchema) models.Summary {
	conflicts := ConflictingPaths(merged)
	missing := MissingPaths(merged)
	unique := UniquePaths(merged)

	return models.Summary{
		TotalPaths:           len(merged),
		TypeConflictCount:    len(conflicts),
		TypeConflictExamples: examples(conflicts),
		MissingCount:         len(missing),
		MissingExamples:      examples(missing),
		UniqueCount:          len(unique),
		UniqueExamples:       examples(unique),
	}
}

// ConflictingPaths returns the sorted paths observed with more than one type.
func ConflictingPaths(merged models.MergedSchema) []string {
	return selectPaths(merged, func(r *models.PathRecord) bool {
		return len(r.Types) > 1
	})
}

// MissingPaths returns the sorted paths absent from at least one corpus file.
func MissingPaths(merged models.MergedSchema) []string {
	return selectPaths(merged, func(r *models.PathRecord) bool {
		return len(r.MissingInFiles) > 0
	})
}

// UniquePaths returns the sorted paths present in exactly one corpus file.
func UniquePaths(merged models.MergedSchema) []string {
	return selectPaths(merged, func(r *models.PathRecord) bool {
		return len(r.Files) == 1
	})
}

func selectPaths(merged models.MergedSchema, keep func(*models.PathRecord) bool) []string {
	out := make([]string, 0)
	for path, rec := range merged {
		if keep(rec) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func examples(paths []string) []string {
	if len(paths) > MaxExamples {
		return paths[:MaxExamples]
	}
	return paths
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
