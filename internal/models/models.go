// Package models holds the shared value types passed between the parser,
// walker, merger and reporting layers.
package models

import "sort"

// Value is any parsed JSON value: nil, bool, float64, string, Array or
// Document. Values are immutable once parsed.
type Value = any

// Member is a single key-value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Document is a JSON object with key order preserved from the source text,
// so walks over the same document always visit keys in the same order.
type Document []Member

// Array is a JSON array.
type Array []Value

// TypeTag names the shape observed at one JSON path.
type TypeTag string

const (
	TypeNull    TypeTag = "null"
	TypeBoolean TypeTag = "boolean"
	TypeNumber  TypeTag = "number"
	TypeString  TypeTag = "string"
	TypeArray   TypeTag = "array"
	TypeObject  TypeTag = "object"

	// TypeInvalidJSON is the synthetic tag recorded at RootPath for a file
	// whose raw text is not valid JSON.
	TypeInvalidJSON TypeTag = "invalid_json"
)

// RootPath identifies a document's top-level value.
const RootPath = "$"

// PathType is a single walker observation: one path and the type seen there.
type PathType struct {
	Path string
	Type TypeTag
}

// TypeSet is an unordered set of type tags.
type TypeSet map[TypeTag]struct{}

// NewTypeSet builds a set from the given tags.
func NewTypeSet(tags ...TypeTag) TypeSet {
	s := make(TypeSet, len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts a tag into the set.
func (s TypeSet) Add(t TypeTag) {
	s[t] = struct{}{}
}

// Has reports whether the tag is in the set.
func (s TypeSet) Has(t TypeTag) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the tags as a sorted string slice.
func (s TypeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// FileSchema is the per-file walker result: for each path observed in one
// document, the set of types seen there.
type FileSchema struct {
	File      string
	PathTypes map[string]TypeSet
}

// InvalidFileSchema is the schema recorded for a file whose contents could
// not be parsed as JSON: a single invalid_json entry at the root path.
func InvalidFileSchema(file string) FileSchema {
	return FileSchema{
		File:      file,
		PathTypes: map[string]TypeSet{RootPath: NewTypeSet(TypeInvalidJSON)},
	}
}

// PathRecord is the finalized per-path entry of a merged schema. All three
// slices are sorted.
type PathRecord struct {
	Types          []string `json:"types"`
	Files          []string `json:"files"`
	MissingInFiles []string `json:"missing_in_files"`
}

// MergedSchema maps every path observed anywhere in a corpus to its record.
// Built once per corpus and treated as immutable afterwards.
type MergedSchema map[string]*PathRecord

// Summary holds the corpus-level statistics derived from a MergedSchema.
// Example lists are capped (see merger.MaxExamples) and sorted.
type Summary struct {
	TotalPaths           int      `json:"total_paths"`
	TypeConflictCount    int      `json:"paths_with_type_conflict_count"`
	TypeConflictExamples []string `json:"paths_with_type_conflict"`
	MissingCount         int      `json:"paths_missing_count"`
	MissingExamples      []string `json:"paths_missing_examples"`
	UniqueCount          int      `json:"unique_paths_count"`
	UniqueExamples       []string `json:"unique_paths_examples"`
}

// SchemaReport is the full per-corpus report written to disk.
type SchemaReport struct {
	Folder       string       `json:"folder"`
	FilesCount   int          `json:"files_count"`
	Files        []string     `json:"files"`
	MergedSchema MergedSchema `json:"merged_schema"`
	Summary      Summary      `json:"summary"`
}

// IndexEntry describes one JSON file in a folder index.
type IndexEntry struct {
	RelPath      string   `json:"relpath"`
	File         string   `json:"file"`
	SizeBytes    int64    `json:"size_bytes"`
	IsValidJSON  bool     `json:"is_valid_json"`
	TopLevelKeys []string `json:"top_level_keys"`
	Preview      string   `json:"preview"`
}

// Index is the folder index report.
type Index struct {
	Root       string       `json:"root"`
	FilesCount int          `json:"files_count"`
	Entries    []IndexEntry `json:"entries"`
}

// TokenUsage holds extracted token counts. Nil means the source file did not
// carry that figure in any recognized shape.
type TokenUsage struct {
	PromptTokens     *int64
	CompletionTokens *int64
	TotalTokens      *int64
}

// MetadataRecord is one row of the metadata details report, describing a
// single metadata or response file.
type MetadataRecord struct {
	File             string   `json:"file"`
	Folder           string   `json:"folder"`
	Basename         string   `json:"basename"`
	Model            *string  `json:"model"`
	Temperature      *float64 `json:"temperature"`
	PromptTokens     *int64   `json:"prompt_tokens"`
	CompletionTokens *int64   `json:"completion_tokens"`
	TotalTokens      *int64   `json:"total_tokens"`
	GenerationCount  int      `json:"generation_count"`
	Error            string   `json:"error,omitempty"`
}

// FolderStats aggregates metadata records for one folder.
type FolderStats struct {
	FilesCount            int              `json:"files_count"`
	Models                map[string]int   `json:"models"`
	PromptTokensTotal     int64            `json:"prompt_tokens_total"`
	CompletionTokensTotal int64            `json:"completion_tokens_total"`
	TotalTokensTotal      int64            `json:"total_tokens_total"`
	PromptTokensCount     int              `json:"prompt_tokens_count"`
	CompletionTokensCount int              `json:"completion_tokens_count"`
	TotalTokensCount      int              `json:"total_tokens_count"`
	GenerationCountTotal  int              `json:"generation_count_total"`
	PromptTokensAvg       *float64         `json:"prompt_tokens_avg"`
	CompletionTokensAvg   *float64         `json:"completion_tokens_avg"`
	TotalTokensAvg        *float64         `json:"total_tokens_avg"`
	Files                 []MetadataRecord `json:"files"`
}

// MetadataSummary is the aggregated metadata report across folders.
type MetadataSummary struct {
	Folders map[string]*FolderStats `json:"folders"`
}

// UniquePath is one entry of a unique-paths report: a path present in
// exactly one file of its corpus.
type UniquePath struct {
	Path    string   `json:"path"`
	Types   []string `json:"types"`
	File    string   `json:"file"`
	Snippet *string  `json:"snippet"`
}

// UniquePathsReport is the per-corpus unique-paths report.
type UniquePathsReport struct {
	Folder      string       `json:"folder"`
	UniquePaths []UniquePath `json:"unique_paths"`
}
