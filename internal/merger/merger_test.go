package merger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonprof/jsonprof/internal/models"
	"github.com/jsonprof/jsonprof/internal/parser"
	"github.com/jsonprof/jsonprof/internal/walker"
)

func fileSchema(t *testing.T, file, doc string) models.FileSchema {
	t.Helper()
	v, err := parser.ParseString(doc)
	require.NoError(t, err)
	return models.FileSchema{File: file, PathTypes: walker.PathTypes(v, walker.DefaultArraySample)}
}

func TestMerge_TwoFileScenario(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "file1.json", `{"name": "a", "tags": ["x","y"]}`),
		fileSchema(t, "file2.json", `{"name": 1}`),
	}
	merged := Merge(schemas)

	name := merged["name"]
	require.NotNil(t, name)
	assert.Equal(t, []string{"number", "string"}, name.Types)
	assert.Equal(t, []string{"file1.json", "file2.json"}, name.Files)
	assert.Empty(t, name.MissingInFiles)

	tags := merged["tags"]
	require.NotNil(t, tags)
	assert.Equal(t, []string{"array"}, tags.Types)
	assert.Equal(t, []string{"file1.json"}, tags.Files)
	assert.Equal(t, []string{"file2.json"}, tags.MissingInFiles)

	tagElems := merged["tags[]"]
	require.NotNil(t, tagElems)
	assert.Equal(t, []string{"string"}, tagElems.Types)
	assert.Equal(t, []string{"file1.json"}, tagElems.Files)

	assert.Contains(t, UniquePaths(merged), "tags")
	assert.Contains(t, ConflictingPaths(merged), "name")
}

func TestMerge_ConflictAndMissingDerivation(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "a.json", `{"x": {"y": "s"}}`),
		fileSchema(t, "b.json", `{"x": {"y": 3}}`),
		fileSchema(t, "c.json", `{"other": true}`),
	}
	merged := Merge(schemas)

	rec := merged["x.y"]
	require.NotNil(t, rec)
	assert.Equal(t, []string{"number", "string"}, rec.Types)
	assert.Equal(t, []string{"a.json", "b.json"}, rec.Files)
	assert.Equal(t, []string{"c.json"}, rec.MissingInFiles)

	// Present in two files: conflicting but not unique.
	assert.Contains(t, ConflictingPaths(merged), "x.y")
	assert.NotContains(t, UniquePaths(merged), "x.y")
	assert.Contains(t, UniquePaths(merged), "other")
}

// Merging is commutative and associative: any permutation of the input files
// yields an identical merged schema.
func TestMerge_OrderIndependent(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "1.json", `{"a": 1, "shared": "x"}`),
		fileSchema(t, "2.json", `{"b": [true, false], "shared": 2}`),
		fileSchema(t, "3.json", `{"c": {"deep": null}, "shared": "y"}`),
		models.InvalidFileSchema("4.json"),
	}
	want := Merge(schemas)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.FileSchema, len(schemas))
		copy(shuffled, schemas)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Merge(shuffled))
	}
}

// A corpus mixing valid and invalid documents merges completely: the invalid
// file shows up as invalid_json at the root and never aborts the fold.
func TestMerge_TotalOverInvalidInput(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "good.json", `{"a": 1}`),
		models.InvalidFileSchema("bad.json"),
		models.InvalidFileSchema("worse.json"),
	}
	merged := Merge(schemas)

	root := merged[models.RootPath]
	require.NotNil(t, root)
	assert.Equal(t, []string{"invalid_json", "object"}, root.Types)
	assert.Equal(t, []string{"bad.json", "good.json", "worse.json"}, root.Files)
	assert.Empty(t, root.MissingInFiles)

	a := merged["a"]
	require.NotNil(t, a)
	assert.Equal(t, []string{"good.json"}, a.Files)
	assert.Equal(t, []string{"bad.json", "worse.json"}, a.MissingInFiles)
}

func TestMerge_EmptyCorpus(t *testing.T) {
	merged := Merge(nil)
	assert.Empty(t, merged)

	summary := Summarize(merged)
	assert.Zero(t, summary.TotalPaths)
	assert.Empty(t, summary.TypeConflictExamples)
}

func TestSummarize(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "a.json", `{"shared": 1, "only_a": true}`),
		fileSchema(t, "b.json", `{"shared": "s"}`),
	}
	merged := Merge(schemas)
	summary := Summarize(merged)

	// Paths: $, shared, only_a.
	assert.Equal(t, 3, summary.TotalPaths)
	assert.Equal(t, 1, summary.TypeConflictCount)
	assert.Equal(t, []string{"shared"}, summary.TypeConflictExamples)
	assert.Equal(t, 1, summary.MissingCount)
	assert.Equal(t, []string{"only_a"}, summary.MissingExamples)
	assert.Equal(t, 1, summary.UniqueCount)
	assert.Equal(t, []string{"only_a"}, summary.UniqueExamples)
}

func TestSummarize_ExampleCap(t *testing.T) {
	// Build a corpus with more unique paths than the example cap.
	schemas := make([]models.FileSchema, 0, 2)
	doc := "{"
	for i := 0; i < MaxExamples+5; i++ {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf("%q: %d", fmt.Sprintf("key_%02d", i), i)
	}
	doc += "}"
	schemas = append(schemas,
		fileSchema(t, "big.json", doc),
		fileSchema(t, "empty.json", `{}`),
	)

	summary := Summarize(Merge(schemas))
	assert.Equal(t, MaxExamples+5, summary.UniqueCount)
	assert.Len(t, summary.UniqueExamples, MaxExamples)
	assert.Equal(t, MaxExamples+5, summary.MissingCount)
	assert.Len(t, summary.MissingExamples, MaxExamples)
}

func TestDerivedSets_RecomputedFromMergedSchema(t *testing.T) {
	schemas := []models.FileSchema{
		fileSchema(t, "a.json", `{"x": 1}`),
		fileSchema(t, "b.json", `{"x": "s", "y": null}`),
	}
	merged := Merge(schemas)

	assert.Equal(t, []string{"x"}, ConflictingPaths(merged))
	assert.Equal(t, []string{"y"}, UniquePaths(merged))
	assert.Equal(t, []string{"y"}, MissingPaths(merged))
}
