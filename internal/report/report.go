// Package report renders merged schemas, indexes and metadata aggregates to
// their on-disk JSON, CSV and Markdown forms under a reports directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/jsonprof/jsonprof/internal/errors"
)

// WriteJSON marshals v with two-space indentation and deterministic map
// ordering, creating the parent directory as needed.
func WriteJSON(path string, v any) error {
	data, err := json.Marshal(v, jsontext.WithIndent("  "), json.Deterministic(true))
	if err != nil {
		return errors.NewReportError(fmt.Sprintf("failed to encode %s", filepath.Base(path)), err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
