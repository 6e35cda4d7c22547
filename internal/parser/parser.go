// Package parser decodes raw JSON text into the models value types. Objects
// decode into models.Document so key order from the source text survives into
// the walker, which keeps walk output deterministic per document.
package parser

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/jsonprof/jsonprof/internal/errors"
	"github.com/jsonprof/jsonprof/internal/models"
)

// Unmarshalers returns the custom JSON unmarshalers that decode objects into
// models.Document (ordered) and arrays into models.Array. Primitives fall
// through to the default decoding: string, float64, bool, nil.
func Unmarshalers() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *any) error {
		switch dec.PeekKind() {
		case '{':
			doc, err := decodeDocument(dec)
			if err != nil {
				return err
			}
			*v = doc
			return nil
		case '[':
			arr, err := decodeArray(dec)
			if err != nil {
				return err
			}
			*v = arr
			return nil
		default:
			return json.SkipFunc
		}
	})
}

// decodeDocument decodes a JSON object into a Document, preserving key order.
// An empty object produces an empty (non-nil) Document.
func decodeDocument(dec *jsontext.Decoder) (models.Document, error) {
	if _, err := dec.ReadToken(); err != nil { // consume '{'
		return nil, fmt.Errorf("read object open: %w", err)
	}
	doc := models.Document{}
	for dec.PeekKind() != '}' {
		var key string
		if err := json.UnmarshalDecode(dec, &key); err != nil {
			return nil, fmt.Errorf("read object key: %w", err)
		}
		var val any
		if err := json.UnmarshalDecode(dec, &val); err != nil {
			return nil, fmt.Errorf("read object value for key %q: %w", key, err)
		}
		doc = append(doc, models.Member{Key: key, Value: val})
	}
	if _, err := dec.ReadToken(); err != nil { // consume '}'
		return nil, fmt.Errorf("read object close: %w", err)
	}
	return doc, nil
}

// decodeArray decodes a JSON array into an Array. An empty array produces an
// empty (non-nil) Array.
func decodeArray(dec *jsontext.Decoder) (models.Array, error) {
	if _, err := dec.ReadToken(); err != nil { // consume '['
		return nil, fmt.Errorf("read array open: %w", err)
	}
	arr := models.Array{}
	for dec.PeekKind() != ']' {
		var el any
		if err := json.UnmarshalDecode(dec, &el); err != nil {
			return nil, fmt.Errorf("read array element %d: %w", len(arr), err)
		}
		arr = append(arr, el)
	}
	if _, err := dec.ReadToken(); err != nil { // consume ']'
		return nil, fmt.Errorf("read array close: %w", err)
	}
	return arr, nil
}

// ParseBytes parses a single JSON value from raw bytes.
func ParseBytes(data []byte) (models.Value, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	var v any
	if err := json.Unmarshal(data, &v, json.WithUnmarshalers(Unmarshalers())); err != nil {
		var syntaxErr *jsontext.SyntacticError
		if stderrors.As(err, &syntaxErr) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxErr.ByteOffset),
				errors.ErrInvalidJSON,
			)
		}
		return nil, errors.NewParsingError("failed to decode JSON", err)
	}
	return v, nil
}

// ParseString parses a single JSON value from a string.
func ParseString(s string) (models.Value, error) {
	return ParseBytes([]byte(s))
}

// Parse reads everything from the reader and parses it as one JSON value.
func Parse(r io.Reader) (models.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseFile parses a single JSON value from a file on disk.
func ParseFile(filePath string) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrFileNotFound)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	return ParseBytes(data)
}
