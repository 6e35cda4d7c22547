// Package metadata extracts model names, temperatures and token usage from
// the handful of known experiment metadata shapes, and aggregates the
// results per folder.
//
// Extraction is best effort: an ordered list of shape matchers is tried per
// field and the first hit wins. Key lookups accept both snake_case and
// camelCase spellings, with the camel variant derived rather than
// hand-enumerated.
package metadata

import (
	"strconv"

	"github.com/iancoleman/strcase"

	"github.com/jsonprof/jsonprof/internal/models"
)

// get returns the value for key in doc.
func get(doc models.Document, key string) (models.Value, bool) {
	for _, m := range doc {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// getEither returns the value under the snake_case key or its derived
// camelCase variant.
func getEither(doc models.Document, snakeKey string) (models.Value, bool) {
	if v, ok := get(doc, snakeKey); ok {
		return v, true
	}
	return get(doc, strcase.ToLowerCamel(snakeKey))
}

// getDoc resolves a chain of keys where every step must be an object.
func getDoc(v models.Value, keys ...string) (models.Document, bool) {
	for _, key := range keys {
		doc, ok := v.(models.Document)
		if !ok {
			return nil, false
		}
		v, ok = get(doc, key)
		if !ok {
			return nil, false
		}
	}
	doc, ok := v.(models.Document)
	return doc, ok
}

// toInt64 coerces the numeric representations seen in the wild: JSON numbers
// (truncated) and numeric strings.
func toInt64(v models.Value) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// fillUsage copies token counts out of one usage object into any still-unset
// fields of u.
func fillUsage(u *models.TokenUsage, usage models.Document) {
	set := func(dst **int64, snakeKey string) {
		if *dst != nil {
			return
		}
		v, ok := getEither(usage, snakeKey)
		if !ok || v == nil {
			return
		}
		if n, ok := toInt64(v); ok {
			*dst = &n
		}
	}
	set(&u.PromptTokens, "prompt_tokens")
	set(&u.CompletionTokens, "completion_tokens")
	set(&u.TotalTokens, "total_tokens")
}

// usageShapes lists, in priority order, where a usage object may live inside
// a metadata document. The first shape carrying a given field wins.
var usageShapes = []func(models.Document) (models.Document, bool){
	func(d models.Document) (models.Document, bool) { return getDoc(d, "tokenUsage") },
	func(d models.Document) (models.Document, bool) { return getDoc(d, "tokenUsageEstimate") },
	func(d models.Document) (models.Document, bool) {
		return getDoc(d, "modeler_metadata", "response_metadata", "token_usage")
	},
	func(d models.Document) (models.Document, bool) {
		return getDoc(d, "modeler_metadata", "response_metadata")
	},
	func(d models.Document) (models.Document, bool) { return getDoc(d, "token_usage") },
}

// ExtractTokenUsage pulls prompt/completion/total token counts out of any of
// the recognized metadata shapes.
func ExtractTokenUsage(v models.Value) models.TokenUsage {
	var u models.TokenUsage
	doc, ok := v.(models.Document)
	if !ok {
		return u
	}
	for _, shape := range usageShapes {
		usage, ok := shape(doc)
		if !ok {
			continue
		}
		fillUsage(&u, usage)
		if u.PromptTokens != nil && u.CompletionTokens != nil && u.TotalTokens != nil {
			break
		}
	}
	return u
}

// ModelInfo is the extracted model identity of one metadata file.
type ModelInfo struct {
	Model       *string
	Temperature *float64
}

// ExtractModelInfo locates the model name and temperature across the known
// locations, in priority order.
func ExtractModelInfo(v models.Value) ModelInfo {
	var info ModelInfo
	doc, ok := v.(models.Document)
	if !ok {
		return info
	}

	if mm, ok := getDoc(doc, "modeler_metadata"); ok {
		if s, ok := getString(mm, "model"); ok {
			info.Model = &s
		}
		if t, ok := getFloat(mm, "temperature"); ok {
			info.Temperature = &t
		}
	}
	if info.Model == nil {
		if s, ok := getString(doc, "model"); ok {
			info.Model = &s
		}
	}
	if info.Model == nil {
		if gi, ok := getDoc(doc, "response", "generationInfo"); ok {
			if s, ok := getString(gi, "model_name"); ok {
				info.Model = &s
			}
		}
	}
	if info.Model == nil {
		if rm, ok := getDoc(doc, "response_metadata"); ok {
			if s, ok := getString(rm, "model_name"); ok {
				info.Model = &s
			}
		}
	}
	return info
}

func getString(doc models.Document, key string) (string, bool) {
	v, ok := get(doc, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func getFloat(doc models.Document, key string) (float64, bool) {
	v, ok := get(doc, key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// FindGenerationTexts collects generation text fields. It first looks for the
// generations list under response/responseMetadata (or the document itself);
// if that finds nothing it falls back to a recursive walk collecting every
// string-valued "text" field.
func FindGenerationTexts(v models.Value) []string {
	doc, ok := v.(models.Document)
	if !ok {
		return nil
	}

	resp := models.Value(doc)
	if r, ok := get(doc, "response"); ok && r != nil {
		resp = r
	} else if r, ok := get(doc, "responseMetadata"); ok && r != nil {
		resp = r
	}

	var out []string
	if respDoc, ok := resp.(models.Document); ok {
		if gens, ok := get(respDoc, "generations"); ok {
			if arr, ok := gens.(models.Array); ok {
				for _, gen := range arr {
					switch g := gen.(type) {
					case models.Array:
						for _, inner := range g {
							out = appendText(out, inner)
						}
					case models.Document:
						out = appendText(out, g)
					}
				}
			}
		}
	}

	if len(out) == 0 {
		collectTextFields(doc, &out)
	}
	return out
}

func appendText(out []string, v models.Value) []string {
	doc, ok := v.(models.Document)
	if !ok {
		return out
	}
	if t, ok := get(doc, "text"); ok {
		s, _ := t.(string)
		return append(out, s)
	}
	return out
}

func collectTextFields(v models.Value, out *[]string) {
	switch val := v.(type) {
	case models.Document:
		for _, m := range val {
			if m.Key == "text" {
				if s, ok := m.Value.(string); ok {
					*out = append(*out, s)
					continue
				}
			}
			collectTextFields(m.Value, out)
		}
	case models.Array:
		for _, el := range val {
			collectTextFields(el, out)
		}
	}
}
