// Package dataset loads generated invoice samples from a directory. A
// sample is a `<id>.json` ground-truth payload plus the rendered
// `<id>.pdf` and its `<id>.ocr.json` box file. Payloads come straight
// from model-backed generators, so the loader tolerates code fences,
// stringified JSON, and nesting around the template/data pair.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-bench/internal/invoice"
)

// Sample is one benchmarkable dataset entry.
type Sample struct {
	ID           string
	GT           *invoice.Record
	Template     map[string]any
	VisiblePaths map[string]bool
	ItemsVisible bool
	PDFPath      string
	OCRPath      string
}

// List scans a dataset directory and returns its usable samples sorted
// by ID. Entries with unreadable payloads or missing companion files are
// skipped, not fatal.
func List(dir string, logger *zap.Logger) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset dir: %w", err)
	}

	var samples []Sample
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, ".ocr.json") ||
			strings.HasPrefix(name, "llm_response_raw_") ||
			strings.HasSuffix(name, "_failed.json") {
			continue
		}

		jsonPath := filepath.Join(dir, name)
		raw, err := os.ReadFile(jsonPath)
		if err != nil {
			logger.Warn("Skipping unreadable sample file", zap.String("path", jsonPath), zap.Error(err))
			continue
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			logger.Warn("Skipping malformed sample file", zap.String("path", jsonPath), zap.Error(err))
			continue
		}
		template, data, ok := coercePayload(decoded)
		if !ok {
			logger.Warn("Sample file has no template/data payload", zap.String("path", jsonPath))
			continue
		}

		base := strings.TrimSuffix(name, ".json")
		pdfPath := filepath.Join(dir, base+".pdf")
		ocrPath := filepath.Join(dir, base+".ocr.json")
		if !fileExists(pdfPath) || !fileExists(ocrPath) {
			logger.Debug("Sample missing rendered files", zap.String("id", base))
			continue
		}

		visible, itemsVisible := CollectVisiblePaths(template)
		samples = append(samples, Sample{
			ID:           base,
			GT:           recordFromMap(data),
			Template:     template,
			VisiblePaths: visible,
			ItemsVisible: itemsVisible,
			PDFPath:      pdfPath,
			OCRPath:      ocrPath,
		})
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].ID < samples[j].ID })
	return samples, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// coercePayload digs the template/data pair out of a generator payload.
// Either half may itself be a JSON string (possibly fenced) or wrap a
// further template/data pair; coercion recurses until both halves are
// plain objects.
func coercePayload(raw any) (template, data map[string]any, ok bool) {
	found := findTemplatePayload(raw)
	if found == nil {
		return nil, nil, false
	}
	tmplVal := parseJSONish(found["template"])
	dataVal := parseJSONish(found["data"])
	if nested := findTemplatePayload(tmplVal); nested != nil {
		return coercePayload(nested)
	}
	if nested := findTemplatePayload(dataVal); nested != nil {
		return coercePayload(nested)
	}
	tmpl, tmplOK := tmplVal.(map[string]any)
	dataMap, dataOK := dataVal.(map[string]any)
	if !tmplOK || !dataOK {
		return nil, nil, false
	}
	return tmpl, dataMap, true
}

// findTemplatePayload walks the value tree for the first object holding
// both a "template" and a "data" key.
func findTemplatePayload(obj any) map[string]any {
	switch v := obj.(type) {
	case map[string]any:
		_, hasTemplate := v["template"]
		_, hasData := v["data"]
		if hasTemplate && hasData {
			return v
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if found := findTemplatePayload(v[key]); found != nil {
				return found
			}
		}
	case []any:
		for _, item := range v {
			if found := findTemplatePayload(item); found != nil {
				return found
			}
		}
	}
	return nil
}

// parseJSONish turns a stringified JSON value into its decoded form.
// Non-strings and already-decoded containers pass through; undecodable
// strings are returned as-is.
func parseJSONish(value any) any {
	text, isString := value.(string)
	if !isString {
		return value
	}
	cleaned := StripCodeFence(text)
	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err == nil {
		return decoded
	}
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &decoded); err == nil {
			return decoded
		}
	}
	if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &decoded); err == nil {
			return decoded
		}
	}
	return value
}

var fenceTagRe = regexp.MustCompile("^```[a-zA-Z0-9]*")

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimSpace(fenceTagRe.ReplaceAllString(text, ""))
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}
	return text
}

// recordFromMap converts a decoded ground-truth object into a Record
// through a JSON round trip, which tolerates extra keys and mixed value
// types.
func recordFromMap(data map[string]any) *invoice.Record {
	rec := invoice.New()
	encoded, err := json.Marshal(data)
	if err != nil {
		return rec
	}
	if err := json.Unmarshal(encoded, rec); err != nil {
		return invoice.New()
	}
	return rec
}

// CollectVisiblePaths walks a document template's sections and returns
// the field paths the rendered sample actually displays, plus whether
// the item table is shown. Extractors are not penalized for fields the
// template never printed.
func CollectVisiblePaths(template map[string]any) (map[string]bool, bool) {
	visible := map[string]bool{}
	itemsVisible := false
	sections, _ := template["sections"].([]any)
	for _, raw := range sections {
		section, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		stype, _ := section["type"].(string)
		if stype == "" {
			stype = "grid"
		}
		switch stype {
		case "grid":
			addFieldPaths(visible, section["fields"])
		case "panels":
			panels, _ := section["panels"].([]any)
			for _, rawPanel := range panels {
				if panel, ok := rawPanel.(map[string]any); ok {
					addFieldPaths(visible, panel["fields"])
				}
			}
		case "table":
			if dataPath, _ := section["data_path"].(string); dataPath != "" {
				visible[dataPath] = true
				if dataPath == "items" {
					itemsVisible = true
				}
			}
			addFieldPaths(visible, section["totals"])
		case "notes":
			if path, _ := section["value_path"].(string); path != "" {
				visible[path] = true
			}
		}
	}
	return visible, itemsVisible
}

func addFieldPaths(visible map[string]bool, fields any) {
	list, _ := fields.([]any)
	for _, raw := range list {
		field, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if path, _ := field["value_path"].(string); path != "" {
			visible[path] = true
		}
	}
}
