package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
	assert.Equal(t, "", StripCodeFence("``` ```"))
}

func TestParseJSONish(t *testing.T) {
	decoded := parseJSONish(`{"x": 1}`)
	obj, ok := decoded.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, obj["x"])

	// Embedded object inside prose.
	decoded = parseJSONish(`the model said {"x": 2} and stopped`)
	obj, ok = decoded.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, obj["x"])

	// Non-strings pass through.
	assert.Equal(t, 7.0, parseJSONish(7.0))
	assert.Equal(t, "not json at all", parseJSONish("not json at all"))
}

func TestCollectVisiblePaths(t *testing.T) {
	template := map[string]any{
		"sections": []any{
			map[string]any{
				"type": "grid",
				"fields": []any{
					map[string]any{"label": "Number", "value_path": "invoice.number"},
					map[string]any{"label": "Date", "value_path": "invoice.date"},
				},
			},
			map[string]any{
				"type": "panels",
				"panels": []any{
					map[string]any{"fields": []any{
						map[string]any{"value_path": "seller.name"},
					}},
				},
			},
			map[string]any{
				"type":      "table",
				"data_path": "items",
				"totals": []any{
					map[string]any{"value_path": "totals.due"},
				},
			},
			map[string]any{"type": "notes", "value_path": "notes"},
		},
	}

	visible, itemsVisible := CollectVisiblePaths(template)
	assert.True(t, itemsVisible)
	for _, path := range []string{"invoice.number", "invoice.date", "seller.name", "totals.due", "notes", "items"} {
		assert.True(t, visible[path], path)
	}
	assert.False(t, visible["client.name"])
}

func TestCollectVisiblePathsNoTable(t *testing.T) {
	visible, itemsVisible := CollectVisiblePaths(map[string]any{
		"sections": []any{
			map[string]any{"type": "grid", "fields": []any{
				map[string]any{"value_path": "invoice.number"},
			}},
		},
	})
	assert.False(t, itemsVisible)
	assert.Len(t, visible, 1)
}

func TestListSamples(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "a.json", `{
		"template": {"sections": [{"type": "grid", "fields": [{"value_path": "invoice.number"}]}]},
		"data": {"invoice": {"number": "INV-9"}, "items": [{"description": "Widget", "qty": 2}]}
	}`)
	writeFile(t, dir, "a.pdf", "%PDF-stub")
	writeFile(t, dir, "a.ocr.json", `{"items": []}`)

	// Template arrives as a fenced JSON string nested one level down.
	writeFile(t, dir, "b.json", `{
		"response": {
			"template": "`+"```json"+`\n{\"sections\": []}\n`+"```"+`",
			"data": {"seller": {"name": "Acme"}}
		}
	}`)
	writeFile(t, dir, "b.pdf", "%PDF-stub")
	writeFile(t, dir, "b.ocr.json", `{"items": []}`)

	// All of these must be ignored.
	writeFile(t, dir, "a.ocr.json", `{"items": []}`)
	writeFile(t, dir, "llm_response_raw_a.json", `{}`)
	writeFile(t, dir, "c_failed.json", `{}`)
	writeFile(t, dir, "nopdf.json", `{"template": {}, "data": {}}`)
	writeFile(t, dir, "broken.json", `{not json`)

	samples, err := List(dir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "a", samples[0].ID)
	assert.Equal(t, "INV-9", samples[0].GT.Get("invoice.number"))
	require.Len(t, samples[0].GT.Items, 1)
	assert.True(t, samples[0].VisiblePaths["invoice.number"])
	assert.False(t, samples[0].ItemsVisible)

	assert.Equal(t, "b", samples[1].ID)
	assert.Equal(t, "Acme", samples[1].GT.Get("seller.name"))
	assert.Empty(t, samples[1].VisiblePaths)
}

func TestListMissingDirectory(t *testing.T) {
	samples, err := List(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, samples)
}
