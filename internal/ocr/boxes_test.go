package ocr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesFromBoxesMergesCloseRows(t *testing.T) {
	boxes := []Box{
		{Page: 1, X0: 10, Y0: 100, Text: "Invoice"},
		{Page: 1, X0: 80, Y0: 102.5, Text: "number:"},
		{Page: 1, X0: 150, Y0: 101, Text: "INV-1"},
		{Page: 1, X0: 10, Y0: 120, Text: "Total:"},
		{Page: 1, X0: 60, Y0: 120, Text: "30.35"},
	}
	text := LinesFromBoxes(boxes)
	assert.Equal(t, "Invoice INV-1 number:\nTotal: 30.35", text)
}

func TestLinesFromBoxesOrdersByPageThenPosition(t *testing.T) {
	boxes := []Box{
		{Page: 2, X0: 10, Y0: 50, Text: "second page"},
		{Page: 1, X0: 50, Y0: 200, Text: "bottom"},
		{Page: 1, X0: 10, Y0: 50, Text: "top"},
	}
	text := LinesFromBoxes(boxes)
	assert.Equal(t, "top\nbottom\nsecond page", text)
}

func TestLinesFromBoxesSkipsEmptyText(t *testing.T) {
	boxes := []Box{
		{Page: 1, Y0: 10, Text: "   "},
		{Page: 1, Y0: 10, Text: "kept"},
	}
	assert.Equal(t, "kept", LinesFromBoxes(boxes))
	assert.Equal(t, "", LinesFromBoxes(nil))
}

func TestReadBoxes(t *testing.T) {
	dir := t.TempDir()

	wrapped := filepath.Join(dir, "wrapped.json")
	require.NoError(t, os.WriteFile(wrapped, []byte(`{"items": [{"page": 1, "y0": 5, "text": "hi"}]}`), 0644))
	boxes := ReadBoxes(wrapped)
	require.Len(t, boxes, 1)
	assert.Equal(t, "hi", boxes[0].Text)

	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(`[{"page": 2, "y0": 1, "text": "there"}]`), 0644))
	boxes = ReadBoxes(bare)
	require.Len(t, boxes, 1)
	assert.Equal(t, 2, boxes[0].Page)

	assert.Nil(t, ReadBoxes(filepath.Join(dir, "missing.json")))

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{nope`), 0644))
	assert.Nil(t, ReadBoxes(corrupt))
}
