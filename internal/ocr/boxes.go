package ocr

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"strings"
)

// Box is one positioned OCR text fragment.
type Box struct {
	Page int     `json:"page"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Text string  `json:"text"`
}

// lineMergeTolerance is the vertical distance within which two boxes
// are treated as the same text line.
const lineMergeTolerance = 4.0

// ReadBoxes loads an OCR box file, accepting either a bare array or an
// object with an "items" array. Any failure yields no boxes, not an
// error; a missing or corrupt box file just scores like an empty page.
func ReadBoxes(path string) []Box {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var wrapper struct {
		Items []Box `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Items != nil {
		return wrapper.Items
	}
	var boxes []Box
	if err := json.Unmarshal(raw, &boxes); err == nil {
		return boxes
	}
	return nil
}

// LinesFromBoxes orders boxes into reading order (page, then top to
// bottom, then left to right) and joins fragments whose vertical
// positions fall within the merge tolerance into single lines.
func LinesFromBoxes(boxes []Box) string {
	sorted := make([]Box, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Text) != "" {
			sorted = append(sorted, box)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines []string
	var current []string
	haveLast := false
	lastY := 0.0
	for _, box := range sorted {
		text := strings.TrimSpace(box.Text)
		if !haveLast || math.Abs(box.Y0-lastY) < lineMergeTolerance {
			current = append(current, text)
		} else {
			if len(current) > 0 {
				lines = append(lines, strings.Join(current, " "))
			}
			current = []string{text}
		}
		lastY = box.Y0
		haveLast = true
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return strings.Join(lines, "\n")
}
