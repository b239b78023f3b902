// Package textsplit splits documents into overlapping segments sized for
// embedding. Splitting is a pure function of the input and configuration:
// the same document always yields the same chunk boundaries.
package textsplit

import (
	"errors"
	"strings"
)

var ErrEmptyDocument = errors.New("document is empty after normalization")

// separators are tried in order of preference; a unit that still exceeds the
// chunk size after the last separator is hard-cut on rune boundaries.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split breaks text into chunks of at most chunkSize runes. Consecutive
// chunks share an overlap window so context at the boundary survives.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return nil, ErrEmptyDocument
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	if len([]rune(normalized)) <= chunkSize {
		return []string{normalized}, nil
	}

	units := splitUnits(normalized, chunkSize, 0)

	var chunks []string
	var current []rune
	for _, unit := range units {
		runes := []rune(unit)
		if len(current) > 0 && len(current)+len(runes) > chunkSize {
			chunks = append(chunks, strings.TrimSpace(string(current)))
			// The overlap carry shrinks when the incoming unit is near
			// full size, so a chunk never exceeds chunkSize.
			carry := overlap
			if max := chunkSize - len(runes); carry > max {
				carry = max
			}
			current = tail(current, carry)
		}
		current = append(current, runes...)
	}
	if trimmed := strings.TrimSpace(string(current)); trimmed != "" {
		chunks = append(chunks, trimmed)
	}

	return chunks, nil
}

// splitUnits recursively breaks text on semantic boundaries until every unit
// fits in chunkSize, falling back to hard rune cuts for oversized runs.
func splitUnits(text string, chunkSize, sepIdx int) []string {
	if len([]rune(text)) <= chunkSize {
		return []string{text}
	}
	if sepIdx >= len(separators) {
		return hardCut(text, chunkSize)
	}

	sep := separators[sepIdx]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return splitUnits(text, chunkSize, sepIdx+1)
	}

	var units []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		units = append(units, splitUnits(part, chunkSize, sepIdx+1)...)
	}
	return units
}

func hardCut(text string, chunkSize int) []string {
	runes := []rune(text)
	var cuts []string
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		cuts = append(cuts, string(runes[i:end]))
	}
	return cuts
}

func tail(runes []rune, n int) []rune {
	if n <= 0 || len(runes) == 0 {
		return nil
	}
	if n >= len(runes) {
		n = len(runes)
	}
	out := make([]rune, n)
	copy(out, runes[len(runes)-n:])
	return out
}
