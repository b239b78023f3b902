package textsplit

import (
	"errors"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantErr   error
		check     func(t *testing.T, chunks []string)
	}{
		{
			name:    "empty input",
			text:    "",
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "whitespace only",
			text:    "   \n\t  ",
			wantErr: ErrEmptyDocument,
		},
		{
			name:      "short text is a single chunk",
			text:      "5 years Python, led a 3-person team, built a payments API",
			chunkSize: 1000,
			overlap:   200,
			check: func(t *testing.T, chunks []string) {
				if len(chunks) != 1 {
					t.Fatalf("expected 1 chunk, got %d", len(chunks))
				}
			},
		},
		{
			name:      "paragraphs split into multiple chunks",
			text:      strings.Repeat("First paragraph about backend work.\n\n", 20),
			chunkSize: 100,
			overlap:   20,
			check: func(t *testing.T, chunks []string) {
				if len(chunks) < 2 {
					t.Fatalf("expected multiple chunks, got %d", len(chunks))
				}
				for i, c := range chunks {
					if got := len([]rune(c)); got > 100 {
						t.Errorf("chunk %d has %d runes, exceeds chunk size", i, got)
					}
					if strings.TrimSpace(c) == "" {
						t.Errorf("chunk %d is blank", i)
					}
				}
			},
		},
		{
			name:      "oversized run gets hard cut",
			text:      strings.Repeat("x", 350),
			chunkSize: 100,
			overlap:   0,
			check: func(t *testing.T, chunks []string) {
				if len(chunks) != 4 {
					t.Fatalf("expected 4 chunks, got %d", len(chunks))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.chunkSize, tt.overlap)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, chunks)
		})
	}
}

func TestSplitNeverExceedsChunkSize(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
	}{
		{"hard cut run with overlap", strings.Repeat("a", 2500), 1000, 200},
		{"full size units leave no room for carry", strings.Repeat("b", 500), 100, 40},
		{"sentences with large overlap", strings.Repeat("Built the billing pipeline. ", 60), 120, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks, err := Split(tc.text, tc.chunkSize, tc.overlap)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, c := range chunks {
				if got := len([]rune(c)); got > tc.chunkSize {
					t.Errorf("chunk %d has %d runes, exceeds chunk size %d", i, got, tc.chunkSize)
				}
			}
		})
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Shipped a payments API in Go. Scaled it to 1k rps. ", 40)

	first, err := Split(text, 120, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Split(text, 120, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitOverlapCarriesBoundaryText(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon ", 30)

	chunks, err := Split(text, 80, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1]
		if len(prevTail) > 10 {
			prevTail = prevTail[len(prevTail)-10:]
		}
		if !strings.Contains(chunks[i], strings.TrimSpace(prevTail)) {
			t.Errorf("chunk %d does not carry the tail of chunk %d", i, i-1)
		}
	}
}
