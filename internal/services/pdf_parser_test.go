package services

import (
	"strings"
	"testing"
)

func TestExtractTextRejectsNonPDF(t *testing.T) {
	parser := NewPDFParserService()

	for _, data := range [][]byte{nil, []byte("just some text, not a pdf")} {
		if _, err := parser.ExtractText(data); err == nil {
			t.Fatalf("ExtractText(%q) should fail", data)
		}
	}
}

func TestCleanText(t *testing.T) {
	in := "\n  Senior Backend Engineer \n\n\n  Go, Postgres  \n\t\n Remote \n"
	want := "Senior Backend Engineer\nGo, Postgres\nRemote"
	if got := CleanText(in); got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"ééééé", 2, "éé"},
		{"unbounded", 0, "unbounded"},
	}

	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}

	long := strings.Repeat("x", maxDescriptionRunes+50)
	if got := truncateRunes(long, maxDescriptionRunes); len(got) != maxDescriptionRunes {
		t.Fatalf("len = %d", len(got))
	}
}
