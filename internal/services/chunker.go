package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkRunes   = 1000
	defaultChunkOverlap = 1
)

type TextChunker interface {
	// ChunkText splits text into pieces of at most maxRunes runes, repeating
	// the last overlap sentences of a chunk at the start of the next one.
	ChunkText(text string, maxRunes int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker.
func (tc *textChunker) ChunkText(text string, maxRunes int, overlap int) []string {
	if maxRunes <= 0 {
		maxRunes = defaultChunkRunes
	}
	if overlap < 0 {
		overlap = 0
	}

	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	fresh := 0

	lenWith := func(n int) int {
		if len(current) == 0 {
			return n
		}
		return joinedLen(current) + 1 + n
	}

	emit := func() {
		if fresh == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))
		keep := min(overlap, len(current))
		current = append([]string(nil), current[len(current)-keep:]...)
		fresh = 0
	}

	for _, s := range sentences {
		// A single sentence longer than the limit is cut on rune boundaries.
		for utf8.RuneCountInString(s) > maxRunes {
			emit()
			current = nil
			head, tail := splitRunes(s, maxRunes)
			chunks = append(chunks, head)
			s = strings.TrimSpace(tail)
		}
		if s == "" {
			continue
		}

		n := utf8.RuneCountInString(s)
		if fresh > 0 && lenWith(n) > maxRunes {
			emit()
		}
		for len(current) > 0 && lenWith(n) > maxRunes {
			current = current[1:]
		}
		current = append(current, s)
		fresh++
	}
	emit()

	return chunks
}

// splitIntoSentences keeps the terminating punctuation with each sentence.
func splitIntoSentences(text string) []string {
	var result []string
	var b strings.Builder

	for _, r := range strings.Join(strings.Fields(text), " ") {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				result = append(result, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		result = append(result, s)
	}
	return result
}

func joinedLen(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := len(parts) - 1
	for _, p := range parts {
		n += utf8.RuneCountInString(p)
	}
	return n
}

func splitRunes(s string, n int) (string, string) {
	runes := []rune(s)
	return string(runes[:n]), string(runes[n:])
}
