package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Paragraphs are packed into chunks of
// at most maxChunkSize runes; the tail of each chunk is repeated at the
// head of the next so retrieval does not lose cross-boundary context.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 || overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) > maxChunkSize {
			pieces = append(pieces, splitLongParagraph(para, maxChunkSize)...)
		} else {
			pieces = append(pieces, para)
		}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		prev := current.String()
		current.Reset()
		if overlap > 0 {
			current.WriteString(lastRunes(prev, overlap))
			current.WriteString(" ")
		}
	}

	for _, piece := range pieces {
		if current.Len()+len(piece)+2 > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(piece)
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitLongParagraph breaks an oversized paragraph on sentence boundaries,
// hard-splitting any single sentence that still exceeds the limit.
func splitLongParagraph(para string, maxChunkSize int) []string {
	var pieces []string

	for _, sentence := range strings.SplitAfter(para, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		for utf8.RuneCountInString(sentence) > maxChunkSize {
			runes := []rune(sentence)
			pieces = append(pieces, string(runes[:maxChunkSize]))
			sentence = string(runes[maxChunkSize:])
		}
		if sentence != "" {
			pieces = append(pieces, sentence)
		}
	}

	return pieces
}

func lastRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
