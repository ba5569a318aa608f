// Package chunker splits page text into overlapping, bounded-size chunks.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docquery-ai/docquery/internal/models"
)

const (
	DefaultChunkSize  = 1000  // runes per chunk
	DefaultOverlap    = 200   // runes carried into the next chunk
	DefaultStoreBytes = 36000 // byte cap on the stored copy of a chunk
)

// Chunker walks a page with a sliding window of Size runes advancing by
// Size-Overlap per step, preferring to end chunks on a sentence or word
// boundary once past 80% of the window.
type Chunker struct {
	size       int
	overlap    int
	storeBytes int
}

// New clamps its arguments so that overlap < size always holds; the window
// start strictly increases every iteration and the walk terminates.
func New(size, overlap, storeBytes int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}
	if storeBytes <= 0 {
		storeBytes = DefaultStoreBytes
	}
	return &Chunker{size: size, overlap: overlap, storeBytes: storeBytes}
}

// Split chunks one page. Empty or whitespace-only pages yield nil, never an
// error: a blank page is not a failure, it simply contributes nothing.
func (c *Chunker) Split(page models.Page) []models.Chunk {
	text := Normalize(page.Text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []models.Chunk

	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := snapBoundary(runes, start, end, c.size); cut > start {
			end = cut
		}

		chunkText := strings.TrimSpace(string(runes[start:end]))
		if chunkText != "" {
			chunks = append(chunks, models.Chunk{
				Text:          chunkText,
				TruncatedText: TruncateBytes(chunkText, c.storeBytes),
				PageNumber:    page.PageNumber,
				ChunkIndex:    len(chunks),
			})
		}

		if end == len(runes) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}

// snapBoundary finds a better cut point than a mid-word break: the latest
// sentence terminator in the last 20% of the window, else the latest space
// there. Returns -1 when no boundary exists past the 80% mark.
func snapBoundary(runes []rune, start, end, size int) int {
	min := start + (size*4)/5
	if min >= end {
		return -1
	}
	for i := end - 1; i >= min; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	for i := end - 1; i >= min; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

// Normalize collapses whitespace runs to single spaces and drops control
// characters, so chunk boundaries never depend on the source's line layout.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case unicode.IsControl(r):
			// skip
		default:
			if inSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TruncateBytes caps s at max bytes without splitting a multi-byte codepoint.
func TruncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
