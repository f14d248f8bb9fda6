package chunk_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/burrow/pkg/service/chunk"
	"github.com/m-mizutani/gt"
)

func TestSplitEmpty(t *testing.T) {
	gt.A(t, chunk.Split("")).Length(0)
	gt.A(t, chunk.Split("   \n\t  ")).Length(0)
}

func TestSplitSingleWindow(t *testing.T) {
	chunks := chunk.Split("hello   world\n foo")
	gt.A(t, chunks).Length(1)
	gt.Equal(t, chunks[0], "hello world foo")
}

func TestSplitExactWindowBoundary(t *testing.T) {
	// Text of exactly maxChars must yield one chunk, not a trailing empty one
	text := strings.Repeat("a", 1000)
	chunks := chunk.Split(text)
	gt.A(t, chunks).Length(1)
	gt.Equal(t, chunks[0], text)
}

func TestSplitMultibyte(t *testing.T) {
	// 1000 Japanese characters are 3000 bytes but still one window
	text := strings.Repeat("あ", 1000)
	chunks := chunk.Split(text)
	gt.A(t, chunks).Length(1)
	gt.Equal(t, chunks[0], text)

	// Windows never cut a rune in half
	chunks = chunk.Split(strings.Repeat("あ", 2500))
	gt.A(t, chunks).Length(3)
	for _, c := range chunks {
		gt.True(t, utf8.ValidString(c))
	}
	gt.Equal(t, len([]rune(chunks[0])), 1000)
	gt.Equal(t, len([]rune(chunks[2])), 800)
}

func TestSplitProgress(t *testing.T) {
	// 2500 chars with 1000/150 windows: starts at 0, 850, 1700
	text := strings.Repeat("x", 2500)
	chunks := chunk.Split(text)
	gt.A(t, chunks).Length(3)
	gt.Equal(t, len(chunks[0]), 1000)
	gt.Equal(t, len(chunks[1]), 1000)
	gt.Equal(t, len(chunks[2]), 800)
}

func TestSplitReconstruct(t *testing.T) {
	// Concatenating chunks with the overlap removed must rebuild the
	// normalized input exactly once per character
	var sb strings.Builder
	for i := 0; i < 700; i++ {
		sb.WriteString("word")
		sb.WriteByte(byte('a' + i%26))
		sb.WriteByte(' ')
	}
	normalized := strings.TrimSpace(sb.String())

	const maxChars, overlap = 300, 40
	chunks := chunk.Split(normalized, chunk.WithMaxChars(maxChars), chunk.WithOverlap(overlap))
	gt.Number(t, len(chunks)).Greater(1)

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += c[min(overlap, len(c)):]
	}
	gt.Equal(t, rebuilt, normalized)
}

func TestSplitOversizedOverlap(t *testing.T) {
	// Overlap >= window size is clamped so the loop still advances
	text := strings.Repeat("y", 50)
	chunks := chunk.Split(text, chunk.WithMaxChars(10), chunk.WithOverlap(100))
	gt.Number(t, len(chunks)).Greater(0)
	gt.Equal(t, chunks[len(chunks)-1][len(chunks[len(chunks)-1])-1], byte('y'))

	// Each step advances exactly 1 char under a fully clamped overlap
	gt.A(t, chunks).Length(41)
}
