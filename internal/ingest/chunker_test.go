package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, SplitText("", 1000, 100))
}

func TestSplitText_ShorterThanWindow(t *testing.T) {
	chunks := SplitText("short text", 1000, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitText_ExactWindow(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := SplitText(text, 1000, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

// Concatenating chunks with the overlap removed must reconstruct the
// original text, and every chunk except possibly the last has length size.
func TestSplitText_Reconstruction(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"plain ascii", strings.Repeat("abcdefghij", 250), 1000, 100},
		{"not window aligned", strings.Repeat("x", 2345), 1000, 100},
		{"small windows", "the quick brown fox jumps over the lazy dog", 10, 3},
		{"multi-byte runes", strings.Repeat("héllo wörld – ", 200), 100, 20},
		{"trailing remainder", strings.Repeat("z", 901*3+1), 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.size, tt.overlap)
			require.NotEmpty(t, chunks)

			for i, c := range chunks {
				if i < len(chunks)-1 {
					assert.Equal(t, tt.size, len([]rune(c)), "chunk %d length", i)
				} else {
					assert.LessOrEqual(t, len([]rune(c)), tt.size, "final chunk length")
				}
			}

			var sb strings.Builder
			sb.WriteString(chunks[0])
			for _, c := range chunks[1:] {
				runes := []rune(c)
				sb.WriteString(string(runes[tt.overlap:]))
			}
			assert.Equal(t, tt.text, sb.String())
		})
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	text := strings.Repeat("determinism matters ", 300)
	a := SplitText(text, 1000, 100)
	b := SplitText(text, 1000, 100)
	assert.Equal(t, a, b)
}

func TestSplitText_OverlapSharedBetweenNeighbors(t *testing.T) {
	text := strings.Repeat("0123456789", 300)
	chunks := SplitText(text, 1000, 100)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-100:]), string(cur[:100]), "overlap between chunk %d and %d", i-1, i)
	}
}
