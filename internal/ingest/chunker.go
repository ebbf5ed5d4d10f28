package ingest

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// SplitText splits text into overlapping windows of at most size characters,
// with overlap characters shared between consecutive windows. The original
// text is preserved exactly: concatenating the chunks with the overlap
// removed reconstructs the input. Trailing content shorter than size becomes
// the final chunk. Operates on runes so multi-byte characters never split.
func SplitText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		chunks = append(chunks, string(runes[start:end]))
	}
}
