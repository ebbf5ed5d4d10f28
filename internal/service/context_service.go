package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/arturoeanton/go-code-context/internal/port"
)

// Retrieval constants. MatchCount is the top-K requested from storage;
// SimilarityThreshold is the minimum score a match must reach to survive.
const (
	MatchCount          = 5
	SimilarityThreshold = 0.35

	// Hex-density filter: a match is dropped only when it has more than
	// hexMarkerFloor "0x" markers AND more than hexDensityRatio markers
	// per 100 characters. Sparse hex mentions in prose or code survive.
	hexMarkerFloor  = 10
	hexDensityRatio = 0.2
)

// contextDelimiter separates chunk contents inside the augmented prompt.
const contextDelimiter = "\n---\n"

const promptTemplate = `You are an expert AI programming assistant.
A user is writing the following code and needs a completion.

<USER_CODE>
%s
</USER_CODE>

To help you, here is some additional relevant context from other files in the user's repository:

<CONTEXT>
%s
</CONTEXT>

Based on the user's code and the provided context, complete the user's code.
Only provide the code completion itself, without any introductory text.
`

// ContextService retrieves semantically similar code chunks for a snippet
// and assembles completion prompts from them.
type ContextService struct {
	embedder port.Embedder
	store    port.ChunkStore
	metrics  port.MetricsRecorder
	logger   *slog.Logger
}

// NewContextService creates a new context-retrieval service.
func NewContextService(embedder port.Embedder, store port.ChunkStore, metrics port.MetricsRecorder) *ContextService {
	return &ContextService{
		embedder: embedder,
		store:    store,
		metrics:  metrics,
		logger:   slog.Default(),
	}
}

// Retrieve embeds the snippet, queries the top-K nearest chunks, and
// applies the similarity and hex-density filters in storage order. An
// empty result is not an error.
func (s *ContextService) Retrieve(ctx context.Context, snippet string) ([]domain.SimilarChunk, error) {
	vector, err := s.embedder.Embed(ctx, snippet)
	if err != nil {
		return nil, fmt.Errorf("embed snippet: %w", err)
	}

	matches, err := s.store.SearchSimilar(ctx, vector, MatchCount)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}

	// Filters must not re-sort: matches stay in storage order.
	filtered := matches[:0:0]
	for _, m := range matches {
		if m.Similarity < SimilarityThreshold {
			continue
		}
		if isDataHeavy(m.Content) {
			continue
		}
		filtered = append(filtered, m)
	}

	s.metrics.RetrievalQuery(len(filtered), len(matches)-len(filtered))
	s.logger.Info("context retrieved", "requested", MatchCount, "returned", len(matches), "kept", len(filtered))
	return filtered, nil
}

// Augment builds the completion prompt for originalCode from the retrieved
// chunks. Pure string assembly: identical inputs yield identical output.
func (s *ContextService) Augment(originalCode string, chunks []domain.SimilarChunk) string {
	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	return fmt.Sprintf(promptTemplate, originalCode, strings.Join(contents, contextDelimiter))
}

// isDataHeavy reports whether content looks like an embedded hex/data blob.
// Both conditions must hold: the absolute marker count exceeds the floor
// and the marker density (per 100 characters) exceeds the ratio.
func isDataHeavy(content string) bool {
	if len(content) == 0 {
		return false
	}
	markers := strings.Count(content, "0x")
	if markers <= hexMarkerFloor {
		return false
	}
	density := float64(markers) / (float64(len(content)) / 100)
	return density > hexDensityRatio
}
