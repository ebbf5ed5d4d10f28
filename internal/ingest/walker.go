package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/arturoeanton/go-code-context/internal/port"
)

// ignoredDirectories are pruned at traversal time so their subtrees are
// never descended into.
var ignoredDirectories = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
}

// ignoredFiles are lockfiles and other generated artifacts never worth
// embedding.
var ignoredFiles = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
}

// allowedExtensions is the source/text allow-list. A file must match it to
// be chunked; the language table tags it separately and may come up empty.
var allowedExtensions = map[string]bool{
	".py":   true,
	".js":   true,
	".ts":   true,
	".md":   true,
	".go":   true,
	".rs":   true,
	".java": true,
	".c":    true,
	".cpp":  true,
	".h":    true,
	".hpp":  true,
}

// FileChunk is one chunk of one file, emitted by the walker.
type FileChunk struct {
	// RelativePath is the file's path relative to the repository root.
	RelativePath string
	// Content is the chunk text, an exact slice of the original file.
	Content string
	// Language is the label for the file's extension, or "" if unmapped.
	Language string
}

// Walker walks a repository tree and emits chunked file contents.
type Walker struct {
	ChunkSize    int
	ChunkOverlap int
	Metrics      port.MetricsRecorder
	Logger       *slog.Logger
}

// NewWalker creates a walker with the default chunking parameters.
func NewWalker(m port.MetricsRecorder, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Metrics:      m,
		Logger:       logger,
	}
}

// Walk traverses root, chunking every allowed file, and calls fn for each
// chunk in file order. Ignored directories are pruned before descent.
// A single unreadable or non-text file is logged and skipped; an error
// returned by fn aborts the walk and propagates to the caller.
func (w *Walker) Walk(root string, fn func(FileChunk) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		if d.IsDir() {
			if path != root && ignoredDirectories[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if ignoredFiles[d.Name()] || !allowedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		w.Metrics.FileWalked()

		content, err := os.ReadFile(path)
		if err != nil {
			w.Logger.Warn("skipping unreadable file", "path", path, "error", err)
			w.Metrics.FileSkipped()
			return nil
		}
		if !utf8.Valid(content) {
			w.Logger.Warn("skipping non-UTF-8 file", "path", path)
			w.Metrics.FileSkipped()
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		chunks := SplitText(string(content), w.ChunkSize, w.ChunkOverlap)
		w.Metrics.ChunksProduced(len(chunks))
		language := LanguageForFile(path)

		for _, chunk := range chunks {
			if err := fn(FileChunk{
				RelativePath: filepath.ToSlash(rel),
				Content:      chunk,
				Language:     language,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
