package ingest

import (
	"path/filepath"
	"strings"
)

// extensionLanguages maps file extensions to language labels.
// Extensions outside this table get no language tag.
var extensionLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".md":   "markdown",
	".go":   "go",
	".rs":   "rust",
	".java": "java",
	".c":    "c",
	".cpp":  "c++",
	".h":    "c++",
	".hpp":  "c++",
}

// LanguageForFile returns the language label for a file path, or "" when
// the extension is not recognized. Unknown extensions are not an error.
func LanguageForFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return extensionLanguages[ext]
}
