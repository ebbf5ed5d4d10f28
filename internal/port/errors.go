package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrMissingSnippet = errors.New("missing required argument: code_snippet")
	ErrUnknownTool    = errors.New("unknown tool")
	ErrEmptyBatch     = errors.New("empty batch")
	ErrVectorMismatch = errors.New("embedding count does not match batch size")
)
