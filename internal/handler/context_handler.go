package handler

import (
	"github.com/arturoeanton/go-code-context/internal/service"
	"github.com/gofiber/fiber/v3"
)

// ContextHandler exposes the retrieval pipeline over REST.
type ContextHandler struct {
	contextService *service.ContextService
}

// NewContextHandler creates a new context handler.
func NewContextHandler(contextService *service.ContextService) *ContextHandler {
	return &ContextHandler{contextService: contextService}
}

// Register sets up context routes.
func (h *ContextHandler) Register(router fiber.Router) {
	router.Post("/context", h.Retrieve)
}

// Retrieve returns the filtered similar chunks for a code snippet.
func (h *ContextHandler) Retrieve(c fiber.Ctx) error {
	var body struct {
		CodeSnippet string `json:"code_snippet"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.CodeSnippet == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code_snippet is required"})
	}

	chunks, err := h.contextService.Retrieve(c.Context(), body.CodeSnippet)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	matches := make([]fiber.Map, len(chunks))
	for i, chunk := range chunks {
		matches[i] = fiber.Map{
			"file_path":  chunk.FilePath,
			"content":    chunk.Content,
			"similarity": chunk.Similarity,
		}
	}

	return c.JSON(fiber.Map{"matches": matches})
}
