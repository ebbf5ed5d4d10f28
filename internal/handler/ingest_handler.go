package handler

import (
	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/arturoeanton/go-code-context/internal/service"
	"github.com/gofiber/fiber/v3"
)

// IngestHandler handles repository-ingestion endpoints.
type IngestHandler struct {
	ingestService *service.IngestService
}

// NewIngestHandler creates a new ingestion handler.
func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// Register sets up ingestion routes.
func (h *IngestHandler) Register(router fiber.Router) {
	router.Post("/ingest", h.Ingest)
}

// Ingest validates the request and schedules a background ingestion job.
// Returns 202 as soon as the job is accepted; completion is reported by
// email, never by this response.
func (h *IngestHandler) Ingest(c fiber.Ctx) error {
	var body domain.IngestRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if body.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "repo_url is required"})
	}
	if body.UserEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_email is required"})
	}

	jobID, err := h.ingestService.Submit(body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":  true,
		"message":  "Repository ingestion started. You will receive an email when complete.",
		"repo_url": body.RepoURL,
		"job_id":   jobID,
	})
}
