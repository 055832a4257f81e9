package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"axion/interview-evaluator/internal/services"
)

type SearchHandler struct {
	indexer services.TranscriptIndexer
}

// NewSearchHandler accepts a nil indexer; searches then answer 503.
func NewSearchHandler(indexer services.TranscriptIndexer) *SearchHandler {
	return &SearchHandler{indexer: indexer}
}

// HandleSearch handles GET /hr/search?q=&limit=
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	if h.indexer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Transcript search is not enabled",
		})
	}

	query := c.Query("q")
	hits, err := h.indexer.Search(c.UserContext(), query, c.QueryInt("limit", 0))
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			return badRequest(c, "q is required")
		}
		log.Printf("❌ Transcript search failed: %v\n", err)
		return internalError(c, "Search failed")
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"results": hits,
	})
}
