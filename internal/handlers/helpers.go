package handlers

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
)

// Widths of the varchar columns that take free text from requests.
const (
	maxTitleLength  = 100
	maxLevelLength  = 50
	maxSkillsLength = 200
	maxNameLength   = 100
	maxEmailLength  = 100
)

// fieldTooLong answers 400 when value does not fit its column.
func fieldTooLong(c *fiber.Ctx, field, value string, limit int) (bool, error) {
	if utf8.RuneCountInString(value) <= limit {
		return false, nil
	}
	return true, badRequest(c, fmt.Sprintf("%s must be at most %d characters", field, limit))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

// lookupFailed answers 404 for missing records and 500 for anything else.
func lookupFailed(c *fiber.Ctx, what string, err error) error {
	if repositories.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": what + " not found",
		})
	}
	log.Printf("❌ Failed to load %s: %v\n", what, err)
	return internalError(c, "Failed to load "+what)
}

// publicQuestions hides ideal answers from the candidate side.
func publicQuestions(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		q.IdealAnswer = ""
		out[i] = q
	}
	return out
}
