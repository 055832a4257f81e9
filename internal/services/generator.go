package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"axion/interview-evaluator/internal/models"
)

const questionTemperature = 0.7

type QuestionGenerator interface {
	Generate(ctx context.Context, title, level, skills string) models.GeneratedQuestionSet
	GenerateFromDescription(ctx context.Context, title, level, skills, description string) models.GeneratedQuestionSet
}

type questionGenerator struct {
	apiKey        string
	geminiService GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewQuestionGenerator(apiKey string, geminiService GeminiService, maxRetries int) QuestionGenerator {
	return &questionGenerator{
		apiKey:        apiKey,
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// Generate implements QuestionGenerator.
func (g *questionGenerator) Generate(ctx context.Context, title, level, skills string) models.GeneratedQuestionSet {
	return g.GenerateFromDescription(ctx, title, level, skills, "")
}

// GenerateFromDescription implements QuestionGenerator. It never fails: any
// backend or decoding problem yields the templated set.
func (g *questionGenerator) GenerateFromDescription(ctx context.Context, title, level, skills, description string) (set models.GeneratedQuestionSet) {
	if strings.TrimSpace(skills) == "" {
		skills = title
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Question generation panicked: %v\n", r)
			set = FallbackQuestions(title, skills)
		}
	}()

	if g.apiKey == "" || g.geminiService == nil {
		log.Println("⚠️  Gemini API key is empty, using template questions")
		return FallbackQuestions(title, skills)
	}

	prompt := g.promptBuilder.BuildQuestionPrompt(title, level, skills, description)
	log.Printf("📝 Question prompt length: %d characters", len(prompt))

	response, err := g.geminiService.GenerateTextWithRetry(ctx, prompt, questionTemperature, g.maxRetries)
	if err != nil {
		log.Printf("❌ Question generation failed: %v", err)
		return FallbackQuestions(title, skills)
	}

	parsed, err := parseQuestionSet(response)
	if err != nil {
		log.Printf("⚠️  Unusable question batch, using template questions: %v", err)
		return FallbackQuestions(title, skills)
	}

	log.Printf("✅ Generated %d questions for %s", len(parsed), title)
	return parsed
}

// parseQuestionSet keeps the first three entries with a non-empty question.
func parseQuestionSet(raw string) (models.GeneratedQuestionSet, error) {
	var set models.GeneratedQuestionSet

	items, err := decodeJSON[[]models.QuestionAnswer](raw)
	if err != nil {
		return set, fmt.Errorf("failed to unmarshal questions: %w", err)
	}

	n := 0
	for _, item := range items {
		q := strings.TrimSpace(item.Q)
		if q == "" {
			continue
		}
		set[n] = models.QuestionAnswer{Q: q, A: strings.TrimSpace(item.A)}
		n++
		if n == models.GeneratedQuestionCount {
			return set, nil
		}
	}

	return set, fmt.Errorf("expected %d questions, got %d", models.GeneratedQuestionCount, n)
}

// FallbackQuestions is the templated set used whenever generation fails.
func FallbackQuestions(title, skills string) models.GeneratedQuestionSet {
	if strings.TrimSpace(skills) == "" {
		skills = title
	}
	return models.GeneratedQuestionSet{
		{Q: fmt.Sprintf("What is the biggest challenge you expect as a %s?", title), A: "Problem solving."},
		{Q: fmt.Sprintf("Explain your understanding of %s.", skills), A: "Technical mastery."},
		{Q: "How do you work in a team?", A: "Collaboration."},
	}
}
