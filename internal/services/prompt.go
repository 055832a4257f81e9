package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"axion/interview-evaluator/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildJudgmentPrompt creates the prompt that accompanies a recorded answer.
func (pb *PromptBuilder) BuildJudgmentPrompt(questionText, idealAnswer string) string {
	return fmt.Sprintf(`Role: a strict and meticulous HR recruiter.

Tasks:
1. Transcribe what the candidate says in the attached recording.
2. Perform a RELEVANCE CHECK (mandatory): is the topic the candidate talks about related to the question?
   - Question: "%s"
   - Candidate answer: (analyse it from the audio/video)

STRICT SCORING RULES:
- If the answer is NOT related to the question at all (e.g. asked about games and answers about coding, or the other way round) -> score MUST be 0 - 20 and relevance "off_topic".
- If the answer is related but weak or incomplete -> score 21 - 60 and relevance "partial".
- If the answer is accurate and matches the answer key -> score 61 - 100 and relevance "accurate".
- Do not be fooled by sophisticated terminology or fluent English when the topic is wrong.

Ideal answer key: "%s"

Return pure JSON only:
{
  "transcript": "what the candidate said...",
  "score": <integer 0-100>,
  "sentiment": "Positive" | "Neutral" | "Negative",
  "relevance": "off_topic" | "partial" | "accurate",
  "feedback": "Blunt criticism if off topic, suggestions if related."
}`, questionText, idealAnswer)
}

// BuildQuestionPrompt creates the prompt for a job's interview question batch.
func (pb *PromptBuilder) BuildQuestionPrompt(title, level, skills, description string) string {
	var sb strings.Builder

	sb.WriteString("Act as a Senior HR Recruiter.\n")
	sb.WriteString("I need 3 (THREE) specific interview questions for:\n")
	sb.WriteString(fmt.Sprintf("- Position: %s\n", title))
	sb.WriteString(fmt.Sprintf("- Level: %s\n", level))
	sb.WriteString(fmt.Sprintf("- Skills: %s\n", skills))

	if description = strings.TrimSpace(description); description != "" {
		sb.WriteString("\nJOB DESCRIPTION:\n")
		sb.WriteString(description)
		sb.WriteString("\n")
	}

	sb.WriteString(`
The output MUST be a JSON array containing exactly 3 objects.
Do not use markdown.

Example output format:
[
  {"q": "Technical question...", "a": "Technical answer..."},
  {"q": "Case study question...", "a": "Solution..."},
  {"q": "Soft skill question...", "a": "Attitude..."}
]`)

	return sb.String()
}

// judgmentSchema constrains the backend's answer to the judgment shape.
func judgmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transcript": {Type: genai.TypeString},
			"score":      {Type: genai.TypeInteger},
			"sentiment": {
				Type: genai.TypeString,
				Enum: []string{"Positive", "Neutral", "Negative"},
			},
			"relevance": {
				Type: genai.TypeString,
				Enum: []string{string(models.RelevanceOffTopic), string(models.RelevancePartial), string(models.RelevanceAccurate)},
			},
			"feedback": {Type: genai.TypeString},
		},
		Required: []string{"transcript", "score", "sentiment", "feedback"},
	}
}

// decodeJSON unmarshals a model reply into T. Schema constrained replies
// decode as they are. Otherwise every '{' or '[' is tried as the start of the
// value, which skips prose and markdown fences around it without touching the
// string values inside.
func decodeJSON[T any](text string) (T, error) {
	var out T
	err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out)
	if err == nil {
		return out, nil
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		var raw json.RawMessage
		if json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw) != nil {
			continue
		}
		var candidate T
		if json.Unmarshal(raw, &candidate) == nil {
			return candidate, nil
		}
	}

	var zero T
	return zero, err
}
