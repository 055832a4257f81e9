package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"axion/interview-evaluator/internal/models"
)

const (
	minScore = 0
	maxScore = 100
)

type scoreBand struct {
	Min int
	Max int
}

var rubricBands = map[models.Relevance]scoreBand{
	models.RelevanceOffTopic: {Min: 0, Max: 20},
	models.RelevancePartial:  {Min: 21, Max: 60},
	models.RelevanceAccurate: {Min: 61, Max: 100},
}

// RubricViolation reports a score that falls outside the band of the
// relevance class the backend itself assigned.
type RubricViolation struct {
	Relevance models.Relevance
	Score     int
	Band      scoreBand
}

func (v *RubricViolation) Error() string {
	return fmt.Sprintf("score %d outside %s band [%d,%d]", v.Score, v.Relevance, v.Band.Min, v.Band.Max)
}

// CheckRubric compares a judgment's score with the band of its relevance
// class. Judgments without a known relevance always pass.
func CheckRubric(j models.Judgment) error {
	band, ok := rubricBands[j.Relevance]
	if !ok {
		return nil
	}
	if j.Score < band.Min || j.Score > band.Max {
		return &RubricViolation{Relevance: j.Relevance, Score: j.Score, Band: band}
	}
	return nil
}

type judgmentPayload struct {
	Transcript *string      `json:"transcript"`
	Score      *json.Number `json:"score"`
	Sentiment  *string      `json:"sentiment"`
	Feedback   *string      `json:"feedback"`
	Relevance  string       `json:"relevance"`
}

var errMissingField = errors.New("missing field")

// parseJudgment decodes the backend body. All four judgment fields must be
// present; the score is rounded and clamped into [0,100].
func parseJudgment(raw string) (models.Judgment, error) {
	p, err := decodeJSON[judgmentPayload](raw)
	if err != nil {
		return models.Judgment{}, fmt.Errorf("failed to unmarshal judgment: %w", err)
	}

	switch {
	case p.Transcript == nil:
		return models.Judgment{}, fmt.Errorf("%w: transcript", errMissingField)
	case p.Score == nil:
		return models.Judgment{}, fmt.Errorf("%w: score", errMissingField)
	case p.Sentiment == nil:
		return models.Judgment{}, fmt.Errorf("%w: sentiment", errMissingField)
	case p.Feedback == nil:
		return models.Judgment{}, fmt.Errorf("%w: feedback", errMissingField)
	}

	score, err := p.Score.Float64()
	if err != nil {
		return models.Judgment{}, fmt.Errorf("invalid score %q: %w", p.Score.String(), err)
	}

	return models.Judgment{
		Transcript: *p.Transcript,
		Score:      clampScore(score),
		Sentiment:  normalizeSentiment(*p.Sentiment),
		Feedback:   *p.Feedback,
		Relevance:  normalizeRelevance(p.Relevance),
	}, nil
}

func clampScore(score float64) int {
	if math.IsNaN(score) {
		return minScore
	}
	rounded := int(math.Round(math.Max(minScore, math.Min(maxScore, score))))
	return rounded
}

func normalizeSentiment(s string) models.Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "positif":
		return models.SentimentPositive
	case "negative", "negatif":
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func normalizeRelevance(s string) models.Relevance {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case "off_topic", "offtopic", "unrelated":
		return models.RelevanceOffTopic
	case "partial", "weak":
		return models.RelevancePartial
	case "accurate", "correct":
		return models.RelevanceAccurate
	default:
		return models.RelevanceUnknown
	}
}
