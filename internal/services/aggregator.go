package services

import (
	"math"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
)

const (
	PassThreshold      = 70.0
	TopTalentThreshold = 75.0
	HighTierMin        = 75.0
	MidTierMin         = 50.0
)

// Aggregate reduces a set of per-question scores to a candidate summary.
// The average is rounded half away from zero to precision decimals and the
// decision is taken on that rounded value. Top talent compares the exact
// mean against its own threshold.
func Aggregate(scores []float64, precision int) models.CandidateSummary {
	summary := models.CandidateSummary{
		Count:    len(scores),
		Decision: models.DecisionFailed,
	}
	if len(scores) == 0 {
		return summary
	}

	var total float64
	for _, s := range scores {
		total += s
		switch {
		case s >= HighTierMin:
			summary.Tiers.High++
		case s >= MidTierMin:
			summary.Tiers.Mid++
		default:
			summary.Tiers.Low++
		}
	}

	mean := total / float64(len(scores))
	summary.AverageScore = roundTo(mean, precision)
	if summary.AverageScore >= PassThreshold {
		summary.Decision = models.DecisionPassed
	}
	summary.TopTalent = mean > TopTalentThreshold

	return summary
}

// LatestScores scores a candidate over every question of the job using the
// most recent answer to each. Unanswered questions score 0.
func LatestScores(questions []models.Question, responses []models.Response) []float64 {
	latest := latestByQuestion(responses)
	scores := make([]float64, 0, len(questions))
	for _, q := range questions {
		scores = append(scores, latest[q.ID].ScoreRelevance)
	}
	return scores
}

// latestByQuestion relies on responses being ordered oldest first.
func latestByQuestion(responses []models.Response) map[uuid.UUID]models.Response {
	latest := make(map[uuid.UUID]models.Response, len(responses))
	for _, r := range responses {
		latest[r.QuestionID] = r
	}
	return latest
}

func roundTo(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}
