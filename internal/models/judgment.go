package models

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentError    Sentiment = "Error"
)

// Valid reports whether s is one of the four permitted values.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentError:
		return true
	}
	return false
}

// Relevance is the topical classification the backend reports next to a score.
type Relevance string

const (
	RelevanceUnknown  Relevance = ""
	RelevanceOffTopic Relevance = "off_topic"
	RelevancePartial  Relevance = "partial"
	RelevanceAccurate Relevance = "accurate"
)

type Judgment struct {
	Transcript string    `json:"transcript"`
	Score      int       `json:"score"`
	Sentiment  Sentiment `json:"sentiment"`
	Feedback   string    `json:"feedback"`

	Relevance Relevance `json:"-"`
}

const GeneratedQuestionCount = 3

type QuestionAnswer struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// GeneratedQuestionSet always holds exactly GeneratedQuestionCount entries.
type GeneratedQuestionSet [GeneratedQuestionCount]QuestionAnswer

type Decision string

const (
	DecisionPassed Decision = "PASSED"
	DecisionFailed Decision = "FAILED"
)

type TierCounts struct {
	High int `json:"high"`
	Mid  int `json:"mid"`
	Low  int `json:"low"`
}

// CandidateSummary is derived on demand and never stored.
type CandidateSummary struct {
	Count        int        `json:"count"`
	AverageScore float64    `json:"average_score"`
	Decision     Decision   `json:"decision"`
	TopTalent    bool       `json:"top_talent"`
	Tiers        TierCounts `json:"tiers"`
}
