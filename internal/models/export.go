package models

// The types below mirror the report schema consumed by the certification
// dashboard. Key names are part of that contract.

type CandidateExport struct {
	Success bool                `json:"success"`
	Data    CandidateExportData `json:"data"`
}

type CandidateExportData struct {
	ID               string           `json:"id"`
	Candidate        ExportCandidate  `json:"candidate"`
	Certification    Certification    `json:"certification"`
	ReviewChecklists ReviewChecklists `json:"reviewChecklists"`
	PastReviews      []PastReview     `json:"pastReviews"`
}

type ExportCandidate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl"`
}

type Certification struct {
	AbbreviatedType string  `json:"abbreviatedType"`
	NormalType      string  `json:"normalType"`
	SubmittedAt     string  `json:"submittedAt"`
	Status          string  `json:"status"`
	ProjectType     string  `json:"projectType"`
	ExamScore       float64 `json:"examScore"`
	Assess          Assess  `json:"assess"`
}

type Assess struct {
	Project    bool `json:"project"`
	Interviews bool `json:"interviews"`
}

type ReviewChecklists struct {
	Project    []any                `json:"project"`
	Interviews []VideoChecklistItem `json:"interviews"`
}

type VideoChecklistItem struct {
	PositionID       int     `json:"positionId"`
	Question         string  `json:"question"`
	IsVideoExist     bool    `json:"isVideoExist"`
	RecordedVideoURL *string `json:"recordedVideoUrl"`
}

type PastReview struct {
	AssessorProfile       AssessorProfile       `json:"assessorProfile"`
	Decision              Decision              `json:"decision"`
	ReviewedAt            string                `json:"reviewedAt"`
	ScoresOverview        ScoresOverview        `json:"scoresOverview"`
	ReviewChecklistResult ReviewChecklistResult `json:"reviewChecklistResult"`
	Notes                 string                `json:"notes"`
}

type AssessorProfile struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photoUrl"`
}

type ScoresOverview struct {
	Interview float64 `json:"interview"`
	Total     float64 `json:"total"`
}

type ReviewChecklistResult struct {
	Interviews InterviewScores `json:"interviews"`
}

type InterviewScores struct {
	MinScore int             `json:"minScore"`
	MaxScore int             `json:"maxScore"`
	Scores   []QuestionScore `json:"scores"`
}

type QuestionScore struct {
	ID    int     `json:"id"`
	Score float64 `json:"score"`
}
