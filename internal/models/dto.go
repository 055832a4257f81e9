package models

type CreateJobRequest struct {
	Title           string           `json:"title" form:"title"`
	Level           string           `json:"level" form:"level"`
	Skills          string           `json:"skills" form:"skills"`
	ManualQuestions []QuestionAnswer `json:"manual_questions" form:"-"`
}

type CreateJobResponse struct {
	Job       Job    `json:"job"`
	Source    string `json:"source"`
	Questions int    `json:"questions"`
}

type StartInterviewRequest struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
}

type InterviewRoomResponse struct {
	Candidate Candidate  `json:"candidate"`
	Job       Job        `json:"job"`
	Questions []Question `json:"questions"`
}

type SubmitAnswerResponse struct {
	Status   string   `json:"status"`
	Filename string   `json:"filename"`
	Judgment Judgment `json:"judgment"`
}

type ReportRow struct {
	Question    string  `json:"question"`
	AnswerMedia string  `json:"answer_media"`
	Transcript  string  `json:"transcript"`
	Score       float64 `json:"score"`
	Sentiment   string  `json:"sentiment"`
	Feedback    string  `json:"feedback"`
	CheatFaults int     `json:"cheat_faults"`
}

type CandidateReportResponse struct {
	Candidate Candidate        `json:"candidate"`
	Job       Job              `json:"job"`
	Reports   []ReportRow      `json:"reports"`
	Summary   CandidateSummary `json:"summary"`
}

type DashboardResponse struct {
	Jobs            []Job  `json:"jobs"`
	CandidateURL    string `json:"candidate_url"`
	TotalCandidates int64  `json:"total_candidates"`
	TopTalentCount  int    `json:"top_talent_count"`
}

type AnalyticsResponse struct {
	JobLabels       []string `json:"job_labels"`
	CandidateCounts []int64  `json:"candidate_counts"`
	ScoreDist       [3]int   `json:"score_dist"`
	AvgScore        float64  `json:"avg_score"`
	TotalInterviews int      `json:"total_interviews"`
}

type SearchHit struct {
	ResponseID  string  `json:"response_id"`
	CandidateID string  `json:"candidate_id"`
	QuestionID  string  `json:"question_id"`
	Score       float64 `json:"score"`
	Similarity  float32 `json:"similarity"`
	Text        string  `json:"text"`
}
