package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
)

type reportFixture struct {
	job        models.Job
	questions  []models.Question
	candidates []models.Candidate
	responses  map[uuid.UUID][]models.Response
}

func newReportFixture() *reportFixture {
	job := models.Job{ID: uuid.New(), Title: "Backend Engineer", Level: "Senior", Skills: "Go"}
	questions := []models.Question{
		{ID: uuid.New(), JobID: job.ID, Position: 1, QuestionText: "Q1"},
		{ID: uuid.New(), JobID: job.ID, Position: 2, QuestionText: "Q2"},
		{ID: uuid.New(), JobID: job.ID, Position: 3, QuestionText: "Q3"},
	}
	ada := models.Candidate{ID: uuid.New(), JobID: job.ID, Name: "Ada Lovelace", Email: "ada@example.com",
		InterviewDate: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	bob := models.Candidate{ID: uuid.New(), JobID: job.ID, Name: "Bob", Email: "bob@example.com"}

	return &reportFixture{
		job:        job,
		questions:  questions,
		candidates: []models.Candidate{ada, bob},
		responses: map[uuid.UUID][]models.Response{
			ada.ID: {
				{CandidateID: ada.ID, QuestionID: questions[0].ID, MediaURL: "https://cdn/a1.webm", ScoreRelevance: 90, Sentiment: "Positive", CheatFaults: 1},
				{CandidateID: ada.ID, QuestionID: questions[1].ID, MediaURL: "https://cdn/a2.webm", ScoreRelevance: 80, Sentiment: "Neutral"},
			},
			bob.ID: {
				{CandidateID: bob.ID, QuestionID: questions[0].ID, MediaURL: "https://cdn/b1.webm", ScoreRelevance: 40, Sentiment: "Negative"},
			},
		},
	}
}

func (f *reportFixture) FindByID(id uuid.UUID) (*models.Job, error) {
	if id != f.job.ID {
		return nil, repositories.ErrNotFound
	}
	job := f.job
	return &job, nil
}

func (f *reportFixture) FindAll() ([]models.Job, error) { return []models.Job{f.job}, nil }

func (f *reportFixture) CreateWithQuestions(job *models.Job, questions []models.Question) error {
	return nil
}

func (f *reportFixture) Delete(id uuid.UUID) error { return nil }

type fixtureQuestions struct{ *reportFixture }

func (f fixtureQuestions) FindByID(id uuid.UUID) (*models.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			q := q
			return &q, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f fixtureQuestions) FindByJob(jobID uuid.UUID) ([]models.Question, error) {
	return f.questions, nil
}

type fixtureCandidates struct{ *reportFixture }

func (f fixtureCandidates) Create(c *models.Candidate) error { return nil }

func (f fixtureCandidates) FindByID(id uuid.UUID) (*models.Candidate, error) {
	for _, c := range f.candidates {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f fixtureCandidates) FindByJob(jobID uuid.UUID) ([]models.Candidate, error) {
	return f.candidates, nil
}

func (f fixtureCandidates) FindAllWithJob() ([]models.Candidate, error) { return f.candidates, nil }

func (f fixtureCandidates) Count() (int64, error) { return int64(len(f.candidates)), nil }

func (f fixtureCandidates) CountByJob(jobID uuid.UUID) (int64, error) {
	return int64(len(f.candidates)), nil
}

type fixtureResponses struct{ *reportFixture }

func (f fixtureResponses) Create(r *models.Response) error { return nil }

func (f fixtureResponses) FindByID(id uuid.UUID) (*models.Response, error) {
	return nil, repositories.ErrNotFound
}

func (f fixtureResponses) FindByCandidate(id uuid.UUID) ([]models.Response, error) {
	return f.responses[id], nil
}

func rowScores(responses []models.Response) []float64 {
	scores := make([]float64, 0, len(responses))
	for _, r := range responses {
		scores = append(scores, r.ScoreRelevance)
	}
	return scores
}

func (f fixtureResponses) FindAllScores() ([]float64, error) {
	var scores []float64
	for _, c := range f.candidates {
		scores = append(scores, rowScores(f.responses[c.ID])...)
	}
	return scores, nil
}

func (f fixtureResponses) ScoresByCandidate() (map[uuid.UUID][]float64, error) {
	out := make(map[uuid.UUID][]float64)
	for id, rs := range f.responses {
		out[id] = rowScores(rs)
	}
	return out, nil
}

func (f fixtureResponses) FindUnindexed(limit int) ([]models.Response, error) { return nil, nil }

func (f fixtureResponses) MarkIndexed(id uuid.UUID) error { return nil }

func newFixtureReportService(f *reportFixture) *reportService {
	svc := NewReportService(f, fixtureQuestions{f}, fixtureCandidates{f}, fixtureResponses{f}).(*reportService)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestCandidateExportSchema(t *testing.T) {
	f := newReportFixture()
	svc := newFixtureReportService(f)
	ada := f.candidates[0]

	export, filename, err := svc.CandidateExport(ada.ID)
	if err != nil {
		t.Fatalf("CandidateExport: %v", err)
	}
	if filename != "Report_Ada_Lovelace_Backend_Engineer.json" {
		t.Fatalf("filename = %q", filename)
	}

	// (90 + 80 + 0) / 3 with the missing answer counted as 0.
	if got := export.Data.Certification.ExamScore; got != 56.67 {
		t.Fatalf("examScore = %v, want 56.67", got)
	}
	if got := export.Data.PastReviews[0].Decision; got != models.DecisionFailed {
		t.Fatalf("decision = %q", got)
	}

	raw, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	data := doc["data"].(map[string]any)
	cert := data["certification"].(map[string]any)
	if cert["abbreviatedType"] != "AXION" || cert["normalType"] != "INTERVIEW_SENIOR" || cert["status"] != "FINISHED" {
		t.Fatalf("certification = %v", cert)
	}
	if cert["submittedAt"] != "2026-03-01 09:30:00" || cert["projectType"] != "Backend Engineer" {
		t.Fatalf("certification = %v", cert)
	}

	checklists := data["reviewChecklists"].(map[string]any)
	if project := checklists["project"].([]any); len(project) != 0 {
		t.Fatalf("project checklist = %v", project)
	}
	interviews := checklists["interviews"].([]any)
	if len(interviews) != 3 {
		t.Fatalf("interviews = %d, want 3", len(interviews))
	}
	missing := interviews[2].(map[string]any)
	if missing["isVideoExist"] != false || missing["recordedVideoUrl"] != nil || missing["positionId"] != float64(3) {
		t.Fatalf("missing answer item = %v", missing)
	}
	first := interviews[0].(map[string]any)
	if first["recordedVideoUrl"] != "https://cdn/a1.webm" {
		t.Fatalf("first item = %v", first)
	}

	review := data["pastReviews"].([]any)[0].(map[string]any)
	profile := review["assessorProfile"].(map[string]any)
	if profile["name"] != "Axion AI" || profile["photoUrl"] != nil {
		t.Fatalf("assessorProfile = %v", profile)
	}
	if review["reviewedAt"] != "2026-03-02 10:00:00" {
		t.Fatalf("reviewedAt = %v", review["reviewedAt"])
	}
	scores := review["reviewChecklistResult"].(map[string]any)["interviews"].(map[string]any)
	if scores["minScore"] != float64(0) || scores["maxScore"] != float64(100) {
		t.Fatalf("score bounds = %v", scores)
	}
	if n := len(scores["scores"].([]any)); n != 3 {
		t.Fatalf("scores = %d", n)
	}

	candidate := data["candidate"].(map[string]any)
	if !strings.HasPrefix(candidate["photoUrl"].(string), "https://ui-avatars.com/api/?name=Ada+Lovelace") {
		t.Fatalf("photoUrl = %v", candidate["photoUrl"])
	}
}

func TestCandidateExportWithoutQuestions(t *testing.T) {
	c := &models.Candidate{ID: uuid.New(), Name: "X"}
	job := &models.Job{Title: "T", Level: "junior"}

	export := BuildCandidateExport(c, job, nil, nil, time.Now())

	if export.Data.Certification.ExamScore != 0 || export.Data.PastReviews[0].Decision != models.DecisionFailed {
		t.Fatalf("export = %+v", export.Data)
	}
	if export.Data.ReviewChecklists.Interviews == nil {
		t.Fatal("interviews must encode as [] not null")
	}
}

func TestCandidateReport(t *testing.T) {
	f := newReportFixture()
	svc := newFixtureReportService(f)

	report, err := svc.CandidateReport(f.candidates[0].ID)
	if err != nil {
		t.Fatalf("CandidateReport: %v", err)
	}
	if len(report.Reports) != 2 || report.Reports[0].Question != "Q1" || report.Reports[0].CheatFaults != 1 {
		t.Fatalf("reports = %+v", report.Reports)
	}
	// Q3 is unanswered and scores 0, the same basis as the export.
	if report.Summary.Count != 3 || report.Summary.TopTalent || report.Summary.Decision != models.DecisionFailed {
		t.Fatalf("summary = %+v", report.Summary)
	}
	export, _, err := svc.CandidateExport(f.candidates[0].ID)
	if err != nil {
		t.Fatalf("CandidateExport: %v", err)
	}
	if report.Summary.AverageScore != export.Data.Certification.ExamScore || report.Summary.Decision != export.Data.PastReviews[0].Decision {
		t.Fatalf("report summary %+v disagrees with export %+v", report.Summary, export.Data.Certification)
	}

	if _, err := svc.CandidateReport(uuid.New()); !repositories.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDashboardAndAnalytics(t *testing.T) {
	f := newReportFixture()
	svc := newFixtureReportService(f)

	dash, err := svc.Dashboard("http://candidates.local")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.TotalCandidates != 2 || dash.TopTalentCount != 1 || dash.CandidateURL != "http://candidates.local" {
		t.Fatalf("dashboard = %+v", dash)
	}

	stats, err := svc.Analytics()
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if len(stats.JobLabels) != 1 || stats.JobLabels[0] != "Backend Engineer" || stats.CandidateCounts[0] != 2 {
		t.Fatalf("analytics = %+v", stats)
	}
	if stats.ScoreDist != [3]int{2, 0, 1} {
		t.Fatalf("score_dist = %v", stats.ScoreDist)
	}
	if stats.AvgScore != 70 || stats.TotalInterviews != 3 {
		t.Fatalf("avg = %v total = %d", stats.AvgScore, stats.TotalInterviews)
	}
}

func TestBuildAnalyticsEmpty(t *testing.T) {
	stats := BuildAnalytics(nil, nil, nil)
	if stats.AvgScore != 0 || stats.TotalInterviews != 0 || stats.ScoreDist != [3]int{} {
		t.Fatalf("analytics = %+v", stats)
	}
	if stats.JobLabels == nil || stats.CandidateCounts == nil {
		t.Fatal("empty lists must encode as []")
	}
}

func TestCountTopTalentIgnoresEmptyCandidates(t *testing.T) {
	got := CountTopTalent(map[uuid.UUID][]float64{
		uuid.New(): {},
		uuid.New(): {75},
		uuid.New(): {75.1},
	})
	if got != 1 {
		t.Fatalf("CountTopTalent = %d, want 1", got)
	}
}

func TestCohortExportWorkbook(t *testing.T) {
	f := newReportFixture()
	svc := newFixtureReportService(f)

	var buf bytes.Buffer
	filename, err := svc.CohortExport(f.job.ID, &buf)
	if err != nil {
		t.Fatalf("CohortExport: %v", err)
	}
	if filename != "Cohort_Backend_Engineer.xlsx" {
		t.Fatalf("filename = %q", filename)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Candidates" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := book.GetRows("Candidates")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][1] != "Candidate" || rows[1][1] != "Ada Lovelace" || rows[2][1] != "Bob" {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][6] != "FAILED" || rows[1][4] != "2" {
		t.Fatalf("ada row = %v", rows[1])
	}

	title, _ := book.GetCellValue("Summary", "B3")
	if title != "Backend Engineer" {
		t.Fatalf("summary title = %q", title)
	}
	total, _ := book.GetCellValue("Summary", "B8")
	if total != "2" {
		t.Fatalf("summary total = %q", total)
	}

	if _, err := svc.CohortExport(uuid.New(), &buf); !repositories.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}
