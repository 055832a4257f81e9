package services

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
)

const (
	ExamScorePrecision = 2
	CohortPrecision    = 1

	reportTimeLayout = "2006-01-02 15:04:05"
	reportNotes      = "Auto-generated report by Axion HRD System."
	assessorName     = "Axion AI"
)

type ReportService interface {
	CandidateReport(candidateID uuid.UUID) (*models.CandidateReportResponse, error)
	CandidateExport(candidateID uuid.UUID) (*models.CandidateExport, string, error)
	Dashboard(candidateURL string) (*models.DashboardResponse, error)
	Analytics() (*models.AnalyticsResponse, error)
	CohortExport(jobID uuid.UUID, w io.Writer) (string, error)
}

type reportService struct {
	jobRepo       repositories.JobRepository
	questionRepo  repositories.QuestionRepository
	candidateRepo repositories.CandidateRepository
	responseRepo  repositories.ResponseRepository
	now           func() time.Time
}

func NewReportService(
	jobRepo repositories.JobRepository,
	questionRepo repositories.QuestionRepository,
	candidateRepo repositories.CandidateRepository,
	responseRepo repositories.ResponseRepository,
) ReportService {
	return &reportService{
		jobRepo:       jobRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
		responseRepo:  responseRepo,
		now:           time.Now,
	}
}

type candidateData struct {
	candidate *models.Candidate
	job       *models.Job
	questions []models.Question
	responses []models.Response
}

func (s *reportService) load(candidateID uuid.UUID) (*candidateData, error) {
	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobRepo.FindByID(candidate.JobID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.FindByJob(job.ID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responseRepo.FindByCandidate(candidate.ID)
	if err != nil {
		return nil, err
	}
	return &candidateData{candidate: candidate, job: job, questions: questions, responses: responses}, nil
}

// CandidateReport implements ReportService.
func (s *reportService) CandidateReport(candidateID uuid.UUID) (*models.CandidateReportResponse, error) {
	d, err := s.load(candidateID)
	if err != nil {
		return nil, err
	}

	return &models.CandidateReportResponse{
		Candidate: *d.candidate,
		Job:       *d.job,
		Reports:   BuildReportRows(d.questions, d.responses),
		Summary:   Aggregate(LatestScores(d.questions, d.responses), ExamScorePrecision),
	}, nil
}

// CandidateExport implements ReportService. The second value is the download
// file name.
func (s *reportService) CandidateExport(candidateID uuid.UUID) (*models.CandidateExport, string, error) {
	d, err := s.load(candidateID)
	if err != nil {
		return nil, "", err
	}

	export := BuildCandidateExport(d.candidate, d.job, d.questions, d.responses, s.now().UTC())
	return &export, ExportFilename(d.candidate.Name, d.job.Title), nil
}

// Dashboard implements ReportService.
func (s *reportService) Dashboard(candidateURL string) (*models.DashboardResponse, error) {
	jobs, err := s.jobRepo.FindAll()
	if err != nil {
		return nil, err
	}
	total, err := s.candidateRepo.Count()
	if err != nil {
		return nil, err
	}
	grouped, err := s.responseRepo.ScoresByCandidate()
	if err != nil {
		return nil, err
	}

	return &models.DashboardResponse{
		Jobs:            jobs,
		CandidateURL:    candidateURL,
		TotalCandidates: total,
		TopTalentCount:  CountTopTalent(grouped),
	}, nil
}

// Analytics implements ReportService.
func (s *reportService) Analytics() (*models.AnalyticsResponse, error) {
	jobs, err := s.jobRepo.FindAll()
	if err != nil {
		return nil, err
	}

	counts := make([]int64, 0, len(jobs))
	for _, job := range jobs {
		n, err := s.candidateRepo.CountByJob(job.ID)
		if err != nil {
			return nil, err
		}
		counts = append(counts, n)
	}

	scores, err := s.responseRepo.FindAllScores()
	if err != nil {
		return nil, err
	}

	return BuildAnalytics(jobs, counts, scores), nil
}

// CohortExport implements ReportService. It writes the job's workbook to w and
// returns the download file name.
func (s *reportService) CohortExport(jobID uuid.UUID, w io.Writer) (string, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return "", err
	}
	questions, err := s.questionRepo.FindByJob(job.ID)
	if err != nil {
		return "", err
	}
	candidates, err := s.candidateRepo.FindByJob(job.ID)
	if err != nil {
		return "", err
	}

	rows := make([]CohortRow, 0, len(candidates))
	for _, c := range candidates {
		responses, err := s.responseRepo.FindByCandidate(c.ID)
		if err != nil {
			return "", err
		}
		rows = append(rows, BuildCohortRow(c, questions, responses))
	}

	if err := WriteCohortWorkbook(w, job, len(questions), rows, s.now().UTC()); err != nil {
		return "", err
	}
	return CohortFilename(job.Title), nil
}

// BuildReportRows lists the candidate's answers in submission order.
func BuildReportRows(questions []models.Question, responses []models.Response) []models.ReportRow {
	byID := make(map[uuid.UUID]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	rows := make([]models.ReportRow, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, models.ReportRow{
			Question:    byID[r.QuestionID].QuestionText,
			AnswerMedia: r.MediaURL,
			Transcript:  r.Transcript,
			Score:       r.ScoreRelevance,
			Sentiment:   r.Sentiment,
			Feedback:    r.Feedback,
			CheatFaults: r.CheatFaults,
		})
	}
	return rows
}

// BuildCandidateExport renders the certification report. Every question of the
// job is listed; an unanswered one scores 0 and still counts towards the
// average.
func BuildCandidateExport(candidate *models.Candidate, job *models.Job, questions []models.Question, responses []models.Response, now time.Time) models.CandidateExport {
	latest := latestByQuestion(responses)

	checklist := make([]models.VideoChecklistItem, 0, len(questions))
	scoreItems := make([]models.QuestionScore, 0, len(questions))
	scores := make([]float64, 0, len(questions))

	for i, q := range questions {
		position := i + 1
		item := models.VideoChecklistItem{PositionID: position, Question: q.QuestionText}
		score := 0.0

		if r, ok := latest[q.ID]; ok {
			item.IsVideoExist = true
			mediaURL := r.MediaURL
			item.RecordedVideoURL = &mediaURL
			score = r.ScoreRelevance
		}

		checklist = append(checklist, item)
		scoreItems = append(scoreItems, models.QuestionScore{ID: position, Score: score})
		scores = append(scores, score)
	}

	summary := Aggregate(scores, ExamScorePrecision)

	submittedAt := now
	if !candidate.InterviewDate.IsZero() {
		submittedAt = candidate.InterviewDate
	}

	return models.CandidateExport{
		Success: true,
		Data: models.CandidateExportData{
			ID: candidate.ID.String(),
			Candidate: models.ExportCandidate{
				Name:     candidate.Name,
				Email:    candidate.Email,
				PhotoURL: avatarURL(candidate.Name),
			},
			Certification: models.Certification{
				AbbreviatedType: "AXION",
				NormalType:      "INTERVIEW_" + strings.ToUpper(job.Level),
				SubmittedAt:     submittedAt.Format(reportTimeLayout),
				Status:          "FINISHED",
				ProjectType:     job.Title,
				ExamScore:       summary.AverageScore,
				Assess:          models.Assess{Project: false, Interviews: true},
			},
			ReviewChecklists: models.ReviewChecklists{
				Project:    []any{},
				Interviews: checklist,
			},
			PastReviews: []models.PastReview{
				{
					AssessorProfile: models.AssessorProfile{ID: 1, Name: assessorName},
					Decision:        summary.Decision,
					ReviewedAt:      now.Format(reportTimeLayout),
					ScoresOverview: models.ScoresOverview{
						Interview: summary.AverageScore,
						Total:     summary.AverageScore,
					},
					ReviewChecklistResult: models.ReviewChecklistResult{
						Interviews: models.InterviewScores{
							MinScore: minScore,
							MaxScore: maxScore,
							Scores:   scoreItems,
						},
					},
					Notes: reportNotes,
				},
			},
		},
	}
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// ExportFilename is the attachment name of a candidate export. The caller
// still has to quote it for a header.
func ExportFilename(candidateName, jobTitle string) string {
	return fmt.Sprintf("Report_%s_%s.json", filenameReplacer.Replace(candidateName), filenameReplacer.Replace(jobTitle))
}

// CountTopTalent counts candidates whose mean score is above the top talent
// threshold. Candidates without answers never count.
func CountTopTalent(scoresByCandidate map[uuid.UUID][]float64) int {
	n := 0
	for _, scores := range scoresByCandidate {
		if len(scores) > 0 && Aggregate(scores, ExamScorePrecision).TopTalent {
			n++
		}
	}
	return n
}

// BuildAnalytics summarises every stored answer across all jobs.
func BuildAnalytics(jobs []models.Job, candidateCounts []int64, scores []float64) *models.AnalyticsResponse {
	labels := make([]string, 0, len(jobs))
	for _, j := range jobs {
		labels = append(labels, j.Title)
	}
	if candidateCounts == nil {
		candidateCounts = []int64{}
	}

	summary := Aggregate(scores, CohortPrecision)

	return &models.AnalyticsResponse{
		JobLabels:       labels,
		CandidateCounts: candidateCounts,
		ScoreDist:       [3]int{summary.Tiers.High, summary.Tiers.Mid, summary.Tiers.Low},
		AvgScore:        summary.AverageScore,
		TotalInterviews: summary.Count,
	}
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
