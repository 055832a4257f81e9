package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
	"axion/interview-evaluator/internal/services"
)

const (
	QuestionSourceManual = "manual"
	QuestionSourceAI     = "ai"

	customQuestionsSkills = "Custom Questions"
)

type JobHandler struct {
	jobRepo       repositories.JobRepository
	questionRepo  repositories.QuestionRepository
	candidateRepo repositories.CandidateRepository
	generator     services.QuestionGenerator
	pdfParser     services.PDFParserService
	indexer       services.TranscriptIndexer
	maxFileSize   int64
}

func NewJobHandler(
	jobRepo repositories.JobRepository,
	questionRepo repositories.QuestionRepository,
	candidateRepo repositories.CandidateRepository,
	generator services.QuestionGenerator,
	pdfParser services.PDFParserService,
	indexer services.TranscriptIndexer,
	maxFileSize int64,
) *JobHandler {
	return &JobHandler{
		jobRepo:       jobRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
		generator:     generator,
		pdfParser:     pdfParser,
		indexer:       indexer,
		maxFileSize:   maxFileSize,
	}
}

// HandleListJobs handles GET /jobs
func (h *JobHandler) HandleListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobRepo.FindAll()
	if err != nil {
		return lookupFailed(c, "jobs", err)
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

// HandleGetJob handles GET /jobs/:id
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid job ID format")
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return lookupFailed(c, "Job", err)
	}

	questions, err := h.questionRepo.FindByJob(job.ID)
	if err != nil {
		return lookupFailed(c, "questions", err)
	}
	job.Questions = publicQuestions(questions)

	return c.JSON(job)
}

// HandleCreateJob handles POST /hr/jobs. The body is JSON or a multipart
// form with manual_q[]/manual_a[] pairs and an optional job_description PDF.
// Without manual questions the set is generated.
func (h *JobHandler) HandleCreateJob(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	var description string

	if form, err := c.MultipartForm(); err == nil {
		req = createJobRequestFromForm(form)

		if files := form.File["job_description"]; len(files) > 0 {
			description, err = h.readDescription(files[0])
			if err != nil {
				return badRequest(c, err.Error())
			}
		}
	} else if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Level = strings.TrimSpace(req.Level)
	req.Skills = strings.TrimSpace(req.Skills)

	if req.Title == "" {
		return badRequest(c, "title is required")
	}
	if req.Level == "" {
		return badRequest(c, "level is required")
	}
	for _, f := range []struct {
		name  string
		value string
		limit int
	}{
		{"title", req.Title, maxTitleLength},
		{"level", req.Level, maxLevelLength},
		{"skills", req.Skills, maxSkillsLength},
	} {
		if tooLong, err := fieldTooLong(c, f.name, f.value, f.limit); tooLong {
			return err
		}
	}

	source := QuestionSourceManual
	questions := manualQuestions(req.ManualQuestions)
	if len(questions) == 0 {
		source = QuestionSourceAI
		log.Printf("🤖 Generating questions for '%s' (%s)\n", req.Title, req.Level)
		set := h.generator.GenerateFromDescription(c.UserContext(), req.Title, req.Level, req.Skills, description)
		for _, qa := range set {
			questions = append(questions, models.Question{QuestionText: qa.Q, IdealAnswer: qa.A})
		}
	} else {
		log.Printf("✍️  Using %d manual questions for '%s'\n", len(questions), req.Title)
	}

	skills := req.Skills
	if skills == "" {
		skills = customQuestionsSkills
	}

	job := models.Job{
		ID:     uuid.New(),
		Title:  req.Title,
		Level:  req.Level,
		Skills: skills,
	}

	if err := h.jobRepo.CreateWithQuestions(&job, questions); err != nil {
		log.Printf("❌ Failed to create job: %v\n", err)
		return internalError(c, "Failed to create job")
	}

	return c.Status(fiber.StatusCreated).JSON(models.CreateJobResponse{
		Job:       job,
		Source:    source,
		Questions: len(questions),
	})
}

// HandleDeleteJob handles DELETE /hr/jobs/:id. Transcripts of the job's
// candidates are also dropped from the search index.
func (h *JobHandler) HandleDeleteJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid job ID format")
	}

	var candidateIDs []uuid.UUID
	if h.indexer != nil {
		candidates, err := h.candidateRepo.FindByJob(jobID)
		if err != nil {
			log.Printf("⚠️  Failed to list candidates of job %s for index cleanup: %v\n", jobID, err)
		}
		for _, candidate := range candidates {
			candidateIDs = append(candidateIDs, candidate.ID)
		}
	}

	if err := h.jobRepo.Delete(jobID); err != nil {
		return lookupFailed(c, "Job", err)
	}

	if h.indexer != nil {
		if err := h.indexer.RemoveCandidates(c.UserContext(), candidateIDs); err != nil {
			log.Printf("⚠️  Failed to remove transcripts of job %s from the index: %v\n", jobID, err)
		}
	}

	log.Printf("🗑️  Job %s deleted\n", jobID)
	return c.JSON(fiber.Map{
		"message": "Job deleted",
		"id":      jobID,
	})
}

// HandleListCandidates handles GET /hr/jobs/:id/candidates
func (h *JobHandler) HandleListCandidates(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid job ID format")
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return lookupFailed(c, "Job", err)
	}

	candidates, err := h.candidateRepo.FindByJob(job.ID)
	if err != nil {
		return lookupFailed(c, "candidates", err)
	}

	return c.JSON(fiber.Map{
		"job":        job,
		"candidates": candidates,
	})
}

func (h *JobHandler) readDescription(fh *multipart.FileHeader) (string, error) {
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return "", fmt.Errorf("job_description too large. Max size: %d bytes", h.maxFileSize)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read job_description")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read job_description")
	}

	text, err := h.pdfParser.ExtractText(data)
	if err != nil {
		log.Printf("⚠️  Unreadable job description %s: %v\n", fh.Filename, err)
		return "", fmt.Errorf("job_description must be a PDF with text content")
	}
	return text, nil
}

func createJobRequestFromForm(form *multipart.Form) models.CreateJobRequest {
	req := models.CreateJobRequest{
		Title:  formValue(form, "title"),
		Level:  formValue(form, "level"),
		Skills: formValue(form, "skills"),
	}

	answers := form.Value["manual_a[]"]
	for i, q := range form.Value["manual_q[]"] {
		qa := models.QuestionAnswer{Q: q}
		if i < len(answers) {
			qa.A = answers[i]
		}
		req.ManualQuestions = append(req.ManualQuestions, qa)
	}
	return req
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// manualQuestions keeps the pairs whose question text is not blank.
func manualQuestions(pairs []models.QuestionAnswer) []models.Question {
	var questions []models.Question
	for _, qa := range pairs {
		q := strings.TrimSpace(qa.Q)
		if q == "" {
			continue
		}
		questions = append(questions, models.Question{QuestionText: q, IdealAnswer: strings.TrimSpace(qa.A)})
	}
	return questions
}
