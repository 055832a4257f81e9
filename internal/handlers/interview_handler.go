package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
)

type InterviewHandler struct {
	jobRepo       repositories.JobRepository
	questionRepo  repositories.QuestionRepository
	candidateRepo repositories.CandidateRepository
}

func NewInterviewHandler(
	jobRepo repositories.JobRepository,
	questionRepo repositories.QuestionRepository,
	candidateRepo repositories.CandidateRepository,
) *InterviewHandler {
	return &InterviewHandler{
		jobRepo:       jobRepo,
		questionRepo:  questionRepo,
		candidateRepo: candidateRepo,
	}
}

// HandleRegister handles POST /jobs/:id/candidates
func (h *InterviewHandler) HandleRegister(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid job ID format")
	}

	var req models.StartInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		return badRequest(c, "name is required")
	}
	if tooLong, err := fieldTooLong(c, "name", req.Name, maxNameLength); tooLong {
		return err
	}
	if tooLong, err := fieldTooLong(c, "email", req.Email, maxEmailLength); tooLong {
		return err
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return lookupFailed(c, "Job", err)
	}

	candidate := models.Candidate{
		ID:            uuid.New(),
		JobID:         job.ID,
		Name:          req.Name,
		Email:         req.Email,
		InterviewDate: time.Now(),
	}
	if err := h.candidateRepo.Create(&candidate); err != nil {
		log.Printf("❌ Failed to register candidate: %v\n", err)
		return internalError(c, "Failed to register candidate")
	}

	questions, err := h.questionRepo.FindByJob(job.ID)
	if err != nil {
		return lookupFailed(c, "questions", err)
	}

	log.Printf("👤 Candidate %s registered for '%s'\n", candidate.ID, job.Title)

	return c.Status(fiber.StatusCreated).JSON(models.InterviewRoomResponse{
		Candidate: candidate,
		Job:       *job,
		Questions: publicQuestions(questions),
	})
}

// HandleRoom handles GET /rooms/:candidate_id
func (h *InterviewHandler) HandleRoom(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("candidate_id"))
	if err != nil {
		return badRequest(c, "Invalid candidate ID format")
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		return lookupFailed(c, "Candidate", err)
	}

	job, err := h.jobRepo.FindByID(candidate.JobID)
	if err != nil {
		return lookupFailed(c, "Job", err)
	}

	questions, err := h.questionRepo.FindByJob(job.ID)
	if err != nil {
		return lookupFailed(c, "questions", err)
	}

	return c.JSON(models.InterviewRoomResponse{
		Candidate: *candidate,
		Job:       *job,
		Questions: publicQuestions(questions),
	})
}
