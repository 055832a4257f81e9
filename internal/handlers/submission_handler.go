package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"axion/interview-evaluator/internal/models"
	"axion/interview-evaluator/internal/repositories"
	"axion/interview-evaluator/internal/services"
)

const defaultVideoType = "video/webm"

type SubmissionHandler struct {
	candidateRepo repositories.CandidateRepository
	questionRepo  repositories.QuestionRepository
	responseRepo  repositories.ResponseRepository
	mediaStore    services.MediaStore
	scorer        services.ScorerService
	worker        services.Worker
	publisher     services.EventPublisher
	mediaFolder   string
	maxFileSize   int64
}

// NewSubmissionHandler wires the answer flow. worker may be nil when
// transcript search is disabled.
func NewSubmissionHandler(
	candidateRepo repositories.CandidateRepository,
	questionRepo repositories.QuestionRepository,
	responseRepo repositories.ResponseRepository,
	mediaStore services.MediaStore,
	scorer services.ScorerService,
	worker services.Worker,
	publisher services.EventPublisher,
	mediaFolder string,
	maxFileSize int64,
) *SubmissionHandler {
	if publisher == nil {
		publisher = services.NewNoopPublisher()
	}
	return &SubmissionHandler{
		candidateRepo: candidateRepo,
		questionRepo:  questionRepo,
		responseRepo:  responseRepo,
		mediaStore:    mediaStore,
		scorer:        scorer,
		worker:        worker,
		publisher:     publisher,
		mediaFolder:   mediaFolder,
		maxFileSize:   maxFileSize,
	}
}

// HandleSubmitAnswer handles POST /answers. The video is stored first, then
// scored synchronously; a failed scoring run is still stored as an Error
// judgment so the answer shows up in reports.
func (h *SubmissionHandler) HandleSubmitAnswer(c *fiber.Ctx) error {
	fh, err := c.FormFile("video")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error",
			"error":  "No video file",
		})
	}

	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("Video file too large. Max size: %d bytes", h.maxFileSize))
	}

	candidateID, err := uuid.Parse(c.FormValue("candidate_id"))
	if err != nil {
		return badRequest(c, "Invalid candidate_id format")
	}
	questionID, err := uuid.Parse(c.FormValue("question_id"))
	if err != nil {
		return badRequest(c, "Invalid question_id format")
	}
	cheatFaults, err := parseCheatCount(c.FormValue("cheat_count"))
	if err != nil {
		return badRequest(c, "cheat_count must be a non-negative integer")
	}

	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		return lookupFailed(c, "Candidate", err)
	}
	question, err := h.questionRepo.FindByID(questionID)
	if err != nil {
		return lookupFailed(c, "Question", err)
	}
	if question.JobID != candidate.JobID {
		return badRequest(c, "Question does not belong to the candidate's job")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if contentType == "" || contentType == fiber.MIMEOctetStream {
		contentType = defaultVideoType
	}

	log.Printf("📹 Receiving answer of candidate %s to question %s (cheat count: %d)\n", candidateID, questionID, cheatFaults)

	file, err := fh.Open()
	if err != nil {
		return internalError(c, "Failed to read video file")
	}
	defer file.Close()

	ctx := c.UserContext()
	stored, err := h.mediaStore.Upload(ctx, file, h.mediaFolder, services.MediaPublicID(candidateID, questionID), contentType)
	if err != nil {
		log.Printf("❌ %v\n", err)
		return internalError(c, "Failed to store video")
	}

	judgment := h.scorer.ScoreAnswer(ctx, stored.SecureURL, question.QuestionText, question.IdealAnswer)

	resp := models.Response{
		ID:          uuid.New(),
		CandidateID: candidateID,
		QuestionID:  questionID,
		MediaURL:    stored.SecureURL,
		CheatFaults: cheatFaults,
	}
	resp.ApplyJudgment(judgment)

	if err := h.responseRepo.Create(&resp); err != nil {
		log.Printf("❌ Failed to save response: %v\n", err)
		return internalError(c, "Failed to save answer")
	}

	if h.worker != nil && judgment.Sentiment != models.SentimentError {
		h.worker.Enqueue(resp.ID)
	}

	if err := h.publisher.PublishAnswerScored(ctx, services.NewAnswerScoredEvent(&resp, judgment)); err != nil {
		log.Printf("⚠️  Failed to publish answer event: %v\n", err)
	}

	return c.JSON(models.SubmitAnswerResponse{
		Status:   "success",
		Filename: stored.SecureURL,
		Judgment: judgment,
	})
}

func parseCheatCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative cheat count %d", n)
	}
	return n, nil
}
