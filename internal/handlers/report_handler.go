package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"axion/interview-evaluator/internal/repositories"
	"axion/interview-evaluator/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService services.ReportService
	candidateRepo repositories.CandidateRepository
	candidateURL  string
}

// NewReportHandler builds the HR reporting endpoints. candidateURL is the link
// HR shares with candidates and is echoed on the dashboard.
func NewReportHandler(
	reportService services.ReportService,
	candidateRepo repositories.CandidateRepository,
	candidateURL string,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		candidateRepo: candidateRepo,
		candidateURL:  candidateURL,
	}
}

// HandleListCandidates handles GET /hr/candidates
func (h *ReportHandler) HandleListCandidates(c *fiber.Ctx) error {
	candidates, err := h.candidateRepo.FindAllWithJob()
	if err != nil {
		return lookupFailed(c, "candidates", err)
	}
	return c.JSON(fiber.Map{"candidates": candidates})
}

// HandleReport handles GET /hr/candidates/:id/report
func (h *ReportHandler) HandleReport(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid candidate ID format")
	}

	report, err := h.reportService.CandidateReport(candidateID)
	if err != nil {
		return lookupFailed(c, "Candidate", err)
	}
	return c.JSON(report)
}

// HandleExport handles GET /hr/candidates/:id/export.json
func (h *ReportHandler) HandleExport(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid candidate ID format")
	}

	export, filename, err := h.reportService.CandidateExport(candidateID)
	if err != nil {
		return lookupFailed(c, "Candidate", err)
	}

	c.Attachment(filename)
	return c.JSON(export)
}

// HandleCohortExport handles GET /hr/jobs/:id/export.xlsx
func (h *ReportHandler) HandleCohortExport(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid job ID format")
	}

	var buf bytes.Buffer
	filename, err := h.reportService.CohortExport(jobID, &buf)
	if err != nil {
		return lookupFailed(c, "Job", err)
	}

	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// HandleDashboard handles GET /hr/dashboard
func (h *ReportHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.reportService.Dashboard(h.candidateURL)
	if err != nil {
		return lookupFailed(c, "dashboard", err)
	}
	return c.JSON(dashboard)
}

// HandleAnalytics handles GET /hr/analytics
func (h *ReportHandler) HandleAnalytics(c *fiber.Ctx) error {
	analytics, err := h.reportService.Analytics()
	if err != nil {
		return lookupFailed(c, "analytics", err)
	}
	return c.JSON(analytics)
}
