package services

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"axion/interview-evaluator/internal/models"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Candidates"
)

// CohortRow is one candidate line of a job's cohort workbook.
type CohortRow struct {
	Candidate   models.Candidate
	Answered    int
	CheatFaults int
	Summary     models.CandidateSummary
}

// BuildCohortRow scores a candidate against every question of the job, with
// unanswered questions counting as 0.
func BuildCohortRow(candidate models.Candidate, questions []models.Question, responses []models.Response) CohortRow {
	cheats := 0
	for _, r := range responses {
		cheats += r.CheatFaults
	}

	latest := latestByQuestion(responses)
	answered := 0
	for _, q := range questions {
		if _, ok := latest[q.ID]; ok {
			answered++
		}
	}

	return CohortRow{
		Candidate:   candidate,
		Answered:    answered,
		CheatFaults: cheats,
		Summary:     Aggregate(LatestScores(questions, responses), ExamScorePrecision),
	}
}

// WriteCohortWorkbook renders the cohort of one job as an xlsx workbook,
// candidates ranked by average score.
func WriteCohortWorkbook(w io.Writer, job *models.Job, questionCount int, rows []CohortRow, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	ranked := make([]CohortRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Summary.AverageScore > ranked[j].Summary.AverageScore
	})

	if err := writeSummarySheet(f, job, questionCount, ranked, generatedAt); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, ranked); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// CohortFilename is the attachment name of a job's cohort workbook.
func CohortFilename(jobTitle string) string {
	return fmt.Sprintf("Cohort_%s.xlsx", sanitizeSegment(jobTitle))
}

func writeSummarySheet(f *excelize.File, job *models.Job, questionCount int, rows []CohortRow, generatedAt time.Time) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 40)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	var passed, topTalent int
	averages := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Summary.Decision == models.DecisionPassed {
			passed++
		}
		if r.Summary.TopTalent {
			topTalent++
		}
		averages = append(averages, r.Summary.AverageScore)
	}
	cohort := Aggregate(averages, CohortPrecision)
	tiers := cohort.Tiers

	f.SetCellValue(summarySheet, "A1", "Interview Cohort Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.MergeCell(summarySheet, "A1", "B1")

	lines := []struct {
		label string
		value any
	}{
		{"Job Title:", job.Title},
		{"Level:", job.Level},
		{"Skills:", job.Skills},
		{"Questions:", questionCount},
		{"Generated:", generatedAt.Format(reportTimeLayout)},
		{"Total Candidates:", len(rows)},
		{"Passed:", passed},
		{"Top Talent:", topTalent},
		{"Average Score:", cohort.AverageScore},
		{"High (>=75):", tiers.High},
		{"Mid (50-74):", tiers.Mid},
		{"Low (<50):", tiers.Low},
	}

	for i, line := range lines {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(summarySheet, label, line.label)
		f.SetCellStyle(summarySheet, label, label, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), line.value)
	}

	return nil
}

func writeCandidatesSheet(f *excelize.File, rows []CohortRow) error {
	widths := map[string]float64{"A": 8, "B": 25, "C": 30, "D": 14, "E": 12, "F": 12, "G": 12, "H": 12}
	for col, width := range widths {
		f.SetColWidth(candidatesSheet, col, col, width)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	tierStyles := make(map[string]int, 3)
	for tier, color := range map[string]string{"high": "C6EFCE", "mid": "FFEB9C", "low": "FFC7CE"} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
		if err != nil {
			return err
		}
		tierStyles[tier] = style
	}

	headers := []string{"Rank", "Candidate", "Email", "Interviewed", "Answered", "Average", "Decision", "Cheat Faults"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(candidatesSheet, cell, header)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, r := range rows {
		row := i + 2
		values := []any{
			i + 1,
			r.Candidate.Name,
			r.Candidate.Email,
			r.Candidate.InterviewDate.Format("2006-01-02"),
			r.Answered,
			r.Summary.AverageScore,
			string(r.Summary.Decision),
			r.CheatFaults,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(candidatesSheet, cell, v)
		}

		tier := "low"
		switch {
		case r.Summary.AverageScore >= HighTierMin:
			tier = "high"
		case r.Summary.AverageScore >= MidTierMin:
			tier = "mid"
		}
		f.SetCellStyle(candidatesSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), tierStyles[tier])
	}

	return nil
}
