package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/edupulse/assessment-platform/internal/models"
	"github.com/edupulse/assessment-platform/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// ExportEvaluationReport renders an evaluated assessment as an xlsx workbook
// with a summary sheet and one row per scored question.
func (s *reportService) ExportEvaluationReport(ctx context.Context, assessmentID string) ([]byte, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, assessmentID)
		}
		return nil, fmt.Errorf("failed to load assessment %s: %w", assessmentID, err)
	}
	if !assessment.Evaluated {
		return nil, fmt.Errorf("%w: assessment %s has not been evaluated", ErrInvalidState, assessmentID)
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	total := 0.0
	for _, r := range assessment.EvaluationResults {
		total += r.Marks
	}
	summary := [][]any{
		{"Assessment", assessment.Title},
		{"Subject", assessment.Subject},
		{"Class", assessment.Class},
		{"Max Score", assessment.MaxScore},
		{"Passing Score", assessment.PassingScore},
		{"Total Marks", total},
		{"Passed", total >= float64(assessment.PassingScore)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	const resultsSheet = "Results"
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create results sheet: %w", err)
	}
	header := []any{"Question", "Type", "Expected Answer", "Submitted Answer", "Marks", "Out Of", "Correct", "Feedback"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write results header: %w", err)
	}
	for i, r := range assessment.EvaluationResults {
		question, ok := assessment.QuestionByID(r.QuestionID)
		if !ok {
			question = &models.Question{}
		}
		row := []any{
			question.Text,
			string(question.Type),
			question.ExpectedAnswer,
			question.Answer,
			r.Marks,
			question.Marks,
			r.IsCorrect,
			r.Feedback,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write result row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report workbook: %w", err)
	}

	s.logger.Info("evaluation report exported",
		"assessment_id", assessmentID,
		"results", len(assessment.EvaluationResults))
	return buf.Bytes(), nil
}
