package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"candidate-match/internal/domain/match"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetMatches = "Matches"
	sheetBatch   = "Batch"
)

var matchHeaders = []string{
	"Rank",
	"Candidate",
	"Email",
	"Score",
	"Match %",
	"Quality",
	"Skills",
	"Experience",
	"Location",
	"Matched Skills",
	"Missing Skills",
	"Recommendations",
	"Degraded",
}

type LatestReader interface {
	GetRankedMatches(ctx context.Context, jobID uuid.UUID) (match.Latest, error)
}

// Service renders the latest batch of a job as an XLSX workbook.
type Service struct {
	results LatestReader
	logger  *zap.Logger
}

func NewService(results LatestReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{results: results, logger: logger.Named("export")}
}

func (s *Service) LatestMatchesXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	start := time.Now()
	latest, err := s.results.GetRankedMatches(ctx, jobID)
	if err != nil {
		return nil, err
	}
	b, err := Workbook(latest)
	if err != nil {
		return nil, err
	}
	s.logger.Info("matches exported",
		zap.String("job_id", jobID.String()),
		zap.Int("rows", len(latest.Records)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return b, nil
}

// Workbook builds a two-sheet workbook: ranked records and the batch header.
func Workbook(latest match.Latest) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetMatches); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetBatch); err != nil {
		return nil, err
	}

	for i, h := range matchHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetMatches, cell, h)
	}

	row := 2
	for _, r := range latest.Records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetMatches, cell, v)
		}
		write(1, r.Rank)
		write(2, r.CandidateName)
		write(3, r.CandidateEmail)
		write(4, r.Score)
		write(5, r.Percentage)
		write(6, string(r.Quality))
		write(7, r.Breakdown.Skills)
		write(8, r.Breakdown.Experience)
		write(9, r.Breakdown.Location)
		write(10, strings.Join(r.MatchedSkills, ", "))
		write(11, strings.Join(r.MissingSkills, ", "))
		write(12, strings.Join(r.Recommendations, "; "))
		write(13, r.Degraded)
		row++
	}

	_ = f.SetColWidth(sheetMatches, "A", "A", 6)
	_ = f.SetColWidth(sheetMatches, "B", "C", 28)
	_ = f.SetColWidth(sheetMatches, "D", "I", 11)
	_ = f.SetColWidth(sheetMatches, "J", "L", 40)

	header := [][2]any{
		{"Batch ID", batchID(latest.Batch.ID)},
		{"Job ID", batchID(latest.Batch.JobID)},
		{"Job Title", latest.Batch.JobTitle},
		{"Candidates", latest.Batch.TotalCandidates},
		{"Average Score", latest.Batch.AverageScore},
		{"Created At", createdAt(latest.Batch.CreatedAt)},
	}
	for i, kv := range header {
		_ = f.SetCellValue(sheetBatch, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(sheetBatch, fmt.Sprintf("B%d", i+1), kv[1])
	}
	_ = f.SetColWidth(sheetBatch, "A", "A", 16)
	_ = f.SetColWidth(sheetBatch, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func batchID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func createdAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
