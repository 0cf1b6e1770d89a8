package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName        = "Positions"
	summarySheetName = "Summary"
)

// Exporter provides a concrete implementation for the SpreadsheetExporter
// interface using xlsx workbooks.
type Exporter struct {
	dir string
}

// NewExporter creates a spreadsheet exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Create opens a new workbook session for one report.
func (e *Exporter) Create(ctx context.Context, report *entity.Report) (repository.SpreadsheetSession, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}

	return &session{
		file: f,
		path: filepath.Join(e.dir, fmt.Sprintf("report_%d.xlsx", report.ID)),
	}, nil
}

// session is one in-progress workbook. The date column set is frozen at
// WriteHeaders time: rows may only fill those columns, and positions for
// any other date are dropped.
type session struct {
	file    *excelize.File
	path    string
	dateCol map[string]int
	nextRow int
}

func (s *session) WriteSummary(summary *entity.StatisticsSummary) error {
	if summary == nil {
		return nil
	}
	if _, err := s.file.NewSheet(summarySheetName); err != nil {
		return err
	}

	type summaryCell struct {
		label string
		value interface{}
	}
	cells := []summaryCell{
		{"Total keywords", summary.TotalKeywords},
		{"Total records", summary.TotalRecords},
		{"Top 10 keywords", summary.Top10Count},
	}
	if summary.AveragePosition != nil {
		cells = append(cells, summaryCell{"Average position", *summary.AveragePosition})
	}

	for i, c := range cells {
		row := i + 1
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(summarySheetName, cell, c.label); err != nil {
			return err
		}
		cell, err = excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(summarySheetName, cell, c.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) WriteHeaders(dates []string) error {
	if s.dateCol != nil {
		return fmt.Errorf("headers already written")
	}

	if err := s.setCell(1, 1, "Keyword"); err != nil {
		return err
	}
	if err := s.setCell(2, 1, "Search volume"); err != nil {
		return err
	}

	s.dateCol = make(map[string]int, len(dates))
	for i, date := range dates {
		col := i + 3
		if err := s.setCell(col, 1, date); err != nil {
			return err
		}
		s.dateCol[date] = col
	}

	s.nextRow = 2
	return nil
}

func (s *session) WriteRows(rows []entity.KeywordRow) error {
	if s.dateCol == nil {
		return fmt.Errorf("headers must be written before rows")
	}

	for _, row := range rows {
		if err := s.setCell(1, s.nextRow, row.Keyword); err != nil {
			return err
		}
		if row.Wordstat != nil {
			if err := s.setCell(2, s.nextRow, *row.Wordstat); err != nil {
				return err
			}
		}
		for date, position := range row.Positions {
			col, ok := s.dateCol[date]
			if !ok {
				// Outside the frozen column set.
				continue
			}
			if position == nil {
				continue
			}
			if err := s.setCell(col, s.nextRow, *position); err != nil {
				return err
			}
		}
		s.nextRow++
	}
	return nil
}

func (s *session) Finalize() (string, error) {
	if err := s.file.SaveAs(s.path); err != nil {
		s.file.Close()
		return "", err
	}
	if err := s.file.Close(); err != nil {
		return "", err
	}

	info, err := os.Stat(s.path)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: %s", repository.ErrEmptyArtifact, s.path)
	}
	return s.path, nil
}

func (s *session) Discard() error {
	return s.file.Close()
}

func (s *session) setCell(col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.file.SetCellValue(sheetName, cell, value)
}
