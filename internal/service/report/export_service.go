package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrExportGenerateFail = errors.New("failed to generate occupancy spreadsheet")

const sheetName = "Occupancy"

type ExportUseCase interface {
	ExportOccupancy(ctx context.Context, weekOf time.Time) (*bytes.Buffer, string, error)
}

type Occupancy interface {
	WeeklyOccupancy(ctx context.Context, weekOf time.Time) ([]domain.DailyOccupancy, error)
}

type ExportService struct {
	occupancy Occupancy
	logger    *zap.Logger
}

func NewExportService(occupancy Occupancy, logger *zap.Logger) *ExportService {
	return &ExportService{occupancy: occupancy, logger: logger}
}

// ExportOccupancy renders the week containing weekOf as an xlsx workbook.
// Columns: weekday, date, occupied, capacity, utilisation.
func (s *ExportService) ExportOccupancy(ctx context.Context, weekOf time.Time) (*bytes.Buffer, string, error) {
	days, err := s.occupancy.WeeklyOccupancy(ctx, weekOf)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "E", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	percentStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 10})

	monday := domain.WeekStart(domain.Day(weekOf, time.UTC))
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Seat occupancy, week of %s", domain.FormatDay(monday)))
	_ = f.MergeCell(sheetName, "A1", "E1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	for i, h := range []string{"Day", "Date", "Occupied", "Capacity", "Utilisation"} {
		_ = f.SetCellValue(sheetName, cell(i+1, 2), h)
	}
	_ = f.SetCellStyle(sheetName, "A2", "E2", headerStyle)

	row := 3
	for _, d := range days {
		_ = f.SetCellValue(sheetName, cell(1, row), d.Weekday.String())
		_ = f.SetCellValue(sheetName, cell(2, row), domain.FormatDay(d.Date))
		_ = f.SetCellValue(sheetName, cell(3, row), d.Occupied)
		_ = f.SetCellValue(sheetName, cell(4, row), d.Capacity)
		_ = f.SetCellValue(sheetName, cell(5, row), utilisation(d))
		_ = f.SetCellStyle(sheetName, cell(5, row), cell(5, row), percentStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write occupancy workbook", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("occupancy_%s.xlsx", domain.FormatDay(monday)), nil
}

func utilisation(d domain.DailyOccupancy) float64 {
	if d.Capacity == 0 {
		return 0
	}
	return float64(d.Occupied) / float64(d.Capacity)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

var _ ExportUseCase = (*ExportService)(nil)
