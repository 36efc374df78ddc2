package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/guard-duty-service/internal/domain"
	"github.com/spec-kit/guard-duty-service/internal/repository"
	apperrors "github.com/spec-kit/guard-duty-service/pkg/util"
)

// RosterExportService renders the weekly duty roster as a spreadsheet. It is
// a read-only collaborator: it consumes the duty store's range listing and
// never touches aggregates.
type RosterExportService struct {
	duties repository.DutyStore
}

// NewRosterExportService constructs the service.
func NewRosterExportService(duties repository.DutyStore) *RosterExportService {
	return &RosterExportService{duties: duties}
}

const exportSheetName = "Week Roster"

type rosterRow struct {
	rank    string
	name    string
	phone   string
	service string
	marks   map[string]bool
}

// WeekRoster builds an XLSX workbook for the seven days starting at start:
// one row per staff member on duty that week, one column per day, an X on
// each day the member is assigned.
func (s *RosterExportService) WeekRoster(ctx context.Context, start time.Time) ([]byte, error) {
	if start.IsZero() {
		return nil, apperrors.NewValidationError("start required (YYYY-MM-DD)", nil)
	}

	dates := WeekDates(start)
	duties, err := s.duties.ListForRange(ctx, dates[0], dates[len(dates)-1], nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	dateKeys := make([]string, len(dates))
	for i, d := range dates {
		dateKeys[i] = d.Format("2006-01-02")
	}

	rows := groupByStaff(duties, dateKeys)
	return renderWeekRoster(dates, dateKeys, rows)
}

// WeekDates returns the seven consecutive days starting at the UTC day of
// start.
func WeekDates(start time.Time) []time.Time {
	first := domain.NormalizeDate(start)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

// groupByStaff collapses the week's duties into one row per assigned staff
// member, preserving first-seen order. The service column carries the first
// location the member guards that week.
func groupByStaff(duties []domain.DutyWithRelations, dateKeys []string) []rosterRow {
	index := make(map[int64]int)
	keySet := make(map[string]bool, len(dateKeys))
	for _, key := range dateKeys {
		keySet[key] = true
	}

	var rows []rosterRow
	for _, duty := range duties {
		pos, seen := index[duty.AssignedStaffID]
		if !seen {
			marks := make(map[string]bool, len(dateKeys))
			row := rosterRow{
				rank:  duty.RoleName,
				name:  duty.AssignedStaffName,
				marks: marks,
			}
			if duty.AssignedStaffPhone != nil {
				row.phone = *duty.AssignedStaffPhone
			}
			rows = append(rows, row)
			pos = len(rows) - 1
			index[duty.AssignedStaffID] = pos
		}
		key := duty.AssignedDate.Format("2006-01-02")
		if keySet[key] {
			rows[pos].marks[key] = true
		}
		if rows[pos].service == "" {
			rows[pos].service = duty.LocationName
		}
	}
	return rows
}

func renderWeekRoster(dates []time.Time, dateKeys []string, rows []rosterRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	baseHeaders := []string{"RANK", "NAME", "PHONE", "SERVICE"}
	lastCol, _ := excelize.CoordinatesToCellName(len(baseHeaders)+len(dates), 1)
	if err := f.MergeCell(exportSheetName, "A1", lastCol); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("GUARD DUTY ROSTER - %s", dates[0].Format("January 2006"))
	if err := f.SetCellValue(exportSheetName, "A1", title); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(exportSheetName, "A1", lastCol, titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	for col, header := range baseHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(exportSheetName, cell, header)
	}
	for i, date := range dates {
		cell, _ := excelize.CoordinatesToCellName(len(baseHeaders)+i+1, 2)
		_ = f.SetCellValue(exportSheetName, cell, date.Format("Mon")[:1])
		numCell, _ := excelize.CoordinatesToCellName(len(baseHeaders)+i+1, 3)
		_ = f.SetCellValue(exportSheetName, numCell, date.Day())
	}
	headerEnd, _ := excelize.CoordinatesToCellName(len(baseHeaders)+len(dates), 3)
	_ = f.SetCellStyle(exportSheetName, "A2", headerEnd, headerStyle)

	_ = f.SetColWidth(exportSheetName, "A", "A", 12)
	_ = f.SetColWidth(exportSheetName, "B", "B", 32)
	_ = f.SetColWidth(exportSheetName, "C", "D", 18)

	for i, row := range rows {
		rowNum := 4 + i
		values := []any{row.rank, row.name, row.phone, row.service}
		for _, key := range dateKeys {
			if row.marks[key] {
				values = append(values, "X")
			} else {
				values = append(values, "")
			}
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			_ = f.SetCellValue(exportSheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
