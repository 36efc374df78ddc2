package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/guard-duty-service/internal/domain"
)

func TestWeekDates(t *testing.T) {
	dates := WeekDates(time.Date(2024, time.January, 8, 13, 45, 0, 0, time.UTC))
	require.Len(t, dates, 7)
	assert.True(t, dates[0].Equal(day(2024, time.January, 8)), "start truncates to its UTC day")
	assert.True(t, dates[6].Equal(day(2024, time.January, 14)))
}

func TestGroupByStaffCollapsesDuties(t *testing.T) {
	phone := "555-0101"
	duties := []domain.DutyWithRelations{
		{
			GuardDuty:          domain.GuardDuty{AssignedStaffID: 1, AssignedDate: day(2024, time.January, 8)},
			AssignedStaffName:  "Ana",
			AssignedStaffPhone: &phone,
			LocationName:       "North Gate",
			RoleName:           "Sergeant",
		},
		{
			GuardDuty:         domain.GuardDuty{AssignedStaffID: 1, AssignedDate: day(2024, time.January, 10)},
			AssignedStaffName: "Ana",
			LocationName:      "South Gate",
			RoleName:          "Sergeant",
		},
		{
			GuardDuty:         domain.GuardDuty{AssignedStaffID: 2, AssignedDate: day(2024, time.January, 9)},
			AssignedStaffName: "Borja",
			LocationName:      "South Gate",
			RoleName:          "Corporal",
		},
	}
	dateKeys := []string{"2024-01-08", "2024-01-09", "2024-01-10"}

	rows := groupByStaff(duties, dateKeys)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ana", rows[0].name)
	assert.Equal(t, "Sergeant", rows[0].rank)
	assert.Equal(t, "555-0101", rows[0].phone)
	assert.Equal(t, "North Gate", rows[0].service, "service column keeps the first location")
	assert.True(t, rows[0].marks["2024-01-08"])
	assert.False(t, rows[0].marks["2024-01-09"])
	assert.True(t, rows[0].marks["2024-01-10"])

	assert.Equal(t, "Borja", rows[1].name)
	assert.True(t, rows[1].marks["2024-01-09"])
}

func TestWeekRosterRendersWorkbook(t *testing.T) {
	f := newDutyFixture()
	f.seedDuty(1, 1, day(2024, time.January, 9))

	svc := NewRosterExportService(&fakeDutyStore{state: f.state})
	content, err := svc.WeekRoster(context.Background(), day(2024, time.January, 8))
	require.NoError(t, err)
	require.NotEmpty(t, content)

	book, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer book.Close()

	title, err := book.GetCellValue("Week Roster", "A1")
	require.NoError(t, err)
	assert.Equal(t, "GUARD DUTY ROSTER - January 2024", title)

	// Tuesday Jan 9 is the second day column (F on row 4).
	mark, err := book.GetCellValue("Week Roster", "F4")
	require.NoError(t, err)
	assert.Equal(t, "X", mark)
}

func TestWeekRosterRequiresStart(t *testing.T) {
	svc := NewRosterExportService(&fakeDutyStore{state: newDutyState()})
	_, err := svc.WeekRoster(context.Background(), time.Time{})
	require.Error(t, err)
}
