package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rfid-logbook/internal/models"
)

func TestWrite(t *testing.T) {
	borrowed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).UnixMilli()
	returned := time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC).UnixMilli()

	attendance := []models.AttendanceView{
		{TagID: "04:A1", Nickname: "Budi", Date: "2026-03-02", Timestamp: "2026-03-02 08:01:02"},
		{TagID: "CA:FE", Date: "2026-03-01", Timestamp: "2026-03-01 07:59:00"},
	}
	borrows := []models.BorrowView{
		{
			BorrowLog: models.BorrowLog{ID: "b1", TagID: "04:A1", ItemName: "Laptop", BorrowTimestamp: borrowed, IsReturned: true, ReturnTimestamp: &returned},
			Nickname:  "Budi",
			Status:    models.BorrowReturned,
		},
		{
			BorrowLog: models.BorrowLog{ID: "b2", TagID: "CA:FE", ItemName: "Charger", BorrowTimestamp: borrowed},
			Status:    models.BorrowActive,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, attendance, borrows, time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{AttendanceSheet, BorrowsSheet}, f.GetSheetList())

	rows, err := f.GetRows(AttendanceSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Tag ID", "Nickname", "Date", "Time"},
		{"04:A1", "Budi", "2026-03-02", "08:01:02"},
		{"CA:FE", "", "2026-03-01", "07:59:00"},
	}, rows)

	rows, err = f.GetRows(BorrowsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"04:A1", "Budi", "Laptop", "2026-03-02 09:00:00", "returned", "2026-03-02 11:30:00"}, rows[1])
	// trailing empty cells are trimmed by GetRows
	assert.Equal(t, []string{"CA:FE", "", "Charger", "2026-03-02 09:00:00", "active"}, rows[2])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(BorrowsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
