// Package export renders the ledgers as an XLSX workbook
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"rfid-logbook/internal/models"
)

// Sheet names
const (
	AttendanceSheet = "Attendance"
	BorrowsSheet    = "Borrows"
)

var (
	attendanceHeader = []interface{}{"Tag ID", "Nickname", "Date", "Time"}
	borrowsHeader    = []interface{}{"Tag ID", "Nickname", "Item", "Borrowed At", "Status", "Returned At"}
)

// Write renders attendance and borrows into w. Borrow times are shown in loc.
func Write(w io.Writer, attendance []models.AttendanceView, borrows []models.BorrowView, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AttendanceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(BorrowsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	rows := make([][]interface{}, 0, len(attendance))
	for _, a := range attendance {
		rows = append(rows, []interface{}{a.TagID, a.Nickname, a.Date, clock(a.Timestamp)})
	}
	if err := writeSheet(f, AttendanceSheet, attendanceHeader, rows, bold); err != nil {
		return err
	}

	rows = make([][]interface{}, 0, len(borrows))
	for _, b := range borrows {
		returnedAt := ""
		if b.IsReturned && b.ReturnTimestamp != nil {
			returnedAt = b.ReturnedAt().In(loc).Format(models.TimestampLayout)
		}
		rows = append(rows, []interface{}{
			b.TagID,
			b.Nickname,
			b.ItemName,
			b.BorrowedAt().In(loc).Format(models.TimestampLayout),
			b.Status,
			returnedAt,
		})
	}
	if err := writeSheet(f, BorrowsSheet, borrowsHeader, rows, bold); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 20)
}

// clock returns the time-of-day part of an attendance timestamp
func clock(timestamp string) string {
	if len(timestamp) <= len(models.DateLayout)+1 {
		return ""
	}
	return timestamp[len(models.DateLayout)+1:]
}
