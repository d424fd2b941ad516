package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rfid-logbook/internal/models"
	"rfid-logbook/internal/services"
)

type nopPersister struct{}

func (nopPersister) SaveNicknames(map[string]string)         {}
func (nopPersister) SaveAttendance([]models.AttendanceEntry) {}
func (nopPersister) SaveBorrows([]models.BorrowLog)          {}

type recorder struct {
	messages []string
}

func (r *recorder) SendNotification(message string) {
	r.messages = append(r.messages, message)
}

func newTestBot(snap *models.Snapshot) *Bot {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	book := services.NewLogbook(snap, nopPersister{}, nil, nil, services.Options{
		Catalog:  []string{"Laptop", "Charger"},
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	return &Bot{logbook: book}
}

func TestHandleCommand(t *testing.T) {
	borrowed := time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC).UnixMilli()
	returned := borrowed + 1000
	snap := &models.Snapshot{
		Nicknames: map[string]string{"04:A1": "Budi"},
		Attendance: []models.AttendanceEntry{
			{TagID: "04:A1", Timestamp: "2026-03-10 08:01:00"},
			{TagID: "CA:FE", Timestamp: "2026-03-10 07:50:00"},
			{TagID: "04:A1", Timestamp: "2026-03-05 08:10:00"},
			{TagID: "04:A1", Timestamp: "2026-02-20 08:10:00"},
		},
		Borrows: []models.BorrowLog{
			{ID: "b1", TagID: "04:A1", ItemName: "Laptop", BorrowTimestamp: borrowed},
			{ID: "b2", TagID: "CA:FE", ItemName: "Charger", BorrowTimestamp: borrowed, IsReturned: true, ReturnTimestamp: &returned},
		},
	}
	b := newTestBot(snap)

	tests := []struct {
		name    string
		command string
		args    string
		want    []string
		notWant []string
	}{
		{name: "Start", command: "start", want: []string{"/today", "/borrows", "/history"}},
		{name: "Get id", command: "getid", want: []string{"Chat ID: `42`"}},
		{
			name:    "Today in check-in order",
			command: "today",
			want:    []string{"*Today* (2)\n07:50:00 `CA:FE`\n08:01:00 *Budi* (`04:A1`)\n"},
		},
		{
			name:    "Active borrows only",
			command: "borrows",
			want:    []string{"Laptop: *Budi* (`04:A1`) since 09/03 14:30"},
			notWant: []string{"Charger"},
		},
		{
			name:    "History of the last week",
			command: "history",
			want:    []string{"2026-03-10 08:01", "2026-03-05 08:10"},
			notWant: []string{"2026-02-20"},
		},
		{
			name:    "History filtered by name",
			command: "history",
			args:    " budi ",
			want:    []string{"*Budi*"},
			notWant: []string{"CA:FE"},
		},
		{name: "Unknown", command: "payroll", want: []string{"Unknown command"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.handleCommand(tt.command, tt.args, 42)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
		})
	}
}

func TestHistoryCoversSevenDays(t *testing.T) {
	b := newTestBot(&models.Snapshot{
		Attendance: []models.AttendanceEntry{
			{TagID: "04:A1", Timestamp: "2026-03-04 08:00:00"},
			{TagID: "04:A1", Timestamp: "2026-03-03 08:00:00"},
		},
	})

	got := b.handleCommand("history", "", 1)
	assert.Contains(t, got, "2026-03-04 08:00")
	assert.NotContains(t, got, "2026-03-03")
}

func TestLabelEscapesMarkdown(t *testing.T) {
	assert.Equal(t, "*Budi\\_S\\** (`04:A1`)", label("Budi_S*", "04:A1"))
	assert.Equal(t, "`CA:FE`", label("", "CA:FE"))
}

func TestHandleCommandEmptyLedgers(t *testing.T) {
	b := newTestBot(nil)

	assert.Equal(t, "No check-ins today", b.handleCommand("today", "", 1))
	assert.Equal(t, "Nothing is borrowed", b.handleCommand("borrows", "", 1))
	assert.Equal(t, "No history found", b.handleCommand("history", "", 1))
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()
	n.SendNotification("dropped")

	r := &recorder{}
	n.Attach(r)
	n.SendNotification("✅ *Budi* checked in")

	assert.Equal(t, []string{"✅ *Budi* checked in"}, r.messages)

	// a bot without an admin chat stays silent
	var unconfigured *Bot
	n.Attach(unconfigured)
	assert.NotPanics(t, func() { n.SendNotification("x") })
	assert.Len(t, r.messages, 1)
}
