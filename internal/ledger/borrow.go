package ledger

import (
	"time"

	"github.com/google/uuid"

	"rfid-logbook/internal/models"
)

// Borrows tracks items lent out to tag holders. A record starts Active and
// moves once to Returned; nothing moves it back.
type Borrows struct {
	logs  []models.BorrowLog
	now   func() time.Time
	newID func() string
}

// BorrowsOption customizes a Borrows ledger
type BorrowsOption func(*Borrows)

// WithClock sets the time source used for borrow and return timestamps
func WithClock(now func() time.Time) BorrowsOption {
	return func(b *Borrows) { b.now = now }
}

// WithIDGenerator sets the generator for record identifiers
func WithIDGenerator(gen func() string) BorrowsOption {
	return func(b *Borrows) { b.newID = gen }
}

// NewBorrows creates a ledger from previously persisted records. Records
// without an identifier are assigned one.
func NewBorrows(logs []models.BorrowLog, opts ...BorrowsOption) *Borrows {
	b := &Borrows{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.logs = cloneLogs(logs)
	for i := range b.logs {
		if b.logs[i].ID == "" {
			b.logs[i].ID = b.newID()
		}
	}
	return b
}

// Create appends a new Active record. Several active borrows of the same
// item are allowed.
func (b *Borrows) Create(tagID, itemName string) (models.BorrowLog, []models.BorrowLog) {
	log := models.BorrowLog{
		ID:              b.newID(),
		TagID:           tagID,
		ItemName:        itemName,
		BorrowTimestamp: b.now().UnixMilli(),
	}
	b.logs = append(b.logs, log)
	return log, b.Logs()
}

// RecordReturn marks an Active record as Returned with the current time.
// It reports whether a transition happened; unknown ids and records that
// are already returned are left untouched.
func (b *Borrows) RecordReturn(id string) (models.BorrowLog, bool, []models.BorrowLog) {
	i := b.indexOf(id)
	if i < 0 || b.logs[i].IsReturned {
		return models.BorrowLog{}, false, b.Logs()
	}

	ts := b.now().UnixMilli()
	b.logs[i].IsReturned = true
	b.logs[i].ReturnTimestamp = &ts
	return cloneLog(b.logs[i]), true, b.Logs()
}

// Delete removes a record in either state; unknown ids are a no-op
func (b *Borrows) Delete(id string) []models.BorrowLog {
	if i := b.indexOf(id); i >= 0 {
		b.logs = append(b.logs[:i:i], b.logs[i+1:]...)
	}
	return b.Logs()
}

// Clear drops every record
func (b *Borrows) Clear() []models.BorrowLog {
	b.logs = nil
	return []models.BorrowLog{}
}

// Get returns the record with the given id
func (b *Borrows) Get(id string) (models.BorrowLog, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return models.BorrowLog{}, false
	}
	return cloneLog(b.logs[i]), true
}

// Logs returns a copy of all records in creation order
func (b *Borrows) Logs() []models.BorrowLog {
	return cloneLogs(b.logs)
}

// Active returns the records that are still out
func (b *Borrows) Active() []models.BorrowLog {
	var out []models.BorrowLog
	for _, l := range b.logs {
		if !l.IsReturned {
			out = append(out, cloneLog(l))
		}
	}
	return out
}

func (b *Borrows) indexOf(id string) int {
	for i, l := range b.logs {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func cloneLog(l models.BorrowLog) models.BorrowLog {
	if l.ReturnTimestamp != nil {
		ts := *l.ReturnTimestamp
		l.ReturnTimestamp = &ts
	}
	return l
}

func cloneLogs(logs []models.BorrowLog) []models.BorrowLog {
	out := make([]models.BorrowLog, len(logs))
	for i, l := range logs {
		out[i] = cloneLog(l)
	}
	return out
}
