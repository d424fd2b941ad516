package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfid-logbook/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestBorrows(logs []models.BorrowLog) (*Borrows, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	return NewBorrows(logs, WithClock(clock.Now), WithIDGenerator(sequentialIDs())), clock
}

func TestCreateBorrow(t *testing.T) {
	b, clock := newTestBorrows(nil)

	log, all := b.Create("04:A1:2B:3C", "Laptop")

	assert.Equal(t, "id-1", log.ID)
	assert.Equal(t, "04:A1:2B:3C", log.TagID)
	assert.Equal(t, "Laptop", log.ItemName)
	assert.Equal(t, clock.t.UnixMilli(), log.BorrowTimestamp)
	assert.False(t, log.IsReturned)
	assert.Nil(t, log.ReturnTimestamp)
	assert.Equal(t, []models.BorrowLog{log}, all)
}

func TestCreateBorrowAllowsDoubleBooking(t *testing.T) {
	b, _ := newTestBorrows(nil)

	first, _ := b.Create("04:A1:2B:3C", "Laptop")
	second, all := b.Create("04:A1:2B:3C", "Laptop")

	require.Len(t, all, 2)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, b.Active(), 2)
}

func TestRecordReturn(t *testing.T) {
	b, clock := newTestBorrows(nil)
	log, _ := b.Create("04:A1:2B:3C", "Laptop")

	clock.Advance(time.Hour)
	returned, ok, all := b.RecordReturn(log.ID)

	require.True(t, ok)
	assert.True(t, returned.IsReturned)
	require.NotNil(t, returned.ReturnTimestamp)
	assert.Equal(t, clock.t.UnixMilli(), *returned.ReturnTimestamp)
	assert.Equal(t, []models.BorrowLog{returned}, all)
	assert.Empty(t, b.Active())
}

func TestRecordReturnTwiceKeepsFirstTimestamp(t *testing.T) {
	b, clock := newTestBorrows(nil)
	log, _ := b.Create("AA", "Charger")

	clock.Advance(time.Minute)
	first, ok, _ := b.RecordReturn(log.ID)
	require.True(t, ok)

	clock.Advance(time.Hour)
	_, ok, all := b.RecordReturn(log.ID)

	assert.False(t, ok)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsReturned)
	assert.Equal(t, *first.ReturnTimestamp, *all[0].ReturnTimestamp)
}

func TestRecordReturnUnknownID(t *testing.T) {
	b, _ := newTestBorrows(nil)
	b.Create("AA", "Charger")
	before := b.Logs()

	_, ok, after := b.RecordReturn("missing")

	assert.False(t, ok)
	assert.Equal(t, before, after)
}

func TestDeleteBorrow(t *testing.T) {
	b, _ := newTestBorrows(nil)
	active, _ := b.Create("AA", "Laptop")
	done, _ := b.Create("BB", "Proyektor")
	b.RecordReturn(done.ID)

	t.Run("Unknown id is a no-op", func(t *testing.T) {
		before := b.Logs()
		assert.Equal(t, before, b.Delete("missing"))
	})

	t.Run("Returned record", func(t *testing.T) {
		got := b.Delete(done.ID)
		require.Len(t, got, 1)
		assert.Equal(t, active.ID, got[0].ID)
	})

	t.Run("Active record", func(t *testing.T) {
		assert.Empty(t, b.Delete(active.ID))
	})
}

func TestClearBorrows(t *testing.T) {
	b, _ := newTestBorrows(nil)
	b.Create("AA", "Laptop")
	b.Create("BB", "Charger")

	assert.Empty(t, b.Clear())
	assert.Empty(t, b.Logs())
}

func TestNewBorrowsAssignsMissingIDs(t *testing.T) {
	legacy := []models.BorrowLog{
		{TagID: "AA", ItemName: "Laptop", BorrowTimestamp: 1},
		{ID: "keep", TagID: "BB", ItemName: "Charger", BorrowTimestamp: 2},
	}

	b, _ := newTestBorrows(legacy)
	logs := b.Logs()

	assert.Equal(t, "id-1", logs[0].ID)
	assert.Equal(t, "keep", logs[1].ID)
	assert.Empty(t, legacy[0].ID, "input must not be modified")

	got, ok := b.Get("keep")
	require.True(t, ok)
	assert.Equal(t, "BB", got.TagID)
}
