package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfid-logbook/internal/models"
)

func TestAttendanceRoundTrip(t *testing.T) {
	entries := []models.AttendanceEntry{
		{TagID: "04:A1:2B:3C", Timestamp: "2024-01-01 17:30:00"},
		{TagID: "AA:BB", Timestamp: "2023-12-31 08:00:00"},
	}

	data, err := EncodeAttendance(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `["04:A1:2B:3C,2024-01-01 17:30:00","AA:BB,2023-12-31 08:00:00"]`, string(data))

	got, err := DecodeAttendance(data)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestDecodeAttendance(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []models.AttendanceEntry
		wantErr bool
	}{
		{
			name: "Splits on last comma",
			data: `["odd,tag,2024-01-01 08:00:00"]`,
			want: []models.AttendanceEntry{{TagID: "odd,tag", Timestamp: "2024-01-01 08:00:00"}},
		},
		{
			name: "Drops entries without comma",
			data: `["garbage","AA,2024-01-01 08:00:00"]`,
			want: []models.AttendanceEntry{{TagID: "AA", Timestamp: "2024-01-01 08:00:00"}},
		},
		{name: "Empty array", data: `[]`, want: []models.AttendanceEntry{}},
		{name: "Not an array", data: `{"a":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAttendance([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNicknamesRoundTrip(t *testing.T) {
	names := map[string]string{"AA:BB": "Alice", "CC:DD": "Bob"}

	data, err := EncodeNicknames(names)
	require.NoError(t, err)
	got, err := DecodeNicknames(data)
	require.NoError(t, err)
	assert.Equal(t, names, got)

	empty, err := EncodeNicknames(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))

	null, err := DecodeNicknames([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, null)
}

func TestBorrowsRoundTrip(t *testing.T) {
	ret := int64(1704103200000)
	logs := []models.BorrowLog{
		{ID: "a", TagID: "AA", ItemName: "Laptop", BorrowTimestamp: 1704099600000},
		{ID: "b", TagID: "BB", ItemName: "Charger", BorrowTimestamp: 1704099700000, IsReturned: true, ReturnTimestamp: &ret},
	}

	data, err := EncodeBorrows(logs)
	require.NoError(t, err)
	got, err := DecodeBorrows(data)
	require.NoError(t, err)
	assert.Equal(t, logs, got)
}

func TestDecodeBorrowsWireFormat(t *testing.T) {
	data := `[{"tagId":"AA","itemName":"Laptop","borrowTimestamp":1704099600000,"isReturned":false,"returnTimestamp":null}]`

	got, err := DecodeBorrows([]byte(data))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ID)
	assert.Equal(t, "AA", got[0].TagID)
	assert.Equal(t, "Laptop", got[0].ItemName)
	assert.Nil(t, got[0].ReturnTimestamp)

	encoded, err := EncodeBorrows(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))
}
