package repository

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/models"
)

// StateStore loads and saves the logbook collections as JSON blobs.
// Saves are asynchronous and serialized per key by a Writer.
type StateStore struct {
	blobs  BlobStore
	writer *Writer
}

// NewStateStore wraps blobs
func NewStateStore(blobs BlobStore) *StateStore {
	return &StateStore{
		blobs:  blobs,
		writer: NewWriter(blobs),
	}
}

// Load reads all three collections; missing keys load as empty
func (s *StateStore) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Nicknames:  map[string]string{},
		Attendance: []models.AttendanceEntry{},
		Borrows:    []models.BorrowLog{},
	}

	if data, err := s.get(ctx, NicknamesKey); err != nil {
		return nil, err
	} else if data != nil {
		if snap.Nicknames, err = DecodeNicknames(data); err != nil {
			return nil, err
		}
	}

	if data, err := s.get(ctx, AttendanceKey); err != nil {
		return nil, err
	} else if data != nil {
		if snap.Attendance, err = DecodeAttendance(data); err != nil {
			return nil, err
		}
	}

	if data, err := s.get(ctx, BorrowLogsKey); err != nil {
		return nil, err
	} else if data != nil {
		if snap.Borrows, err = DecodeBorrows(data); err != nil {
			return nil, err
		}
	}

	log.Infof("📂 Loaded %d nickname(s), %d attendance entries, %d borrow log(s)",
		len(snap.Nicknames), len(snap.Attendance), len(snap.Borrows))
	return snap, nil
}

func (s *StateStore) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

// SaveNicknames schedules a write of the whole directory
func (s *StateStore) SaveNicknames(nicknames map[string]string) {
	data, err := EncodeNicknames(nicknames)
	if err != nil {
		log.Errorf("❌ Failed to encode nicknames: %v", err)
		return
	}
	s.writer.Enqueue(NicknamesKey, data)
}

// SaveAttendance schedules a write of the whole attendance list
func (s *StateStore) SaveAttendance(entries []models.AttendanceEntry) {
	data, err := EncodeAttendance(entries)
	if err != nil {
		log.Errorf("❌ Failed to encode attendance: %v", err)
		return
	}
	s.writer.Enqueue(AttendanceKey, data)
}

// SaveBorrows schedules a write of the whole borrow ledger
func (s *StateStore) SaveBorrows(logs []models.BorrowLog) {
	data, err := EncodeBorrows(logs)
	if err != nil {
		log.Errorf("❌ Failed to encode borrow logs: %v", err)
		return
	}
	s.writer.Enqueue(BorrowLogsKey, data)
}

// Close flushes pending writes
func (s *StateStore) Close() {
	s.writer.Close()
}
