// Package repository defines repository interfaces for data access
package repository

import (
	"context"
	"errors"
)

// Keys of the three persisted collections
const (
	NicknamesKey  = "tag_nicknames_map"
	AttendanceKey = "tag_history_list"
	BorrowLogsKey = "borrow_logs_list"
)

// ErrNotFound is returned by a BlobStore when a key has never been written
var ErrNotFound = errors.New("blob not found")

// BlobStore persists opaque JSON documents under string keys
type BlobStore interface {
	// Get returns the blob stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the blob stored under key
	Put(ctx context.Context, key string, value []byte) error
}

// Keys lists every persisted key
var Keys = []string{NicknamesKey, AttendanceKey, BorrowLogsKey}
