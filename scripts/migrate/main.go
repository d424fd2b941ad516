// Command migrate copies the persisted collections from a file store
// directory into the backend configured by STORE_BACKEND.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"rfid-logbook/config"
	"rfid-logbook/internal/repository"
)

type Migrator struct {
	from  repository.BlobStore
	to    repository.BlobStore
	force bool
}

func NewMigrator(from, to repository.BlobStore, force bool) *Migrator {
	return &Migrator{from: from, to: to, force: force}
}

// checkBlob refuses to copy data the service could not load
func checkBlob(key string, data []byte) error {
	var err error
	switch key {
	case repository.NicknamesKey:
		_, err = repository.DecodeNicknames(data)
	case repository.AttendanceKey:
		_, err = repository.DecodeAttendance(data)
	case repository.BorrowLogsKey:
		_, err = repository.DecodeBorrows(data)
	}
	return err
}

func (m *Migrator) copyKey(ctx context.Context, key string) (bool, error) {
	log.Infof("📖 Reading %s...", key)

	data, err := m.from.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		log.Infof("⚠️  %s not found in source. Skipping...", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := checkBlob(key, data); err != nil {
		return false, fmt.Errorf("source %s is corrupt: %w", key, err)
	}

	if !m.force {
		_, err := m.to.Get(ctx, key)
		if err == nil {
			log.Infof("⚠️  %s already exists in destination. Skipping (use -force to overwrite)...", key)
			return false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("failed to check destination %s: %w", key, err)
		}
	}

	if err := m.to.Put(ctx, key, data); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", key, err)
	}

	stored, err := m.to.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to verify %s: %w", key, err)
	}
	if !bytes.Equal(stored, data) {
		return false, fmt.Errorf("%s differs after copy", key)
	}

	log.Infof("✅ %s copied (%d bytes)", key, len(data))
	return true, nil
}

// Run copies every key and reports how many were written
func (m *Migrator) Run(ctx context.Context) (int, error) {
	copied := 0
	for _, key := range repository.Keys {
		ok, err := m.copyKey(ctx, key)
		if err != nil {
			return copied, err
		}
		if ok {
			copied++
		}
	}
	return copied, nil
}

func main() {
	fromDir := flag.String("from-dir", "./data", "file store directory to copy from")
	force := flag.Bool("force", false, "overwrite keys that already exist in the destination")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Info("🔧 Blob Migration")
	log.Info("=================")
	log.Infof("📍 From: %s  To: %s", *fromDir, cfg.StoreBackend)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	from, err := repository.NewFileStore(*fromDir)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	to, closeStore, err := repository.Open(ctx, cfg.StoreBackend, repository.OpenOptions{
		DataDir:         cfg.DataDir,
		PocketBaseURL:   cfg.PocketBaseURL,
		PocketBaseToken: cfg.PocketBaseToken,
		DatabaseURL:     cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer closeStore()

	copied, err := NewMigrator(from, to, *force).Run(ctx)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Infof("🎉 Migration complete, %d key(s) copied", copied)
}
