package repository

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Writer persists blobs in the background with one goroutine per key.
// Writes to the same key never overlap and never reorder; when several
// writes queue up only the newest blob is written.
type Writer struct {
	store BlobStore

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool
	wg     sync.WaitGroup
}

type keyQueue struct {
	mu     sync.Mutex
	latest []byte
	dirty  bool
	kick   chan struct{}
}

// NewWriter creates a writer on top of store
func NewWriter(store BlobStore) *Writer {
	return &Writer{
		store:  store,
		queues: make(map[string]*keyQueue),
	}
}

// Enqueue schedules value to be written under key and returns immediately.
// Enqueue after Close drops the write.
func (w *Writer) Enqueue(key string, value []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		log.Warnf("⚠️ Writer closed, dropping write of %s", key)
		return
	}
	q, ok := w.queues[key]
	if !ok {
		q = &keyQueue{kick: make(chan struct{}, 1)}
		w.queues[key] = q
		w.wg.Add(1)
		go w.run(key, q)
	}

	q.mu.Lock()
	q.latest = value
	q.dirty = true
	q.mu.Unlock()

	select {
	case q.kick <- struct{}{}:
	default:
	}
	w.mu.Unlock()
}

func (w *Writer) run(key string, q *keyQueue) {
	defer w.wg.Done()

	for range q.kick {
		q.mu.Lock()
		value, dirty := q.latest, q.dirty
		q.latest, q.dirty = nil, false
		q.mu.Unlock()

		if !dirty {
			continue
		}

		// writes outlive the request that triggered them
		if err := w.store.Put(context.Background(), key, value); err != nil {
			log.Errorf("❌ Failed to persist %s: %v", key, err)
			continue
		}
		log.Debugf("💾 Persisted %s (%d bytes)", key, len(value))
	}
}

// Close stops accepting writes and waits until every queued blob is written
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for _, q := range w.queues {
		close(q.kick)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
