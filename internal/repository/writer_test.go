package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore records every Put and can be slowed down to force queueing
type memoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	puts     map[string][]string
	delay    time.Duration
	inFlight map[string]int
	overlap  bool
	fail     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data:     make(map[string][]byte),
		puts:     make(map[string][]string),
		inFlight: make(map[string]int),
	}
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memoryStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.inFlight[key]++
	if m.inFlight[key] > 1 {
		m.overlap = true
	}
	delay, fail := m.delay, m.fail
	m.mu.Unlock()

	time.Sleep(delay)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight[key]--
	if fail != nil {
		return fail
	}
	m.data[key] = value
	m.puts[key] = append(m.puts[key], string(value))
	return nil
}

func TestWriterLastValueWins(t *testing.T) {
	store := newMemoryStore()
	store.delay = 5 * time.Millisecond
	w := NewWriter(store)

	for i := 0; i < 50; i++ {
		w.Enqueue("k", []byte(fmt.Sprintf("%d", i)))
	}
	w.Close()

	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "49", string(got))
	assert.False(t, store.overlap, "writes to one key must not overlap")
	assert.LessOrEqual(t, len(store.puts["k"]), 50)
}

func TestWriterPreservesOrderPerKey(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store)

	for i := 0; i < 20; i++ {
		w.Enqueue("a", []byte(fmt.Sprintf("a%02d", i)))
		w.Enqueue("b", []byte(fmt.Sprintf("b%02d", i)))
	}
	w.Close()

	for _, key := range []string{"a", "b"} {
		puts := store.puts[key]
		require.NotEmpty(t, puts)
		for i := 1; i < len(puts); i++ {
			assert.Less(t, puts[i-1], puts[i], "key %s written out of order", key)
		}
		assert.Equal(t, key+"19", puts[len(puts)-1])
	}
}

func TestWriterDropsAfterClose(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store)
	w.Close()
	w.Close()

	w.Enqueue("k", []byte("late"))

	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriterSurvivesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.fail = errors.New("disk full")
	w := NewWriter(store)

	w.Enqueue("k", []byte("x"))
	w.Close()

	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
