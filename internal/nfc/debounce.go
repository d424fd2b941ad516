package nfc

import (
	"sync"
	"time"
)

// Debouncer drops repeated reads of a tag that stays in a reader's field.
// Continuous readers report the same UID many times per second; only the
// first read after the window expires counts as a new scan.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	lastUID  map[string]string
	lastSeen map[string]time.Time
}

// NewDebouncer creates a debouncer; a zero window disables it
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:   window,
		now:      time.Now,
		lastUID:  make(map[string]string),
		lastSeen: make(map[string]time.Time),
	}
}

// Accept reports whether uid seen by reader should be processed.
func (d *Debouncer) Accept(reader, uid string) bool {
	if d.window <= 0 {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	prevUID, seen := d.lastUID[reader]
	prevTime := d.lastSeen[reader]
	d.lastUID[reader] = uid
	d.lastSeen[reader] = now

	if seen && prevUID == uid && now.Sub(prevTime) < d.window {
		return false
	}
	return true
}

// Reset forgets every reader
func (d *Debouncer) Reset() {
	d.mu.Lock()
	d.lastUID = make(map[string]string)
	d.lastSeen = make(map[string]time.Time)
	d.mu.Unlock()
}
