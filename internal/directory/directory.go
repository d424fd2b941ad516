// Package directory maps tag identifiers to human readable nicknames
package directory

import (
	"errors"
	"strings"

	"github.com/pocketbase/pocketbase/tools/store"
)

var (
	ErrEmptyTagID    = errors.New("tag ID cannot be empty")
	ErrEmptyNickname = errors.New("nickname cannot be empty")
	ErrTagExists     = errors.New("tag ID already exists")
)

// Directory is a concurrent-safe tag -> nickname map. Writes are
// last-write-wins per tag.
type Directory struct {
	names *store.Store[string, string]
}

// New creates a directory seeded with initial; blank pairs are dropped
func New(initial map[string]string) *Directory {
	d := &Directory{names: store.New[string, string](nil)}
	d.ReplaceAll(initial)
	return d
}

// Get returns the nickname of tagID
func (d *Directory) Get(tagID string) (string, bool) {
	if !d.names.Has(tagID) {
		return "", false
	}
	return d.names.Get(tagID), true
}

// Set assigns a nickname, replacing any previous one
func (d *Directory) Set(tagID, nickname string) error {
	tagID, nickname, err := clean(tagID, nickname)
	if err != nil {
		return err
	}
	d.names.Set(tagID, nickname)
	return nil
}

// Add assigns a nickname only if the tag has none yet
func (d *Directory) Add(tagID, nickname string) error {
	tagID, nickname, err := clean(tagID, nickname)
	if err != nil {
		return err
	}
	if d.names.Has(tagID) {
		return ErrTagExists
	}
	d.names.Set(tagID, nickname)
	return nil
}

// Remove deletes the nickname of tagID
func (d *Directory) Remove(tagID string) {
	d.names.Remove(tagID)
}

// ReplaceAll swaps the whole directory for mapping
func (d *Directory) ReplaceAll(mapping map[string]string) {
	d.names.Reset(sanitize(mapping))
}

// Merge overwrites existing tags with the entries of mapping and returns
// the number of entries applied
func (d *Directory) Merge(mapping map[string]string) int {
	n := 0
	for tagID, nickname := range sanitize(mapping) {
		d.names.Set(tagID, nickname)
		n++
	}
	return n
}

// Clear removes every nickname
func (d *Directory) Clear() {
	d.names.RemoveAll()
}

// Len returns the number of named tags
func (d *Directory) Len() int {
	return d.names.Length()
}

// Snapshot returns a copy of the directory
func (d *Directory) Snapshot() map[string]string {
	return d.names.GetAll()
}

func clean(tagID, nickname string) (string, string, error) {
	tagID = strings.TrimSpace(tagID)
	nickname = strings.TrimSpace(nickname)
	if tagID == "" {
		return "", "", ErrEmptyTagID
	}
	if nickname == "" {
		return "", "", ErrEmptyNickname
	}
	return tagID, nickname, nil
}

func sanitize(mapping map[string]string) map[string]string {
	out := make(map[string]string, len(mapping))
	for tagID, nickname := range mapping {
		tagID, nickname, err := clean(tagID, nickname)
		if err != nil {
			continue
		}
		out[tagID] = nickname
	}
	return out
}
