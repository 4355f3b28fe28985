// Package persistence serializes the note collection to a durable slot and
// handles bulk export and import.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/storage"
)

// Adapter reads and writes the whole collection as one JSON array.
// It never mutates notes.
type Adapter struct {
	slot   storage.Slot
	logger *slog.Logger

	mu   sync.Mutex
	last string // checksum of the bytes last read from or written to the slot
}

// New creates an Adapter over slot.
func New(slot storage.Slot, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{slot: slot, logger: logger}
}

// Save overwrites the slot with the full collection. A write is skipped when
// the serialized bytes are identical to what the slot already holds.
func (a *Adapter) Save(notes []models.Note) error {
	if notes == nil {
		notes = []models.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("persistence: marshal: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if checksum.Same(a.last, data) {
		return nil
	}
	if err := a.slot.Write(data); err != nil {
		a.logger.Error("persistence: save failed",
			slog.String("slot", a.slot.Name()),
			slog.String("error", err.Error()))
		if !errors.Is(err, apperr.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %w", apperr.ErrStorageUnavailable, err)
		}
		return err
	}
	a.last = checksum.Sum(data)
	return nil
}

// Load returns the stored collection. An absent slot, unreadable storage or
// malformed data all yield an empty collection with a logged diagnostic.
func (a *Adapter) Load() []models.Note {
	data, err := a.slot.Read()
	if err != nil {
		if errors.Is(err, apperr.ErrSlotEmpty) {
			a.logger.Debug("persistence: slot empty", slog.String("slot", a.slot.Name()))
		} else {
			a.logger.Warn("persistence: load failed",
				slog.String("slot", a.slot.Name()),
				slog.String("error", err.Error()))
		}
		return []models.Note{}
	}
	notes, err := Decode(data)
	if err != nil {
		a.logger.Warn("persistence: slot holds invalid data",
			slog.String("slot", a.slot.Name()),
			slog.String("error", err.Error()))
		return []models.Note{}
	}
	notes = KeepValid(notes, a.logger)

	a.mu.Lock()
	a.last = checksum.Sum(data)
	a.mu.Unlock()
	return notes
}

// Clear removes the stored collection.
func (a *Adapter) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.slot.Clear(); err != nil {
		a.logger.Error("persistence: clear failed", slog.String("error", err.Error()))
		return err
	}
	a.last = ""
	return nil
}

// LastChecksum returns the checksum of the last bytes exchanged with the slot.
func (a *Adapter) LastChecksum() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Observe records data as the slot's current contents, so that a later Save
// of the same bytes is skipped and a different one is written.
func (a *Adapter) Observe(data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = checksum.Sum(data)
}

// Decode parses a serialized collection. The top-level value must be a JSON
// array of note objects; anything else is apperr.ErrFormat.
func Decode(data []byte) ([]models.Note, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: top-level value is not an array", apperr.ErrFormat)
	}
	notes := make([]models.Note, 0, len(raw))
	for i, r := range raw {
		var n models.Note
		if err := json.Unmarshal(r, &n); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", apperr.ErrFormat, i, err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// KeepValid drops records that break the note invariants (missing id,
// locked without ciphertext, plaintext with ciphertext) and logs each one.
// Stored data is not repaired, only skipped.
func KeepValid(notes []models.Note, logger *slog.Logger) []models.Note {
	out := notes[:0]
	for i, n := range notes {
		if err := n.Validate(); err != nil {
			logger.Warn("persistence: dropping invalid record",
				slog.Int("index", i),
				slog.String("id", n.ID),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, n)
	}
	return out
}
