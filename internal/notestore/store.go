// Package notestore owns the in-memory ordered note collection and the
// current selection. Every mutation is written through a Persister.
package notestore

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// CopySuffix is appended to the title of duplicated notes.
const CopySuffix = " (Copy)"

// Persister stores the whole collection. persistence.Adapter satisfies it.
type Persister interface {
	Save(notes []models.Note) error
	Load() []models.Note
}

// Store is the note collection. All returned notes are copies.
type Store struct {
	mu       sync.RWMutex
	notes    []models.Note
	selected string

	persist Persister
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides note id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New loads the collection from p, orders it pinned-first and selects the head.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persist: p,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.notes = s.dedupe(p.Load())
	for i := range s.notes {
		s.notes[i].Normalize()
	}
	order(s.notes)
	if len(s.notes) > 0 {
		s.selected = s.notes[0].ID
	}
	return s
}

// save persists the collection. Callers hold s.mu.
func (s *Store) save() error {
	if err := s.persist.Save(s.notes); err != nil {
		s.logger.Error("notestore: persist failed", slog.String("error", err.Error()))
		return fmt.Errorf("notestore: persist: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// Create inserts a blank note at the head and selects it.
func (s *Store) Create() (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.timestamp()
	n := models.Note{
		ID:        s.newID(),
		Title:     models.DefaultTitle,
		CreatedAt: ts,
		UpdatedAt: ts,
		Tags:      []string{},
		Category:  models.DefaultCategory,
	}
	s.notes = slices.Insert(s.notes, 0, n)
	s.selected = n.ID
	return n.Clone(), s.save()
}

// Update replaces the note with the same id. The id and createdAt of the
// stored note are kept, updatedAt is set to now and an empty title falls back
// to the default. The updated note becomes selected.
func (s *Store) Update(note models.Note) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(note.ID)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notestore: update %s: %w", note.ID, apperr.ErrNotFound)
	}
	n := note.Clone()
	n.CreatedAt = s.notes[i].CreatedAt
	n.UpdatedAt = s.timestamp()
	n.Normalize()
	if err := n.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("notestore: update %s: %w", note.ID, err)
	}
	s.notes[i] = n
	s.selected = n.ID
	return n.Clone(), s.save()
}

// Delete removes a note. If it was selected, the selection moves to the new
// head, or to none when the collection is empty.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("notestore: delete %s: %w", id, apperr.ErrNotFound)
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	if s.selected == id {
		s.selected = ""
		if len(s.notes) > 0 {
			s.selected = s.notes[0].ID
		}
	}
	return s.save()
}

// Pin toggles the pinned flag and re-sorts the collection.
func (s *Store) Pin(id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notestore: pin %s: %w", id, apperr.ErrNotFound)
	}
	s.notes[i].IsPinned = !s.notes[i].IsPinned
	s.notes[i].UpdatedAt = s.timestamp()
	n := s.notes[i].Clone()
	order(s.notes)
	return n, s.save()
}

// Duplicate clones a note under a new id at the head of the collection and
// selects the copy.
func (s *Store) Duplicate(id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notestore: duplicate %s: %w", id, apperr.ErrNotFound)
	}
	ts := s.timestamp()
	c := s.notes[i].Clone()
	c.ID = s.newID()
	c.Title += CopySuffix
	c.CreatedAt = ts
	c.UpdatedAt = ts
	c.IsPinned = false
	s.notes = slices.Insert(s.notes, 0, c)
	s.selected = c.ID
	return c.Clone(), s.save()
}

// Search returns notes whose title, content markup or any tag contains term,
// ignoring case. A blank term returns the whole collection.
func (s *Store) Search(term string) []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(term) == "" {
		return cloneAll(s.notes)
	}
	needle := strings.ToLower(term)
	var out []models.Note
	for _, n := range s.notes {
		if matches(n, needle) {
			out = append(out, n.Clone())
		}
	}
	if out == nil {
		out = []models.Note{}
	}
	return out
}

func matches(n models.Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Get returns the note with id.
func (s *Store) Get(id string) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notestore: get %s: %w", id, apperr.ErrNotFound)
	}
	return s.notes[i].Clone(), nil
}

// List returns the collection in its current order.
func (s *Store) List() []models.Note {
	return s.Search("")
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Select marks id as the current note.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return fmt.Errorf("notestore: select %s: %w", id, apperr.ErrNotFound)
	}
	s.selected = id
	return nil
}

// Selected returns the current note, if any.
func (s *Store) Selected() (models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(s.selected)
	if i < 0 {
		return models.Note{}, false
	}
	return s.notes[i].Clone(), true
}

// ByCategory returns the notes filed under category.
func (s *Store) ByCategory(category string) []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Note{}
	for _, n := range s.notes {
		if n.Category == category {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Categories returns the sorted distinct categories in use.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range s.notes {
		c := n.Category
		if c == "" {
			c = models.DefaultCategory
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Merge prepends imported notes whose id is not already present, keeping
// their file order, and returns how many were added.
func (s *Store) Merge(imported []models.Note) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.notes))
	for _, n := range s.notes {
		existing[n.ID] = struct{}{}
	}
	var fresh []models.Note
	for _, n := range imported {
		if _, dup := existing[n.ID]; dup {
			continue
		}
		existing[n.ID] = struct{}{}
		c := n.Clone()
		c.Normalize()
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return 0, apperr.ErrNothingToImport
	}
	s.notes = append(fresh, s.notes...)
	return len(fresh), s.save()
}

// Replace swaps in a collection read from storage without writing it back.
func (s *Store) Replace(notes []models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = s.dedupe(cloneAll(notes))
	for i := range s.notes {
		s.notes[i].Normalize()
	}
	order(s.notes)
	if s.indexOf(s.selected) < 0 {
		s.selected = ""
		if len(s.notes) > 0 {
			s.selected = s.notes[0].ID
		}
	}
}

// Clear removes every note and the selection.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = []models.Note{}
	s.selected = ""
	return s.save()
}

// dedupe keeps the first record for each id and logs the rest.
func (s *Store) dedupe(notes []models.Note) []models.Note {
	seen := make(map[string]struct{}, len(notes))
	out := notes[:0]
	for _, n := range notes {
		if _, dup := seen[n.ID]; dup {
			s.logger.Warn("notestore: duplicate id dropped", slog.String("id", n.ID))
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

func cloneAll(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
