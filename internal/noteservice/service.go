// Package noteservice coordinates the note store, encryption and text
// analysis for every presentation surface (CLI, HTTP API, MCP).
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/quire/internal/analyzer"
	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/encryption"
	"github.com/starford/quire/internal/markup"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/persistence"
)

// Event kinds passed to the EventCallback.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventDeleted   = "deleted"
	EventPinned    = "pinned"
	EventEncrypted = "encrypted"
	EventDecrypted = "decrypted"
	EventImported  = "imported"
	EventReloaded  = "reloaded"
)

// RecentWindow is how far back Stats counts a note as recently updated.
const RecentWindow = 7 * 24 * time.Hour

// EventCallback is invoked after every successful mutation. id is empty for
// collection-wide events.
type EventCallback func(kind, id string)

// Draft holds the fields of a new note. Zero values take the note defaults.
type Draft struct {
	Title    string
	Content  string
	Tags     []string
	Category string
}

// Patch holds the fields to change on an existing note. Nil fields are kept.
type Patch struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	Category *string   `json:"category"`
}

func (p Patch) empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.Category == nil
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Error    string `json:"error,omitempty"`
}

// Service is the application layer over a notestore.Store.
type Service struct {
	store    *notestore.Store
	crypto   *encryption.Service
	analysis analyzer.Options
	logger   *slog.Logger
	now      func() time.Time
	onEvent  EventCallback
}

// Option configures a Service.
type Option func(*Service)

// WithAnalyzerOptions sets the options used for insights.
func WithAnalyzerOptions(o analyzer.Options) Option {
	return func(s *Service) { s.analysis = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used by Stats, Export and Seed.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEventCallback registers cb for mutation events.
func WithEventCallback(cb EventCallback) Option {
	return func(s *Service) { s.onEvent = cb }
}

// New creates a Service.
func New(store *notestore.Store, crypto *encryption.Service, opts ...Option) *Service {
	s := &Service{
		store:    store,
		crypto:   crypto,
		analysis: analyzer.DefaultOptions(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventCallback replaces the mutation event callback.
func (s *Service) SetEventCallback(cb EventCallback) {
	s.onEvent = cb
}

func (s *Service) emit(kind, id string) {
	if s.onEvent != nil {
		s.onEvent(kind, id)
	}
}

// CreateNote creates a note at the head of the collection and fills it from d.
func (s *Service) CreateNote(_ context.Context, d Draft) (models.Note, error) {
	n, err := s.store.Create()
	if err != nil {
		return n, err
	}
	if d.Title != "" || d.Content != "" || d.Tags != nil || d.Category != "" {
		n.Title = d.Title
		n.Content = d.Content
		if d.Tags != nil {
			n.Tags = d.Tags
		}
		if d.Category != "" {
			n.Category = d.Category
		}
		if n, err = s.store.Update(n); err != nil {
			return n, err
		}
	}
	s.emit(EventCreated, n.ID)
	return n, nil
}

// GetNote returns the note with id.
func (s *Service) GetNote(_ context.Context, id string) (models.Note, error) {
	return s.store.Get(id)
}

// UpdateNote applies p to the note with id. When glossary is set the new
// content has its technical terms annotated. Content of a locked note cannot
// be changed.
func (s *Service) UpdateNote(_ context.Context, id string, p Patch, glossary bool) (models.Note, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return n, err
	}
	if p.empty() && !glossary {
		return n, nil
	}
	if p.Content != nil && n.IsEncrypted {
		return models.Note{}, fmt.Errorf("noteservice: update %s: %w", id, apperr.ErrLocked)
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if glossary && !n.IsEncrypted {
		n.Content = markup.HighlightGlossary(n.Content)
	}
	n, err = s.store.Update(n)
	if err != nil {
		return n, err
	}
	s.emit(EventUpdated, id)
	return n, nil
}

// DeleteNote removes the note with id.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.emit(EventDeleted, id)
	return nil
}

// PinNote toggles the pinned flag of the note with id.
func (s *Service) PinNote(_ context.Context, id string) (models.Note, error) {
	n, err := s.store.Pin(id)
	if err != nil {
		return n, err
	}
	s.emit(EventPinned, id)
	return n, nil
}

// DuplicateNote copies the note with id.
func (s *Service) DuplicateNote(_ context.Context, id string) (models.Note, error) {
	n, err := s.store.Duplicate(id)
	if err != nil {
		return n, err
	}
	s.emit(EventCreated, n.ID)
	return n, nil
}

// ListNotes returns the notes matching query, restricted to category when
// it is not empty, in collection order.
func (s *Service) ListNotes(_ context.Context, query, category string) []models.Note {
	notes := s.store.Search(query)
	if category == "" {
		return notes
	}
	out := []models.Note{}
	for _, n := range notes {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}

// Categories returns the distinct categories in use.
func (s *Service) Categories(_ context.Context) []string {
	return s.store.Categories()
}

// Stats summarises the collection. Words are counted over plaintext notes.
func (s *Service) Stats(_ context.Context) models.Stats {
	cutoff := s.now().Add(-RecentWindow)
	var st models.Stats
	for _, n := range s.store.List() {
		st.Total++
		if n.IsEncrypted {
			st.Encrypted++
		} else {
			st.TotalWords += markup.WordCount(n.Content)
		}
		if n.IsPinned {
			st.Pinned++
		}
		if n.UpdatedAt.After(cutoff) {
			st.Recent++
		}
	}
	return st
}

// CheckPassphrase rates p.
func (s *Service) CheckPassphrase(p string) encryption.Strength {
	return encryption.ValidatePassphrase(p)
}

// EncryptNote locks the note with id under passphrase. confirm must repeat
// the passphrase and the passphrase must meet the minimum length.
func (s *Service) EncryptNote(_ context.Context, id, passphrase, confirm string) (models.Note, error) {
	if passphrase != confirm {
		return models.Note{}, fmt.Errorf("noteservice: encrypt %s: %w", id, apperr.ErrPassphraseMismatch)
	}
	if st := encryption.ValidatePassphrase(passphrase); !st.IsValid {
		return models.Note{}, fmt.Errorf("noteservice: encrypt %s: %w: %s",
			id, apperr.ErrWeakPassphrase, strings.Join(st.Feedback, "; "))
	}
	n, err := s.store.Get(id)
	if err != nil {
		return n, err
	}
	if n.IsEncrypted {
		return models.Note{}, fmt.Errorf("noteservice: encrypt %s: %w", id, apperr.ErrLocked)
	}
	ct, err := s.crypto.Encrypt(n.Content, passphrase)
	if err != nil {
		return models.Note{}, fmt.Errorf("noteservice: encrypt %s: %w", id, err)
	}
	n, err = s.store.Lock(id, ct)
	if err != nil {
		return n, err
	}
	s.emit(EventEncrypted, id)
	return n, nil
}

// RevealNote returns the plaintext of a locked note without unlocking it.
func (s *Service) RevealNote(_ context.Context, id, passphrase string) (string, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return "", err
	}
	if !n.IsEncrypted {
		return "", fmt.Errorf("noteservice: reveal %s: %w", id, apperr.ErrNotLocked)
	}
	if n.EncryptedContent == nil {
		return "", fmt.Errorf("noteservice: reveal %s: no ciphertext: %w", id, apperr.ErrWrongPassphrase)
	}
	pt, err := s.crypto.Decrypt(*n.EncryptedContent, passphrase)
	if err != nil {
		s.logger.Warn("noteservice: decrypt rejected", slog.String("id", id))
		return "", fmt.Errorf("noteservice: reveal %s: %w", id, err)
	}
	return pt, nil
}

// DecryptNote unlocks the note with id permanently. A wrong passphrase
// leaves the note locked.
func (s *Service) DecryptNote(ctx context.Context, id, passphrase string) (models.Note, error) {
	pt, err := s.RevealNote(ctx, id, passphrase)
	if err != nil {
		return models.Note{}, err
	}
	n, err := s.store.Unlock(id, pt)
	if err != nil {
		return n, err
	}
	s.emit(EventDecrypted, id)
	return n, nil
}

// RemoveEncryption drops the ciphertext of a locked note without a
// passphrase. content becomes the note body, "" discards it.
func (s *Service) RemoveEncryption(_ context.Context, id, content string) (models.Note, error) {
	n, err := s.store.RemoveEncryption(id, content)
	if err != nil {
		return n, err
	}
	s.emit(EventDecrypted, id)
	return n, nil
}

// plainText returns the text of n with markup stripped, decrypting locked
// notes with passphrase.
func (s *Service) plainText(ctx context.Context, n models.Note, passphrase string) (string, error) {
	if !n.IsEncrypted {
		return markup.StripTags(n.Content), nil
	}
	if passphrase == "" {
		return "", fmt.Errorf("noteservice: note %s: %w", n.ID, apperr.ErrLocked)
	}
	pt, err := s.RevealNote(ctx, n.ID, passphrase)
	if err != nil {
		return "", err
	}
	return markup.StripTags(pt), nil
}

// Insights analyses the text of the note with id. Locked notes need their
// passphrase.
func (s *Service) Insights(ctx context.Context, id, passphrase string) (analyzer.Report, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return analyzer.Report{}, err
	}
	text, err := s.plainText(ctx, n, passphrase)
	if err != nil {
		return analyzer.Report{}, err
	}
	return analyzer.Insights(text, s.analysis), nil
}

// Grammar checks the text of the note with id.
func (s *Service) Grammar(ctx context.Context, id, passphrase string) ([]analyzer.GrammarIssue, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	text, err := s.plainText(ctx, n, passphrase)
	if err != nil {
		return nil, err
	}
	return analyzer.CheckGrammar(text), nil
}

// Export writes the whole collection as an indented JSON array.
func (s *Service) Export(_ context.Context, w io.Writer) error {
	return persistence.Export(w, s.store.List())
}

// ExportFileName is the suggested name for an export made now.
func (s *Service) ExportFileName() string {
	return persistence.ExportFileName(s.now())
}

// ExportToFile writes an export into dir and returns its path.
func (s *Service) ExportToFile(_ context.Context, dir string) (string, error) {
	return persistence.ExportToFile(dir, s.store.List(), s.now())
}

// Import merges the notes read from r. Failures are reported in the result.
func (s *Service) Import(_ context.Context, r io.Reader) ImportResult {
	notes, err := persistence.Import(r)
	if err != nil {
		s.logger.Warn("noteservice: import rejected", slog.String("error", err.Error()))
		return ImportResult{Error: err.Error()}
	}
	n, err := s.store.Merge(notes)
	if err != nil && !errors.Is(err, apperr.ErrStorageUnavailable) {
		return ImportResult{Error: err.Error()}
	}
	res := ImportResult{Success: err == nil, Imported: n}
	if err != nil {
		res.Error = err.Error()
	}
	if n > 0 {
		s.emit(EventImported, "")
	}
	return res
}

// Reload replaces the collection with data read from the slot by another
// writer. Undecodable data leaves the collection unchanged.
func (s *Service) Reload(_ context.Context, data []byte) error {
	notes, err := persistence.Decode(data)
	if err != nil {
		s.logger.Warn("noteservice: reload skipped", slog.String("error", err.Error()))
		return fmt.Errorf("noteservice: reload: %w", err)
	}
	notes = persistence.KeepValid(notes, s.logger)
	s.store.Replace(notes)
	s.logger.Info("noteservice: reloaded", slog.Int("notes", len(notes)))
	s.emit(EventReloaded, "")
	return nil
}
