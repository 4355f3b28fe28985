package noteservice

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

//go:embed demo.json
var demoJSON []byte

// demoNote is a bundled sample. Ages are relative to the seeding time and
// a note with a secret is stored locked under its passphrase.
type demoNote struct {
	models.Note
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
	CreatedAgo string `json:"createdAgo"`
	UpdatedAgo string `json:"updatedAgo"`
}

func (d demoNote) build(s *Service, now time.Time) (models.Note, error) {
	n := d.Note.Clone()
	for _, f := range []struct {
		ago string
		dst *time.Time
	}{{d.CreatedAgo, &n.CreatedAt}, {d.UpdatedAgo, &n.UpdatedAt}} {
		age, err := time.ParseDuration(f.ago)
		if err != nil {
			return n, fmt.Errorf("noteservice: demo %s: %w", d.ID, err)
		}
		*f.dst = now.Add(-age).UTC()
	}
	if d.Secret != "" {
		ct, err := s.crypto.Encrypt(d.Secret, d.Passphrase)
		if err != nil {
			return n, fmt.Errorf("noteservice: demo %s: %w", d.ID, err)
		}
		n.Content = ""
		n.IsEncrypted = true
		n.EncryptedContent = &ct
	}
	n.Normalize()
	return n, n.Validate()
}

// Seed loads the bundled demo notes into an empty collection and returns how
// many were added. A collection that already holds notes is left alone.
func (s *Service) Seed(_ context.Context) (int, error) {
	if s.store.Len() > 0 {
		return 0, fmt.Errorf("noteservice: seed: collection not empty: %w", apperr.ErrNothingToImport)
	}
	var demos []demoNote
	if err := json.Unmarshal(demoJSON, &demos); err != nil {
		return 0, fmt.Errorf("noteservice: seed: %w", err)
	}
	now := s.now()
	notes := make([]models.Note, 0, len(demos))
	for _, d := range demos {
		n, err := d.build(s, now)
		if err != nil {
			return 0, err
		}
		notes = append(notes, n)
	}
	added, err := s.store.Merge(notes)
	if err != nil {
		return added, err
	}
	// Reorder pinned-first like a fresh load.
	s.store.Replace(s.store.List())
	s.logger.Info("noteservice: seeded demo notes", slog.Int("notes", added))
	s.emit(EventImported, "")
	return added, nil
}
