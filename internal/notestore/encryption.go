package notestore

import (
	"fmt"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// Lock moves a plaintext note to the locked state: its content is replaced
// by ciphertext produced by the caller.
func (s *Store) Lock(id, ciphertext string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notestore: lock %s: %w", id, apperr.ErrNotFound)
	}
	if s.notes[i].IsEncrypted {
		return models.Note{}, fmt.Errorf("notestore: lock %s: %w", id, apperr.ErrLocked)
	}
	s.notes[i].Content = ""
	s.notes[i].IsEncrypted = true
	s.notes[i].EncryptedContent = &ciphertext
	s.notes[i].UpdatedAt = s.timestamp()
	return s.notes[i].Clone(), s.save()
}

// Unlock moves a locked note back to plaintext with the recovered content.
func (s *Store) Unlock(id, plaintext string) (models.Note, error) {
	return s.unlock("unlock", id, plaintext)
}

// RemoveEncryption drops the ciphertext of a locked note without checking
// any passphrase. content becomes the note body; presentation layers pass the
// text they revealed earlier, or "" to discard it.
func (s *Store) RemoveEncryption(id, content string) (models.Note, error) {
	return s.unlock("remove encryption", id, content)
}

func (s *Store) unlock(op, id, content string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("notestore: %s %s: %w", op, id, apperr.ErrNotFound)
	}
	if !s.notes[i].IsEncrypted {
		return models.Note{}, fmt.Errorf("notestore: %s %s: %w", op, id, apperr.ErrNotLocked)
	}
	s.notes[i].Content = content
	s.notes[i].IsEncrypted = false
	s.notes[i].EncryptedContent = nil
	s.notes[i].UpdatedAt = s.timestamp()
	return s.notes[i].Clone(), s.save()
}
