package notestore

import (
	"errors"
	"testing"

	"github.com/starford/quire/internal/apperr"
)

func TestLockUnlock(t *testing.T) {
	s, p := testStore(t)
	n, _ := s.Create()
	n.Content = "<p>secret</p>"
	n, _ = s.Update(n)

	locked, err := s.Lock(n.ID, "CIPHER")
	if err != nil {
		t.Fatal(err)
	}
	if !locked.IsEncrypted || locked.Content != "" || locked.EncryptedContent == nil || *locked.EncryptedContent != "CIPHER" {
		t.Fatalf("locked = %+v", locked)
	}
	if err := p.saved[0].Validate(); err != nil {
		t.Errorf("persisted locked note invalid: %v", err)
	}
	if _, err := s.Lock(n.ID, "again"); !errors.Is(err, apperr.ErrLocked) {
		t.Errorf("double lock err = %v", err)
	}

	open, err := s.Unlock(n.ID, "<p>secret</p>")
	if err != nil {
		t.Fatal(err)
	}
	if open.IsEncrypted || open.EncryptedContent != nil || open.Content != "<p>secret</p>" {
		t.Errorf("unlocked = %+v", open)
	}
	if _, err := s.Unlock(n.ID, "x"); !errors.Is(err, apperr.ErrNotLocked) {
		t.Errorf("unlock plaintext err = %v", err)
	}
}

func TestRemoveEncryption_NoPassphrase(t *testing.T) {
	s, _ := testStore(t)
	n, _ := s.Create()
	_, _ = s.Lock(n.ID, "CIPHER")

	got, err := s.RemoveEncryption(n.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.IsEncrypted || got.EncryptedContent != nil {
		t.Errorf("still locked: %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("invariant broken: %v", err)
	}
	if _, err := s.RemoveEncryption(n.ID, ""); !errors.Is(err, apperr.ErrNotLocked) {
		t.Errorf("err = %v", err)
	}
	if _, err := s.Lock("ghost", "c"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestSearch_LockedContentHidden(t *testing.T) {
	s, _ := testStore(t)
	n, _ := s.Create()
	n.Content = "needle"
	n, _ = s.Update(n)
	_, _ = s.Lock(n.ID, "CIPHER")
	if got := s.Search("needle"); len(got) != 0 {
		t.Errorf("locked content searchable: %v", ids(got))
	}
}
