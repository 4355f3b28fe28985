// Package apperr holds the sentinel errors shared across Quire packages.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrFormat             = errors.New("invalid notes format")
	ErrWrongPassphrase    = errors.New("invalid passphrase")
	ErrEncryption         = errors.New("encryption failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSlotEmpty          = errors.New("slot is empty")
	ErrLocked             = errors.New("note is encrypted")
	ErrNotLocked          = errors.New("note is not encrypted")
	ErrPassphraseMismatch = errors.New("passphrases do not match")
	ErrWeakPassphrase     = errors.New("passphrase too weak")
	ErrNothingToImport    = errors.New("no new notes to import")
)
