package api

import (
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note. All fields are
// optional.
type CreateNoteRequest struct {
	Title    string   `json:"title" example:"Groceries"`
	Content  string   `json:"content" example:"<p>milk</p>"`
	Tags     []string `json:"tags" example:"home,errands"`
	Category string   `json:"category" example:"personal"`
}

// UpdateNoteRequest changes the given fields; omitted fields are kept.
type UpdateNoteRequest struct {
	noteservice.Patch
	Glossary bool `json:"glossary"`
}

// EncryptRequest is the body of POST /notes/{id}/encrypt.
type EncryptRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
	Confirm    string `json:"confirm" validate:"required"`
}

// PassphraseRequest carries the passphrase of a locked note.
type PassphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

// RemoveEncryptionRequest is the optional body of DELETE /notes/{id}/encryption.
type RemoveEncryptionRequest struct {
	Content string `json:"content"`
}

// RevealResponse holds recovered plaintext.
type RevealResponse struct {
	Content string `json:"content" validate:"required"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// CategoriesResponse lists the categories in use.
type CategoriesResponse struct {
	Categories []string `json:"categories" validate:"required"`
}
