// Package models defines the domain types for Quire.
package models

import (
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults applied to new and imported notes.
const (
	DefaultTitle    = "Untitled Note"
	DefaultCategory = "general"
)

// Note is the single persisted entity. The JSON shape matches the records
// written by the browser edition so exported files stay interchangeable.
type Note struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	IsPinned         bool      `json:"isPinned"`
	IsEncrypted      bool      `json:"isEncrypted"`
	EncryptedContent *string   `json:"encryptedContent"`
	Tags             []string  `json:"tags"`
	Category         string    `json:"category"`
}

// Validate checks the identity and encryption invariants: a locked note has
// ciphertext and no content, a plaintext note has no ciphertext.
func (n *Note) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Content, validation.When(n.IsEncrypted, validation.Empty)),
		validation.Field(&n.EncryptedContent,
			validation.When(n.IsEncrypted, validation.NotNil),
			validation.When(!n.IsEncrypted, validation.Nil),
		),
	)
}

// Normalize fills defaulted fields in place.
func (n *Note) Normalize() {
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Category == "" {
		n.Category = DefaultCategory
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
}

// Clone returns a deep copy of n.
func (n Note) Clone() Note {
	c := n
	c.Tags = slices.Clone(n.Tags)
	if n.EncryptedContent != nil {
		s := *n.EncryptedContent
		c.EncryptedContent = &s
	}
	return c
}

// Stats summarises a note collection.
type Stats struct {
	Total      int `json:"total"`
	Encrypted  int `json:"encrypted"`
	Pinned     int `json:"pinned"`
	Recent     int `json:"recent"`
	TotalWords int `json:"totalWords"`
}
