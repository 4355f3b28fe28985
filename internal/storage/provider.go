// Package storage defines the durable slot that holds the serialized note
// collection, with file, SQLite and in-memory backends.
package storage

// Slot is one named location holding a single serialized value.
// Writes replace the previous value entirely.
type Slot interface {
	// Name returns the slot key.
	Name() string
	// Read returns the stored bytes, or an error wrapping apperr.ErrSlotEmpty
	// when nothing has been written yet.
	Read() ([]byte, error)
	// Write atomically replaces the stored value.
	Write(data []byte) error
	// Clear removes the stored value. Clearing an empty slot is not an error.
	Clear() error
}
