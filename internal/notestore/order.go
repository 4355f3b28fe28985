package notestore

import (
	"slices"

	"github.com/starford/quire/internal/models"
)

// order puts pinned notes first, keeping their relative order, followed by
// unpinned notes newest-updated first. The sort is stable so equal keys keep
// their position across repeated calls.
func order(notes []models.Note) {
	slices.SortStableFunc(notes, func(a, b models.Note) int {
		switch {
		case a.IsPinned && !b.IsPinned:
			return -1
		case !a.IsPinned && b.IsPinned:
			return 1
		case a.IsPinned:
			return 0
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}
