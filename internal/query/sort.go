package query

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort selects the secondary ordering applied over an already-filtered
// result set. Exactly one mode is active at a time.
type Sort int

const (
	// SortUpdated orders by updated_at descending, matching the base
	// order the store returns.
	SortUpdated Sort = iota
	// SortTitle orders by title ascending using a locale-aware compare.
	SortTitle
	// SortFavorites puts favorites before non-favorites, preserving the
	// incoming relative order within each partition.
	SortFavorites
)

// ParseSort maps the sort query parameter to a mode. Unknown values fall
// back to SortUpdated.
func ParseSort(s string) Sort {
	switch s {
	case "title":
		return SortTitle
	case "favorites":
		return SortFavorites
	default:
		return SortUpdated
	}
}

// Sortable is implemented by listable record types.
type Sortable interface {
	SortTitle() string
	Favorite() bool
	Updated() time.Time
}

// Order sorts items in place according to mode. The sort is stable, so
// records that compare equal keep their input order.
func Order[R Sortable](items []R, mode Sort) {
	switch mode {
	case SortTitle:
		c := collate.New(language.English)
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].SortTitle(), items[j].SortTitle()) < 0
		})
	case SortFavorites:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Favorite() && !items[j].Favorite()
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Updated().After(items[j].Updated())
		})
	}
}
