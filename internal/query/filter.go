package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Filter describes the optional listing constraints: free-text search,
// required tag overlap, and favorites-only. Zero values impose no
// constraint for that dimension.
type Filter struct {
	Text          string
	Tags          []string
	FavoritesOnly bool
}

// ParseFilter reads q, tags (comma-separated), and favorites from query
// parameters. Blank tag entries are dropped.
func ParseFilter(values url.Values) Filter {
	f := Filter{
		Text:          strings.TrimSpace(values.Get("q")),
		FavoritesOnly: values.Get("favorites") == "true",
	}
	for _, t := range strings.Split(values.Get("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.Tags = append(f.Tags, t)
		}
	}
	return f
}

// Compose builds the WHERE clause and arguments for a listing query.
// Ownership is always the first clause; the tag and favorites clauses are
// ANDed in only when present. The tag clause matches records whose tag set
// shares at least one element with f.Tags. The free-text constraint is not
// part of the SQL; callers apply MatchText to the scanned rows, because
// SQLite's lower() only folds ASCII.
func (f Filter) Compose(userID int64) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if len(f.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Tags)), ",")
		clauses = append(clauses,
			fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value IN (%s))", placeholders))
		for _, t := range f.Tags {
			args = append(args, t)
		}
	}

	if f.FavoritesOnly {
		clauses = append(clauses, "is_favorite = 1")
	}

	return strings.Join(clauses, " AND "), args
}

// MatchText reports whether any of the fields contains f.Text as a
// case-insensitive substring. An empty Text matches everything.
func (f Filter) MatchText(fields ...string) bool {
	if f.Text == "" {
		return true
	}
	needle := strings.ToLower(f.Text)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
