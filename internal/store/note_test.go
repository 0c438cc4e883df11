package store

import (
	"testing"

	"github.com/calebnorth/stash/internal/database"
	"github.com/calebnorth/stash/internal/query"
)

func setupNoteTestDB(t *testing.T) (*NoteStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewNoteStore(db), NewUserStore(db)
}

func TestNoteCRUD(t *testing.T) {
	ns, us := setupNoteTestDB(t)

	u, err := us.Create("alice@example.com", "Alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	note, err := ns.Create(u.ID, "Groceries", "- milk\n- eggs", []string{"home"}, false)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.ID == "" {
		t.Error("expected non-empty id")
	}
	if note.Title != "Groceries" {
		t.Errorf("title = %q, want %q", note.Title, "Groceries")
	}
	if len(note.Tags) != 1 || note.Tags[0] != "home" {
		t.Errorf("tags = %v, want [home]", note.Tags)
	}
	if note.IsFavorite {
		t.Error("expected not favorite")
	}
	if note.UpdatedAt.Before(note.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", note.UpdatedAt, note.CreatedAt)
	}

	got, err := ns.GetByID(u.ID, note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got == nil {
		t.Fatal("expected note, got nil")
	}
	if got.Content != "- milk\n- eggs" {
		t.Errorf("content = %q", got.Content)
	}

	updated, err := ns.Update(u.ID, note.ID, "Groceries v2", "- milk", []string{"home", "urgent"}, true)
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated note, got nil")
	}
	if updated.Title != "Groceries v2" {
		t.Errorf("title = %q, want %q", updated.Title, "Groceries v2")
	}
	if !updated.IsFavorite {
		t.Error("expected favorite")
	}
	if !updated.UpdatedAt.After(note.UpdatedAt) {
		t.Errorf("updated_at %v not after %v", updated.UpdatedAt, note.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(note.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", note.CreatedAt, updated.CreatedAt)
	}

	deleted, err := ns.Delete(u.ID, note.ID)
	if err != nil {
		t.Fatalf("delete note: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report a removed row")
	}
	got, err = ns.GetByID(u.ID, note.ID)
	if err != nil {
		t.Fatalf("get deleted note: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestNoteUpdatedAtMonotonic(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	note, err := ns.Create(u.ID, "a", "b", nil, false)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	prev := note.UpdatedAt
	for i := 0; i < 3; i++ {
		updated, err := ns.Update(u.ID, note.ID, "a", "b", nil, false)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if !updated.UpdatedAt.After(prev) {
			t.Errorf("update %d: updated_at %v not after %v", i, updated.UpdatedAt, prev)
		}
		prev = updated.UpdatedAt
	}
}

func TestNoteOwnershipIsolation(t *testing.T) {
	ns, us := setupNoteTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash")
	bob, _ := us.Create("bob@example.com", "Bob", "hash")

	note, err := ns.Create(alice.ID, "Secret", "alice only", nil, false)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	// Bob cannot see it
	got, err := ns.GetByID(bob.ID, note.ID)
	if err != nil {
		t.Fatalf("get as bob: %v", err)
	}
	if got != nil {
		t.Error("expected nil for other owner's note")
	}

	notes, err := ns.List(bob.ID, query.Filter{})
	if err != nil {
		t.Fatalf("list as bob: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("bob sees %d notes, want 0", len(notes))
	}

	// Bob cannot update or delete it
	if updated, _ := ns.Update(bob.ID, note.ID, "x", "y", nil, false); updated != nil {
		t.Error("expected nil update for other owner's note")
	}
	deleted, err := ns.Delete(bob.ID, note.ID)
	if err != nil {
		t.Fatalf("delete as bob: %v", err)
	}
	if deleted {
		t.Error("expected cross-owner delete to match no rows")
	}

	// Alice's note is intact
	got, _ = ns.GetByID(alice.ID, note.ID)
	if got == nil || got.Title != "Secret" {
		t.Errorf("alice's note damaged: %+v", got)
	}
}

func TestNoteListFilters(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	ns.Create(u.ID, "Foo Bar", "nothing here", []string{"y", "z"}, false)
	ns.Create(u.ID, "plain", "contains foo inside", []string{"z"}, true)
	ns.Create(u.ID, "other", "unrelated", nil, false)

	// Case-insensitive substring, OR across title and content
	notes, err := ns.List(u.ID, query.Filter{Text: "foo"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("text filter matched %d notes, want 2", len(notes))
	}

	// Tag overlap: {x,y} vs {y,z} matches, {x,y} vs {z} does not
	notes, err = ns.List(u.ID, query.Filter{Tags: []string{"x", "y"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "Foo Bar" {
		t.Errorf("tag filter = %v, want only Foo Bar", notes)
	}

	// Favorites only
	notes, err = ns.List(u.ID, query.Filter{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "plain" {
		t.Errorf("favorites filter = %v, want only plain", notes)
	}

	// Combined clauses AND together
	notes, err = ns.List(u.ID, query.Filter{Text: "foo", FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "plain" {
		t.Errorf("combined filter = %v, want only plain", notes)
	}
}

func TestNoteListTextSearchUnicode(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	ns.Create(u.ID, "ÜBER wichtig", "x", nil, false)
	ns.Create(u.ID, "crème brûlée recipe", "x", nil, false)

	// Case folding beyond ASCII, both directions
	for _, q := range []string{"ÜBER", "über", "Wichtig"} {
		notes, err := ns.List(u.ID, query.Filter{Text: q})
		if err != nil {
			t.Fatalf("list %q: %v", q, err)
		}
		if len(notes) != 1 || notes[0].Title != "ÜBER wichtig" {
			t.Errorf("q=%q matched %d notes, want ÜBER wichtig", q, len(notes))
		}
	}

	notes, err := ns.List(u.ID, query.Filter{Text: "BRÛLÉE"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "crème brûlée recipe" {
		t.Errorf("accented query matched %d notes, want 1", len(notes))
	}
}

func TestNoteListOrder(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	first, _ := ns.Create(u.ID, "first", "x", nil, false)
	second, _ := ns.Create(u.ID, "second", "x", nil, false)

	// Touch the older note so it becomes the most recently updated
	if _, err := ns.Update(u.ID, first.ID, "first", "x2", nil, false); err != nil {
		t.Fatalf("update: %v", err)
	}

	notes, err := ns.List(u.ID, query.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].ID != first.ID || notes[1].ID != second.ID {
		t.Errorf("order = [%s %s], want updated-first", notes[0].Title, notes[1].Title)
	}
}

func TestNoteToggleFavorite(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	note, _ := ns.Create(u.ID, "n", "c", nil, false)

	toggled, err := ns.ToggleFavorite(u.ID, note.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsFavorite {
		t.Error("expected favorite after toggle")
	}

	toggled, err = ns.ToggleFavorite(u.ID, note.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if toggled.IsFavorite {
		t.Error("expected not favorite after second toggle")
	}

	if got, _ := ns.ToggleFavorite(u.ID, "missing"); got != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestNoteTags(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")
	other, _ := us.Create("bob@example.com", "Bob", "hash")

	ns.Create(u.ID, "a", "x", []string{"go", "dev"}, false)
	ns.Create(u.ID, "b", "x", []string{"dev", "reading"}, false)
	ns.Create(other.ID, "c", "x", []string{"private"}, false)

	tags, err := ns.Tags(u.ID)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	want := []string{"dev", "go", "reading"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}
