package store

import (
	"testing"

	"github.com/calebnorth/stash/internal/database"
	"github.com/calebnorth/stash/internal/query"
)

func setupBookmarkTestDB(t *testing.T) (*BookmarkStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBookmarkStore(db), NewUserStore(db)
}

func TestBookmarkCRUD(t *testing.T) {
	bs, us := setupBookmarkTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	b, err := bs.Create(u.ID, "https://example.com", "Example", "a site", []string{"web"}, false, "https://example.com/favicon.ico")
	if err != nil {
		t.Fatalf("create bookmark: %v", err)
	}
	if b.URL != "https://example.com" {
		t.Errorf("url = %q", b.URL)
	}
	if b.FaviconURL != "https://example.com/favicon.ico" {
		t.Errorf("favicon = %q", b.FaviconURL)
	}

	got, err := bs.GetByID(u.ID, b.ID)
	if err != nil {
		t.Fatalf("get bookmark: %v", err)
	}
	if got == nil || got.Title != "Example" {
		t.Fatalf("got = %+v", got)
	}

	updated, err := bs.Update(u.ID, b.ID, "https://example.org", "Example Org", "", nil, true, "")
	if err != nil {
		t.Fatalf("update bookmark: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated bookmark")
	}
	if updated.URL != "https://example.org" || !updated.IsFavorite {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.UpdatedAt.After(b.UpdatedAt) {
		t.Errorf("updated_at %v not after %v", updated.UpdatedAt, b.UpdatedAt)
	}

	deleted, err := bs.Delete(u.ID, b.ID)
	if err != nil {
		t.Fatalf("delete bookmark: %v", err)
	}
	if !deleted {
		t.Error("expected delete to remove a row")
	}
	if got, _ := bs.GetByID(u.ID, b.ID); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestBookmarkTextSearchAcrossFields(t *testing.T) {
	bs, us := setupBookmarkTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	bs.Create(u.ID, "https://example.com", "Foo Bar", "", nil, false, "")
	bs.Create(u.ID, "https://example.com/2", "plain", "mentions foo here", nil, false, "")
	bs.Create(u.ID, "https://foo.dev", "dev site", "", nil, false, "")
	bs.Create(u.ID, "https://other.io", "other", "", nil, false, "")

	got, err := bs.List(u.ID, query.Filter{Text: "foo"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Matches in title, description, and url respectively
	if len(got) != 3 {
		t.Errorf("matched %d bookmarks, want 3", len(got))
	}
}

func TestBookmarkOwnershipIsolation(t *testing.T) {
	bs, us := setupBookmarkTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash")
	bob, _ := us.Create("bob@example.com", "Bob", "hash")

	b, _ := bs.Create(alice.ID, "https://example.com", "t", "", nil, false, "")

	if got, _ := bs.GetByID(bob.ID, b.ID); got != nil {
		t.Error("expected nil for other owner's bookmark")
	}
	deleted, err := bs.Delete(bob.ID, b.ID)
	if err != nil {
		t.Fatalf("delete as bob: %v", err)
	}
	if deleted {
		t.Error("cross-owner delete should match no rows")
	}
	if got, _ := bs.GetByID(alice.ID, b.ID); got == nil {
		t.Error("alice's bookmark should survive")
	}
}

func TestBookmarkTags(t *testing.T) {
	bs, us := setupBookmarkTestDB(t)
	u, _ := us.Create("alice@example.com", "Alice", "hash")

	bs.Create(u.ID, "https://a.com", "a", "", []string{"news", "tech"}, false, "")
	bs.Create(u.ID, "https://b.com", "b", "", []string{"tech"}, false, "")

	tags, err := bs.Tags(u.ID)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "news" || tags[1] != "tech" {
		t.Errorf("tags = %v, want [news tech]", tags)
	}
}
