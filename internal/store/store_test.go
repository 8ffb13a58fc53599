package store

import (
	"context"
	"errors"
	"testing"
)

func openTestSQLite(t *testing.T) Store {
	t.Helper()
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run must be a no-op
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}
	return NewSQLiteStore(db)
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": openTestSQLite(t),
	}
}

func TestSaveRecentTop(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		scores := []int{30, 10, 50, 30}
		var ids []int64
		for i, s := range scores {
			user := ""
			if i%2 == 0 {
				user = "7"
			}
			id, err := st.SaveResult(ctx, Result{Score: s, Rounds: s/10 + 1, Folder: 1, UserID: user})
			if err != nil {
				t.Fatalf("%s: save: %v", name, err)
			}
			ids = append(ids, id)
		}

		recent, err := st.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("%s: recent: %v", name, err)
		}
		if len(recent) != 2 || recent[0].ID != ids[3] || recent[1].ID != ids[2] {
			t.Fatalf("%s: recent order wrong: %+v", name, recent)
		}

		top, err := st.Top(ctx, 3)
		if err != nil {
			t.Fatalf("%s: top: %v", name, err)
		}
		if len(top) != 3 || top[0].Score != 50 || top[1].ID != ids[0] || top[2].ID != ids[3] {
			t.Fatalf("%s: top order wrong: %+v", name, top)
		}
		if top[1].UserID != "7" {
			t.Fatalf("%s: user id not kept: %+v", name, top[1])
		}
	}
}

func TestMarkUploaded(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		id, err := st.SaveResult(ctx, Result{Score: 10, Rounds: 2, Folder: 3, UserID: "42"})
		if err != nil {
			t.Fatal(err)
		}
		if err := st.MarkUploaded(ctx, id); err != nil {
			t.Fatalf("%s: mark: %v", name, err)
		}
		r, _ := st.Recent(ctx, 1)
		if len(r) != 1 || !r[0].Uploaded {
			t.Fatalf("%s: expected uploaded flag, got %+v", name, r)
		}
		if err := st.MarkUploaded(ctx, id+100); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}
