package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/amishk599/stagescout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func sampleJob() model.Job {
	return model.Job{
		Source:      "greenhouse",
		SourceJobID: "4012345006",
		Title:       "Backend Intern",
		Company:     "Acme",
		Location:    "Paris",
		ApplyURL:    "https://boards.greenhouse.io/acme/jobs/4012345006",
		Description: "Python services",
		PostedAt:    "2026-02-13T10:00:00Z",
		Language:    "en",
		Tags:        []string{"python", "backend"},
	}
}

func TestUpsertSameIdentityKeepsOneRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Upsert(ctx, sampleJob())
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if !first.Inserted {
		t.Error("expected first upsert to insert")
	}
	before, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	later := sampleJob()
	later.Title = "Backend Intern (renamed)"
	later.Location = "Lyon"
	later.IsRemote = true
	later.CountryCode = "FR"
	second, err := s.Upsert(ctx, later)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if second.Inserted || second.ID != first.ID {
		t.Errorf("expected update of row %d, got %+v", first.ID, second)
	}

	rows, err := s.List(ctx, model.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.Location != "Lyon" || !got.IsRemote || got.CountryCode != "FR" {
		t.Errorf("expected later record to win, got %+v", got.Job)
	}
	if got.Title != "Backend Intern" {
		t.Errorf("title = %q, want the first stored title", got.Title)
	}
	if !got.ScrapedAt.Equal(before.ScrapedAt) || got.ID != before.ID {
		t.Errorf("expected id and scraped_at preserved: before %v/%d after %v/%d",
			before.ScrapedAt, before.ID, got.ScrapedAt, got.ID)
	}
}

func TestUpsertWithoutSourceID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	anchor := model.Job{Source: "teamtailor", Title: "Backend Intern", ApplyURL: "https://acme.teamtailor.com/jobs/1"}
	r1, err := s.Upsert(ctx, anchor)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	anchor.Description = "refreshed"
	r2, err := s.Upsert(ctx, anchor)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if r2.Inserted || r2.ID != r1.ID {
		t.Errorf("expected url+title identity to match, got %+v then %+v", r1, r2)
	}

	other := anchor
	other.ApplyURL = "https://acme.teamtailor.com/jobs/2"
	r3, err := s.Upsert(ctx, other)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !r3.Inserted {
		t.Error("expected a different url to insert a new row")
	}

	got, err := s.Get(ctx, r1.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SourceJobID != "" || got.Description != "refreshed" {
		t.Errorf("unexpected row %+v", got.Job)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.Upsert(ctx, sampleJob())
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if want := []string{"backend", "python"}; !reflect.DeepEqual(got.Tags, want) {
		t.Errorf("expected tags %v, got %v", want, got.Tags)
	}
}

func TestListOrderFilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, src := range []string{"lever", "greenhouse", "lever"} {
		j := sampleJob()
		j.Source = src
		j.SourceJobID = string(rune('a' + i))
		if _, err := s.Upsert(ctx, j); err != nil {
			t.Fatalf("Upsert %d: %v", i, err)
		}
	}

	all, err := s.List(ctx, model.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].SourceJobID != "c" || all[2].SourceJobID != "a" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	lever, err := s.List(ctx, model.ListOptions{Source: "lever", Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lever) != 1 || lever[0].SourceJobID != "c" {
		t.Errorf("expected newest lever row, got %+v", lever)
	}
	for _, r := range all {
		if r.Source == "" || r.Title == "" || r.ApplyURL == "" {
			t.Errorf("row %d has empty required column", r.ID)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertRejectsIncompleteJob(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Upsert(context.Background(), model.Job{Title: "No source", ApplyURL: "https://x"}); err == nil {
		t.Error("expected error for job without source")
	}
	if _, err := s.Upsert(context.Background(), model.Job{Source: "lever", Title: "No url"}); err == nil {
		t.Error("expected error for job without apply url")
	}
	rows, _ := s.List(context.Background(), model.ListOptions{})
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}

func TestOpenDispatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, u := range []string{"sqlite://" + filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")} {
		st, err := Open(ctx, u)
		if err != nil {
			t.Fatalf("Open(%q): %v", u, err)
		}
		if _, ok := st.(*SQLiteStore); !ok {
			t.Errorf("Open(%q) = %T, want *SQLiteStore", u, st)
		}
		st.Close()
	}
	if _, err := Open(ctx, "  "); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := SplitTags("python,backend,python"); !reflect.DeepEqual(got, []string{"backend", "python"}) {
		t.Errorf("unexpected tags %v", got)
	}
	if got := JoinTags([]string{"python", "backend"}); got != "backend,python" {
		t.Errorf("unexpected joined tags %q", got)
	}
}

func TestNopStore(t *testing.T) {
	s := NewNopStore()
	ctx := context.Background()
	r1, err := s.Upsert(ctx, sampleJob())
	if err != nil || !r1.Inserted {
		t.Fatalf("expected insert, got %+v, %v", r1, err)
	}
	r2, _ := s.Upsert(ctx, sampleJob())
	if !r2.Inserted || r2.ID == r1.ID {
		t.Errorf("expected a fresh insert every time, got %+v", r2)
	}
	if _, err := s.Get(ctx, r1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@h/db":   "pgx5://u:p@h/db",
		"postgresql://u:p@h/db": "pgx5://u:p@h/db",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Errorf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}
