package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := repo.Create(&Session{ID: "s1", StartedAt: started}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	open, err := repo.Get("s1")
	if err != nil {
		t.Fatal(err)
	}
	if open.EndedAt != nil {
		t.Error("new session should have no end time")
	}
	if !open.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", open.StartedAt, started)
	}

	ended := started.Add(time.Minute)
	if err := repo.Finish("s1", ended, "HELO", "Hello there."); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	done, err := repo.Get("s1")
	if err != nil {
		t.Fatal(err)
	}
	if done.EndedAt == nil || !done.EndedAt.Equal(ended) {
		t.Errorf("EndedAt = %v, want %v", done.EndedAt, ended)
	}
	if done.Sentence != "HELO" || done.Narration != "Hello there." {
		t.Errorf("got %+v", done)
	}
}

func TestSessionRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if err := repo.Finish("missing", time.Now(), "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := repo.Create(&Session{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "third" || all[2].ID != "first" {
		t.Errorf("List(0) order wrong: %v, %v, %v", all[0].ID, all[1].ID, all[2].ID)
	}

	recent, err := repo.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "third" {
		t.Errorf("List(2) = %d sessions", len(recent))
	}
}
