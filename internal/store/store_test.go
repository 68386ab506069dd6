package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestCounterRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.CounterRepo()
	ctx := context.Background()

	v, err := repo.Get(ctx, "rotation:2025-03-14")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if v != 0 {
		t.Fatalf("missing counter = %d, want 0", v)
	}

	for i := 0; i < 3; i++ {
		if err := repo.Increment(ctx, "rotation:2025-03-14"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	v, err = repo.Get(ctx, "rotation:2025-03-14")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != 3 {
		t.Errorf("counter = %d, want 3", v)
	}

	got, err := repo.Add(ctx, "rotation:2025-03-14", 5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got != 8 {
		t.Errorf("Add returned %d, want 8", got)
	}

	// Keys are independent.
	other, _ := repo.Get(ctx, "rotation:2025-03-15")
	if other != 0 {
		t.Errorf("other day counter = %d, want 0", other)
	}
}

func TestProfileRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	p, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if p.ExamSubject != "" || !p.ExamDate.IsZero() {
		t.Fatalf("expected empty profile, got %+v", p)
	}

	exam := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	if err := repo.Save(ctx, Profile{ExamSubject: "physics", ExamDate: exam}); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.ExamSubject != "physics" {
		t.Errorf("subject = %q, want physics", p.ExamSubject)
	}
	if !p.ExamDate.Equal(exam) {
		t.Errorf("exam date = %v, want %v", p.ExamDate, exam)
	}

	// Clearing the date removes it; the subject is overwritten.
	if err := repo.Save(ctx, Profile{ExamSubject: "math"}); err != nil {
		t.Fatalf("save again: %v", err)
	}
	p, _ = repo.Get(ctx)
	if p.ExamSubject != "math" || !p.ExamDate.IsZero() {
		t.Errorf("after overwrite got %+v", p)
	}
}

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []RequestEventData{
		{Source: SourceAPI, Purpose: "step", Attempt: 1, Status: 504, ErrorMessage: "gateway timeout"},
		{Source: SourceAPI, Purpose: "step", Attempt: 1, Status: 200, Success: true, LatencyMs: 120},
		{Source: SourceLLM, Purpose: "verify", Model: "mock", Success: true, InputTokens: 10, OutputTokens: 4},
	}
	for _, e := range events {
		if err := repo.AppendRequestEvent(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryRequestEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Purpose != "verify" || all[0].Sequence <= all[1].Sequence {
		t.Errorf("expected newest first, got %+v", all[0])
	}
	if all[0].InputTokens != 10 || !all[0].Success {
		t.Errorf("round trip lost fields: %+v", all[0])
	}

	steps, err := repo.QueryRequestEvents(ctx, QueryOpts{Purpose: "step", Limit: 1})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(steps) != 1 || steps[0].Status != 200 {
		t.Errorf("purpose filter with limit got %+v", steps)
	}

	llm, _ := repo.QueryRequestEvents(ctx, QueryOpts{Source: SourceLLM})
	if len(llm) != 1 {
		t.Errorf("source filter got %d events, want 1", len(llm))
	}

	after, _ := repo.QueryRequestEvents(ctx, QueryOpts{After: all[1].Sequence})
	if len(after) != 1 {
		t.Errorf("after filter got %d events, want 1", len(after))
	}
}

func TestSessionRepo_Streak(t *testing.T) {
	now := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	tests := []struct {
		name string
		days []int
		want int
	}{
		{"none", nil, 0},
		{"today only", []int{0}, 1},
		{"yesterday only", []int{-1}, 1},
		{"two days ago breaks", []int{-2}, 0},
		{"three in a row", []int{0, -1, -2}, 3},
		{"gap stops count", []int{0, -1, -3, -4}, 2},
		{"multiple per day", []int{0, 0, -1}, 2},
		{"future ignored", []int{1, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			repo := s.SessionRepo()
			ctx := context.Background()

			for i, off := range tt.days {
				rec := SessionRecord{
					ID:         tt.name + string(rune('a'+i)),
					TopicKey:   "physics/kinematics",
					Subject:    "Физика",
					StartedAt:  day(off).Add(-5 * time.Minute),
					FinishedAt: day(off),
				}
				if err := repo.RecordSession(ctx, rec); err != nil {
					t.Fatalf("record: %v", err)
				}
			}

			got, err := repo.Streak(ctx, now)
			if err != nil {
				t.Fatalf("streak: %v", err)
			}
			if got != tt.want {
				t.Errorf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionRepo_Recent(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.RecordSession(ctx, SessionRecord{
			ID:               string(rune('a' + i)),
			TopicKey:         "math/derivatives",
			Subject:          "Математика",
			StartedAt:        base.Add(time.Duration(i) * time.Hour),
			FinishedAt:       base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			Retries:          i,
			Correct:          i%2 == 0,
			SolutionRevealed: i == 1,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recs, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].ID != "c" || recs[1].ID != "b" {
		t.Errorf("order = %s,%s, want c,b", recs[0].ID, recs[1].ID)
	}
	if !recs[1].SolutionRevealed || recs[1].Correct || recs[1].Retries != 1 {
		t.Errorf("round trip lost fields: %+v", recs[1])
	}

	if err := repo.RecordSession(ctx, SessionRecord{}); err == nil {
		t.Error("expected error for empty id")
	}
}
