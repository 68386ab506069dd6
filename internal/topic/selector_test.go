package topic

import (
	"math"
	"testing"
	"time"
)

func testCatalog() *Catalog {
	return &Catalog{
		Subjects: []Subject{
			{Key: "physics", Name: "Физика", Aliases: []string{"физика"}, Topics: []string{"A", "B", "C", "D", "E"}},
			{Key: "single", Name: "Single", Topics: []string{"only"}},
		},
		Default: []Entry{
			{Subject: "Математика", Topic: "X"},
			{Subject: "Физика", Topic: "Y"},
			{Subject: "Химия", Topic: "Z"},
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateHash_KnownValues(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"a", 97},
		{"ab", 97*31 + 98},
	}
	for _, tt := range tests {
		if got := DateHash(tt.in); got != tt.want {
			t.Errorf("DateHash(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDateHash_NeverNegative(t *testing.T) {
	for d := day("2020-01-01"); d.Before(day("2031-01-01")); d = d.AddDate(0, 0, 17) {
		h := DateHash(d.Format(DateLayout))
		if h < 0 || h > math.MaxInt32+1 {
			t.Fatalf("DateHash(%s) = %d out of range", d.Format(DateLayout), h)
		}
	}
}

func TestIndex_Bounds(t *testing.T) {
	for _, size := range []int{1, 2, 7, 40} {
		for offset := 0; offset < 100; offset++ {
			i := Index(DateHash("2026-10-16"), offset, size)
			if i < 0 || i >= size {
				t.Fatalf("Index(size=%d, offset=%d) = %d out of range", size, offset, i)
			}
		}
	}
	if got := Index(5, 0, 0); got != 0 {
		t.Errorf("Index with empty catalog = %d, want 0", got)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	c := testCatalog()
	d := day("2026-10-16")

	first := Select(c, "physics", d, 2)
	for range 10 {
		if got := Select(c, "physics", d, 2); got != first {
			t.Fatalf("Select not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestSelect_OffsetRotates(t *testing.T) {
	c := testCatalog()
	d := day("2026-10-16")

	seen := make(map[string]bool)
	for offset := range 5 {
		tp := Select(c, "physics", d, offset)
		if seen[tp.Topic] {
			t.Fatalf("topic %q repeated before the offset wrapped", tp.Topic)
		}
		seen[tp.Topic] = true
	}

	// Wrapping past the catalog size returns to the first pick.
	if Select(c, "physics", d, 0) != Select(c, "physics", d, 5) {
		t.Error("expected offset to wrap at catalog size")
	}
}

func TestSelect_SubjectResolution(t *testing.T) {
	c := testCatalog()
	d := day("2026-10-16")

	tests := []struct {
		name      string
		key       string
		wantKey   string
		wantTotal int
	}{
		{"by key", "physics", "physics", 5},
		{"by alias any case", "  ФИЗИКА ", "physics", 5},
		{"by display name", "single", "single", 1},
		{"unknown falls back to default", "astronomy", "", 3},
		{"empty falls back to default", "", "", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := Select(c, tt.key, d, 0)
			if tp.SubjectKey != tt.wantKey {
				t.Errorf("SubjectKey = %q, want %q", tp.SubjectKey, tt.wantKey)
			}
			if tp.TotalInCatalog != tt.wantTotal {
				t.Errorf("TotalInCatalog = %d, want %d", tp.TotalInCatalog, tt.wantTotal)
			}
			if tp.Ordinal < 1 || tp.Ordinal > tp.TotalInCatalog {
				t.Errorf("Ordinal = %d out of [1, %d]", tp.Ordinal, tp.TotalInCatalog)
			}
		})
	}
}

func TestSelect_DefaultEntryCarriesSubject(t *testing.T) {
	c := testCatalog()
	d := day("2026-10-16")
	tp := Select(c, "", d, 0)
	e := c.Default[tp.Ordinal-1]
	if tp.Subject != e.Subject || tp.Topic != e.Topic {
		t.Errorf("got %+v, want entry %+v", tp, e)
	}
}

func TestDayKey(t *testing.T) {
	d := time.Date(2026, 10, 16, 23, 59, 0, 0, time.Local)
	if got := DayKey(d); got != "rotation:2026-10-16" {
		t.Errorf("DayKey = %q", got)
	}
}

func TestTopicKey(t *testing.T) {
	if got := (Topic{SubjectKey: "math", Topic: "Логарифмы"}).Key(); got != "math/Логарифмы" {
		t.Errorf("Key = %q", got)
	}
	if got := (Topic{Topic: "X"}).Key(); got != "default/X" {
		t.Errorf("Key = %q", got)
	}
}
