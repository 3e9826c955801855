package store

import (
	"errors"
	"testing"
	"time"
)

var storeNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func testStore() (*Store, *MemoryMedium) {
	medium := &MemoryMedium{}
	s := New(medium)
	s.now = func() time.Time { return storeNow }
	s.Load()
	return s, medium
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestRoundTrip(t *testing.T) {
	s, medium := testStore()
	s.Create(Fields{Opponent: strp("Tigers"), Goals: intp(2)})
	s.Create(Fields{Opponent: strp("Rovers"), Category: catp(Cup)})
	want := s.List()

	reloaded := New(medium)
	reloaded.Load()
	got := reloaded.List()

	if len(got) != len(want) {
		t.Fatalf("reloaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadCorruptStartsEmpty(t *testing.T) {
	s := New(&MemoryMedium{Data: []byte(`{"not": "an array"`)})
	s.Load()
	if len(s.List()) != 0 {
		t.Error("corrupt data did not reset to empty")
	}
}

func TestLoadUnreadableStartsEmpty(t *testing.T) {
	s := New(&MemoryMedium{Err: errors.New("permission denied")})
	s.Load()
	if len(s.List()) != 0 {
		t.Error("unreadable medium did not reset to empty")
	}
}

func TestCreateDefaults(t *testing.T) {
	s, _ := testStore()

	r := s.Create(Fields{})

	if r.Date != "2026-03-14" || r.Time != "18:30" {
		t.Errorf("date/time = %s %s, want current", r.Date, r.Time)
	}
	if r.Category != League || r.Rating != 5 || r.MinutesPlayed != 90 {
		t.Errorf("enum/number defaults wrong: %+v", r)
	}
	if r.FinalScore != "0 - 0" {
		t.Errorf("finalScore = %q, want \"0 - 0\"", r.FinalScore)
	}
	if r.Goals != 0 || r.Assists != 0 {
		t.Errorf("counts = %d/%d, want 0/0", r.Goals, r.Assists)
	}
	if r.Opponent != "" || r.Venue != "" || r.Notes != "" {
		t.Errorf("text fields not empty: %+v", r)
	}
	if r.ID == "" || r.CreatedAt == 0 {
		t.Error("missing identity")
	}
}

func TestCreateKeepsProvidedFields(t *testing.T) {
	s, _ := testStore()

	r := s.Create(Fields{Opponent: strp("Tigers")})

	if r.Opponent != "Tigers" {
		t.Errorf("opponent = %q", r.Opponent)
	}
	if r.FinalScore != "0 - 0" || r.Category != League {
		t.Errorf("unprovided fields not defaulted: %+v", r)
	}
}

func TestOrderingMostRecentFirst(t *testing.T) {
	s, _ := testStore()
	first := s.Create(Fields{Opponent: strp("Tigers")})
	second := s.Create(Fields{Opponent: strp("Rovers")})

	list := s.List()
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = %s, %s; want newest first", list[0].Opponent, list[1].Opponent)
	}
}

func TestUpdatePartialMerge(t *testing.T) {
	s, _ := testStore()
	r := s.Create(Fields{Opponent: strp("Tigers"), Rating: intp(8)})

	if !s.Update(r.ID, Fields{Goals: intp(3)}) {
		t.Fatal("Update reported not found")
	}

	got, _ := s.Get(r.ID)
	if got.Goals != 3 {
		t.Errorf("goals = %d, want 3", got.Goals)
	}
	if got.Opponent != "Tigers" || got.Rating != 8 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateMissingID(t *testing.T) {
	s, _ := testStore()
	s.Create(Fields{})

	if s.Update("missing", Fields{Goals: intp(1)}) {
		t.Error("Update reported found for missing id")
	}
	if got := s.List()[0]; got.Goals != 0 {
		t.Error("Update of missing id mutated another record")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s, _ := testStore()
	r := s.Create(Fields{})

	s.Delete(r.ID)
	s.Delete(r.ID)
	s.Delete("never existed")

	if len(s.List()) != 0 {
		t.Error("record survived Delete")
	}
}

func TestIDsUniqueWithinSameMillisecond(t *testing.T) {
	s, _ := testStore()

	a := s.Create(Fields{})
	b := s.Create(Fields{})
	c := s.Create(Fields{})

	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Errorf("colliding ids: %s %s %s", a.ID, b.ID, c.ID)
	}
}

func TestIDMonotonicAfterReload(t *testing.T) {
	s, medium := testStore()
	old := s.Create(Fields{})

	reloaded := New(medium)
	reloaded.now = func() time.Time { return storeNow }
	reloaded.Load()
	fresh := reloaded.Create(Fields{})

	if fresh.ID == old.ID {
		t.Errorf("reloaded store reissued id %s", old.ID)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s, _ := testStore()
	s.Create(Fields{Opponent: strp("Tigers")})

	list := s.List()
	list[0].Opponent = "mutated"

	if got := s.List()[0].Opponent; got != "Tigers" {
		t.Errorf("store visible through List copy: %q", got)
	}
}

func TestStats(t *testing.T) {
	s, _ := testStore()
	s.Create(Fields{Goals: intp(2), Assists: intp(1), Rating: intp(8)})
	s.Create(Fields{Goals: intp(1), Assists: intp(0), Rating: intp(6)})

	st := s.Stats()
	if st.Total != 2 || st.Goals != 3 || st.Assists != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.AvgRating != 7 {
		t.Errorf("avg rating = %v, want 7", st.AvgRating)
	}
}

func TestStatsEmpty(t *testing.T) {
	s, _ := testStore()
	if st := s.Stats(); st != (Stats{}) {
		t.Errorf("empty stats = %+v", st)
	}
}

func TestSearch(t *testing.T) {
	s, _ := testStore()
	s.Create(Fields{Opponent: strp("Tigers")})
	s.Create(Fields{Venue: strp("Tiger Park")})
	s.Create(Fields{Teammates: strp("Alex, Sam")})
	s.Create(Fields{Opponent: strp("Rovers")})

	if got := s.Search("tiger"); len(got) != 2 {
		t.Errorf("search tiger = %d records, want 2", len(got))
	}
	if got := s.Search("sam"); len(got) != 1 {
		t.Errorf("search sam = %d records, want 1", len(got))
	}
	if got := s.Search(""); len(got) != 4 {
		t.Errorf("empty search = %d records, want all", len(got))
	}
}

func catp(c Category) *Category { return &c }
