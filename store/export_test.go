package store

import (
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	records := []Record{
		{
			Date:       "2026-03-14",
			Time:       "18:30",
			Opponent:   "Tigers",
			FinalScore: "4 - 2",
			Category:   Cup,
			Goals:      3,
			AssistFrom: "Sam",
			Assists:    1,
			Scorer:     "Alex",
			Teammates:  "Alex, Sam",
			Rating:     9,
			Venue:      "Home Ground",
		},
		{Date: "2026-03-01", Category: League, Rating: 5},
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "Date,Time,Opponent,Score,Type,Goals,AssistedBy,Assists,ScoredBy,Teammates,Rating,Venue" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `2026-03-14,18:30,Tigers,4 - 2,Cup,3,Sam,1,Alex,"Alex, Sam",9,Home Ground` {
		t.Errorf("row = %q", lines[1])
	}
	if lines[2] != "2026-03-01,-,,,League,0,,0,,,5," {
		t.Errorf("sparse row = %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("empty export has %d lines, want header only", got)
	}
}
