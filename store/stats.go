package store

import "strings"

// Stats aggregates the collection for the header strip.
type Stats struct {
	Total     int
	Goals     int
	Assists   int
	AvgRating float64
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.records)}
	ratingSum := 0
	for _, r := range s.records {
		st.Goals += r.Goals
		st.Assists += r.Assists
		ratingSum += r.Rating
	}
	if st.Total > 0 {
		st.AvgRating = float64(ratingSum) / float64(st.Total)
	}
	return st
}

// Search returns records whose opponent, venue or teammates contain the
// query, case-insensitive. An empty query matches everything.
func (s *Store) Search(query string) []Record {
	q := strings.ToLower(query)
	var out []Record
	for _, r := range s.List() {
		if strings.Contains(strings.ToLower(r.Opponent), q) ||
			strings.Contains(strings.ToLower(r.Venue), q) ||
			strings.Contains(strings.ToLower(r.Teammates), q) {
			out = append(out, r)
		}
	}
	return out
}
