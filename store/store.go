// Package store owns the durable match record collection. It is the
// single writer of records; everything else references them by id.
package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"pitchlog/log"
)

// Store is the keyed record collection backed by a persistence medium.
// All operations mutate in memory first and then rewrite the medium, so
// persisted state always matches what callers have observed.
type Store struct {
	mu      sync.Mutex
	medium  Medium
	records []Record // most-recent-first
	lastID  int64
	now     func() time.Time
}

func New(medium Medium) *Store {
	return &Store{medium: medium, now: time.Now}
}

// Load reads the full collection from the medium. Unreadable or malformed
// content is not an error: the store logs it and starts empty.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.medium.Read()
	if err != nil {
		log.Warnf("store: no readable data, starting empty: %v", err)
		s.records = nil
		return
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warnf("store: corrupt data, starting empty: %v", err)
		s.records = nil
		return
	}
	s.records = records
	for _, r := range records {
		if id, err := strconv.ParseInt(r.ID, 10, 64); err == nil && id > s.lastID {
			s.lastID = id
		}
	}
	log.Info(fmt.Sprintf("store: loaded %d records", len(records)))
}

// Create assigns a fresh id and timestamp, fills defaults for absent
// fields, prepends the record and persists.
func (s *Store) Create(f Fields) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r := Record{
		ID:            s.nextID(now),
		Date:          now.Format("2006-01-02"),
		Time:          now.Format("15:04"),
		FinalScore:    "0 - 0",
		Category:      League,
		Rating:        5,
		MinutesPlayed: 90,
		CreatedAt:     now.UnixMilli(),
	}
	r.apply(f)
	s.records = append([]Record{r}, s.records...)
	s.persist()
	return r
}

// Update merges the provided fields onto the record with the given id and
// persists. The returned flag is false when no such record exists; that
// is not fatal, callers decide whether to report it.
func (s *Store) Update(id string, f Fields) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].apply(f)
			s.persist()
			return true
		}
	}
	log.Warnf("store: update of missing id %s", id)
	return false
}

// Delete removes the record with the given id. Deleting an absent id is
// a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.persist()
			return
		}
	}
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// List returns a copy of the collection, most-recent-first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// nextID returns a creation-time millisecond token, bumped past the last
// issued id so two creates in the same millisecond stay unique and ordered.
func (s *Store) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// persist rewrites the whole collection. Called with s.mu held.
func (s *Store) persist() {
	data, err := json.Marshal(s.records)
	if err != nil {
		log.Errorf("store: marshal: %v", err)
		return
	}
	if err := s.medium.Write(data); err != nil {
		log.Errorf("store: persist: %v", err)
	}
}
