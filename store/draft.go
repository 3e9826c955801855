package store

import "time"

// Draft is a transient candidate record awaiting user confirmation. It
// carries a provisional id and timestamp; the store never persists one.
// The workflow package owns the single live Draft.
type Draft struct {
	ID            string
	Date          string
	Time          string
	Venue         string
	Opponent      string
	Teammates     string
	FinalScore    string
	Category      Category
	Rating        int
	MinutesPlayed int
	Goals         int
	AssistFrom    string
	Assists       int
	Scorer        string
	Notes         string
	CreatedAt     int64
}

// NewDraft returns an empty draft stamped with a provisional identity.
func NewDraft(now time.Time) Draft {
	return Draft{
		ID:        now.Format("20060102150405.000"),
		CreatedAt: now.UnixMilli(),
	}
}

// Fields converts the draft to the store's write shape with every field
// present, so a commit is a full-field write.
func (d Draft) Fields() Fields {
	return Fields{
		Date:          &d.Date,
		Time:          &d.Time,
		Venue:         &d.Venue,
		Opponent:      &d.Opponent,
		Teammates:     &d.Teammates,
		FinalScore:    &d.FinalScore,
		Category:      &d.Category,
		Rating:        &d.Rating,
		MinutesPlayed: &d.MinutesPlayed,
		Goals:         &d.Goals,
		AssistFrom:    &d.AssistFrom,
		Assists:       &d.Assists,
		Scorer:        &d.Scorer,
		Notes:         &d.Notes,
	}
}

// DraftOf loads an existing record into draft form for editing.
func DraftOf(r Record) Draft {
	return Draft{
		ID:            r.ID,
		Date:          r.Date,
		Time:          r.Time,
		Venue:         r.Venue,
		Opponent:      r.Opponent,
		Teammates:     r.Teammates,
		FinalScore:    r.FinalScore,
		Category:      r.Category,
		Rating:        r.Rating,
		MinutesPlayed: r.MinutesPlayed,
		Goals:         r.Goals,
		AssistFrom:    r.AssistFrom,
		Assists:       r.Assists,
		Scorer:        r.Scorer,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}
