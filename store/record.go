package store

// Category classifies a match.
type Category string

const (
	League     Category = "League"
	Cup        Category = "Cup"
	Friendly   Category = "Friendly"
	Tournament Category = "Tournament"
)

// ValidCategory reports whether s is one of the four match categories.
func ValidCategory(s string) bool {
	switch Category(s) {
	case League, Cup, Friendly, Tournament:
		return true
	}
	return false
}

// Record is a stored match performance. Every field is always populated:
// Create fills defaults for anything the caller omits, so the collection
// never contains partial records.
type Record struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"` // YYYY-MM-DD
	Time          string   `json:"time"` // HH:MM
	Venue         string   `json:"stadium"`
	Opponent      string   `json:"opponent"`
	Teammates     string   `json:"teammates"`
	FinalScore    string   `json:"finalScore"`
	Category      Category `json:"matchType"`
	Rating        int      `json:"rating"` // 1-10
	MinutesPlayed int      `json:"minutesPlayed"`
	Goals         int      `json:"myGoals"`
	AssistFrom    string   `json:"assistFrom"`
	Assists       int      `json:"myAssists"`
	Scorer        string   `json:"scorer"`
	Notes         string   `json:"comments"`
	CreatedAt     int64    `json:"timestamp"` // unix millis
}

// Fields is the partial shape used for creates and updates. Nil means
// "not provided": Create substitutes a default, Update leaves the stored
// value untouched.
type Fields struct {
	Date          *string
	Time          *string
	Venue         *string
	Opponent      *string
	Teammates     *string
	FinalScore    *string
	Category      *Category
	Rating        *int
	MinutesPlayed *int
	Goals         *int
	AssistFrom    *string
	Assists       *int
	Scorer        *string
	Notes         *string
}

func (r *Record) apply(f Fields) {
	if f.Date != nil {
		r.Date = *f.Date
	}
	if f.Time != nil {
		r.Time = *f.Time
	}
	if f.Venue != nil {
		r.Venue = *f.Venue
	}
	if f.Opponent != nil {
		r.Opponent = *f.Opponent
	}
	if f.Teammates != nil {
		r.Teammates = *f.Teammates
	}
	if f.FinalScore != nil {
		r.FinalScore = *f.FinalScore
	}
	if f.Category != nil {
		r.Category = *f.Category
	}
	if f.Rating != nil {
		r.Rating = *f.Rating
	}
	if f.MinutesPlayed != nil {
		r.MinutesPlayed = *f.MinutesPlayed
	}
	if f.Goals != nil {
		r.Goals = *f.Goals
	}
	if f.AssistFrom != nil {
		r.AssistFrom = *f.AssistFrom
	}
	if f.Assists != nil {
		r.Assists = *f.Assists
	}
	if f.Scorer != nil {
		r.Scorer = *f.Scorer
	}
	if f.Notes != nil {
		r.Notes = *f.Notes
	}
}
