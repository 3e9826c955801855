package store

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"Date", "Time", "Opponent", "Score", "Type", "Goals",
	"AssistedBy", "Assists", "ScoredBy", "Teammates", "Rating", "Venue",
}

// WriteCSV writes the records as CSV in the given order, one row per
// record. A missing time is rendered as "-".
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		t := r.Time
		if t == "" {
			t = "-"
		}
		row := []string{
			r.Date,
			t,
			r.Opponent,
			r.FinalScore,
			string(r.Category),
			strconv.Itoa(r.Goals),
			r.AssistFrom,
			strconv.Itoa(r.Assists),
			r.Scorer,
			r.Teammates,
			strconv.Itoa(r.Rating),
			r.Venue,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
