package dataset

import (
	"strings"

	"github.com/okian/peloton/internal/domain/model"
)

// Parse converts raw rows into records, keeping input order. The first row
// that cannot be parsed fails the whole dataset with a *RecordError.
func Parse(raw []model.RawRecord) ([]model.Record, error) {
	out := make([]model.Record, 0, len(raw))
	for i, r := range raw {
		year, err := model.ParseYear(string(r.Year))
		if err != nil {
			return nil, &RecordError{Index: i, Field: "Year", Err: err}
		}
		elapsed, err := model.ParseMinSec(r.Time)
		if err != nil {
			return nil, &RecordError{Index: i, Field: "Time", Err: err}
		}
		out = append(out, model.Record{
			Name:        strings.TrimSpace(r.Name),
			Year:        year,
			Time:        elapsed,
			Place:       r.Place,
			Nationality: r.Nationality,
			Doping:      r.Doping,
			URL:         r.URL,
			Allegation:  model.AllegationOf(r.Doping),
		})
	}
	return out, nil
}
