// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formats used for tooltip text and axis labels.
const (
	YearLayout = "2006"
	TimeLayout = "04:05"
)

// Parse errors.
var (
	ErrBadYear = errors.New("year must be four digits")
	ErrBadTime = errors.New("time must be MM:SS")
)

// RawRecord is one element of the fetched JSON array.
type RawRecord struct {
	Time        string `json:"Time"`
	Place       int    `json:"Place"`
	Seconds     int    `json:"Seconds"`
	Name        string `json:"Name"`
	Year        Text   `json:"Year"`
	Nationality string `json:"Nationality"`
	Doping      string `json:"Doping"`
	URL         string `json:"URL"`
}

// Text is a JSON scalar kept as its textual form. The upstream dataset
// publishes Year as a number while older copies quote it.
type Text string

// UnmarshalJSON accepts a JSON string or number.
func (t *Text) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// Allegation classifies a record once, at load time.
type Allegation int

const (
	Clean Allegation = iota
	AllegedDoping
)

// String implements fmt.Stringer.
func (a Allegation) String() string {
	if a == AllegedDoping {
		return "alleged_doping"
	}
	return "clean"
}

// AllegationOf derives the allegation from the raw Doping text.
func AllegationOf(doping string) Allegation {
	if strings.TrimSpace(doping) != "" {
		return AllegedDoping
	}
	return Clean
}

// Record is a parsed, immutable dataset row.
type Record struct {
	Name        string        `json:"name"`
	Year        time.Time     `json:"year"`
	Time        time.Duration `json:"time"`
	Place       int           `json:"place"`
	Nationality string        `json:"nationality,omitempty"`
	Doping      string        `json:"doping,omitempty"`
	URL         string        `json:"url,omitempty"`
	Allegation  Allegation    `json:"allegation"`
}

// YearString formats the year as four digits.
func (r Record) YearString() string { return r.Year.Format(YearLayout) }

// TimeString formats the finish time as MM:SS.
func (r Record) TimeString() string { return FormatMinSec(r.Time) }

// ParseYear converts a four-digit year into Jan 1 00:00 UTC of that year.
func ParseYear(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !isDigits(s, 4) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadYear, s)
	}
	y, _ := strconv.Atoi(s)
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseMinSec converts "MM:SS" into elapsed time. Each field takes one or
// two digits and must be below 60.
func ParseMinSec(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	mm, ss, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	m, err := parseClockField(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	sec, err := parseClockField(ss)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

func parseClockField(s string) (int, error) {
	if len(s) == 0 || len(s) > 2 || !isDigits(s, len(s)) {
		return 0, ErrBadTime
	}
	v, _ := strconv.Atoi(s)
	if v > 59 {
		return 0, ErrBadTime
	}
	return v, nil
}

// isDigits reports whether s is exactly n ASCII digits.
func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatMinSec renders an elapsed time as zero-padded MM:SS, minutes taken
// modulo the hour.
func FormatMinSec(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", (total/60)%60, total%60)
}

// ElapsedInstant places an elapsed time on 1970-01-01 UTC so it can be
// carried as a timestamp.
func ElapsedInstant(d time.Duration) time.Time {
	return time.Unix(0, 0).UTC().Add(d)
}
