// Package types contains the JSON shapes shared by the service and the HTTP API.
package types

import "time"

// Record is one dataset row as served by the API.
type Record struct {
	Name        string `json:"name"`
	Year        string `json:"year"`
	Time        string `json:"time"`
	Seconds     int    `json:"seconds"`
	Place       int    `json:"place"`
	Nationality string `json:"nationality,omitempty"`
	Doping      string `json:"doping,omitempty"`
	URL         string `json:"url,omitempty"`
	Allegation  string `json:"allegation"`
}

// Point describes one rendered mark.
type Point struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Year       string  `json:"year"`
	Time       string  `json:"time"`
	Allegation string  `json:"allegation"`
	CX         float64 `json:"cx"`
	CY         float64 `json:"cy"`
}

// ViewSummary is returned when a view is created or looked up.
type ViewSummary struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	Points  []Point   `json:"points"`
	// SVG is the initial rendering, set only when a view is created.
	SVG string `json:"svg,omitempty"`
}

// Tooltip is the visible tooltip state of a view.
type Tooltip struct {
	Shown    bool     `json:"shown"`
	Mark     int      `json:"mark"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Lines    []string `json:"lines"`
	DataYear string   `json:"dataYear"`
}

// PointerRequest is the body of a pointer event.
type PointerRequest struct {
	Type string  `json:"type"`
	Mark int     `json:"mark"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}
