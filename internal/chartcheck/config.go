// Package chartcheck drives a running peloton server the way a browser
// would and verifies what it renders against the dataset.
package chartcheck

import "time"

// Config holds configuration for a check run.
type Config struct {
	BaseURL string        // Base URL of the service
	Views   int           // Number of views to open
	Workers int           // Number of concurrent workers
	Marks   int           // Marks hovered per view; 0 hovers every mark
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every mismatch
}

// Record mirrors the /dataset item shape.
type Record struct {
	Name string `json:"name"`
	Year string `json:"year"`
	Time string `json:"time"`
}

// Point mirrors one mark in a view summary.
type Point struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Year  string `json:"year"`
}

// ViewSummary mirrors the POST /views response.
type ViewSummary struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	SVG    string  `json:"svg"`
}

// Tooltip mirrors the tooltip state returned by the service.
type Tooltip struct {
	Shown    bool     `json:"shown"`
	Mark     int      `json:"mark"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Lines    []string `json:"lines"`
	DataYear string   `json:"dataYear"`
}

// PointerEvent is the body of POST /views/{id}/pointer.
type PointerEvent struct {
	Type string  `json:"type"`
	Mark int     `json:"mark"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Stats holds run statistics.
type Stats struct {
	Records       int
	ViewsOpened   int
	ViewsFailed   int
	PointerEvents int
	Backpressured int
	Mismatches    int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
