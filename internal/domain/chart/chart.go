// Package chart turns parsed records and their scales into a renderable
// scatter plot: one mark per record, axes, gridlines, a static legend and
// a tooltip overlay.
package chart

import (
	"strconv"
	"time"

	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/internal/domain/scale"
)

// Style holds every colour and size the renderers use.
type Style struct {
	Title         string
	Accent        string // marks with a doping allegation
	Base          string // marks without one
	Ink           string // axes and labels
	Grid          string
	LegendFill    string
	TooltipFill   string
	TooltipStroke string
	MarkRadius    float64
	GridEvery     time.Duration
}

// DefaultStyle matches the reference chart.
func DefaultStyle() Style {
	return Style{
		Title:         "Doping in Professional Bicycle Racing",
		Accent:        "orange",
		Base:          "rgb(47, 66, 94)",
		Ink:           "rgb(221, 221, 221)",
		Grid:          "rgba(221, 221, 221, 0.1)",
		LegendFill:    "gray",
		TooltipFill:   "rgba(120, 120, 120, 0.9)",
		TooltipStroke: "rgba(221, 221, 221, 0.1)",
		MarkRadius:    6,
		GridEvery:     30 * time.Second,
	}
}

// Fill picks the mark colour for an allegation.
func (s Style) Fill(a model.Allegation) string {
	if a == model.AllegedDoping {
		return s.Accent
	}
	return s.Base
}

// Mark is one circle.
type Mark struct {
	Index  int
	CX, CY float64
	R      float64
	Fill   string
	// XValue and YValue are the machine-readable year and time.
	XValue string
	YValue string
	Record model.Record
}

// Tick is a positioned axis label.
type Tick struct {
	Pos   float64
	Label string
}

// LegendEntry is one swatch of the legend.
type LegendEntry struct {
	Fill       string
	Label      string
	Allegation model.Allegation
}

// Chart is the complete, immutable description of a rendered view.
type Chart struct {
	Layout scale.Layout
	Style  Style
	Marks  []Mark
	XTicks []Tick
	YTicks []Tick
	// Grid holds y positions of horizontal gridlines.
	Grid   []float64
	Legend []LegendEntry

	// Niced domains, kept for raster export.
	XDomain [2]time.Time
	YDomain [2]time.Duration
}

// Build lays out records against s. It performs no I/O and keeps no state,
// so equal inputs give equal charts.
func Build(records []model.Record, s scale.Scales, layout scale.Layout, style Style) Chart {
	c := Chart{
		Layout: layout,
		Style:  style,
		Marks:  make([]Mark, len(records)),
		Legend: []LegendEntry{
			{Fill: style.Accent, Label: "Doping allegations", Allegation: model.AllegedDoping},
			{Fill: style.Base, Label: "No doping allegations", Allegation: model.Clean},
		},
	}

	for i, r := range records {
		c.Marks[i] = Mark{
			Index:  i,
			CX:     s.X.Map(r.Year),
			CY:     s.Y.Map(r.Time),
			R:      style.MarkRadius,
			Fill:   style.Fill(r.Allegation),
			XValue: r.YearString(),
			YValue: model.ElapsedInstant(r.Time).Format(time.RFC3339),
			Record: r,
		}
	}

	count := layout.TickCount
	for _, t := range s.X.Every(yearInterval(s.X, count)) {
		c.XTicks = append(c.XTicks, Tick{Pos: s.X.Map(t), Label: t.Format(model.YearLayout)})
	}
	for _, d := range s.Y.Ticks(count) {
		c.YTicks = append(c.YTicks, Tick{Pos: s.Y.Map(d), Label: model.FormatMinSec(d)})
	}
	if style.GridEvery > 0 {
		iv := scale.Interval{Unit: scale.Second, Step: int(style.GridEvery / time.Second)}
		for _, d := range s.Y.Every(iv) {
			c.Grid = append(c.Grid, s.Y.Map(d))
		}
	}

	c.XDomain[0], c.XDomain[1] = s.X.Domain()
	c.YDomain[0], c.YDomain[1] = s.Y.Domain()
	return c
}

// Mark returns the mark at index i.
func (c Chart) Mark(i int) (Mark, bool) {
	if i < 0 || i >= len(c.Marks) {
		return Mark{}, false
	}
	return c.Marks[i], true
}

// yearInterval is the x tick interval, never finer than one year since
// labels show the year only.
func yearInterval(x *scale.Time, count int) scale.Interval {
	d0, d1 := x.Domain()
	iv := scale.TickInterval(d0, d1, count)
	if iv.Unit != scale.Year {
		return scale.Interval{Unit: scale.Year, Step: 1}
	}
	return iv
}

// TooltipLines is the text shown for a record.
func TooltipLines(r model.Record) []string {
	return []string{
		"Name: " + r.Name,
		"Year: " + r.YearString(),
		"Time: " + r.TimeString(),
	}
}

// Overlay is the presentation of the tooltip group.
type Overlay struct {
	Visible  bool
	X, Y     float64
	Width    float64
	Lines    []string
	DataYear string
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
