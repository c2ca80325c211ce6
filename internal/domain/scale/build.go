package scale

import (
	"fmt"
	"time"

	"github.com/okian/peloton/internal/domain/model"
)

// Layout fixes the pixel geometry and the domain padding policy.
type Layout struct {
	Width, Height float64
	PadX, PadY    float64

	// XPadYears extends the x domain below the earliest year.
	XPadYears int
	// YPad extends the y domain below the fastest time.
	YPad time.Duration
	// TickCount controls nice rounding and tick density.
	TickCount int
}

// DefaultLayout is a 950x500 canvas padded 150/100, with two years and
// fifteen seconds of domain padding.
func DefaultLayout() Layout {
	return Layout{
		Width:     950,
		Height:    500,
		PadX:      150,
		PadY:      100,
		XPadYears: 2,
		YPad:      15 * time.Second,
		TickCount: DefaultTickCount,
	}
}

// XRange is the horizontal plotting range.
func (l Layout) XRange() Range { return Range{Lo: l.PadX, Hi: l.Width - l.PadX} }

// YRange is the vertical plotting range.
func (l Layout) YRange() Range { return Range{Lo: l.PadY, Hi: l.Height - l.PadY} }

// Validate checks that both ranges are non-empty and the padding is sane.
func (l Layout) Validate() error {
	switch {
	case l.Width <= 0 || l.Height <= 0:
		return fmt.Errorf("%w: non-positive canvas %gx%g", ErrInvalidLayout, l.Width, l.Height)
	case l.PadX < 0 || l.PadY < 0:
		return fmt.Errorf("%w: negative padding", ErrInvalidLayout)
	case l.XRange().Hi <= l.XRange().Lo || l.YRange().Hi <= l.YRange().Lo:
		return fmt.Errorf("%w: padding leaves an empty range", ErrInvalidLayout)
	case l.XPadYears < 0 || l.YPad < 0:
		return fmt.Errorf("%w: negative domain padding", ErrInvalidLayout)
	}
	return nil
}

// Scales holds the two scales of a chart.
type Scales struct {
	X *Time
	Y *Duration
}

// Extent is the min and max of Year and Time across a dataset.
type Extent struct {
	MinYear, MaxYear time.Time
	MinTime, MaxTime time.Duration
}

// ExtentOf computes the dataset extent. It fails on an empty dataset.
func ExtentOf(records []model.Record) (Extent, error) {
	if len(records) == 0 {
		return Extent{}, ErrEmptyDataset
	}
	e := Extent{
		MinYear: records[0].Year, MaxYear: records[0].Year,
		MinTime: records[0].Time, MaxTime: records[0].Time,
	}
	for _, r := range records[1:] {
		if r.Year.Before(e.MinYear) {
			e.MinYear = r.Year
		}
		if r.Year.After(e.MaxYear) {
			e.MaxYear = r.Year
		}
		if r.Time < e.MinTime {
			e.MinTime = r.Time
		}
		if r.Time > e.MaxTime {
			e.MaxTime = r.Time
		}
	}
	return e, nil
}

// Build derives both scales from records:
//
//	x: [min(Year) - XPadYears, max(Year)] -> [PadX, Width-PadX], niced
//	y: [max(Time), min(Time) - YPad]      -> [PadY, Height-PadY], niced
//
// The y domain is inverted, so y is non-increasing in Time.
func Build(records []model.Record, l Layout) (Scales, error) {
	if err := l.Validate(); err != nil {
		return Scales{}, err
	}
	e, err := ExtentOf(records)
	if err != nil {
		return Scales{}, err
	}
	count := l.TickCount
	if count <= 0 {
		count = DefaultTickCount
	}

	x := NewTime(e.MinYear.AddDate(-l.XPadYears, 0, 0), e.MaxYear, l.XRange()).Nice(count)
	y := NewDuration(e.MaxTime, e.MinTime-l.YPad, l.YRange()).Nice(count)
	return Scales{X: x, Y: y}, nil
}
