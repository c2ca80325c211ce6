package scale

import (
	"fmt"
	"math"
	"time"
)

// Unit is a calendar granularity.
type Unit int

const (
	Millisecond Unit = iota
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

var unitNames = [...]string{"ms", "s", "min", "h", "d", "w", "mo", "y"}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// Interval is a repeating calendar step, e.g. every 15 seconds or every
// 2 years. Boundaries are aligned to the field value of the unit (second of
// the minute, month of the year, ...), all in UTC.
type Interval struct {
	Unit Unit
	Step int
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d%s", iv.step(), iv.Unit)
}

func (iv Interval) step() int {
	if iv.Step < 1 {
		return 1
	}
	return iv.Step
}

// Approx is the nominal length of one step, with 30-day months and 365-day
// years.
func (iv Interval) Approx() time.Duration {
	var d time.Duration
	switch iv.Unit {
	case Millisecond:
		d = time.Millisecond
	case Second:
		d = time.Second
	case Minute:
		d = time.Minute
	case Hour:
		d = time.Hour
	case Day:
		d = durationDay
	case Week:
		d = durationWeek
	case Month:
		d = durationMonth
	case Year:
		d = durationYear
	}
	return d * time.Duration(iv.step())
}

// Floor returns the latest boundary at or before t.
func (iv Interval) Floor(t time.Time) time.Time {
	t = t.UTC()
	k := iv.step()
	y, mo, d := t.Date()
	switch iv.Unit {
	case Millisecond:
		ms := floorDiv(t.UnixMilli(), int64(k)) * int64(k)
		return time.UnixMilli(ms).UTC()
	case Second:
		base := time.Date(y, mo, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		return base.Add(-time.Duration(t.Second()%k) * time.Second)
	case Minute:
		return time.Date(y, mo, d, t.Hour(), t.Minute()-t.Minute()%k, 0, 0, time.UTC)
	case Hour:
		return time.Date(y, mo, d, t.Hour()-t.Hour()%k, 0, 0, 0, time.UTC)
	case Day:
		return time.Date(y, mo, d-(d-1)%k, 0, 0, 0, 0, time.UTC)
	case Week:
		// Weeks start on Sunday.
		return time.Date(y, mo, d-int(t.Weekday()), 0, 0, 0, 0, time.UTC)
	case Month:
		m := int(mo) - 1
		return time.Date(y, time.Month(m-m%k+1), 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(int(floorDiv(int64(y), int64(k))*int64(k)), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// Ceil returns the earliest boundary at or after t.
func (iv Interval) Ceil(t time.Time) time.Time {
	f := iv.Floor(t)
	if f.Equal(t) {
		return f
	}
	return iv.next(f)
}

// Offset moves t by n steps without re-aligning.
func (iv Interval) Offset(t time.Time, n int) time.Time {
	n *= iv.step()
	switch iv.Unit {
	case Millisecond:
		return t.Add(time.Duration(n) * time.Millisecond)
	case Second:
		return t.Add(time.Duration(n) * time.Second)
	case Minute:
		return t.Add(time.Duration(n) * time.Minute)
	case Hour:
		return t.Add(time.Duration(n) * time.Hour)
	case Day:
		return t.AddDate(0, 0, n)
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Month:
		return t.AddDate(0, n, 0)
	case Year:
		return t.AddDate(n, 0, 0)
	}
	return t
}

// next returns the boundary following boundary b. Day steps restart at the
// first of every month, so the offset is re-floored.
func (iv Interval) next(b time.Time) time.Time {
	n := iv.Floor(iv.Offset(b, 1))
	if !n.After(b) {
		n = iv.Offset(b, 1)
	}
	return n
}

// maxRange caps the number of boundaries Range will produce.
const maxRange = 10_000

// Range returns every boundary in [lo, hi], ascending.
func (iv Interval) Range(lo, hi time.Time) []time.Time {
	if hi.Before(lo) {
		return nil
	}
	var out []time.Time
	for t := iv.Ceil(lo); !t.After(hi) && len(out) < maxRange; t = iv.next(t) {
		out = append(out, t)
	}
	return out
}

const (
	durationDay   = 24 * time.Hour
	durationWeek  = 7 * durationDay
	durationMonth = 30 * durationDay
	durationYear  = 365 * durationDay
)

// tickIntervals is the ladder used to pick a tick interval for a span.
var tickIntervals = []Interval{
	{Second, 1}, {Second, 5}, {Second, 15}, {Second, 30},
	{Minute, 1}, {Minute, 5}, {Minute, 15}, {Minute, 30},
	{Hour, 1}, {Hour, 3}, {Hour, 6}, {Hour, 12},
	{Day, 1}, {Day, 2},
	{Week, 1},
	{Month, 1}, {Month, 3},
	{Year, 1},
}

// TickInterval picks the interval that yields roughly count ticks between
// start and stop. Either order is accepted.
func TickInterval(start, stop time.Time, count int) Interval {
	if count < 1 {
		count = 1
	}
	span := stop.Sub(start)
	if span < 0 {
		span = -span
	}
	target := float64(span) / float64(count)

	// First ladder entry strictly longer than target.
	i := len(tickIntervals)
	for j, iv := range tickIntervals {
		if float64(iv.Approx()) > target {
			i = j
			break
		}
	}

	switch i {
	case len(tickIntervals):
		y0 := float64(start.UnixMilli()) / float64(durationYear.Milliseconds())
		y1 := float64(stop.UnixMilli()) / float64(durationYear.Milliseconds())
		step := int(math.Round(math.Abs(TickStep(y0, y1, count))))
		if step < 1 {
			step = 1
		}
		return Interval{Year, step}
	case 0:
		step := int(math.Round(math.Abs(TickStep(float64(start.UnixMilli()), float64(stop.UnixMilli()), count))))
		if step < 1 {
			step = 1
		}
		return Interval{Millisecond, step}
	}

	lo, hi := tickIntervals[i-1], tickIntervals[i]
	if target/float64(lo.Approx()) < float64(hi.Approx())/target {
		return lo
	}
	return hi
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// TickStep returns a 1, 2 or 5 times a power of ten step that splits
// [start, stop] into about count pieces. The sign follows stop - start.
func TickStep(start, stop float64, count int) float64 {
	if count < 1 || start == stop {
		return 0
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	errv := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case errv >= e10:
		factor = 10
	case errv >= e5:
		factor = 5
	case errv >= e2:
		factor = 2
	}
	out := factor * math.Pow(10, power)
	if reverse {
		out = -out
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
