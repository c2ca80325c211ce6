// Package scale maps calendar dates and elapsed times onto pixel
// coordinates, with domains rounded outward to clean tick boundaries.
package scale

import (
	"time"

	moremath "github.com/aclements/go-moremath/scale"
	"github.com/okian/peloton/internal/domain/model"
)

// DefaultTickCount is the tick density used by Nice and Ticks when the
// caller does not supply one.
const DefaultTickCount = 10

// Range is a pixel interval. Lo maps from the first domain bound and Hi
// from the second.
type Range struct {
	Lo, Hi float64
}

// Contains reports whether v lies in the range, inclusive, in either
// orientation.
func (r Range) Contains(v float64) bool {
	lo, hi := r.Lo, r.Hi
	if lo > hi {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// Time is a linear scale from a time domain to a pixel range. The domain
// may be given in either order; the first bound maps to Range.Lo.
type Time struct {
	d0, d1 time.Time
	rng    Range
	lin    moremath.Linear
}

// NewTime returns a scale over [d0, d1] -> rng.
func NewTime(d0, d1 time.Time, rng Range) *Time {
	s := &Time{rng: rng}
	s.setDomain(d0.UTC(), d1.UTC())
	return s
}

func (s *Time) setDomain(d0, d1 time.Time) {
	s.d0, s.d1 = d0, d1
	s.lin = moremath.Linear{Min: msOf(d0), Max: msOf(d1)}
}

func msOf(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

// Domain returns the domain bounds in construction order.
func (s *Time) Domain() (time.Time, time.Time) { return s.d0, s.d1 }

// Range returns the pixel range.
func (s *Time) Range() Range { return s.rng }

// Map converts t to a pixel coordinate. Values outside the domain
// extrapolate linearly. A zero-width domain maps to the middle of the range.
func (s *Time) Map(t time.Time) float64 {
	if s.d0.Equal(s.d1) {
		return (s.rng.Lo + s.rng.Hi) / 2
	}
	u := s.lin.Map(msOf(t))
	return s.rng.Lo + u*(s.rng.Hi-s.rng.Lo)
}

// Nice extends the domain outward to the boundaries of the tick interval
// chosen for count ticks. The domain order is preserved.
func (s *Time) Nice(count int) *Time {
	if count <= 0 {
		count = DefaultTickCount
	}
	return s.NiceTo(TickInterval(s.d0, s.d1, count))
}

// NiceTo extends the domain outward to boundaries of iv.
func (s *Time) NiceTo(iv Interval) *Time {
	lo, hi := s.d0, s.d1
	reversed := hi.Before(lo)
	if reversed {
		lo, hi = hi, lo
	}
	lo, hi = iv.Floor(lo), iv.Ceil(hi)
	if reversed {
		lo, hi = hi, lo
	}
	s.setDomain(lo, hi)
	return s
}

// Ticks returns about count interval-aligned values inside the domain,
// ordered like the domain.
func (s *Time) Ticks(count int) []time.Time {
	if count <= 0 {
		count = DefaultTickCount
	}
	return s.Every(TickInterval(s.d0, s.d1, count))
}

// Every returns every boundary of iv inside the domain, ordered like the
// domain.
func (s *Time) Every(iv Interval) []time.Time {
	lo, hi := s.d0, s.d1
	reversed := hi.Before(lo)
	if reversed {
		lo, hi = hi, lo
	}
	ticks := iv.Range(lo, hi)
	if reversed {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

// Duration is a scale over elapsed times. Durations are placed on
// 1970-01-01 UTC so the calendar tick ladder applies to them.
type Duration struct {
	t *Time
}

// NewDuration returns a scale over [d0, d1] -> rng.
func NewDuration(d0, d1 time.Duration, rng Range) *Duration {
	return &Duration{t: NewTime(model.ElapsedInstant(d0), model.ElapsedInstant(d1), rng)}
}

// Domain returns the domain bounds in construction order.
func (s *Duration) Domain() (time.Duration, time.Duration) {
	a, b := s.t.Domain()
	return elapsed(a), elapsed(b)
}

// Range returns the pixel range.
func (s *Duration) Range() Range { return s.t.Range() }

// Map converts d to a pixel coordinate.
func (s *Duration) Map(d time.Duration) float64 { return s.t.Map(model.ElapsedInstant(d)) }

// Nice extends the domain outward; see Time.Nice.
func (s *Duration) Nice(count int) *Duration {
	s.t.Nice(count)
	return s
}

// Ticks returns about count aligned durations inside the domain.
func (s *Duration) Ticks(count int) []time.Duration {
	return elapsedAll(s.t.Ticks(count))
}

// Every returns every boundary of iv inside the domain.
func (s *Duration) Every(iv Interval) []time.Duration {
	return elapsedAll(s.t.Every(iv))
}

func elapsed(t time.Time) time.Duration {
	return t.Sub(time.Unix(0, 0))
}

func elapsedAll(ts []time.Time) []time.Duration {
	out := make([]time.Duration, len(ts))
	for i, t := range ts {
		out[i] = elapsed(t)
	}
	return out
}
