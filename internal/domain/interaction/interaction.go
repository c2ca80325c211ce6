// Package interaction holds the tooltip state machine driven by pointer
// events over chart marks.
package interaction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/peloton/internal/domain/chart"
)

// Tooltip placement relative to the pointer.
const (
	OffsetX = 15
	OffsetY = -25
)

var (
	// ErrUnknownMark is returned when an event names a mark the chart lacks.
	ErrUnknownMark = errors.New("unknown mark")
	// ErrUnknownKind is returned for an unrecognised event type.
	ErrUnknownKind = errors.New("unknown pointer event")
)

// Kind enumerates pointer events.
type Kind int

const (
	Enter Kind = iota + 1
	Move
	Leave
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Move:
		return "move"
	case Leave:
		return "leave"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts enter, move and leave, plus the DOM names mouseover,
// mousemove and mouseout.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enter", "mouseover":
		return Enter, nil
	case "move", "mousemove":
		return Move, nil
	case "leave", "mouseout":
		return Leave, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Event is a pointer event in chart pixel coordinates. Mark is only read
// for Enter.
type Event struct {
	Kind Kind
	Mark int
	X, Y float64
}

// State is the tooltip state. The zero value is hidden.
type State struct {
	Shown    bool     `json:"shown"`
	Mark     int      `json:"mark"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Lines    []string `json:"lines"`
	DataYear string   `json:"dataYear"`
}

// Name is "shown" or "hidden".
func (s State) Name() string {
	if s.Shown {
		return "shown"
	}
	return "hidden"
}

// Overlay converts the state to its rendered form.
func (s State) Overlay() chart.Overlay {
	if !s.Shown {
		return chart.Overlay{Width: chart.TooltipWidth(nil)}
	}
	return chart.Overlay{
		Visible:  true,
		X:        s.X,
		Y:        s.Y,
		Width:    s.Width,
		Lines:    append([]string(nil), s.Lines...),
		DataYear: s.DataYear,
	}
}

// Machine applies events against the marks of one chart.
type Machine struct {
	chart chart.Chart
}

// NewMachine binds a machine to c.
func NewMachine(c chart.Chart) Machine {
	return Machine{chart: c}
}

// Apply returns the state after e. On error the input state is returned
// unchanged.
func (m Machine) Apply(s State, e Event) (State, error) {
	switch e.Kind {
	case Enter:
		mk, ok := m.chart.Mark(e.Mark)
		if !ok {
			return s, fmt.Errorf("%w: %d", ErrUnknownMark, e.Mark)
		}
		lines := chart.TooltipLines(mk.Record)
		return State{
			Shown:    true,
			Mark:     mk.Index,
			X:        e.X + OffsetX,
			Y:        e.Y + OffsetY,
			Width:    chart.TooltipWidth(lines),
			Lines:    lines,
			DataYear: mk.XValue,
		}, nil
	case Move:
		if !s.Shown {
			return s, nil
		}
		s.X, s.Y = e.X+OffsetX, e.Y+OffsetY
		return s, nil
	case Leave:
		return State{}, nil
	}
	return s, fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
}
