package interaction_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/peloton/internal/domain/chart"
	"github.com/okian/peloton/internal/domain/interaction"
	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/internal/domain/scale"
	. "github.com/smartystreets/goconvey/convey"
)

func testChart() chart.Chart {
	recs := []model.Record{
		{Name: "Marco Pantani", Year: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC), Time: 36*time.Minute + 50*time.Second, Allegation: model.AllegedDoping},
		{Name: "Nairo Quintana", Year: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), Time: 39*time.Minute + 22*time.Second},
	}
	layout := scale.DefaultLayout()
	s, err := scale.Build(recs, layout)
	if err != nil {
		panic(err)
	}
	return chart.Build(recs, s, layout, chart.DefaultStyle())
}

func TestParseKind(t *testing.T) {
	Convey("Given pointer event names", t, func() {
		for in, want := range map[string]interaction.Kind{
			"enter": interaction.Enter, "mouseover": interaction.Enter,
			"move": interaction.Move, "MouseMove": interaction.Move,
			"leave": interaction.Leave, "mouseout": interaction.Leave,
		} {
			k, err := interaction.ParseKind(in)
			So(err, ShouldBeNil)
			So(k, ShouldEqual, want)
		}

		_, err := interaction.ParseKind("click")
		So(errors.Is(err, interaction.ErrUnknownKind), ShouldBeTrue)
		So(interaction.Move.String(), ShouldEqual, "move")
	})
}

func TestApply(t *testing.T) {
	Convey("Given a machine over two marks", t, func() {
		m := interaction.NewMachine(testChart())
		var s interaction.State

		Convey("When the pointer enters the first mark", func() {
			s, err := m.Apply(s, interaction.Event{Kind: interaction.Enter, Mark: 0, X: 200, Y: 200})
			So(err, ShouldBeNil)

			Convey("Then the tooltip is shown offset from the pointer", func() {
				So(s.Shown, ShouldBeTrue)
				So(s.Name(), ShouldEqual, "shown")
				So(s.X, ShouldEqual, 215.0)
				So(s.Y, ShouldEqual, 175.0)
				So(s.DataYear, ShouldEqual, "1995")
				So(s.Lines, ShouldResemble, []string{"Name: Marco Pantani", "Year: 1995", "Time: 36:50"})
				So(s.Width, ShouldEqual, chart.TooltipWidth(s.Lines))
			})

			Convey("And it moves", func() {
				s, err = m.Apply(s, interaction.Event{Kind: interaction.Move, X: 300, Y: 120})
				So(err, ShouldBeNil)

				Convey("Then only the position changes", func() {
					So(s.X, ShouldEqual, 315.0)
					So(s.Y, ShouldEqual, 95.0)
					So(s.DataYear, ShouldEqual, "1995")
				})
			})

			Convey("And it enters another mark without leaving", func() {
				s, err = m.Apply(s, interaction.Event{Kind: interaction.Enter, Mark: 1, X: 10, Y: 40})
				So(err, ShouldBeNil)

				Convey("Then the last entered mark wins", func() {
					So(s.Mark, ShouldEqual, 1)
					So(s.DataYear, ShouldEqual, "2015")
					So(s.Lines[0], ShouldEqual, "Name: Nairo Quintana")
				})
			})

			Convey("And it leaves", func() {
				s, err = m.Apply(s, interaction.Event{Kind: interaction.Leave})
				So(err, ShouldBeNil)

				Convey("Then the tooltip is hidden and cleared", func() {
					So(s, ShouldResemble, interaction.State{})
					So(s.Overlay().Visible, ShouldBeFalse)
					So(s.Overlay().Lines, ShouldBeEmpty)
				})
			})

			Convey("And the overlay mirrors the state", func() {
				o := s.Overlay()
				So(o.Visible, ShouldBeTrue)
				So(o.X, ShouldEqual, s.X)
				So(o.DataYear, ShouldEqual, "1995")
				So(o.Lines, ShouldResemble, s.Lines)
			})
		})

		Convey("When the pointer moves while hidden", func() {
			next, err := m.Apply(s, interaction.Event{Kind: interaction.Move, X: 1, Y: 1})

			Convey("Then nothing happens", func() {
				So(err, ShouldBeNil)
				So(next, ShouldResemble, s)
			})
		})

		Convey("When an event names an unknown mark", func() {
			shown, _ := m.Apply(s, interaction.Event{Kind: interaction.Enter, Mark: 1})
			next, err := m.Apply(shown, interaction.Event{Kind: interaction.Enter, Mark: 7})

			Convey("Then it fails and the state is unchanged", func() {
				So(errors.Is(err, interaction.ErrUnknownMark), ShouldBeTrue)
				So(next, ShouldResemble, shown)
			})
		})

		Convey("When the event kind is invalid", func() {
			_, err := m.Apply(s, interaction.Event{Kind: interaction.Kind(9)})
			So(errors.Is(err, interaction.ErrUnknownKind), ShouldBeTrue)
		})
	})
}
