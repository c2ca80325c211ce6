package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/peloton/internal/adapters/dataset"
	"github.com/okian/peloton/internal/adapters/mq/worker"
	"github.com/okian/peloton/internal/adapters/repository"
	service "github.com/okian/peloton/internal/app"
	"github.com/okian/peloton/internal/domain/interaction"
	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/internal/domain/scale"
	"github.com/okian/peloton/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type stubLoader struct {
	calls   atomic.Int32
	err     error
	records []model.Record
}

func (l *stubLoader) Load(ctx context.Context) ([]model.Record, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.records, nil
}

func sample() []model.Record {
	y := func(v int) time.Time { return time.Date(v, 1, 1, 0, 0, 0, 0, time.UTC) }
	return []model.Record{
		{Name: "Marco Pantani", Year: y(1995), Time: 36*time.Minute + 50*time.Second, Allegation: model.AllegedDoping},
		{Name: "Nairo Quintana", Year: y(2015), Time: 39*time.Minute + 22*time.Second},
		{Name: "Lance Armstrong", Year: y(2004), Time: 37*time.Minute + 36*time.Second, Allegation: model.AllegedDoping},
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithLoader(&stubLoader{records: sample()}))
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then view operations fail before Start", func() {
			_, err := svc.CreateView(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When the service is started twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it reports itself running", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["activeViews"], ShouldEqual, 0)
				So(stats["datasetLoaded"], ShouldEqual, false)
			})

			Convey("And stopped", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given an invalid layout", t, func() {
		l := scale.DefaultLayout()
		l.PadX = 600
		svc := service.New(service.WithLayout(l), service.WithLoader(&stubLoader{}))

		So(errors.Is(svc.Start(context.Background()), scale.ErrInvalidLayout), ShouldBeTrue)
	})
}

func TestService_Render(t *testing.T) {
	Convey("Given a started service", t, func() {
		loader := &stubLoader{records: sample()}
		svc := service.New(service.WithLoader(loader))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When rendering SVG twice", func() {
			var a, b bytes.Buffer
			So(svc.RenderSVG(ctx, &a), ShouldBeNil)
			So(svc.RenderSVG(ctx, &b), ShouldBeNil)

			Convey("Then the output is identical and the dataset was fetched once", func() {
				So(a.String(), ShouldEqual, b.String())
				So(a.String(), ShouldContainSubstring, `id="x-axis"`)
				So(int(loader.calls.Load()), ShouldEqual, 1)
				So(svc.GetStats()["records"], ShouldEqual, 3)
			})
		})

		Convey("When rendering PNG", func() {
			var buf bytes.Buffer
			So(svc.RenderPNG(ctx, &buf), ShouldBeNil)
			So(buf.Bytes()[:4], ShouldResemble, []byte("\x89PNG"))
		})

		Convey("When the dataset is served", func() {
			recs, err := svc.Dataset(ctx)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 3)
		})
	})

	Convey("Given a loader that fails", t, func() {
		loader := &stubLoader{err: dataset.ErrFetch}
		svc := service.New(service.WithLoader(loader))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then no chart is produced and the failure is not cached", func() {
			var buf bytes.Buffer
			So(errors.Is(svc.RenderSVG(ctx, &buf), dataset.ErrFetch), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
			_, err := svc.CreateView(ctx)
			So(errors.Is(err, dataset.ErrFetch), ShouldBeTrue)
			So(int(loader.calls.Load()), ShouldEqual, 2)
		})
	})

	Convey("Given an empty dataset", t, func() {
		svc := service.New(service.WithLoader(&stubLoader{records: []model.Record{}}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		err := svc.RenderSVG(context.Background(), io.Discard)
		So(errors.Is(err, scale.ErrEmptyDataset), ShouldBeTrue)
	})
}

func TestService_Views(t *testing.T) {
	Convey("Given a started service with a view", t, func() {
		svc := service.New(service.WithLoader(&stubLoader{records: sample()}), service.WithMaxViews(2), service.WithMailboxSize(8))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		v, err := svc.CreateView(ctx)
		So(err, ShouldBeNil)

		Convey("Then it has a mark per record and a hidden tooltip", func() {
			sum := service.Summary(v)
			So(sum.ID, ShouldEqual, v.ID)
			So(sum.Points, ShouldHaveLength, 3)
			So(sum.Points[0].Year, ShouldEqual, "1995")
			So(sum.Points[0].Allegation, ShouldEqual, "alleged_doping")
			tip, err := svc.Tooltip(ctx, v.ID)
			So(err, ShouldBeNil)
			So(tip.Shown, ShouldBeFalse)
			So(tip.Lines, ShouldBeEmpty)
		})

		Convey("When the pointer enters a mark", func() {
			tip, err := svc.Pointer(ctx, v.ID, interaction.Event{Kind: interaction.Enter, Mark: 1, X: 100, Y: 50})
			So(err, ShouldBeNil)

			Convey("Then the tooltip shows that record", func() {
				So(tip.Shown, ShouldBeTrue)
				So(tip.X, ShouldEqual, 115.0)
				So(tip.Y, ShouldEqual, 25.0)
				So(tip.DataYear, ShouldEqual, "2015")
				So(tip.Lines, ShouldResemble, []string{"Name: Nairo Quintana", "Year: 2015", "Time: 39:22"})
			})

			Convey("Then the view SVG carries the visible tooltip", func() {
				var buf bytes.Buffer
				So(svc.ViewSVG(ctx, v.ID, &buf), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, `data-year="2015"`)
				So(buf.String(), ShouldContainSubstring, "Name: Nairo Quintana")
			})

			Convey("And leaves", func() {
				tip, err = svc.Pointer(ctx, v.ID, interaction.Event{Kind: interaction.Leave})
				So(err, ShouldBeNil)
				So(tip.Shown, ShouldBeFalse)
			})
		})

		Convey("When the pointer names an unknown mark", func() {
			_, err := svc.Pointer(ctx, v.ID, interaction.Event{Kind: interaction.Enter, Mark: 99})
			So(errors.Is(err, interaction.ErrUnknownMark), ShouldBeTrue)
		})

		Convey("When the view is released", func() {
			So(svc.ReleaseView(ctx, v.ID), ShouldBeNil)

			Convey("Then it can no longer be used", func() {
				_, err := svc.Tooltip(ctx, v.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(svc.ReleaseView(ctx, v.ID), repository.ErrNotFound), ShouldBeTrue)
				_, err = v.Session.Send(ctx, interaction.Event{Kind: interaction.Leave})
				So(errors.Is(err, worker.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When more views than allowed are created", func() {
			_, err := svc.CreateView(ctx)
			So(err, ShouldBeNil)
			_, err = svc.CreateView(ctx)
			So(err, ShouldBeNil)

			Convey("Then the oldest is evicted", func() {
				_, err := svc.View(ctx, v.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(svc.GetStats()["activeViews"], ShouldEqual, 2)
			})
		})

		Convey("When views are driven concurrently", func() {
			other, err := svc.CreateView(ctx)
			So(err, ShouldBeNil)

			var wg sync.WaitGroup
			for _, id := range []string{v.ID, other.ID} {
				wg.Add(1)
				go func(id string, mark int) {
					defer wg.Done()
					for i := 0; i < 20; i++ {
						_, _ = svc.Pointer(ctx, id, interaction.Event{Kind: interaction.Enter, Mark: mark})
					}
				}(id, map[string]int{v.ID: 0, other.ID: 2}[id])
			}
			wg.Wait()

			Convey("Then each view keeps its own tooltip", func() {
				a, _ := svc.Tooltip(ctx, v.ID)
				b, _ := svc.Tooltip(ctx, other.ID)
				So(a.DataYear, ShouldEqual, "1995")
				So(b.DataYear, ShouldEqual, "2004")
			})
		})
	})
}

func TestService_FileLoader(t *testing.T) {
	Convey("Given a service backed by the sample dataset file", t, func() {
		src := dataset.NewFileSource("../adapters/dataset/testdata/cyclists.json")
		svc := service.New(service.WithLoader(dataset.NewLoader(src, logger.Nop())))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		v, err := svc.CreateView(ctx)

		So(err, ShouldBeNil)
		So(v.Chart.Marks, ShouldHaveLength, 6)
		So(v.Chart.Marks[4].Fill, ShouldEqual, "rgb(47, 66, 94)")
	})
}

func TestService_API(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithLoader(&stubLoader{records: sample()}))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a view is opened", func() {
			sum, err := svc.OpenView(ctx)
			So(err, ShouldBeNil)

			Convey("Then the summary carries the initial SVG", func() {
				So(sum.ID, ShouldNotBeEmpty)
				So(sum.Points, ShouldHaveLength, 3)
				So(sum.SVG, ShouldStartWith, "<svg")
				So(sum.SVG, ShouldContainSubstring, `id="tooltip"`)
			})
		})

		Convey("When records are requested", func() {
			recs, err := svc.Records(ctx)
			So(err, ShouldBeNil)

			Convey("Then they are formatted for clients", func() {
				So(recs, ShouldHaveLength, 3)
				So(recs[0].Year, ShouldEqual, "1995")
				So(recs[0].Time, ShouldEqual, "36:50")
				So(recs[0].Seconds, ShouldEqual, 2210)
				So(recs[1].Allegation, ShouldEqual, "clean")
			})
		})
	})
}
