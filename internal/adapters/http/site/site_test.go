package site

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/peloton/internal/domain/chart"
	"github.com/okian/peloton/internal/domain/model"
	"github.com/okian/peloton/internal/domain/scale"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a mux with the site registered", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("Then the index page is served at root", func() {
			w := get("/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `id="chart"`)
		})

		Convey("Then the script forwards pointer events", func() {
			w := get("/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/pointer")
			So(w.Body.String(), ShouldContainSubstring, "mouseover")
		})

		Convey("Then the stylesheet is served", func() {
			So(get("/style.css").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown assets are not found", func() {
			So(get("/missing.js").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}

// idSelector matches "#name" literals in the script, with an optional
// "+ i" suffix for indexed ids.
var idSelector = regexp.MustCompile(`"#([A-Za-z][\w-]*)"(\s*\+\s*i)?`)

func TestScriptMatchesChart(t *testing.T) {
	Convey("Given the rendered chart and the page script", t, func() {
		y := func(v int) time.Time { return time.Date(v, 1, 1, 0, 0, 0, 0, time.UTC) }
		records := []model.Record{
			{Name: "Marco Pantani", Year: y(1995), Time: 36*time.Minute + 50*time.Second, Allegation: model.AllegedDoping},
			{Name: "Nairo Quintana", Year: y(2015), Time: 39*time.Minute + 22*time.Second},
		}
		layout := scale.DefaultLayout()
		s, err := scale.Build(records, layout)
		So(err, ShouldBeNil)
		var buf bytes.Buffer
		So(chart.WriteSVG(&buf, chart.Build(records, s, layout, chart.DefaultStyle()), chart.Overlay{}), ShouldBeNil)
		svg := buf.String()

		mux := http.NewServeMux()
		Register(context.Background(), mux)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", http.NoBody))
		So(w.Code, ShouldEqual, http.StatusOK)
		script := w.Body.String()

		Convey("Then every id the script selects exists in the chart", func() {
			matches := idSelector.FindAllStringSubmatch(script, -1)
			So(matches, ShouldNotBeEmpty)
			for _, m := range matches {
				if m[2] == "" {
					So(svg, ShouldContainSubstring, `id="`+m[1]+`"`)
					continue
				}
				for i := 0; i < 3; i++ {
					So(svg, ShouldContainSubstring, `id="`+m[1]+strconv.Itoa(i)+`"`)
				}
			}
		})

		Convey("Then the tooltip line ids are the ones the script fills", func() {
			for i := 0; i < 3; i++ {
				So(script, ShouldContainSubstring, `"#`+chart.IDTooltip+`-" + i`)
				So(svg, ShouldContainSubstring, `id="`+chart.TooltipLineID(i)+`"`)
			}
		})

		Convey("Then the marks carry the attributes the script binds to", func() {
			So(script, ShouldContainSubstring, `".dot"`)
			So(script, ShouldContainSubstring, `"data-index"`)
			So(svg, ShouldContainSubstring, `class="dot"`)
			So(svg, ShouldContainSubstring, `data-index="1"`)
		})
	})
}
