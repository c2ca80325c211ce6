package chartcheck

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/okian/peloton/pkg/logger"
)

// dot is a rendered mark as read back from the SVG.
type dot struct {
	index int
	year  string
}

// parseDots returns every element with class "dot" in document order.
func parseDots(svg string) ([]dot, error) {
	doc, err := html.Parse(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	var dots []dot
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && attr(n, "class") == "dot" {
			idx, err := strconv.Atoi(attr(n, "data-index"))
			if err != nil {
				return fmt.Errorf("dot without index: %w", err)
			}
			dots = append(dots, dot{index: idx, year: attr(n, "data-xvalue")})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return dots, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// verifyChart checks that the SVG has one dot per record, in dataset order.
func verifyChart(svg string, records []Record) []string {
	dots, err := parseDots(svg)
	if err != nil {
		return []string{err.Error()}
	}
	var problems []string
	if len(dots) != len(records) {
		problems = append(problems, fmt.Sprintf("chart has %d dots for %d records", len(dots), len(records)))
	}
	for i := 0; i < len(dots) && i < len(records); i++ {
		if dots[i].index != i {
			problems = append(problems, fmt.Sprintf("dot %d has index %d", i, dots[i].index))
		}
		if dots[i].year != records[i].Year {
			problems = append(problems, fmt.Sprintf("dot %d year %q, record year %q", i, dots[i].year, records[i].Year))
		}
	}
	return problems
}

// viewResult summarises one exercised view.
type viewResult struct {
	events        int
	backpressured int
	problems      []string
}

// checkView opens a view, hovers its marks and releases it.
func checkView(ctx context.Context, client *HTTPClient, records []Record, marks int) (viewResult, error) {
	var res viewResult

	resp, err := client.Post(ctx, "/views", nil)
	if err != nil {
		return res, fmt.Errorf("failed to open view: %w", err)
	}
	var sum ViewSummary
	if err := decode(resp, 201, &sum); err != nil {
		return res, fmt.Errorf("failed to open view: %w", err)
	}
	defer func() {
		if resp, err := client.Delete(context.WithoutCancel(ctx), "/views/"+sum.ID); err == nil {
			_ = decode(resp, 204, nil)
		}
	}()

	res.problems = append(res.problems, verifyChart(sum.SVG, records)...)

	n := len(sum.Points)
	if marks > 0 && marks < n {
		n = marks
	}
	for i := 0; i < n; i++ {
		p := sum.Points[i]
		x, y := float64(10*i), float64(200+i)
		sequence := []struct {
			ev    PointerEvent
			check func(Tooltip) string
		}{
			{PointerEvent{Type: "mouseover", Mark: p.Index, X: x, Y: y}, func(t Tooltip) string {
				return expectShown(t, records, p.Index, x, y)
			}},
			{PointerEvent{Type: "mousemove", Mark: p.Index, X: x + 3, Y: y + 4}, func(t Tooltip) string {
				return expectShown(t, records, p.Index, x+3, y+4)
			}},
			{PointerEvent{Type: "mouseout", Mark: p.Index}, expectHidden},
		}
		for _, step := range sequence {
			resp, err := client.Post(ctx, "/views/"+sum.ID+"/pointer", step.ev)
			if err != nil {
				return res, fmt.Errorf("failed to send pointer event: %w", err)
			}
			var tip Tooltip
			res.events++
			if err := decode(resp, 200, &tip); err != nil {
				if errors.Is(err, ErrBackpressure) {
					res.backpressured++
					continue
				}
				return res, fmt.Errorf("pointer %s on mark %d: %w", step.ev.Type, p.Index, err)
			}
			if msg := step.check(tip); msg != "" {
				res.problems = append(res.problems, fmt.Sprintf("view %s mark %d %s: %s", sum.ID, p.Index, step.ev.Type, msg))
			}
		}
	}
	return res, nil
}

func expectShown(t Tooltip, records []Record, mark int, x, y float64) string {
	if mark < 0 || mark >= len(records) {
		return fmt.Sprintf("mark %d outside dataset", mark)
	}
	r := records[mark]
	switch {
	case !t.Shown:
		return "tooltip hidden"
	case t.Mark != mark:
		return fmt.Sprintf("tooltip on mark %d", t.Mark)
	case t.DataYear != r.Year:
		return fmt.Sprintf("data-year %q, want %q", t.DataYear, r.Year)
	case !slices.Equal(t.Lines, tooltipLines(r)):
		return fmt.Sprintf("lines %q, want %q", t.Lines, tooltipLines(r))
	case math.Abs(t.X-(x+offsetX)) > 1e-9 || math.Abs(t.Y-(y+offsetY)) > 1e-9:
		return fmt.Sprintf("tooltip at (%g,%g), pointer at (%g,%g)", t.X, t.Y, x, y)
	}
	return ""
}

// tooltipLines is the exact text a tooltip shows for r.
func tooltipLines(r Record) []string {
	return []string{"Name: " + r.Name, "Year: " + r.Year, "Time: " + r.Time}
}

func expectHidden(t Tooltip) string {
	if t.Shown || t.DataYear != "" {
		return "tooltip still shown"
	}
	return ""
}

// reportProblems logs mismatches, all of them when verbose.
func reportProblems(ctx context.Context, problems []string, verbose bool) {
	limit := len(problems)
	if !verbose && limit > 5 {
		limit = 5
	}
	for _, p := range problems[:limit] {
		logger.Get().Warn(ctx, "mismatch", logger.String("detail", p))
	}
}
