package chart

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
)

// Element ids the interactive page and the verification client rely on.
const (
	IDTitle   = "title"
	IDXAxis   = "x-axis"
	IDYAxis   = "y-axis"
	IDLegend  = "legend"
	IDTooltip = "tooltip"
	ClassDot  = "dot"
)

// Tooltip box geometry.
const (
	TooltipHeight    = 66
	TooltipRadius    = 10
	TooltipPadding   = 25
	tooltipTextX     = 10
	tooltipFirstLine = 20
	tooltipLineStep  = 18
)

const (
	tickSize      = 6
	legendWidth   = 200
	legendHeight  = 60
	legendOffsetX = 100
	legendY       = 250
	legendSwatchR = 7
)

// TooltipLineID is the id of the i-th tooltip text line.
func TooltipLineID(i int) string {
	return IDTooltip + "-" + strconv.Itoa(i)
}

// WriteSVG renders c as a standalone SVG document. The tooltip group is
// always present; o controls whether it is visible and what it says.
func WriteSVG(w io.Writer, c Chart, o Overlay) error {
	return html.Render(w, SVGNode(c, o))
}

// SVGNode builds the document tree without serialising it.
func SVGNode(c Chart, o Overlay) *html.Node {
	l := c.Layout
	st := c.Style

	root := el("svg",
		"xmlns", "http://www.w3.org/2000/svg",
		"width", ftoa(l.Width),
		"height", ftoa(l.Height),
		"viewBox", fmt.Sprintf("0 0 %s %s", ftoa(l.Width), ftoa(l.Height)),
		"font-family", "sans-serif",
	)

	title := el("text",
		"id", IDTitle,
		"x", ftoa(l.Width/2),
		"y", ftoa(l.PadY/2),
		"text-anchor", "middle",
		"font-size", "24",
		"fill", st.Ink,
	)
	title.AppendChild(text(st.Title))
	root.AppendChild(title)

	root.AppendChild(grid(c))
	root.AppendChild(xAxis(c))
	root.AppendChild(yAxis(c))

	for _, m := range c.Marks {
		root.AppendChild(el("circle",
			"class", ClassDot,
			"cx", ftoa(m.CX),
			"cy", ftoa(m.CY),
			"r", ftoa(m.R),
			"fill", m.Fill,
			"data-xvalue", m.XValue,
			"data-yvalue", m.YValue,
			"data-index", strconv.Itoa(m.Index),
		))
	}

	root.AppendChild(legend(c))
	root.AppendChild(tooltip(c, o))
	return root
}

func xAxis(c Chart) *html.Node {
	l := c.Layout
	x0, x1 := l.PadX, l.Width-l.PadX
	g := el("g",
		"id", IDXAxis,
		"transform", translate(0, l.Height-l.PadY),
		"color", c.Style.Ink,
		"font-size", "10",
		"text-anchor", "middle",
	)
	g.AppendChild(el("path",
		"class", "domain",
		"stroke", "currentColor",
		"fill", "none",
		"d", fmt.Sprintf("M%s,%dV0H%sV%d", ftoa(x0), tickSize, ftoa(x1), tickSize),
	))
	for _, t := range c.XTicks {
		tick := el("g", "class", "tick", "transform", translate(t.Pos, 0))
		tick.AppendChild(el("line", "stroke", "currentColor", "y2", strconv.Itoa(tickSize)))
		label := el("text", "fill", "currentColor", "y", "9", "dy", "0.71em")
		label.AppendChild(text(t.Label))
		tick.AppendChild(label)
		g.AppendChild(tick)
	}
	name := el("text",
		"class", "axis-label",
		"fill", "currentColor",
		"x", ftoa((x0+x1)/2),
		"y", "40",
		"font-size", "14",
	)
	name.AppendChild(text("Year"))
	g.AppendChild(name)
	return g
}

func yAxis(c Chart) *html.Node {
	l := c.Layout
	y0, y1 := l.PadY, l.Height-l.PadY
	g := el("g",
		"id", IDYAxis,
		"transform", translate(l.PadX, 0),
		"color", c.Style.Ink,
		"font-size", "10",
		"text-anchor", "end",
	)
	g.AppendChild(el("path",
		"class", "domain",
		"stroke", "currentColor",
		"fill", "none",
		"d", fmt.Sprintf("M-%d,%sH0V%sH-%d", tickSize, ftoa(y0), ftoa(y1), tickSize),
	))
	for _, t := range c.YTicks {
		tick := el("g", "class", "tick", "transform", translate(0, t.Pos))
		tick.AppendChild(el("line", "stroke", "currentColor", "x2", strconv.Itoa(-tickSize)))
		label := el("text", "fill", "currentColor", "x", "-9", "dy", "0.32em")
		label.AppendChild(text(t.Label))
		tick.AppendChild(label)
		g.AppendChild(tick)
	}
	name := el("text",
		"class", "axis-label",
		"fill", "currentColor",
		"transform", "rotate(-90)",
		"x", ftoa(-(y0+y1)/2),
		"y", "-60",
		"font-size", "14",
		"text-anchor", "middle",
	)
	name.AppendChild(text("Finish Time"))
	g.AppendChild(name)
	return g
}

func grid(c Chart) *html.Node {
	l := c.Layout
	g := el("g", "class", "grid", "transform", translate(l.PadX, 0), "stroke", c.Style.Grid)
	span := ftoa(l.Width - 2*l.PadX)
	for _, y := range c.Grid {
		g.AppendChild(el("line", "x1", "0", "x2", span, "y1", ftoa(y), "y2", ftoa(y)))
	}
	return g
}

func legend(c Chart) *html.Node {
	l := c.Layout
	g := el("g",
		"id", IDLegend,
		"transform", translate(l.Width-l.PadX-legendOffsetX, legendY),
	)
	g.AppendChild(el("rect",
		"width", strconv.Itoa(legendWidth),
		"height", strconv.Itoa(legendHeight),
		"rx", "5",
		"fill", c.Style.LegendFill,
		"fill-opacity", "0.3",
	))
	for i, e := range c.Legend {
		y := 20 + 20*i
		g.AppendChild(el("circle",
			"cx", "15",
			"cy", strconv.Itoa(y),
			"r", strconv.Itoa(legendSwatchR),
			"fill", e.Fill,
		))
		t := el("text",
			"x", "30",
			"y", strconv.Itoa(y),
			"dy", "0.32em",
			"font-size", "14",
			"fill", c.Style.Ink,
		)
		t.AppendChild(text(e.Label))
		g.AppendChild(t)
	}
	return g
}

func tooltip(c Chart, o Overlay) *html.Node {
	attrs := []string{"id", IDTooltip}
	if o.Visible {
		attrs = append(attrs,
			"transform", translate(o.X, o.Y),
			"data-year", o.DataYear,
		)
	} else {
		attrs = append(attrs, "style", "display: none", "data-year", "")
	}
	g := el("g", attrs...)
	g.AppendChild(el("rect",
		"width", ftoa(o.Width),
		"height", strconv.Itoa(TooltipHeight),
		"rx", strconv.Itoa(TooltipRadius),
		"fill", c.Style.TooltipFill,
		"stroke", c.Style.TooltipStroke,
	))
	for i := 0; i < 3; i++ {
		t := el("text",
			"id", TooltipLineID(i),
			"x", strconv.Itoa(tooltipTextX),
			"y", strconv.Itoa(tooltipFirstLine+tooltipLineStep*i),
			"font-size", "14",
			"fill", c.Style.Ink,
		)
		if i < len(o.Lines) {
			t.AppendChild(text(o.Lines[i]))
		}
		g.AppendChild(t)
	}
	return g
}

func el(tag string, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func translate(x, y float64) string {
	return "translate(" + ftoa(x) + "," + ftoa(y) + ")"
}
