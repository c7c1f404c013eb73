package chart

import (
	"html"
	"io"
	"strconv"
	"text/template"

	"github.com/pkg/errors"
)

const (
	marginLeft   = 70.0
	marginTop    = 60.0
	marginBottom = 130.0
	plotHeight   = 320.0
	barWidth     = 36.0
	barGap       = 12.0
	groupGap     = 40.0
	legendWidth  = 190.0
	tickCount    = 5
)

//nolint:lll //this is a template
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}" font-family="sans-serif" font-size="12">
	<text x="{{num .TitleX}}" y="24" text-anchor="middle" font-size="16">{{xml .Title}}</text>
	<text transform="translate(18 {{num .AxisMidY}}) rotate(-90)" text-anchor="middle">{{xml .YLabel}}</text>
{{range .Ticks}}	<line x1="{{num $.AxisX0}}" x2="{{num $.AxisX1}}" y1="{{num .Y}}" y2="{{num .Y}}" stroke="#e5e5e5"/>
	<text x="{{num (sub $.AxisX0 6)}}" y="{{num (add .Y 4)}}" text-anchor="end">{{.Value}}</text>
{{end}}{{range .Rects}}	<rect x="{{num .X}}" y="{{num .Y}}" width="{{num .W}}" height="{{num .H}}" fill="{{.Fill}}"><title>{{xml .Title}}</title></rect>
{{end}}{{range .Labels}}	<text {{if .Rotate}}transform="translate({{num .X}} {{num .Y}}) rotate(-45)" text-anchor="end"{{else}}x="{{num .X}}" y="{{num .Y}}" text-anchor="middle"{{end}}>{{xml .Text}}</text>
{{end}}	<line x1="{{num .AxisX0}}" x2="{{num .AxisX1}}" y1="{{num .AxisY}}" y2="{{num .AxisY}}" stroke="#444"/>
{{range .Legend}}	<rect x="{{num .X}}" y="{{num .Y}}" width="12" height="12" fill="{{.Fill}}"/>
	<text x="{{num (add .X 18)}}" y="{{num (add .Y 10)}}">{{xml .Status}}</text>
{{end}}</svg>
`

type rect struct {
	X, Y, W, H float64
	Fill       string
	Title      string
}

type label struct {
	X, Y   float64
	Text   string
	Rotate bool
}

type tick struct {
	Y     float64
	Value int
}

type legendItem struct {
	X, Y   float64
	Status string
	Fill   string
}

type svgDescription struct {
	Width, Height  float64
	Title, YLabel  string
	TitleX         float64
	AxisX0, AxisX1 float64
	AxisY          float64
	AxisMidY       float64
	Ticks          []tick
	Rects          []rect
	Labels         []label
	Legend         []legendItem
}

// tickStep returns the distance between two y axis ticks so that about tickCount ticks cover maxValue.
func tickStep(maxValue int) int {
	step := (maxValue + tickCount - 1) / tickCount
	if step < 1 {
		return 1
	}

	return step
}

func (c *Chart) describe() (svgDescription, error) {
	fills := map[string]string{}
	fill := func(status string) (string, error) {
		if f, ok := fills[status]; ok {
			return f, nil
		}
		f, err := StatusColor(status)
		if err != nil {
			return "", err
		}
		fills[status] = f

		return f, nil
	}

	step := tickStep(c.MaxTotal())
	top := step * tickCount
	scale := plotHeight / float64(top)
	axisY := marginTop + plotHeight

	desc := svgDescription{
		Title:    c.Title,
		YLabel:   c.YLabel,
		AxisX0:   marginLeft,
		AxisY:    axisY,
		AxisMidY: marginTop + plotHeight/2,
	}

	for v := 0; v <= top; v += step {
		desc.Ticks = append(desc.Ticks, tick{Y: axisY - float64(v)*scale, Value: v})
	}

	x := marginLeft + barGap
	for gi, g := range c.Groups {
		if gi > 0 {
			x += groupGap
		}
		groupStart := x

		for _, b := range g.Bars {
			y := axisY
			for _, s := range b.Segments {
				if s.Count == 0 {
					continue
				}

				f, err := fill(s.Status)
				if err != nil {
					return desc, err
				}

				h := float64(s.Count) * scale
				y -= h
				desc.Rects = append(desc.Rects, rect{
					X: x, Y: y, W: barWidth, H: h,
					Fill:  f,
					Title: b.Label + " " + s.Status + ": " + strconv.Itoa(s.Count),
				})
			}

			desc.Labels = append(desc.Labels, label{X: x + barWidth/2, Y: axisY + 14, Text: b.Label, Rotate: true})
			x += barWidth + barGap
		}

		if g.Label != "" {
			desc.Labels = append(desc.Labels, label{X: (groupStart + x - barGap) / 2, Y: marginTop - 8, Text: g.Label})
		}
	}

	desc.AxisX1 = max(x, marginLeft+2*barGap)

	for i, status := range c.Statuses {
		f, err := fill(status)
		if err != nil {
			return desc, err
		}
		desc.Legend = append(desc.Legend, legendItem{X: desc.AxisX1 + 30, Y: marginTop + float64(i)*22, Status: status, Fill: f})
	}

	desc.Width = desc.AxisX1 + legendWidth
	desc.Height = axisY + marginBottom
	desc.TitleX = desc.Width / 2

	return desc, nil
}

// WriteSVG renders the chart as an SVG document.
func (c *Chart) WriteSVG(wrt io.Writer) error {
	desc, err := c.describe()
	if err != nil {
		return errors.Wrap(err, "unable to describe chart")
	}

	tpl, err := template.New("svgTemplate").Funcs(template.FuncMap{
		"xml": html.EscapeString,
		"num": func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
		"add": func(a, b float64) float64 { return a + b },
		"sub": func(a, b float64) float64 { return a - b },
	}).Parse(svgTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}
