package render

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"trendboard/pkg/distribution"
	"trendboard/pkg/synth"
)

const (
	SecondaryLabel = "Google"
	TotalLabel     = "Total"

	trendWidth  = 1100
	trendHeight = 450
	pieSize     = 420
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to render")

var (
	primaryColor   = drawing.ColorFromHex("4169E1")
	secondaryColor = drawing.ColorFromHex("008000")
	totalColor     = drawing.ColorFromHex("FFA500")
	dashed         = []float64{6, 4}

	genderColors = []drawing.Color{
		drawing.ColorFromHex("AED6F1"),
		drawing.ColorFromHex("F9E79F"),
	}
	ageColors = []drawing.Color{
		drawing.ColorFromHex("D5F5E3"),
		drawing.ColorFromHex("FADBD8"),
		drawing.ColorFromHex("D6EAF8"),
		drawing.ColorFromHex("FCF3CF"),
		drawing.ColorFromHex("E8DAEF"),
	}
)

// TrendChartSVG draws primary (dashed), secondary (dashed) and total (solid)
// lines. primaryLabel names the country's local engine.
func TrendChartSVG(title, primaryLabel string, series synth.DerivedSeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	xs := make([]time.Time, len(series))
	primary := make([]float64, len(series))
	secondary := make([]float64, len(series))
	total := make([]float64, len(series))
	maxY := 0.0
	for i, p := range series {
		xs[i] = p.Period
		primary[i] = p.Primary
		secondary[i] = p.Secondary
		total[i] = p.Total
		maxY = max(maxY, p.Primary, p.Secondary, p.Total)
	}
	if maxY <= 0 {
		maxY = 1
	}

	graph := chart.Chart{
		Title:      title,
		Width:      trendWidth,
		Height:     trendHeight,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
			Range:          timeRange(xs),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    primaryLabel,
				XValues: xs,
				YValues: primary,
				Style:   chart.Style{StrokeColor: primaryColor, StrokeWidth: 1.5, StrokeDashArray: dashed},
			},
			chart.TimeSeries{
				Name:    SecondaryLabel,
				XValues: xs,
				YValues: secondary,
				Style:   chart.Style{StrokeColor: secondaryColor, StrokeWidth: 1.5, StrokeDashArray: dashed},
			},
			chart.TimeSeries{
				Name:    TotalLabel,
				XValues: xs,
				YValues: total,
				Style:   chart.Style{StrokeColor: totalColor, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

// timeRange pads a single-month series by half a month each side; go-chart
// refuses a zero-width axis.
func timeRange(xs []time.Time) chart.Range {
	first, last := xs[0], xs[len(xs)-1]
	if first.Equal(last) {
		first = first.AddDate(0, 0, -15)
		last = last.AddDate(0, 0, 15)
	}
	return &chart.ContinuousRange{
		Min: float64(first.UnixNano()),
		Max: float64(last.UnixNano()),
	}
}

// GenderPieSVG draws the gender breakdown.
func GenderPieSVG(title string, slices []distribution.Slice) ([]byte, error) {
	return pieSVG(title, slices, genderColors)
}

// AgePieSVG draws the age breakdown.
func AgePieSVG(title string, slices []distribution.Slice) ([]byte, error) {
	return pieSVG(title, slices, ageColors)
}

func pieSVG(title string, slices []distribution.Slice, colors []drawing.Color) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for i, s := range slices {
		if s.Percent <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: s.Percent,
			Label: fmt.Sprintf("%s %.1f%%", s.Label, s.Percent),
			Style: chart.Style{FillColor: colors[i%len(colors)], FontColor: drawing.ColorBlack},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}
