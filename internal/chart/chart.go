// Package chart renders the cumulative spacewalk-time line chart as a PNG.
package chart

import (
	"fmt"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"spacewalks/internal/table"
)

// Point pairs one EVA date with the cumulative hours spent in space to that
// date.
type Point struct {
	Date  time.Time
	Hours float64
}

// CumulativePoints extracts (date, cumulative_time) pairs from a derived
// table, in row order.
func CumulativePoints(tbl table.Table, dateCol, cumCol string) ([]Point, error) {
	if !tbl.HasColumn(dateCol) || !tbl.HasColumn(cumCol) {
		return nil, fmt.Errorf("chart: table lacks %q/%q columns", dateCol, cumCol)
	}
	out := make([]Point, 0, tbl.Len())
	for i, rec := range tbl.Rows {
		d, dOK := rec[dateCol].(time.Time)
		h, hOK := rec[cumCol].(float64)
		if !dOK || !hOK {
			return nil, fmt.Errorf("chart: row %d is not coerced (%T/%T)", i, rec[dateCol], rec[cumCol])
		}
		out = append(out, Point{Date: d, Hours: h})
	}
	return out, nil
}

// RenderCumulative draws the points as a marker-and-line time series and
// writes the PNG to w. go-chart needs at least two x values to place an
// axis, so a single point is duplicated rather than rejected.
func RenderCumulative(w io.Writer, points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("chart: no points to plot")
	}
	if len(points) == 1 {
		points = append(points, points[0])
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Date
		ys[i] = p.Hours
	}

	series := chart.TimeSeries{
		Name:    "Cumulative EVA time",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: 2,
			DotWidth:    4,
			StrokeColor: chart.ColorBlack,
			DotColor:    chart.ColorBlack,
		},
	}

	ch := chart.Chart{
		XAxis:      chart.XAxis{Name: "Year"},
		YAxis:      chart.YAxis{Name: "Total time spent in space to date (hours)"},
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 14}},
		Series:     []chart.Series{series},
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart: render: %w", err)
	}
	return nil
}
