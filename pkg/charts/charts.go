// Package charts renders the dashboard bar charts as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"floorplans/pkg/floorplan"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

const (
	ProjectChartWidth  = 700
	ProjectChartHeight = 400
	RoomChartWidth     = 800
	RoomChartHeight    = 400
)

// Palette assigns each project a stable colour by first-seen position.
type Palette struct {
	index map[string]int
}

func NewPalette(projects []string) Palette {
	p := Palette{index: make(map[string]int, len(projects))}
	for _, name := range projects {
		if _, ok := p.index[name]; !ok {
			p.index[name] = len(p.index)
		}
	}
	return p
}

func (p Palette) Color(project string) drawing.Color {
	i, ok := p.index[project]
	if !ok {
		return chart.ColorLightGray
	}
	return chart.GetDefaultColor(i)
}

// CSS returns the project colour for use in HTML legends.
func (p Palette) CSS(project string) string {
	return p.Color(project).String()
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   col,
		StrokeColor: col,
		StrokeWidth: 1,
	}
}

// ProjectArea renders total area per project, in the order given.
func ProjectArea(w io.Writer, totals []floorplan.ProjectArea, palette Palette) error {
	if len(totals) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(totals))
	for i, pa := range totals {
		bars[i] = chart.Value{
			Label: pa.Project,
			Value: pa.Total,
			Style: barStyle(palette.Color(pa.Project)),
		}
	}
	bc := chart.BarChart{
		Title:      "Total Built-up Area by Project",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      ProjectChartWidth,
		Height:     ProjectChartHeight,
		BarWidth:   barWidth(ProjectChartWidth, len(bars)),
		YAxis:      chart.YAxis{Name: floorplan.ColumnArea, Range: yRange(bars)},
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render project chart: %w", err)
	}
	return nil
}

// RoomArea renders one bar per row, grouped by room name in first-seen
// order and coloured by project. Only the first bar of a group carries
// the room label.
func RoomArea(w io.Writer, t floorplan.Table, palette Palette) error {
	if t.Len() == 0 {
		return ErrNoData
	}

	var rooms []string
	groups := make(map[string][]chart.Value)
	for i, row := range t.Rows {
		area, err := row.AreaSqft()
		if err != nil {
			return &floorplan.AggregationError{Row: i, Project: row.Project, Value: row.Area, Err: err}
		}
		if _, ok := groups[row.RoomName]; !ok {
			rooms = append(rooms, row.RoomName)
		}
		label := ""
		if len(groups[row.RoomName]) == 0 {
			label = row.RoomName
		}
		groups[row.RoomName] = append(groups[row.RoomName], chart.Value{
			Label: label,
			Value: area,
			Style: barStyle(palette.Color(row.Project)),
		})
	}

	bars := make([]chart.Value, 0, t.Len())
	for _, room := range rooms {
		bars = append(bars, groups[room]...)
	}

	bc := chart.BarChart{
		Title:      "Room Area Comparison",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      RoomChartWidth,
		Height:     RoomChartHeight,
		BarWidth:   barWidth(RoomChartWidth, len(bars)),
		YAxis:      chart.YAxis{Name: floorplan.ColumnArea, Range: yRange(bars)},
		Bars:       bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render room chart: %w", err)
	}
	return nil
}

// yRange always includes zero and never collapses to a single value,
// which go-chart refuses to draw.
func yRange(bars []chart.Value) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi * 1.1}
}

func barWidth(width, n int) int {
	bw := (width - 100) / (2 * n)
	if bw > 80 {
		bw = 80
	}
	if bw < 10 {
		bw = 10
	}
	return bw
}
