package charts

import (
	"bytes"
	"image/png"
	"testing"

	"floorplans/pkg/floorplan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"
)

func sampleTable() floorplan.Table {
	return floorplan.NewTable(
		floorplan.NewRow("A", "1F", "Bed", 100),
		floorplan.NewRow("B", "1F", "Bed", 150),
		floorplan.NewRow("A", "2F", "Hall", 80),
	)
}

func TestProjectArea(t *testing.T) {
	totals, err := floorplan.SumAreaByProject(sampleTable())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ProjectArea(&buf, totals, NewPalette([]string{"A", "B"})))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, ProjectChartWidth, img.Bounds().Dx())
	assert.Equal(t, ProjectChartHeight, img.Bounds().Dy())
}

func TestProjectAreaSingleBar(t *testing.T) {
	var buf bytes.Buffer
	err := ProjectArea(&buf, []floorplan.ProjectArea{{Project: "A", Total: 42}}, NewPalette([]string{"A"}))
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestProjectAreaNoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, ProjectArea(&buf, nil, NewPalette(nil)), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestRoomArea(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RoomArea(&buf, sampleTable(), NewPalette([]string{"A", "B"})))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, RoomChartWidth, img.Bounds().Dx())
}

func TestRoomAreaErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RoomArea(&buf, floorplan.Table{}, NewPalette(nil)), ErrNoData)

	bad := floorplan.NewTable(floorplan.Row{Project: "A", Floor: "1F", RoomName: "Bed", Area: "big"})
	var aggErr *floorplan.AggregationError
	assert.ErrorAs(t, RoomArea(&buf, bad, NewPalette([]string{"A"})), &aggErr)
}

func TestPalette(t *testing.T) {
	p := NewPalette([]string{"B", "A", "B"})
	assert.Equal(t, chart.GetDefaultColor(0), p.Color("B"))
	assert.Equal(t, chart.GetDefaultColor(1), p.Color("A"))
	assert.Equal(t, chart.ColorLightGray, p.Color("Z"))
	assert.NotEmpty(t, p.CSS("A"))
}

func TestYRange(t *testing.T) {
	r := yRange([]chart.Value{{Value: 0}})
	assert.Equal(t, 0.0, r.Min)
	assert.Greater(t, r.Max, r.Min)

	r = yRange([]chart.Value{{Value: 50}, {Value: 100}})
	assert.Equal(t, 0.0, r.Min)
	assert.InDelta(t, 110, r.Max, 1e-9)
}
