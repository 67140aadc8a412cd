package api

import (
	"html/template"
	"net/url"

	"floorplans/pkg/floorplan"
)

type errorResponse struct {
	Error string `json:"error"`
}

type rowsResponse struct {
	Columns []string               `json:"columns"`
	Rows    []floorplan.Row        `json:"rows"`
	Summary *floorplan.AreaSummary `json:"summary,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type imageCell struct {
	floorplan.Resolution
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

type imageRow struct {
	Floor  string      `json:"floor"`
	Images []imageCell `json:"images"`
}

type legendEntry struct {
	Project string
	Color   template.CSS
}

// dashboardView feeds templates/dashboard.html. Every panel is computed
// independently so one failing panel leaves the others intact.
type dashboardView struct {
	Options   floorplan.Options
	Selection floorplan.Selection
	Query     template.URL
	Images    []imageRow
	Columns   []string
	Rows      [][]string
	Summary   *floorplan.AreaSummary
	TotalsErr string
	Totals    []floorplan.ProjectArea
	RoomErr   string
	Legend    []legendEntry
}

func imageRows(grid []floorplan.FloorImages) []imageRow {
	rows := make([]imageRow, len(grid))
	for i, g := range grid {
		rows[i] = imageRow{Floor: g.Floor, Images: make([]imageCell, len(g.Images))}
		for j, res := range g.Images {
			cell := imageCell{Resolution: res}
			switch res.Status {
			case floorplan.Found:
				cell.URL = "/images/" + url.PathEscape(res.Key)
			case floorplan.Unavailable:
				cell.Error = res.Err.Error()
			}
			rows[i].Images[j] = cell
		}
	}
	return rows
}

func tableRecords(t floorplan.Table) [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = row.ToRecord(len(t.Extra))
	}
	return records
}
