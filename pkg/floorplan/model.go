package floorplan

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	ColumnProject  = "Project"
	ColumnFloor    = "Floor"
	ColumnRoomName = "Room Name"
	ColumnArea     = "Area (sqft)"
)

// Columns is the fixed part of the schema, in export order.
var Columns = []string{ColumnProject, ColumnFloor, ColumnRoomName, ColumnArea}

type colIdx int

const (
	colProject colIdx = iota
	colFloor
	colRoomName
	colArea
)

// Row is one room entry. Area holds the cell text as it was read so that
// exports reproduce the input byte for byte.
type Row struct {
	Project  string   `json:"project"`
	Floor    string   `json:"floor"`
	RoomName string   `json:"room_name"`
	Area     string   `json:"area"`
	Extra    []string `json:"extra,omitempty"`
}

// Table is an ordered set of rows sharing one schema. Extra names the
// additional input columns, matching Row.Extra position for position.
type Table struct {
	Extra []string `json:"extra_columns,omitempty"`
	Rows  []Row    `json:"rows"`
}

// NewRow builds a row from a numeric area.
func NewRow(project, floor, roomName string, area float64) Row {
	return Row{
		Project:  project,
		Floor:    floor,
		RoomName: roomName,
		Area:     formatArea(area),
	}
}

// NewTable returns a table with the base schema only.
func NewTable(rows ...Row) Table {
	return Table{Rows: rows}
}

// AreaSqft parses the area cell. Empty, non-numeric, NaN and infinite
// values are reported as errors.
func (r Row) AreaSqft() (float64, error) {
	s := strings.TrimSpace(r.Area)
	if s == "" {
		return 0, fmt.Errorf("area is empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("area %q is not numeric", r.Area)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("area %q is not a finite number", r.Area)
	}
	return v, nil
}

// Header returns the column names in export order.
func (t Table) Header() []string {
	header := make([]string, 0, len(Columns)+len(t.Extra))
	header = append(header, Columns...)
	return append(header, t.Extra...)
}

// ToRecord flattens a row in the same order as Table.Header.
func (r Row) ToRecord(extraCols int) []string {
	record := make([]string, 0, len(Columns)+extraCols)
	record = append(record, r.Project, r.Floor, r.RoomName, r.Area)
	for i := 0; i < extraCols; i++ {
		if i < len(r.Extra) {
			record = append(record, r.Extra[i])
		} else {
			record = append(record, "")
		}
	}
	return record
}

// Len is the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

func formatArea(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
