package floorplan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

const utf8BOM = "\ufeff"

// schema maps the required columns and any extras to input positions.
type schema struct {
	required [4]int
	extra    []int
	names    []string
}

func parseHeader(header []string) (schema, error) {
	s := schema{required: [4]int{-1, -1, -1, -1}}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		switch name {
		case ColumnProject:
			s.required[colProject] = i
		case ColumnFloor:
			s.required[colFloor] = i
		case ColumnRoomName:
			s.required[colRoomName] = i
		case ColumnArea:
			s.required[colArea] = i
		default:
			s.extra = append(s.extra, i)
			s.names = append(s.names, name)
		}
	}
	var missing []string
	for idx, pos := range s.required {
		if pos < 0 {
			missing = append(missing, Columns[idx])
		}
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return s, nil
}

func (s schema) row(record []string) (Row, error) {
	get := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}
	row := Row{
		Project:  get(s.required[colProject]),
		Floor:    get(s.required[colFloor]),
		RoomName: get(s.required[colRoomName]),
		Area:     get(s.required[colArea]),
	}
	if strings.TrimSpace(row.Project) == "" || strings.TrimSpace(row.Floor) == "" {
		return row, ErrEmptyKey
	}
	if len(s.extra) > 0 {
		row.Extra = make([]string, len(s.extra))
		for i, pos := range s.extra {
			row.Extra[i] = get(pos)
		}
	}
	return row, nil
}

// LoadCSV reads the floor-plan table from a comma-separated file.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := readCSV(f, path)
	if err != nil {
		return Table{}, err
	}
	log.WithFields(log.Fields{
		"path": path,
		"rows": t.Len(),
	}).Info("Loaded floor plan table")
	return t, nil
}

// ReadCSV parses a floor-plan table from r.
func ReadCSV(r io.Reader) (Table, error) {
	return readCSV(r, "csv")
}

func readCSV(r io.Reader, source string) (Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, &LoadError{Source: source, Err: errors.New("file is empty")}
	}
	if err != nil {
		return Table{}, csvLoadError(source, err)
	}
	s, err := parseHeader(header)
	if err != nil {
		return Table{}, &LoadError{Source: source, Line: 1, Err: err}
	}

	t := Table{Extra: s.names, Rows: []Row{}}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, csvLoadError(source, err)
		}
		row, err := s.row(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return Table{}, &LoadError{Source: source, Line: line, Err: err}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func csvLoadError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &LoadError{Source: source, Line: pe.Line, Err: pe.Err}
	}
	return &LoadError{Source: source, Err: err}
}

// LoadValues builds a table from a spreadsheet value grid whose first row
// is the header. Short rows are padded, fully blank rows are skipped.
func LoadValues(source string, values [][]interface{}) (Table, error) {
	if len(values) == 0 {
		return Table{}, &LoadError{Source: source, Err: errors.New("sheet is empty")}
	}
	s, err := parseHeader(cellsToStrings(values[0]))
	if err != nil {
		return Table{}, &LoadError{Source: source, Line: 1, Err: err}
	}

	t := Table{Extra: s.names, Rows: []Row{}}
	for i, cells := range values[1:] {
		record := cellsToStrings(cells)
		if isBlank(record) {
			continue
		}
		row, err := s.row(record)
		if err != nil {
			return Table{}, &LoadError{Source: source, Line: i + 2, Err: err}
		}
		t.Rows = append(t.Rows, row)
	}
	log.WithFields(log.Fields{
		"source": source,
		"rows":   t.Len(),
	}).Info("Loaded floor plan table from sheet")
	return t, nil
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = v
		case float64:
			out[i] = formatArea(v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
