package floorplan

import (
	"sort"

	"github.com/montanaflynn/stats"
)

// ProjectArea is the total area of one project.
type ProjectArea struct {
	Project string  `json:"project"`
	Total   float64 `json:"total_area"`
}

// AreaSummary describes the area column of a table.
type AreaSummary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// areas parses every area of t, failing on the first bad cell.
func areas(t Table) ([]float64, error) {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := row.AreaSqft()
		if err != nil {
			return nil, &AggregationError{Row: i, Project: row.Project, Value: row.Area, Err: err}
		}
		values[i] = v
	}
	return values, nil
}

// SumAreaByProject totals the area per project, largest first. Projects
// with equal totals keep their first-seen order.
func SumAreaByProject(t Table) ([]ProjectArea, error) {
	values, err := areas(t)
	if err != nil {
		return nil, err
	}

	totals := []ProjectArea{}
	index := make(map[string]int)
	for i, row := range t.Rows {
		idx, ok := index[row.Project]
		if !ok {
			idx = len(totals)
			index[row.Project] = idx
			totals = append(totals, ProjectArea{Project: row.Project})
		}
		totals[idx].Total += values[i]
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals, nil
}

// RoomAreaView is the input of the room chart: the filtered rows as-is.
func RoomAreaView(t Table) Table {
	return t
}

// Summarize computes descriptive statistics over the area column. An
// empty table yields a zero summary.
func Summarize(t Table) (AreaSummary, error) {
	values, err := areas(t)
	if err != nil {
		return AreaSummary{}, err
	}
	if len(values) == 0 {
		return AreaSummary{}, nil
	}

	data := stats.Float64Data(values)
	summary := AreaSummary{Count: len(values)}
	if summary.Total, err = data.Sum(); err != nil {
		return AreaSummary{}, err
	}
	if summary.Mean, err = data.Mean(); err != nil {
		return AreaSummary{}, err
	}
	if summary.Median, err = data.Median(); err != nil {
		return AreaSummary{}, err
	}
	if summary.Min, err = data.Min(); err != nil {
		return AreaSummary{}, err
	}
	if summary.Max, err = data.Max(); err != nil {
		return AreaSummary{}, err
	}
	return summary, nil
}
