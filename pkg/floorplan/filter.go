package floorplan

// Options are the distinct filter values of a table in first-seen order.
type Options struct {
	Projects []string `json:"projects"`
	Floors   []string `json:"floors"`
}

// Selection is the chosen subset of projects and floors. Order matters
// only for display and image grid layout. The fields may be edited
// directly; membership is always read from them.
type Selection struct {
	Projects []string `json:"projects"`
	Floors   []string `json:"floors"`
}

// Distinct collects the project and floor values of t.
func Distinct(t Table) Options {
	opts := Options{Projects: []string{}, Floors: []string{}}
	seenProjects := make(map[string]struct{})
	seenFloors := make(map[string]struct{})
	for _, row := range t.Rows {
		if _, ok := seenProjects[row.Project]; !ok {
			seenProjects[row.Project] = struct{}{}
			opts.Projects = append(opts.Projects, row.Project)
		}
		if _, ok := seenFloors[row.Floor]; !ok {
			seenFloors[row.Floor] = struct{}{}
			opts.Floors = append(opts.Floors, row.Floor)
		}
	}
	return opts
}

// DefaultSelection selects every project and floor in t.
func DefaultSelection(t Table) Selection {
	opts := Distinct(t)
	return NewSelection(opts.Projects, opts.Floors)
}

// NewSelection de-duplicates the given values, keeping first occurrences.
// Values that do not occur in the table are kept; they match no rows.
func NewSelection(projects, floors []string) Selection {
	return Selection{
		Projects: dedupe(projects),
		Floors:   dedupe(floors),
	}
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// HasProject reports whether project is selected.
func (s Selection) HasProject(project string) bool {
	return contains(s.Projects, project)
}

// HasFloor reports whether floor is selected.
func (s Selection) HasFloor(floor string) bool {
	return contains(s.Floors, floor)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Filter returns the rows of t whose project and floor are both selected,
// in table order.
func Filter(t Table, s Selection) Table {
	projects, floors := toSet(s.Projects), toSet(s.Floors)
	out := Table{Extra: t.Extra, Rows: make([]Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		_, p := projects[row.Project]
		_, f := floors[row.Floor]
		if p && f {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
