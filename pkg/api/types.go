package api

import (
	"html/template"
	"net/url"

	"floorplans/pkg/floorplan"
)

// Selection travels in the query string, one key per value:
//
//	?project=Sky+Towers&project=Green+Park&floor=Ground+Floor
//
// An absent key selects every value. A key present only with empty values
// selects nothing.
const (
	paramProject = "project"
	paramFloor   = "floor"
	paramFormat  = "format"
)

func selectionFromQuery(q url.Values, opts floorplan.Options) floorplan.Selection {
	return floorplan.NewSelection(
		selectedValues(q, paramProject, opts.Projects),
		selectedValues(q, paramFloor, opts.Floors),
	)
}

func selectedValues(q url.Values, key string, all []string) []string {
	values, ok := q[key]
	if !ok {
		return all
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// selectionQuery encodes s so that selectionFromQuery reads it back.
func selectionQuery(s floorplan.Selection) template.URL {
	q := url.Values{}
	q[paramProject] = nonEmpty(s.Projects)
	q[paramFloor] = nonEmpty(s.Floors)
	return template.URL(q.Encode())
}

func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}
