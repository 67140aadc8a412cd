package api

import (
	"encoding/json"
	"html"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"floorplans/pkg/floorplan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageSrc = regexp.MustCompile(`<img src="(/images/[^"]+)"`)

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	GetRouter(h).ServeHTTP(rec, req)
	return rec
}

func TestSelectionFromQuery(t *testing.T) {
	opts := floorplan.Options{
		Projects: []string{"Sky Towers", "Green Park"},
		Floors:   []string{"Ground Floor", "First Floor"},
	}
	tests := []struct {
		name             string
		query            string
		projects, floors []string
	}{
		{"absent keys select all", "", opts.Projects, opts.Floors},
		{"empty value selects none", "project=&floor=Ground+Floor", []string{}, []string{"Ground Floor"}},
		{"duplicates collapse", "project=Green+Park&project=Green+Park&project=", []string{"Green Park"}, opts.Floors},
		{"unknown values are kept", "floor=Roof", opts.Projects, []string{"Roof"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			sel := selectionFromQuery(q, opts)
			assert.Equal(t, tt.projects, sel.Projects)
			assert.Equal(t, tt.floors, sel.Floors)
		})
	}
}

func TestSelectionQueryRoundTrip(t *testing.T) {
	opts := floorplan.Options{Projects: []string{"A", "B"}, Floors: []string{"1F"}}
	for _, sel := range []floorplan.Selection{
		floorplan.NewSelection([]string{"B"}, []string{"1F"}),
		floorplan.NewSelection(nil, []string{"1F"}),
		floorplan.NewSelection([]string{"A", "B"}, nil),
	} {
		q, err := url.ParseQuery(string(selectionQuery(sel)))
		require.NoError(t, err)
		got := selectionFromQuery(q, opts)
		assert.Equal(t, sel.Projects, got.Projects)
		assert.Equal(t, sel.Floors, got.Floors)
	}
}

func TestIndex(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Sky Towers" selected>`)
	assert.Contains(t, body, `src="/images/sky_towers_groundfloor.jpg"`)
	assert.Contains(t, body, "Image not found")
	assert.Contains(t, body, "Image unavailable")
	assert.Contains(t, body, "/charts/project-area.png?")
	assert.Contains(t, body, "/export.csv?")
	assert.Contains(t, body, "4 rooms, total 1060.0 sqft")
}

func TestIndexEmptySelection(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/?project=")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Sky Towers">`)
	assert.Contains(t, body, "No rows match the current filters.")
	assert.NotContains(t, body, "/charts/project-area.png?")
	assert.NotContains(t, body, "Image not found")
}

func TestIndexBadArea(t *testing.T) {
	table := testTable()
	table.Rows[1].Area = "n/a"
	h := newTestHandler(t, table)
	rec := serve(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, "n/a")
	// The image grid and table still render.
	assert.Contains(t, body, `src="/images/sky_towers_groundfloor.jpg"`)
	assert.Contains(t, body, "<td>Bedroom</td>")

	// One failure for the table summary, one for the project totals.
	metrics := serve(t, h, "/metrics").Body.String()
	assert.Contains(t, metrics, "floorplans_aggregation_errors_total 2")
}

func TestIndexImageURLsAreEscaped(t *testing.T) {
	table := floorplan.NewTable(
		floorplan.NewRow("Tower #2", "1F", "Living", 300),
		floorplan.NewRow("Q? Park", "1F", "Living", 250),
		floorplan.NewRow("50% Plaza", "1F", "Living", 200),
	)
	images := fstest.MapFS{
		"tower_#2_1f.jpg":  {Data: jpegBytes},
		"q?_park_1f.jpg":   {Data: jpegBytes},
		"50%_plaza_1f.jpg": {Data: jpegBytes},
	}
	h, err := NewHandler(table, floorplan.NewResolver(images, "floorplans"))
	require.NoError(t, err)

	rec := serve(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	srcs := imageSrc.FindAllStringSubmatch(rec.Body.String(), -1)
	require.Len(t, srcs, 3)

	for _, m := range srcs {
		src := html.UnescapeString(m[1])
		assert.NotContains(t, src, "?", src)
		assert.NotContains(t, src, "#", src)
		img := serve(t, h, src)
		assert.Equal(t, http.StatusOK, img.Code, src)
		assert.Equal(t, jpegBytes, img.Body.Bytes(), src)
	}

	var rows []struct {
		Images []struct{ URL string }
	}
	require.NoError(t, json.Unmarshal(serve(t, h, "/api/images").Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "/images/q%3F_park_1f.jpg", rows[0].Images[1].URL)
}

func TestGetOptions(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts floorplan.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Sky Towers", "Green Park"}, opts.Projects)
	assert.Equal(t, []string{"Ground Floor", "First Floor"}, opts.Floors)
}

func TestGetRows(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/api/rows?project=Green+Park&floor=First+Floor")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, floorplan.Columns, resp.Columns)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Bedroom", resp.Rows[0].RoomName)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 150.0, resp.Summary.Total)
}

func TestGetImages(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/api/images?floor=First+Floor")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []struct {
		Floor  string
		Images []struct {
			Project string
			Key     string
			Status  string
			URL     string
			Error   string
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "First Floor", rows[0].Floor)
	require.Len(t, rows[0].Images, 2)

	sky, green := rows[0].Images[0], rows[0].Images[1]
	assert.Equal(t, "sky_towers_firstfloor.jpg", sky.Key)
	assert.Equal(t, "missing", sky.Status)
	assert.Empty(t, sky.URL)
	assert.Equal(t, "unavailable", green.Status)
	assert.NotEmpty(t, green.Error)
}

func TestGetTotals(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/api/totals")
	require.Equal(t, http.StatusOK, rec.Code)

	var totals []floorplan.ProjectArea
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, []floorplan.ProjectArea{
		{Project: "Green Park", Total: 560},
		{Project: "Sky Towers", Total: 500},
	}, totals)
}

func TestGetTotalsBadArea(t *testing.T) {
	table := testTable()
	table.Rows[0].Area = ""
	rec := serve(t, newTestHandler(t, table), "/api/totals")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Filtering the bad row out makes the totals computable again.
	rec = serve(t, newTestHandler(t, table), "/api/totals?floor=First+Floor")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetImage(t *testing.T) {
	h := newTestHandler(t, testTable())

	rec := serve(t, h, "/images/sky_towers_groundfloor.jpg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, jpegBytes, rec.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, serve(t, h, "/images/sky_towers_firstfloor.jpg").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, h, "/images/green_park_firstfloor.jpg").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, "/images/..").Code)
}

func TestExportCSV(t *testing.T) {
	h := newTestHandler(t, testTable())
	for _, target := range []string{
		"/export.csv?floor=Ground+Floor",
		"/export?format=csv&floor=Ground+Floor",
		"/export?floor=Ground+Floor",
	} {
		rec := serve(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="filtered_floor_plans.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Project,Floor,Room Name,Area (sqft)\n"+
			"Sky Towers,Ground Floor,Living,320\n"+
			"Green Park,Ground Floor,Living,410\n", rec.Body.String())
	}
}

func TestExportEmptySelection(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/export.csv?project=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project,Floor,Room Name,Area (sqft)\n", rec.Body.String())
}

func TestExportXLSX(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, floorplan.WorkbookContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), floorplan.WorkbookFilename)
	// xlsx is a zip archive.
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestExportUnknownFormat(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/export.pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported export format")
}

func TestCharts(t *testing.T) {
	h := newTestHandler(t, testTable())
	for _, path := range []string{"/charts/project-area.png", "/charts/room-area.png"} {
		rec := serve(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		_, err := png.Decode(rec.Body)
		assert.NoError(t, err, path)

		rec = serve(t, h, path+"?floor=")
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}
}

func TestChartsBadArea(t *testing.T) {
	table := testTable()
	table.Rows[2].Area = "abc"
	h := newTestHandler(t, table)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(t, h, "/charts/project-area.png").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(t, h, "/charts/room-area.png").Code)
}

func TestMetrics(t *testing.T) {
	h := newTestHandler(t, testTable())
	serve(t, h, "/")
	serve(t, h, "/export.csv")

	rec := serve(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "floorplans_table_rows 4")
	assert.Contains(t, body, `floorplans_exports_total{format="csv"} 1`)
	assert.Contains(t, body, `floorplans_image_lookups_total{status="missing"} 1`)
	assert.Contains(t, body, `floorplans_renders_total{panel="dashboard"} 1`)
}

func TestHealth(t *testing.T) {
	rec := serve(t, newTestHandler(t, testTable()), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
