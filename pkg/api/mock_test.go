package api

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"floorplans/pkg/floorplan"

	"github.com/stretchr/testify/require"
)

// deniedFS refuses to stat the listed names.
type deniedFS struct {
	fstest.MapFS
	denied map[string]bool
}

func (f deniedFS) Stat(name string) (fs.FileInfo, error) {
	if f.denied[name] {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
	}
	return f.MapFS.Stat(name)
}

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xff, 0xd9}

func testTable() floorplan.Table {
	return floorplan.NewTable(
		floorplan.NewRow("Sky Towers", "Ground Floor", "Living", 320),
		floorplan.NewRow("Sky Towers", "First Floor", "Bedroom", 180),
		floorplan.NewRow("Green Park", "Ground Floor", "Living", 410),
		floorplan.NewRow("Green Park", "First Floor", "Bedroom", 150),
	)
}

func testImages() fs.FS {
	return deniedFS{
		MapFS: fstest.MapFS{
			"sky_towers_groundfloor.jpg": {Data: jpegBytes},
			"green_park_groundfloor.jpg": {Data: jpegBytes},
			"green_park_firstfloor.jpg":  {Data: jpegBytes},
		},
		denied: map[string]bool{"green_park_firstfloor.jpg": true},
	}
}

func newTestHandler(t *testing.T, table floorplan.Table) *Handler {
	t.Helper()
	h, err := NewHandler(table, floorplan.NewResolver(testImages(), "floorplans"))
	require.NoError(t, err)
	return h
}
