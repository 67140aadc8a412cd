package floorplan

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ImageExt is the extension of every floor-plan image.
const ImageExt = ".jpg"

// ImageKey derives the image file name for a project and floor. Spaces in
// the project become underscores, spaces in the floor are dropped.
func ImageKey(project, floor string) string {
	p := strings.ReplaceAll(strings.ToLower(project), " ", "_")
	f := strings.ReplaceAll(strings.ToLower(floor), " ", "")
	return p + "_" + f + ImageExt
}

type Status int

const (
	Found Status = iota
	Missing
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Missing:
		return "missing"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolution is the lookup outcome for one (floor, project) cell of the
// image grid. Err is set only when Status is Unavailable.
type Resolution struct {
	Floor   string `json:"floor"`
	Project string `json:"project"`
	Key     string `json:"key"`
	Path    string `json:"path,omitempty"`
	Status  Status `json:"status"`
	Err     error  `json:"-"`
}

// FloorImages is one row of the image grid.
type FloorImages struct {
	Floor  string       `json:"floor"`
	Images []Resolution `json:"images"`
}

// Resolver checks floor-plan images for existence. Nothing is decoded.
type Resolver struct {
	fsys fs.FS
	dir  string
}

// NewResolver looks images up in fsys; dir is only used to report paths.
func NewResolver(fsys fs.FS, dir string) *Resolver {
	return &Resolver{fsys: fsys, dir: dir}
}

// NewDirResolver looks images up in a directory on disk.
func NewDirResolver(dir string) *Resolver {
	return NewResolver(os.DirFS(dir), dir)
}

// Dir is the directory images are reported under.
func (r *Resolver) Dir() string {
	return r.dir
}

// FS is the filesystem images are read from.
func (r *Resolver) FS() fs.FS {
	return r.fsys
}

// Lookup resolves a single project and floor.
func (r *Resolver) Lookup(project, floor string) Resolution {
	key := ImageKey(project, floor)
	res := Resolution{Floor: floor, Project: project, Key: key}

	info, err := r.stat(key)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Status = Missing
	case err != nil:
		res.Status = Unavailable
		res.Err = &ResolveError{Key: key, Err: err}
	case !info.Mode().IsRegular():
		res.Status = Unavailable
		res.Err = &ResolveError{Key: key, Err: ErrNotRegular}
	default:
		res.Status = Found
		res.Path = filepath.Join(r.dir, key)
	}
	return res
}

func (r *Resolver) stat(key string) (fs.FileInfo, error) {
	if !fs.ValidPath(key) || path.Base(key) != key {
		return nil, &fs.PathError{Op: "stat", Path: key, Err: fs.ErrInvalid}
	}
	return fs.Stat(r.fsys, key)
}

// Resolve yields one resolution per selected floor and project, floors in
// the outer loop. The sequence is lazy and can be ranged over repeatedly.
func (r *Resolver) Resolve(s Selection) iter.Seq[Resolution] {
	return func(yield func(Resolution) bool) {
		for _, floor := range s.Floors {
			for _, project := range s.Projects {
				if !yield(r.Lookup(project, floor)) {
					return
				}
			}
		}
	}
}

// Grid collects Resolve into one entry per floor.
func (r *Resolver) Grid(s Selection) []FloorImages {
	grid := make([]FloorImages, len(s.Floors))
	for i, floor := range s.Floors {
		grid[i] = FloorImages{Floor: floor, Images: make([]Resolution, 0, len(s.Projects))}
	}
	i := 0
	for res := range r.Resolve(s) {
		row := &grid[i/len(s.Projects)]
		row.Images = append(row.Images, res)
		i++
	}
	return grid
}

// Open returns the image for key if it resolves to a regular file.
func (r *Resolver) Open(key string) (fs.File, error) {
	info, err := r.stat(key)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &ResolveError{Key: key, Err: ErrNotRegular}
	}
	return r.fsys.Open(key)
}
