package dicomdir

import (
	"sort"
	"strings"
)

// Snapshot is a copy of one image leaf and its ancestors. Child lists of
// the copies are nil.
type Snapshot struct {
	Patient Patient `json:"patient"`
	Study   Study   `json:"study"`
	Series  Series  `json:"series"`
	Image   Image   `json:"image"`
}

// Index maps normalized referenced file paths to snapshots.
type Index struct {
	entries map[string]Snapshot
	paths   []string
}

func newIndex(t *Tree) *Index {
	ix := &Index{entries: map[string]Snapshot{}}
	t.Walk(func(p *Patient, st *Study, se *Series, im *Image) {
		if im.FilePath == "" {
			return
		}
		snap := Snapshot{Patient: *p, Study: *st, Series: *se, Image: *im}
		snap.Patient.Studies = nil
		snap.Study.Series = nil
		snap.Series.Images = nil
		ix.entries[NormalizePath(im.FilePath)] = snap
	})
	for path := range ix.entries {
		ix.paths = append(ix.paths, path)
	}
	sort.Strings(ix.paths)
	return ix
}

// NormalizePath converts DICOM '\' separators to '/'.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Lookup finds the snapshot for path. An exact match wins; otherwise the
// first indexed path (in sorted order) that ends with path, or that path
// ends with, is used, so relative and absolute forms both resolve.
func (ix *Index) Lookup(path string) (Snapshot, bool) {
	path = NormalizePath(path)
	if path == "" {
		return Snapshot{}, false
	}
	if s, ok := ix.entries[path]; ok {
		return s, true
	}
	for _, p := range ix.paths {
		if strings.HasSuffix(path, p) || strings.HasSuffix(p, path) {
			return ix.entries[p], true
		}
	}
	return Snapshot{}, false
}

// Len returns the number of indexed paths.
func (ix *Index) Len() int { return len(ix.paths) }

// Paths returns the indexed paths in sorted order.
func (ix *Index) Paths() []string {
	return append([]string(nil), ix.paths...)
}
