// Package dicomdir reads DICOMDIR file sets into a patient, study, series and
// image tree and indexes the referenced files by path.
package dicomdir

import (
	"errors"
	"fmt"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// ErrNotDICOMDIR is returned for buffers without the DICOM file preamble.
var ErrNotDICOMDIR = errors.New("not a DICOMDIR")

// Directory is a decoded DICOMDIR.
type Directory struct {
	FileSetID string
	Tree      *Tree
	Index     *Index
	// Records lists every directory record in sequence order.
	Records []Record
}

// Build decodes buf. A file without a directory record sequence yields an
// empty tree and no error.
func Build(buf []byte, opts ...Option) (*Directory, error) {
	o := newOptions(opts)

	ds, err := dicom.Decode(buf, o.decoderOptions()...)
	if err != nil {
		return emptyDirectory(), fmt.Errorf("%w: %w", ErrNotDICOMDIR, err)
	}
	if !ds.Preamble {
		return emptyDirectory(), fmt.Errorf("%w: missing DICM preamble", ErrNotDICOMDIR)
	}

	dir := emptyDirectory()
	dir.FileSetID = ds.Metadata.Text(dicom.TagFileSetID.Key())

	s := newScanner(buf, o)
	seq, ok := s.findSequence()
	if !ok {
		o.logger.Debug().Msg("no directory record sequence")
		return dir, nil
	}

	a := s.records(seq)
	dir.Records = a.records
	dir.Tree = assemble(a)
	dir.Index = newIndex(dir.Tree)
	o.logger.Debug().
		Int("records", len(a.records)).
		Int("patients", len(dir.Tree.Patients)).
		Int("paths", dir.Index.Len()).
		Msg("directory built")
	return dir, nil
}

func emptyDirectory() *Directory {
	t := &Tree{}
	return &Directory{Tree: t, Index: newIndex(t)}
}
