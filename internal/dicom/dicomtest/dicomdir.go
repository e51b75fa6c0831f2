package dicomtest

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

const (
	// MediaStorageDirectoryStorage is the SOP class of a DICOMDIR.
	MediaStorageDirectoryStorage = "1.2.840.10008.1.3.10"
	ImplementationClassUID       = "1.2.826.0.1.3680043.8.498"
	fileSetInstanceUID           = "1.2.826.0.1.3680043.8.498.1"

	// offsetSearchWindow bounds the search for an offset tag after a record start.
	offsetSearchWindow = 500
)

// Archive describes the file set a DICOMDIR indexes.
type Archive struct {
	Patients []Patient
}

type Patient struct {
	Name      string
	ID        string
	BirthDate string
	Sex       string
	Studies   []Study
}

type Study struct {
	UID             string
	ID              string
	Date            string
	Time            string
	AccessionNumber string
	Description     string
	Series          []Series
}

type Series struct {
	UID         string
	Number      int
	Modality    string
	Description string
	Date        string
	Time        string
	Images      []Image
}

type Image struct {
	Number            int
	FileID            string
	SOPClassUID       string
	SOPInstanceUID    string
	TransferSyntaxUID string
	// Inactive marks the record as not in use.
	Inactive bool
}

// DirOption configures BuildDICOMDIR.
type DirOption func(*dirOptions)

type dirOptions struct {
	undefinedItems bool
	zeroOffsets    bool
	syntax         dicom.TransferSyntax
	extra          []string
}

// WithUndefinedLengthItems writes every record as an undefined-length item
// closed by an item delimiter.
func WithUndefinedLengthItems() DirOption {
	return func(o *dirOptions) { o.undefinedItems = true }
}

// WithZeroOffsets leaves every next and lower-level offset at 0, as some
// writers do.
func WithZeroOffsets() DirOption {
	return func(o *dirOptions) { o.zeroOffsets = true }
}

// WithSyntax writes the directory dataset in ts instead of explicit VR
// little endian.
func WithSyntax(ts dicom.TransferSyntax) DirOption {
	return func(o *dirOptions) { o.syntax = ts }
}

// WithTrailingRecord appends a record of an unlisted type after the archive.
func WithTrailingRecord(recordType string) DirOption {
	return func(o *dirOptions) { o.extra = append(o.extra, recordType) }
}

// record is one directory record before offsets are known.
type record struct {
	Type    string
	inUse   bool
	content func(b *Builder)
}

// flatten lists the records of a in depth-first order, the order readers
// expect when offsets are missing.
func (a Archive) flatten() []record {
	var records []record
	for _, p := range a.Patients {
		records = append(records, record{Type: "PATIENT", inUse: true, content: func(b *Builder) {
			b.String(dicom.TagPatientName, dicom.VRPN, p.Name)
			b.String(dicom.TagPatientID, dicom.VRLO, p.ID)
			b.String(dicom.TagPatientBirthDate, dicom.VRDA, p.BirthDate)
			b.String(dicom.TagPatientSex, dicom.VRCS, p.Sex)
		}})
		for _, st := range p.Studies {
			records = append(records, record{Type: "STUDY", inUse: true, content: func(b *Builder) {
				b.String(dicom.TagStudyDate, dicom.VRDA, st.Date)
				b.String(dicom.TagStudyTime, dicom.VRTM, st.Time)
				b.String(dicom.TagAccessionNumber, dicom.VRSH, st.AccessionNumber)
				b.String(dicom.TagStudyDescription, dicom.VRLO, st.Description)
				b.String(dicom.TagStudyInstanceUID, dicom.VRUI, st.UID)
				b.String(dicom.TagStudyID, dicom.VRSH, st.ID)
			}})
			for _, se := range st.Series {
				records = append(records, record{Type: "SERIES", inUse: true, content: func(b *Builder) {
					b.String(dicom.TagSeriesDate, dicom.VRDA, se.Date)
					b.String(dicom.TagSeriesTime, dicom.VRTM, se.Time)
					b.String(dicom.TagModality, dicom.VRCS, se.Modality)
					b.String(dicom.TagSeriesDescription, dicom.VRLO, se.Description)
					b.String(dicom.TagSeriesInstanceUID, dicom.VRUI, se.UID)
					b.String(dicom.TagSeriesNumber, dicom.VRIS, strconv.Itoa(se.Number))
				}})
				for _, im := range se.Images {
					records = append(records, record{Type: "IMAGE", inUse: !im.Inactive, content: func(b *Builder) {
						b.String(dicom.TagReferencedFileID, dicom.VRCS, im.FileID)
						b.String(dicom.TagReferencedSOPClassUIDInFile, dicom.VRUI, im.SOPClassUID)
						b.String(dicom.TagReferencedSOPInstanceUID, dicom.VRUI, im.SOPInstanceUID)
						b.String(dicom.TagReferencedTransferSyntaxUID, dicom.VRUI, im.TransferSyntaxUID)
						b.String(dicom.TagSOPClassUID, dicom.VRUI, im.SOPClassUID)
						b.String(dicom.TagSOPInstanceUID, dicom.VRUI, im.SOPInstanceUID)
						b.String(dicom.TagInstanceNumber, dicom.VRIS, strconv.Itoa(im.Number))
					}})
				}
			}
		}
	}
	return records
}

// BuildDICOMDIR encodes a as a DICOMDIR whose record offsets point at the
// item tag of each record.
func BuildDICOMDIR(a Archive, opts ...DirOption) []byte {
	o := dirOptions{syntax: dicom.ExplicitVRLittleEndian}
	for _, opt := range opts {
		opt(&o)
	}

	records := a.flatten()
	for _, t := range o.extra {
		records = append(records, record{Type: t, inUse: true, content: func(*Builder) {}})
	}

	b := NewBuilder(o.syntax).
		Preamble().
		Meta(MediaStorageDirectoryStorage, fileSetInstanceUID, o.syntax.UID)
	b.String(dicom.TagFileSetID, dicom.VRCS, "DICOMLENS")
	b.UL(dicom.TagOffsetOfFirstRootRecord, 0)
	b.UL(dicom.TagOffsetOfLastRootRecord, 0)
	b.US(dicom.TagFileSetConsistencyFlag, 0)
	b.BeginSequence(dicom.TagDirectoryRecordSequence)

	positions := make([]int, len(records))
	for i, rec := range records {
		item := b.Child()
		item.UL(dicom.TagOffsetOfNextRecord, 0)
		inUse := uint16(0xFFFF)
		if !rec.inUse {
			inUse = 0
		}
		item.US(dicom.TagRecordInUseFlag, inUse)
		item.UL(dicom.TagOffsetOfLowerLevelEntity, 0)
		item.String(dicom.TagDirectoryRecordType, dicom.VRCS, rec.Type)
		rec.content(item)

		positions[i] = b.Len()
		if o.undefinedItems {
			b.BeginItem().Raw(item.Bytes()).EndItem()
		} else {
			b.Item(item.Bytes())
		}
	}
	b.EndSequence()

	buf := b.Bytes()
	if o.zeroOffsets || len(records) == 0 {
		return buf
	}

	order := o.syntax.Order
	links := linkRecords(records, positions)
	var roots []int
	for i, rec := range records {
		if recordLevel(rec.Type) == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) > 0 {
		putUint32After(buf, 0, dicom.TagOffsetOfFirstRootRecord, uint32(positions[roots[0]]), order)
		putUint32After(buf, 0, dicom.TagOffsetOfLastRootRecord, uint32(positions[roots[len(roots)-1]]), order)
	}
	for i, pos := range positions {
		putUint32After(buf, pos, dicom.TagOffsetOfNextRecord, links[i].Next, order)
		putUint32After(buf, pos, dicom.TagOffsetOfLowerLevelEntity, links[i].Lower, order)
	}
	return buf
}

// recordLinks holds the offsets one record points at.
type recordLinks struct {
	Next  uint32
	Lower uint32
}

// linkRecords derives next-sibling and first-child offsets from the record
// order: each record is a child of the closest preceding record one level up.
func linkRecords(records []record, positions []int) []recordLinks {
	links := make([]recordLinks, len(records))

	type open struct {
		index     int
		lastChild int
	}
	var stack []open
	lastRoot := -1

	for i, rec := range records {
		level := recordLevel(rec.Type)
		if level < 0 {
			continue
		}
		for len(stack) > level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			if lastRoot >= 0 {
				links[lastRoot].Next = uint32(positions[i])
			}
			lastRoot = i
		} else {
			parent := &stack[len(stack)-1]
			if parent.lastChild < 0 {
				links[parent.index].Lower = uint32(positions[i])
			} else {
				links[parent.lastChild].Next = uint32(positions[i])
			}
			parent.lastChild = i
		}
		stack = append(stack, open{index: i, lastChild: -1})
	}
	return links
}

func recordLevel(recordType string) int {
	switch recordType {
	case "PATIENT":
		return 0
	case "STUDY":
		return 1
	case "SERIES":
		return 2
	case "IMAGE":
		return 3
	default:
		return -1
	}
}

// putUint32After overwrites the 4-byte value of the first t at or after
// start, searching at most offsetSearchWindow bytes unless start is 0.
func putUint32After(buf []byte, start int, t dicom.Tag, v uint32, order binary.ByteOrder) bool {
	pos := findTagAfter(buf, start, t, order)
	if pos < 0 || pos+12 > len(buf) {
		return false
	}
	order.PutUint32(buf[pos+8:], v)
	return true
}

func findTagAfter(buf []byte, start int, t dicom.Tag, order binary.ByteOrder) int {
	needle := make([]byte, 4)
	order.PutUint16(needle[0:2], t.Group)
	order.PutUint16(needle[2:4], t.Element)

	end := len(buf) - 4
	if start > 0 {
		end = min(end, start+offsetSearchWindow)
	}
	for i := start; i <= end; i++ {
		if bytes.Equal(buf[i:i+4], needle) {
			return i
		}
	}
	return -1
}

// FileIDs lists the referenced file IDs of every image in a.
func (a Archive) FileIDs() []string {
	var ids []string
	for _, p := range a.Patients {
		for _, st := range p.Studies {
			for _, se := range st.Series {
				for _, im := range se.Images {
					ids = append(ids, im.FileID)
				}
			}
		}
	}
	return ids
}

// Chain returns a single patient, study, series and image archive
// referencing fileID.
func Chain(fileID string) Archive {
	return Archive{Patients: []Patient{{
		Name: "DOE^JANE", ID: "PAT001", BirthDate: "19800101", Sex: "F",
		Studies: []Study{{
			UID: "1.2.3.1", ID: "ST1", Date: "20240115", Time: "101500",
			AccessionNumber: "ACC001", Description: "Brain MRI",
			Series: []Series{{
				UID: "1.2.3.1.1", Number: 1, Modality: "MR", Description: "T1 AX",
				Date: "20240115", Time: "102000",
				Images: []Image{{
					Number: 1, FileID: fileID,
					SOPClassUID:       "1.2.840.10008.5.1.4.1.1.4",
					SOPInstanceUID:    "1.2.3.1.1.1",
					TransferSyntaxUID: dicom.ExplicitVRLittleEndian.UID,
				}},
			}},
		}},
	}}}
}
