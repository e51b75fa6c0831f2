package dicomdir

import (
	"github.com/mrsinham/dicomlens/internal/dicom"
)

// Directory record types.
const (
	TypePatient = "PATIENT"
	TypeStudy   = "STUDY"
	TypeSeries  = "SERIES"
	TypeImage   = "IMAGE"
)

// inUseInactive is the Record In-use Flag value of a deleted record.
const inUseInactive = 0x0000

// RecordHeader holds what every directory record carries.
type RecordHeader struct {
	// Offset is the position of the record's item tag, the value other
	// records use to reference it.
	Offset        int
	ContentOffset int
	NextOffset    uint32
	LowerOffset   uint32
	Type          string
	InUse         bool
	// Fields holds the remaining decoded elements by tag key.
	Fields dicom.Metadata
}

// Header returns the shared record fields.
func (h RecordHeader) Header() RecordHeader { return h }

func (h RecordHeader) text(t dicom.Tag) string {
	return h.Fields.Text(t.Key())
}

// Record is one of PatientRecord, StudyRecord, SeriesRecord, ImageRecord or
// OtherRecord.
type Record interface {
	Header() RecordHeader
	isRecord()
}

// PatientRecord is a PATIENT directory record.
type PatientRecord struct {
	RecordHeader
}

// StudyRecord is a STUDY directory record.
type StudyRecord struct {
	RecordHeader
}

// SeriesRecord is a SERIES directory record.
type SeriesRecord struct {
	RecordHeader
}

// ImageRecord is an IMAGE directory record referencing one file.
type ImageRecord struct {
	RecordHeader
	// FileID is the Referenced File ID, components separated by '\'.
	FileID string
}

// OtherRecord is any record type the tree does not model, such as PRIVATE
// or SR DOCUMENT.
type OtherRecord struct {
	RecordHeader
}

func (PatientRecord) isRecord() {}
func (StudyRecord) isRecord()   {}
func (SeriesRecord) isRecord()  {}
func (ImageRecord) isRecord()   {}
func (OtherRecord) isRecord()   {}

func newRecord(h RecordHeader, fileID string) Record {
	switch h.Type {
	case TypePatient:
		return PatientRecord{h}
	case TypeStudy:
		return StudyRecord{h}
	case TypeSeries:
		return SeriesRecord{h}
	case TypeImage:
		return ImageRecord{RecordHeader: h, FileID: fileID}
	default:
		return OtherRecord{h}
	}
}

// level returns the depth of r in the patient hierarchy, or -1.
func level(r Record) int {
	switch r.(type) {
	case PatientRecord:
		return 0
	case StudyRecord:
		return 1
	case SeriesRecord:
		return 2
	case ImageRecord:
		return 3
	default:
		return -1
	}
}
