package dicom

import (
	"fmt"
	"strconv"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Tag identifies a data element by its (group, element) pair.
type Tag struct {
	Group   uint16
	Element uint16
}

func fromLib(t tag.Tag) Tag {
	return Tag{Group: t.Group, Element: t.Element}
}

// Lib returns the tag in the form used by the reference dictionary.
func (t Tag) Lib() tag.Tag {
	return tag.Tag{Group: t.Group, Element: t.Element}
}

// Key returns the canonical metadata key: eight uppercase hex digits.
func (t Tag) Key() string {
	return fmt.Sprintf("%04X%04X", t.Group, t.Element)
}

func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// Keyword returns the dictionary keyword of the tag ("PatientName"), or ""
// when the tag is not in the dictionary (private and unknown tags).
func (t Tag) Keyword() string {
	info, err := tag.Find(t.Lib())
	if err != nil {
		return ""
	}
	return info.Keyword
}

// Name returns the human-readable dictionary label ("Patient's Name"), or ""
// for tags outside the dictionary.
func (t Tag) Name() string {
	info, err := tag.Find(t.Lib())
	if err != nil {
		return ""
	}
	return info.Name
}

// IsFraming reports whether t is one of the item or delimiter tags of group FFFE.
func (t Tag) IsFraming() bool {
	return t.Group == 0xFFFE
}

// ParseKey parses a canonical metadata key back into a tag.
func ParseKey(key string) (Tag, error) {
	if len(key) != 8 {
		return Tag{}, fmt.Errorf("parse tag key %q: want 8 hex digits", key)
	}
	group, err := strconv.ParseUint(key[:4], 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("parse tag key %q: %w", key, err)
	}
	element, err := strconv.ParseUint(key[4:], 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("parse tag key %q: %w", key, err)
	}
	return Tag{Group: uint16(group), Element: uint16(element)}, nil
}

// Framing tags and tags missing from the reference dictionary.
var (
	TagItem                 = Tag{Group: 0xFFFE, Element: 0xE000}
	TagItemDelimitation     = Tag{Group: 0xFFFE, Element: 0xE00D}
	TagSequenceDelimitation = Tag{Group: 0xFFFE, Element: 0xE0DD}
	TagEncapsulatedDocument = Tag{Group: 0x0042, Element: 0x0011}
)

// File meta information.
var (
	TagFileMetaInformationVersion  = fromLib(tag.FileMetaInformationVersion)
	TagMediaStorageSOPClassUID     = fromLib(tag.MediaStorageSOPClassUID)
	TagMediaStorageSOPInstanceUID  = fromLib(tag.MediaStorageSOPInstanceUID)
	TagTransferSyntaxUID           = fromLib(tag.TransferSyntaxUID)
	TagImplementationClassUID      = fromLib(tag.ImplementationClassUID)
	TagFileSetID                   = fromLib(tag.FileSetID)
	TagFileSetConsistencyFlag      = fromLib(tag.FileSetConsistencyFlag)
	TagOffsetOfFirstRootRecord     = fromLib(tag.OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity)
	TagOffsetOfLastRootRecord      = fromLib(tag.OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity)
	TagDirectoryRecordSequence     = fromLib(tag.DirectoryRecordSequence)
	TagOffsetOfNextRecord          = fromLib(tag.OffsetOfTheNextDirectoryRecord)
	TagRecordInUseFlag             = fromLib(tag.RecordInUseFlag)
	TagOffsetOfLowerLevelEntity    = fromLib(tag.OffsetOfReferencedLowerLevelDirectoryEntity)
	TagDirectoryRecordType         = fromLib(tag.DirectoryRecordType)
	TagReferencedFileID            = fromLib(tag.ReferencedFileID)
	TagReferencedSOPClassUIDInFile = fromLib(tag.ReferencedSOPClassUIDInFile)
	TagReferencedSOPInstanceUID    = fromLib(tag.ReferencedSOPInstanceUIDInFile)
	TagReferencedTransferSyntaxUID = fromLib(tag.ReferencedTransferSyntaxUIDInFile)
)

// Patient, study, series and image attributes.
var (
	TagPatientName               = fromLib(tag.PatientName)
	TagPatientID                 = fromLib(tag.PatientID)
	TagPatientBirthDate          = fromLib(tag.PatientBirthDate)
	TagPatientSex                = fromLib(tag.PatientSex)
	TagStudyDate                 = fromLib(tag.StudyDate)
	TagStudyTime                 = fromLib(tag.StudyTime)
	TagStudyID                   = fromLib(tag.StudyID)
	TagAccessionNumber           = fromLib(tag.AccessionNumber)
	TagStudyDescription          = fromLib(tag.StudyDescription)
	TagStudyInstanceUID          = fromLib(tag.StudyInstanceUID)
	TagSeriesNumber              = fromLib(tag.SeriesNumber)
	TagModality                  = fromLib(tag.Modality)
	TagSeriesDescription         = fromLib(tag.SeriesDescription)
	TagSeriesDate                = fromLib(tag.SeriesDate)
	TagSeriesTime                = fromLib(tag.SeriesTime)
	TagSeriesInstanceUID         = fromLib(tag.SeriesInstanceUID)
	TagInstanceNumber            = fromLib(tag.InstanceNumber)
	TagSOPClassUID               = fromLib(tag.SOPClassUID)
	TagSOPInstanceUID            = fromLib(tag.SOPInstanceUID)
	TagSamplesPerPixel           = fromLib(tag.SamplesPerPixel)
	TagPhotometricInterpretation = fromLib(tag.PhotometricInterpretation)
	TagRows                      = fromLib(tag.Rows)
	TagColumns                   = fromLib(tag.Columns)
	TagBitsAllocated             = fromLib(tag.BitsAllocated)
	TagBitsStored                = fromLib(tag.BitsStored)
	TagHighBit                   = fromLib(tag.HighBit)
	TagPixelRepresentation       = fromLib(tag.PixelRepresentation)
	TagWindowCenter              = fromLib(tag.WindowCenter)
	TagWindowWidth               = fromLib(tag.WindowWidth)
	TagRescaleIntercept          = fromLib(tag.RescaleIntercept)
	TagRescaleSlope              = fromLib(tag.RescaleSlope)
	TagPixelData                 = fromLib(tag.PixelData)
)
