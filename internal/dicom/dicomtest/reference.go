package dicomtest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "github.com/mrsinham/dicomlens/internal/dicom"
)

// ReferenceImage describes a 16-bit monochrome file written with the
// reference library.
type ReferenceImage struct {
	PatientName    string
	PatientID      string
	Modality       string
	SOPInstanceUID string
	Rows           int
	Columns        int
	BitsStored     int
	Pixels         []uint16
}

// WriteImage encodes img as explicit VR little endian.
func WriteImage(img ReferenceImage) ([]byte, error) {
	pixelsPerFrame := img.Rows * img.Columns
	nativeFrame := frame.NewNativeFrame[uint16](16, img.Rows, img.Columns, pixelsPerFrame, 1)
	copy(nativeFrame.RawData, img.Pixels)

	bitsStored := img.BitsStored
	if bitsStored == 0 {
		bitsStored = 16
	}
	sopClass := "1.2.840.10008.5.1.4.1.1.4"
	if img.Modality == "CT" {
		sopClass = "1.2.840.10008.5.1.4.1.1.2"
	}

	elements := []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{dcm.ExplicitVRLittleEndian.UID}),
		mustNewElement(tag.MediaStorageSOPClassUID, []string{sopClass}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{img.SOPInstanceUID}),
		mustNewElement(tag.ImplementationClassUID, []string{ImplementationClassUID}),
		mustNewElement(tag.SOPClassUID, []string{sopClass}),
		mustNewElement(tag.SOPInstanceUID, []string{img.SOPInstanceUID}),
		mustNewElement(tag.Modality, []string{img.Modality}),
		mustNewElement(tag.PatientName, []string{img.PatientName}),
		mustNewElement(tag.PatientID, []string{img.PatientID}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.Rows, []int{img.Rows}),
		mustNewElement(tag.Columns, []int{img.Columns}),
		mustNewElement(tag.BitsAllocated, []int{16}),
		mustNewElement(tag.BitsStored, []int{bitsStored}),
		mustNewElement(tag.HighBit, []int{bitsStored - 1}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.PixelData, dicom.PixelDataInfo{
			Frames: []*frame.Frame{
				{
					Encapsulated: false,
					NativeData:   nativeFrame,
				},
			},
		}),
	}

	var buf bytes.Buffer
	if err := dicom.Write(&buf, dicom.Dataset{Elements: elements}); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDICOMDIR encodes a with the reference library, then patches the
// record offsets, which the library leaves at 0.
func WriteDICOMDIR(a Archive) ([]byte, error) {
	records := a.flatten()
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to write")
	}

	var items [][]*dicom.Element
	for _, p := range a.Patients {
		items = append(items, recordElements("PATIENT", true,
			mustNewElement(tag.PatientName, []string{p.Name}),
			mustNewElement(tag.PatientID, []string{p.ID}),
		))
		for _, st := range p.Studies {
			items = append(items, recordElements("STUDY", true,
				mustNewElement(tag.StudyDate, []string{st.Date}),
				mustNewElement(tag.StudyTime, []string{st.Time}),
				mustNewElement(tag.StudyDescription, []string{st.Description}),
				mustNewElement(tag.StudyInstanceUID, []string{st.UID}),
				mustNewElement(tag.StudyID, []string{st.ID}),
			))
			for _, se := range st.Series {
				items = append(items, recordElements("SERIES", true,
					mustNewElement(tag.Modality, []string{se.Modality}),
					mustNewElement(tag.SeriesInstanceUID, []string{se.UID}),
					mustNewElement(tag.SeriesNumber, []string{strconv.Itoa(se.Number)}),
				))
				for _, im := range se.Images {
					items = append(items, recordElements("IMAGE", !im.Inactive,
						mustNewElement(tag.ReferencedFileID, strings.Split(strings.ReplaceAll(im.FileID, "\\", "/"), "/")),
						mustNewElement(tag.ReferencedSOPClassUIDInFile, []string{im.SOPClassUID}),
						mustNewElement(tag.ReferencedSOPInstanceUIDInFile, []string{im.SOPInstanceUID}),
						mustNewElement(tag.ReferencedTransferSyntaxUIDInFile, []string{dcm.ExplicitVRLittleEndian.UID}),
						mustNewElement(tag.InstanceNumber, []string{strconv.Itoa(im.Number)}),
					))
				}
			}
		}
	}

	seq, err := dicom.NewElement(tag.DirectoryRecordSequence, items)
	if err != nil {
		return nil, fmt.Errorf("create directory record sequence: %w", err)
	}
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{dcm.ExplicitVRLittleEndian.UID}),
		mustNewElement(tag.MediaStorageSOPClassUID, []string{MediaStorageDirectoryStorage}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{fileSetInstanceUID}),
		mustNewElement(tag.ImplementationClassUID, []string{ImplementationClassUID}),
		mustNewElement(tag.FileSetID, []string{"DICOMLENS"}),
		mustNewElement(tag.OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity, []int{0}),
		mustNewElement(tag.OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity, []int{0}),
		mustNewElement(tag.FileSetConsistencyFlag, []int{0}),
		seq,
	}}

	var buf bytes.Buffer
	if err := dicom.Write(&buf, ds); err != nil {
		return nil, fmt.Errorf("write DICOMDIR: %w", err)
	}
	data := buf.Bytes()

	positions := findItemPositions(data)
	if len(positions) != len(records) {
		return nil, fmt.Errorf("found %d directory records, want %d", len(positions), len(records))
	}

	order := dcm.ExplicitVRLittleEndian.Order
	links := linkRecords(records, positions)
	putUint32After(data, 0, dcm.TagOffsetOfFirstRootRecord, uint32(positions[0]), order)
	for i, pos := range positions {
		putUint32After(data, pos, dcm.TagOffsetOfNextRecord, links[i].Next, order)
		putUint32After(data, pos, dcm.TagOffsetOfLowerLevelEntity, links[i].Lower, order)
	}
	return data, nil
}

func recordElements(recordType string, inUse bool, fields ...*dicom.Element) []*dicom.Element {
	flag := 0xFFFF
	if !inUse {
		flag = 0
	}
	return append([]*dicom.Element{
		mustNewElement(tag.OffsetOfTheNextDirectoryRecord, []int{0}),
		mustNewElement(tag.RecordInUseFlag, []int{flag}),
		mustNewElement(tag.OffsetOfReferencedLowerLevelDirectoryEntity, []int{0}),
		mustNewElement(tag.DirectoryRecordType, []string{recordType}),
	}, fields...)
}

// findItemPositions returns the offset of every item tag after the header.
func findItemPositions(data []byte) []int {
	itemTag := []byte{0xFE, 0xFF, 0x00, 0xE0}
	var positions []int
	for i := 132; i+4 <= len(data); i++ {
		if bytes.Equal(data[i:i+4], itemTag) {
			positions = append(positions, i)
		}
	}
	return positions
}

func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}
