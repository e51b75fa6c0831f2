package dicomtest

import (
	"fmt"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// Profile is the pixel encoding a modality typically uses.
type Profile struct {
	Modality     string
	SOPClassUID  string
	BitsStored   uint16
	Signed       bool
	MinValue     int
	MaxValue     int
	WindowCenter float64
	WindowWidth  float64
	// RescaleIntercept is applied with slope 1 when non-zero.
	RescaleIntercept float64
}

var (
	MR = Profile{
		Modality:     "MR",
		SOPClassUID:  "1.2.840.10008.5.1.4.1.1.4",
		BitsStored:   12,
		MinValue:     0,
		MaxValue:     4095,
		WindowCenter: 500,
		WindowWidth:  1000,
	}
	CT = Profile{
		Modality:         "CT",
		SOPClassUID:      "1.2.840.10008.5.1.4.1.1.2",
		BitsStored:       16,
		Signed:           true,
		MinValue:         -1024,
		MaxValue:         3071,
		WindowCenter:     40,
		WindowWidth:      400,
		RescaleIntercept: -1024,
	}
)

// Ramp returns a horizontal gradient from MinValue to MaxValue as stored
// 16-bit samples.
func (p Profile) Ramp(rows, columns int) []uint16 {
	out := make([]uint16, rows*columns)
	span := p.MaxValue - p.MinValue
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			v := p.MinValue
			if columns > 1 {
				v += span * x / (columns - 1)
			}
			out[y*columns+x] = uint16(v)
		}
	}
	return out
}

// File returns a complete file with a ramp frame encoded in ts.
func (p Profile) File(ts dicom.TransferSyntax, rows, columns uint16) []byte {
	b := NewBuilder(ts).Preamble().Meta(p.SOPClassUID, "1.2.826.0.1.3680043.8.498.100", ts.UID)
	b.String(dicom.TagSOPClassUID, dicom.VRUI, p.SOPClassUID)
	b.String(dicom.TagModality, dicom.VRCS, p.Modality)
	b.String(dicom.TagPatientName, dicom.VRPN, "PHANTOM^"+p.Modality)
	b.Image(rows, columns, 16, p.Signed)
	b.String(dicom.TagWindowCenter, dicom.VRDS, fmt.Sprintf("%g", p.WindowCenter))
	b.String(dicom.TagWindowWidth, dicom.VRDS, fmt.Sprintf("%g", p.WindowWidth))
	if p.RescaleIntercept != 0 {
		b.String(dicom.TagRescaleIntercept, dicom.VRDS, fmt.Sprintf("%g", p.RescaleIntercept))
		b.String(dicom.TagRescaleSlope, dicom.VRDS, "1")
	}
	b.Pixels16(p.Ramp(int(rows), int(columns)))
	return b.Bytes()
}
