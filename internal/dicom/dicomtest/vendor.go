package dicomtest

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// Vendor selects the private blocks a scanner writes into its files.
type Vendor int

const (
	Siemens Vendor = iota
	GE
	Philips
)

func (v Vendor) String() string {
	switch v {
	case Siemens:
		return "SIEMENS"
	case GE:
		return "GE"
	case Philips:
		return "PHILIPS"
	default:
		return fmt.Sprintf("Vendor(%d)", int(v))
	}
}

// csaEntry is one named entry of a Siemens CSA header.
type csaEntry struct {
	name   string
	vr     string
	values []string
}

// csaHeader encodes entries in the "SV10" layout. Every item length is
// written four times and values are padded to four bytes.
func csaHeader(entries []csaEntry) []byte {
	le := binary.LittleEndian
	out := []byte("SV10")
	out = append(out, 0x04, 0x03, 0x02, 0x01)
	out = le.AppendUint32(out, uint32(len(entries)))
	out = le.AppendUint32(out, 0x4D)

	for _, e := range entries {
		name := make([]byte, 64)
		copy(name, e.name)
		out = append(out, name...)
		out = le.AppendUint32(out, uint32(len(e.values)))
		vr := make([]byte, 4)
		copy(vr, e.vr)
		out = append(out, vr...)
		out = le.AppendUint32(out, 0)
		out = le.AppendUint32(out, uint32(len(e.values)))
		out = le.AppendUint32(out, 0x4D)
		for _, v := range e.values {
			for range 4 {
				out = le.AppendUint32(out, uint32(len(v)))
			}
			out = append(out, v...)
			out = append(out, make([]byte, (4-len(v)%4)%4)...)
		}
	}
	return out
}

// noise returns n random bytes, n drawn from [lo, lo+spread).
func noise(rng *rand.Rand, lo, spread int) []byte {
	out := make([]byte, lo+rng.IntN(spread))
	for i := range out {
		out[i] = byte(rng.IntN(256))
	}
	return out
}

// PrivateBlocks writes the private creator blocks and payloads v's scanners
// add to their images: CSA headers and a nested private sequence for Siemens,
// identification tags for GE and a scaling sequence for Philips.
func (b *Builder) PrivateBlocks(v Vendor, rng *rand.Rand) *Builder {
	switch v {
	case Siemens:
		image := csaHeader([]csaEntry{
			{"NumberOfImagesInMosaic", "IS", []string{"1"}},
			{"SliceNormalVector", "FD", []string{"0.0", "0.0", "1.0"}},
			{"B_value", "IS", []string{"0"}},
			{"ImaCoilString", "LO", []string{"HEA;HEP"}},
		})
		series := csaHeader([]csaEntry{
			{"UsedPatientWeight", "DS", []string{"70.0"}},
			{"MrProtocol", "LO", []string{"### ASCCONV BEGIN ###"}},
		})
		b.String(dicom.Tag{Group: 0x0029, Element: 0x0010}, dicom.VRLO, "SIEMENS CSA HEADER")
		b.Element(dicom.Tag{Group: 0x0029, Element: 0x1010}, dicom.VROB, even(append(image, noise(rng, 1024, 2048)...)))
		b.Element(dicom.Tag{Group: 0x0029, Element: 0x1020}, dicom.VROB, even(append(series, noise(rng, 512, 1024)...)))

		item := b.Child()
		item.String(dicom.Tag{Group: 0x0029, Element: 0x0011}, dicom.VRLO, "SIEMENS CSA NON-IMAGE")
		item.Element(dicom.Tag{Group: 0x0029, Element: 0x1100}, dicom.VROB, even(noise(rng, 5120, 4096)))
		b.BeginSequence(dicom.Tag{Group: 0x0029, Element: 0x1102}).
			BeginItem().Raw(item.Bytes()).EndItem().
			EndSequence()

	case GE:
		version := fmt.Sprintf("DV%d.%d_%d_M5", rng.IntN(10)+20, rng.IntN(10), rng.IntN(100))
		diffusion := fmt.Sprintf("%d\\%d\\%d\\%d", rng.IntN(1000), rng.IntN(1000), rng.IntN(1000), rng.IntN(1000))
		b.String(dicom.Tag{Group: 0x0009, Element: 0x0010}, dicom.VRLO, "GEMS_IDEN_01")
		b.String(dicom.Tag{Group: 0x0009, Element: 0x10E3}, dicom.VRLO, version)
		b.String(dicom.Tag{Group: 0x0043, Element: 0x0010}, dicom.VRLO, "GEMS_PARM_01")
		b.String(dicom.Tag{Group: 0x0043, Element: 0x1039}, dicom.VRIS, diffusion)

	case Philips:
		item := b.Child()
		item.String(dicom.Tag{Group: 0x2005, Element: 0x0011}, dicom.VRLO, "Philips MR Imaging DD 005")
		item.String(dicom.Tag{Group: 0x2005, Element: 0x1100}, dicom.VRDS, fmt.Sprintf("%.6f", rng.Float64()*100+1))
		item.String(dicom.Tag{Group: 0x2005, Element: 0x1101}, dicom.VRDS, fmt.Sprintf("%.6f", rng.Float64()*10-5))
		b.String(dicom.Tag{Group: 0x2001, Element: 0x0010}, dicom.VRLO, "Philips Imaging DD 001")
		b.String(dicom.Tag{Group: 0x2005, Element: 0x0010}, dicom.VRLO, "Philips MR Imaging DD 001")
		b.Sequence(dicom.Tag{Group: 0x2005, Element: 0x100E}, item.Bytes())
	}
	return b
}

func even(p []byte) []byte {
	if len(p)%2 == 1 {
		return append(p, 0)
	}
	return p
}
