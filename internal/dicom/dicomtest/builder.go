// Package dicomtest builds DICOM byte streams for tests: raw element
// streams, DICOMDIR file sets and files written by the reference library.
package dicomtest

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/charmap"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// Builder assembles a DICOM stream element by element in a fixed transfer
// syntax. The file meta group is always written explicit little endian.
type Builder struct {
	buf      []byte
	explicit bool
	order    binary.ByteOrder
}

// NewBuilder returns a builder writing dataset elements in ts.
func NewBuilder(ts dicom.TransferSyntax) *Builder {
	return &Builder{explicit: ts.Explicit, order: ts.Order}
}

// Child returns an empty builder with the same syntax, for item content.
func (b *Builder) Child() *Builder {
	return &Builder{explicit: b.explicit, order: b.order}
}

// Bytes returns the stream written so far.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.buf) }

// Preamble writes 128 zero bytes and the "DICM" magic.
func (b *Builder) Preamble() *Builder {
	b.buf = append(b.buf, make([]byte, 128)...)
	b.buf = append(b.buf, "DICM"...)
	return b
}

// Meta writes a file meta group announcing tsUID.
func (b *Builder) Meta(sopClassUID, sopInstanceUID, tsUID string) *Builder {
	meta := &Builder{explicit: true, order: binary.LittleEndian}
	meta.Element(dicom.TagFileMetaInformationVersion, dicom.VROB, []byte{0x00, 0x01})
	if sopClassUID != "" {
		meta.String(dicom.TagMediaStorageSOPClassUID, dicom.VRUI, sopClassUID)
	}
	if sopInstanceUID != "" {
		meta.String(dicom.TagMediaStorageSOPInstanceUID, dicom.VRUI, sopInstanceUID)
	}
	meta.String(dicom.TagTransferSyntaxUID, dicom.VRUI, tsUID)
	meta.String(dicom.TagImplementationClassUID, dicom.VRUI, ImplementationClassUID)

	group := &Builder{explicit: true, order: binary.LittleEndian}
	group.UL(dicom.Tag{Group: 0x0002, Element: 0x0000}, uint32(meta.Len()))
	b.buf = append(b.buf, group.buf...)
	b.buf = append(b.buf, meta.buf...)
	return b
}

// Header writes an element header declaring length without any value.
func (b *Builder) Header(t dicom.Tag, vr dicom.VR, length uint32) *Builder {
	b.u16(t.Group)
	b.u16(t.Element)
	switch {
	case t.IsFraming() || !b.explicit:
		b.u32(length)
	case vr.HasLongLength():
		b.buf = append(b.buf, vr[0], vr[1], 0, 0)
		b.u32(length)
	default:
		b.buf = append(b.buf, vr[0], vr[1])
		b.u16(uint16(length))
	}
	return b
}

// Raw appends p unchanged.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// String writes a text element encoded as ISO-8859-1 and padded to even
// length: UIDs with NUL, other VRs with a space.
func (b *Builder) String(t dicom.Tag, vr dicom.VR, s string) *Builder {
	value := EncodeLatin1(s)
	if len(value)%2 == 1 {
		pad := byte(' ')
		if vr == dicom.VRUI {
			pad = 0
		}
		value = append(value, pad)
	}
	return b.Element(t, vr, value)
}

// Element writes a single element with a raw value.
func (b *Builder) Element(t dicom.Tag, vr dicom.VR, value []byte) *Builder {
	b.Header(t, vr, uint32(len(value)))
	b.buf = append(b.buf, value...)
	return b
}

// US writes an unsigned short element.
func (b *Builder) US(t dicom.Tag, values ...uint16) *Builder {
	v := make([]byte, 2*len(values))
	for i, x := range values {
		b.order.PutUint16(v[2*i:], x)
	}
	return b.Element(t, dicom.VRUS, v)
}

// SS writes a signed short element.
func (b *Builder) SS(t dicom.Tag, values ...int16) *Builder {
	v := make([]byte, 2*len(values))
	for i, x := range values {
		b.order.PutUint16(v[2*i:], uint16(x))
	}
	return b.Element(t, dicom.VRSS, v)
}

// UL writes an unsigned long element.
func (b *Builder) UL(t dicom.Tag, values ...uint32) *Builder {
	v := make([]byte, 4*len(values))
	for i, x := range values {
		b.order.PutUint32(v[4*i:], x)
	}
	return b.Element(t, dicom.VRUL, v)
}

// SL writes a signed long element.
func (b *Builder) SL(t dicom.Tag, values ...int32) *Builder {
	v := make([]byte, 4*len(values))
	for i, x := range values {
		b.order.PutUint32(v[4*i:], uint32(x))
	}
	return b.Element(t, dicom.VRSL, v)
}

// FL writes a 32-bit float element.
func (b *Builder) FL(t dicom.Tag, values ...float32) *Builder {
	v := make([]byte, 4*len(values))
	for i, x := range values {
		b.order.PutUint32(v[4*i:], math.Float32bits(x))
	}
	return b.Element(t, dicom.VRFL, v)
}

// FD writes a 64-bit float element.
func (b *Builder) FD(t dicom.Tag, values ...float64) *Builder {
	v := make([]byte, 8*len(values))
	for i, x := range values {
		b.order.PutUint64(v[8*i:], math.Float64bits(x))
	}
	return b.Element(t, dicom.VRFD, v)
}

// Pixels16 writes 16-bit Pixel Data as OW.
func (b *Builder) Pixels16(values []uint16) *Builder {
	v := make([]byte, 2*len(values))
	for i, x := range values {
		b.order.PutUint16(v[2*i:], x)
	}
	return b.Element(dicom.TagPixelData, dicom.VROW, v)
}

// Pixels8 writes 8-bit Pixel Data as OB, padded to even length.
func (b *Builder) Pixels8(values []byte) *Builder {
	v := append([]byte(nil), values...)
	if len(v)%2 == 1 {
		v = append(v, 0)
	}
	return b.Element(dicom.TagPixelData, dicom.VROB, v)
}

// Image writes the attributes describing a grayscale frame.
func (b *Builder) Image(rows, columns, bitsAllocated uint16, signed bool) *Builder {
	var rep uint16
	if signed {
		rep = 1
	}
	b.US(dicom.TagSamplesPerPixel, 1)
	b.String(dicom.TagPhotometricInterpretation, dicom.VRCS, "MONOCHROME2")
	b.US(dicom.TagRows, rows)
	b.US(dicom.TagColumns, columns)
	b.US(dicom.TagBitsAllocated, bitsAllocated)
	b.US(dicom.TagBitsStored, bitsAllocated)
	b.US(dicom.TagHighBit, bitsAllocated-1)
	b.US(dicom.TagPixelRepresentation, rep)
	return b
}

// BeginSequence opens an undefined-length sequence.
func (b *Builder) BeginSequence(t dicom.Tag) *Builder {
	return b.Header(t, dicom.VRSQ, dicom.UndefinedLength)
}

// EndSequence writes a sequence delimiter.
func (b *Builder) EndSequence() *Builder {
	return b.Header(dicom.TagSequenceDelimitation, "", 0)
}

// BeginItem opens an undefined-length item.
func (b *Builder) BeginItem() *Builder {
	return b.Header(dicom.TagItem, "", dicom.UndefinedLength)
}

// EndItem writes an item delimiter.
func (b *Builder) EndItem() *Builder {
	return b.Header(dicom.TagItemDelimitation, "", 0)
}

// Item writes a defined-length item holding content.
func (b *Builder) Item(content []byte) *Builder {
	b.Header(dicom.TagItem, "", uint32(len(content)))
	b.buf = append(b.buf, content...)
	return b
}

// Sequence writes a defined-length sequence of defined-length items.
func (b *Builder) Sequence(t dicom.Tag, items ...[]byte) *Builder {
	var length int
	for _, it := range items {
		length += 8 + len(it)
	}
	b.Header(t, dicom.VRSQ, uint32(length))
	for _, it := range items {
		b.Item(it)
	}
	return b
}

func (b *Builder) u16(v uint16) {
	var tmp [2]byte
	b.order.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) u32(v uint32) {
	var tmp [4]byte
	b.order.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// EncodeLatin1 encodes s as ISO-8859-1. Runes outside the character set are
// kept as UTF-8.
func EncodeLatin1(s string) []byte {
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return []byte(s)
	}
	return []byte(out)
}
