package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/text/encoding/charmap"
)

// UndefinedLength is the length sentinel for values closed by a delimiter.
const UndefinedLength uint32 = 0xFFFFFFFF

const (
	preambleSize   = 128
	headerSize     = preambleSize + 4
	minElementSize = 8
	metaGroup      = 0x0002

	// implicitStringLimit bounds the strings inferred in implicit VR streams.
	implicitStringLimit = 64
	// uidLimit is the maximum length of a UI value. UIDs are read whole
	// whatever the configured string limit.
	uidLimit = 64
)

var magic = []byte("DICM")

var (
	ErrTruncated  = errors.New("buffer truncated")
	ErrInvalidVR  = errors.New("invalid value representation")
	ErrNoProgress = errors.New("scan made no progress")
)

// implicitVRs lists the tags whose VR is known without a dictionary when
// reading implicit VR streams.
var implicitVRs = map[Tag]VR{
	TagPatientName:         VRPN,
	TagPatientID:           VRLO,
	TagRows:                VRUS,
	TagColumns:             VRUS,
	TagBitsAllocated:       VRUS,
	TagBitsStored:          VRUS,
	TagHighBit:             VRUS,
	TagPixelRepresentation: VRUS,
}

// Element is one decoded data element.
type Element struct {
	Tag Tag
	VR  VR
	// Length is the declared value length, possibly UndefinedLength.
	Length uint32
	// Offset is the position of the tag; ValueOffset the first value byte.
	Offset      int
	ValueOffset int
	Value       Value
	// Raw is the value field clamped to the buffer. Nil for sequences and
	// framing tags, whose content is read as further elements.
	Raw []byte
}

// IsSequence reports whether the element opens nested items.
func (e Element) IsSequence() bool {
	if e.Tag.IsFraming() || e.Tag == TagPixelData {
		return false
	}
	return e.VR == VRSQ || e.Length == UndefinedLength
}

// HasPreamble reports whether buf starts with a 128-byte preamble and "DICM".
func HasPreamble(buf []byte) bool {
	return len(buf) >= headerSize && bytes.Equal(buf[preambleSize:headerSize], magic)
}

// Reader walks the element headers of a buffer. It applies the transfer
// syntax rules but leaves nesting to the caller: sequence and item headers
// are returned without consuming their content.
type Reader struct {
	buf       []byte
	pos       int
	syntax    TransferSyntax
	pending   *TransferSyntax
	inDataset bool
	preamble  bool
	opts      options
}

// NewReader returns a reader positioned on the first element of buf.
func NewReader(buf []byte, opts ...Option) *Reader {
	return newReader(buf, newOptions(opts))
}

func newReader(buf []byte, o options) *Reader {
	r := &Reader{buf: buf, syntax: ImplicitVRLittleEndian, opts: o}
	if HasPreamble(buf) {
		r.pos = headerSize
		r.syntax = ExplicitVRLittleEndian
		r.preamble = true
	}
	return r
}

// Pos returns the cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Seek moves the cursor to off.
func (r *Reader) Seek(off int) { r.pos = off }

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n uint32) { r.pos += int(n) }

// Remaining returns the bytes left after the cursor. It is negative once an
// element declared more bytes than the buffer holds.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Preamble reports whether the buffer carried a preamble and "DICM".
func (r *Reader) Preamble() bool { return r.preamble }

// Syntax returns the transfer syntax of the dataset, including one announced
// by the file meta group but not yet applied.
func (r *Reader) Syntax() TransferSyntax {
	if r.pending != nil {
		return *r.pending
	}
	return r.syntax
}

// Next decodes the element at the cursor. On error the cursor is left at the
// start of the element so the caller can resynchronise.
func (r *Reader) Next() (Element, error) {
	start := r.pos
	if r.Remaining() < minElementSize {
		return Element{}, fmt.Errorf("element at %d: %w", start, ErrTruncated)
	}

	ts := r.syntaxFor(binary.LittleEndian.Uint16(r.buf[start:]))
	order := ts.Order
	el := Element{
		Tag:    Tag{Group: order.Uint16(r.buf[start:]), Element: order.Uint16(r.buf[start+2:])},
		Offset: start,
	}

	switch {
	case el.Tag.IsFraming():
		el.Length = order.Uint32(r.buf[start+4:])
		el.ValueOffset = start + 8
		r.pos = el.ValueOffset
		return el, nil

	case ts.Explicit:
		if !validVR(r.buf[start+4], r.buf[start+5]) {
			return Element{}, fmt.Errorf("element %s at %d: %w", el.Tag, start, ErrInvalidVR)
		}
		el.VR = VR(r.buf[start+4 : start+6])
		if el.VR.HasLongLength() {
			if len(r.buf)-start < 12 {
				return Element{}, fmt.Errorf("element %s at %d: %w", el.Tag, start, ErrTruncated)
			}
			el.Length = order.Uint32(r.buf[start+8:])
			el.ValueOffset = start + 12
		} else {
			el.Length = uint32(order.Uint16(r.buf[start+6:]))
			el.ValueOffset = start + 8
		}

	default:
		el.Length = order.Uint32(r.buf[start+4:])
		el.ValueOffset = start + 8
		el.VR = r.implicitVR(el.Tag)
		if el.Length == UndefinedLength && el.Tag != TagPixelData {
			el.VR = VRSQ
		}
	}

	r.pos = el.ValueOffset
	if el.IsSequence() {
		return el, nil
	}
	r.consume(&el, ts)
	return el, nil
}

// syntaxFor returns the syntax to read an element of group with. The file
// meta group is always explicit little endian; a syntax it announces takes
// effect at the first element outside it.
func (r *Reader) syntaxFor(group uint16) TransferSyntax {
	if group == metaGroup && !r.inDataset {
		return ExplicitVRLittleEndian
	}
	r.inDataset = true
	if r.pending != nil {
		r.syntax = *r.pending
		r.pending = nil
		r.opts.logger.Debug().Str("syntax", r.syntax.String()).Msgf("switched transfer syntax %s", r.syntax.UID)
	}
	return r.syntax
}

func (r *Reader) implicitVR(t Tag) VR {
	if vr, ok := implicitVRs[t]; ok {
		return vr
	}
	if r.opts.dictionaryVR {
		return dictionaryVR(t)
	}
	return ""
}

func dictionaryVR(t Tag) VR {
	info, err := tag.Find(t.Lib())
	if err != nil || len(info.VRs) == 0 {
		return ""
	}
	return VR(info.VRs[0])
}

// consume moves the cursor past the value and decodes it.
func (r *Reader) consume(el *Element, ts TransferSyntax) {
	end := len(r.buf)
	if el.Length == UndefinedLength {
		r.pos = end
	} else {
		r.pos = el.ValueOffset + int(el.Length)
		end = min(r.pos, end)
		if r.pos > len(r.buf) {
			r.opts.logger.Debug().
				Str("tag", el.Tag.String()).
				Uint32("declared", el.Length).
				Int("available", end-el.ValueOffset).
				Msg("element value runs past end of buffer")
		}
	}
	el.Raw = r.buf[el.ValueOffset:end]
	el.Value = r.decodeValue(*el, ts)

	if el.Tag == TagTransferSyntaxUID && !r.inDataset {
		uid := el.Value.String()
		if next, ok := LookupTransferSyntax(uid); ok {
			r.pending = &next
		} else {
			r.opts.logger.Debug().Str("uid", uid).Msg("unsupported transfer syntax, keeping current mode")
		}
	}
}

func (r *Reader) decodeValue(el Element, ts TransferSyntax) Value {
	if el.VR.IsString() {
		limit := r.opts.maxStringLength
		switch {
		case el.VR == VRUI:
			limit = uidLimit
		case !ts.Explicit && (el.Tag == TagPatientName || el.Tag == TagPatientID):
			limit = min(limit, implicitStringLimit)
		}
		return StringValue(decodeText(el.Raw, limit))
	}

	size := el.VR.fixedSize()
	if size == 0 || int(el.Length) != size || len(el.Raw) != size {
		return NoValue{}
	}
	order := ts.Order
	switch el.VR {
	case VRUS:
		return IntValue(order.Uint16(el.Raw))
	case VRSS:
		return IntValue(int16(order.Uint16(el.Raw)))
	case VRUL:
		return IntValue(order.Uint32(el.Raw))
	case VRSL:
		return IntValue(int32(order.Uint32(el.Raw)))
	case VRFL:
		return FloatValue(math.Float32frombits(order.Uint32(el.Raw)))
	case VRFD:
		return FloatValue(math.Float64frombits(order.Uint64(el.Raw)))
	}
	return NoValue{}
}

// decodeText reads at most limit bytes as ISO-8859-1, dropping NUL padding
// and surrounding whitespace.
func decodeText(raw []byte, limit int) string {
	if len(raw) > limit {
		raw = raw[:limit]
	}
	cleaned := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b != 0 {
			cleaned = append(cleaned, b)
		}
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(cleaned)
	if err != nil {
		text = cleaned
	}
	return strings.TrimSpace(string(text))
}
