// Package dicom decodes DICOM element streams held in memory.
//
// Decoding never fails on malformed but readable input: unreadable elements
// are skipped and logged, and the caller always receives a usable Dataset.
package dicom

import (
	"github.com/mrsinham/dicomlens/internal/dicom/document"
)

// Document is a blob embedded with the Encapsulated Document tag.
type Document struct {
	Offset int
	Length int
	Data   []byte
}

// Kind detects the document format from its signature.
func (d Document) Kind() document.Type {
	return document.Classify(d.Data)
}

// Dataset is the result of decoding one buffer.
type Dataset struct {
	Metadata Metadata
	// Elements holds every decoded element in stream order, sequence headers
	// included and framing tags excluded.
	Elements []Element
	// PixelData is the Pixel Data payload clamped to the buffer, nil when absent.
	PixelData []byte
	Documents []Document
	Width     int
	Height    int
	Syntax    TransferSyntax
	Preamble  bool
	// OpenSequences counts undefined-length sequences still open when the
	// scan ended, i.e. missing sequence delimiters.
	OpenSequences int
}

// Decode scans buf element by element. Buffers shorter than one element
// header yield an empty Dataset and ErrTruncated.
func Decode(buf []byte, opts ...Option) (*Dataset, error) {
	return decode(buf, newOptions(opts))
}

func decode(buf []byte, o options) (*Dataset, error) {
	ds := &Dataset{Metadata: Metadata{}, Syntax: ImplicitVRLittleEndian}
	if len(buf) < minElementSize {
		return ds, ErrTruncated
	}

	r := newReader(buf, o)
	ds.Preamble = r.Preamble()
	depth := 0

scan:
	for r.Remaining() >= minElementSize {
		start := r.Pos()
		el, err := r.Next()
		if err != nil {
			o.logger.Debug().Err(err).Int("offset", start).Msg("skipping unreadable element")
			r.Seek(start + 2)
			continue
		}

		switch {
		case el.Tag == TagItem:
			if el.Length != UndefinedLength {
				r.Skip(el.Length)
			}
		case el.Tag == TagSequenceDelimitation:
			if depth > 0 {
				depth--
			} else {
				o.logger.Debug().Int("offset", start).Msg("sequence delimiter outside any sequence")
			}
		case el.Tag.IsFraming():
		case el.IsSequence():
			ds.Elements = append(ds.Elements, el)
			if el.Length == UndefinedLength {
				depth++
			} else {
				r.Skip(el.Length)
			}
		case el.Tag == TagPixelData:
			ds.Elements = append(ds.Elements, el)
			ds.PixelData = el.Raw
			ds.Metadata[KeyPixelDataLength] = IntValue(len(el.Raw))
			break scan
		default:
			ds.Elements = append(ds.Elements, el)
			ds.record(el)
			if el.Tag == TagEncapsulatedDocument {
				ds.Documents = append(ds.Documents, Document{Offset: el.ValueOffset, Length: len(el.Raw), Data: el.Raw})
			}
		}

		if r.Pos() <= start {
			o.logger.Debug().Err(ErrNoProgress).Int("offset", start).Msg("aborting scan")
			break
		}
	}

	ds.Syntax = r.Syntax()
	ds.OpenSequences = depth
	if depth > 0 {
		o.logger.Debug().Int("open", depth).Msg("scan ended inside undefined-length sequences")
	}
	return ds, nil
}

// record stores a decoded value and mirrors the fields the pixel pipeline needs.
func (ds *Dataset) record(el Element) {
	if _, ok := el.Value.(NoValue); ok || el.Value == nil {
		return
	}
	ds.Metadata[el.Tag.Key()] = el.Value

	switch el.Tag {
	case TagTransferSyntaxUID:
		ds.Metadata[KeyTransferSyntaxUID] = el.Value
	case TagRows:
		if v, ok := el.Value.(IntValue); ok {
			ds.Height = int(v)
		}
	case TagColumns:
		if v, ok := el.Value.(IntValue); ok {
			ds.Width = int(v)
		}
	case TagBitsAllocated:
		ds.Metadata[KeyBitsAllocated] = el.Value
	case TagBitsStored:
		ds.Metadata[KeyBitsStored] = el.Value
	case TagHighBit:
		ds.Metadata[KeyHighBit] = el.Value
	case TagPixelRepresentation:
		ds.Metadata[KeyPixelRepresentation] = el.Value
	}
}
