package dicomdir

import (
	"strings"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

const minElementSize = 8

// arena holds the records in sequence order. Records are found by item
// offset, the value directory offsets hold, or by content offset for
// writers that point past the item header.
type arena struct {
	records   []Record
	byOffset  map[int]int
	byContent map[int]int
}

func newArena() *arena {
	return &arena{byOffset: map[int]int{}, byContent: map[int]int{}}
}

func (a *arena) add(r Record) {
	h := r.Header()
	if _, dup := a.byOffset[h.Offset]; dup {
		return
	}
	a.byOffset[h.Offset] = len(a.records)
	a.byContent[h.ContentOffset] = len(a.records)
	a.records = append(a.records, r)
}

// resolve returns the arena index of the record an offset points at.
func (a *arena) resolve(off uint32) (int, bool) {
	if off == 0 {
		return 0, false
	}
	if i, ok := a.byOffset[int(off)]; ok {
		return i, true
	}
	i, ok := a.byContent[int(off)]
	return i, ok
}

// scanner reads the directory record sequence of one buffer.
type scanner struct {
	r    *dicom.Reader
	opts options
}

func newScanner(buf []byte, o options) *scanner {
	return &scanner{r: dicom.NewReader(buf, o.decoderOptions()...), opts: o}
}

// next reads one element, resynchronising two bytes further on failure.
func (s *scanner) next() (dicom.Element, bool) {
	start := s.r.Pos()
	el, err := s.r.Next()
	if err != nil {
		s.opts.logger.Debug().Err(err).Int("offset", start).Msg("skipping unreadable element")
		s.r.Seek(start + 2)
		return dicom.Element{}, false
	}
	return el, true
}

// findSequence positions the reader on the first item of the directory
// record sequence and returns the sequence element.
func (s *scanner) findSequence() (dicom.Element, bool) {
	for s.r.Remaining() >= minElementSize {
		el, ok := s.next()
		if !ok {
			continue
		}
		switch {
		case el.Tag == dicom.TagDirectoryRecordSequence:
			return el, true
		case el.Tag == dicom.TagPixelData:
			return dicom.Element{}, false
		case el.Tag == dicom.TagItem && el.Length != dicom.UndefinedLength:
			s.r.Skip(el.Length)
		case el.IsSequence() && el.Length != dicom.UndefinedLength:
			s.r.Skip(el.Length)
		}
	}
	return dicom.Element{}, false
}

// records walks the items of seq into an arena.
func (s *scanner) records(seq dicom.Element) *arena {
	a := newArena()
	end := s.r.Remaining() + s.r.Pos()
	if seq.Length != dicom.UndefinedLength {
		end = min(end, s.r.Pos()+int(seq.Length))
	}

	for s.r.Pos()+minElementSize <= end {
		start := s.r.Pos()
		el, ok := s.next()
		if !ok {
			continue
		}
		switch {
		case el.Tag == dicom.TagSequenceDelimitation:
			return a
		case el.Tag == dicom.TagItem:
			a.add(s.record(start, el, end))
		case el.Tag.IsFraming():
		case el.IsSequence():
			s.skipSequence(el)
		default:
			s.opts.logger.Debug().Str("tag", el.Tag.String()).Int("offset", start).Msg("element outside a directory record")
		}
	}
	return a
}

// record decodes the item starting at itemOffset. The reader is left after
// the item.
func (s *scanner) record(itemOffset int, item dicom.Element, seqEnd int) Record {
	h := RecordHeader{
		Offset:        itemOffset,
		ContentOffset: item.ValueOffset,
		InUse:         true,
		Fields:        dicom.Metadata{},
	}
	end := min(seqEnd, item.ValueOffset+s.opts.recordWindow)
	if item.Length != dicom.UndefinedLength {
		end = item.ValueOffset + int(item.Length)
	}

	var fileID string
fields:
	for s.r.Pos()+minElementSize <= end {
		start := s.r.Pos()
		el, ok := s.next()
		if !ok {
			continue
		}
		switch {
		case el.Tag == dicom.TagItemDelimitation:
			break fields
		case el.Tag == dicom.TagItem || el.Tag == dicom.TagSequenceDelimitation:
			// Missing item delimiter: leave the tag to the sequence walk.
			s.r.Seek(start)
			break fields
		case el.IsSequence():
			s.skipSequence(el)
		case el.Tag == dicom.TagDirectoryRecordType:
			h.Type = strings.ToUpper(el.Value.String())
		case el.Tag == dicom.TagOffsetOfNextRecord:
			h.NextOffset = s.offsetValue(el)
		case el.Tag == dicom.TagOffsetOfLowerLevelEntity:
			h.LowerOffset = s.offsetValue(el)
		case el.Tag == dicom.TagRecordInUseFlag:
			if v, ok := el.Value.(dicom.IntValue); ok && v == inUseInactive {
				h.InUse = false
			}
		case el.Tag == dicom.TagReferencedFileID:
			fileID = el.Value.String()
		default:
			if _, none := el.Value.(dicom.NoValue); !none && el.Value != nil {
				h.Fields[el.Tag.Key()] = el.Value
			}
		}
	}

	if item.Length != dicom.UndefinedLength {
		s.r.Seek(end)
	}
	return newRecord(h, fileID)
}

// skipSequence moves the reader past a nested sequence.
func (s *scanner) skipSequence(seq dicom.Element) {
	if seq.Length != dicom.UndefinedLength {
		s.r.Skip(seq.Length)
		return
	}
	depth := 1
	for depth > 0 && s.r.Remaining() >= minElementSize {
		el, ok := s.next()
		if !ok {
			continue
		}
		switch {
		case el.Tag == dicom.TagSequenceDelimitation:
			depth--
		case el.Tag == dicom.TagItem && el.Length != dicom.UndefinedLength:
			s.r.Skip(el.Length)
		case el.IsSequence():
			if el.Length == dicom.UndefinedLength {
				depth++
			} else {
				s.r.Skip(el.Length)
			}
		}
	}
}

// offsetValue reads a record offset. Offsets stored under an unexpected VR
// are read from the raw value.
func (s *scanner) offsetValue(el dicom.Element) uint32 {
	if v, ok := el.Value.(dicom.IntValue); ok && v >= 0 {
		return uint32(v)
	}
	if len(el.Raw) == 4 {
		return s.r.Syntax().Order.Uint32(el.Raw)
	}
	return 0
}
