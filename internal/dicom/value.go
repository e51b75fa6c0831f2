package dicom

import (
	"sort"
	"strconv"
	"strings"
)

// Value is the decoded value of one element. It is one of StringValue,
// IntValue, FloatValue or NoValue.
type Value interface {
	String() string
	isValue()
}

// StringValue holds trimmed text from a string VR.
type StringValue string

// IntValue holds an integer from US, SS, UL or SL.
type IntValue int64

// FloatValue holds a number from FL or FD.
type FloatValue float64

// NoValue marks an element that was consumed without producing a value.
type NoValue struct{}

func (v StringValue) String() string { return string(v) }
func (v IntValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v FloatValue) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (NoValue) String() string       { return "" }

func (StringValue) isValue() {}
func (IntValue) isValue()    {}
func (FloatValue) isValue()  {}
func (NoValue) isValue()     {}

// Synthetic metadata keys mirrored from well-known tags.
const (
	KeyTransferSyntaxUID   = "transferSyntaxUID"
	KeyBitsAllocated       = "bitsAllocated"
	KeyBitsStored          = "bitsStored"
	KeyHighBit             = "highBit"
	KeyPixelRepresentation = "pixelRepresentation"
	KeyPixelDataLength     = "pixelDataLength"
)

// Metadata maps tag keys (and synthetic keys) to decoded values.
type Metadata map[string]Value

// Get returns the value stored for t.
func (m Metadata) Get(t Tag) (Value, bool) {
	v, ok := m[t.Key()]
	return v, ok
}

// Text returns the text form of the value under key, or "".
func (m Metadata) Text(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return v.String()
}

// Int returns the value under key as an integer. Integer strings (IS) are
// accepted.
func (m Metadata) Int(key string) (int64, bool) {
	switch v := m[key].(type) {
	case IntValue:
		return int64(v), true
	case StringValue:
		n, err := strconv.ParseInt(firstComponent(string(v)), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Float returns the value under key as a float. Decimal strings (DS) are
// accepted; multi-valued strings yield their first component.
func (m Metadata) Float(key string) (float64, bool) {
	switch v := m[key].(type) {
	case FloatValue:
		return float64(v), true
	case IntValue:
		return float64(v), true
	case StringValue:
		f, err := strconv.ParseFloat(firstComponent(string(v)), 64)
		return f, err == nil
	}
	return 0, false
}

// Keys returns the keys of m in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstComponent(s string) string {
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
