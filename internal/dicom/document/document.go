// Package document identifies the format of documents embedded in DICOM files.
package document

import (
	"bytes"
	"fmt"
)

// Type describes a detected document format.
type Type struct {
	MIMEType  string
	Extension string
}

// Octet is returned for unrecognized content.
var Octet = Type{MIMEType: "application/octet-stream", Extension: "bin"}

var (
	PDF  = Type{MIMEType: "application/pdf", Extension: "pdf"}
	JPEG = Type{MIMEType: "image/jpeg", Extension: "jpg"}
	PNG  = Type{MIMEType: "image/png", Extension: "png"}
	XML  = Type{MIMEType: "application/xml", Extension: "xml"}
	// OOXML covers ZIP containers; Office documents are the common case.
	OOXML = Type{MIMEType: "application/vnd.openxmlformats-officedocument", Extension: "docx"}
)

type signature struct {
	prefix []byte
	typ    Type
}

// Checked in order; the first matching prefix wins.
var signatures = []signature{
	{prefix: []byte("%PDF"), typ: PDF},
	{prefix: []byte{0xFF, 0xD8}, typ: JPEG},
	{prefix: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, typ: PNG},
	{prefix: []byte("<?xml"), typ: XML},
	{prefix: []byte{'P', 'K', 0x03, 0x04}, typ: OOXML},
}

// Classify returns the type of b by its leading signature.
func Classify(b []byte) Type {
	for _, s := range signatures {
		if bytes.HasPrefix(b, s.prefix) {
			return s.typ
		}
	}
	return Octet
}

// Filename returns a download name for the n-th document of type t.
func (t Type) Filename(base string, n int) string {
	return fmt.Sprintf("%s-%d.%s", base, n, t.Extension)
}
