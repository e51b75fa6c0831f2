package dicom

import "encoding/binary"

// TransferSyntax is the encoding a dataset is read with.
type TransferSyntax struct {
	UID      string
	Explicit bool
	Order    binary.ByteOrder
}

// Supported transfer syntaxes.
var (
	ImplicitVRLittleEndian = TransferSyntax{UID: "1.2.840.10008.1.2", Explicit: false, Order: binary.LittleEndian}
	ExplicitVRLittleEndian = TransferSyntax{UID: "1.2.840.10008.1.2.1", Explicit: true, Order: binary.LittleEndian}
	ExplicitVRBigEndian    = TransferSyntax{UID: "1.2.840.10008.1.2.2", Explicit: true, Order: binary.BigEndian}
)

// LookupTransferSyntax returns the syntax for uid. Unknown UIDs report false
// and callers keep reading in the mode they were already in.
func LookupTransferSyntax(uid string) (TransferSyntax, bool) {
	for _, ts := range []TransferSyntax{ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian} {
		if ts.UID == uid {
			return ts, true
		}
	}
	return TransferSyntax{}, false
}

// BigEndian reports whether the syntax stores numbers most significant byte first.
func (ts TransferSyntax) BigEndian() bool {
	return ts.Order == binary.BigEndian
}

func (ts TransferSyntax) String() string {
	switch {
	case !ts.Explicit:
		return "implicit VR little endian"
	case ts.BigEndian():
		return "explicit VR big endian"
	default:
		return "explicit VR little endian"
	}
}
