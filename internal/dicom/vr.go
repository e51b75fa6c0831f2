package dicom

// VR is a two-character value representation code.
type VR string

const (
	VRAE VR = "AE"
	VRAS VR = "AS"
	VRAT VR = "AT"
	VRCS VR = "CS"
	VRDA VR = "DA"
	VRDS VR = "DS"
	VRDT VR = "DT"
	VRFD VR = "FD"
	VRFL VR = "FL"
	VRIS VR = "IS"
	VRLO VR = "LO"
	VRLT VR = "LT"
	VROB VR = "OB"
	VROD VR = "OD"
	VROF VR = "OF"
	VROL VR = "OL"
	VROV VR = "OV"
	VROW VR = "OW"
	VRPN VR = "PN"
	VRSH VR = "SH"
	VRSL VR = "SL"
	VRSQ VR = "SQ"
	VRSS VR = "SS"
	VRST VR = "ST"
	VRSV VR = "SV"
	VRTM VR = "TM"
	VRUC VR = "UC"
	VRUI VR = "UI"
	VRUL VR = "UL"
	VRUN VR = "UN"
	VRUR VR = "UR"
	VRUS VR = "US"
	VRUT VR = "UT"
	VRUV VR = "UV"
)

// HasLongLength reports whether an explicit VR header for v carries two
// reserved bytes followed by a 4-byte length instead of a 2-byte length.
func (v VR) HasLongLength() bool {
	switch v {
	case VROB, VROW, VROF, VRSQ, VRUT, VRUN,
		VROD, VROL, VROV, VRSV, VRUC, VRUR, VRUV:
		return true
	}
	return false
}

// IsString reports whether values of v decode as text.
func (v VR) IsString() bool {
	switch v {
	case VRAE, VRAS, VRCS, VRDA, VRDS, VRDT, VRIS, VRLO, VRLT, VRPN, VRSH, VRST, VRTM, VRUI, VRUT:
		return true
	}
	return false
}

// fixedSize returns the exact value length a numeric VR requires, or 0.
func (v VR) fixedSize() int {
	switch v {
	case VRUS, VRSS:
		return 2
	case VRUL, VRSL, VRFL:
		return 4
	case VRFD:
		return 8
	}
	return 0
}

func validVR(b0, b1 byte) bool {
	return b0 >= 'A' && b0 <= 'Z' && b1 >= 'A' && b1 <= 'Z'
}
