package dicomtest

import (
	"encoding/binary"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// These helpers damage explicit VR little endian streams the way real scanner
// output is damaged, e.g. dcmdump's
//
//	W: DcmItem: Length of element (0070,0253) is not a multiple of 4 (VR=FL)
//	W: DcmItem: Length of element (7fe0,0010) is not a multiple of 2 (VR=OW)

// RewriteElement finds the first element tagged from and rewrites its tag,
// VR and value length in place. The value bytes are left untouched.
func RewriteElement(data []byte, from, to dicom.Tag, vr dicom.VR, length uint32) bool {
	i := findTag(data, from)
	if i < 0 {
		return false
	}
	binary.LittleEndian.PutUint16(data[i:i+2], to.Group)
	binary.LittleEndian.PutUint16(data[i+2:i+4], to.Element)
	copy(data[i+4:i+6], vr)

	if vr.HasLongLength() {
		data[i+6] = 0x00
		data[i+7] = 0x00
		binary.LittleEndian.PutUint32(data[i+8:i+12], length)
	} else {
		binary.LittleEndian.PutUint16(data[i+6:i+8], uint16(length))
	}
	return true
}

// PatchLength overwrites the declared value length of the first element
// tagged t, keeping its VR.
func PatchLength(data []byte, t dicom.Tag, length uint32) bool {
	i := findTag(data, t)
	if i < 0 {
		return false
	}
	return RewriteElement(data, t, t, dicom.VR(data[i+4:i+6]), length)
}

// CorruptVR replaces the VR of the first element tagged t with bytes that are
// not a valid VR.
func CorruptVR(data []byte, t dicom.Tag) bool {
	i := findTag(data, t)
	if i < 0 {
		return false
	}
	data[i+4] = 0x01
	data[i+5] = 0x7F
	return true
}

// PatchPixelDataOddLength makes the Pixel Data length odd by dropping one byte
// from the declared length.
func PatchPixelDataOddLength(data []byte) bool {
	i := findTag(data, dicom.TagPixelData)
	if i < 0 {
		return false
	}
	vr := string(data[i+4 : i+6])
	if vr != "OW" && vr != "OB" {
		return false
	}
	length := binary.LittleEndian.Uint32(data[i+8 : i+12])
	if length <= 1 || length%2 != 0 {
		return false
	}
	binary.LittleEndian.PutUint32(data[i+8:i+12], length-1)
	return true
}

func findTag(data []byte, t dicom.Tag) int {
	var needle [4]byte
	binary.LittleEndian.PutUint16(needle[0:2], t.Group)
	binary.LittleEndian.PutUint16(needle[2:4], t.Element)
	for i := 0; i <= len(data)-12; i++ {
		if data[i] == needle[0] && data[i+1] == needle[1] && data[i+2] == needle[2] && data[i+3] == needle[3] {
			return i
		}
	}
	return -1
}
