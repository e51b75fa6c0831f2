package dicomtest

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

func TestPatientNameFormat(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	for i := 0; i < 200; i++ {
		name := PatientName(rng)
		parts := strings.Split(name, "^")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			t.Fatalf("name %q should be LAST^FIRST", name)
		}
	}
}

func TestNamesFitLatin1(t *testing.T) {
	all := append([]string{}, Latin1Names...)
	all = append(all, frenchFirstNames...)
	all = append(all, frenchLastNames...)
	for _, name := range all {
		encoded := EncodeLatin1(name)
		if len(encoded) != len([]rune(name)) {
			t.Errorf("%q is not representable in ISO-8859-1", name)
		}
	}
}

func TestRandomArchiveShape(t *testing.T) {
	a := RandomArchive(rand.New(rand.NewPCG(1, 2)), ArchiveShape{
		Patients: 2, StudiesPerPat: 2, SeriesPerStudy: 3, ImagesPerSeries: 4,
	})
	if got := len(a.FileIDs()); got != 48 {
		t.Fatalf("expected 48 images, got %d", got)
	}
	seen := map[string]bool{}
	for _, id := range a.FileIDs() {
		if seen[id] {
			t.Errorf("duplicate file ID %s", id)
		}
		seen[id] = true
	}
	if got := len(a.flatten()); got != 2+4+12+48 {
		t.Errorf("expected 66 records, got %d", got)
	}
}

func TestRandomArchiveDeterministic(t *testing.T) {
	shape := ArchiveShape{Patients: 1, StudiesPerPat: 1, SeriesPerStudy: 1, ImagesPerSeries: 1}
	a := RandomArchive(rand.New(rand.NewPCG(7, 7)), shape)
	b := RandomArchive(rand.New(rand.NewPCG(7, 7)), shape)
	if a.Patients[0].Name != b.Patients[0].Name || a.Patients[0].ID != b.Patients[0].ID {
		t.Error("same seed should give the same archive")
	}
}

func TestBuilderHeaderLayout(t *testing.T) {
	explicit := NewBuilder(dicom.ExplicitVRLittleEndian).US(dicom.TagRows, 512).Bytes()
	want := []byte{0x28, 0x00, 0x10, 0x00, 'U', 'S', 0x02, 0x00, 0x00, 0x02}
	if !bytes.Equal(explicit, want) {
		t.Errorf("explicit US = % X, want % X", explicit, want)
	}

	implicit := NewBuilder(dicom.ImplicitVRLittleEndian).US(dicom.TagRows, 512).Bytes()
	want = []byte{0x28, 0x00, 0x10, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	if !bytes.Equal(implicit, want) {
		t.Errorf("implicit US = % X, want % X", implicit, want)
	}

	big := NewBuilder(dicom.ExplicitVRBigEndian).US(dicom.TagRows, 512).Bytes()
	want = []byte{0x00, 0x28, 0x00, 0x10, 'U', 'S', 0x00, 0x02, 0x02, 0x00}
	if !bytes.Equal(big, want) {
		t.Errorf("big endian US = % X, want % X", big, want)
	}

	long := NewBuilder(dicom.ExplicitVRLittleEndian).Element(dicom.TagPixelData, dicom.VROW, []byte{1, 2}).Bytes()
	want = []byte{0xE0, 0x7F, 0x10, 0x00, 'O', 'W', 0, 0, 0x02, 0, 0, 0, 1, 2}
	if !bytes.Equal(long, want) {
		t.Errorf("long form = % X, want % X", long, want)
	}
}

func TestBuilderStringPadding(t *testing.T) {
	uid := NewBuilder(dicom.ExplicitVRLittleEndian).String(dicom.TagSOPInstanceUID, dicom.VRUI, "1.2.3").Bytes()
	if uid[len(uid)-1] != 0 {
		t.Errorf("UIDs should be NUL padded, got %q", uid[8:])
	}
	name := NewBuilder(dicom.ExplicitVRLittleEndian).String(dicom.TagPatientName, dicom.VRPN, "Noël").Bytes()
	if got := name[8:]; !bytes.Equal(got, []byte{'N', 'o', 0xEB, 'l'}) {
		t.Errorf("name = % X, want ISO-8859-1 bytes", got)
	}
}

func TestMetaGroupLength(t *testing.T) {
	data := NewBuilder(dicom.ImplicitVRLittleEndian).Preamble().Meta("1.2", "1.2.3", dicom.ImplicitVRLittleEndian.UID).Bytes()
	if !dicom.HasPreamble(data) {
		t.Fatal("missing preamble")
	}
	length := binary.LittleEndian.Uint32(data[140:144])
	if int(length) != len(data)-144 {
		t.Errorf("group length = %d, want %d", length, len(data)-144)
	}
}

func TestBuildDICOMDIROffsets(t *testing.T) {
	data := BuildDICOMDIR(Chain("DICOM/IMG001"))
	first := findTagAfter(data, 0, dicom.TagOffsetOfFirstRootRecord, binary.LittleEndian)
	if first < 0 {
		t.Fatal("root offset tag not found")
	}
	root := int(binary.LittleEndian.Uint32(data[first+8:]))
	if !bytes.Equal(data[root:root+4], []byte{0xFE, 0xFF, 0x00, 0xE0}) {
		t.Errorf("root offset %d should point at an item tag", root)
	}

	lower := findTagAfter(data, root, dicom.TagOffsetOfLowerLevelEntity, binary.LittleEndian)
	study := int(binary.LittleEndian.Uint32(data[lower+8:]))
	if study <= root || !bytes.Equal(data[study:study+4], []byte{0xFE, 0xFF, 0x00, 0xE0}) {
		t.Errorf("patient lower-level offset %d should point at the study item", study)
	}
}

func TestLinkRecordsSiblings(t *testing.T) {
	records := []record{
		{Type: "PATIENT"}, {Type: "STUDY"}, {Type: "STUDY"}, {Type: "PATIENT"}, {Type: "PRIVATE"},
	}
	positions := []int{100, 200, 300, 400, 500}
	links := linkRecords(records, positions)
	want := []recordLinks{
		{Next: 400, Lower: 200},
		{Next: 300},
		{},
		{},
		{},
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("record %d links = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestWriteDICOMDIRPatchesOffsets(t *testing.T) {
	data, err := WriteDICOMDIR(Chain("DICOM/IMG001"))
	if err != nil {
		t.Fatalf("WriteDICOMDIR: %v", err)
	}
	positions := findItemPositions(data)
	if len(positions) != 4 {
		t.Fatalf("expected 4 records, got %d", len(positions))
	}
	first := findTagAfter(data, 0, dicom.TagOffsetOfFirstRootRecord, binary.LittleEndian)
	if got := int(binary.LittleEndian.Uint32(data[first+8:])); got != positions[0] {
		t.Errorf("root offset = %d, want %d", got, positions[0])
	}
}

func TestProfileRamp(t *testing.T) {
	ramp := CT.Ramp(1, 5)
	if int16(ramp[0]) != -1024 || int16(ramp[4]) != 3071 {
		t.Errorf("CT ramp ends = %d..%d", int16(ramp[0]), int16(ramp[4]))
	}
	ramp = MR.Ramp(2, 3)
	if ramp[0] != 0 || ramp[2] != 4095 || ramp[3] != 0 {
		t.Errorf("MR ramp = %v", ramp)
	}
}

func TestCorruptHelpers(t *testing.T) {
	data := NewBuilder(dicom.ExplicitVRLittleEndian).
		US(dicom.TagRows, 1).
		Pixels16([]uint16{1, 2}).
		Bytes()

	if !PatchPixelDataOddLength(data) {
		t.Fatal("expected pixel data to be patched")
	}
	i := findTag(data, dicom.TagPixelData)
	if got := binary.LittleEndian.Uint32(data[i+8:]); got != 3 {
		t.Errorf("pixel data length = %d, want 3", got)
	}
	if PatchPixelDataOddLength(data) {
		t.Error("an odd length should not be patched again")
	}
	if !CorruptVR(data, dicom.TagRows) || data[4] != 0x01 {
		t.Error("VR not corrupted")
	}
	if CorruptVR(data, dicom.TagColumns) {
		t.Error("missing tag should report false")
	}
}

func TestCSAHeader(t *testing.T) {
	h := csaHeader([]csaEntry{{"B_value", "IS", []string{"1000"}}})
	if string(h[:4]) != "SV10" {
		t.Fatalf("magic = %q", h[:4])
	}
	if n := binary.LittleEndian.Uint32(h[8:12]); n != 1 {
		t.Errorf("entry count = %d, want 1", n)
	}
	// 16 byte header, 84 byte entry header, 16 bytes of lengths, 4 value bytes
	if len(h) != 16+84+16+4 {
		t.Errorf("header length = %d", len(h))
	}
	if string(h[16:23]) != "B_value" {
		t.Errorf("entry name = %q", h[16:23])
	}
}

func TestPrivateBlocksAreEven(t *testing.T) {
	for _, v := range []Vendor{Siemens, GE, Philips} {
		b := NewBuilder(dicom.ExplicitVRLittleEndian).PrivateBlocks(v, rand.New(rand.NewPCG(1, 2)))
		if b.Len() == 0 || b.Len()%2 != 0 {
			t.Errorf("%s: private blocks length %d", v, b.Len())
		}
	}
}
