package dicom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTagKey(t *testing.T) {
	tests := []struct {
		tag  Tag
		key  string
		text string
	}{
		{TagRows, "00280010", "(0028,0010)"},
		{TagPixelData, "7FE00010", "(7FE0,0010)"},
		{TagItem, "FFFEE000", "(FFFE,E000)"},
		{Tag{Group: 0x0009, Element: 0x10ab}, "000910AB", "(0009,10AB)"},
	}
	for _, tc := range tests {
		if got := tc.tag.Key(); got != tc.key {
			t.Errorf("%v.Key() = %q, want %q", tc.tag, got, tc.key)
		}
		if got := tc.tag.String(); got != tc.text {
			t.Errorf("String() = %q, want %q", got, tc.text)
		}
		back, err := ParseKey(tc.key)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", tc.key, err)
		}
		if back != tc.tag {
			t.Errorf("ParseKey(%q) = %v, want %v", tc.key, back, tc.tag)
		}
	}
}

func TestParseKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "0028001", "0028001G", "(0028,0010)"} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q) should fail", key)
		}
	}
}

func TestTagKeywordAndName(t *testing.T) {
	tests := []struct {
		tag     Tag
		keyword string
		name    string
	}{
		{TagPatientName, "PatientName", "Patient's Name"},
		{TagStudyDescription, "StudyDescription", "Study Description"},
		{TagRows, "Rows", "Rows"},
		{Tag{Group: 0x0009, Element: 0x1001}, "", ""},
	}
	for _, tt := range tests {
		if got := tt.tag.Keyword(); got != tt.keyword {
			t.Errorf("%s keyword = %q, want %q", tt.tag, got, tt.keyword)
		}
		if got := tt.tag.Name(); got != tt.name {
			t.Errorf("%s name = %q, want %q", tt.tag, got, tt.name)
		}
	}
}

func TestVRLengthWidth(t *testing.T) {
	long := []VR{VROB, VROW, VROF, VRSQ, VRUT, VRUN}
	for _, vr := range long {
		if !vr.HasLongLength() {
			t.Errorf("%s should use a 4-byte length", vr)
		}
	}
	for _, vr := range []VR{VRUS, VRPN, VRUI, VRFD, VRCS} {
		if vr.HasLongLength() {
			t.Errorf("%s should use a 2-byte length", vr)
		}
	}
}

func TestValidVR(t *testing.T) {
	if !validVR('P', 'N') {
		t.Error("PN should be valid")
	}
	for _, b := range [][2]byte{{0x01, 0x7F}, {'p', 'n'}, {0, 0}, {'P', '1'}} {
		if validVR(b[0], b[1]) {
			t.Errorf("%q should be rejected", b[:])
		}
	}
}

func TestLookupTransferSyntax(t *testing.T) {
	tests := []struct {
		uid      string
		want     TransferSyntax
		explicit bool
		found    bool
	}{
		{"1.2.840.10008.1.2", ImplicitVRLittleEndian, false, true},
		{"1.2.840.10008.1.2.1", ExplicitVRLittleEndian, true, true},
		{"1.2.840.10008.1.2.2", ExplicitVRBigEndian, true, true},
		{"1.2.840.10008.1.2.4.50", TransferSyntax{}, false, false},
		{"", TransferSyntax{}, false, false},
	}
	for _, tc := range tests {
		got, ok := LookupTransferSyntax(tc.uid)
		if ok != tc.found {
			t.Errorf("LookupTransferSyntax(%q) found = %v, want %v", tc.uid, ok, tc.found)
			continue
		}
		if ok && (got.UID != tc.want.UID || got.Explicit != tc.explicit) {
			t.Errorf("LookupTransferSyntax(%q) = %v, want %v", tc.uid, got, tc.want)
		}
	}
	if !ExplicitVRBigEndian.BigEndian() || ExplicitVRLittleEndian.BigEndian() {
		t.Error("only explicit big endian should report BigEndian")
	}
}

func TestMetadataAccessors(t *testing.T) {
	md := Metadata{
		TagRows.Key():         IntValue(512),
		TagWindowCenter.Key(): StringValue("40\\400"),
		TagWindowWidth.Key():  StringValue(" 350 "),
		TagSeriesNumber.Key(): StringValue("7"),
		"float":               FloatValue(1.5),
		TagPatientName.Key():  StringValue("DOE^JOHN"),
	}

	if n, ok := md.Int(TagRows.Key()); !ok || n != 512 {
		t.Errorf("Int(rows) = %d, %v", n, ok)
	}
	if n, ok := md.Int(TagSeriesNumber.Key()); !ok || n != 7 {
		t.Errorf("Int(series number) = %d, %v", n, ok)
	}
	if _, ok := md.Int(TagPatientName.Key()); ok {
		t.Error("a name is not an integer")
	}
	if f, ok := md.Float(TagWindowCenter.Key()); !ok || f != 40 {
		t.Errorf("Float(center) = %v, %v; want first component", f, ok)
	}
	if f, ok := md.Float(TagWindowWidth.Key()); !ok || f != 350 {
		t.Errorf("Float(width) = %v, %v", f, ok)
	}
	if f, ok := md.Float("float"); !ok || f != 1.5 {
		t.Errorf("Float(float) = %v, %v", f, ok)
	}
	if _, ok := md.Float("missing"); ok {
		t.Error("missing key should not convert")
	}
	if got := md.Text(TagPatientName.Key()); got != "DOE^JOHN" {
		t.Errorf("Text = %q", got)
	}
	if v, ok := md.Get(TagRows); !ok || v.String() != "512" {
		t.Errorf("Get(rows) = %v, %v", v, ok)
	}

	want := []string{"00100010", "00200011", "00280010", "00281050", "00281051", "float"}
	if diff := cmp.Diff(want, md.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		raw   []byte
		limit int
		want  string
	}{
		{"trailing space", []byte("DOE^JOHN "), 64, "DOE^JOHN"},
		{"nul padded uid", []byte("1.2.3\x00"), 64, "1.2.3"},
		{"latin1", []byte{'L', 'e', 'f', 0xE8, 'v', 'r', 'e'}, 64, "Lefèvre"},
		{"limit", []byte("ABCDEFGH"), 4, "ABCD"},
		{"empty", nil, 64, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := decodeText(tc.raw, tc.limit); got != tc.want {
				t.Errorf("decodeText = %q, want %q", got, tc.want)
			}
		})
	}
}
