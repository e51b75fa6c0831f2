package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsinham/dicomlens/internal/dicom"
	"github.com/mrsinham/dicomlens/internal/dicom/dicomdir"
	"github.com/mrsinham/dicomlens/internal/dicom/dicomtest"
)

const mrImageStorage = "1.2.840.10008.5.1.4.1.1.4"

func testLogger() zerolog.Logger { return zerolog.Nop() }

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }

// dicomtestFile returns a small explicit VR little endian image for patient.
func dicomtestFile(t *testing.T, patient string) []byte {
	t.Helper()
	b := dicomtest.NewBuilder(dicom.ExplicitVRLittleEndian).
		Preamble().
		Meta(mrImageStorage, "1.2.3.4", dicom.ExplicitVRLittleEndian.UID)
	b.String(dicom.TagPatientName, dicom.VRPN, patient)
	b.String(dicom.TagPatientID, dicom.VRLO, "PAT001")
	b.String(dicom.TagStudyDescription, dicom.VRLO, "Brain MRI")
	b.String(dicom.TagModality, dicom.VRCS, "MR")
	b.Image(2, 2, 8, false)
	b.Pixels8([]byte{0, 85, 170, 255})
	return b.Bytes()
}

// writeFixture writes data under dir and returns its path.
func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// execute runs the CLI in-process with args.
func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInspect(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))

	stdout, _, err := execute("inspect", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "00100010")
	assert.Contains(t, stdout, "PatientName")
	assert.Contains(t, stdout, "DOE^JANE")
	assert.Contains(t, stdout, "explicit VR little endian")
}

func TestInspectJSON(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))

	stdout, _, err := execute("inspect", path, "--json")
	require.NoError(t, err)

	var entries []metadataEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	values := map[string]string{}
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	assert.Equal(t, "DOE^JANE", values["00100010"])
	assert.Equal(t, "2", values["00280010"])
	assert.Equal(t, dicom.ExplicitVRLittleEndian.UID, values[dicom.KeyTransferSyntaxUID])
}

func TestInspectScope(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))

	stdout, _, err := execute("inspect", path, "--scope", "patient", "--json")
	require.NoError(t, err)

	var entries []metadataEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"PatientName", "PatientID"}, names)

	_, _, err = execute("inspect", path, "--scope", "department")
	assert.Error(t, err)
}

func TestInspectTag(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "Müller^Jürgen"))

	stdout, _, err := execute("inspect", path, "--tag", "PatientName")
	require.NoError(t, err)
	assert.Equal(t, "Müller^Jürgen\n", stdout)

	_, _, err = execute("inspect", path, "--tag", "PatientNam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PatientName")

	_, _, err = execute("inspect", path, "--tag", "InstitutionName")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not present")
}

func TestInspectNamesResolveWithTag(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))

	stdout, _, err := execute("inspect", path, "--json")
	require.NoError(t, err)
	var entries []metadataEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))

	var named int
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		named++
		assert.NotContains(t, e.Name, " ", "name %q should be a keyword", e.Name)

		out, _, err := execute("inspect", path, "--tag", e.Name)
		require.NoError(t, err, "--tag %s", e.Name)
		assert.Equal(t, e.Value+"\n", out, "--tag %s", e.Name)
	}
	assert.Greater(t, named, 5)

	var patient metadataEntry
	for _, e := range entries {
		if e.Key == dicom.TagPatientName.Key() {
			patient = e
		}
	}
	assert.Equal(t, "PatientName", patient.Name)
	assert.Equal(t, "Patient's Name", patient.Label)
}

func TestInspectMissingFile(t *testing.T) {
	_, _, err := execute("inspect", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "IM0001", dicomtestFile(t, "DOE^JANE"))
	out := filepath.Join(dir, "out.png")

	stdout, _, err := execute("export", path, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out+" (2x2)")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())

	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
}

func TestExportScale(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "CT", dicomtest.CT.File(dicom.ExplicitVRLittleEndian, 8, 16))
	out := filepath.Join(dir, "thumb.png")

	stdout, _, err := execute("export", path, "-o", out, "--scale", "0.5", "--json")
	require.NoError(t, err)

	var res exportResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, 8, res.Width)
	assert.Equal(t, 4, res.Height)
	assert.False(t, res.TestPattern)

	_, _, err = execute("export", path, "-o", out, "--scale", "0")
	assert.Error(t, err)
}

func TestExportTestPattern(t *testing.T) {
	dir := t.TempDir()
	b := dicomtest.NewBuilder(dicom.ExplicitVRLittleEndian).
		Preamble().
		Meta(mrImageStorage, "1.2.3.5", dicom.ExplicitVRLittleEndian.UID)
	b.String(dicom.TagPatientName, dicom.VRPN, "DOE^JOHN")
	path := writeFixture(t, dir, "NOPIX", b.Bytes())
	cfg := writeFixture(t, dir, "dicomlens.yaml", []byte("test_pattern:\n  width: 32\n  height: 16\n"))
	out := filepath.Join(dir, "pattern.png")

	stdout, _, err := execute("export", path, "-o", out, "--config", cfg, "--json")
	require.NoError(t, err)

	var res exportResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.True(t, res.TestPattern)
	assert.Contains(t, res.Reason, dicom.ErrNoPixelData.Error())
	assert.Equal(t, 32, res.Width)
	assert.Equal(t, 16, res.Height)
}

func TestExportDocuments(t *testing.T) {
	dir := t.TempDir()
	pdf := []byte("%PDF-1.4 report\n")
	b := dicomtest.NewBuilder(dicom.ExplicitVRLittleEndian).
		Preamble().
		Meta("1.2.840.10008.5.1.4.1.1.104.1", "1.2.3.6", dicom.ExplicitVRLittleEndian.UID)
	b.String(dicom.TagPatientName, dicom.VRPN, "DOE^JANE")
	b.Element(dicom.TagEncapsulatedDocument, dicom.VROB, pdf)
	path := writeFixture(t, dir, "REPORT", b.Bytes())
	docs := filepath.Join(dir, "docs")

	_, _, err := execute("export", path, "-o", filepath.Join(dir, "report.png"), "--docs", docs, "-q")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(docs, "document-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestExportRequiresOutput(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))
	_, _, err := execute("export", path)
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "DICOMDIR", dicomtest.BuildDICOMDIR(dicomtest.Chain("DICOM\\IMG001")))

	stdout, _, err := execute("tree", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "DOE^JANE [PAT001]")
	assert.Contains(t, stdout, "20240115 Brain MRI")
	assert.Contains(t, stdout, "#1 MR T1 AX (1 images)")
	assert.Contains(t, stdout, "DICOM\\IMG001 1.2.3.1.1.1")
	assert.Contains(t, stdout, "DICOMLENS: 1 patients, 1 images")
}

func TestTreeJSON(t *testing.T) {
	archive := dicomtest.RandomArchive(newRand(7), dicomtest.ArchiveShape{
		Patients: 2, StudiesPerPat: 1, SeriesPerStudy: 2, ImagesPerSeries: 3,
	})
	path := writeFixture(t, t.TempDir(), "DICOMDIR", dicomtest.BuildDICOMDIR(archive))

	stdout, _, err := execute("tree", path, "--json")
	require.NoError(t, err)

	var tree dicomdir.Tree
	require.NoError(t, json.Unmarshal([]byte(stdout), &tree))
	require.Len(t, tree.Patients, 2)
	assert.Equal(t, archive.Patients[1].Name, tree.Patients[1].Name)
	assert.Len(t, tree.Images(), 12)
}

func TestTreeRejectsImage(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", []byte("not a dicom file"))
	_, _, err := execute("tree", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, dicomdir.ErrNotDICOMDIR)
}

func TestLookup(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "DICOMDIR", dicomtest.BuildDICOMDIR(dicomtest.Chain("DICOM\\IMG001")))

	stdout, _, err := execute("lookup", path, "/media/cdrom/DICOM/IMG001")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Patient:  DOE^JANE (PAT001)")
	assert.Contains(t, stdout, "Series:   #1 MR T1 AX")

	stdout, _, err = execute("lookup", path, "dicom/img001", "--json")
	require.Error(t, err, "lookup is case sensitive")
	assert.Empty(t, stdout)

	stdout, _, err = execute("lookup", path, "DICOM\\IMG001", "--json")
	require.NoError(t, err)
	var snap dicomdir.Snapshot
	require.NoError(t, json.Unmarshal([]byte(stdout), &snap))
	assert.Equal(t, "1.2.3.1.1.1", snap.Image.SOPInstanceUID)
	assert.Equal(t, "Brain MRI", snap.Study.Description)
	assert.Nil(t, snap.Series.Images)
}

func TestLookupMissingPath(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "DICOMDIR", dicomtest.BuildDICOMDIR(dicomtest.Chain("DICOM\\IMG001")))

	_, _, err := execute("lookup", path, "DICOM/IMG002")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not referenced by")
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))

	_, stderr, err := execute("inspect", path, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "read input")

	_, stderr, err = execute("inspect", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "IM0001", dicomtestFile(t, "DOE^JANE"))
	_, _, err := execute("inspect", path, "--log-level", "chatty")
	assert.Error(t, err)
}
