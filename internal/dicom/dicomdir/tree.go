package dicomdir

import (
	"github.com/mrsinham/dicomlens/internal/dicom"
)

// UnknownPatientName is shown for patient records without a name.
const UnknownPatientName = "Unknown"

// Tree is the patient hierarchy of a DICOMDIR.
type Tree struct {
	Patients []*Patient `json:"patients"`
}

// Patient is a patient node with its studies in directory order.
type Patient struct {
	Name      string   `json:"name"`
	ID        string   `json:"id"`
	BirthDate string   `json:"birthDate,omitempty"`
	Sex       string   `json:"sex,omitempty"`
	Studies   []*Study `json:"studies,omitempty"`
}

// Study is a study node with its series in directory order.
type Study struct {
	InstanceUID     string    `json:"instanceUID,omitempty"`
	ID              string    `json:"id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	AccessionNumber string    `json:"accessionNumber"`
	Description     string    `json:"description"`
	Series          []*Series `json:"series,omitempty"`
}

// Series is a series node with its images in directory order.
type Series struct {
	InstanceUID string   `json:"instanceUID,omitempty"`
	Number      string   `json:"number"`
	Modality    string   `json:"modality"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Images      []*Image `json:"images,omitempty"`
}

// Image is an image leaf and the file it references.
type Image struct {
	InstanceNumber    string `json:"instanceNumber"`
	SOPInstanceUID    string `json:"sopInstanceUID"`
	SOPClassUID       string `json:"sopClassUID"`
	TransferSyntaxUID string `json:"transferSyntaxUID"`
	// FilePath is the Referenced File ID as stored, '\' separated.
	FilePath string `json:"filePath"`
}

func newPatient(r PatientRecord) *Patient {
	name := r.text(dicom.TagPatientName)
	if name == "" {
		name = UnknownPatientName
	}
	return &Patient{
		Name:      name,
		ID:        r.text(dicom.TagPatientID),
		BirthDate: r.text(dicom.TagPatientBirthDate),
		Sex:       r.text(dicom.TagPatientSex),
	}
}

func newStudy(r StudyRecord) *Study {
	return &Study{
		InstanceUID:     r.text(dicom.TagStudyInstanceUID),
		ID:              r.text(dicom.TagStudyID),
		Date:            r.text(dicom.TagStudyDate),
		Time:            r.text(dicom.TagStudyTime),
		AccessionNumber: r.text(dicom.TagAccessionNumber),
		Description:     r.text(dicom.TagStudyDescription),
	}
}

func newSeries(r SeriesRecord) *Series {
	return &Series{
		InstanceUID: r.text(dicom.TagSeriesInstanceUID),
		Number:      r.text(dicom.TagSeriesNumber),
		Modality:    r.text(dicom.TagModality),
		Description: r.text(dicom.TagSeriesDescription),
		Date:        r.text(dicom.TagSeriesDate),
		Time:        r.text(dicom.TagSeriesTime),
	}
}

func newImage(r ImageRecord) *Image {
	return &Image{
		InstanceNumber:    r.text(dicom.TagInstanceNumber),
		SOPInstanceUID:    firstText(r.RecordHeader, dicom.TagReferencedSOPInstanceUID, dicom.TagSOPInstanceUID),
		SOPClassUID:       firstText(r.RecordHeader, dicom.TagReferencedSOPClassUIDInFile, dicom.TagSOPClassUID),
		TransferSyntaxUID: firstText(r.RecordHeader, dicom.TagReferencedTransferSyntaxUID, dicom.TagTransferSyntaxUID),
		FilePath:          r.FileID,
	}
}

func firstText(h RecordHeader, tags ...dicom.Tag) string {
	for _, t := range tags {
		if v := h.text(t); v != "" {
			return v
		}
	}
	return ""
}

// Images returns every image leaf in tree order.
func (t *Tree) Images() []*Image {
	var out []*Image
	t.Walk(func(_ *Patient, _ *Study, _ *Series, im *Image) {
		out = append(out, im)
	})
	return out
}

// Walk calls fn for every image leaf with its ancestors.
func (t *Tree) Walk(fn func(*Patient, *Study, *Series, *Image)) {
	for _, p := range t.Patients {
		for _, st := range p.Studies {
			for _, se := range st.Series {
				for _, im := range se.Images {
					fn(p, st, se, im)
				}
			}
		}
	}
}

// assemble builds the tree from the arena, following lower-level and next
// offsets when the file set carries them and sequence order otherwise.
func assemble(a *arena) *Tree {
	if a.linked() {
		return a.linkedTree()
	}
	return a.sequenceTree()
}

// linked reports whether any record points at another one.
func (a *arena) linked() bool {
	for _, r := range a.records {
		h := r.Header()
		if _, ok := a.resolve(h.LowerOffset); ok {
			return true
		}
		if _, ok := a.resolve(h.NextOffset); ok {
			return true
		}
	}
	return false
}

func (a *arena) linkedTree() *Tree {
	t := &Tree{}
	visited := make([]bool, len(a.records))
	for i, r := range a.records {
		p, ok := r.(PatientRecord)
		if !ok || !p.InUse || visited[i] {
			continue
		}
		visited[i] = true
		patient := newPatient(p)
		for _, si := range a.children(p.LowerOffset, 1, visited) {
			st := a.records[si].(StudyRecord)
			study := newStudy(st)
			for _, ri := range a.children(st.LowerOffset, 2, visited) {
				se := a.records[ri].(SeriesRecord)
				series := newSeries(se)
				for _, ii := range a.children(se.LowerOffset, 3, visited) {
					series.Images = append(series.Images, newImage(a.records[ii].(ImageRecord)))
				}
				study.Series = append(study.Series, series)
			}
			patient.Studies = append(patient.Studies, study)
		}
		t.Patients = append(t.Patients, patient)
	}
	return t
}

// children follows the sibling chain starting at first and returns the
// in-use records at the wanted level. The chain ends at offset 0, an
// unresolvable offset or a record already visited.
func (a *arena) children(first uint32, want int, visited []bool) []int {
	var out []int
	i, ok := a.resolve(first)
	for ok && !visited[i] {
		visited[i] = true
		r := a.records[i]
		if level(r) == want && r.Header().InUse {
			out = append(out, i)
		}
		i, ok = a.resolve(r.Header().NextOffset)
	}
	return out
}

// sequenceTree nests records by their order in the sequence: each record is
// a child of the closest preceding record one level up.
func (a *arena) sequenceTree() *Tree {
	t := &Tree{}
	var (
		patient *Patient
		study   *Study
		series  *Series
	)
	for _, r := range a.records {
		active := r.Header().InUse
		switch r := r.(type) {
		case PatientRecord:
			patient, study, series = nil, nil, nil
			if active {
				patient = newPatient(r)
				t.Patients = append(t.Patients, patient)
			}
		case StudyRecord:
			study, series = nil, nil
			if active && patient != nil {
				study = newStudy(r)
				patient.Studies = append(patient.Studies, study)
			}
		case SeriesRecord:
			series = nil
			if active && study != nil {
				series = newSeries(r)
				study.Series = append(study.Series, series)
			}
		case ImageRecord:
			if active && series != nil {
				series.Images = append(series.Images, newImage(r))
			}
		}
	}
	return t
}
