package dicomtest

import (
	"fmt"
	"math/rand/v2"
)

// FrenchNameProbability is the share of generated names drawn from the
// French lists, whose accents exercise ISO-8859-1 decoding.
const FrenchNameProbability = 0.20

var (
	englishFirstNames = []string{
		"James", "Mary", "Robert", "Patricia", "Michael", "Linda", "David", "Susan",
		"Thomas", "Karen", "Daniel", "Emily", "Andrew", "Rachel", "Henry", "Grace",
	}
	englishLastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis", "Wilson",
		"Taylor", "Moore", "Clark", "Walker", "Hughes", "Bennett", "Foster", "Sullivan",
	}
	frenchFirstNames = []string{
		"André", "François", "Stéphane", "Éric", "Raphaël", "Benoît", "Jérôme", "Rémi",
		"Françoise", "Valérie", "Céline", "Aurélie", "Hélène", "Chloé", "Anaïs", "Noémie",
	}
	frenchLastNames = []string{
		"Dubois", "Lefèvre", "Moreau", "Girard", "Mercier", "Rousseau", "Noël", "Garçon",
	}

	// Latin1Names carry punctuation and accents that fit in ISO-8859-1.
	Latin1Names = []string{
		"Müller-Schmidt^Jean-Pierre", "O'Connor^Siân", "D'Agostino^Renée",
		"García-López^Ángel", "Østergaard^Søren", "Björnsson^Zoë",
	}
)

// PatientName returns a random "LAST^FIRST" name.
func PatientName(rng *rand.Rand) string {
	if rng.Float64() < FrenchNameProbability {
		return frenchLastNames[rng.IntN(len(frenchLastNames))] + "^" + frenchFirstNames[rng.IntN(len(frenchFirstNames))]
	}
	return englishLastNames[rng.IntN(len(englishLastNames))] + "^" + englishFirstNames[rng.IntN(len(englishFirstNames))]
}

// ArchiveShape sets how many children each level of a random archive has.
type ArchiveShape struct {
	Patients        int
	StudiesPerPat   int
	SeriesPerStudy  int
	ImagesPerSeries int
}

// RandomArchive returns an archive of the given shape with random patient
// data and file IDs laid out as PTn/STn/SEn/IMn.
func RandomArchive(rng *rand.Rand, shape ArchiveShape) Archive {
	modalities := []string{"MR", "CT"}
	var a Archive
	for p := 1; p <= shape.Patients; p++ {
		sex := "F"
		if rng.IntN(2) == 0 {
			sex = "M"
		}
		patient := Patient{
			Name:      PatientName(rng),
			ID:        fmt.Sprintf("PAT%05d", rng.IntN(100000)),
			BirthDate: fmt.Sprintf("%04d%02d%02d", 1940+rng.IntN(60), 1+rng.IntN(12), 1+rng.IntN(28)),
			Sex:       sex,
		}
		for s := 1; s <= shape.StudiesPerPat; s++ {
			study := Study{
				UID:             fmt.Sprintf("1.2.826.0.1.3680043.8.498.%d.%d", p, s),
				ID:              fmt.Sprintf("STU%03d", s),
				Date:            fmt.Sprintf("2024%02d%02d", 1+rng.IntN(12), 1+rng.IntN(28)),
				Time:            fmt.Sprintf("%02d%02d00", rng.IntN(24), rng.IntN(60)),
				AccessionNumber: fmt.Sprintf("ACC%06d", rng.IntN(1000000)),
				Description:     "Routine exam",
			}
			for se := 1; se <= shape.SeriesPerStudy; se++ {
				series := Series{
					UID:         fmt.Sprintf("%s.%d", study.UID, se),
					Number:      se,
					Modality:    modalities[rng.IntN(len(modalities))],
					Description: fmt.Sprintf("Series %d", se),
					Date:        study.Date,
					Time:        study.Time,
				}
				for im := 1; im <= shape.ImagesPerSeries; im++ {
					series.Images = append(series.Images, Image{
						Number:            im,
						FileID:            fmt.Sprintf("PT%06d/ST%06d/SE%06d/IM%06d", p-1, s-1, se-1, im),
						SOPClassUID:       "1.2.840.10008.5.1.4.1.1.4",
						SOPInstanceUID:    fmt.Sprintf("%s.%d", series.UID, im),
						TransferSyntaxUID: "1.2.840.10008.1.2.1",
					})
				}
				study.Series = append(study.Series, series)
			}
			patient.Studies = append(patient.Studies, study)
		}
		a.Patients = append(a.Patients, patient)
	}
	return a
}
