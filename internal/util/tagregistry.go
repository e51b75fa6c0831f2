// Package util holds lookup helpers shared by the command line tools.
package util

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// TagScope is the level of the patient hierarchy a tag describes.
type TagScope int

const (
	ScopePatient TagScope = iota
	ScopeStudy
	ScopeSeries
	ScopeImage
	// ScopeOther covers dictionary tags outside the registry.
	ScopeOther
)

func (s TagScope) String() string {
	switch s {
	case ScopePatient:
		return "Patient"
	case ScopeStudy:
		return "Study"
	case ScopeSeries:
		return "Series"
	case ScopeImage:
		return "Image"
	default:
		return "Other"
	}
}

// ParseScope parses a scope name, ignoring case.
func ParseScope(s string) (TagScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patient":
		return ScopePatient, nil
	case "study":
		return ScopeStudy, nil
	case "series":
		return ScopeSeries, nil
	case "image":
		return ScopeImage, nil
	}
	return ScopeOther, fmt.Errorf("invalid scope %q, valid options: patient, study, series, image", s)
}

// TagInfo describes a tag known by name. Name is the dictionary keyword
// accepted by GetTagByName; Label is the human-readable dictionary name.
type TagInfo struct {
	Name  string
	Label string
	Tag   dicom.Tag
	Scope TagScope
}

// tagRegistry maps lowercase keywords to their TagInfo.
var tagRegistry = map[string]TagInfo{}

func register(scope TagScope, tags ...dicom.Tag) {
	for _, t := range tags {
		keyword := t.Keyword()
		tagRegistry[strings.ToLower(keyword)] = TagInfo{Name: keyword, Label: t.Name(), Tag: t, Scope: scope}
	}
}

func init() {
	register(ScopePatient,
		dicom.TagPatientName, dicom.TagPatientID, dicom.TagPatientBirthDate, dicom.TagPatientSex)
	register(ScopeStudy,
		dicom.TagStudyInstanceUID, dicom.TagStudyID, dicom.TagStudyDate, dicom.TagStudyTime,
		dicom.TagAccessionNumber, dicom.TagStudyDescription)
	register(ScopeSeries,
		dicom.TagSeriesInstanceUID, dicom.TagSeriesNumber, dicom.TagModality,
		dicom.TagSeriesDescription, dicom.TagSeriesDate, dicom.TagSeriesTime)
	register(ScopeImage,
		dicom.TagSOPClassUID, dicom.TagSOPInstanceUID, dicom.TagInstanceNumber,
		dicom.TagSamplesPerPixel, dicom.TagPhotometricInterpretation,
		dicom.TagRows, dicom.TagColumns, dicom.TagBitsAllocated, dicom.TagBitsStored,
		dicom.TagHighBit, dicom.TagPixelRepresentation,
		dicom.TagWindowCenter, dicom.TagWindowWidth, dicom.TagRescaleIntercept, dicom.TagRescaleSlope)
}

// GetTagByName returns TagInfo for a tag name, ignoring case. Names outside
// the registry are looked up in the data dictionary with ScopeOther. Unknown
// names get an error suggesting the closest registered name.
func GetTagByName(name string) (TagInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}
	if info, err := tag.FindByName(strings.TrimSpace(name)); err == nil {
		return TagInfo{
			Name:  info.Keyword,
			Label: info.Name,
			Tag:   dicom.Tag{Group: info.Tag.Group, Element: info.Tag.Element},
			Scope: ScopeOther,
		}, nil
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}
	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// TagsInScope returns the registered tags of scope sorted by tag.
func TagsInScope(scope TagScope) []TagInfo {
	var out []TagInfo
	for _, info := range tagRegistry {
		if info.Scope == scope {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tag.Key() < out[j].Tag.Key()
	})
	return out
}

// findClosestTagName finds the closest registered name by Levenshtein
// distance, or "" when nothing is within 5 edits.
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	keys := make([]string, 0, len(tagRegistry))
	for key := range tagRegistry {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = tagRegistry[key].Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance returns the number of single-byte edits between a and b.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
