package domain

// Case is one sample patient in the therapy demo catalog.
type Case struct {
	Reports []string `json:"reports"`
}

// CaseCatalog maps a case display name to its case, in catalog order.
type CaseCatalog = Ordered[Case]

// SampleImage is a predefined knee radiograph the user can pick on the
// assessment page.
type SampleImage struct {
	Label string
	Path  string // relative to the content directory
}

// SampleImages is the fixed image catalog offered by the image picker.
var SampleImages = []SampleImage{
	{Label: "Knee Image A", Path: "images/knee_sample_1.png"},
}

// FindSampleImage looks up a catalog image by label.
func FindSampleImage(label string) (SampleImage, bool) {
	for _, img := range SampleImages {
		if img.Label == label {
			return img, true
		}
	}
	return SampleImage{}, false
}

// AssessmentReport maps knee -> section title -> finding lines.
type AssessmentReport = Ordered[Ordered[[]string]]

// ReportTemplate maps a section heading to its lines, in document order.
type ReportTemplate = Ordered[[]string]
