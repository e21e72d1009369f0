// Package document assembles a finished report into a downloadable
// Markdown document.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/trafficable/tia-backend/internal/domain"
)

const reportTemplate = `# Traffic Impact Assessment
## {{.ProjectTitle}}

**Site Address:** {{.SiteAddress}}
**Prepared for:** {{.ClientName}}
**Prepared by:** {{.ConsultantName}}{{if .CompanyName}}, {{.CompanyName}}{{end}}
**Date:** {{.ReportDate}}

---

## 1. Introduction

{{.IntroductionPurpose}}

{{if .CouncilFeedback}}### 1.1 Council Feedback

{{.CouncilFeedback}}

{{end}}## 2. Existing Conditions

### 2.1 Site Location

{{.SiteLocation}}

### 2.2 Existing Land Use

{{.LandUse}}

### 2.3 Surrounding Road Network

{{.RoadNetwork}}

### 2.4 Public Transport

{{.PublicTransport}}

## 3. The Proposal

### 3.1 Description

{{.ProposalDescription}}

### 3.2 Facilities

{{.ProposalFacilities}}

### 3.3 Parking Arrangement

{{.ProposalParking}}

## 4. Parking Assessment

### 4.1 Existing Parking Provision

{{.ParkingExisting}}

### 4.2 Proposed Parking Provision

{{.ParkingProposed}}

### 4.3 Parking Rates and Calculations

{{.ParkingRates}}

### 4.4 Expected Patrons

{{.ParkingPatrons}}

### 4.5 Parking Justification

{{.ParkingJustification}}

## 5. Parking Design

### 5.1 Dimensions and Layout

{{.ParkingDimensions}}

### 5.2 Compliance

{{.ParkingCompliance}}

## 6. Other Traffic Matters

### 6.1 Bicycle Parking

{{.BicycleParking}}

### 6.2 Loading and Waste Collection

{{.LoadingWaste}}

### 6.3 Traffic Generation

{{.TrafficGeneration}}

## 7. Conclusion

{{.Conclusion}}
`

type templateData struct {
	ProjectTitle   string
	SiteAddress    string
	ClientName     string
	ConsultantName string
	CompanyName    string
	ReportDate     string

	IntroductionPurpose  string
	CouncilFeedback      string
	SiteLocation         string
	LandUse              string
	RoadNetwork          string
	PublicTransport      string
	ProposalDescription  string
	ProposalFacilities   string
	ProposalParking      string
	ParkingExisting      string
	ParkingProposed      string
	ParkingRates         string
	ParkingPatrons       string
	ParkingJustification string
	ParkingDimensions    string
	ParkingCompliance    string
	BicycleParking       string
	LoadingWaste         string
	TrafficGeneration    string
	Conclusion           string
}

// Renderer turns a section mapping plus the project details into a
// Markdown document.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("report").Parse(reportTemplate))}
}

// Render produces the document bytes. Sections with no generated text
// render as empty headings rather than failing the download. Council
// feedback is the author's own wording and is included verbatim when given.
func (r *Renderer) Render(result map[string]string, doc domain.InputDocument) ([]byte, error) {
	section := func(id string) string {
		return result[id]
	}

	details := doc.ProjectDetails
	reportDate := strings.TrimSpace(details.ReportDate)
	if reportDate == "" {
		reportDate = time.Now().Format("02/01/2006")
	}

	data := templateData{
		ProjectTitle:   details.ProjectTitle,
		SiteAddress:    details.SiteAddress,
		ClientName:     details.ClientName,
		ConsultantName: details.ConsultantName,
		CompanyName:    details.CompanyName,
		ReportDate:     reportDate,

		CouncilFeedback:      strings.TrimSpace(doc.Introduction.CouncilFeedback),
		IntroductionPurpose:  section(domain.SectionIntroductionPurpose),
		SiteLocation:         section(domain.SectionExistingSiteLocation),
		LandUse:              section(domain.SectionExistingLandUse),
		RoadNetwork:          section(domain.SectionExistingRoadNetwork),
		PublicTransport:      section(domain.SectionExistingPublicTransit),
		ProposalDescription:  section(domain.SectionProposalDescription),
		ProposalFacilities:   section(domain.SectionProposalFacilities),
		ProposalParking:      section(domain.SectionProposalParking),
		ParkingExisting:      section(domain.SectionParkingExisting),
		ParkingProposed:      section(domain.SectionParkingProposed),
		ParkingRates:         section(domain.SectionParkingRates),
		ParkingPatrons:       section(domain.SectionParkingPatrons),
		ParkingJustification: section(domain.SectionParkingJustification),
		ParkingDimensions:    section(domain.SectionParkingDimensions),
		ParkingCompliance:    section(domain.SectionParkingCompliance),
		BicycleParking:       section(domain.SectionOtherBicycleParking),
		LoadingWaste:         section(domain.SectionOtherLoadingWaste),
		TrafficGeneration:    section(domain.SectionOtherTrafficGen),
		Conclusion:           section(domain.SectionConclusionSummary),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// SuggestFilename derives a safe download name from the project title.
func SuggestFilename(projectTitle string, now time.Time) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(projectTitle))
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "tia_report"
	}
	return fmt.Sprintf("%s_%s.md", sanitized, now.Format("20060102_150405"))
}
