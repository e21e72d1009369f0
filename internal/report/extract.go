package report

import (
	"strings"

	"github.com/trafficable/tia-backend/internal/domain"
)

// Context extracts the project metadata shared across all section
// generation calls.
func Context(doc domain.InputDocument) domain.ProjectContext {
	return domain.ProjectContext{
		ProjectTitle:    strings.TrimSpace(doc.ProjectDetails.ProjectTitle),
		SiteAddress:     strings.TrimSpace(doc.ProjectDetails.SiteAddress),
		DevelopmentType: strings.TrimSpace(doc.ProjectDetails.DevelopmentType),
		Council:         strings.TrimSpace(doc.ProjectDetails.Council),
	}
}

// ExtractSections flattens an InputDocument into the fixed set of section
// tasks. Tasks for fields the caller left empty are still returned with an
// empty Input; the scheduler skips them.
func ExtractSections(doc domain.InputDocument) []domain.SectionTask {
	projectContext := Context(doc)

	inputs := map[string]string{
		domain.SectionIntroductionPurpose:   doc.Introduction.Purpose,
		domain.SectionExistingSiteLocation:  doc.ExistingConditions.SiteLocationDescription,
		domain.SectionExistingLandUse:       doc.ExistingConditions.ExistingLandUseAndLayout,
		domain.SectionExistingRoadNetwork:   doc.ExistingConditions.SurroundingRoadNetworkDetails,
		domain.SectionExistingPublicTransit: doc.ExistingConditions.PublicTransportOptions,
		domain.SectionProposalDescription:   doc.Proposal.Description,
		domain.SectionProposalFacilities:    doc.Proposal.FacilitiesDetails,
		domain.SectionProposalParking:       doc.Proposal.ParkingArrangement,
		domain.SectionParkingExisting:       doc.ParkingAssessment.ExistingParkingProvision,
		domain.SectionParkingProposed:       doc.ParkingAssessment.ProposedParkingProvision,
		domain.SectionParkingRates:          doc.ParkingAssessment.ParkingRatesCalculations,
		domain.SectionParkingPatrons:        doc.ParkingAssessment.ExpectedPatrons,
		domain.SectionParkingJustification:  doc.ParkingAssessment.Justification,
		domain.SectionParkingDimensions:     doc.ParkingDesign.DimensionsLayout,
		domain.SectionParkingCompliance:     doc.ParkingDesign.Compliance,
		domain.SectionOtherBicycleParking:   doc.OtherMatters.BicycleParking,
		domain.SectionOtherLoadingWaste:     doc.OtherMatters.LoadingAndWaste,
		domain.SectionOtherTrafficGen:       doc.OtherMatters.TrafficGeneration,
		domain.SectionConclusionSummary:     doc.Conclusion.Summary,
	}

	tasks := make([]domain.SectionTask, 0, len(domain.SectionIDs))
	for _, sectionID := range domain.SectionIDs {
		tasks = append(tasks, domain.SectionTask{
			ID:      sectionID,
			Input:   strings.TrimSpace(inputs[sectionID]),
			Context: projectContext,
		})
	}
	return tasks
}
