package domain

// Section identifiers. The set is fixed; every job touches the same 19
// sections, most with empty input.
const (
	SectionIntroductionPurpose   = "introduction_purpose"
	SectionExistingSiteLocation  = "existing_conditions_site_location"
	SectionExistingLandUse       = "existing_conditions_land_use"
	SectionExistingRoadNetwork   = "existing_conditions_road_network"
	SectionExistingPublicTransit = "existing_conditions_public_transport"
	SectionProposalDescription   = "proposal_description"
	SectionProposalFacilities    = "proposal_facilities"
	SectionProposalParking       = "proposal_parking"
	SectionParkingExisting       = "parking_existing_provision"
	SectionParkingProposed       = "parking_proposed_provision"
	SectionParkingRates          = "parking_rates_calculations"
	SectionParkingPatrons        = "parking_expected_patrons"
	SectionParkingJustification  = "parking_justification"
	SectionParkingDimensions     = "parking_design_dimensions"
	SectionParkingCompliance     = "parking_design_compliance"
	SectionOtherBicycleParking   = "other_bicycle_parking"
	SectionOtherLoadingWaste     = "other_loading_waste"
	SectionOtherTrafficGen       = "other_traffic_generation"
	SectionConclusionSummary     = "conclusion_summary"
)

// SectionIDs lists every section in document order.
var SectionIDs = []string{
	SectionIntroductionPurpose,
	SectionExistingSiteLocation,
	SectionExistingLandUse,
	SectionExistingRoadNetwork,
	SectionExistingPublicTransit,
	SectionProposalDescription,
	SectionProposalFacilities,
	SectionProposalParking,
	SectionParkingExisting,
	SectionParkingProposed,
	SectionParkingRates,
	SectionParkingPatrons,
	SectionParkingJustification,
	SectionParkingDimensions,
	SectionParkingCompliance,
	SectionOtherBicycleParking,
	SectionOtherLoadingWaste,
	SectionOtherTrafficGen,
	SectionConclusionSummary,
}

// DefaultPriority sorts unknown sections after every known tier.
const DefaultPriority = 999

// sectionPriorities drives tier scheduling; lower runs earlier. The
// reader-facing sections come first so progressive delivery fills the top
// of the document before the appendix-like material.
var sectionPriorities = map[string]int{
	SectionIntroductionPurpose:   1,
	SectionExistingSiteLocation:  2,
	SectionProposalDescription:   2,
	SectionExistingLandUse:       3,
	SectionProposalParking:       3,
	SectionExistingRoadNetwork:   4,
	SectionParkingProposed:       4,
	SectionExistingPublicTransit: 5,
	SectionParkingJustification:  5,
	SectionProposalFacilities:    6,
	SectionOtherTrafficGen:       6,
	SectionParkingExisting:       7,
	SectionParkingRates:          8,
	SectionParkingPatrons:        9,
	SectionParkingDimensions:     10,
	SectionParkingCompliance:     11,
	SectionOtherBicycleParking:   12,
	SectionOtherLoadingWaste:     13,
	SectionConclusionSummary:     14,
}

// SectionPriority returns the scheduling tier for a section id.
func SectionPriority(sectionID string) int {
	if priority, ok := sectionPriorities[sectionID]; ok {
		return priority
	}
	return DefaultPriority
}

// Summary-like sections get a tighter output budget than the narrative ones.
var sectionTokenBudgets = map[string]int{
	SectionIntroductionPurpose: 600,
	SectionConclusionSummary:   600,
	SectionExistingRoadNetwork: 1200,
	SectionProposalDescription: 1200,
}

// SectionTokenBudget returns the max output tokens for a section, falling
// back to the configured default for sections without an override.
func SectionTokenBudget(sectionID string, defaultBudget int) int {
	if budget, ok := sectionTokenBudgets[sectionID]; ok {
		return budget
	}
	return defaultBudget
}
