package domain

// ProjectDetails carries the identifying metadata shared by every section.
type ProjectDetails struct {
	ProjectTitle    string `json:"project_title"`
	SiteAddress     string `json:"site_address"`
	ConsultantName  string `json:"consultant_name,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	Qualifications  string `json:"qualifications,omitempty"`
	ContactDetails  string `json:"contact_details,omitempty"`
	ClientName      string `json:"client_name,omitempty"`
	ReportDate      string `json:"report_date,omitempty"`
	DevelopmentType string `json:"development_type,omitempty"`
	Zoning          string `json:"zoning,omitempty"`
	PPTN            string `json:"pptn,omitempty"`
	Council         string `json:"council,omitempty"`
}

type Introduction struct {
	Purpose         string `json:"purpose"`
	CouncilFeedback string `json:"council_feedback,omitempty"`
}

type ExistingConditions struct {
	SiteLocationDescription       string `json:"site_location_description,omitempty"`
	ExistingLandUseAndLayout      string `json:"existing_land_use_and_layout,omitempty"`
	SurroundingRoadNetworkDetails string `json:"surrounding_road_network_details,omitempty"`
	PublicTransportOptions        string `json:"public_transport_options,omitempty"`
}

type Proposal struct {
	Description        string `json:"description,omitempty"`
	FacilitiesDetails  string `json:"facilities_details,omitempty"`
	ParkingArrangement string `json:"parking_arrangement,omitempty"`
}

type ParkingAssessment struct {
	ExistingParkingProvision string `json:"existing_parking_provision,omitempty"`
	ProposedParkingProvision string `json:"proposed_parking_provision,omitempty"`
	ParkingRatesCalculations string `json:"parking_rates_calculations,omitempty"`
	ExpectedPatrons          string `json:"expected_patrons,omitempty"`
	Justification            string `json:"justification,omitempty"`
}

type ParkingDesign struct {
	DimensionsLayout string `json:"dimensions_layout,omitempty"`
	Compliance       string `json:"compliance,omitempty"`
}

type OtherMatters struct {
	BicycleParking    string `json:"bicycle_parking,omitempty"`
	LoadingAndWaste   string `json:"loading_and_waste,omitempty"`
	TrafficGeneration string `json:"traffic_generation,omitempty"`
}

type Conclusion struct {
	Summary string `json:"summary,omitempty"`
}

// InputDocument is the full report request. It is built once from the
// submission payload and read-only afterwards.
type InputDocument struct {
	ProjectDetails     ProjectDetails     `json:"project_details"`
	Introduction       Introduction       `json:"introduction"`
	ExistingConditions ExistingConditions `json:"existing_conditions"`
	Proposal           Proposal           `json:"proposal"`
	ParkingAssessment  ParkingAssessment  `json:"parking_assessment"`
	ParkingDesign      ParkingDesign      `json:"parking_design"`
	OtherMatters       OtherMatters       `json:"other_matters"`
	Conclusion         Conclusion         `json:"conclusion"`
}

// ProjectContext is the subset of project metadata handed to every
// section generation call.
type ProjectContext struct {
	ProjectTitle    string `json:"project_title"`
	SiteAddress     string `json:"site_address"`
	DevelopmentType string `json:"development_type"`
	Council         string `json:"council"`
}

// SectionTask is one unit of generation work derived from an InputDocument.
type SectionTask struct {
	ID      string
	Input   string
	Context ProjectContext
}

// SectionResult is the outcome of generating a single section. A failed
// section carries an error marker in Text instead of an error value so
// sibling sections are unaffected.
type SectionResult struct {
	ID   string
	Text string
}
