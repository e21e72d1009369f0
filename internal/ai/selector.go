package ai

import "github.com/trafficable/tia-backend/internal/domain"

// SelectorConfig tunes per-section model routing.
type SelectorConfig struct {
	DefaultModel     string
	FastModel        string
	HighQualityModel string

	// ComplexityThreshold is the input length (in characters) above which
	// a section counts as complex.
	ComplexityThreshold int
	// ForceDefault short-circuits routing to the default model, useful
	// when an account only has one model provisioned.
	ForceDefault bool
}

// Selector picks a model per section. Analytical sections and long inputs
// get the high quality model, boilerplate-ish sections with short inputs get
// the fast one, everything else uses the default.
type Selector struct {
	cfg SelectorConfig
}

const (
	defaultModel      = "gpt-4.1-mini"
	fastModel         = "gpt-3.5-turbo"
	defaultComplexity = 100
)

// highComplexitySections always merit the strongest model regardless of
// input length.
var highComplexitySections = map[string]bool{
	domain.SectionIntroductionPurpose:  true,
	domain.SectionProposalDescription:  true,
	domain.SectionParkingJustification: true,
	domain.SectionOtherTrafficGen:      true,
	domain.SectionConclusionSummary:    true,
}

// fastSections tolerate the cheaper model when their input is short.
var fastSections = map[string]bool{
	domain.SectionExistingPublicTransit: true,
	domain.SectionParkingExisting:       true,
	domain.SectionOtherBicycleParking:   true,
	domain.SectionOtherLoadingWaste:     true,
}

// NewSelector fills unset fields with defaults. An empty HighQualityModel
// falls back to the default model, so routing degrades rather than breaking.
func NewSelector(cfg SelectorConfig) *Selector {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaultModel
	}
	if cfg.FastModel == "" {
		cfg.FastModel = fastModel
	}
	if cfg.HighQualityModel == "" {
		cfg.HighQualityModel = cfg.DefaultModel
	}
	if cfg.ComplexityThreshold <= 0 {
		cfg.ComplexityThreshold = defaultComplexity
	}
	return &Selector{cfg: cfg}
}

// Select returns the model for one section given its input length.
func (s *Selector) Select(sectionID string, contentLength int) string {
	if s.cfg.ForceDefault {
		return s.cfg.DefaultModel
	}
	if highComplexitySections[sectionID] || contentLength > s.cfg.ComplexityThreshold {
		return s.cfg.HighQualityModel
	}
	if fastSections[sectionID] && contentLength <= s.cfg.ComplexityThreshold {
		return s.cfg.FastModel
	}
	return s.cfg.DefaultModel
}
