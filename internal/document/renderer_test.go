package document

import (
	"strings"
	"testing"
	"time"

	"github.com/trafficable/tia-backend/internal/domain"
)

func TestRenderIncludesSectionsAndDetails(t *testing.T) {
	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot Redevelopment"
	doc.ProjectDetails.SiteAddress = "1 Smith St"
	doc.ProjectDetails.ClientName = "Acme Pty Ltd"
	doc.ProjectDetails.ConsultantName = "J. Doe"
	doc.ProjectDetails.ReportDate = "12/01/2026"

	result := map[string]string{
		domain.SectionIntroductionPurpose: "This assessment evaluates traffic impacts.",
		domain.SectionConclusionSummary:   "Impacts are acceptable.",
	}

	rendered, err := NewRenderer().Render(result, doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	output := string(rendered)

	for _, want := range []string{
		"## Depot Redevelopment",
		"**Site Address:** 1 Smith St",
		"**Date:** 12/01/2026",
		"This assessment evaluates traffic impacts.",
		"Impacts are acceptable.",
		"## 7. Conclusion",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("rendered document missing %q", want)
		}
	}
}

func TestRenderDefaultsReportDate(t *testing.T) {
	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot"

	rendered, err := NewRenderer().Render(map[string]string{}, doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(string(rendered), "**Date:** ") {
		t.Fatalf("expected a date line even without an explicit report date")
	}
}

func TestRenderIncludesCouncilFeedbackWhenPresent(t *testing.T) {
	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "Depot"
	doc.Introduction.CouncilFeedback = "Council requested a loading assessment."

	rendered, err := NewRenderer().Render(map[string]string{}, doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(string(rendered), "Council requested a loading assessment.") {
		t.Fatalf("council feedback missing from document")
	}

	var bare domain.InputDocument
	bare.ProjectDetails.ProjectTitle = "Depot"
	rendered, err = NewRenderer().Render(map[string]string{}, bare)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(string(rendered), "Council Feedback") {
		t.Fatalf("council feedback heading must be omitted when empty")
	}
}

func TestSuggestFilename(t *testing.T) {
	now := time.Date(2026, 1, 12, 9, 30, 0, 0, time.UTC)

	got := SuggestFilename("Depot Redevelopment (Stage 2)", now)
	if got != "Depot_Redevelopment__Stage_2_20260112_093000.md" {
		t.Fatalf("unexpected filename %q", got)
	}

	if got := SuggestFilename("  ", now); got != "tia_report_20260112_093000.md" {
		t.Fatalf("expected fallback filename, got %q", got)
	}
}
