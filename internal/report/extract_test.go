package report

import (
	"testing"

	"github.com/trafficable/tia-backend/internal/domain"
)

func TestExtractSectionsCoversEverySection(t *testing.T) {
	var doc domain.InputDocument
	doc.ProjectDetails.ProjectTitle = "  Depot  "
	doc.Introduction.Purpose = "assess impacts"
	doc.ParkingAssessment.Justification = "  shortfall is acceptable  "

	tasks := ExtractSections(doc)
	if len(tasks) != len(domain.SectionIDs) {
		t.Fatalf("expected %d tasks, got %d", len(domain.SectionIDs), len(tasks))
	}

	byID := make(map[string]domain.SectionTask, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}

	if byID[domain.SectionIntroductionPurpose].Input != "assess impacts" {
		t.Fatalf("introduction input not mapped")
	}
	if byID[domain.SectionParkingJustification].Input != "shortfall is acceptable" {
		t.Fatalf("inputs must be trimmed, got %q", byID[domain.SectionParkingJustification].Input)
	}
	if byID[domain.SectionConclusionSummary].Input != "" {
		t.Fatalf("unset fields must map to empty input")
	}
	if byID[domain.SectionIntroductionPurpose].Context.ProjectTitle != "Depot" {
		t.Fatalf("project context must be trimmed and shared")
	}
}

func TestValidateRequiredFields(t *testing.T) {
	var doc domain.InputDocument
	problems := Validate(doc)
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems for empty document, got %v", problems)
	}

	doc.ProjectDetails.ProjectTitle = "Depot"
	doc.ProjectDetails.SiteAddress = "1 Smith St"
	doc.Introduction.Purpose = "assess impacts"
	if problems := Validate(doc); len(problems) != 0 {
		t.Fatalf("expected valid document, got %v", problems)
	}

	doc.ProjectDetails.SiteAddress = "   "
	problems = Validate(doc)
	if len(problems) != 1 || problems[0] != "missing required field: project_details.site_address" {
		t.Fatalf("whitespace-only fields must fail, got %v", problems)
	}
}
