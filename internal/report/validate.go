package report

import (
	"strings"

	"github.com/trafficable/tia-backend/internal/domain"
)

// Validate checks an InputDocument before any job is created. It returns
// one message per missing required field, or nil when the document is
// acceptable.
func Validate(doc domain.InputDocument) []string {
	var problems []string

	if strings.TrimSpace(doc.ProjectDetails.ProjectTitle) == "" {
		problems = append(problems, "missing required field: project_details.project_title")
	}
	if strings.TrimSpace(doc.ProjectDetails.SiteAddress) == "" {
		problems = append(problems, "missing required field: project_details.site_address")
	}
	if strings.TrimSpace(doc.Introduction.Purpose) == "" {
		problems = append(problems, "missing required field: introduction.purpose")
	}

	return problems
}
