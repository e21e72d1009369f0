package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/trafficable/tia-backend/internal/domain"
)

// SectionKey derives the content hash for one section's generation inputs.
// The project context fields participate so the same wording for two
// different projects does not collide. encoding/json emits map keys in
// sorted order, which keeps the hash independent of field ordering.
func SectionKey(sectionID, input string, projectContext domain.ProjectContext) string {
	payload := map[string]string{
		"section":          sectionID,
		"content":          input,
		"project_title":    projectContext.ProjectTitle,
		"development_type": projectContext.DevelopmentType,
		"council":          projectContext.Council,
	}
	return hashJSON(payload)
}

// DocumentKey hashes the entire input document for exact whole-report reuse.
func DocumentKey(doc domain.InputDocument) string {
	return hashJSON(doc)
}

// FuzzyKey hashes only the identifying project fields, so a resubmission of
// the same project with cosmetic edits elsewhere can still reuse a prior
// report.
func FuzzyKey(doc domain.InputDocument) string {
	payload := map[string]string{
		"project_title":    doc.ProjectDetails.ProjectTitle,
		"site_address":     doc.ProjectDetails.SiteAddress,
		"development_type": doc.ProjectDetails.DevelopmentType,
		"council":          doc.ProjectDetails.Council,
	}
	return hashJSON(payload)
}

// HasIdentity reports whether the document carries at least one identifying
// project field. Fuzzy matching is skipped otherwise.
func HasIdentity(doc domain.InputDocument) bool {
	for _, value := range []string{
		doc.ProjectDetails.ProjectTitle,
		doc.ProjectDetails.SiteAddress,
		doc.ProjectDetails.DevelopmentType,
		doc.ProjectDetails.Council,
	} {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func hashJSON(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		// Marshal of string maps and plain structs cannot fail; keep a
		// stable sentinel anyway.
		encoded = []byte("unhashable")
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
