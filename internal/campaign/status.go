package campaign

import (
	"fmt"
	"strings"
)

// Status describes the campaign lifecycle label used by domain decisions.
type Status string

const (
	StatusUnspecified Status = ""
	StatusDraft       Status = "DRAFT"
	StatusInReview    Status = "IN_REVIEW"
	StatusSubmitted   Status = "SUBMITTED"
	StatusCompleted   Status = "COMPLETED"
)

// IsEditable reports whether campaign metadata, subjects, and item decisions
// may still be mutated. Draft and in-review are one editable super-state; no
// guard distinguishes them.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusInReview
}

// StatusFromLabel parses a string label into a Status.
// It trims whitespace and matches case-insensitively. Both short ("DRAFT")
// and prefixed ("CAMPAIGN_STATUS_DRAFT") forms are accepted.
func StatusFromLabel(value string) (Status, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StatusUnspecified, fmt.Errorf("campaign status is required")
	}
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "DRAFT", "CAMPAIGN_STATUS_DRAFT":
		return StatusDraft, nil
	case "IN_REVIEW", "CAMPAIGN_STATUS_IN_REVIEW":
		return StatusInReview, nil
	case "SUBMITTED", "CAMPAIGN_STATUS_SUBMITTED":
		return StatusSubmitted, nil
	case "COMPLETED", "CAMPAIGN_STATUS_COMPLETED":
		return StatusCompleted, nil
	default:
		return StatusUnspecified, fmt.Errorf("unknown campaign status: %s", trimmed)
	}
}

// statusLabel returns a stable label for a campaign status.
func statusLabel(status Status) string {
	if status == StatusUnspecified {
		return "UNSPECIFIED"
	}
	return string(status)
}
