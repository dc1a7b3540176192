package campaign

import (
	"strings"
	"time"
)

// DecisionType is the certification verdict recorded on an item.
type DecisionType string

const (
	DecisionUnspecified DecisionType = ""
	DecisionPending     DecisionType = "pending"
	DecisionApprove     DecisionType = "approve"
	DecisionRevoke      DecisionType = "revoke"
	DecisionModify      DecisionType = "modify"
	DecisionEscalate    DecisionType = "escalate"
)

// Decision is the per-item decision record. An item carries at most one
// active decision; re-applying overwrites it.
type Decision struct {
	Type       DecisionType
	ReasonCode string
	Comments   string
	DecidedAt  *time.Time
	DecidedBy  string
}

// IsDecided reports whether the item has a non-pending decision.
func (d Decision) IsDecided() bool {
	return d.Type != DecisionUnspecified && d.Type != DecisionPending
}

// DecisionInput carries the fields of a decision to apply.
type DecisionInput struct {
	Type       DecisionType
	ReasonCode string
	Comments   string
}

// Actor identifies who records a decision or transition.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// NormalizeDecisionInput canonicalizes and validates a decision payload.
// Pending is not an applicable decision; it is the absence of one.
func NormalizeDecisionInput(input DecisionInput) (DecisionInput, error) {
	input.Type = DecisionType(strings.ToLower(strings.TrimSpace(string(input.Type))))
	switch input.Type {
	case DecisionApprove, DecisionRevoke, DecisionModify, DecisionEscalate:
	default:
		return DecisionInput{}, ErrInvalidDecisionType
	}
	input.ReasonCode = strings.TrimSpace(input.ReasonCode)
	input.Comments = strings.TrimSpace(input.Comments)
	return input, nil
}

// ApplyItemDecision records one decision on one item, overwriting any prior
// decision. Permitted only while the campaign is editable.
func ApplyItemDecision(c Campaign, subjectID, itemID string, input DecisionInput, actor Actor, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if !c.Status.IsEditable() {
		return Campaign{}, ErrStatusDisallows(c.Status, "item decision")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return Campaign{}, ErrEmptyActor
	}

	normalized, err := NormalizeDecisionInput(input)
	if err != nil {
		return Campaign{}, err
	}

	updated := c.Clone()
	subjectIdx, err := updated.findSubject(subjectID)
	if err != nil {
		return Campaign{}, err
	}
	itemIdx, err := updated.Subjects[subjectIdx].findItem(itemID)
	if err != nil {
		return Campaign{}, err
	}

	decidedAt := now().UTC()
	updated.Subjects[subjectIdx].Items[itemIdx].Decision = Decision{
		Type:       normalized.Type,
		ReasonCode: normalized.ReasonCode,
		Comments:   normalized.Comments,
		DecidedAt:  &decidedAt,
		DecidedBy:  actor.ID,
	}
	if updated.Subjects[subjectIdx].ReviewStatus == ReviewPending {
		updated.Subjects[subjectIdx].ReviewStatus = ReviewInProgress
	}
	updated.UpdatedAt = decidedAt
	return updated, nil
}
