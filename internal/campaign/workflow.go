package campaign

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/recertly/recert/internal/platform/errors"
)

// AttestationInput carries the reviewer sign-off recorded at submission.
type AttestationInput struct {
	ReviewerName  string
	ReviewerEmail string
	Statement     string
}

// Submit moves an editable campaign to SUBMITTED.
//
// Preconditions: at least one subject exists and every item across every
// subject carries a non-pending decision. The completeness failure lists
// every offending item so reviewers can fix them in one pass.
//
// Side effects: submittedAt is stamped, every subject is marked reviewed,
// second-level approval is required iff privileged access is present, and
// the attestation is recorded.
func Submit(c Campaign, attestation AttestationInput, actor Actor, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if !c.Status.IsEditable() {
		return Campaign{}, ErrStatusDisallows(c.Status, "submit")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return Campaign{}, ErrEmptyActor
	}

	reviewerName := strings.TrimSpace(attestation.ReviewerName)
	if reviewerName == "" {
		reviewerName = strings.TrimSpace(actor.Name)
	}
	if reviewerName == "" {
		return Campaign{}, ErrEmptyReviewer
	}

	if len(c.Subjects) == 0 {
		return Campaign{}, ErrNoSubjects
	}
	if pending := c.PendingItems(); len(pending) > 0 {
		refs := make([]string, 0, len(pending))
		for _, ref := range pending {
			refs = append(refs, ref.String())
		}
		return Campaign{}, apperrors.WithMetadata(
			apperrors.CodeCampaignIncompleteDecisions,
			"campaign has undecided items",
			map[string]string{
				"PendingItems": strings.Join(refs, ", "),
				"PendingCount": strconv.Itoa(len(pending)),
			},
		)
	}

	updated := c.Clone()
	submittedAt := now().UTC()
	updated.Status = StatusSubmitted
	updated.SubmittedAt = &submittedAt
	updated.UpdatedAt = submittedAt

	for i := range updated.Subjects {
		reviewedAt := submittedAt
		updated.Subjects[i].ReviewStatus = ReviewCompleted
		updated.Subjects[i].ReviewedAt = &reviewedAt
		updated.Subjects[i].ReviewedBy = actor.ID
	}

	updated.Approvals = &Approvals{
		Attestation: Attestation{
			ReviewerName:  reviewerName,
			ReviewerEmail: strings.TrimSpace(attestation.ReviewerEmail),
			Statement:     strings.TrimSpace(attestation.Statement),
			AttestedAt:    submittedAt,
		},
		SecondLevelRequired: updated.HasPrivilegedAccess(),
	}
	return updated, nil
}

// SecondLevelInput carries the privileged-access sign-off decision.
type SecondLevelInput struct {
	ApproverID   string
	ApproverName string
	Outcome      SecondLevelOutcome
	Notes        string
}

// SecondLevelApprove records the second-level decision on a submitted
// campaign. On approval the campaign either completes immediately or enters
// the awaiting-remediation sub-state when revoke/modify decisions exist. On
// rejection it reverts to IN_REVIEW; the decision record is kept for audit.
func SecondLevelApprove(c Campaign, input SecondLevelInput, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if c.Status != StatusSubmitted {
		return Campaign{}, ErrStatusDisallows(c.Status, "second-level approval")
	}
	if c.Approvals == nil || !c.Approvals.SecondLevelRequired {
		return Campaign{}, ErrSecondLevelNotRequired
	}
	if c.Approvals.SecondLevel != nil {
		return Campaign{}, ErrSecondLevelAlreadyDecided
	}

	input.ApproverID = strings.TrimSpace(input.ApproverID)
	if input.ApproverID == "" {
		return Campaign{}, ErrEmptyActor
	}
	outcome := SecondLevelOutcome(strings.ToLower(strings.TrimSpace(string(input.Outcome))))
	if outcome != SecondLevelApproved && outcome != SecondLevelRejected {
		return Campaign{}, ErrInvalidSecondLevelOutcome
	}

	updated := c.Clone()
	decidedAt := now().UTC()
	updated.Approvals.SecondLevel = &SecondLevelDecision{
		ApproverID:   input.ApproverID,
		ApproverName: strings.TrimSpace(input.ApproverName),
		Outcome:      outcome,
		Notes:        strings.TrimSpace(input.Notes),
		DecidedAt:    decidedAt,
	}
	updated.UpdatedAt = decidedAt

	if outcome == SecondLevelRejected {
		updated.Status = StatusInReview
		return updated, nil
	}

	updated.ApprovedAt = &decidedAt
	if updated.NeedsRemediation() {
		updated.Remediation = &Remediation{Status: RemediationPending}
		return updated, nil
	}

	updated.Status = StatusCompleted
	updated.CompletedAt = &decidedAt
	return updated, nil
}

// RemediateInput carries ticket tracking for revoke/modify execution.
type RemediateInput struct {
	TicketID string
	Status   RemediationStatus
}

// Remediate records remediation progress on a submitted campaign. It requires
// an approved second-level decision; remediation before approval would
// execute unratified revocations.
func Remediate(c Campaign, input RemediateInput, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if c.Status != StatusSubmitted {
		return Campaign{}, ErrStatusDisallows(c.Status, "remediation")
	}
	if c.Approvals == nil || c.Approvals.SecondLevel == nil || c.Approvals.SecondLevel.Outcome != SecondLevelApproved {
		return Campaign{}, ErrSecondLevelApprovalMissing
	}

	status := input.Status
	if status == RemediationUnset {
		status = RemediationInProgress
	}
	switch status {
	case RemediationPending, RemediationInProgress, RemediationCompleted, RemediationNotRequired:
	default:
		return Campaign{}, ErrInvalidRemediationStatus
	}

	updated := c.Clone()
	updatedAt := now().UTC()
	if updated.Remediation == nil {
		updated.Remediation = &Remediation{}
	}

	ticketID := strings.TrimSpace(input.TicketID)
	if ticketID != "" {
		updated.Remediation.TicketID = ticketID
		updated.Remediation.TicketCreated = true
	}
	updated.Remediation.Status = status
	if status == RemediationCompleted && updated.Remediation.CompletedAt == nil {
		updated.Remediation.CompletedAt = &updatedAt
	}
	updated.UpdatedAt = updatedAt
	return updated, nil
}

// Complete closes a submitted campaign. When second-level approval is
// required it must exist and be approved; any tracked remediation must have
// reached COMPLETED or NOT_REQUIRED. Campaigns without privileged access may
// complete directly from SUBMITTED without a second-level record.
func Complete(c Campaign, verifiedBy string, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if c.Status != StatusSubmitted {
		return Campaign{}, ErrStatusDisallows(c.Status, "completion")
	}
	if c.Approvals != nil && c.Approvals.SecondLevelRequired {
		if c.Approvals.SecondLevel == nil || c.Approvals.SecondLevel.Outcome != SecondLevelApproved {
			return Campaign{}, ErrSecondLevelApprovalMissing
		}
	}
	if c.Remediation != nil && c.Remediation.Status != RemediationUnset {
		if c.Remediation.Status != RemediationCompleted && c.Remediation.Status != RemediationNotRequired {
			return Campaign{}, ErrRemediationIncomplete
		}
	}

	updated := c.Clone()
	completedAt := now().UTC()
	updated.Status = StatusCompleted
	if updated.CompletedAt == nil {
		updated.CompletedAt = &completedAt
	}
	if updated.Remediation == nil {
		updated.Remediation = &Remediation{Status: RemediationNotRequired}
	}
	updated.Remediation.VerifiedAt = &completedAt
	updated.Remediation.VerifiedBy = strings.TrimSpace(verifiedBy)
	updated.UpdatedAt = completedAt
	return updated, nil
}

// CanDelete reports whether the campaign may be removed. Only drafts are
// deletable; anything later has audit value.
func (c Campaign) CanDelete() bool {
	return c.Status == StatusDraft
}
