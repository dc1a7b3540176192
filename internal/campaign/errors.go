package campaign

import (
	apperrors "github.com/recertly/recert/internal/platform/errors"
)

var (
	// ErrEmptyTenant indicates a missing tenant identifier.
	ErrEmptyTenant = apperrors.New(apperrors.CodeCampaignTenantEmpty, "tenant is required")
	// ErrEmptyName indicates a missing campaign name.
	ErrEmptyName = apperrors.New(apperrors.CodeCampaignNameEmpty, "campaign name is required")
	// ErrInvalidReviewPeriod indicates a review period that ends before it starts.
	ErrInvalidReviewPeriod = apperrors.New(apperrors.CodeCampaignInvalidReviewPeriod, "review period end precedes start")
	// ErrStatusDisallowsOp indicates an operation blocked by the current campaign status.
	ErrStatusDisallowsOp = apperrors.New(apperrors.CodeCampaignStatusDisallowsOp, "campaign status disallows this operation")
	// ErrNoSubjects indicates a submission attempt on a campaign without subjects.
	ErrNoSubjects = apperrors.New(apperrors.CodeCampaignNoSubjects, "campaign has no subjects to review")
	// ErrIncompleteDecisions indicates items without a decision at submission time.
	ErrIncompleteDecisions = apperrors.New(apperrors.CodeCampaignIncompleteDecisions, "campaign has items without a decision")

	// ErrSubjectNotFound indicates a subject id absent from the campaign.
	ErrSubjectNotFound = apperrors.New(apperrors.CodeSubjectNotFound, "subject not found in campaign")
	// ErrEmptySubjectID indicates a missing subject identifier.
	ErrEmptySubjectID = apperrors.New(apperrors.CodeSubjectEmptyID, "subject id is required")
	// ErrItemNotFound indicates an item id absent from the subject.
	ErrItemNotFound = apperrors.New(apperrors.CodeItemNotFound, "item not found for subject")
	// ErrEmptyItemID indicates a missing item identifier.
	ErrEmptyItemID = apperrors.New(apperrors.CodeItemEmptyID, "item id is required")

	// ErrInvalidDecisionType indicates an unsupported decision type.
	ErrInvalidDecisionType = apperrors.New(apperrors.CodeDecisionInvalidType, "decision type is invalid")
	// ErrEmptyActor indicates a decision without an acting identity.
	ErrEmptyActor = apperrors.New(apperrors.CodeDecisionEmptyActor, "acting identity is required")

	// ErrInvalidSelector indicates an unsupported bulk selector shape.
	ErrInvalidSelector = apperrors.New(apperrors.CodeBulkInvalidSelector, "bulk selector is invalid")
	// ErrEmptySelection indicates an explicit selection without item ids.
	ErrEmptySelection = apperrors.New(apperrors.CodeBulkEmptySelection, "item selection is empty")

	// ErrEmptyReviewer indicates a submission without reviewer attestation identity.
	ErrEmptyReviewer = apperrors.New(apperrors.CodeAttestationReviewerEmpty, "reviewer identity is required")

	// ErrSecondLevelNotRequired indicates second-level approval attempted when not needed.
	ErrSecondLevelNotRequired = apperrors.New(apperrors.CodeSecondLevelNotRequired, "second-level approval is not required")
	// ErrSecondLevelAlreadyDecided indicates a duplicate second-level decision.
	ErrSecondLevelAlreadyDecided = apperrors.New(apperrors.CodeSecondLevelAlreadyDecided, "second-level decision already recorded")
	// ErrInvalidSecondLevelOutcome indicates a second-level decision outside approved/rejected.
	ErrInvalidSecondLevelOutcome = apperrors.New(apperrors.CodeSecondLevelInvalidOutcome, "second-level decision must be approved or rejected")
	// ErrSecondLevelApprovalMissing indicates remediation without an approved second-level decision.
	ErrSecondLevelApprovalMissing = apperrors.New(apperrors.CodeSecondLevelApprovalMissing, "remediation requires an approved second-level decision")

	// ErrInvalidRemediationStatus indicates an unsupported remediation status.
	ErrInvalidRemediationStatus = apperrors.New(apperrors.CodeRemediationInvalidStatus, "remediation status is invalid")
	// ErrRemediationIncomplete indicates completion blocked by open remediation.
	ErrRemediationIncomplete = apperrors.New(apperrors.CodeRemediationIncomplete, "remediation is not complete")
)

// ErrInvalidPrivilegeLabel builds a privilege-level validation error carrying the value.
func ErrInvalidPrivilegeLabel(value string) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeItemInvalidPrivilege,
		"unknown privilege level: "+value,
		map[string]string{"Value": value},
	)
}

// ErrInvalidClassificationLabel builds a data-classification validation error carrying the value.
func ErrInvalidClassificationLabel(value string) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeItemInvalidDataClass,
		"unknown data classification: "+value,
		map[string]string{"Value": value},
	)
}

// ErrStatusDisallows builds a status-guard error naming the blocking status.
func ErrStatusDisallows(status Status, operation string) *apperrors.Error {
	label := statusLabel(status)
	return apperrors.WithMetadata(
		apperrors.CodeCampaignStatusDisallowsOp,
		"campaign status "+label+" disallows "+operation,
		map[string]string{"Status": label, "Operation": operation},
	)
}
