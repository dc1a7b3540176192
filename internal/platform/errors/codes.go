// Package errors provides structured error handling with stable machine codes.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Campaign errors
	CodeCampaignTenantEmpty         Code = "CAMPAIGN_TENANT_EMPTY"
	CodeCampaignNameEmpty           Code = "CAMPAIGN_NAME_EMPTY"
	CodeCampaignInvalidReviewPeriod Code = "CAMPAIGN_INVALID_REVIEW_PERIOD"
	CodeCampaignStatusDisallowsOp   Code = "CAMPAIGN_STATUS_DISALLOWS_OPERATION"
	CodeCampaignNoSubjects          Code = "CAMPAIGN_NO_SUBJECTS"
	CodeCampaignIncompleteDecisions Code = "CAMPAIGN_INCOMPLETE_DECISIONS"
	CodeCampaignInvalidReviewerType Code = "CAMPAIGN_INVALID_REVIEWER_TYPE"

	// Subject/item errors
	CodeSubjectNotFound      Code = "SUBJECT_NOT_FOUND"
	CodeSubjectEmptyID       Code = "SUBJECT_EMPTY_ID"
	CodeItemNotFound         Code = "ITEM_NOT_FOUND"
	CodeItemEmptyID          Code = "ITEM_EMPTY_ID"
	CodeItemInvalidPrivilege Code = "ITEM_INVALID_PRIVILEGE_LEVEL"
	CodeItemInvalidDataClass Code = "ITEM_INVALID_DATA_CLASSIFICATION"

	// Decision errors
	CodeDecisionInvalidType Code = "DECISION_INVALID_TYPE"
	CodeDecisionEmptyActor  Code = "DECISION_EMPTY_ACTOR"

	// Bulk decision errors
	CodeBulkInvalidSelector Code = "BULK_INVALID_SELECTOR"
	CodeBulkEmptySelection  Code = "BULK_EMPTY_ITEM_SELECTION"

	// Submission errors
	CodeAttestationReviewerEmpty Code = "ATTESTATION_REVIEWER_EMPTY"

	// Second-level approval errors
	CodeSecondLevelNotRequired     Code = "SECOND_LEVEL_NOT_REQUIRED"
	CodeSecondLevelAlreadyDecided  Code = "SECOND_LEVEL_ALREADY_DECIDED"
	CodeSecondLevelInvalidOutcome  Code = "SECOND_LEVEL_INVALID_OUTCOME"
	CodeSecondLevelApprovalMissing Code = "SECOND_LEVEL_APPROVAL_MISSING"

	// Remediation errors
	CodeRemediationInvalidStatus Code = "REMEDIATION_INVALID_STATUS"
	CodeRemediationIncomplete    Code = "REMEDIATION_INCOMPLETE"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeRevisionConflict Code = "STORAGE_REVISION_CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCampaignTenantEmpty,
		CodeCampaignNameEmpty,
		CodeCampaignInvalidReviewPeriod,
		CodeCampaignInvalidReviewerType,
		CodeSubjectEmptyID,
		CodeItemEmptyID,
		CodeItemInvalidPrivilege,
		CodeItemInvalidDataClass,
		CodeDecisionInvalidType,
		CodeDecisionEmptyActor,
		CodeBulkInvalidSelector,
		CodeBulkEmptySelection,
		CodeAttestationReviewerEmpty,
		CodeSecondLevelInvalidOutcome,
		CodeRemediationInvalidStatus:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCampaignStatusDisallowsOp,
		CodeCampaignNoSubjects,
		CodeCampaignIncompleteDecisions,
		CodeSecondLevelNotRequired,
		CodeSecondLevelAlreadyDecided,
		CodeSecondLevelApprovalMissing,
		CodeRemediationIncomplete:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeSubjectNotFound,
		CodeItemNotFound:
		return codes.NotFound

	// Aborted - optimistic concurrency conflict, caller decides retry policy
	case CodeRevisionConflict:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
