package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
var enUS = map[string]string{
	"UNKNOWN": "Something went wrong. Please try again.",

	"CAMPAIGN_TENANT_EMPTY":          "A tenant is required.",
	"CAMPAIGN_NAME_EMPTY":            "A campaign name is required.",
	"CAMPAIGN_INVALID_REVIEW_PERIOD": "The review period end must not precede its start.",
	"CAMPAIGN_STATUS_DISALLOWS_OPERATION": "This operation is not allowed while the campaign is {{.Status}}.",
	"CAMPAIGN_NO_SUBJECTS":                "At least one subject is required before submission.",
	"CAMPAIGN_INCOMPLETE_DECISIONS":       "Every access item needs a decision before submission. Pending: {{.PendingItems}}.",
	"CAMPAIGN_INVALID_REVIEWER_TYPE":      "The reviewer type is not recognized.",

	"SUBJECT_NOT_FOUND":                "The subject was not found in this campaign.",
	"SUBJECT_EMPTY_ID":                 "A subject identifier is required.",
	"ITEM_NOT_FOUND":                   "The access item was not found for this subject.",
	"ITEM_EMPTY_ID":                    "An item identifier is required.",
	"ITEM_INVALID_PRIVILEGE_LEVEL":     "The privilege level is not recognized.",
	"ITEM_INVALID_DATA_CLASSIFICATION": "The data classification is not recognized.",

	"DECISION_INVALID_TYPE": "The decision type is not recognized.",
	"DECISION_EMPTY_ACTOR":  "An acting identity is required to record a decision.",

	"BULK_INVALID_SELECTOR":     "The bulk decision selector is not recognized.",
	"BULK_EMPTY_ITEM_SELECTION": "At least one item must be selected.",

	"ATTESTATION_REVIEWER_EMPTY": "A reviewer identity is required to attest the submission.",

	"SECOND_LEVEL_NOT_REQUIRED":     "This campaign does not require second-level approval.",
	"SECOND_LEVEL_ALREADY_DECIDED":  "A second-level decision has already been recorded.",
	"SECOND_LEVEL_INVALID_OUTCOME":  "The second-level decision must be approved or rejected.",
	"SECOND_LEVEL_APPROVAL_MISSING": "Remediation requires an approved second-level decision.",

	"REMEDIATION_INVALID_STATUS": "The remediation status is not recognized.",
	"REMEDIATION_INCOMPLETE":     "The campaign cannot complete while remediation is open.",

	"NOT_FOUND":                 "The requested record was not found.",
	"STORAGE_REVISION_CONFLICT": "The campaign was modified concurrently. Reload and retry.",
}
