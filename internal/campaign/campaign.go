// Package campaign models access review campaigns: the aggregate, its
// lifecycle state machine, per-item decision records, and the bulk decision
// processor. Every function is pure over the aggregate value; persistence and
// audit happen at the engine boundary.
package campaign

import (
	"fmt"
	"strings"
	"time"

	"github.com/recertly/recert/internal/platform/id"
)

// SecondLevelOutcome is the verdict of a second-level approver.
type SecondLevelOutcome string

const (
	SecondLevelApproved SecondLevelOutcome = "approved"
	SecondLevelRejected SecondLevelOutcome = "rejected"
)

// RemediationStatus tracks execution of revoke/modify decisions after approval.
// It is local to the remediation record, distinct from campaign status.
type RemediationStatus string

const (
	RemediationUnset       RemediationStatus = ""
	RemediationPending     RemediationStatus = "PENDING"
	RemediationInProgress  RemediationStatus = "IN_PROGRESS"
	RemediationCompleted   RemediationStatus = "COMPLETED"
	RemediationNotRequired RemediationStatus = "NOT_REQUIRED"
)

// Attestation captures the reviewer's sign-off recorded at submission.
type Attestation struct {
	ReviewerName  string
	ReviewerEmail string
	Statement     string
	AttestedAt    time.Time
}

// SecondLevelDecision records the privileged-access sign-off. Kept for audit
// even when the campaign reverts to review after a rejection.
type SecondLevelDecision struct {
	ApproverID   string
	ApproverName string
	Outcome      SecondLevelOutcome
	Notes        string
	DecidedAt    time.Time
}

// Approvals groups submission attestation and second-level review state.
type Approvals struct {
	Attestation         Attestation
	SecondLevelRequired bool
	SecondLevel         *SecondLevelDecision
}

// Remediation tracks the ticketed follow-up for revoke/modify decisions.
type Remediation struct {
	TicketID      string
	TicketCreated bool
	Status        RemediationStatus
	CompletedAt   *time.Time
	VerifiedAt    *time.Time
	VerifiedBy    string
}

// Campaign is the access review aggregate. It owns its subjects, which own
// their items; the whole aggregate is the unit of concurrency control.
type Campaign struct {
	ID            string
	TenantID      string
	Name          string
	SystemName    string
	Environment   string
	BusinessUnit  string
	ReviewType    string
	TriggerReason string
	ReviewerType  string

	PeriodStart time.Time
	PeriodEnd   time.Time
	DueDate     time.Time

	Status   Status
	Subjects []Subject

	Approvals   *Approvals
	Remediation *Remediation

	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	CompletedAt *time.Time
}

// CreateInput describes the metadata needed to create a campaign.
type CreateInput struct {
	TenantID      string
	Name          string
	SystemName    string
	Environment   string
	BusinessUnit  string
	ReviewType    string
	TriggerReason string
	ReviewerType  string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	DueDate       time.Time
	Subjects      []Subject
}

// Create creates a new draft campaign with a generated ID and timestamps.
func Create(input CreateInput, now func() time.Time, idGenerator func() (string, error)) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Campaign{}, err
	}

	campaignID, err := idGenerator()
	if err != nil {
		return Campaign{}, fmt.Errorf("generate campaign id: %w", err)
	}

	createdAt := now().UTC()
	return Campaign{
		ID:            campaignID,
		TenantID:      normalized.TenantID,
		Name:          normalized.Name,
		SystemName:    normalized.SystemName,
		Environment:   normalized.Environment,
		BusinessUnit:  normalized.BusinessUnit,
		ReviewType:    normalized.ReviewType,
		TriggerReason: normalized.TriggerReason,
		ReviewerType:  normalized.ReviewerType,
		PeriodStart:   normalized.PeriodStart,
		PeriodEnd:     normalized.PeriodEnd,
		DueDate:       normalized.DueDate,
		Status:        StatusDraft,
		Subjects:      normalized.Subjects,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}

// NormalizeCreateInput trims and validates campaign creation metadata.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.TenantID = strings.TrimSpace(input.TenantID)
	if input.TenantID == "" {
		return CreateInput{}, ErrEmptyTenant
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateInput{}, ErrEmptyName
	}
	if !input.PeriodEnd.IsZero() && !input.PeriodStart.IsZero() && input.PeriodEnd.Before(input.PeriodStart) {
		return CreateInput{}, ErrInvalidReviewPeriod
	}

	input.SystemName = strings.TrimSpace(input.SystemName)
	input.Environment = strings.TrimSpace(input.Environment)
	input.BusinessUnit = strings.TrimSpace(input.BusinessUnit)
	input.ReviewType = strings.TrimSpace(input.ReviewType)
	input.TriggerReason = strings.TrimSpace(input.TriggerReason)
	input.ReviewerType = strings.TrimSpace(input.ReviewerType)

	subjects, err := normalizeSubjects(input.Subjects)
	if err != nil {
		return CreateInput{}, err
	}
	input.Subjects = subjects
	return input, nil
}

func normalizeSubjects(subjects []Subject) ([]Subject, error) {
	normalized := make([]Subject, 0, len(subjects))
	for _, subject := range subjects {
		subject.ID = strings.TrimSpace(subject.ID)
		if subject.ID == "" {
			return nil, ErrEmptySubjectID
		}
		if subject.EmploymentType == EmploymentUnspecified {
			subject.EmploymentType = EmploymentEmployee
		}
		if subject.ReviewStatus == "" {
			subject.ReviewStatus = ReviewPending
		}
		items := make([]Item, 0, len(subject.Items))
		for _, item := range subject.Items {
			item.ID = strings.TrimSpace(item.ID)
			if item.ID == "" {
				return nil, ErrEmptyItemID
			}
			if item.PrivilegeLevel == PrivilegeUnspecified {
				item.PrivilegeLevel = PrivilegeStandard
			}
			if item.DataClassification == ClassificationUnspecified {
				item.DataClassification = ClassificationInternal
			}
			if item.Decision.Type == DecisionUnspecified {
				item.Decision.Type = DecisionPending
			}
			items = append(items, item)
		}
		subject.Items = items
		normalized = append(normalized, subject)
	}
	return normalized, nil
}

// UpdateInput is a partial patch over campaign metadata and subjects.
// Nil fields leave the current value untouched.
type UpdateInput struct {
	Name          *string
	SystemName    *string
	Environment   *string
	BusinessUnit  *string
	ReviewType    *string
	TriggerReason *string
	ReviewerType  *string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	DueDate       *time.Time
	Status        *Status
	Subjects      []Subject
}

// ApplyUpdate patches campaign metadata and subjects. Permitted only while
// the campaign is editable; structural edits after submission would create
// compliance gaps.
func ApplyUpdate(c Campaign, patch UpdateInput, now func() time.Time) (Campaign, error) {
	if now == nil {
		now = time.Now
	}
	if !c.Status.IsEditable() {
		return Campaign{}, ErrStatusDisallows(c.Status, "update")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Campaign{}, ErrEmptyName
		}
		c.Name = name
	}
	if patch.SystemName != nil {
		c.SystemName = strings.TrimSpace(*patch.SystemName)
	}
	if patch.Environment != nil {
		c.Environment = strings.TrimSpace(*patch.Environment)
	}
	if patch.BusinessUnit != nil {
		c.BusinessUnit = strings.TrimSpace(*patch.BusinessUnit)
	}
	if patch.ReviewType != nil {
		c.ReviewType = strings.TrimSpace(*patch.ReviewType)
	}
	if patch.TriggerReason != nil {
		c.TriggerReason = strings.TrimSpace(*patch.TriggerReason)
	}
	if patch.ReviewerType != nil {
		c.ReviewerType = strings.TrimSpace(*patch.ReviewerType)
	}
	if patch.PeriodStart != nil {
		c.PeriodStart = *patch.PeriodStart
	}
	if patch.PeriodEnd != nil {
		c.PeriodEnd = *patch.PeriodEnd
	}
	if !c.PeriodEnd.IsZero() && !c.PeriodStart.IsZero() && c.PeriodEnd.Before(c.PeriodStart) {
		return Campaign{}, ErrInvalidReviewPeriod
	}
	if patch.DueDate != nil {
		c.DueDate = *patch.DueDate
	}
	if patch.Status != nil {
		// Direct status updates may only move within the editable super-state.
		if !patch.Status.IsEditable() {
			return Campaign{}, ErrStatusDisallows(c.Status, "status update")
		}
		c.Status = *patch.Status
	}
	if patch.Subjects != nil {
		subjects, err := normalizeSubjects(patch.Subjects)
		if err != nil {
			return Campaign{}, err
		}
		c.Subjects = subjects
	}

	c.UpdatedAt = now().UTC()
	return c, nil
}

// PendingItems returns every item whose decision is still pending, in subject
// order then item order. The completeness check reports all offenders, not
// just the first.
func (c Campaign) PendingItems() []ItemRef {
	var pending []ItemRef
	for _, subject := range c.Subjects {
		for _, item := range subject.Items {
			if item.Decision.Type == DecisionPending {
				pending = append(pending, ItemRef{SubjectID: subject.ID, ItemID: item.ID})
			}
		}
	}
	return pending
}

// HasPrivilegedAccess reports whether any item carries admin or super_admin
// privilege, which triggers second-level approval at submission.
func (c Campaign) HasPrivilegedAccess() bool {
	for _, subject := range c.Subjects {
		for _, item := range subject.Items {
			if item.PrivilegeLevel.IsPrivileged() {
				return true
			}
		}
	}
	return false
}

// NeedsRemediation reports whether any decided item requires follow-up
// execution (revoke or modify).
func (c Campaign) NeedsRemediation() bool {
	for _, subject := range c.Subjects {
		for _, item := range subject.Items {
			if item.Decision.Type == DecisionRevoke || item.Decision.Type == DecisionModify {
				return true
			}
		}
	}
	return false
}

// findSubject returns the index of a subject by id.
func (c Campaign) findSubject(subjectID string) (int, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return 0, ErrEmptySubjectID
	}
	for i := range c.Subjects {
		if c.Subjects[i].ID == subjectID {
			return i, nil
		}
	}
	return 0, ErrSubjectNotFound
}

// findItem returns the index of an item within a subject by id.
func (s Subject) findItem(itemID string) (int, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return 0, ErrEmptyItemID
	}
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return i, nil
		}
	}
	return 0, ErrItemNotFound
}

// Clone returns a deep copy of the aggregate so callers can mutate a snapshot
// without sharing subject/item slices.
func (c Campaign) Clone() Campaign {
	cloned := c
	if c.Subjects != nil {
		cloned.Subjects = make([]Subject, len(c.Subjects))
		copy(cloned.Subjects, c.Subjects)
		for i := range cloned.Subjects {
			items := make([]Item, len(cloned.Subjects[i].Items))
			copy(items, cloned.Subjects[i].Items)
			cloned.Subjects[i].Items = items
		}
	}
	if c.Approvals != nil {
		approvals := *c.Approvals
		if c.Approvals.SecondLevel != nil {
			secondLevel := *c.Approvals.SecondLevel
			approvals.SecondLevel = &secondLevel
		}
		cloned.Approvals = &approvals
	}
	if c.Remediation != nil {
		remediation := *c.Remediation
		cloned.Remediation = &remediation
	}
	return cloned
}

// RemediationStatusFromLabel parses a string label into a RemediationStatus.
func RemediationStatusFromLabel(value string) (RemediationStatus, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	switch trimmed {
	case "PENDING":
		return RemediationPending, nil
	case "IN_PROGRESS":
		return RemediationInProgress, nil
	case "COMPLETED":
		return RemediationCompleted, nil
	case "NOT_REQUIRED":
		return RemediationNotRequired, nil
	default:
		return RemediationUnset, ErrInvalidRemediationStatus
	}
}
