// Package storage defines persistence interfaces for campaign aggregates and
// audit events. The campaign aggregate is the unit of concurrency control:
// saves are revision-checked so two writers can never both succeed against a
// stale snapshot.
package storage

import (
	"context"
	"time"

	"github.com/recertly/recert/internal/campaign"
	apperrors "github.com/recertly/recert/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrRevisionConflict indicates a save raced with a concurrent writer.
// Retry policy belongs to the caller; the engine never retries.
var ErrRevisionConflict = apperrors.New(apperrors.CodeRevisionConflict, "campaign revision conflict")

// NewRevision is the expected revision when creating a campaign.
const NewRevision int64 = 0

// CampaignPage is one page of campaign summaries.
type CampaignPage struct {
	Campaigns     []CampaignSummary
	NextPageToken string
}

// CampaignSummary is the list-view projection of a campaign aggregate.
type CampaignSummary struct {
	ID           string
	TenantID     string
	Name         string
	SystemName   string
	Status       campaign.Status
	SubjectCount int
	ItemCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListQuery narrows and pages a campaign listing.
type ListQuery struct {
	TenantID  string
	Status    campaign.Status
	PageSize  int
	PageToken string
}

// CampaignStore persists whole campaign aggregates with optimistic
// concurrency. Save with expectedRevision == NewRevision creates; any other
// value must match the stored revision or the save fails with
// ErrRevisionConflict.
type CampaignStore interface {
	Save(ctx context.Context, c campaign.Campaign, expectedRevision int64) (int64, error)
	Get(ctx context.Context, tenantID, id string) (campaign.Campaign, int64, error)
	List(ctx context.Context, query ListQuery) (CampaignPage, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// AuditEvent is one immutable record of an engine operation.
type AuditEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	TenantID   string
	CampaignID string
	ActorID    string
	Action     string
	TraceID    string
	SpanID     string
	BeforeJSON []byte
	AfterJSON  []byte
	Attributes map[string]any
}

// AuditQuery narrows an audit listing. Filter is an AIP-160 expression over
// event fields (campaign_id, event_name, severity, actor_id, tenant_id).
type AuditQuery struct {
	Filter string
	Limit  int
}

// AuditEventStore appends and queries immutable audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
	ListAuditEvents(ctx context.Context, query AuditQuery) ([]AuditEvent, error)
}
