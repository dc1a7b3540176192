// Package audit records operational audit events for campaign mutations.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/recertly/recert/internal/campaign"
	"github.com/recertly/recert/internal/platform/requestctx"
	"github.com/recertly/recert/internal/storage"
)

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational audit events.
type Emitter struct {
	store storage.AuditEventStore
	clock func() time.Time
}

// NewEmitter creates a new audit event emitter.
func NewEmitter(store storage.AuditEventStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendAuditEvent(ctx, evt)
}

// Mutation captures the inputs of a campaign mutation audit event.
type Mutation struct {
	Action     string
	TenantID   string
	CampaignID string
	Before     *campaign.Campaign
	After      *campaign.Campaign
	Attributes map[string]any
}

// EmitMutation records a campaign mutation. Failures are logged and never
// propagated to the caller; the primary operation has already committed.
func (e *Emitter) EmitMutation(ctx context.Context, m Mutation) {
	if e == nil || e.store == nil {
		return
	}

	evt := storage.AuditEvent{
		EventName:  "campaign.mutation",
		Severity:   string(SeverityInfo),
		TenantID:   m.TenantID,
		CampaignID: m.CampaignID,
		Action:     m.Action,
		Attributes: m.Attributes,
	}
	if actor := requestctx.ActorFromContext(ctx); actor.ID != "" {
		evt.ActorID = actor.ID
	}
	if spanCtx := trace.SpanFromContext(ctx).SpanContext(); spanCtx.IsValid() {
		evt.TraceID = spanCtx.TraceID().String()
		evt.SpanID = spanCtx.SpanID().String()
	}
	evt.BeforeJSON = marshalSnapshot(m.Action, "before", m.Before)
	evt.AfterJSON = marshalSnapshot(m.Action, "after", m.After)

	if err := e.Emit(ctx, evt); err != nil {
		log.Printf("audit emit %s: %v", m.Action, err)
	}
}

func marshalSnapshot(action, phase string, c *campaign.Campaign) []byte {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		log.Printf("audit marshal %s %s snapshot: %v", action, phase, err)
		return nil
	}
	return payload
}
