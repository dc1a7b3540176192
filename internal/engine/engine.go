// Package engine coordinates campaign persistence, domain transitions, and
// audit emission. Every mutation loads the aggregate, applies a pure domain
// function, and saves with a revision check; concurrent writers lose with a
// conflict instead of clobbering each other.
package engine

import (
	"context"
	"time"

	"github.com/recertly/recert/internal/audit"
	"github.com/recertly/recert/internal/campaign"
	"github.com/recertly/recert/internal/platform/id"
	"github.com/recertly/recert/internal/platform/requestctx"
	"github.com/recertly/recert/internal/storage"
	"github.com/recertly/recert/internal/suggest"
)

// Engine executes access review campaign operations against a campaign store.
type Engine struct {
	store   storage.CampaignStore
	audits  storage.AuditEventStore
	emitter *audit.Emitter
	now     func() time.Time
	newID   func() (string, error)
}

// New creates an engine backed by the provided stores. The audit store may be
// nil, in which case mutations are not audited and audit listings fail.
func New(store storage.CampaignStore, audits storage.AuditEventStore) *Engine {
	return &Engine{
		store:   store,
		audits:  audits,
		emitter: audit.NewEmitter(audits),
		now:     time.Now,
		newID:   id.NewID,
	}
}

// actorFromContext converts the request identity into the domain actor shape.
func actorFromContext(ctx context.Context) campaign.Actor {
	actor := requestctx.ActorFromContext(ctx)
	return campaign.Actor{ID: actor.ID, Name: actor.Name, Email: actor.Email}
}

// CreateCampaign validates and persists a new campaign in draft status.
func (e *Engine) CreateCampaign(ctx context.Context, input campaign.CreateInput) (campaign.Campaign, error) {
	created, err := campaign.Create(input, e.now, e.newID)
	if err != nil {
		return campaign.Campaign{}, err
	}
	if _, err := e.store.Save(ctx, created, storage.NewRevision); err != nil {
		return campaign.Campaign{}, err
	}
	e.emitter.EmitMutation(ctx, audit.Mutation{
		Action:     "campaign.create",
		TenantID:   created.TenantID,
		CampaignID: created.ID,
		After:      &created,
	})
	return created, nil
}

// GetCampaign fetches a campaign aggregate.
func (e *Engine) GetCampaign(ctx context.Context, tenantID, campaignID string) (campaign.Campaign, error) {
	c, _, err := e.store.Get(ctx, tenantID, campaignID)
	return c, err
}

// ListCampaigns returns a page of campaign summaries for a tenant.
func (e *Engine) ListCampaigns(ctx context.Context, query storage.ListQuery) (storage.CampaignPage, error) {
	return e.store.List(ctx, query)
}

// UpdateCampaign applies a metadata patch to an editable campaign.
func (e *Engine) UpdateCampaign(ctx context.Context, tenantID, campaignID string, patch campaign.UpdateInput) (campaign.Campaign, error) {
	return e.mutate(ctx, tenantID, campaignID, "campaign.update", nil,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			return campaign.ApplyUpdate(c, patch, e.now)
		})
}

// ApplyItemDecision records a review decision for a single access item.
func (e *Engine) ApplyItemDecision(ctx context.Context, tenantID, campaignID, subjectID, itemID string, input campaign.DecisionInput) (campaign.Campaign, error) {
	attrs := map[string]any{"subject_id": subjectID, "item_id": itemID}
	return e.mutate(ctx, tenantID, campaignID, "campaign.decision", attrs,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			return campaign.ApplyItemDecision(c, subjectID, itemID, input, actorFromContext(ctx), e.now)
		})
}

// ApplyBulkDecision applies one decision to every item matched by the
// selector, skipping high-risk items when requested.
func (e *Engine) ApplyBulkDecision(ctx context.Context, tenantID, campaignID string, selector campaign.Selector, input campaign.DecisionInput, skipHighRisk bool) (campaign.Campaign, campaign.BulkResult, error) {
	var result campaign.BulkResult
	updated, err := e.mutate(ctx, tenantID, campaignID, "campaign.bulk_decision", nil,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			next, bulkResult, err := campaign.ApplyBulkDecision(c, selector, input, skipHighRisk, actorFromContext(ctx), e.now)
			if err != nil {
				return campaign.Campaign{}, err
			}
			result = bulkResult
			return next, nil
		},
		func(attrs map[string]any) {
			attrs["processed"] = result.Processed
			attrs["skipped"] = result.Skipped
		})
	if err != nil {
		return campaign.Campaign{}, campaign.BulkResult{}, err
	}
	return updated, result, nil
}

// Submit attests the campaign and moves it to the submitted status. Every
// item must carry a decision.
func (e *Engine) Submit(ctx context.Context, tenantID, campaignID string, attestation campaign.AttestationInput) (campaign.Campaign, error) {
	return e.mutate(ctx, tenantID, campaignID, "campaign.submit", nil,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			return campaign.Submit(c, attestation, actorFromContext(ctx), e.now)
		})
}

// SecondLevelApprove records the second-level approval outcome for a
// submitted campaign with privileged access.
func (e *Engine) SecondLevelApprove(ctx context.Context, tenantID, campaignID string, input campaign.SecondLevelInput) (campaign.Campaign, error) {
	attrs := map[string]any{"outcome": string(input.Outcome)}
	return e.mutate(ctx, tenantID, campaignID, "campaign.second_level", attrs,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			return campaign.SecondLevelApprove(c, input, e.now)
		})
}

// Remediate records remediation ticket progress for revoked or modified
// access.
func (e *Engine) Remediate(ctx context.Context, tenantID, campaignID string, input campaign.RemediateInput) (campaign.Campaign, error) {
	return e.mutate(ctx, tenantID, campaignID, "campaign.remediate", nil,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			return campaign.Remediate(c, input, e.now)
		})
}

// Complete verifies remediation and closes the campaign. VerifiedBy defaults
// to the acting identity's name when empty.
func (e *Engine) Complete(ctx context.Context, tenantID, campaignID, verifiedBy string) (campaign.Campaign, error) {
	if verifiedBy == "" {
		verifiedBy = requestctx.ActorFromContext(ctx).Name
	}
	return e.mutate(ctx, tenantID, campaignID, "campaign.complete", nil,
		func(c campaign.Campaign) (campaign.Campaign, error) {
			return campaign.Complete(c, verifiedBy, e.now)
		})
}

// DeleteCampaign removes a draft campaign. Campaigns past draft are retained
// for their review trail.
func (e *Engine) DeleteCampaign(ctx context.Context, tenantID, campaignID string) error {
	c, _, err := e.store.Get(ctx, tenantID, campaignID)
	if err != nil {
		return err
	}
	if !c.CanDelete() {
		return campaign.ErrStatusDisallows(c.Status, "delete")
	}
	if err := e.store.Delete(ctx, tenantID, campaignID); err != nil {
		return err
	}
	e.emitter.EmitMutation(ctx, audit.Mutation{
		Action:     "campaign.delete",
		TenantID:   tenantID,
		CampaignID: campaignID,
		Before:     &c,
	})
	return nil
}

// GetSuggestions scores every item in the campaign and returns ranked
// decision suggestions with a summary.
func (e *Engine) GetSuggestions(ctx context.Context, tenantID, campaignID string) ([]suggest.Suggestion, suggest.Summary, error) {
	c, _, err := e.store.Get(ctx, tenantID, campaignID)
	if err != nil {
		return nil, suggest.Summary{}, err
	}
	suggestions, summary := suggest.Evaluate(c)
	return suggestions, summary, nil
}

// ListAuditEvents queries recorded audit events.
func (e *Engine) ListAuditEvents(ctx context.Context, query storage.AuditQuery) ([]storage.AuditEvent, error) {
	if e.audits == nil {
		return nil, storage.ErrNotFound
	}
	return e.audits.ListAuditEvents(ctx, query)
}

// mutate runs the load, transition, revision-checked save, emit cycle shared
// by every campaign mutation. Optional attribute hooks run after the
// transition so they can observe its outputs.
func (e *Engine) mutate(ctx context.Context, tenantID, campaignID, action string, attrs map[string]any, transition func(campaign.Campaign) (campaign.Campaign, error), attrHooks ...func(map[string]any)) (campaign.Campaign, error) {
	before, revision, err := e.store.Get(ctx, tenantID, campaignID)
	if err != nil {
		return campaign.Campaign{}, err
	}
	after, err := transition(before)
	if err != nil {
		return campaign.Campaign{}, err
	}
	if _, err := e.store.Save(ctx, after, revision); err != nil {
		return campaign.Campaign{}, err
	}
	if attrs == nil && len(attrHooks) > 0 {
		attrs = map[string]any{}
	}
	for _, hook := range attrHooks {
		hook(attrs)
	}
	e.emitter.EmitMutation(ctx, audit.Mutation{
		Action:     action,
		TenantID:   tenantID,
		CampaignID: campaignID,
		Before:     &before,
		After:      &after,
		Attributes: attrs,
	})
	return after, nil
}
