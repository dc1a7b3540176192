package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recertly/recert/internal/campaign"
	"github.com/recertly/recert/internal/platform/requestctx"
	"github.com/recertly/recert/internal/storage"
	"github.com/recertly/recert/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	eng := New(store, store)
	eng.now = func() time.Time { return time.Date(2026, 3, 22, 10, 0, 0, 0, time.UTC) }
	counter := 0
	eng.newID = func() (string, error) {
		counter++
		return "camp-" + string(rune('0'+counter)), nil
	}
	return eng, store
}

func reviewerContext() context.Context {
	return requestctx.WithActor(context.Background(), requestctx.Actor{
		ID:   "rev-1",
		Name: "Dana Whitfield",
	})
}

func createInput() campaign.CreateInput {
	return campaign.CreateInput{
		TenantID: "acme",
		Name:     "Quarterly Review",
		Subjects: []campaign.Subject{
			{
				ID:       "emp-1",
				FullName: "Miles Okafor",
				Items: []campaign.Item{
					{ID: "ent-1"},
					{ID: "ent-2", PrivilegeLevel: campaign.PrivilegeAdmin},
				},
			},
		},
	}
}

func TestCreateAndGetCampaign(t *testing.T) {
	ctx := reviewerContext()
	eng, _ := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if created.Status != campaign.StatusDraft {
		t.Fatalf("expected draft status, got %v", created.Status)
	}

	got, err := eng.GetCampaign(ctx, "acme", created.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.Name != "Quarterly Review" {
		t.Fatalf("expected persisted name, got %q", got.Name)
	}
}

func TestFullReviewLifecycle(t *testing.T) {
	ctx := reviewerContext()
	eng, _ := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	// Bulk approve with the high-risk skip leaves the admin item pending.
	_, result, err := eng.ApplyBulkDecision(ctx, "acme", created.ID, campaign.SelectAll{}, campaign.DecisionInput{
		Type: campaign.DecisionApprove,
	}, true)
	if err != nil {
		t.Fatalf("bulk decision: %v", err)
	}
	if result.Processed != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 processed and 1 skipped, got %+v", result)
	}

	// Submission is blocked until the skipped item is decided.
	_, err = eng.Submit(ctx, "acme", created.ID, campaign.AttestationInput{ReviewerName: "Dana"})
	if !errors.Is(err, campaign.ErrIncompleteDecisions) {
		t.Fatalf("expected incomplete decisions, got %v", err)
	}

	_, err = eng.ApplyItemDecision(ctx, "acme", created.ID, "emp-1", "ent-2", campaign.DecisionInput{
		Type:       campaign.DecisionRevoke,
		ReasonCode: "excessive_privilege",
	})
	if err != nil {
		t.Fatalf("item decision: %v", err)
	}

	submitted, err := eng.Submit(ctx, "acme", created.ID, campaign.AttestationInput{ReviewerName: "Dana"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != campaign.StatusSubmitted {
		t.Fatalf("expected submitted status, got %v", submitted.Status)
	}
	if !submitted.Approvals.SecondLevelRequired {
		t.Fatalf("expected second-level requirement for admin access")
	}

	approved, err := eng.SecondLevelApprove(ctx, "acme", created.ID, campaign.SecondLevelInput{
		ApproverID: "mgr-1",
		Outcome:    campaign.SecondLevelApproved,
	})
	if err != nil {
		t.Fatalf("second-level approve: %v", err)
	}
	if approved.Remediation == nil || approved.Remediation.Status != campaign.RemediationPending {
		t.Fatalf("expected pending remediation for revoke decision, got %+v", approved.Remediation)
	}

	_, err = eng.Remediate(ctx, "acme", created.ID, campaign.RemediateInput{
		TicketID: "TICKET-42",
		Status:   campaign.RemediationCompleted,
	})
	if err != nil {
		t.Fatalf("remediate: %v", err)
	}

	closed, err := eng.Complete(ctx, "acme", created.ID, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if closed.Status != campaign.StatusCompleted {
		t.Fatalf("expected completed status, got %v", closed.Status)
	}
	if closed.Remediation.VerifiedBy != "Dana Whitfield" {
		t.Fatalf("expected verifier from context actor, got %q", closed.Remediation.VerifiedBy)
	}
}

func TestMutationsEmitAuditEvents(t *testing.T) {
	ctx := reviewerContext()
	eng, store := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	name := "Renamed Review"
	if _, err := eng.UpdateCampaign(ctx, "acme", created.ID, campaign.UpdateInput{Name: &name}); err != nil {
		t.Fatalf("update campaign: %v", err)
	}

	events, err := store.ListAuditEvents(ctx, storage.AuditQuery{})
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	// Newest first.
	if events[0].Action != "campaign.update" || events[1].Action != "campaign.create" {
		t.Fatalf("unexpected audit actions: %s, %s", events[0].Action, events[1].Action)
	}
	if events[0].ActorID != "rev-1" {
		t.Fatalf("expected actor from context, got %q", events[0].ActorID)
	}
	if len(events[0].BeforeJSON) == 0 || len(events[0].AfterJSON) == 0 {
		t.Fatalf("expected before and after snapshots on update")
	}
	if len(events[1].BeforeJSON) != 0 {
		t.Fatalf("expected no before snapshot on create")
	}
}

func TestBulkDecisionAuditCarriesCounts(t *testing.T) {
	ctx := reviewerContext()
	eng, store := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if _, _, err := eng.ApplyBulkDecision(ctx, "acme", created.ID, campaign.SelectAll{}, campaign.DecisionInput{
		Type: campaign.DecisionApprove,
	}, true); err != nil {
		t.Fatalf("bulk decision: %v", err)
	}

	events, err := store.ListAuditEvents(ctx, storage.AuditQuery{Limit: 1})
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(events) != 1 || events[0].Action != "campaign.bulk_decision" {
		t.Fatalf("expected bulk decision event, got %+v", events)
	}
	if events[0].Attributes["processed"] != 1 || events[0].Attributes["skipped"] != 1 {
		t.Fatalf("expected processed/skipped attributes, got %+v", events[0].Attributes)
	}
}

func TestDeleteCampaignOnlyDrafts(t *testing.T) {
	ctx := reviewerContext()
	eng, _ := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	status := campaign.StatusInReview
	if _, err := eng.UpdateCampaign(ctx, "acme", created.ID, campaign.UpdateInput{Status: &status}); err != nil {
		t.Fatalf("move to review: %v", err)
	}

	if err := eng.DeleteCampaign(ctx, "acme", created.ID); !errors.Is(err, campaign.ErrStatusDisallowsOp) {
		t.Fatalf("expected status guard for non-draft delete, got %v", err)
	}

	draft := campaign.StatusDraft
	if _, err := eng.UpdateCampaign(ctx, "acme", created.ID, campaign.UpdateInput{Status: &draft}); err != nil {
		t.Fatalf("move back to draft: %v", err)
	}
	if err := eng.DeleteCampaign(ctx, "acme", created.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := eng.GetCampaign(ctx, "acme", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected campaign gone, got %v", err)
	}
}

func TestGetSuggestionsRanksItems(t *testing.T) {
	ctx := reviewerContext()
	eng, _ := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	suggestions, summary, err := eng.GetSuggestions(ctx, "acme", created.ID)
	if err != nil {
		t.Fatalf("get suggestions: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].ItemID != "ent-2" {
		t.Fatalf("expected admin item ranked first, got %s", suggestions[0].ItemID)
	}
	if !suggestions[0].RequiresManualReview {
		t.Fatalf("expected manual review for admin item")
	}
	if summary.Total != 2 {
		t.Fatalf("expected summary total 2, got %d", summary.Total)
	}
}

func TestListCampaignsByStatus(t *testing.T) {
	ctx := reviewerContext()
	eng, _ := newTestEngine(t)

	created, err := eng.CreateCampaign(ctx, createInput())
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	second := createInput()
	second.Name = "Second Review"
	if _, err := eng.CreateCampaign(ctx, second); err != nil {
		t.Fatalf("create second campaign: %v", err)
	}
	status := campaign.StatusInReview
	if _, err := eng.UpdateCampaign(ctx, "acme", created.ID, campaign.UpdateInput{Status: &status}); err != nil {
		t.Fatalf("move to review: %v", err)
	}

	page, err := eng.ListCampaigns(ctx, storage.ListQuery{TenantID: "acme", Status: campaign.StatusInReview})
	if err != nil {
		t.Fatalf("list campaigns: %v", err)
	}
	if len(page.Campaigns) != 1 || page.Campaigns[0].ID != created.ID {
		t.Fatalf("expected only the in-review campaign, got %+v", page.Campaigns)
	}
}

func TestOperationsOnMissingCampaign(t *testing.T) {
	ctx := reviewerContext()
	eng, _ := newTestEngine(t)

	if _, err := eng.GetCampaign(ctx, "acme", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on get, got %v", err)
	}
	if _, err := eng.Submit(ctx, "acme", "missing", campaign.AttestationInput{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on submit, got %v", err)
	}
	if err := eng.DeleteCampaign(ctx, "acme", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}
