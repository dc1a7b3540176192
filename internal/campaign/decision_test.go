package campaign

import (
	"errors"
	"testing"
	"time"
)

func reviewCampaign() Campaign {
	return Campaign{
		ID:       "camp-1",
		TenantID: "acme",
		Status:   StatusInReview,
		Subjects: []Subject{
			{
				ID:           "emp-1",
				ReviewStatus: ReviewPending,
				Items: []Item{
					{ID: "ent-1", Decision: Decision{Type: DecisionPending}},
					{ID: "ent-2", Decision: Decision{Type: DecisionPending}},
				},
			},
		},
	}
}

func TestApplyItemDecisionRecordsDecision(t *testing.T) {
	decidedAt := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	c := reviewCampaign()
	actor := Actor{ID: "rev-1", Name: "Reviewer One"}

	updated, err := ApplyItemDecision(c, "emp-1", "ent-1", DecisionInput{
		Type:       " APPROVE ",
		ReasonCode: " appropriate_access ",
		Comments:   "  verified with manager  ",
	}, actor, fixedClock(decidedAt))
	if err != nil {
		t.Fatalf("apply item decision: %v", err)
	}

	decision := updated.Subjects[0].Items[0].Decision
	if decision.Type != DecisionApprove {
		t.Fatalf("expected approve decision, got %v", decision.Type)
	}
	if decision.ReasonCode != "appropriate_access" {
		t.Fatalf("expected trimmed reason code, got %q", decision.ReasonCode)
	}
	if decision.Comments != "verified with manager" {
		t.Fatalf("expected trimmed comments, got %q", decision.Comments)
	}
	if decision.DecidedBy != "rev-1" {
		t.Fatalf("expected decided by actor, got %q", decision.DecidedBy)
	}
	if decision.DecidedAt == nil || !decision.DecidedAt.Equal(decidedAt) {
		t.Fatalf("expected decided timestamp to match fixed time")
	}
	if updated.Subjects[0].ReviewStatus != ReviewInProgress {
		t.Fatalf("expected subject review in progress, got %v", updated.Subjects[0].ReviewStatus)
	}

	// Original aggregate is untouched.
	if c.Subjects[0].Items[0].Decision.Type != DecisionPending {
		t.Fatalf("original aggregate mutated by decision")
	}
}

func TestApplyItemDecisionOverwritesPrior(t *testing.T) {
	c := reviewCampaign()
	actor := Actor{ID: "rev-1"}

	first, err := ApplyItemDecision(c, "emp-1", "ent-1", DecisionInput{Type: DecisionApprove}, actor, nil)
	if err != nil {
		t.Fatalf("first decision: %v", err)
	}
	second, err := ApplyItemDecision(first, "emp-1", "ent-1", DecisionInput{Type: DecisionRevoke}, actor, nil)
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}
	if second.Subjects[0].Items[0].Decision.Type != DecisionRevoke {
		t.Fatalf("expected revoke to overwrite approve, got %v", second.Subjects[0].Items[0].Decision.Type)
	}
}

func TestApplyItemDecisionValidation(t *testing.T) {
	c := reviewCampaign()
	actor := Actor{ID: "rev-1"}

	tests := []struct {
		name      string
		campaign  Campaign
		subjectID string
		itemID    string
		input     DecisionInput
		actor     Actor
		err       error
	}{
		{
			name:      "submitted campaign",
			campaign:  Campaign{Status: StatusSubmitted},
			subjectID: "emp-1",
			itemID:    "ent-1",
			input:     DecisionInput{Type: DecisionApprove},
			actor:     actor,
			err:       ErrStatusDisallowsOp,
		},
		{
			name:      "missing actor",
			campaign:  c,
			subjectID: "emp-1",
			itemID:    "ent-1",
			input:     DecisionInput{Type: DecisionApprove},
			actor:     Actor{},
			err:       ErrEmptyActor,
		},
		{
			name:      "pending is not applicable",
			campaign:  c,
			subjectID: "emp-1",
			itemID:    "ent-1",
			input:     DecisionInput{Type: DecisionPending},
			actor:     actor,
			err:       ErrInvalidDecisionType,
		},
		{
			name:      "unknown decision type",
			campaign:  c,
			subjectID: "emp-1",
			itemID:    "ent-1",
			input:     DecisionInput{Type: "defer"},
			actor:     actor,
			err:       ErrInvalidDecisionType,
		},
		{
			name:      "unknown subject",
			campaign:  c,
			subjectID: "emp-9",
			itemID:    "ent-1",
			input:     DecisionInput{Type: DecisionApprove},
			actor:     actor,
			err:       ErrSubjectNotFound,
		},
		{
			name:      "unknown item",
			campaign:  c,
			subjectID: "emp-1",
			itemID:    "ent-9",
			input:     DecisionInput{Type: DecisionApprove},
			actor:     actor,
			err:       ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyItemDecision(tt.campaign, tt.subjectID, tt.itemID, tt.input, tt.actor, nil)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
		})
	}
}

func TestIsDecided(t *testing.T) {
	if (Decision{Type: DecisionPending}).IsDecided() {
		t.Fatalf("pending should not count as decided")
	}
	if (Decision{}).IsDecided() {
		t.Fatalf("unspecified should not count as decided")
	}
	if !(Decision{Type: DecisionEscalate}).IsDecided() {
		t.Fatalf("escalate should count as decided")
	}
}
