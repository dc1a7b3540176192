package suggest

import (
	"testing"

	"github.com/recertly/recert/internal/campaign"
)

func TestScoreLowRiskItem(t *testing.T) {
	item := campaign.Item{
		ID:                 "ent-1",
		PrivilegeLevel:     campaign.PrivilegeStandard,
		DataClassification: campaign.ClassificationPublic,
	}
	subject := campaign.Subject{ID: "emp-1", FullName: "Dana", EmploymentType: campaign.EmploymentEmployee}

	suggestion := Score(item, subject)
	if suggestion.RiskScore != 15 {
		t.Fatalf("expected risk score 15, got %d", suggestion.RiskScore)
	}
	if suggestion.Confidence != ConfidenceHigh {
		t.Fatalf("expected high confidence, got %v", suggestion.Confidence)
	}
	if suggestion.RequiresManualReview {
		t.Fatalf("expected no manual review for low-risk item")
	}
	if suggestion.SuggestedDecision != campaign.DecisionApprove {
		t.Fatalf("expected approve suggestion, got %v", suggestion.SuggestedDecision)
	}
}

func TestScoreClampsToHundred(t *testing.T) {
	item := campaign.Item{
		ID:                 "ent-1",
		Environment:        "production",
		PrivilegeLevel:     campaign.PrivilegeSuperAdmin,
		DataClassification: campaign.ClassificationRestricted,
		SODConcern:         true,
	}
	subject := campaign.Subject{ID: "emp-1", EmploymentType: campaign.EmploymentVendor}

	suggestion := Score(item, subject)
	if suggestion.RiskScore != 100 {
		t.Fatalf("expected score clamped to 100, got %d", suggestion.RiskScore)
	}
	if suggestion.Confidence != ConfidenceLow {
		t.Fatalf("expected low confidence, got %v", suggestion.Confidence)
	}
	if !suggestion.RequiresManualReview {
		t.Fatalf("expected manual review for stacked risk factors")
	}
	if len(suggestion.Reasons) == 0 {
		t.Fatalf("expected at least one reason")
	}
}

func TestScoreNeverSuggestsRevoke(t *testing.T) {
	items := []campaign.Item{
		{ID: "ent-1", PrivilegeLevel: campaign.PrivilegeSuperAdmin, DataClassification: campaign.ClassificationRestricted},
		{ID: "ent-2", PrivilegeLevel: campaign.PrivilegeStandard, DataClassification: campaign.ClassificationPublic},
	}
	for _, item := range items {
		suggestion := Score(item, campaign.Subject{ID: "emp-1"})
		if suggestion.SuggestedDecision != campaign.DecisionApprove {
			t.Fatalf("item %s: expected approve suggestion, got %v", item.ID, suggestion.SuggestedDecision)
		}
	}
}

func TestConfidenceNeverUpgrades(t *testing.T) {
	// Restricted classification forces low; automatic grant's medium downgrade
	// afterwards must not raise it back.
	item := campaign.Item{
		ID:                 "ent-1",
		DataClassification: campaign.ClassificationRestricted,
		GrantMethod:        campaign.GrantAutomatic,
	}

	suggestion := Score(item, campaign.Subject{ID: "emp-1"})
	if suggestion.Confidence != ConfidenceLow {
		t.Fatalf("expected low confidence to stick, got %v", suggestion.Confidence)
	}
}

func TestAutomaticGrantOnlyDentsConfidence(t *testing.T) {
	base := campaign.Item{ID: "ent-1", PrivilegeLevel: campaign.PrivilegeStandard, DataClassification: campaign.ClassificationPublic}
	automatic := base
	automatic.GrantMethod = campaign.GrantAutomatic

	baseScore := Score(base, campaign.Subject{ID: "emp-1"})
	autoScore := Score(automatic, campaign.Subject{ID: "emp-1"})

	if autoScore.RiskScore != baseScore.RiskScore {
		t.Fatalf("automatic grant changed score: %d vs %d", autoScore.RiskScore, baseScore.RiskScore)
	}
	if autoScore.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence for automatic grant, got %v", autoScore.Confidence)
	}
}

func TestEvaluateSortsByRiskAndSummarizes(t *testing.T) {
	c := campaign.Campaign{
		Subjects: []campaign.Subject{
			{
				ID:       "emp-1",
				FullName: "Dana",
				Items: []campaign.Item{
					{ID: "ent-low", PrivilegeLevel: campaign.PrivilegeStandard, DataClassification: campaign.ClassificationPublic},
					{ID: "ent-high", PrivilegeLevel: campaign.PrivilegeAdmin, DataClassification: campaign.ClassificationConfidential},
				},
			},
			{
				ID:             "ctr-1",
				FullName:       "Miles",
				EmploymentType: campaign.EmploymentContractor,
				Items: []campaign.Item{
					{ID: "ent-mid", PrivilegeLevel: campaign.PrivilegeStandard, DataClassification: campaign.ClassificationInternal},
				},
			},
		},
	}

	suggestions, summary := Evaluate(c)
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].ItemID != "ent-high" {
		t.Fatalf("expected highest risk first, got %s", suggestions[0].ItemID)
	}
	if suggestions[2].ItemID != "ent-low" {
		t.Fatalf("expected lowest risk last, got %s", suggestions[2].ItemID)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i-1].RiskScore < suggestions[i].RiskScore {
			t.Fatalf("suggestions not ordered by descending risk")
		}
	}

	if summary.Total != 3 {
		t.Fatalf("expected total 3, got %d", summary.Total)
	}
	if summary.HighConfidence+summary.MediumConfidence+summary.LowConfidence != summary.Total {
		t.Fatalf("confidence counts do not add up: %+v", summary)
	}
	// ent-high: admin 60 + confidential 40 = 100.
	if summary.HighRisk != 1 {
		t.Fatalf("expected 1 high-risk item, got %d", summary.HighRisk)
	}
	if summary.AverageRisk <= 0 {
		t.Fatalf("expected positive average risk, got %f", summary.AverageRisk)
	}
}

func TestEvaluateEmptyCampaign(t *testing.T) {
	suggestions, summary := Evaluate(campaign.Campaign{})
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(suggestions))
	}
	if summary.Total != 0 || summary.AverageRisk != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}
