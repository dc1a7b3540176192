// Package suggest scores access items and proposes review decisions.
//
// Scoring is a pure fold over an ordered rule list. Each rule adds a risk
// contribution and may downgrade confidence or demand manual review; nothing
// ever upgrades confidence or clears the manual-review flag.
package suggest

import (
	"sort"

	"github.com/recertly/recert/internal/campaign"
)

// Confidence grades how much weight a suggestion carries.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// rank orders confidence for monotonic downgrades: higher rank is worse.
func rank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// Suggestion is the scored proposal for one item.
type Suggestion struct {
	SubjectID            string
	SubjectName          string
	ItemID               string
	EntitlementName      string
	SuggestedDecision    campaign.DecisionType
	Confidence           Confidence
	RiskScore            int
	Reasons              []string
	RequiresManualReview bool
}

// Summary aggregates suggestion statistics. Derived, never stored.
type Summary struct {
	Total            int
	HighConfidence   int
	MediumConfidence int
	LowConfidence    int
	HighRisk         int
	AverageRisk      float64
}

// highRiskThreshold is the score at or above which items count as high risk.
const highRiskThreshold = 60

// accumulator is the fold state threaded through the rule list.
type accumulator struct {
	score        int
	confidence   Confidence
	manualReview bool
	reasons      []string
}

func (a *accumulator) add(points int, reason string) {
	a.score += points
	if reason != "" {
		a.reasons = append(a.reasons, reason)
	}
}

// downgrade lowers confidence to target if the current level is better.
// Confidence never improves.
func (a *accumulator) downgrade(target Confidence) {
	if rank(target) > rank(a.confidence) {
		a.confidence = target
	}
}

func (a *accumulator) requireManualReview() {
	a.manualReview = true
}

// rule contributes one heuristic to the accumulator.
type rule func(item campaign.Item, subject campaign.Subject, acc *accumulator)

// rules is the ordered heuristic table. Contributions are additive point
// values, not probabilities.
var rules = []rule{
	scorePrivilegeLevel,
	scoreDataClassification,
	scoreEmploymentType,
	scoreGrantMethod,
	scoreEnvironment,
	scoreSODConcern,
}

func scorePrivilegeLevel(item campaign.Item, _ campaign.Subject, acc *accumulator) {
	switch item.PrivilegeLevel {
	case campaign.PrivilegeAdmin:
		acc.add(60, "Admin-level privilege grants broad control")
		acc.requireManualReview()
		acc.downgrade(ConfidenceLow)
	case campaign.PrivilegeSuperAdmin:
		acc.add(90, "Super-admin privilege grants unrestricted control")
		acc.requireManualReview()
		acc.downgrade(ConfidenceLow)
	case campaign.PrivilegeElevated:
		acc.add(30, "Elevated privilege beyond standard access")
	default:
		acc.add(10, "")
	}
}

func scoreDataClassification(item campaign.Item, _ campaign.Subject, acc *accumulator) {
	switch item.DataClassification {
	case campaign.ClassificationPublic:
		acc.add(5, "")
	case campaign.ClassificationInternal:
		acc.add(15, "")
		acc.downgrade(ConfidenceMedium)
	case campaign.ClassificationConfidential:
		acc.add(40, "Access reaches confidential data")
		acc.downgrade(ConfidenceMedium)
	case campaign.ClassificationRestricted:
		acc.add(70, "Access reaches restricted data")
		acc.requireManualReview()
		acc.downgrade(ConfidenceLow)
	}
}

func scoreEmploymentType(_ campaign.Item, subject campaign.Subject, acc *accumulator) {
	switch subject.EmploymentType {
	case campaign.EmploymentContractor:
		acc.add(20, "Subject is a contractor")
		acc.downgrade(ConfidenceMedium)
	case campaign.EmploymentVendor:
		acc.add(30, "Subject is an external vendor")
		acc.requireManualReview()
	}
}

func scoreGrantMethod(item campaign.Item, _ campaign.Subject, acc *accumulator) {
	if item.GrantMethod == campaign.GrantAutomatic {
		// No point contribution; automatic grants only dent confidence.
		acc.downgrade(ConfidenceMedium)
	}
}

func scoreEnvironment(item campaign.Item, _ campaign.Subject, acc *accumulator) {
	if item.Environment == "production" {
		acc.add(15, "Entitlement applies to production")
	}
}

func scoreSODConcern(item campaign.Item, _ campaign.Subject, acc *accumulator) {
	if item.SODConcern {
		acc.add(25, "Flagged as a segregation-of-duties concern")
		acc.requireManualReview()
		acc.downgrade(ConfidenceLow)
	}
}

// Score evaluates one item in the context of its subject. It is pure and
// side-effect free; safe to run concurrently across items.
func Score(item campaign.Item, subject campaign.Subject) Suggestion {
	acc := accumulator{confidence: ConfidenceHigh}
	for _, apply := range rules {
		apply(item, subject, &acc)
	}

	score := acc.score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Suggestion{
		SubjectID:       subject.ID,
		SubjectName:     subject.FullName,
		ItemID:          item.ID,
		EntitlementName: item.EntitlementName,
		// The rule set never proposes revoke/modify; risky items are routed
		// to manual review instead of auto-suggesting removal.
		SuggestedDecision:    campaign.DecisionApprove,
		Confidence:           acc.confidence,
		RiskScore:            score,
		Reasons:              acc.reasons,
		RequiresManualReview: acc.manualReview,
	}
}

// Evaluate scores every item in the campaign and derives summary statistics.
// Suggestions are ordered by descending risk score.
func Evaluate(c campaign.Campaign) ([]Suggestion, Summary) {
	var suggestions []Suggestion
	for _, subject := range c.Subjects {
		for _, item := range subject.Items {
			suggestions = append(suggestions, Score(item, subject))
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].RiskScore > suggestions[j].RiskScore
	})

	summary := Summary{Total: len(suggestions)}
	var totalRisk int
	for _, suggestion := range suggestions {
		totalRisk += suggestion.RiskScore
		switch suggestion.Confidence {
		case ConfidenceHigh:
			summary.HighConfidence++
		case ConfidenceMedium:
			summary.MediumConfidence++
		case ConfidenceLow:
			summary.LowConfidence++
		}
		if suggestion.RiskScore >= highRiskThreshold {
			summary.HighRisk++
		}
	}
	if summary.Total > 0 {
		summary.AverageRisk = float64(totalRisk) / float64(summary.Total)
	}
	return suggestions, summary
}
