package campaign

import (
	"strings"
	"time"
)

// Skip reasons surfaced to reviewers when bulk application passes over items.
const (
	SkipReasonHighRisk       = "High-risk item requires manual review"
	SkipReasonAlreadyDecided = "Item already has a decision"
)

// defaultBulkComment is recorded when the payload carries no comment.
const defaultBulkComment = "Bulk decision applied"

// maxSkippedItemDetails caps how many skip reasons are returned for feedback.
const maxSkippedItemDetails = 20

// Selector picks the target item subset for a bulk decision. The three shapes
// are a closed set so illegal combinations cannot be expressed.
type Selector interface {
	isSelector()
}

// SelectAll targets every item in the campaign.
type SelectAll struct{}

func (SelectAll) isSelector() {}

// SelectFiltered targets items matching all supplied filter fields; an empty
// field is treated as "don't care".
type SelectFiltered struct {
	PrivilegeLevel     PrivilegeLevel
	EntitlementType    string
	DataClassification DataClassification
}

func (SelectFiltered) isSelector() {}

// SelectItems targets an explicit list of item ids.
type SelectItems struct {
	ItemIDs []string
}

func (SelectItems) isSelector() {}

// SkippedItem explains why one included item was not decided.
type SkippedItem struct {
	SubjectID string
	ItemID    string
	Reason    string
}

// BulkResult summarizes one bulk decision pass.
type BulkResult struct {
	Processed    int
	Skipped      int
	SkippedItems []SkippedItem
}

// ApplyBulkDecision applies one uniform decision across the selected items,
// honoring the skip rules. The walk is flattened in subject order then item
// order. Re-running the same selector is safe: everything already decided is
// skipped, never overwritten.
func ApplyBulkDecision(c Campaign, selector Selector, input DecisionInput, skipHighRisk bool, actor Actor, now func() time.Time) (Campaign, BulkResult, error) {
	if now == nil {
		now = time.Now
	}
	if !c.Status.IsEditable() {
		return Campaign{}, BulkResult{}, ErrStatusDisallows(c.Status, "bulk decision")
	}
	if strings.TrimSpace(actor.ID) == "" {
		return Campaign{}, BulkResult{}, ErrEmptyActor
	}

	match, err := buildMatcher(selector)
	if err != nil {
		return Campaign{}, BulkResult{}, err
	}

	normalized, err := NormalizeDecisionInput(input)
	if err != nil {
		return Campaign{}, BulkResult{}, err
	}
	if normalized.Comments == "" {
		normalized.Comments = defaultBulkComment
	}

	updated := c.Clone()
	decidedAt := now().UTC()
	var result BulkResult

	for si := range updated.Subjects {
		subject := &updated.Subjects[si]
		for ii := range subject.Items {
			item := &subject.Items[ii]
			if !match(*item) {
				continue
			}
			if skipHighRisk && item.IsHighRisk() {
				result.Skipped++
				if len(result.SkippedItems) < maxSkippedItemDetails {
					result.SkippedItems = append(result.SkippedItems, SkippedItem{
						SubjectID: subject.ID,
						ItemID:    item.ID,
						Reason:    SkipReasonHighRisk,
					})
				}
				continue
			}
			if item.Decision.IsDecided() {
				result.Skipped++
				if len(result.SkippedItems) < maxSkippedItemDetails {
					result.SkippedItems = append(result.SkippedItems, SkippedItem{
						SubjectID: subject.ID,
						ItemID:    item.ID,
						Reason:    SkipReasonAlreadyDecided,
					})
				}
				continue
			}

			item.Decision = Decision{
				Type:       normalized.Type,
				ReasonCode: normalized.ReasonCode,
				Comments:   normalized.Comments,
				DecidedAt:  &decidedAt,
				DecidedBy:  actor.ID,
			}
			if subject.ReviewStatus == ReviewPending {
				subject.ReviewStatus = ReviewInProgress
			}
			result.Processed++
		}
	}

	if result.Processed > 0 {
		updated.UpdatedAt = decidedAt
	}
	return updated, result, nil
}

// buildMatcher compiles a selector into an item predicate.
func buildMatcher(selector Selector) (func(Item) bool, error) {
	switch sel := selector.(type) {
	case SelectAll:
		return func(Item) bool { return true }, nil
	case SelectFiltered:
		return func(item Item) bool {
			if sel.PrivilegeLevel != PrivilegeUnspecified && item.PrivilegeLevel != sel.PrivilegeLevel {
				return false
			}
			if sel.EntitlementType != "" && item.EntitlementType != sel.EntitlementType {
				return false
			}
			if sel.DataClassification != ClassificationUnspecified && item.DataClassification != sel.DataClassification {
				return false
			}
			return true
		}, nil
	case SelectItems:
		if len(sel.ItemIDs) == 0 {
			return nil, ErrEmptySelection
		}
		wanted := make(map[string]struct{}, len(sel.ItemIDs))
		for _, itemID := range sel.ItemIDs {
			itemID = strings.TrimSpace(itemID)
			if itemID == "" {
				continue
			}
			wanted[itemID] = struct{}{}
		}
		if len(wanted) == 0 {
			return nil, ErrEmptySelection
		}
		return func(item Item) bool {
			_, ok := wanted[item.ID]
			return ok
		}, nil
	default:
		return nil, ErrInvalidSelector
	}
}
