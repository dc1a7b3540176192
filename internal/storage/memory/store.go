// Package memory provides an in-memory store for tests and local runs.
package memory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/recertly/recert/internal/campaign"
	"github.com/recertly/recert/internal/storage"
)

const defaultPageSize = 20

// Store keeps campaign aggregates and audit events in process memory. Saves
// are revision-checked like the SQLite store so engine tests exercise the
// same concurrency contract.
type Store struct {
	mu        sync.RWMutex
	campaigns map[string]record
	events    []storage.AuditEvent
}

type record struct {
	payload  []byte
	revision int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{campaigns: map[string]record{}}
}

func key(tenantID, id string) string {
	return tenantID + "/" + id
}

// Save persists a campaign aggregate with a revision check.
func (s *Store) Save(ctx context.Context, c campaign.Campaign, expectedRevision int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(c.ID) == "" {
		return 0, fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(c.TenantID) == "" {
		return 0, fmt.Errorf("tenant id is required")
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return 0, fmt.Errorf("marshal campaign: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storeKey := key(c.TenantID, c.ID)
	existing, ok := s.campaigns[storeKey]
	if expectedRevision == storage.NewRevision {
		if ok {
			return 0, storage.ErrRevisionConflict
		}
		s.campaigns[storeKey] = record{payload: payload, revision: 1}
		return 1, nil
	}
	if !ok {
		return 0, storage.ErrNotFound
	}
	if existing.revision != expectedRevision {
		return 0, storage.ErrRevisionConflict
	}
	next := existing.revision + 1
	s.campaigns[storeKey] = record{payload: payload, revision: next}
	return next, nil
}

// Get fetches a campaign aggregate and its current revision.
func (s *Store) Get(ctx context.Context, tenantID, id string) (campaign.Campaign, int64, error) {
	if err := ctx.Err(); err != nil {
		return campaign.Campaign{}, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, ok := s.campaigns[key(tenantID, id)]
	if !ok {
		return campaign.Campaign{}, 0, storage.ErrNotFound
	}
	var c campaign.Campaign
	if err := json.Unmarshal(existing.payload, &c); err != nil {
		return campaign.Campaign{}, 0, fmt.Errorf("unmarshal campaign: %w", err)
	}
	return c, existing.revision, nil
}

// List returns a page of campaign summaries for a tenant, newest first.
func (s *Store) List(ctx context.Context, query storage.ListQuery) (storage.CampaignPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CampaignPage{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []storage.CampaignSummary
	for _, existing := range s.campaigns {
		var c campaign.Campaign
		if err := json.Unmarshal(existing.payload, &c); err != nil {
			return storage.CampaignPage{}, fmt.Errorf("unmarshal campaign: %w", err)
		}
		if c.TenantID != query.TenantID {
			continue
		}
		if query.Status != campaign.StatusUnspecified && c.Status != query.Status {
			continue
		}
		summaries = append(summaries, summarize(c))
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	start := 0
	if query.PageToken != "" {
		cursor, err := decodePageToken(query.PageToken)
		if err != nil {
			return storage.CampaignPage{}, err
		}
		for i, summary := range summaries {
			if summary.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + pageSize
	if end > len(summaries) {
		end = len(summaries)
	}
	page := storage.CampaignPage{Campaigns: summaries[start:end]}
	if end < len(summaries) && end > start {
		page.NextPageToken = encodePageToken(summaries[end-1].ID)
	}
	return page, nil
}

// Delete removes a campaign aggregate.
func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storeKey := key(tenantID, id)
	if _, ok := s.campaigns[storeKey]; !ok {
		return storage.ErrNotFound
	}
	delete(s.campaigns, storeKey)
	return nil
}

// AppendAuditEvent records an audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

// ListAuditEvents returns recorded events, newest first. The memory store
// supports only empty filters; expression filtering is a SQLite concern.
func (s *Store) ListAuditEvents(ctx context.Context, query storage.AuditQuery) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query.Filter) != "" {
		return nil, fmt.Errorf("memory store does not support audit filters")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]storage.AuditEvent, len(s.events))
	copy(events, s.events)
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if query.Limit > 0 && len(events) > query.Limit {
		events = events[:query.Limit]
	}
	return events, nil
}

func summarize(c campaign.Campaign) storage.CampaignSummary {
	itemCount := 0
	for _, subject := range c.Subjects {
		itemCount += len(subject.Items)
	}
	return storage.CampaignSummary{
		ID:           c.ID,
		TenantID:     c.TenantID,
		Name:         c.Name,
		SystemName:   c.SystemName,
		Status:       c.Status,
		SubjectCount: len(c.Subjects),
		ItemCount:    itemCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func encodePageToken(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodePageToken(token string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decode page token: %w", err)
	}
	return string(decoded), nil
}
