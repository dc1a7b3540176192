// Package sqlite persists campaign aggregates as revision-stamped JSON
// documents, preserving whole-aggregate atomicity for every save.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/recertly/recert/internal/campaign"
	"github.com/recertly/recert/internal/platform/storage/sqlitemigrate"
	"github.com/recertly/recert/internal/storage"
	"github.com/recertly/recert/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const defaultPageSize = 20

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func fromNullString(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

// Store provides SQLite-backed persistence for campaigns and audit events.
type Store struct {
	sqlDB *sql.DB
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Open opens a SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save persists a campaign aggregate with a revision check. Expected revision
// storage.NewRevision inserts; any other value must match the stored row.
func (s *Store) Save(ctx context.Context, c campaign.Campaign, expectedRevision int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.ID) == "" {
		return 0, fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(c.TenantID) == "" {
		return 0, fmt.Errorf("tenant id is required")
	}

	document, err := json.Marshal(c)
	if err != nil {
		return 0, fmt.Errorf("marshal campaign: %w", err)
	}

	itemCount := 0
	for _, subject := range c.Subjects {
		itemCount += len(subject.Items)
	}

	if expectedRevision == storage.NewRevision {
		_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO campaigns (tenant_id, id, name, system_name, status, subject_count, item_count, revision, document, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
			c.TenantID, c.ID, c.Name, c.SystemName, string(c.Status),
			len(c.Subjects), itemCount, string(document),
			toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, storage.ErrRevisionConflict
			}
			return 0, fmt.Errorf("insert campaign: %w", err)
		}
		return 1, nil
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaigns
SET name = ?, system_name = ?, status = ?, subject_count = ?, item_count = ?,
    revision = revision + 1, document = ?, updated_at = ?
WHERE tenant_id = ? AND id = ? AND revision = ?`,
		c.Name, c.SystemName, string(c.Status), len(c.Subjects), itemCount,
		string(document), toMillis(c.UpdatedAt),
		c.TenantID, c.ID, expectedRevision,
	)
	if err != nil {
		return 0, fmt.Errorf("update campaign: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update campaign rows: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or another writer advanced the revision.
		var current int64
		row := s.sqlDB.QueryRowContext(ctx,
			"SELECT revision FROM campaigns WHERE tenant_id = ? AND id = ?", c.TenantID, c.ID)
		if scanErr := row.Scan(&current); scanErr != nil {
			if scanErr == sql.ErrNoRows {
				return 0, storage.ErrNotFound
			}
			return 0, fmt.Errorf("check campaign revision: %w", scanErr)
		}
		return 0, storage.ErrRevisionConflict
	}
	return expectedRevision + 1, nil
}

// Get fetches a campaign aggregate and its current revision.
func (s *Store) Get(ctx context.Context, tenantID, id string) (campaign.Campaign, int64, error) {
	if err := ctx.Err(); err != nil {
		return campaign.Campaign{}, 0, err
	}
	if s == nil || s.sqlDB == nil {
		return campaign.Campaign{}, 0, fmt.Errorf("storage is not configured")
	}

	var (
		document string
		revision int64
	)
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT document, revision FROM campaigns WHERE tenant_id = ? AND id = ?", tenantID, id)
	if err := row.Scan(&document, &revision); err != nil {
		if err == sql.ErrNoRows {
			return campaign.Campaign{}, 0, storage.ErrNotFound
		}
		return campaign.Campaign{}, 0, fmt.Errorf("scan campaign: %w", err)
	}

	var c campaign.Campaign
	if err := json.Unmarshal([]byte(document), &c); err != nil {
		return campaign.Campaign{}, 0, fmt.Errorf("unmarshal campaign: %w", err)
	}
	return c, revision, nil
}

// pageCursor is the decoded keyset position of an opaque page token.
type pageCursor struct {
	CreatedAt int64  `json:"ca"`
	ID        string `json:"id"`
}

// List returns a page of campaign summaries for a tenant, newest first.
func (s *Store) List(ctx context.Context, query storage.ListQuery) (storage.CampaignPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CampaignPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CampaignPage{}, fmt.Errorf("storage is not configured")
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	clauses := []string{"tenant_id = ?"}
	params := []any{query.TenantID}
	if query.Status != campaign.StatusUnspecified {
		clauses = append(clauses, "status = ?")
		params = append(params, string(query.Status))
	}
	if query.PageToken != "" {
		cursor, err := decodePageToken(query.PageToken)
		if err != nil {
			return storage.CampaignPage{}, err
		}
		clauses = append(clauses, "(created_at < ? OR (created_at = ? AND id > ?))")
		params = append(params, cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	// Fetch one extra row to detect whether another page exists.
	params = append(params, pageSize+1)
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, tenant_id, name, system_name, status, subject_count, item_count, created_at, updated_at
FROM campaigns
WHERE `+strings.Join(clauses, " AND ")+`
ORDER BY created_at DESC, id ASC
LIMIT ?`, params...)
	if err != nil {
		return storage.CampaignPage{}, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var summaries []storage.CampaignSummary
	for rows.Next() {
		var (
			summary   storage.CampaignSummary
			status    string
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(
			&summary.ID, &summary.TenantID, &summary.Name, &summary.SystemName,
			&status, &summary.SubjectCount, &summary.ItemCount, &createdAt, &updatedAt,
		); err != nil {
			return storage.CampaignPage{}, fmt.Errorf("scan campaign summary: %w", err)
		}
		summary.Status = campaign.Status(status)
		summary.CreatedAt = fromMillis(createdAt)
		summary.UpdatedAt = fromMillis(updatedAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return storage.CampaignPage{}, fmt.Errorf("iterate campaigns: %w", err)
	}

	page := storage.CampaignPage{}
	if len(summaries) > pageSize {
		summaries = summaries[:pageSize]
		last := summaries[len(summaries)-1]
		token, err := encodePageToken(pageCursor{CreatedAt: toMillis(last.CreatedAt), ID: last.ID})
		if err != nil {
			return storage.CampaignPage{}, err
		}
		page.NextPageToken = token
	}
	page.Campaigns = summaries
	return page, nil
}

// Delete removes a campaign aggregate.
func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM campaigns WHERE tenant_id = ? AND id = ?", tenantID, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete campaign rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	var attributesJSON []byte
	if len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal audit attributes: %w", err)
		}
		attributesJSON = payload
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (timestamp, event_name, severity, tenant_id, campaign_id, actor_id, action, trace_id, span_id, before_json, after_json, attributes_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp), evt.EventName, evt.Severity,
		toNullString(evt.TenantID), toNullString(evt.CampaignID),
		toNullString(evt.ActorID), toNullString(evt.Action),
		toNullString(evt.TraceID), toNullString(evt.SpanID),
		evt.BeforeJSON, evt.AfterJSON, attributesJSON,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns audit events matching an optional AIP-160 filter,
// newest first.
func (s *Store) ListAuditEvents(ctx context.Context, query storage.AuditQuery) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	condition, err := ParseAuditFilter(query.Filter)
	if err != nil {
		return nil, err
	}

	sqlQuery := `
SELECT timestamp, event_name, severity, tenant_id, campaign_id, actor_id, action, trace_id, span_id, before_json, after_json, attributes_json
FROM audit_events`
	params := condition.Params
	if condition.Clause != "" {
		sqlQuery += " WHERE " + condition.Clause
	}
	sqlQuery += " ORDER BY timestamp DESC, id DESC"

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}
	sqlQuery += " LIMIT ?"
	params = append(params, limit)

	rows, err := s.sqlDB.QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []storage.AuditEvent
	for rows.Next() {
		var (
			evt            storage.AuditEvent
			timestamp      int64
			tenantID       sql.NullString
			campaignID     sql.NullString
			actorID        sql.NullString
			action         sql.NullString
			traceID        sql.NullString
			spanID         sql.NullString
			attributesJSON []byte
		)
		if err := rows.Scan(
			&timestamp, &evt.EventName, &evt.Severity, &tenantID, &campaignID,
			&actorID, &action, &traceID, &spanID,
			&evt.BeforeJSON, &evt.AfterJSON, &attributesJSON,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		evt.Timestamp = fromMillis(timestamp)
		evt.TenantID = fromNullString(tenantID)
		evt.CampaignID = fromNullString(campaignID)
		evt.ActorID = fromNullString(actorID)
		evt.Action = fromNullString(action)
		evt.TraceID = fromNullString(traceID)
		evt.SpanID = fromNullString(spanID)
		if len(attributesJSON) > 0 {
			if err := json.Unmarshal(attributesJSON, &evt.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal audit attributes: %w", err)
			}
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func isUniqueViolation(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint") || strings.Contains(value, "constraint failed")
}

func encodePageToken(cursor pageCursor) (string, error) {
	data, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("marshal page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodePageToken(token string) (pageCursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return pageCursor{}, fmt.Errorf("decode page token: %w", err)
	}
	var cursor pageCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return pageCursor{}, fmt.Errorf("unmarshal page token: %w", err)
	}
	return cursor, nil
}
