package sqlite

import (
	"testing"
	"time"
)

func TestParseAuditFilterEmpty(t *testing.T) {
	condition, err := ParseAuditFilter("   ")
	if err != nil {
		t.Fatalf("parse empty filter: %v", err)
	}
	if condition.Clause != "" || len(condition.Params) != 0 {
		t.Fatalf("expected empty condition, got %+v", condition)
	}
}

func TestParseAuditFilterEquality(t *testing.T) {
	condition, err := ParseAuditFilter(`campaign_id = "camp-1"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if condition.Clause != "campaign_id = ?" {
		t.Fatalf("unexpected clause %q", condition.Clause)
	}
	if len(condition.Params) != 1 || condition.Params[0] != "camp-1" {
		t.Fatalf("unexpected params %+v", condition.Params)
	}
}

func TestParseAuditFilterLogical(t *testing.T) {
	condition, err := ParseAuditFilter(`severity = "WARN" OR severity = "ERROR"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if condition.Clause != "(severity = ? OR severity = ?)" {
		t.Fatalf("unexpected clause %q", condition.Clause)
	}
	if len(condition.Params) != 2 {
		t.Fatalf("expected 2 params, got %+v", condition.Params)
	}
}

func TestParseAuditFilterTimestamp(t *testing.T) {
	condition, err := ParseAuditFilter(`ts >= timestamp("2026-03-21T09:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if condition.Clause != "timestamp >= ?" {
		t.Fatalf("unexpected clause %q", condition.Clause)
	}
	want := time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC).UnixMilli()
	if len(condition.Params) != 1 || condition.Params[0] != want {
		t.Fatalf("expected millis %d, got %+v", want, condition.Params)
	}
}

func TestParseAuditFilterErrors(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{name: "unknown field", filter: `color = "red"`},
		{name: "bad timestamp", filter: `ts > timestamp("yesterday")`},
		{name: "malformed expression", filter: `severity = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAuditFilter(tt.filter); err == nil {
				t.Fatalf("expected error for %q", tt.filter)
			}
		})
	}
}
