// Package recert parses recert command flags and runs operational tasks
// against a campaign store.
package recert

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/recertly/recert/internal/campaign"
	"github.com/recertly/recert/internal/engine"
	entrypoint "github.com/recertly/recert/internal/platform/cmd"
	"github.com/recertly/recert/internal/platform/requestctx"
	"github.com/recertly/recert/internal/storage"
	"github.com/recertly/recert/internal/storage/sqlite"
)

// Config holds recert command configuration.
type Config struct {
	DBPath      string `env:"RECERT_DB_PATH" envDefault:"recert.db"`
	Tenant      string `env:"RECERT_TENANT" envDefault:"demo"`
	Seed        bool
	List        bool
	Status      string
	AuditFilter string
	AuditLimit  int
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the campaign database")
	fs.StringVar(&cfg.Tenant, "tenant", cfg.Tenant, "tenant identifier")
	fs.BoolVar(&cfg.Seed, "seed", false, "create a demo campaign")
	fs.BoolVar(&cfg.List, "list", false, "list campaigns for the tenant")
	fs.StringVar(&cfg.Status, "status", "", "filter campaign listing by status")
	fs.StringVar(&cfg.AuditFilter, "audit", "", "list audit events matching an AIP-160 filter (use \"*\" for all)")
	fs.IntVar(&cfg.AuditLimit, "audit-limit", 50, "maximum audit events to list")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the recert command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRecert, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		eng := engine.New(store, store)
		ctx = requestctx.WithActor(ctx, requestctx.Actor{ID: "cli", Name: "recert CLI"})

		if cfg.Seed {
			if err := seedDemoCampaign(ctx, eng, cfg.Tenant, out); err != nil {
				return err
			}
		}
		if cfg.List {
			if err := listCampaigns(ctx, eng, cfg, out); err != nil {
				return err
			}
		}
		if cfg.AuditFilter != "" {
			if err := listAuditEvents(ctx, eng, cfg, out); err != nil {
				return err
			}
		}
		if !cfg.Seed && !cfg.List && cfg.AuditFilter == "" {
			fmt.Fprintln(out, "nothing to do: pass -seed, -list, or -audit")
		}
		return nil
	})
}

func seedDemoCampaign(ctx context.Context, eng *engine.Engine, tenant string, out io.Writer) error {
	now := time.Now().UTC()
	created, err := eng.CreateCampaign(ctx, campaign.CreateInput{
		TenantID:    tenant,
		Name:        "Quarterly Access Review",
		SystemName:  "billing-platform",
		Environment: "production",
		PeriodStart: now.AddDate(0, -3, 0),
		PeriodEnd:   now,
		DueDate:     now.AddDate(0, 0, 14),
		Subjects: []campaign.Subject{
			{
				ID:       "emp-001",
				FullName: "Dana Whitfield",
				Items: []campaign.Item{
					{ID: "ent-001", EntitlementName: "billing-admin", PrivilegeLevel: campaign.PrivilegeAdmin, DataClassification: campaign.ClassificationConfidential},
					{ID: "ent-002", EntitlementName: "report-viewer"},
				},
			},
			{
				ID:             "ctr-007",
				FullName:       "Miles Okafor",
				EmploymentType: campaign.EmploymentContractor,
				Items: []campaign.Item{
					{ID: "ent-003", EntitlementName: "export-restricted", DataClassification: campaign.ClassificationRestricted},
				},
			},
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded campaign %s (%s)\n", created.ID, created.Name)
	return nil
}

func listCampaigns(ctx context.Context, eng *engine.Engine, cfg Config, out io.Writer) error {
	query := storage.ListQuery{TenantID: cfg.Tenant}
	if cfg.Status != "" {
		status, err := campaign.StatusFromLabel(cfg.Status)
		if err != nil {
			return err
		}
		query.Status = status
	}
	for {
		page, err := eng.ListCampaigns(ctx, query)
		if err != nil {
			return err
		}
		for _, summary := range page.Campaigns {
			fmt.Fprintf(out, "%s  %-10s  %s (%d subjects, %d items)\n",
				summary.ID, summary.Status, summary.Name, summary.SubjectCount, summary.ItemCount)
		}
		if page.NextPageToken == "" {
			return nil
		}
		query.PageToken = page.NextPageToken
	}
}

func listAuditEvents(ctx context.Context, eng *engine.Engine, cfg Config, out io.Writer) error {
	filter := cfg.AuditFilter
	if filter == "*" {
		filter = ""
	}
	events, err := eng.ListAuditEvents(ctx, storage.AuditQuery{Filter: filter, Limit: cfg.AuditLimit})
	if err != nil {
		return err
	}
	for _, evt := range events {
		fmt.Fprintf(out, "%s  %-5s  %-25s  campaign=%s actor=%s\n",
			evt.Timestamp.Format(time.RFC3339), evt.Severity, evt.Action, evt.CampaignID, evt.ActorID)
	}
	return nil
}
