package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/models"
	"github.com/dmitrijs2005/userdash/internal/client/services"
)

const chartWidth = 40

// List prints the cached users in insertion order.
func (a *App) List(ctx context.Context) error {
	recs, err := a.users.ReadAll(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to read users", "error", err)
		printlnFn("Failed to load users.")
		return err
	}

	if len(recs) == 0 {
		printlnFn("No users cached yet.")
		return nil
	}
	for _, r := range recs {
		printlnFn(fmt.Sprintf("%4d  %-30s %-20s %s", r.ID, r.Email, r.Contact, r.SignupDate))
	}
	return nil
}

// Dashboard prints monthly signups as a bar chart.
func (a *App) Dashboard(ctx context.Context) error {
	buckets, err := a.dashboard.MonthlySignups(ctx, a.loc)
	if err != nil {
		a.log.Error(ctx, "failed to aggregate signups", "error", err)
		printlnFn("Failed to load dashboard.")
		return err
	}

	if len(buckets) == 0 {
		printlnFn("No signups yet.")
		return nil
	}
	printlnFn(renderChart(buckets))
	return nil
}

// renderChart draws one line per bucket, bars scaled to the largest count.
func renderChart(buckets []models.MonthlySignupBucket) string {
	maxCount := 0
	for _, b := range buckets {
		maxCount = max(maxCount, b.Count)
	}

	var sb strings.Builder
	for i, b := range buckets {
		width := 0
		if maxCount > 0 {
			width = max(b.Count*chartWidth/maxCount, 1)
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s | %s %d", b.Label(), strings.Repeat("#", width), b.Count)
	}
	return sb.String()
}

// Sync reconciles the remote user collection into the local cache.
func (a *App) Sync(ctx context.Context) error {
	r, err := a.sync.Reconcile(ctx)
	if err != nil {
		a.log.Error(ctx, "sync failed", "error", err)
		printlnFn("Sync failed.")
	}
	if r != nil {
		printlnFn(syncSummary(r))
	}
	return err
}

func syncSummary(r *services.SyncReport) string {
	return fmt.Sprintf("Synced %d users: %d new, %d already cached, %d failed.",
		r.Fetched, r.Inserted(), r.AlreadyExisting(), r.Failed())
}

// Export uploads the current dashboard to object storage.
func (a *App) Export(ctx context.Context) error {
	if a.exporter == nil {
		printlnFn("Export is not configured.")
		return nil
	}

	snap, err := a.dashboard.Snapshot(ctx, a.loc)
	if err != nil {
		a.log.Error(ctx, "failed to build snapshot", "error", err)
		printlnFn("Export failed.")
		return err
	}

	key, err := a.exporter.Export(ctx, snap)
	if err != nil {
		a.log.Error(ctx, "export failed", "error", err)
		printlnFn("Export failed.")
		return err
	}
	printlnFn(fmt.Sprintf("Exported %d signups to %s (%s).", snap.Total, key, snap.GeneratedAt.Format(time.RFC3339)))
	return nil
}
