// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/splitfree/internal/ledger"
)

// DefaultAuditTimeout bounds a single audit run.
const DefaultAuditTimeout = 5 * time.Minute

// Auditor periodically runs ledger.Audit.
type Auditor struct {
	ledger  *ledger.Ledger
	timeout time.Duration
	cron    *cron.Cron
}

// NewAuditor creates an Auditor. A non-positive timeout uses
// DefaultAuditTimeout.
func NewAuditor(l *ledger.Ledger, timeout time.Duration) *Auditor {
	if timeout <= 0 {
		timeout = DefaultAuditTimeout
	}
	return &Auditor{ledger: l, timeout: timeout}
}

// Start schedules the audit with a robfig/cron spec such as "@every 1h" or
// "0 */6 * * *". An empty schedule leaves the job disabled.
func (a *Auditor) Start(schedule string) error {
	if schedule == "" {
		slog.Info("Audit job disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { a.Run(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule audit job %q: %w", schedule, err)
	}
	c.Start()
	a.cron = c

	slog.Info("Audit job started", "schedule", schedule)
	return nil
}

// Stop unschedules the job and waits for a running audit to finish or ctx to
// end.
func (a *Auditor) Stop(ctx context.Context) {
	if a.cron == nil {
		return
	}
	select {
	case <-a.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("Audit job still running at shutdown")
	}
}

// Run performs one audit pass and logs the result.
func (a *Auditor) Run(ctx context.Context) *ledger.AuditReport {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	report, err := a.ledger.Audit(ctx)
	if err != nil {
		slog.Error("Audit found problems", "error", err)
	}
	if report == nil {
		return nil
	}

	slog.Info("Audit completed",
		"groups", report.Checked,
		"repaired", len(report.Repaired),
		"unbalanced", len(report.Unbalanced),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}
