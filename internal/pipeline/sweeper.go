package pipeline

import (
	"context"
	"time"

	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
)

type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper fails Preparing reports that outlived their deadline, so a lost
// stats call or a crashed worker cannot leave a report Preparing forever.
type Sweeper struct {
	reports  OverdueSweeper
	interval time.Duration
}

func NewSweeper(reports OverdueSweeper, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		reports:  reports,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	swept, err := s.reports.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("Sweep failed", "error", err)
		return
	}
	if swept > 0 {
		prom.AddReportsSwept(float64(swept))
		prom.AddCounter(prom.SystemReports, prom.MetricReportsFailed, float64(swept))
		logger.Warn("Swept overdue preparing reports", "count", swept)
	}
}
