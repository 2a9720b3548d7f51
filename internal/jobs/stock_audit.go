package jobs

import (
	"context"

	"github.com/sirupsen/logrus"
)

// StockAuditor repairs stock rows whose current quantity drifted from their counters.
type StockAuditor interface {
	AuditCurrentQty(ctx context.Context) (int, error)
}

// StockAudit is the nightly current-quantity audit.
func StockAudit(schedule string, auditor StockAuditor, log logrus.FieldLogger) Job {
	return Job{
		Name:     "stock-audit",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			repaired, err := auditor.AuditCurrentQty(ctx)
			if err != nil {
				return err
			}
			if repaired > 0 {
				log.WithField("repaired", repaired).Warn("[Jobs] stock audit repaired rows")
			}
			return nil
		},
	}
}
