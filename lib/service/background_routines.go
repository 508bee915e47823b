package service

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// StartReconciliationRoutine runs reconciliation cycles for the process
// lifetime on a fixed interval. One cycle at a time: the next tick is only
// consumed after the current cycle finishes, so cycles never overlap. A
// failed cycle is logged and reported, never fatal.
func (svc *GatewayService) StartReconciliationRoutine(ctx context.Context) {
	interval := time.Duration(svc.Config.PollInterval) * time.Second
	svc.Logger.Infof("Starting reconciliation routine with a %s interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := svc.ReconcileOnce(ctx); err != nil {
			svc.Logger.Errorf("Reconciliation cycle failed: %v", err)
			sentry.CaptureException(err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
