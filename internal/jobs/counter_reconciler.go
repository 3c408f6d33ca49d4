package jobs

import (
	"context"

	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/pkg/logger"
)

// CounterReconciler rewrites denormalized counters that drifted from the
// relationship tables they summarise.
type CounterReconciler struct {
	counters repositories.CounterRepository
}

func NewCounterReconciler(counters repositories.CounterRepository) *CounterReconciler {
	return &CounterReconciler{counters: counters}
}

func (r *CounterReconciler) Name() string { return "counter_reconciler" }

func (r *CounterReconciler) Run(ctx context.Context) error {
	fixed, err := r.counters.Reconcile(ctx)
	var total int64
	for name, n := range fixed {
		if n == 0 {
			continue
		}
		total += n
		metrics.CounterCorrections.WithLabelValues(name).Add(float64(n))
		logger.Ctx(ctx).Warn().Str("counter", name).Int64("rows", n).Msg("counter drift corrected")
	}
	if err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Int64("corrected", total).Msg("counter reconciliation complete")
	return nil
}
