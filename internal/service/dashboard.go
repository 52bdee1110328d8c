// Package service provides the business logic layer (use cases):
// dashboard aggregation, transaction management, categories, savings
// goals and authentication.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pinee-app/pinee-api/internal/domain"
	"github.com/pinee-app/pinee-api/internal/finance"
	"github.com/pinee-app/pinee-api/internal/infra/chartrender"
	"github.com/pinee-app/pinee-api/internal/infra/observability"
	"github.com/pinee-app/pinee-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashTracer = otel.Tracer("service/dashboard")

// DashboardService resolves period ranges, fetches the record sets and
// folds them into dashboard totals. Fetched selection lists are cached
// and patched in place on writes so one edit does not force a refetch.
type DashboardService struct {
	store   port.TransactionStore
	records port.Cache[[]domain.TransactionRecord]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store port.TransactionStore, records port.Cache[[]domain.TransactionRecord], metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, records: records, metrics: metrics, logger: logger}
}

// selectionKey identifies one cached selection fetch.
func selectionKey(userID string, mode domain.PeriodMode, sel domain.DateRange) string {
	return fmt.Sprintf("%s|%s|%s", userID, mode, sel.StartISO())
}

// GetDashboard computes the dashboard view for one user, mode and
// reference date.
//
// The selection and consolidated record sets are fetched in parallel.
// A consolidated fetch failure degrades to the selection-derived value
// instead of failing the whole view; only a selection fetch failure is
// fatal.
func (s *DashboardService) GetDashboard(ctx context.Context, userID string, mode domain.PeriodMode, ref time.Time) (*domain.DashboardView, error) {
	ctx, span := dashTracer.Start(ctx, "DashboardService.GetDashboard")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("period.mode", string(mode)),
	)

	sel, cons := finance.ResolveRange(ref, mode)

	var (
		selRecords  []domain.TransactionRecord
		consRecords []domain.TransactionRecord
		consErr     error
	)

	key := selectionKey(userID, mode, sel)
	cached, hit := s.records.Get(key)
	if hit {
		s.metrics.IncrCacheHit("dashboard")
		selRecords = cached
	} else {
		s.metrics.IncrCacheMiss("dashboard")
	}

	sameRange := sel.Start.Equal(cons.Start) && sel.End.Equal(cons.End)

	g, gctx := errgroup.WithContext(ctx)
	if !hit {
		g.Go(func() error {
			var err error
			selRecords, err = s.store.ListTransactions(gctx, userID, sel.StartISO(), sel.EndISO())
			return err
		})
	}
	if !sameRange {
		g.Go(func() error {
			// a failure here degrades instead of cancelling the
			// selection fetch, so never return it
			consRecords, consErr = s.store.ListTransactions(gctx, userID, cons.StartISO(), cons.EndISO())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("firebase/transactions")
		return nil, err
	}
	if !hit {
		s.records.Set(key, selRecords)
	}

	totals := finance.Aggregate(selRecords)
	s.metrics.IncrAggregation()

	switch {
	case sameRange:
		// yearly: consolidated is scoped to the selection itself
	case consErr != nil:
		s.logger.Warn("dashboard: consolidated fetch failed, using selection-derived balance",
			zap.String("user_id", userID),
			zap.Error(consErr),
		)
		s.metrics.IncrExternalError("firebase/transactions")
	default:
		consTotals := finance.Aggregate(consRecords)
		totals.ConsolidatedBalance = consTotals.ConsolidatedBalance
	}

	return &domain.DashboardView{
		Mode:              mode,
		SelectionRange:    sel,
		ConsolidatedRange: cons,
		Totals:            totals,
	}, nil
}

// RenderChart renders the dashboard's per-day series as a PNG.
func (s *DashboardService) RenderChart(ctx context.Context, userID string, mode domain.PeriodMode, ref time.Time) ([]byte, error) {
	ctx, span := dashTracer.Start(ctx, "DashboardService.RenderChart")
	defer span.End()

	view, err := s.GetDashboard(ctx, userID, mode, ref)
	if err != nil {
		return nil, err
	}
	if len(view.Totals.ChartSeries) < 2 {
		return nil, &domain.ErrNotFound{Resource: "chart", ID: string(mode)}
	}

	title := fmt.Sprintf("Cashflow %s to %s", view.SelectionRange.StartISO(), view.SelectionRange.EndISO())
	return chartrender.RenderCashflowChart(view.Totals.ChartSeries, title)
}

// PatchCached reconciles every cached selection list that could contain
// the written record: the monthly, yearly and all-time selections
// resolved from the record's own date. Lists not in the cache are left
// to the next fetch.
func (s *DashboardService) PatchCached(changed domain.TransactionRecord) {
	day, err := changed.ParseDate()
	if err != nil {
		// an unparsable date never matches a range, so the patch
		// below degenerates to removal by ID; resolve from today
		day = time.Now().UTC()
	}

	for _, mode := range []domain.PeriodMode{domain.PeriodMonthly, domain.PeriodYearly, domain.PeriodAllTime} {
		sel, _ := finance.ResolveRange(day, mode)
		key := selectionKey(changed.UserID, mode, sel)
		current, ok := s.records.Get(key)
		if !ok {
			continue
		}
		s.records.Set(key, finance.ApplyLocalPatch(current, changed, sel))
		s.metrics.IncrPatchApplied()
	}
}

// DropCached discards the cached selections resolved from ref for one
// user. Used after deletes, where there is no record left to patch in.
func (s *DashboardService) DropCached(userID string, ref time.Time) {
	for _, mode := range []domain.PeriodMode{domain.PeriodMonthly, domain.PeriodYearly, domain.PeriodAllTime} {
		sel, _ := finance.ResolveRange(ref, mode)
		s.records.Delete(selectionKey(userID, mode, sel))
	}
}
