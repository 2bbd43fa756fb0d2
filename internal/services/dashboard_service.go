package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
)

const (
	dashboardAlertWindow    = 7 * 24 * time.Hour
	dashboardActivityWindow = 24 * time.Hour
	dashboardRecentAlerts   = 10
	dashboardTopViolators   = 5
	dashboardRecentChanges  = 10
)

type DashboardService struct {
	DashboardRepo *repositories.DashboardRepository
	Now           func() time.Time
}

// Dashboard gathers the admin overview. The sections are independent
// queries, so they run concurrently.
func (s *DashboardService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	now = now.UTC().Truncate(time.Second)

	var out models.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Alerts, err = s.DashboardRepo.AlertSummary(gctx, now.Add(-dashboardAlertWindow), dashboardRecentAlerts)
		return err
	})
	g.Go(func() error {
		var err error
		out.Compliance, err = s.DashboardRepo.Compliance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.TopViolators, err = s.DashboardRepo.TopViolators(gctx, dashboardTopViolators)
		return err
	})
	g.Go(func() error {
		var err error
		out.RecentActivity, err = s.DashboardRepo.RecentActivity(gctx, now.Add(-dashboardActivityWindow), dashboardRecentChanges)
		return err
	})
	g.Go(func() error {
		var err error
		out.SystemHealth.ProductsWithoutRefPrices, err = s.DashboardRepo.SKUsWithoutReferencePrices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.SystemHealth.DistrictCompliance, err = s.DashboardRepo.DistrictCompliance(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, err
	}
	return out, nil
}
