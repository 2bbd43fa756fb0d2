package repositories

import (
	"context"
	"database/sql"
	"math"
	"time"

	"pricegov/internal/models"
)

// DashboardRepository runs the aggregate queries behind the admin dashboard.
type DashboardRepository struct {
	DB *sql.DB
}

func (r *DashboardRepository) AlertSummary(ctx context.Context, since time.Time, recent int) (models.AlertSummary, error) {
	s := models.AlertSummary{
		BySeverity: map[string]int{
			models.AlertCritical: 0,
			models.AlertHigh:     0,
			models.AlertMedium:   0,
			models.AlertLow:      0,
		},
		RecentAlerts: []models.AlertDigest{},
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT severity, COUNT(*), SUM(CASE WHEN is_resolved = FALSE THEN 1 ELSE 0 END)
		FROM price_alerts
		WHERE created_at >= ?
		GROUP BY severity`, since)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			severity          string
			total, unresolved int
		)
		if err := rows.Scan(&severity, &total, &unresolved); err != nil {
			return s, err
		}
		s.BySeverity[severity] = total
		s.TotalRecent += total
		s.Unresolved += unresolved
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	latest, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.title, a.severity, r.business_name, a.markup_percentage, a.created_at, a.is_resolved
		FROM price_alerts a
		JOIN retailers r ON r.id = a.retailer_id
		WHERE a.created_at >= ? AND a.is_resolved = FALSE
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?`, since, recent)
	if err != nil {
		return s, err
	}
	defer latest.Close()
	for latest.Next() {
		var (
			d      models.AlertDigest
			markup sql.NullFloat64
		)
		if err := latest.Scan(&d.ID, &d.Title, &d.Severity, &d.RetailerName, &markup, &d.CreatedAt, &d.IsResolved); err != nil {
			return s, err
		}
		d.MarkupPercentage = floatPtr(markup)
		s.RecentAlerts = append(s.RecentAlerts, d)
	}
	return s, latest.Err()
}

func (r *DashboardRepository) Compliance(ctx context.Context) (models.ComplianceSummary, error) {
	c := models.ComplianceSummary{ViolationBreakdown: map[string]int{}}
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN compliant = TRUE THEN 1 ELSE 0 END), 0)
		FROM published_prices WHERE is_active = TRUE`).Scan(&c.TotalPrices, &c.CompliantPrices)
	if err != nil {
		return c, err
	}
	c.NonCompliantPrices = c.TotalPrices - c.CompliantPrices
	c.ComplianceRate = rate(c.CompliantPrices, c.TotalPrices)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT violation_severity, COUNT(*)
		FROM published_prices
		WHERE is_active = TRUE AND violation_severity IN ('minor', 'moderate', 'major', 'severe')
		GROUP BY violation_severity`)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			severity string
			n        int
		)
		if err := rows.Scan(&severity, &n); err != nil {
			return c, err
		}
		c.ViolationBreakdown[severity] = n
	}
	return c, rows.Err()
}

// TopViolators ranks retailers by active major or severe prices.
func (r *DashboardRepository) TopViolators(ctx context.Context, limit int) ([]models.Violator, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.business_name, d.name, COUNT(pp.id) AS violation_count
		FROM retailers r
		JOIN districts d ON d.id = r.district_id
		JOIN published_prices pp ON pp.retailer_id = r.id
		WHERE pp.is_active = TRUE AND pp.violation_severity IN ('major', 'severe')
		GROUP BY r.id, r.business_name, d.name
		ORDER BY violation_count DESC, r.business_name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Violator{}
	for rows.Next() {
		var v models.Violator
		if err := rows.Scan(&v.RetailerName, &v.District, &v.ViolationCount); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *DashboardRepository) RecentActivity(ctx context.Context, since time.Time, limit int) (models.RecentActivity, error) {
	a := models.RecentActivity{RecentChanges: []models.PriceChange{}}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM published_prices WHERE created_at >= ?`, since).Scan(&a.PriceChanges24h); err != nil {
		return a, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.business_name, s.name, pp.price, pp.markup_percentage, pp.violation_severity, pp.created_at
		FROM published_prices pp
		JOIN retailers r ON r.id = pp.retailer_id
		JOIN skus s ON s.id = pp.sku_id
		WHERE pp.created_at >= ?
		ORDER BY pp.created_at DESC, pp.id DESC
		LIMIT ?`, since, limit)
	if err != nil {
		return a, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c      models.PriceChange
			markup sql.NullFloat64
		)
		if err := rows.Scan(&c.RetailerName, &c.ProductName, &c.Price, &markup, &c.ViolationSeverity, &c.CreatedAt); err != nil {
			return a, err
		}
		c.MarkupPercentage = floatPtr(markup)
		a.RecentChanges = append(a.RecentChanges, c)
	}
	return a, rows.Err()
}

// SKUsWithoutReferencePrices counts SKUs that never had a reference price.
func (r *DashboardRepository) SKUsWithoutReferencePrices(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM skus s
		WHERE NOT EXISTS (SELECT 1 FROM reference_prices rp WHERE rp.sku_id = s.id)`).Scan(&n)
	return n, err
}

func (r *DashboardRepository) DistrictCompliance(ctx context.Context) ([]models.DistrictCompliance, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT d.name, COUNT(pp.id), COALESCE(SUM(CASE WHEN pp.compliant = TRUE THEN 1 ELSE 0 END), 0)
		FROM districts d
		JOIN retailers r ON r.district_id = d.id
		JOIN published_prices pp ON pp.retailer_id = r.id AND pp.is_active = TRUE
		GROUP BY d.id, d.name
		ORDER BY d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DistrictCompliance{}
	for rows.Next() {
		var dc models.DistrictCompliance
		if err := rows.Scan(&dc.DistrictName, &dc.TotalPrices, &dc.CompliantPrices); err != nil {
			return nil, err
		}
		dc.ComplianceRate = rate(dc.CompliantPrices, dc.TotalPrices)
		out = append(out, dc)
	}
	return out, rows.Err()
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
