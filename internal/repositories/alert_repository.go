package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type AlertRepository struct {
	DB *sql.DB
}

const alertSelect = `
	SELECT a.id, a.retailer_id, r.business_name, a.published_price_id, a.reference_price_id, a.alert_type,
	       a.severity, a.title, a.message, a.markup_percentage, a.reference_price_amount, a.retailer_price_amount,
	       a.is_resolved, a.resolved_by, a.resolved_at, a.resolution_notes, a.created_at
	FROM price_alerts a
	JOIN retailers r ON r.id = a.retailer_id`

func scanAlert(row rowScanner) (models.PriceAlert, error) {
	var (
		a                   models.PriceAlert
		published, refID    sql.NullInt64
		markup              sql.NullFloat64
		refAmount, rtAmount models.NullMoney
		resolvedBy          sql.NullInt64
		resolvedAt          sql.NullTime
	)
	err := row.Scan(&a.ID, &a.RetailerID, &a.RetailerName, &published, &refID, &a.AlertType, &a.Severity, &a.Title,
		&a.Message, &markup, &refAmount, &rtAmount, &a.IsResolved, &resolvedBy, &resolvedAt, &a.ResolutionNotes, &a.CreatedAt)
	if err != nil {
		return models.PriceAlert{}, err
	}
	a.PublishedPriceID = int64Ptr(published)
	a.ReferencePriceID = int64Ptr(refID)
	a.MarkupPercentage = floatPtr(markup)
	a.ReferencePriceAmount = refAmount.Ptr()
	a.RetailerPriceAmount = rtAmount.Ptr()
	a.ResolvedBy = int64Ptr(resolvedBy)
	a.ResolvedAt = timePtr(resolvedAt)
	return a, nil
}

func (r *AlertRepository) Create(ctx context.Context, a models.PriceAlert) (models.PriceAlert, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO price_alerts (retailer_id, published_price_id, reference_price_id, alert_type, severity, title, message,
			markup_percentage, reference_price_amount, retailer_price_amount, is_resolved, resolution_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, '', ?)`,
		a.RetailerID, nullable(a.PublishedPriceID), nullable(a.ReferencePriceID), a.AlertType, a.Severity, a.Title,
		a.Message, nullable(a.MarkupPercentage), nullable(a.ReferencePriceAmount), nullable(a.RetailerPriceAmount),
		a.CreatedAt)
	if err != nil {
		return models.PriceAlert{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.PriceAlert{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (models.PriceAlert, error) {
	a, err := scanAlert(r.DB.QueryRowContext(ctx, alertSelect+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PriceAlert{}, models.ErrNoRecord
	}
	return a, err
}

func (r *AlertRepository) List(ctx context.Context, f models.AlertFilter) ([]models.PriceAlert, int, error) {
	var w where
	if f.Severity != "" {
		w.add("a.severity = ?", f.Severity)
	}
	if f.IsResolved != nil {
		w.add("a.is_resolved = ?", *f.IsResolved)
	}
	if f.RetailerID != nil {
		w.add("a.retailer_id = ?", *f.RetailerID)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_alerts a`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, limitArgs := pageClause(f.Page)
	rows, err := r.DB.QueryContext(ctx, alertSelect+w.String()+` ORDER BY a.created_at DESC, a.id DESC`+limit,
		append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.PriceAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Resolve marks an unresolved alert as handled. Resolving twice returns
// ErrNoRecord for the second call.
func (r *AlertRepository) Resolve(ctx context.Context, id, userID int64, notes string, at time.Time) (models.PriceAlert, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE price_alerts SET is_resolved = TRUE, resolved_by = ?, resolved_at = ?, resolution_notes = ?
		WHERE id = ? AND is_resolved = FALSE`, userID, at, notes, id)
	if err != nil {
		return models.PriceAlert{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.PriceAlert{}, models.ErrNoRecord
	}
	return r.GetByID(ctx, id)
}
