package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type PublishedPriceRepository struct {
	DB *sql.DB
}

const publishedSelect = `
	SELECT pp.id, pp.retailer_id, r.business_name, pp.sku_id, s.name, s.code, r.district_id, d.name,
	       pp.price, pp.effective_from, pp.effective_until, pp.reference_price, pp.markup_percentage,
	       pp.compliant, pp.violation_severity, pp.validation_reason, pp.is_auto_approved,
	       pp.admin_approval_required, pp.is_active, pp.created_at, pp.updated_at
	FROM published_prices pp
	JOIN retailers r ON r.id = pp.retailer_id
	JOIN skus s ON s.id = pp.sku_id
	JOIN districts d ON d.id = r.district_id`

func scanPublishedPrice(row rowScanner) (models.PublishedPrice, error) {
	var (
		p       models.PublishedPrice
		until   sql.NullTime
		ref     models.NullMoney
		markup  sql.NullFloat64
		updated sql.NullTime
	)
	err := row.Scan(&p.ID, &p.RetailerID, &p.RetailerName, &p.SKUID, &p.SKUName, &p.SKUCode, &p.DistrictID,
		&p.DistrictName, &p.Price, &p.EffectiveFrom, &until, &ref, &markup, &p.Compliant, &p.ViolationSeverity,
		&p.ValidationReason, &p.IsAutoApproved, &p.AdminApprovalRequired, &p.IsActive, &p.CreatedAt, &updated)
	if err != nil {
		return models.PublishedPrice{}, err
	}
	p.EffectiveUntil = timePtr(until)
	p.ReferencePrice = ref.Ptr()
	p.MarkupPercentage = floatPtr(markup)
	p.UpdatedAt = timePtr(updated)
	return p, nil
}

func (r *PublishedPriceRepository) queryList(ctx context.Context, q string, args ...any) ([]models.PublishedPrice, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PublishedPrice
	for rows.Next() {
		p, err := scanPublishedPrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PublishedPriceRepository) Create(ctx context.Context, p models.PublishedPrice) (models.PublishedPrice, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO published_prices (retailer_id, sku_id, price, effective_from, effective_until, reference_price,
			markup_percentage, compliant, violation_severity, validation_reason, is_auto_approved,
			admin_approval_required, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RetailerID, p.SKUID, p.Price, p.EffectiveFrom, nullable(p.EffectiveUntil), nullable(p.ReferencePrice),
		nullable(p.MarkupPercentage), p.Compliant, p.ViolationSeverity, p.ValidationReason, p.IsAutoApproved,
		p.AdminApprovalRequired, p.IsActive, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return models.PublishedPrice{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.PublishedPrice{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PublishedPriceRepository) GetByID(ctx context.Context, id int64) (models.PublishedPrice, error) {
	p, err := scanPublishedPrice(r.DB.QueryRowContext(ctx, publishedSelect+` WHERE pp.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PublishedPrice{}, models.ErrNoRecord
	}
	return p, err
}

// List returns active published prices, newest first.
func (r *PublishedPriceRepository) List(ctx context.Context, f models.PublishedPriceFilter) ([]models.PublishedPrice, int, error) {
	var w where
	w.add("pp.is_active = TRUE")
	if f.RetailerID != nil {
		w.add("pp.retailer_id = ?", *f.RetailerID)
	}
	if f.SKUID != nil {
		w.add("pp.sku_id = ?", *f.SKUID)
	}
	if f.DistrictID != nil {
		w.add("r.district_id = ?", *f.DistrictID)
	}
	if f.Compliant != nil {
		w.add("pp.compliant = ?", *f.Compliant)
	}

	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM published_prices pp
		JOIN retailers r ON r.id = pp.retailer_id`+w.String(), w.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	limit, limitArgs := pageClause(f.Page)
	out, err := r.queryList(ctx, publishedSelect+w.String()+` ORDER BY pp.created_at DESC, pp.id DESC`+limit,
		append(w.args, limitArgs...)...)
	return out, total, err
}

// ActiveForRetailer returns the retailer's active prices for one SKU.
func (r *PublishedPriceRepository) ActiveForRetailer(ctx context.Context, retailerID, skuID, excludeID int64) ([]models.PublishedPrice, error) {
	return r.queryList(ctx, publishedSelect+`
		WHERE pp.is_active = TRUE AND pp.retailer_id = ? AND pp.sku_id = ? AND pp.id <> ?
		ORDER BY pp.effective_from`, retailerID, skuID, excludeID)
}

// TopCompliant returns the cheapest compliant prices in force in a district.
func (r *PublishedPriceRepository) TopCompliant(ctx context.Context, skuID, districtID int64, at time.Time, limit int) ([]models.RetailerPriceRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.business_name, pp.price, pp.effective_from
		FROM published_prices pp
		JOIN retailers r ON r.id = pp.retailer_id
		WHERE pp.sku_id = ? AND r.district_id = ? AND pp.is_active = TRUE AND pp.compliant = TRUE
		  AND pp.effective_from <= ? AND (pp.effective_until IS NULL OR pp.effective_until > ?)
		ORDER BY pp.price ASC, pp.id ASC
		LIMIT ?`, skuID, districtID, at, at, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.RetailerPriceRow{}
	for rows.Next() {
		var row models.RetailerPriceRow
		if err := rows.Scan(&row.RetailerName, &row.Price, &row.EffectiveFrom); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PublishedPriceRepository) Update(ctx context.Context, p models.PublishedPrice) (models.PublishedPrice, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE published_prices
		SET price = ?, effective_from = ?, effective_until = ?, reference_price = ?, markup_percentage = ?,
		    compliant = ?, violation_severity = ?, validation_reason = ?, is_auto_approved = ?,
		    admin_approval_required = ?, updated_at = ?
		WHERE id = ?`,
		p.Price, p.EffectiveFrom, nullable(p.EffectiveUntil), nullable(p.ReferencePrice), nullable(p.MarkupPercentage),
		p.Compliant, p.ViolationSeverity, p.ValidationReason, p.IsAutoApproved, p.AdminApprovalRequired,
		time.Now().UTC().Truncate(time.Second), p.ID)
	if err != nil {
		return models.PublishedPrice{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.PublishedPrice{}, models.ErrNoRecord
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PublishedPriceRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE published_prices SET is_active = FALSE, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
