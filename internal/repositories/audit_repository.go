package repositories

import (
	"context"
	"database/sql"
	"time"

	"pricegov/internal/models"
)

type AuditRepository struct {
	DB *sql.DB
}

func (r *AuditRepository) Create(ctx context.Context, a models.PriceAudit) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO price_audits (event_type, sku_id, district_id, retailer_id, old_price, new_price, reference_price,
			markup_percentage, compliant, reason, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.EventType, a.SKUID, nullable(a.DistrictID), nullable(a.RetailerID), nullable(a.OldPrice), nullable(a.NewPrice),
		nullable(a.ReferencePrice), nullable(a.MarkupPercentage), nullable(a.Compliant), a.Reason,
		nullable(a.UserID), a.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns audit entries newest first.
func (r *AuditRepository) List(ctx context.Context, f models.AuditFilter) ([]models.PriceAudit, int, error) {
	var w where
	if f.EventType != "" {
		w.add("a.event_type = ?", f.EventType)
	}
	if f.SKUID != nil {
		w.add("a.sku_id = ?", *f.SKUID)
	}
	if f.DistrictID != nil {
		w.add("a.district_id = ?", *f.DistrictID)
	}
	if f.RetailerID != nil {
		w.add("a.retailer_id = ?", *f.RetailerID)
	}
	if f.Compliant != nil {
		w.add("a.compliant = ?", *f.Compliant)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_audits a`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := pageClause(f.Page)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.event_type, a.sku_id, s.name, a.district_id, COALESCE(d.name, ''), a.retailer_id, COALESCE(r.business_name, ''),
		       a.old_price, a.new_price, a.reference_price, a.markup_percentage, a.compliant, a.reason,
		       a.user_id, COALESCE(u.email, ''), a.created_at
		FROM price_audits a
		JOIN skus s ON s.id = a.sku_id
		LEFT JOIN districts d ON d.id = a.district_id
		LEFT JOIN retailers r ON r.id = a.retailer_id
		LEFT JOIN users u ON u.id = a.user_id`+w.String()+`
		ORDER BY a.created_at DESC, a.id DESC`+limit, append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.PriceAudit
	for rows.Next() {
		var (
			a                  models.PriceAudit
			district           sql.NullInt64
			retailer, user     sql.NullInt64
			oldPrice, newPrice models.NullMoney
			refPrice           models.NullMoney
			markup             sql.NullFloat64
			compliant          sql.NullBool
		)
		err := rows.Scan(&a.ID, &a.EventType, &a.SKUID, &a.SKUName, &district, &a.DistrictName, &retailer,
			&a.RetailerName, &oldPrice, &newPrice, &refPrice, &markup, &compliant, &a.Reason, &user, &a.UserEmail, &a.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		a.DistrictID = int64Ptr(district)
		a.RetailerID = int64Ptr(retailer)
		a.UserID = int64Ptr(user)
		a.OldPrice = oldPrice.Ptr()
		a.NewPrice = newPrice.Ptr()
		a.ReferencePrice = refPrice.Ptr()
		a.MarkupPercentage = floatPtr(markup)
		a.Compliant = boolPtr(compliant)
		out = append(out, a)
	}
	return out, total, rows.Err()
}
