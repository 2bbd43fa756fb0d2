package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type ReferencePriceRepository struct {
	DB *sql.DB
}

const referenceSelect = `
	SELECT rp.id, rp.sku_id, s.name, s.code, rp.district_id, COALESCE(d.name, ''), rp.price,
	       rp.effective_from, rp.effective_until, rp.is_active, rp.created_by, COALESCE(u.email, ''),
	       rp.created_at, rp.updated_at
	FROM reference_prices rp
	JOIN skus s ON s.id = rp.sku_id
	LEFT JOIN districts d ON d.id = rp.district_id
	LEFT JOIN users u ON u.id = rp.created_by`

func scanReferencePrice(row rowScanner) (models.ReferencePrice, error) {
	var (
		p        models.ReferencePrice
		district sql.NullInt64
		until    sql.NullTime
		creator  sql.NullInt64
		updated  sql.NullTime
	)
	err := row.Scan(&p.ID, &p.SKUID, &p.SKUName, &p.SKUCode, &district, &p.DistrictName, &p.Price,
		&p.EffectiveFrom, &until, &p.IsActive, &creator, &p.CreatedByEmail, &p.CreatedAt, &updated)
	if err != nil {
		return models.ReferencePrice{}, err
	}
	p.DistrictID = int64Ptr(district)
	p.EffectiveUntil = timePtr(until)
	p.CreatedBy = int64Ptr(creator)
	p.UpdatedAt = timePtr(updated)
	p.SetScope()
	return p, nil
}

func (r *ReferencePriceRepository) queryList(ctx context.Context, q string, args ...any) ([]models.ReferencePrice, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReferencePrice
	for rows.Next() {
		p, err := scanReferencePrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ReferencePriceRepository) Create(ctx context.Context, p models.ReferencePrice) (models.ReferencePrice, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO reference_prices (sku_id, district_id, price, effective_from, effective_until, is_active, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SKUID, nullable(p.DistrictID), p.Price, p.EffectiveFrom, nullable(p.EffectiveUntil), p.IsActive,
		nullable(p.CreatedBy), time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return models.ReferencePrice{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ReferencePrice{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *ReferencePriceRepository) GetByID(ctx context.Context, id int64) (models.ReferencePrice, error) {
	p, err := scanReferencePrice(r.DB.QueryRowContext(ctx, referenceSelect+` WHERE rp.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReferencePrice{}, models.ErrNoRecord
	}
	return p, err
}

// List returns active reference prices, newest period first.
func (r *ReferencePriceRepository) List(ctx context.Context, f models.ReferencePriceFilter) ([]models.ReferencePrice, int, error) {
	var w where
	w.add("rp.is_active = TRUE")
	if f.SKUID != nil {
		w.add("rp.sku_id = ?", *f.SKUID)
	}
	if f.GlobalOnly {
		w.add("rp.district_id IS NULL")
	} else if f.DistrictID != nil {
		w.add("rp.district_id = ?", *f.DistrictID)
	}
	w.search(f.Search, "s.name", "s.code", "d.name")

	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reference_prices rp
		JOIN skus s ON s.id = rp.sku_id
		LEFT JOIN districts d ON d.id = rp.district_id`+w.String(), w.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	limit, limitArgs := pageClause(f.Page)
	out, err := r.queryList(ctx, referenceSelect+w.String()+` ORDER BY rp.effective_from DESC, rp.id DESC`+limit,
		append(w.args, limitArgs...)...)
	return out, total, err
}

// ActiveInScope returns active prices for the sku in exactly the given scope;
// a nil district means the global scope.
func (r *ReferencePriceRepository) ActiveInScope(ctx context.Context, skuID int64, districtID *int64, excludeID int64) ([]models.ReferencePrice, error) {
	var w where
	w.add("rp.is_active = TRUE")
	w.add("rp.sku_id = ?", skuID)
	w.add("rp.id <> ?", excludeID)
	if districtID == nil {
		w.add("rp.district_id IS NULL")
	} else {
		w.add("rp.district_id = ?", *districtID)
	}
	return r.queryList(ctx, referenceSelect+w.String()+` ORDER BY rp.effective_from`, w.args...)
}

// Applicable resolves the reference price in force at the given instant: the
// district price when one exists, otherwise the global one.
func (r *ReferencePriceRepository) Applicable(ctx context.Context, skuID, districtID int64, at time.Time) (models.ReferencePrice, error) {
	const window = ` AND rp.is_active = TRUE AND rp.effective_from <= ?
		AND (rp.effective_until IS NULL OR rp.effective_until > ?)
		ORDER BY rp.effective_from DESC, rp.id DESC LIMIT 1`

	p, err := scanReferencePrice(r.DB.QueryRowContext(ctx,
		referenceSelect+` WHERE rp.sku_id = ? AND rp.district_id = ?`+window, skuID, districtID, at, at))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ReferencePrice{}, err
	}

	p, err = scanReferencePrice(r.DB.QueryRowContext(ctx,
		referenceSelect+` WHERE rp.sku_id = ? AND rp.district_id IS NULL`+window, skuID, at, at))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReferencePrice{}, models.ErrNoRecord
	}
	return p, err
}

// LatestActive ignores effective windows: the most recent active district
// price, else the most recent active global price.
func (r *ReferencePriceRepository) LatestActive(ctx context.Context, skuID, districtID int64) (models.ReferencePrice, error) {
	const tail = ` AND rp.is_active = TRUE ORDER BY rp.effective_from DESC, rp.id DESC LIMIT 1`
	p, err := scanReferencePrice(r.DB.QueryRowContext(ctx,
		referenceSelect+` WHERE rp.sku_id = ? AND rp.district_id = ?`+tail, skuID, districtID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ReferencePrice{}, err
	}
	p, err = scanReferencePrice(r.DB.QueryRowContext(ctx,
		referenceSelect+` WHERE rp.sku_id = ? AND rp.district_id IS NULL`+tail, skuID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReferencePrice{}, models.ErrNoRecord
	}
	return p, err
}

func (r *ReferencePriceRepository) Update(ctx context.Context, p models.ReferencePrice) (models.ReferencePrice, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE reference_prices
		SET sku_id = ?, district_id = ?, price = ?, effective_from = ?, effective_until = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.SKUID, nullable(p.DistrictID), p.Price, p.EffectiveFrom, nullable(p.EffectiveUntil), p.IsActive,
		time.Now().UTC().Truncate(time.Second), p.ID)
	if err != nil {
		return models.ReferencePrice{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ReferencePrice{}, models.ErrNoRecord
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ReferencePriceRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE reference_prices SET is_active = FALSE, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
