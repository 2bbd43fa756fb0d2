package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type DistrictRepository struct {
	DB *sql.DB
}

const districtColumns = `d.id, d.name, d.code, d.parent_id, COALESCE(p.name, ''), d.is_active, d.created_at, d.updated_at`

const districtFrom = ` FROM districts d LEFT JOIN districts p ON p.id = d.parent_id`

func scanDistrict(row rowScanner) (models.District, error) {
	var (
		d       models.District
		parent  sql.NullInt64
		updated sql.NullTime
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Code, &parent, &d.ParentName, &d.IsActive, &d.CreatedAt, &updated); err != nil {
		return models.District{}, err
	}
	d.ParentID = int64Ptr(parent)
	d.UpdatedAt = timePtr(updated)
	return d, nil
}

func (r *DistrictRepository) Create(ctx context.Context, d models.District) (models.District, error) {
	d.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO districts (name, code, parent_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.Name, d.Code, nullable(d.ParentID), d.IsActive, d.CreatedAt)
	if err != nil {
		return models.District{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.District{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *DistrictRepository) GetByID(ctx context.Context, id int64) (models.District, error) {
	d, err := scanDistrict(r.DB.QueryRowContext(ctx, `SELECT `+districtColumns+districtFrom+` WHERE d.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.District{}, models.ErrNoRecord
	}
	return d, err
}

func (r *DistrictRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM districts WHERE code = ? AND id <> ?)`, code, excludeID).Scan(&exists)
	return exists, err
}

// All returns every district, active or not, ordered by name.
func (r *DistrictRepository) All(ctx context.Context) ([]models.District, error) {
	return r.query(ctx, `SELECT `+districtColumns+districtFrom+` ORDER BY d.name`)
}

// List returns active districts matching the filter, ordered by name.
func (r *DistrictRepository) List(ctx context.Context, f models.DistrictFilter) ([]models.District, error) {
	var w where
	w.add("d.is_active = TRUE")
	if f.ParentID != nil {
		w.add("d.parent_id = ?", *f.ParentID)
	}
	w.search(f.Search, "d.name", "d.code")
	return r.query(ctx, `SELECT `+districtColumns+districtFrom+w.String()+` ORDER BY d.name`, w.args...)
}

func (r *DistrictRepository) query(ctx context.Context, q string, args ...any) ([]models.District, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DistrictRepository) Update(ctx context.Context, d models.District) (models.District, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE districts SET name = ?, code = ?, parent_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		d.Name, d.Code, nullable(d.ParentID), d.IsActive, time.Now().UTC().Truncate(time.Second), d.ID)
	if err != nil {
		return models.District{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.District{}, models.ErrNoRecord
	}
	return r.GetByID(ctx, d.ID)
}

func (r *DistrictRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE districts SET is_active = FALSE, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}

// Usage counts rows that reference the district.
func (r *DistrictRepository) Usage(ctx context.Context, id int64) (models.DistrictUsage, error) {
	var u models.DistrictUsage
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM retailers WHERE district_id = ?),
			(SELECT COUNT(*) FROM districts WHERE parent_id = ?),
			(SELECT COUNT(*) FROM reference_prices WHERE district_id = ?),
			(SELECT COUNT(*) FROM complaints WHERE district_id = ?),
			(SELECT COUNT(*) FROM price_audits WHERE district_id = ?)`,
		id, id, id, id, id).Scan(&u.Retailers, &u.ChildDistricts, &u.ReferencePrices, &u.Complaints, &u.PriceAudits)
	return u, err
}
