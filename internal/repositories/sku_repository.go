package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type SKURepository struct {
	DB *sql.DB
}

const skuColumns = `id, code, name, manufacturer, pack_size_kg, description, is_active, created_at, updated_at`

func scanSKU(row rowScanner) (models.SKU, error) {
	var (
		s       models.SKU
		updated sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Manufacturer, &s.PackSizeKg, &s.Description, &s.IsActive, &s.CreatedAt, &updated); err != nil {
		return models.SKU{}, err
	}
	s.UpdatedAt = timePtr(updated)
	s.DisplayName = models.SKUDisplayName(s.Name, s.Manufacturer, s.PackSizeKg)
	return s, nil
}

func (r *SKURepository) Create(ctx context.Context, s models.SKU) (models.SKU, error) {
	s.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO skus (code, name, manufacturer, pack_size_kg, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Code, s.Name, s.Manufacturer, s.PackSizeKg, s.Description, s.IsActive, s.CreatedAt)
	if err != nil {
		return models.SKU{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.SKU{}, err
	}
	s.ID = id
	s.DisplayName = models.SKUDisplayName(s.Name, s.Manufacturer, s.PackSizeKg)
	return s, nil
}

func (r *SKURepository) GetByID(ctx context.Context, id int64) (models.SKU, error) {
	s, err := scanSKU(r.DB.QueryRowContext(ctx, `SELECT `+skuColumns+` FROM skus WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SKU{}, models.ErrNoRecord
	}
	return s, err
}

func (r *SKURepository) GetByCode(ctx context.Context, code string) (models.SKU, error) {
	s, err := scanSKU(r.DB.QueryRowContext(ctx, `SELECT `+skuColumns+` FROM skus WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SKU{}, models.ErrNoRecord
	}
	return s, err
}

func (r *SKURepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM skus WHERE code = ? AND id <> ?)`, code, excludeID).Scan(&exists)
	return exists, err
}

// List returns active SKUs ordered by name.
func (r *SKURepository) List(ctx context.Context, f models.SKUFilter) ([]models.SKU, error) {
	var w where
	w.add("is_active = TRUE")
	if f.Manufacturer != "" {
		w.add("manufacturer = ?", f.Manufacturer)
	}
	w.search(f.Search, "code", "name", "manufacturer")

	rows, err := r.DB.QueryContext(ctx, `SELECT `+skuColumns+` FROM skus`+w.String()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SKU
	for rows.Next() {
		s, err := scanSKU(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SKURepository) Update(ctx context.Context, s models.SKU) (models.SKU, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE skus SET code = ?, name = ?, manufacturer = ?, pack_size_kg = ?, description = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		s.Code, s.Name, s.Manufacturer, s.PackSizeKg, s.Description, s.IsActive, time.Now().UTC().Truncate(time.Second), s.ID)
	if err != nil {
		return models.SKU{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.SKU{}, models.ErrNoRecord
	}
	return r.GetByID(ctx, s.ID)
}

func (r *SKURepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE skus SET is_active = FALSE, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
