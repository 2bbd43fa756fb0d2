package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type RetailerRepository struct {
	DB *sql.DB
}

const retailerSelect = `
	SELECT r.id, r.user_id, u.email, u.phone, r.license_no, r.business_name, r.district_id, d.name,
	       r.address, r.contact_person, r.is_verified, r.is_active, r.created_at, r.updated_at
	FROM retailers r
	JOIN users u ON u.id = r.user_id
	JOIN districts d ON d.id = r.district_id`

func scanRetailer(row rowScanner) (models.Retailer, error) {
	var (
		rt      models.Retailer
		updated sql.NullTime
	)
	err := row.Scan(&rt.ID, &rt.UserID, &rt.UserEmail, &rt.UserPhone, &rt.LicenseNo, &rt.BusinessName,
		&rt.DistrictID, &rt.DistrictName, &rt.Address, &rt.ContactPerson, &rt.IsVerified, &rt.IsActive,
		&rt.CreatedAt, &updated)
	if err != nil {
		return models.Retailer{}, err
	}
	rt.UpdatedAt = timePtr(updated)
	return rt, nil
}

func (r *RetailerRepository) Create(ctx context.Context, rt models.Retailer) (models.Retailer, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO retailers (user_id, license_no, business_name, district_id, address, contact_person, is_verified, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.UserID, rt.LicenseNo, rt.BusinessName, rt.DistrictID, rt.Address, rt.ContactPerson,
		rt.IsVerified, rt.IsActive, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return models.Retailer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Retailer{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *RetailerRepository) GetByID(ctx context.Context, id int64) (models.Retailer, error) {
	rt, err := scanRetailer(r.DB.QueryRowContext(ctx, retailerSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Retailer{}, models.ErrNoRecord
	}
	return rt, err
}

func (r *RetailerRepository) GetByUserID(ctx context.Context, userID int64) (models.Retailer, error) {
	rt, err := scanRetailer(r.DB.QueryRowContext(ctx, retailerSelect+` WHERE r.user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Retailer{}, models.ErrProfileMissing
	}
	return rt, err
}

func (r *RetailerRepository) LicenseExists(ctx context.Context, license string, excludeID int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM retailers WHERE license_no = ? AND id <> ?)`, license, excludeID).Scan(&exists)
	return exists, err
}

// List returns active retailers ordered by business name.
func (r *RetailerRepository) List(ctx context.Context, f models.RetailerFilter) ([]models.Retailer, int, error) {
	var w where
	w.add("r.is_active = TRUE")
	if f.DistrictID != nil {
		w.add("r.district_id = ?", *f.DistrictID)
	}
	if f.IsVerified != nil {
		w.add("r.is_verified = ?", *f.IsVerified)
	}
	w.search(f.Search, "r.business_name", "r.license_no", "u.email", "r.contact_person")

	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM retailers r
		JOIN users u ON u.id = r.user_id`+w.String(), w.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	limit, limitArgs := pageClause(f.Page)
	rows, err := r.DB.QueryContext(ctx, retailerSelect+w.String()+` ORDER BY r.business_name`+limit, append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Retailer
	for rows.Next() {
		rt, err := scanRetailer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rt)
	}
	return out, total, rows.Err()
}

func (r *RetailerRepository) Update(ctx context.Context, rt models.Retailer) (models.Retailer, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE retailers
		SET license_no = ?, business_name = ?, district_id = ?, address = ?, contact_person = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		rt.LicenseNo, rt.BusinessName, rt.DistrictID, rt.Address, rt.ContactPerson, rt.IsActive,
		time.Now().UTC().Truncate(time.Second), rt.ID)
	if err != nil {
		return models.Retailer{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Retailer{}, models.ErrNoRecord
	}
	return r.GetByID(ctx, rt.ID)
}

func (r *RetailerRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE retailers SET is_verified = ?, updated_at = ? WHERE id = ?`,
		verified, time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}

func (r *RetailerRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE retailers SET is_active = FALSE, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Truncate(time.Second), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}
