package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pricegov/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, email, password, first_name, last_name, phone, role, is_verified, is_active, fcm_token, date_joined, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var (
		u        models.User
		fcm      sql.NullString
		updateAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &u.Role,
		&u.IsVerified, &u.IsActive, &fcm, &u.DateJoined, &updateAt)
	if err != nil {
		return models.User{}, err
	}
	u.FCMToken = nullString(fcm)
	u.UpdatedAt = timePtr(updateAt)
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (email, password, first_name, last_name, phone, role, is_verified, is_active, date_joined)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	user.DateJoined = time.Now().UTC().Truncate(time.Second)
	result, err := r.DB.ExecContext(ctx, query,
		user.Email, user.Password, user.FirstName, user.LastName, user.Phone, user.Role,
		user.IsVerified, user.IsActive, user.DateJoined,
	)
	if err != nil {
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = id
	user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER(?)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	return u, err
}

var userOrderings = map[string]string{
	"date_joined":  "date_joined ASC, id ASC",
	"-date_joined": "date_joined DESC, id DESC",
	"email":        "email ASC",
	"-email":       "email DESC",
}

func (r *UserRepository) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	var w where
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.IsVerified != nil {
		w.add("is_verified = ?", *f.IsVerified)
	}
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	w.search(f.Search, "email", "first_name", "last_name", "phone")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := userOrderings[f.Ordering]
	if !ok {
		order = userOrderings["-date_joined"]
	}
	limit, limitArgs := pageClause(f.Page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users`+w.String()+` ORDER BY `+order+limit,
		append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// ListByRoles returns active users holding any of the roles.
func (r *UserRepository) ListByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roles)), ",")
	args := make([]any, len(roles))
	for i, role := range roles {
		args[i] = role
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_active = TRUE AND role IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (models.User, error) {
	var (
		sets []string
		args []any
	)
	if upd.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *upd.LastName)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	if upd.FCMToken != nil {
		sets = append(sets, "fcm_token = ?")
		args = append(args, *upd.FCMToken)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC().Truncate(time.Second), id)
		res, err := r.DB.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return models.User{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.User{}, models.ErrUserNotFound
		}
	}
	return r.GetUserByID(ctx, id)
}

func (r *UserRepository) SetSession(ctx context.Context, userID int64, session models.Session) error {
	query := `
		UPDATE users
		SET refresh_token = ?, expires_at = ?
		WHERE id = ?
	`

	result, err := r.DB.ExecContext(ctx, query, session.RefreshToken, session.ExpiresAt, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var (
		s       models.Session
		expires sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, role, refresh_token, expires_at
		FROM users
		WHERE refresh_token = ? AND is_active = TRUE
	`, refreshToken).Scan(&s.UserID, &s.Role, &s.RefreshToken, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}
	if expires.Valid {
		s.ExpiresAt = expires.Time
	}
	return s, nil
}

func (r *UserRepository) ClearSession(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET refresh_token = NULL, expires_at = NULL WHERE id = ?`, userID)
	return err
}

// ClearExpiredSessions drops refresh tokens that expired before now.
func (r *UserRepository) ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET refresh_token = NULL, expires_at = NULL
		WHERE refresh_token IS NOT NULL AND expires_at < ?
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
