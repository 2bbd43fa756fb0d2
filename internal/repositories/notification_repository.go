package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pricegov/internal/models"
)

type NotificationRepository struct {
	DB *sql.DB
}

const notificationColumns = `id, complaint_id, recipient_id, notification_type, title, message, sent_via_push, sent_at, read_at`

func scanNotification(row rowScanner) (models.ComplaintNotification, error) {
	var (
		n    models.ComplaintNotification
		read sql.NullTime
	)
	err := row.Scan(&n.ID, &n.ComplaintID, &n.RecipientID, &n.NotificationType, &n.Title, &n.Message,
		&n.SentViaPush, &n.SentAt, &read)
	if err != nil {
		return models.ComplaintNotification{}, err
	}
	n.ReadAt = timePtr(read)
	return n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n models.ComplaintNotification) (models.ComplaintNotification, error) {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO complaint_notifications (complaint_id, recipient_id, notification_type, title, message, sent_via_push, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ComplaintID, n.RecipientID, n.NotificationType, n.Title, n.Message, n.SentViaPush, n.SentAt)
	if err != nil {
		return models.ComplaintNotification{}, err
	}
	n.ID, err = res.LastInsertId()
	return n, err
}

func (r *NotificationRepository) list(ctx context.Context, q string, args ...any) ([]models.ComplaintNotification, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ComplaintNotification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListForRecipient returns the user's notifications newest first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID int64, unreadOnly bool, p models.Page) ([]models.ComplaintNotification, int, error) {
	var w where
	w.add("recipient_id = ?", recipientID)
	if unreadOnly {
		w.add("read_at IS NULL")
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM complaint_notifications`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, limitArgs := pageClause(p)
	out, err := r.list(ctx, `SELECT `+notificationColumns+` FROM complaint_notifications`+w.String()+
		` ORDER BY sent_at DESC, id DESC`+limit, append(w.args, limitArgs...)...)
	return out, total, err
}

func (r *NotificationRepository) ListForComplaint(ctx context.Context, complaintID int64) ([]models.ComplaintNotification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM complaint_notifications
		WHERE complaint_id = ? ORDER BY sent_at DESC, id DESC`, complaintID)
}

// MarkRead stamps read_at once; only the recipient may mark a notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID int64, at time.Time) (models.ComplaintNotification, error) {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE complaint_notifications SET read_at = COALESCE(read_at, ?)
		WHERE id = ? AND recipient_id = ?`, at, id, recipientID)
	if err != nil {
		return models.ComplaintNotification{}, err
	}
	n, err := scanNotification(r.DB.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM complaint_notifications WHERE id = ? AND recipient_id = ?`, id, recipientID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ComplaintNotification{}, models.ErrNoRecord
	}
	return n, err
}

func (r *NotificationRepository) MarkPushed(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE complaint_notifications SET sent_via_push = TRUE WHERE id = ?`, id)
	return err
}
