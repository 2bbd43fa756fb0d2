package fsm

import (
	"context"
	"database/sql"
	"time"

	"pricegov/internal/models"
)

// Status constants used by the complaint workflow.
const (
	StatusPending         = "pending"
	StatusUnderReview     = "under_review"
	StatusInvestigation   = "investigation"
	StatusWaitingResponse = "waiting_response"
	StatusResolved        = "resolved"
	StatusRejected        = "rejected"
	StatusClosed          = "closed"
)

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusUnderReview: {},
		StatusRejected:    {},
		StatusClosed:      {},
	},
	StatusUnderReview: {
		StatusInvestigation:   {},
		StatusWaitingResponse: {},
		StatusResolved:        {},
		StatusRejected:        {},
		StatusClosed:          {},
	},
	StatusInvestigation: {
		StatusUnderReview:     {},
		StatusWaitingResponse: {},
		StatusResolved:        {},
		StatusRejected:        {},
		StatusClosed:          {},
	},
	StatusWaitingResponse: {
		StatusUnderReview:   {},
		StatusInvestigation: {},
		StatusResolved:      {},
		StatusRejected:      {},
		StatusClosed:        {},
	},
	StatusResolved: {StatusClosed: {}},
	StatusRejected: {StatusClosed: {}},
	StatusClosed:   {},
}

// Valid reports whether status is a known complaint status.
func Valid(status string) bool {
	_, ok := transitions[status]
	return ok
}

// CanTransition returns whether a complaint can move from the current status to the target status.
func CanTransition(from, to string) bool {
	if !Valid(to) {
		return false
	}
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Apply updates a complaint status using optimistic validation. Moving to
// resolved or closed stamps the matching timestamp.
func Apply(ctx context.Context, tx *sql.Tx, complaintID int64, fromStatus, toStatus string, at time.Time) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE complaints
		SET status = ?,
		    updated_at = ?,
		    resolved_at = CASE WHEN ? = 'resolved' THEN ? ELSE resolved_at END,
		    closed_at = CASE WHEN ? = 'closed' THEN ? ELSE closed_at END
		WHERE id = ? AND status = ?`,
		toStatus, at, toStatus, at, toStatus, at, complaintID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStaleStatus
	}
	return nil
}
