package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pricegov/internal/fsm"
	"pricegov/internal/models"
)

type ComplaintRepository struct {
	DB *sql.DB
}

const complaintSelect = `
	SELECT c.id, c.title, c.description, c.complaint_type, c.status, c.priority,
	       c.complainant_id, u.first_name, u.last_name, u.email,
	       c.reported_retailer_id, COALESCE(r.business_name, ''), c.sku_id, COALESCE(s.name, ''),
	       c.district_id, d.name, c.reported_price, c.reference_price, c.price_difference,
	       c.price_difference_percentage, c.incident_location, c.incident_date, c.witness_details,
	       c.contact_number, c.assigned_to, COALESCE(a.first_name, ''), COALESCE(a.last_name, ''),
	       c.investigation_notes, c.resolution_action, c.resolution_report, c.resolution_notes,
	       c.resolved_at, c.closed_at, c.created_at, c.updated_at
	FROM complaints c
	JOIN users u ON u.id = c.complainant_id
	JOIN districts d ON d.id = c.district_id
	LEFT JOIN retailers r ON r.id = c.reported_retailer_id
	LEFT JOIN skus s ON s.id = c.sku_id
	LEFT JOIN users a ON a.id = c.assigned_to`

func scanComplaint(row rowScanner) (models.Complaint, error) {
	var (
		c                       models.Complaint
		firstName, lastName     string
		assigneeFirst, assignee string
		retailer, sku, assigned sql.NullInt64
		reported, ref, diff     models.NullMoney
		diffPct                 sql.NullFloat64
		incident                sql.NullTime
		resolved, closed        sql.NullTime
		updated                 sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ComplaintType, &c.Status, &c.Priority,
		&c.ComplainantID, &firstName, &lastName, &c.ComplainantEmail,
		&retailer, &c.ReportedRetailerName, &sku, &c.SKUName,
		&c.DistrictID, &c.DistrictName, &reported, &ref, &diff,
		&diffPct, &c.IncidentLocation, &incident, &c.WitnessDetails,
		&c.ContactNumber, &assigned, &assigneeFirst, &assignee,
		&c.InvestigationNotes, &c.ResolutionAction, &c.ResolutionReport, &c.ResolutionNotes,
		&resolved, &closed, &c.CreatedAt, &updated)
	if err != nil {
		return models.Complaint{}, err
	}
	c.ComplainantName = displayName(firstName, lastName, c.ComplainantEmail)
	c.ReportedRetailerID = int64Ptr(retailer)
	c.SKUID = int64Ptr(sku)
	c.ReportedPrice = reported.Ptr()
	c.ReferencePrice = ref.Ptr()
	c.PriceDifference = diff.Ptr()
	c.PriceDifferencePercentage = floatPtr(diffPct)
	c.IncidentDate = timePtr(incident)
	c.AssignedToID = int64Ptr(assigned)
	c.AssignedToName = strings.TrimSpace(assigneeFirst + " " + assignee)
	c.ResolvedAt = timePtr(resolved)
	c.ClosedAt = timePtr(closed)
	c.UpdatedAt = timePtr(updated)
	return c, nil
}

func displayName(first, last, email string) string {
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	return email
}

// Create stores the complaint together with its first history row.
func (r *ComplaintRepository) Create(ctx context.Context, c models.Complaint, note string) (models.Complaint, error) {
	now := time.Now().UTC().Truncate(time.Second)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Complaint{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO complaints (title, description, complaint_type, status, priority, complainant_id,
			reported_retailer_id, sku_id, district_id, reported_price, reference_price, price_difference,
			price_difference_percentage, incident_location, incident_date, witness_details, contact_number,
			investigation_notes, resolution_action, resolution_report, resolution_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', '', '', ?)`,
		c.Title, c.Description, c.ComplaintType, fsm.StatusPending, c.Priority, c.ComplainantID,
		nullable(c.ReportedRetailerID), nullable(c.SKUID), c.DistrictID, nullable(c.ReportedPrice),
		nullable(c.ReferencePrice), nullable(c.PriceDifference), nullable(c.PriceDifferencePercentage),
		c.IncidentLocation, nullable(c.IncidentDate), c.WitnessDetails, c.ContactNumber, now)
	if err != nil {
		return models.Complaint{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Complaint{}, err
	}
	if err := insertHistory(ctx, tx, id, "", fsm.StatusPending, c.ComplainantID, note, now); err != nil {
		return models.Complaint{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Complaint{}, err
	}
	return r.GetByID(ctx, id)
}

func insertHistory(ctx context.Context, tx *sql.Tx, complaintID int64, from, to string, by int64, notes string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO complaint_status_history (complaint_id, old_status, new_status, changed_by, notes, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`, complaintID, from, to, by, notes, at)
	return err
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id int64) (models.Complaint, error) {
	c, err := scanComplaint(r.DB.QueryRowContext(ctx, complaintSelect+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Complaint{}, models.ErrNoRecord
	}
	return c, err
}

func (r *ComplaintRepository) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, int, error) {
	var w where
	if f.ComplainantID != nil {
		w.add("c.complainant_id = ?", *f.ComplainantID)
	}
	if f.AssignedToID != nil {
		w.add("c.assigned_to = ?", *f.AssignedToID)
	}
	if f.Status != "" {
		w.add("c.status = ?", f.Status)
	}
	if f.Priority != "" {
		w.add("c.priority = ?", f.Priority)
	}
	if f.ComplaintType != "" {
		w.add("c.complaint_type = ?", f.ComplaintType)
	}
	if f.DistrictID != nil {
		w.add("c.district_id = ?", *f.DistrictID)
	}
	if f.SKUID != nil {
		w.add("c.sku_id = ?", *f.SKUID)
	}
	w.search(f.Search, "c.title", "c.description")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM complaints c`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, limitArgs := pageClause(f.Page)
	rows, err := r.DB.QueryContext(ctx, complaintSelect+w.String()+` ORDER BY c.created_at DESC, c.id DESC`+limit,
		append(w.args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *ComplaintRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM complaints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoRecord
	}
	return nil
}

// Transition moves the complaint from one status to another and records it.
func (r *ComplaintRepository) Transition(ctx context.Context, id int64, from, to string, by int64, notes string) error {
	return r.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		if err := fsm.Apply(ctx, tx, id, from, to, now); err != nil {
			return err
		}
		return insertHistory(ctx, tx, id, from, to, by, notes, now)
	})
}

// Assign sets the assignee and moves the complaint to under_review.
func (r *ComplaintRepository) Assign(ctx context.Context, id int64, from string, assignee, by int64, notes string) error {
	return r.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		if _, err := tx.ExecContext(ctx, `UPDATE complaints SET assigned_to = ? WHERE id = ?`, assignee, id); err != nil {
			return err
		}
		if err := fsm.Apply(ctx, tx, id, from, fsm.StatusUnderReview, now); err != nil {
			return err
		}
		return insertHistory(ctx, tx, id, from, fsm.StatusUnderReview, by, notes, now)
	})
}

// Resolve stores the resolution fields and moves the complaint to resolved.
func (r *ComplaintRepository) Resolve(ctx context.Context, id int64, from string, req models.ResolveRequest, by int64, notes string) error {
	return r.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE complaints SET resolution_action = ?, resolution_report = ?, resolution_notes = ?
			WHERE id = ?`, req.ResolutionAction, req.ResolutionReport, req.ResolutionNotes, id)
		if err != nil {
			return err
		}
		if err := fsm.Apply(ctx, tx, id, from, fsm.StatusResolved, now); err != nil {
			return err
		}
		return insertHistory(ctx, tx, id, from, fsm.StatusResolved, by, notes, now)
	})
}

func (r *ComplaintRepository) inTx(ctx context.Context, fn func(tx *sql.Tx, now time.Time) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx, time.Now().UTC().Truncate(time.Second)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ComplaintRepository) AddEvidence(ctx context.Context, e models.ComplaintEvidence) (models.ComplaintEvidence, error) {
	e.UploadedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO complaint_evidence (complaint_id, file_type, file_url, file_name, file_size, description, uploaded_by, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ComplaintID, e.FileType, e.FileURL, e.FileName, e.FileSize, e.Description, e.UploadedByID, e.UploadedAt)
	if err != nil {
		return models.ComplaintEvidence{}, err
	}
	e.ID, err = res.LastInsertId()
	return e, err
}

func (r *ComplaintRepository) ListEvidence(ctx context.Context, complaintID int64) ([]models.ComplaintEvidence, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, complaint_id, file_type, file_url, file_name, file_size, description, uploaded_by, uploaded_at
		FROM complaint_evidence WHERE complaint_id = ? ORDER BY uploaded_at DESC, id DESC`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ComplaintEvidence{}
	for rows.Next() {
		var e models.ComplaintEvidence
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.FileType, &e.FileURL, &e.FileName, &e.FileSize,
			&e.Description, &e.UploadedByID, &e.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListHistory returns status changes oldest first.
func (r *ComplaintRepository) ListHistory(ctx context.Context, complaintID int64) ([]models.ComplaintStatusHistory, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT h.id, h.complaint_id, h.old_status, h.new_status, h.changed_by, u.first_name, u.last_name, u.email,
		       h.notes, h.changed_at
		FROM complaint_status_history h
		JOIN users u ON u.id = h.changed_by
		WHERE h.complaint_id = ?
		ORDER BY h.changed_at ASC, h.id ASC`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ComplaintStatusHistory{}
	for rows.Next() {
		var (
			h                  models.ComplaintStatusHistory
			first, last, email string
		)
		if err := rows.Scan(&h.ID, &h.ComplaintID, &h.OldStatus, &h.NewStatus, &h.ChangedByID, &first, &last, &email,
			&h.Notes, &h.ChangedAt); err != nil {
			return nil, err
		}
		h.ChangedByName = displayName(first, last, email)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Statistics counts complaints, optionally for a single complainant.
func (r *ComplaintRepository) Statistics(ctx context.Context, complainantID *int64) (models.ComplaintStatistics, error) {
	var w where
	if complainantID != nil {
		w.add("complainant_id = ?", *complainantID)
	}
	var s models.ComplaintStatistics
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'under_review' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN complaint_type = 'price_violation' THEN 1 ELSE 0 END), 0)
		FROM complaints`+w.String(), w.args...).Scan(
		&s.TotalComplaints, &s.PendingComplaints, &s.UnderReview, &s.ResolvedComplaints, &s.PriceViolations)
	return s, err
}
