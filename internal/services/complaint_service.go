package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricegov/internal/fsm"
	"pricegov/internal/models"
	"pricegov/internal/pricing"
	"pricegov/internal/repositories"
)

type ComplaintService struct {
	ComplaintRepo *repositories.ComplaintRepository
	UserRepo      *repositories.UserRepository
	RetailerRepo  *repositories.RetailerRepository
	SKURepo       *repositories.SKURepository
	DistrictRepo  *repositories.DistrictRepository
	ReferenceRepo *repositories.ReferencePriceRepository
	Notifier      *NotificationService
	Storage       FileStorage
	MaxUpload     int64
}

// File stores a general complaint.
func (s *ComplaintService) File(ctx context.Context, actor models.Actor, in models.ComplaintInput) (models.Complaint, error) {
	if in.ComplaintType == "" {
		in.ComplaintType = models.ComplaintOther
	}
	c, err := s.build(ctx, actor, in)
	if err != nil {
		return models.Complaint{}, err
	}
	created, err := s.ComplaintRepo.Create(ctx, c, "Complaint created")
	if err != nil {
		return models.Complaint{}, err
	}
	zap.L().Info("complaint filed",
		zap.Int64("complaint_id", created.ID),
		zap.String("complaint_type", created.ComplaintType))
	return created, nil
}

// FilePriceViolation stores an overcharging report, captures the reference
// price the report is measured against and alerts government staff.
func (s *ComplaintService) FilePriceViolation(ctx context.Context, actor models.Actor, in models.ComplaintInput) (models.Complaint, error) {
	in.ComplaintType = models.ComplaintPriceViolation
	if in.SKUID == nil {
		return models.Complaint{}, models.Invalid("SKU is required for price violation complaints.")
	}
	if in.ReportedPrice == nil || *in.ReportedPrice <= 0 {
		return models.Complaint{}, models.Invalid("Reported price must be greater than 0.")
	}
	c, err := s.build(ctx, actor, in)
	if err != nil {
		return models.Complaint{}, err
	}

	ref, err := s.ReferenceRepo.LatestActive(ctx, *c.SKUID, c.DistrictID)
	switch {
	case err == nil:
		diff, pct := pricing.DifferencePercentage(*c.ReportedPrice, ref.Price)
		c.ReferencePrice = &ref.Price
		c.PriceDifference = &diff
		c.PriceDifferencePercentage = &pct
	case !IsNoRecord(err):
		return models.Complaint{}, err
	}

	created, err := s.ComplaintRepo.Create(ctx, c, "Complaint created")
	if err != nil {
		return models.Complaint{}, err
	}

	staff, err := s.UserRepo.ListByRoles(ctx, models.RoleGovAdmin, models.RoleDistrictOfficer)
	if err != nil {
		zap.L().Error("list complaint recipients", zap.Error(err))
	}
	ids := make([]int64, 0, len(staff))
	for _, u := range staff {
		ids = append(ids, u.ID)
	}
	s.Notifier.NotifyMany(ctx, created.ID, ids, models.NotifyStatusChange,
		"New Price Violation Complaint",
		"New price violation complaint filed by "+created.ComplainantName)
	return created, nil
}

func (s *ComplaintService) build(ctx context.Context, actor models.Actor, in models.ComplaintInput) (models.Complaint, error) {
	c := models.Complaint{
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		ComplaintType:      in.ComplaintType,
		Priority:           in.Priority,
		ComplainantID:      actor.UserID,
		ReportedRetailerID: in.ReportedRetailerID,
		SKUID:              in.SKUID,
		DistrictID:         in.DistrictID,
		ReportedPrice:      in.ReportedPrice,
		IncidentLocation:   strings.TrimSpace(in.IncidentLocation),
		IncidentDate:       normTimePtr(in.IncidentDate),
		WitnessDetails:     in.WitnessDetails,
		ContactNumber:      strings.TrimSpace(in.ContactNumber),
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if err := firstErr(
		minLen("Title", c.Title, 5),
		maxLen("Title", c.Title, 200),
		minLen("Description", c.Description, 10),
		maxLen("Incident location", c.IncidentLocation, 200),
	); err != nil {
		return models.Complaint{}, err
	}
	if !models.ValidComplaintType(c.ComplaintType) {
		return models.Complaint{}, models.Invalid("Invalid complaint type %q.", c.ComplaintType)
	}
	if !models.ValidPriority(c.Priority) {
		return models.Complaint{}, models.Invalid("Invalid priority %q.", c.Priority)
	}
	if c.ContactNumber != "" && !validPhone(c.ContactNumber) {
		return models.Complaint{}, models.Invalid(phoneHint)
	}
	if c.DistrictID == 0 {
		return models.Complaint{}, models.Invalid("District is required.")
	}
	d, err := s.DistrictRepo.GetByID(ctx, c.DistrictID)
	if IsNoRecord(err) || (err == nil && !d.IsActive) {
		return models.Complaint{}, models.Invalid("Invalid district ID.")
	}
	if err != nil {
		return models.Complaint{}, err
	}
	if c.SKUID != nil {
		sku, err := s.SKURepo.GetByID(ctx, *c.SKUID)
		if IsNoRecord(err) || (err == nil && !sku.IsActive) {
			return models.Complaint{}, models.Invalid("Invalid SKU ID.")
		}
		if err != nil {
			return models.Complaint{}, err
		}
	}
	if c.ReportedRetailerID != nil {
		if _, err := s.RetailerRepo.GetByID(ctx, *c.ReportedRetailerID); IsNoRecord(err) {
			return models.Complaint{}, models.Invalid("Invalid retailer ID.")
		} else if err != nil {
			return models.Complaint{}, err
		}
	}
	return c, nil
}

// List scopes non-staff callers to their own complaints.
func (s *ComplaintService) List(ctx context.Context, actor models.Actor, f models.ComplaintFilter) (models.ListResult[models.Complaint], error) {
	if !actor.IsGovStaff() {
		f.ComplainantID = &actor.UserID
		f.AssignedToID = nil
	}
	list, total, err := s.ComplaintRepo.List(ctx, f)
	if err != nil {
		return models.ListResult[models.Complaint]{}, err
	}
	return models.NewListResult(list, total), nil
}

// Get returns the complaint with evidence, history and notifications.
func (s *ComplaintService) Get(ctx context.Context, actor models.Actor, id int64) (models.Complaint, error) {
	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Complaint{}, err
	}
	if c.Evidence, err = s.ComplaintRepo.ListEvidence(ctx, id); err != nil {
		return models.Complaint{}, err
	}
	if c.StatusHistory, err = s.ComplaintRepo.ListHistory(ctx, id); err != nil {
		return models.Complaint{}, err
	}
	if c.Notifications, err = s.Notifier.NotificationRepo.ListForComplaint(ctx, id); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

func (s *ComplaintService) visible(ctx context.Context, actor models.Actor, id int64) (models.Complaint, error) {
	c, err := s.ComplaintRepo.GetByID(ctx, id)
	if IsNoRecord(err) || (err == nil && !actor.IsGovStaff() && c.ComplainantID != actor.UserID) {
		return models.Complaint{}, &models.NotFoundError{Message: "Complaint not found"}
	}
	return c, err
}

// Delete is only open to the complainant while the complaint is pending.
func (s *ComplaintService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if c.Status != fsm.StatusPending || c.ComplainantID != actor.UserID {
		return models.ErrForbidden
	}
	return s.ComplaintRepo.Delete(ctx, id)
}

func (s *ComplaintService) UpdateStatus(ctx context.Context, actor models.Actor, id int64, req models.StatusUpdateRequest) (models.Complaint, error) {
	if !actor.CanManage() {
		return models.Complaint{}, models.ErrForbidden
	}
	if !fsm.Valid(req.Status) {
		return models.Complaint{}, models.Invalid("Invalid status %q.", req.Status)
	}
	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Complaint{}, err
	}
	if err := s.ComplaintRepo.Transition(ctx, id, c.Status, req.Status, actor.UserID, req.Notes); err != nil {
		return models.Complaint{}, err
	}
	s.notify(ctx, id, c.ComplainantID, models.NotifyStatusChange, "Complaint Status Updated",
		fmt.Sprintf("Your complaint status has been changed from %s to %s", c.Status, req.Status))
	return s.ComplaintRepo.GetByID(ctx, id)
}

func (s *ComplaintService) Assign(ctx context.Context, actor models.Actor, id int64, req models.AssignRequest) (models.Complaint, error) {
	if !actor.CanManage() {
		return models.Complaint{}, models.ErrForbidden
	}
	if req.AssignedTo == 0 {
		return models.Complaint{}, models.Invalid("assigned_to field is required")
	}
	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Complaint{}, err
	}
	assignee, err := s.UserRepo.GetUserByID(ctx, req.AssignedTo)
	if errors.Is(err, models.ErrUserNotFound) {
		return models.Complaint{}, &models.NotFoundError{Message: "Assigned user not found"}
	}
	if err != nil {
		return models.Complaint{}, err
	}
	if !models.IsGovStaff(assignee.Role) {
		return models.Complaint{}, models.Invalid("Can only assign to government staff")
	}

	note := "Complaint assigned to " + assignee.DisplayName()
	if err := s.ComplaintRepo.Assign(ctx, id, c.Status, assignee.ID, actor.UserID, note); err != nil {
		return models.Complaint{}, err
	}
	s.notify(ctx, id, assignee.ID, models.NotifyAssignment, "Complaint Assigned",
		"You have been assigned to handle complaint: "+c.Title)
	return s.ComplaintRepo.GetByID(ctx, id)
}

func (s *ComplaintService) Resolve(ctx context.Context, actor models.Actor, id int64, req models.ResolveRequest) (models.Complaint, error) {
	if !actor.CanManage() {
		return models.Complaint{}, models.ErrForbidden
	}
	if strings.TrimSpace(req.ResolutionAction) == "" {
		return models.Complaint{}, models.Invalid("Resolution action is required.")
	}
	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Complaint{}, err
	}
	if err := s.ComplaintRepo.Resolve(ctx, id, c.Status, req, actor.UserID, req.ResolutionNotes); err != nil {
		return models.Complaint{}, err
	}
	s.notify(ctx, id, c.ComplainantID, models.NotifyResolution, "Complaint Resolved",
		"Your complaint has been resolved. Please check the resolution report.")
	return s.ComplaintRepo.GetByID(ctx, id)
}

func (s *ComplaintService) notify(ctx context.Context, complaintID, recipientID int64, kind, title, message string) {
	if _, err := s.Notifier.Notify(ctx, complaintID, recipientID, kind, title, message); err != nil {
		zap.L().Error("create notification", zap.Error(err),
			zap.Int64("complaint_id", complaintID), zap.Int64("recipient_id", recipientID))
	}
}

// AddEvidence stores an uploaded file for the complainant, the assignee or
// government staff.
func (s *ComplaintService) AddEvidence(ctx context.Context, actor models.Actor, id int64, up EvidenceUpload) (models.ComplaintEvidence, error) {
	c, err := s.ComplaintRepo.GetByID(ctx, id)
	if IsNoRecord(err) {
		return models.ComplaintEvidence{}, &models.NotFoundError{Message: "Complaint not found"}
	}
	if err != nil {
		return models.ComplaintEvidence{}, err
	}
	assignee := c.AssignedToID != nil && *c.AssignedToID == actor.UserID
	if c.ComplainantID != actor.UserID && !assignee && !actor.IsGovStaff() {
		return models.ComplaintEvidence{}, models.ErrForbidden
	}
	if up.FileType == "" {
		up.FileType = models.EvidenceOther
	}
	if !models.ValidEvidenceType(up.FileType) {
		return models.ComplaintEvidence{}, models.Invalid("Invalid file type %q.", up.FileType)
	}
	if len(up.Data) == 0 {
		return models.ComplaintEvidence{}, models.Invalid("File is required.")
	}
	if s.MaxUpload > 0 && int64(len(up.Data)) > s.MaxUpload {
		return models.ComplaintEvidence{}, models.Invalid("File exceeds the %d byte limit.", s.MaxUpload)
	}

	url, err := s.Storage.Save(ctx, evidenceKey(time.Now(), up.FileName), up.ContentType, up.Data)
	if err != nil {
		return models.ComplaintEvidence{}, fmt.Errorf("store evidence: %w", err)
	}
	return s.ComplaintRepo.AddEvidence(ctx, models.ComplaintEvidence{
		ComplaintID:  id,
		FileType:     up.FileType,
		FileURL:      url,
		FileName:     up.FileName,
		FileSize:     int64(len(up.Data)),
		Description:  up.Description,
		UploadedByID: actor.UserID,
	})
}

// Statistics counts every complaint for staff and the caller's own otherwise.
func (s *ComplaintService) Statistics(ctx context.Context, actor models.Actor) (models.ComplaintStatistics, error) {
	if actor.IsGovStaff() {
		return s.ComplaintRepo.Statistics(ctx, nil)
	}
	return s.ComplaintRepo.Statistics(ctx, &actor.UserID)
}
