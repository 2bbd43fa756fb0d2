package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pricegov/internal/models"
	"pricegov/internal/pricing"
	"pricegov/internal/repositories"
)

// Broadcaster pushes live events to connected websocket clients.
type Broadcaster interface {
	BroadcastToStaff(event models.LiveEvent)
	SendToUser(userID int64, event models.LiveEvent)
}

type PricingService struct {
	ReferenceRepo *repositories.ReferencePriceRepository
	PublishedRepo *repositories.PublishedPriceRepository
	AuditRepo     *repositories.AuditRepository
	AlertRepo     *repositories.AlertRepository
	RetailerRepo  *repositories.RetailerRepository
	SKURepo       *repositories.SKURepository
	DistrictRepo  *repositories.DistrictRepository
	Cache         *PriceCache
	Live          Broadcaster
	Policy        pricing.Policy
	Now           func() time.Time
}

const (
	msgNoReference   = "No reference price set for this product. Please contact admin to set reference prices first."
	msgNoRefValidate = "No reference price found for this SKU and district"
	msgRefOverlap    = "Reference price period overlaps with existing active price."
	msgPubOverlap    = "Price period overlaps with an existing active price for this product."
)

func (s *PricingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Second)
	}
	return time.Now().UTC().Truncate(time.Second)
}

func normTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func normTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := normTime(*t)
	return &v
}

func (s *PricingService) activeSKU(ctx context.Context, id int64) (models.SKU, error) {
	sku, err := s.SKURepo.GetByID(ctx, id)
	if IsNoRecord(err) || (err == nil && !sku.IsActive) {
		return models.SKU{}, models.Invalid("Invalid SKU ID.")
	}
	return sku, err
}

// retailerOf returns the caller's retailer profile, or ErrForbidden when the
// caller cannot act as a retailer.
func (s *PricingService) retailerOf(ctx context.Context, actor models.Actor) (models.Retailer, error) {
	if actor.Role != models.RoleRetailer {
		return models.Retailer{}, models.ErrForbidden
	}
	rt, err := s.RetailerRepo.GetByUserID(ctx, actor.UserID)
	if errors.Is(err, models.ErrProfileMissing) {
		return models.Retailer{}, models.ErrForbidden
	}
	return rt, err
}

func (s *PricingService) ListPublished(ctx context.Context, actor models.Actor, f models.PublishedPriceFilter) (models.ListResult[models.PublishedPrice], error) {
	if actor.Role == models.RoleRetailer {
		rt, err := s.RetailerRepo.GetByUserID(ctx, actor.UserID)
		if errors.Is(err, models.ErrProfileMissing) {
			return models.NewListResult[models.PublishedPrice](nil, 0), nil
		}
		if err != nil {
			return models.ListResult[models.PublishedPrice]{}, err
		}
		f.RetailerID = &rt.ID
	}
	list, total, err := s.PublishedRepo.List(ctx, f)
	if err != nil {
		return models.ListResult[models.PublishedPrice]{}, err
	}
	return models.NewListResult(list, total), nil
}

// GetPublished enforces that retailers only see their own prices.
func (s *PricingService) GetPublished(ctx context.Context, actor models.Actor, id int64) (models.PublishedPrice, error) {
	p, err := s.PublishedRepo.GetByID(ctx, id)
	if err != nil {
		return models.PublishedPrice{}, err
	}
	if !p.IsActive {
		return models.PublishedPrice{}, models.ErrNoRecord
	}
	if actor.Role == models.RoleRetailer {
		rt, err := s.RetailerRepo.GetByUserID(ctx, actor.UserID)
		if err != nil || rt.ID != p.RetailerID {
			return models.PublishedPrice{}, models.ErrNoRecord
		}
	}
	return p, nil
}

func (s *PricingService) editablePublished(ctx context.Context, actor models.Actor, id int64) (models.PublishedPrice, error) {
	if actor.Role != models.RoleRetailer && !actor.CanManage() {
		return models.PublishedPrice{}, models.ErrForbidden
	}
	return s.GetPublished(ctx, actor, id)
}

// Publish evaluates and stores a retailer's price.
func (s *PricingService) Publish(ctx context.Context, actor models.Actor, req models.PublishPriceRequest) (models.PublishedPrice, error) {
	rt, err := s.retailerOf(ctx, actor)
	if err != nil {
		return models.PublishedPrice{}, err
	}
	if req.SKUID == 0 {
		return models.PublishedPrice{}, models.Invalid("SKU ID is required.")
	}
	sku, err := s.activeSKU(ctx, req.SKUID)
	if err != nil {
		return models.PublishedPrice{}, err
	}
	if req.Price <= 0 {
		return models.PublishedPrice{}, models.Invalid("Price must be greater than 0.")
	}

	period := pricing.Period{From: s.now(), Until: normTimePtr(req.EffectiveUntil)}
	if req.EffectiveFrom != nil {
		period.From = normTime(*req.EffectiveFrom)
	}
	if err := s.checkPublishedPeriod(ctx, rt.ID, sku.ID, 0, period); err != nil {
		return models.PublishedPrice{}, err
	}

	ref, err := s.ReferenceRepo.Applicable(ctx, sku.ID, rt.DistrictID, period.From)
	if IsNoRecord(err) {
		return models.PublishedPrice{}, models.Invalid(msgNoReference)
	}
	if err != nil {
		return models.PublishedPrice{}, err
	}

	eval := s.Policy.Evaluate(req.Price, ref.Price)
	p, err := s.PublishedRepo.Create(ctx, withEvaluation(models.PublishedPrice{
		RetailerID:     rt.ID,
		SKUID:          sku.ID,
		Price:          req.Price,
		EffectiveFrom:  period.From,
		EffectiveUntil: period.Until,
		IsActive:       true,
	}, eval))
	if err != nil {
		return models.PublishedPrice{}, err
	}

	s.audit(ctx, models.PriceAudit{
		EventType: models.AuditPriceCreated, SKUID: sku.ID, DistrictID: &rt.DistrictID, RetailerID: &rt.ID,
		NewPrice: &p.Price, ReferencePrice: &eval.Reference, MarkupPercentage: &eval.Markup, Compliant: &eval.Compliant,
		Reason: "Price published. " + eval.PublishReason(), UserID: &actor.UserID,
	})
	s.raiseAlert(ctx, p, ref, eval, rt.BusinessName, sku.Name)
	s.Cache.Invalidate(ctx, sku.ID, rt.DistrictID)

	zap.L().Info("price published",
		zap.Int64("published_price_id", p.ID),
		zap.Int64("retailer_id", rt.ID),
		zap.Float64("markup", eval.Markup),
		zap.String("severity", eval.Severity))
	return p, nil
}

func withEvaluation(p models.PublishedPrice, e pricing.Evaluation) models.PublishedPrice {
	ref, markup := e.Reference, e.Markup
	p.ReferencePrice = &ref
	p.MarkupPercentage = &markup
	p.Compliant = e.Compliant
	p.ViolationSeverity = e.Severity
	p.ValidationReason = e.PublishReason()
	p.AdminApprovalRequired = e.AdminApprovalRequired
	p.IsAutoApproved = !e.AdminApprovalRequired
	return p
}

func (s *PricingService) checkPublishedPeriod(ctx context.Context, retailerID, skuID, excludeID int64, period pricing.Period) error {
	if period.Until != nil && !period.Until.After(period.From) {
		return models.Invalid("Effective until must be after effective from.")
	}
	existing, err := s.PublishedRepo.ActiveForRetailer(ctx, retailerID, skuID, excludeID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if pricing.Overlaps(period, pricing.Period{From: e.EffectiveFrom, Until: e.EffectiveUntil}) {
			return models.Invalid(msgPubOverlap)
		}
	}
	return nil
}

func (s *PricingService) UpdatePublished(ctx context.Context, actor models.Actor, id int64, upd models.PublishedPriceUpdate) (models.PublishedPrice, error) {
	p, err := s.editablePublished(ctx, actor, id)
	if err != nil {
		return models.PublishedPrice{}, err
	}
	oldPrice := p.Price
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return models.PublishedPrice{}, models.Invalid("Price must be greater than 0.")
		}
		p.Price = *upd.Price
	}
	if upd.EffectiveFrom != nil {
		p.EffectiveFrom = normTime(*upd.EffectiveFrom)
	}
	if upd.ClearUntil {
		p.EffectiveUntil = nil
	} else if upd.EffectiveUntil != nil {
		p.EffectiveUntil = normTimePtr(upd.EffectiveUntil)
	}
	period := pricing.Period{From: p.EffectiveFrom, Until: p.EffectiveUntil}
	if err := s.checkPublishedPeriod(ctx, p.RetailerID, p.SKUID, p.ID, period); err != nil {
		return models.PublishedPrice{}, err
	}

	ref, err := s.ReferenceRepo.Applicable(ctx, p.SKUID, p.DistrictID, p.EffectiveFrom)
	if IsNoRecord(err) {
		return models.PublishedPrice{}, models.Invalid(msgNoReference)
	}
	if err != nil {
		return models.PublishedPrice{}, err
	}
	eval := s.Policy.Evaluate(p.Price, ref.Price)
	updated, err := s.PublishedRepo.Update(ctx, withEvaluation(p, eval))
	if err != nil {
		return models.PublishedPrice{}, err
	}

	s.audit(ctx, models.PriceAudit{
		EventType: models.AuditPriceUpdated, SKUID: p.SKUID, DistrictID: &p.DistrictID, RetailerID: &p.RetailerID,
		OldPrice: &oldPrice, NewPrice: &updated.Price, ReferencePrice: &eval.Reference,
		MarkupPercentage: &eval.Markup, Compliant: &eval.Compliant,
		Reason: "Price updated. " + eval.PublishReason(), UserID: &actor.UserID,
	})
	// an unchanged severity was already alerted on
	if eval.Severity != p.ViolationSeverity {
		s.raiseAlert(ctx, updated, ref, eval, p.RetailerName, p.SKUName)
	}
	s.Cache.Invalidate(ctx, p.SKUID, p.DistrictID)
	return updated, nil
}

func (s *PricingService) DeletePublished(ctx context.Context, actor models.Actor, id int64) error {
	p, err := s.editablePublished(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.PublishedRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, models.PriceAudit{
		EventType: models.AuditPriceDeleted, SKUID: p.SKUID, DistrictID: &p.DistrictID, RetailerID: &p.RetailerID,
		OldPrice: &p.Price, ReferencePrice: p.ReferencePrice, MarkupPercentage: p.MarkupPercentage,
		Compliant: &p.Compliant, Reason: "Price deleted", UserID: &actor.UserID,
	})
	s.Cache.Invalidate(ctx, p.SKUID, p.DistrictID)
	return nil
}

// raiseAlert records and broadcasts an alert for any deviation above none.
func (s *PricingService) raiseAlert(ctx context.Context, p models.PublishedPrice, ref models.ReferencePrice, e pricing.Evaluation, retailerName, skuName string) {
	severity, ok := pricing.AlertSeverity(e.Severity)
	if !ok {
		return
	}
	title, message := pricing.AlertText(e, retailerName, skuName)
	markup, refAmount, price := e.Markup, e.Reference, e.Price
	alert, err := s.AlertRepo.Create(ctx, models.PriceAlert{
		RetailerID:           p.RetailerID,
		PublishedPriceID:     &p.ID,
		ReferencePriceID:     &ref.ID,
		AlertType:            models.AlertMarkupViolation,
		Severity:             severity,
		Title:                title,
		Message:              message,
		MarkupPercentage:     &markup,
		ReferencePriceAmount: &refAmount,
		RetailerPriceAmount:  &price,
		CreatedAt:            s.now(),
	})
	if err != nil {
		zap.L().Error("create price alert", zap.Error(err), zap.Int64("published_price_id", p.ID))
		return
	}
	if s.Live != nil {
		s.Live.BroadcastToStaff(models.LiveEvent{Type: models.EventPriceAlert, Payload: alert})
	}
}

// audit failures never fail the request that produced them.
func (s *PricingService) audit(ctx context.Context, a models.PriceAudit) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	if _, err := s.AuditRepo.Create(ctx, a); err != nil {
		zap.L().Error("write price audit", zap.Error(err), zap.String("event_type", a.EventType))
	}
}

// Validate checks a price against the ceiling markup without storing it.
func (s *PricingService) Validate(ctx context.Context, actor models.Actor, req models.ValidatePriceRequest) (models.ValidatePriceResponse, error) {
	if req.SKUID == 0 {
		return models.ValidatePriceResponse{}, models.Invalid("SKU ID is required.")
	}
	sku, err := s.activeSKU(ctx, req.SKUID)
	if err != nil {
		return models.ValidatePriceResponse{}, err
	}
	if req.Price <= 0 {
		return models.ValidatePriceResponse{}, models.Invalid("Price must be greater than 0.")
	}

	var retailerID *int64
	districtID := req.DistrictID
	if actor.Role == models.RoleRetailer {
		if rt, err := s.RetailerRepo.GetByUserID(ctx, actor.UserID); err == nil {
			retailerID = &rt.ID
			if districtID == nil {
				districtID = &rt.DistrictID
			}
		}
	}
	if districtID == nil {
		return models.ValidatePriceResponse{}, models.Invalid("District ID is required.")
	}
	if d, err := s.DistrictRepo.GetByID(ctx, *districtID); IsNoRecord(err) || (err == nil && !d.IsActive) {
		return models.ValidatePriceResponse{}, models.Invalid("Invalid district ID.")
	} else if err != nil {
		return models.ValidatePriceResponse{}, err
	}

	ref, err := s.ReferenceRepo.Applicable(ctx, sku.ID, *districtID, s.now())
	if IsNoRecord(err) {
		return models.ValidatePriceResponse{Valid: false, Reason: msgNoRefValidate}, nil
	}
	if err != nil {
		return models.ValidatePriceResponse{}, err
	}

	eval := s.Policy.Evaluate(req.Price, ref.Price)
	resp := models.ValidatePriceResponse{
		Valid:            eval.WithinCeiling,
		AllowedMax:       &eval.AllowedMax,
		Reason:           s.Policy.ValidationReason(eval),
		ReferencePrice:   &eval.Reference,
		MarkupPercentage: &eval.Markup,
	}
	event := models.AuditValidationSuccess
	if !resp.Valid {
		event = models.AuditValidationFailure
	}
	s.audit(ctx, models.PriceAudit{
		EventType: event, SKUID: sku.ID, DistrictID: districtID, RetailerID: retailerID,
		NewPrice: &eval.Price, ReferencePrice: &eval.Reference, MarkupPercentage: &eval.Markup,
		Compliant: &resp.Valid, Reason: resp.Reason, UserID: &actor.UserID,
	})
	return resp, nil
}

func (s *PricingService) ListAudits(ctx context.Context, f models.AuditFilter) (models.ListResult[models.PriceAudit], error) {
	list, total, err := s.AuditRepo.List(ctx, f)
	if err != nil {
		return models.ListResult[models.PriceAudit]{}, err
	}
	return models.NewListResult(list, total), nil
}

func (s *PricingService) ListAlerts(ctx context.Context, f models.AlertFilter) (models.ListResult[models.PriceAlert], error) {
	list, total, err := s.AlertRepo.List(ctx, f)
	if err != nil {
		return models.ListResult[models.PriceAlert]{}, err
	}
	return models.NewListResult(list, total), nil
}

func (s *PricingService) ResolveAlert(ctx context.Context, actor models.Actor, id int64, notes string) (models.PriceAlert, error) {
	if _, err := s.AlertRepo.GetByID(ctx, id); err != nil {
		return models.PriceAlert{}, err
	}
	a, err := s.AlertRepo.Resolve(ctx, id, actor.UserID, notes, s.now())
	if IsNoRecord(err) {
		return models.PriceAlert{}, models.Invalid("Alert is already resolved.")
	}
	return a, err
}
