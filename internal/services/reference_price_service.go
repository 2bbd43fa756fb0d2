package services

import (
	"context"

	"go.uber.org/zap"

	"pricegov/internal/models"
	"pricegov/internal/pricing"
)

func (s *PricingService) ListReference(ctx context.Context, f models.ReferencePriceFilter) (models.ListResult[models.ReferencePrice], error) {
	list, total, err := s.ReferenceRepo.List(ctx, f)
	if err != nil {
		return models.ListResult[models.ReferencePrice]{}, err
	}
	return models.NewListResult(list, total), nil
}

func (s *PricingService) GetReference(ctx context.Context, id int64) (models.ReferencePrice, error) {
	return s.ReferenceRepo.GetByID(ctx, id)
}

func (s *PricingService) CreateReference(ctx context.Context, actor models.Actor, in models.ReferencePriceInput) (models.ReferencePrice, error) {
	p := models.ReferencePrice{EffectiveFrom: s.now(), IsActive: true, CreatedBy: &actor.UserID}
	if in.SKUID == nil {
		return models.ReferencePrice{}, models.Invalid("SKU is required.")
	}
	if in.Price == nil {
		return models.ReferencePrice{}, models.Invalid("Price is required.")
	}
	applyReferenceInput(&p, in)
	if err := s.validateReference(ctx, p); err != nil {
		return models.ReferencePrice{}, err
	}
	created, err := s.ReferenceRepo.Create(ctx, p)
	if err != nil {
		return models.ReferencePrice{}, err
	}
	s.auditReference(ctx, models.AuditPriceCreated, actor, created, nil, "Reference price created")
	s.invalidateReference(ctx, created)
	zap.L().Info("reference price created",
		zap.Int64("reference_price_id", created.ID),
		zap.Int64("sku_id", created.SKUID),
		zap.String("scope", created.Scope))
	return created, nil
}

func (s *PricingService) UpdateReference(ctx context.Context, actor models.Actor, id int64, in models.ReferencePriceInput) (models.ReferencePrice, error) {
	p, err := s.ReferenceRepo.GetByID(ctx, id)
	if err != nil {
		return models.ReferencePrice{}, err
	}
	before := p
	applyReferenceInput(&p, in)
	if err := s.validateReference(ctx, p); err != nil {
		return models.ReferencePrice{}, err
	}
	updated, err := s.ReferenceRepo.Update(ctx, p)
	if err != nil {
		return models.ReferencePrice{}, err
	}
	s.auditReference(ctx, models.AuditPriceUpdated, actor, updated, &before.Price, "Reference price updated")
	// a scope change leaves stale entries under the old district too
	s.invalidateReference(ctx, before)
	s.invalidateReference(ctx, updated)
	return updated, nil
}

func (s *PricingService) DeleteReference(ctx context.Context, actor models.Actor, id int64) error {
	p, err := s.ReferenceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ReferenceRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditReference(ctx, models.AuditPriceDeleted, actor, p, &p.Price, "Reference price deleted")
	s.invalidateReference(ctx, p)
	return nil
}

func applyReferenceInput(p *models.ReferencePrice, in models.ReferencePriceInput) {
	if in.SKUID != nil {
		p.SKUID = *in.SKUID
	}
	if in.DistrictID != nil {
		if *in.DistrictID == 0 {
			p.DistrictID = nil
		} else {
			id := *in.DistrictID
			p.DistrictID = &id
		}
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.EffectiveFrom != nil {
		p.EffectiveFrom = normTime(*in.EffectiveFrom)
	}
	if in.ClearUntil {
		p.EffectiveUntil = nil
	} else if in.EffectiveUntil != nil {
		p.EffectiveUntil = normTimePtr(in.EffectiveUntil)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func (s *PricingService) validateReference(ctx context.Context, p models.ReferencePrice) error {
	if p.Price <= 0 {
		return models.Invalid("Price must be greater than 0.")
	}
	if _, err := s.activeSKU(ctx, p.SKUID); err != nil {
		return err
	}
	if p.DistrictID != nil {
		d, err := s.DistrictRepo.GetByID(ctx, *p.DistrictID)
		if IsNoRecord(err) || (err == nil && !d.IsActive) {
			return models.Invalid("Invalid district ID.")
		}
		if err != nil {
			return err
		}
	}
	period := pricing.Period{From: p.EffectiveFrom, Until: p.EffectiveUntil}
	if period.Until != nil && !period.Until.After(period.From) {
		return models.Invalid("Effective until must be after effective from.")
	}
	if !p.IsActive {
		return nil
	}
	existing, err := s.ReferenceRepo.ActiveInScope(ctx, p.SKUID, p.DistrictID, p.ID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if pricing.Overlaps(period, pricing.Period{From: e.EffectiveFrom, Until: e.EffectiveUntil}) {
			return models.Invalid(msgRefOverlap)
		}
	}
	return nil
}

func (s *PricingService) auditReference(ctx context.Context, event string, actor models.Actor, p models.ReferencePrice, old *models.Money, reason string) {
	a := models.PriceAudit{
		EventType:      event,
		SKUID:          p.SKUID,
		DistrictID:     p.DistrictID,
		OldPrice:       old,
		ReferencePrice: &p.Price,
		Reason:         reason,
		UserID:         &actor.UserID,
	}
	if event != models.AuditPriceDeleted {
		a.NewPrice = &p.Price
	}
	s.audit(ctx, a)
}

func (s *PricingService) invalidateReference(ctx context.Context, p models.ReferencePrice) {
	if p.DistrictID == nil {
		s.Cache.InvalidateSKU(ctx, p.SKUID)
		return
	}
	s.Cache.Invalidate(ctx, p.SKUID, *p.DistrictID)
}
