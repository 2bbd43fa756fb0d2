package services

import (
	"context"
	"time"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
)

const farmerTopPrices = 3

type FarmerService struct {
	SKURepo       *repositories.SKURepository
	DistrictRepo  *repositories.DistrictRepository
	ReferenceRepo *repositories.ReferencePriceRepository
	PublishedRepo *repositories.PublishedPriceRepository
	Cache         *PriceCache
	Now           func() time.Time
}

// Prices answers what a farmer should pay for a SKU in a district: the
// reference price in force and the cheapest compliant retailer offers.
func (s *FarmerService) Prices(ctx context.Context, skuID, districtID int64) (models.FarmerPriceView, error) {
	if skuID == 0 || districtID == 0 {
		return models.FarmerPriceView{}, models.Invalid("Both sku and district parameters are required")
	}
	if view, ok := s.Cache.Get(ctx, skuID, districtID); ok {
		return view, nil
	}

	sku, err := s.SKURepo.GetByID(ctx, skuID)
	if IsNoRecord(err) || (err == nil && !sku.IsActive) {
		return models.FarmerPriceView{}, &models.NotFoundError{Message: "SKU not found"}
	}
	if err != nil {
		return models.FarmerPriceView{}, err
	}
	d, err := s.DistrictRepo.GetByID(ctx, districtID)
	if IsNoRecord(err) || (err == nil && !d.IsActive) {
		return models.FarmerPriceView{}, &models.NotFoundError{Message: "District not found"}
	}
	if err != nil {
		return models.FarmerPriceView{}, err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	now = now.UTC().Truncate(time.Second)

	view := models.FarmerPriceView{SKU: sku}
	ref, err := s.ReferenceRepo.Applicable(ctx, skuID, districtID, now)
	switch {
	case err == nil:
		view.ReferencePrice = &ref.Price
	case !IsNoRecord(err):
		return models.FarmerPriceView{}, err
	}
	view.TopRetailerPrices, err = s.PublishedRepo.TopCompliant(ctx, skuID, districtID, now, farmerTopPrices)
	if err != nil {
		return models.FarmerPriceView{}, err
	}

	s.Cache.Set(ctx, skuID, districtID, view)
	return view, nil
}
