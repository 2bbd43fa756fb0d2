package services

import (
	"context"
	"strings"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
)

type SKUService struct {
	SKURepo *repositories.SKURepository
}

func (s *SKUService) List(ctx context.Context, f models.SKUFilter) ([]models.SKU, error) {
	return s.SKURepo.List(ctx, f)
}

func (s *SKUService) Get(ctx context.Context, id int64) (models.SKU, error) {
	return s.SKURepo.GetByID(ctx, id)
}

// GetActive returns the SKU only while it is active.
func (s *SKUService) GetActive(ctx context.Context, id int64) (models.SKU, error) {
	sku, err := s.SKURepo.GetByID(ctx, id)
	if err != nil || !sku.IsActive {
		if err == nil || IsNoRecord(err) {
			return models.SKU{}, &models.NotFoundError{Message: "SKU not found"}
		}
		return models.SKU{}, err
	}
	return sku, nil
}

func (s *SKUService) Create(ctx context.Context, in models.SKUInput) (models.SKU, error) {
	sku := models.SKU{IsActive: true}
	applySKUInput(&sku, in)
	if err := s.validate(ctx, sku); err != nil {
		return models.SKU{}, err
	}
	return s.SKURepo.Create(ctx, sku)
}

func (s *SKUService) Update(ctx context.Context, id int64, in models.SKUInput) (models.SKU, error) {
	sku, err := s.SKURepo.GetByID(ctx, id)
	if err != nil {
		return models.SKU{}, err
	}
	applySKUInput(&sku, in)
	if err := s.validate(ctx, sku); err != nil {
		return models.SKU{}, err
	}
	return s.SKURepo.Update(ctx, sku)
}

func (s *SKUService) Delete(ctx context.Context, id int64) error {
	return s.SKURepo.SoftDelete(ctx, id)
}

func applySKUInput(sku *models.SKU, in models.SKUInput) {
	if in.Code != nil {
		sku.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Name != nil {
		sku.Name = strings.TrimSpace(*in.Name)
	}
	if in.Manufacturer != nil {
		sku.Manufacturer = strings.TrimSpace(*in.Manufacturer)
	}
	if in.PackSizeKg != nil {
		sku.PackSizeKg = *in.PackSizeKg
	}
	if in.Description != nil {
		sku.Description = *in.Description
	}
	if in.IsActive != nil {
		sku.IsActive = *in.IsActive
	}
}

func (s *SKUService) validate(ctx context.Context, sku models.SKU) error {
	if err := firstErr(
		minLen("SKU code", sku.Code, 3),
		maxLen("SKU code", sku.Code, 20),
		minLen("Product name", sku.Name, 3),
		maxLen("Product name", sku.Name, 200),
		minLen("Manufacturer", sku.Manufacturer, 2),
		maxLen("Manufacturer", sku.Manufacturer, 100),
	); err != nil {
		return err
	}
	if sku.PackSizeKg <= 0 {
		return models.Invalid("Pack size must be greater than 0.")
	}
	exists, err := s.SKURepo.CodeExists(ctx, sku.Code, sku.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateCode
	}
	return nil
}
