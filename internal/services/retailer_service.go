package services

import (
	"context"
	"errors"
	"strings"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
)

type RetailerService struct {
	RetailerRepo *repositories.RetailerRepository
	DistrictRepo *repositories.DistrictRepository
}

func (s *RetailerService) List(ctx context.Context, f models.RetailerFilter) (models.ListResult[models.Retailer], error) {
	list, total, err := s.RetailerRepo.List(ctx, f)
	if err != nil {
		return models.ListResult[models.Retailer]{}, err
	}
	return models.NewListResult(list, total), nil
}

func (s *RetailerService) Get(ctx context.Context, id int64) (models.Retailer, error) {
	return s.RetailerRepo.GetByID(ctx, id)
}

// Profile returns the retailer owned by the user.
func (s *RetailerService) Profile(ctx context.Context, userID int64) (models.Retailer, error) {
	return s.RetailerRepo.GetByUserID(ctx, userID)
}

func (s *RetailerService) CreateProfile(ctx context.Context, userID int64, in models.RetailerInput) (models.Retailer, error) {
	_, err := s.RetailerRepo.GetByUserID(ctx, userID)
	if err == nil {
		return models.Retailer{}, models.ErrProfileExists
	}
	if !errors.Is(err, models.ErrProfileMissing) {
		return models.Retailer{}, err
	}

	rt := models.Retailer{UserID: userID, IsActive: true}
	applyRetailerInput(&rt, in)
	if err := s.validate(ctx, rt); err != nil {
		return models.Retailer{}, err
	}
	return s.RetailerRepo.Create(ctx, rt)
}

func (s *RetailerService) UpdateProfile(ctx context.Context, userID int64, in models.RetailerInput) (models.Retailer, error) {
	rt, err := s.RetailerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return models.Retailer{}, err
	}
	return s.update(ctx, rt, in)
}

func (s *RetailerService) Update(ctx context.Context, id int64, in models.RetailerInput) (models.Retailer, error) {
	rt, err := s.RetailerRepo.GetByID(ctx, id)
	if err != nil {
		return models.Retailer{}, err
	}
	return s.update(ctx, rt, in)
}

func (s *RetailerService) update(ctx context.Context, rt models.Retailer, in models.RetailerInput) (models.Retailer, error) {
	applyRetailerInput(&rt, in)
	if err := s.validate(ctx, rt); err != nil {
		return models.Retailer{}, err
	}
	return s.RetailerRepo.Update(ctx, rt)
}

func (s *RetailerService) Verify(ctx context.Context, id int64) (models.Retailer, error) {
	if err := s.RetailerRepo.SetVerified(ctx, id, true); err != nil {
		return models.Retailer{}, err
	}
	return s.RetailerRepo.GetByID(ctx, id)
}

func (s *RetailerService) Delete(ctx context.Context, id int64) error {
	return s.RetailerRepo.SoftDelete(ctx, id)
}

func applyRetailerInput(rt *models.Retailer, in models.RetailerInput) {
	if in.LicenseNo != nil {
		rt.LicenseNo = strings.TrimSpace(*in.LicenseNo)
	}
	if in.BusinessName != nil {
		rt.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if in.DistrictID != nil {
		rt.DistrictID = *in.DistrictID
	}
	if in.Address != nil {
		rt.Address = strings.TrimSpace(*in.Address)
	}
	if in.ContactPerson != nil {
		rt.ContactPerson = strings.TrimSpace(*in.ContactPerson)
	}
	if in.IsActive != nil {
		rt.IsActive = *in.IsActive
	}
}

func (s *RetailerService) validate(ctx context.Context, rt models.Retailer) error {
	if err := firstErr(
		minLen("License number", rt.LicenseNo, 5),
		maxLen("License number", rt.LicenseNo, 50),
		minLen("Business name", rt.BusinessName, 3),
		maxLen("Business name", rt.BusinessName, 200),
		maxLen("Contact person", rt.ContactPerson, 100),
	); err != nil {
		return err
	}
	if rt.Address == "" {
		return models.Invalid("Address is required.")
	}
	if rt.DistrictID == 0 {
		return models.Invalid("District is required.")
	}
	d, err := s.DistrictRepo.GetByID(ctx, rt.DistrictID)
	if IsNoRecord(err) || (err == nil && !d.IsActive) {
		return models.Invalid("District does not exist.")
	}
	if err != nil {
		return err
	}
	exists, err := s.RetailerRepo.LicenseExists(ctx, rt.LicenseNo, rt.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateLicense
	}
	return nil
}
