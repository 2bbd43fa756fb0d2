package main

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"pricegov/internal/models"
)

type seedSKU struct {
	code, name, manufacturer string
	packKg                   float64
}

var seedSKUs = []seedSKU{
	{"UREA45", "Urea 46-0-0", "IFFCO", 45},
	{"DAP50", "DAP 18-46-0", "IFFCO", 50},
	{"MOP50", "Potash 0-0-60", "IPL", 50},
}

// seed loads a sample district, the common fertilizer SKUs and a gov_admin
// account. Records that already exist are left alone.
func (app *application) seed(ctx context.Context) error {
	name, code := "Pune", "PUN"
	_, err := app.districtService.Create(ctx, models.DistrictInput{Name: &name, Code: &code})
	if err := skipDuplicate(err); err != nil {
		return err
	}

	for _, s := range seedSKUs {
		_, err := app.skuService.Create(ctx, models.SKUInput{
			Code: &s.code, Name: &s.name, Manufacturer: &s.manufacturer, PackSizeKg: &s.packKg,
		})
		if err := skipDuplicate(err); err != nil {
			return err
		}
	}

	email, password := os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		app.logger.Warn("seed: SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set, skipping admin")
		return nil
	}
	u, err := app.userService.CreateAccount(ctx, email, password, models.RoleGovAdmin)
	if err := skipDuplicate(err); err != nil {
		return err
	}
	if u.ID != 0 {
		app.logger.Info("seed: admin created", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	}
	return nil
}

func skipDuplicate(err error) error {
	if errors.Is(err, models.ErrDuplicateCode) || errors.Is(err, models.ErrDuplicateEmail) {
		return nil
	}
	return err
}
