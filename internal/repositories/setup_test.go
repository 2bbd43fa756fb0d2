package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
	"pricegov/internal/testdb"
)

type fixture struct {
	db       *sql.DB
	admin    models.User
	farmer   models.User
	district models.District
	other    models.District
	sku      models.SKU
	retailer models.Retailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn := testdb.New(t)
	users := &UserRepository{DB: conn}
	districts := &DistrictRepository{DB: conn}
	skus := &SKURepository{DB: conn}
	retailers := &RetailerRepository{DB: conn}

	f := &fixture{db: conn}
	var err error
	f.admin, err = users.CreateUser(ctx, models.User{Email: "admin@gov.test", Password: "x", FirstName: "Asha",
		LastName: "Rao", Role: models.RoleGovAdmin, IsActive: true})
	require.NoError(t, err)
	f.farmer, err = users.CreateUser(ctx, models.User{Email: "farmer@test", Password: "x", Role: models.RoleFarmer, IsActive: true})
	require.NoError(t, err)
	owner, err := users.CreateUser(ctx, models.User{Email: "shop@test", Password: "x", Role: models.RoleRetailer, IsActive: true})
	require.NoError(t, err)

	f.district, err = districts.Create(ctx, models.District{Name: "Nashik", Code: "NSK", IsActive: true})
	require.NoError(t, err)
	f.other, err = districts.Create(ctx, models.District{Name: "Pune", Code: "PUN", IsActive: true})
	require.NoError(t, err)
	f.sku, err = skus.Create(ctx, models.SKU{Code: "UREA50", Name: "Urea 46-0-0", Manufacturer: "IFFCO", PackSizeKg: 50, IsActive: true})
	require.NoError(t, err)
	f.retailer, err = retailers.Create(ctx, models.Retailer{UserID: owner.ID, LicenseNo: "LIC-001", BusinessName: "Green Agro",
		DistrictID: f.district.ID, Address: "Main road", IsActive: true})
	require.NoError(t, err)
	return f
}

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}
