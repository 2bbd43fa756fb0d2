package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
)

// openShop registers another retailer in the district and publishes a price.
func (w *world) openShop(t *testing.T, n string, price models.Money) {
	t.Helper()
	ctx := context.Background()
	u, err := w.users.UserRepo.CreateUser(ctx, models.User{Email: "shop" + n + "@test", Password: "x", Role: models.RoleRetailer, IsActive: true})
	require.NoError(t, err)
	_, err = w.retailers.CreateProfile(ctx, u.ID, models.RetailerInput{LicenseNo: strPtr("LIC-10" + n),
		BusinessName: strPtr("Shop " + n), DistrictID: &w.district.ID, Address: strPtr("Market yard")})
	require.NoError(t, err)
	_, err = w.pricing.Publish(ctx, w.actor(u), models.PublishPriceRequest{SKUID: w.sku.ID, Price: price})
	require.NoError(t, err)
}

func TestFarmerPrices(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.farmers.Prices(ctx, w.sku.ID, 0)
	assert.Equal(t, "Both sku and district parameters are required", validationMessage(t, err))
	_, err = w.farmers.Prices(ctx, 9999, w.district.ID)
	assert.EqualError(t, err, "SKU not found")
	_, err = w.farmers.Prices(ctx, w.sku.ID, 9999)
	assert.EqualError(t, err, "District not found")

	view, err := w.farmers.Prices(ctx, w.sku.ID, w.district.ID)
	require.NoError(t, err)
	assert.Nil(t, view.ReferencePrice)
	assert.NotNil(t, view.TopRetailerPrices)
	assert.Empty(t, view.TopRetailerPrices)

	w.globalReference(t, 100000)
	w.openShop(t, "1", 103000)
	w.openShop(t, "2", 101000)
	w.openShop(t, "3", 104000)
	w.openShop(t, "4", 102000)
	w.openShop(t, "5", 109000) // major violation, never shown

	view, err = w.farmers.Prices(ctx, w.sku.ID, w.district.ID)
	require.NoError(t, err)
	require.NotNil(t, view.ReferencePrice)
	assert.Equal(t, models.Money(100000), *view.ReferencePrice)
	assert.Equal(t, "UREA50", view.SKU.Code)
	require.Len(t, view.TopRetailerPrices, 3)
	assert.Equal(t, "Shop 2", view.TopRetailerPrices[0].RetailerName)
	assert.Equal(t, models.Money(101000), view.TopRetailerPrices[0].Price)
	assert.Equal(t, "Shop 4", view.TopRetailerPrices[1].RetailerName)
	assert.Equal(t, "Shop 1", view.TopRetailerPrices[2].RetailerName)

	other, err := w.farmers.Prices(ctx, w.sku.ID, w.other.ID)
	require.NoError(t, err)
	assert.Empty(t, other.TopRetailerPrices)
}

func TestDashboard(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)
	w.openShop(t, "1", 102000)
	w.openShop(t, "2", 115000)

	d, err := w.dashboard.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Compliance.TotalPrices)
	assert.Equal(t, 1, d.Compliance.CompliantPrices)
	assert.InDelta(t, 50.0, d.Compliance.ComplianceRate, 0.001)
	assert.Equal(t, 1, d.Compliance.ViolationBreakdown[models.SeveritySevere])

	assert.Equal(t, 2, d.Alerts.TotalRecent)
	assert.Equal(t, 2, d.Alerts.Unresolved)
	assert.Equal(t, 1, d.Alerts.BySeverity[models.AlertCritical])
	assert.Equal(t, 1, d.Alerts.BySeverity[models.AlertLow])

	require.Len(t, d.TopViolators, 1)
	assert.Equal(t, "Shop 2", d.TopViolators[0].RetailerName)
	assert.Len(t, d.RecentActivity.RecentChanges, 2)
	assert.Zero(t, d.SystemHealth.ProductsWithoutRefPrices)
}
