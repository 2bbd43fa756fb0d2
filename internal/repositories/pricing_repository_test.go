package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
)

func TestApplicablePrefersDistrictScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &ReferencePriceRepository{DB: f.db}

	until := day(10)
	_, err := repo.Create(ctx, models.ReferencePrice{SKUID: f.sku.ID, Price: 100000, EffectiveFrom: day(1), IsActive: true})
	require.NoError(t, err)
	local, err := repo.Create(ctx, models.ReferencePrice{SKUID: f.sku.ID, DistrictID: &f.district.ID, Price: 95000,
		EffectiveFrom: day(2), EffectiveUntil: &until, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Nashik", local.Scope)

	got, err := repo.Applicable(ctx, f.sku.ID, f.district.ID, day(5))
	require.NoError(t, err)
	assert.Equal(t, local.ID, got.ID)
	assert.Equal(t, models.Money(95000), got.Price)

	// the district window is half-open, so its end falls back to global
	got, err = repo.Applicable(ctx, f.sku.ID, f.district.ID, day(10))
	require.NoError(t, err)
	assert.True(t, got.IsGlobal)
	assert.Equal(t, "Global", got.Scope)

	got, err = repo.Applicable(ctx, f.sku.ID, f.other.ID, day(5))
	require.NoError(t, err)
	assert.Nil(t, got.DistrictID)

	_, err = repo.Applicable(ctx, f.sku.ID, f.district.ID, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrNoRecord)
}

func TestActiveInScopeSkipsSoftDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &ReferencePriceRepository{DB: f.db}

	p, err := repo.Create(ctx, models.ReferencePrice{SKUID: f.sku.ID, Price: 100000, EffectiveFrom: day(1), IsActive: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.ReferencePrice{SKUID: f.sku.ID, DistrictID: &f.district.ID, Price: 90000,
		EffectiveFrom: day(1), IsActive: true})
	require.NoError(t, err)

	global, err := repo.ActiveInScope(ctx, f.sku.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, global, 1)

	require.NoError(t, repo.SoftDelete(ctx, p.ID))
	global, err = repo.ActiveInScope(ctx, f.sku.ID, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, global)

	latest, err := repo.LatestActive(ctx, f.sku.ID, f.district.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(90000), latest.Price)
}

func TestTopCompliantOrdersCheapestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := &UserRepository{DB: f.db}
	retailers := &RetailerRepository{DB: f.db}
	prices := &PublishedPriceRepository{DB: f.db}

	publish := func(retailerID int64, price models.Money, compliant bool) {
		t.Helper()
		_, err := prices.Create(ctx, models.PublishedPrice{RetailerID: retailerID, SKUID: f.sku.ID, Price: price,
			EffectiveFrom: day(1), Compliant: compliant, ViolationSeverity: models.SeverityNone, IsActive: true})
		require.NoError(t, err)
	}

	publish(f.retailer.ID, 102000, true)
	for i, name := range []string{"Kisan Mart", "Farm Hub", "Agro Point"} {
		u, err := users.CreateUser(ctx, models.User{Email: name + "@test", Password: "x", Role: models.RoleRetailer, IsActive: true})
		require.NoError(t, err)
		rt, err := retailers.Create(ctx, models.Retailer{UserID: u.ID, LicenseNo: "LIC-10" + string(rune('0'+i)),
			BusinessName: name, DistrictID: f.district.ID, Address: "x", IsActive: true})
		require.NoError(t, err)
		publish(rt.ID, models.Money(100000+int64(i)*500), i != 1)
	}

	rows, err := prices.TopCompliant(ctx, f.sku.ID, f.district.ID, day(3), 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Kisan Mart", rows[0].RetailerName)
	assert.Equal(t, "Agro Point", rows[1].RetailerName)
	assert.Equal(t, "Green Agro", rows[2].RetailerName)

	rows, err = prices.TopCompliant(ctx, f.sku.ID, f.other.ID, day(3), 3)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAlertResolveOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alerts := &AlertRepository{DB: f.db}

	markup := 12.5
	a, err := alerts.Create(ctx, models.PriceAlert{RetailerID: f.retailer.ID, AlertType: models.AlertMarkupViolation,
		Severity: models.AlertCritical, Title: "Severe price violation", Message: "m", MarkupPercentage: &markup})
	require.NoError(t, err)
	assert.Equal(t, "Green Agro", a.RetailerName)

	resolved, err := alerts.Resolve(ctx, a.ID, f.admin.ID, "called retailer", day(2))
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.admin.ID, *resolved.ResolvedBy)

	_, err = alerts.Resolve(ctx, a.ID, f.admin.ID, "again", day(3))
	assert.ErrorIs(t, err, models.ErrNoRecord)
}

func TestDistrictUsage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	districts := &DistrictRepository{DB: f.db}

	_, err := districts.Create(ctx, models.District{Name: "Sinnar", Code: "SIN", ParentID: &f.district.ID, IsActive: true})
	require.NoError(t, err)

	u, err := districts.Usage(ctx, f.district.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, u.Retailers)
	assert.Equal(t, 1, u.ChildDistricts)
	assert.Equal(t, 0, u.Complaints)
}

func TestDashboardCompliance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prices := &PublishedPriceRepository{DB: f.db}
	dash := &DashboardRepository{DB: f.db}

	for _, p := range []models.PublishedPrice{
		{Price: 100000, Compliant: true, ViolationSeverity: models.SeverityNone},
		{Price: 104000, Compliant: true, ViolationSeverity: models.SeverityModerate},
		{Price: 120000, Compliant: false, ViolationSeverity: models.SeveritySevere},
	} {
		p.RetailerID, p.SKUID, p.EffectiveFrom, p.IsActive = f.retailer.ID, f.sku.ID, day(1), true
		_, err := prices.Create(ctx, p)
		require.NoError(t, err)
	}

	c, err := dash.Compliance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c.TotalPrices)
	assert.Equal(t, 2, c.CompliantPrices)
	assert.Equal(t, 66.67, c.ComplianceRate)
	assert.Equal(t, map[string]int{"moderate": 1, "severe": 1}, c.ViolationBreakdown)

	top, err := dash.TopViolators(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Green Agro", top[0].RetailerName)
	assert.Equal(t, 1, top[0].ViolationCount)

	missing, err := dash.SKUsWithoutReferencePrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, missing)
}
