package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
)

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Message
}

func TestPublishEvaluatesAndRaisesAlert(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	ref := w.globalReference(t, 100000)

	p, err := w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 108000})
	require.NoError(t, err)

	assert.Equal(t, w.retailer.ID, p.RetailerID)
	assert.Equal(t, w.district.ID, p.DistrictID)
	assert.Equal(t, testNow, p.EffectiveFrom.UTC())
	require.NotNil(t, p.MarkupPercentage)
	assert.InDelta(t, 8.0, *p.MarkupPercentage, 0.001)
	assert.Equal(t, models.SeverityMajor, p.ViolationSeverity)
	assert.False(t, p.Compliant)
	assert.True(t, p.AdminApprovalRequired)
	assert.False(t, p.IsAutoApproved)
	assert.Equal(t, "Markup: 8.00% (Reference: ₹1000.00)", p.ValidationReason)

	alerts, total, err := w.alertRepo.List(ctx, models.AlertFilter{RetailerID: &w.retailer.ID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, models.AlertHigh, alerts[0].Severity)
	assert.Equal(t, "Major Price Violation - Urea 46-0-0", alerts[0].Title)
	require.NotNil(t, alerts[0].ReferencePriceID)
	assert.Equal(t, ref.ID, *alerts[0].ReferencePriceID)

	require.Len(t, w.live.staff, 1)
	assert.Equal(t, models.EventPriceAlert, w.live.staff[0].Type)

	audits, _, err := w.auditRepo.List(ctx, models.AuditFilter{RetailerID: &w.retailer.ID})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, models.AuditPriceCreated, audits[0].EventType)
}

func TestPublishWithinBandRaisesNoAlert(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)

	p, err := w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 100500})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityNone, p.ViolationSeverity)
	assert.True(t, p.Compliant)
	assert.True(t, p.IsAutoApproved)

	_, total, err := w.alertRepo.List(ctx, models.AlertFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, w.live.staff)
}

func TestPublishRejections(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.pricing.Publish(ctx, w.actor(w.farmer), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 100000})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 100000})
	assert.Equal(t, msgNoReference, validationMessage(t, err))

	w.globalReference(t, 100000)
	_, err = w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 0})
	assert.Equal(t, "Price must be greater than 0.", validationMessage(t, err))

	_, err = w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 100000})
	require.NoError(t, err)
	_, err = w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 99000})
	assert.Equal(t, msgPubOverlap, validationMessage(t, err))
}

func TestUpdatePublishedReevaluates(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)

	p, err := w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 100000})
	require.NoError(t, err)

	price := models.Money(112000)
	updated, err := w.pricing.UpdatePublished(ctx, w.actor(w.owner), p.ID, models.PublishedPriceUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, models.SeveritySevere, updated.ViolationSeverity)
	assert.True(t, updated.AdminApprovalRequired)

	// editing again at the same severity raises no second alert
	price = 113000
	_, err = w.pricing.UpdatePublished(ctx, w.actor(w.owner), p.ID, models.PublishedPriceUpdate{Price: &price})
	require.NoError(t, err)
	_, total, err := w.alertRepo.List(ctx, models.AlertFilter{RetailerID: &w.retailer.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, w.live.staff, 1)

	price = 107000
	updated, err = w.pricing.UpdatePublished(ctx, w.actor(w.owner), p.ID, models.PublishedPriceUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMajor, updated.ViolationSeverity)
	_, total, err = w.alertRepo.List(ctx, models.AlertFilter{RetailerID: &w.retailer.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// farmers cannot edit published prices
	_, err = w.pricing.UpdatePublished(ctx, w.actor(w.farmer), p.ID, models.PublishedPriceUpdate{Price: &price})
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, w.pricing.DeletePublished(ctx, w.actor(w.admin), p.ID))
	_, err = w.pricing.GetPublished(ctx, w.actor(w.admin), p.ID)
	assert.ErrorIs(t, err, models.ErrNoRecord)

	audits, _, err := w.auditRepo.List(ctx, models.AuditFilter{RetailerID: &w.retailer.ID})
	require.NoError(t, err)
	assert.Len(t, audits, 5)
}

func TestValidateAgainstCeiling(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)

	resp, err := w.pricing.Validate(ctx, w.actor(w.owner), models.ValidatePriceRequest{SKUID: w.sku.ID, Price: 110000})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.AllowedMax)
	assert.Equal(t, models.Money(110000), *resp.AllowedMax)
	assert.Equal(t, "Price is compliant. Markup: 10.00%", resp.Reason)

	district := w.other.ID
	resp, err = w.pricing.Validate(ctx, w.actor(w.admin), models.ValidatePriceRequest{SKUID: w.sku.ID, DistrictID: &district, Price: 110001})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.True(t, strings.HasPrefix(resp.Reason, "Price exceeds maximum allowed markup of 10.0%."), resp.Reason)

	audits, _, err := w.auditRepo.List(ctx, models.AuditFilter{EventType: models.AuditValidationFailure})
	require.NoError(t, err)
	assert.Len(t, audits, 1)

	_, err = w.pricing.Validate(ctx, w.actor(w.admin), models.ValidatePriceRequest{SKUID: w.sku.ID, Price: 100000})
	assert.Equal(t, "District ID is required.", validationMessage(t, err))
}

func TestValidateWithoutReference(t *testing.T) {
	w := newWorld(t)
	resp, err := w.pricing.Validate(context.Background(), w.actor(w.owner), models.ValidatePriceRequest{SKUID: w.sku.ID, Price: 100000})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, msgNoRefValidate, resp.Reason)
	assert.Nil(t, resp.ReferencePrice)
}

func TestReferencePeriodRules(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)
	admin := w.actor(w.admin)

	price := models.Money(105000)
	from := day(3)
	_, err := w.pricing.CreateReference(ctx, admin, models.ReferencePriceInput{SKUID: &w.sku.ID, Price: &price, EffectiveFrom: &from})
	assert.Equal(t, msgRefOverlap, validationMessage(t, err))

	// a district scope does not collide with the global one
	local, err := w.pricing.CreateReference(ctx, admin, models.ReferencePriceInput{SKUID: &w.sku.ID, DistrictID: &w.district.ID,
		Price: &price, EffectiveFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, "Nashik", local.Scope)

	until := day(2)
	_, err = w.pricing.UpdateReference(ctx, admin, local.ID, models.ReferencePriceInput{EffectiveUntil: &until})
	assert.Equal(t, "Effective until must be after effective from.", validationMessage(t, err))

	require.NoError(t, w.pricing.DeleteReference(ctx, admin, local.ID))
	got, err := w.pricing.GetReference(ctx, local.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestResolveAlertOnce(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)

	_, err := w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 95000})
	require.NoError(t, err)
	alerts, err := w.pricing.ListAlerts(ctx, models.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, alerts.Results, 1)
	assert.Equal(t, models.AlertCritical, alerts.Results[0].Severity)

	a, err := w.pricing.ResolveAlert(ctx, w.actor(w.officer), alerts.Results[0].ID, "called the shop")
	require.NoError(t, err)
	assert.True(t, a.IsResolved)
	assert.Equal(t, "called the shop", a.ResolutionNotes)

	_, err = w.pricing.ResolveAlert(ctx, w.actor(w.officer), a.ID, "again")
	assert.Equal(t, "Alert is already resolved.", validationMessage(t, err))

	_, err = w.pricing.ResolveAlert(ctx, w.actor(w.officer), 9999, "")
	assert.ErrorIs(t, err, models.ErrNoRecord)
}

func TestListPublishedScopesRetailers(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.globalReference(t, 100000)
	_, err := w.pricing.Publish(ctx, w.actor(w.owner), models.PublishPriceRequest{SKUID: w.sku.ID, Price: 100000})
	require.NoError(t, err)

	other, err := w.users.UserRepo.CreateUser(ctx, models.User{Email: "other-shop@test", Password: "x", Role: models.RoleRetailer, IsActive: true})
	require.NoError(t, err)

	res, err := w.pricing.ListPublished(ctx, w.actor(other), models.PublishedPriceFilter{})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Results)

	res, err = w.pricing.ListPublished(ctx, w.actor(w.admin), models.PublishedPriceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}
