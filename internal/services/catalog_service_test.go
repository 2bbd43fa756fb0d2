package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
)

func strPtr(s string) *string { return &s }

func TestDistrictHierarchy(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	state, err := w.districts.Create(ctx, models.DistrictInput{Name: strPtr("Maharashtra"), Code: strPtr("mh")})
	require.NoError(t, err)
	assert.Equal(t, "MH", state.Code)

	_, err = w.districts.Update(ctx, w.district.ID, models.DistrictInput{ParentID: &state.ID})
	require.NoError(t, err)
	tehsil, err := w.districts.Create(ctx, models.DistrictInput{Name: strPtr("Sinnar"), Code: strPtr("SIN"), ParentID: &w.district.ID})
	require.NoError(t, err)
	assert.Equal(t, "Maharashtra > Nashik > Sinnar", tehsil.FullPath)
	assert.Equal(t, 2, tehsil.Level)

	_, err = w.districts.Update(ctx, state.ID, models.DistrictInput{ParentID: &tehsil.ID})
	assert.Equal(t, "A district cannot be moved under one of its descendants.", validationMessage(t, err))
	_, err = w.districts.Update(ctx, state.ID, models.DistrictInput{ParentID: &state.ID})
	assert.Equal(t, "A district cannot be its own parent.", validationMessage(t, err))
	_, err = w.districts.Create(ctx, models.DistrictInput{Name: strPtr("Dup"), Code: strPtr("nsk")})
	assert.ErrorIs(t, err, models.ErrDuplicateCode)

	tree, err := w.districts.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Maharashtra", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Sinnar", tree[0].Children[0].Children[0].Name)
	assert.Equal(t, "Pune", tree[1].Name)
	assert.NotNil(t, tree[1].Children)

	check, err := w.districts.DeletionCheck(ctx, w.district.ID)
	require.NoError(t, err)
	assert.False(t, check.CanDelete)
	assert.Equal(t, "Cannot delete district: 1 retailers are assigned to it", check.Reason)
	assert.Equal(t, 1, check.AffectedObjects.ChildDistricts)

	require.NoError(t, w.districts.Delete(ctx, tehsil.ID))
	_, err = w.districts.Children(ctx, tehsil.ID)
	assert.EqualError(t, err, "District not found")
	kids, err := w.districts.Children(ctx, w.district.ID)
	require.NoError(t, err)
	assert.Empty(t, kids)
}

func TestSKUValidation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	pack := 45.0
	sku, err := w.skus.Create(ctx, models.SKUInput{Code: strPtr("dap45"), Name: strPtr("DAP 18-46-0"),
		Manufacturer: strPtr("IFFCO"), PackSizeKg: &pack})
	require.NoError(t, err)
	assert.Equal(t, "DAP45", sku.Code)
	assert.Equal(t, "DAP 18-46-0 - IFFCO (45kg)", sku.DisplayName)

	_, err = w.skus.Create(ctx, models.SKUInput{Code: strPtr("DAP45"), Name: strPtr("DAP again"),
		Manufacturer: strPtr("IFFCO"), PackSizeKg: &pack})
	assert.ErrorIs(t, err, models.ErrDuplicateCode)

	zero := 0.0
	_, err = w.skus.Update(ctx, sku.ID, models.SKUInput{PackSizeKg: &zero})
	assert.Equal(t, "Pack size must be greater than 0.", validationMessage(t, err))

	require.NoError(t, w.skus.Delete(ctx, sku.ID))
	_, err = w.skus.GetActive(ctx, sku.ID)
	assert.EqualError(t, err, "SKU not found")
}

func TestRetailerProfile(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.retailers.CreateProfile(ctx, w.owner.ID, models.RetailerInput{})
	assert.ErrorIs(t, err, models.ErrProfileExists)

	shop, err := w.users.UserRepo.CreateUser(ctx, models.User{Email: "second@test", Password: "x", Role: models.RoleRetailer, IsActive: true})
	require.NoError(t, err)
	_, err = w.retailers.Profile(ctx, shop.ID)
	assert.ErrorIs(t, err, models.ErrProfileMissing)

	in := models.RetailerInput{LicenseNo: strPtr("LIC-001"), BusinessName: strPtr("Kisan Kendra"),
		DistrictID: &w.other.ID, Address: strPtr("Station road")}
	_, err = w.retailers.CreateProfile(ctx, shop.ID, in)
	assert.ErrorIs(t, err, models.ErrDuplicateLicense)

	in.LicenseNo = strPtr("LIC-002")
	rt, err := w.retailers.CreateProfile(ctx, shop.ID, in)
	require.NoError(t, err)
	assert.False(t, rt.IsVerified)
	assert.Equal(t, "Pune", rt.DistrictName)

	rt, err = w.retailers.Verify(ctx, rt.ID)
	require.NoError(t, err)
	assert.True(t, rt.IsVerified)

	verified := true
	list, err := w.retailers.List(ctx, models.RetailerFilter{IsVerified: &verified})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}
