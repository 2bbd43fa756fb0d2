package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
	"pricegov/internal/pricing"
	"pricegov/internal/repositories"
	"pricegov/internal/services"
	"pricegov/internal/testdb"
	"pricegov/utils"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type memStorage struct {
	keys  []string
	types []string
}

func (m *memStorage) Save(_ context.Context, key, contentType string, _ []byte) (string, error) {
	m.keys = append(m.keys, key)
	m.types = append(m.types, contentType)
	return "https://files.test/" + key, nil
}

type nopLive struct{}

func (nopLive) BroadcastToStaff(models.LiveEvent)  {}
func (nopLive) SendToUser(int64, models.LiveEvent) {}

type env struct {
	admin    models.User
	farmer   models.User
	owner    models.User
	district models.District
	sku      models.SKU
	storage  *memStorage

	users      *UserHandler
	districts  *DistrictHandler
	pricing    *PricingHandler
	farmers    *FarmerHandler
	complaints *ComplaintHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	conn := testdb.New(t)
	now := func() time.Time { return testNow }

	userRepo := &repositories.UserRepository{DB: conn}
	districtRepo := &repositories.DistrictRepository{DB: conn}
	skuRepo := &repositories.SKURepository{DB: conn}
	retailerRepo := &repositories.RetailerRepository{DB: conn}
	referenceRepo := &repositories.ReferencePriceRepository{DB: conn}
	publishedRepo := &repositories.PublishedPriceRepository{DB: conn}

	tokens, err := utils.NewManager("handler-test-key")
	require.NoError(t, err)
	notify := &services.NotificationService{
		NotificationRepo: &repositories.NotificationRepository{DB: conn},
		UserRepo:         userRepo,
		Live:             nopLive{},
	}
	e := &env{storage: &memStorage{}}
	e.users = &UserHandler{Service: &services.UserService{UserRepo: userRepo, TokenManager: tokens,
		AccessTTL: time.Hour, RefreshTTL: time.Hour}}
	e.districts = &DistrictHandler{Service: &services.DistrictService{DistrictRepo: districtRepo}}
	e.pricing = &PricingHandler{Service: &services.PricingService{
		ReferenceRepo: referenceRepo,
		PublishedRepo: publishedRepo,
		AuditRepo:     &repositories.AuditRepository{DB: conn},
		AlertRepo:     &repositories.AlertRepository{DB: conn},
		RetailerRepo:  retailerRepo,
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		Live:          nopLive{},
		Policy:        pricing.DefaultPolicy(),
		Now:           now,
	}}
	e.farmers = &FarmerHandler{Service: &services.FarmerService{SKURepo: skuRepo, DistrictRepo: districtRepo,
		ReferenceRepo: referenceRepo, PublishedRepo: publishedRepo, Now: now}}
	e.complaints = &ComplaintHandler{Service: &services.ComplaintService{
		ComplaintRepo: &repositories.ComplaintRepository{DB: conn},
		UserRepo:      userRepo,
		RetailerRepo:  retailerRepo,
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		ReferenceRepo: referenceRepo,
		Notifier:      notify,
		Storage:       e.storage,
		MaxUpload:     1 << 10,
	}}

	newUser := func(email, role string) models.User {
		u, err := userRepo.CreateUser(ctx, models.User{Email: email, Password: "x", FirstName: "Test", Role: role, IsActive: true})
		require.NoError(t, err)
		return u
	}
	e.admin = newUser("admin@gov.test", models.RoleGovAdmin)
	e.farmer = newUser("farmer@test", models.RoleFarmer)
	e.owner = newUser("shop@test", models.RoleRetailer)

	e.district, err = districtRepo.Create(ctx, models.District{Name: "Nashik", Code: "NSK", IsActive: true})
	require.NoError(t, err)
	e.sku, err = skuRepo.Create(ctx, models.SKU{Code: "UREA50", Name: "Urea 46-0-0", Manufacturer: "IFFCO", PackSizeKg: 50, IsActive: true})
	require.NoError(t, err)
	_, err = retailerRepo.Create(ctx, models.Retailer{UserID: e.owner.ID, LicenseNo: "LIC-001", BusinessName: "Green Agro",
		DistrictID: e.district.ID, Address: "Main road", IsActive: true})
	require.NoError(t, err)
	return e
}

// call runs handler h as user u. id, when non-empty, becomes the :id
// path value.
func call(t *testing.T, h http.HandlerFunc, u *models.User, method, target, id string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if id != "" {
		req.SetPathValue("id", id)
	}
	if u != nil {
		req = req.WithContext(WithActor(req.Context(), models.Actor{UserID: u.ID, Role: u.Role}))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}
