package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
	"pricegov/internal/pricing"
	"pricegov/internal/repositories"
	"pricegov/internal/testdb"
	"pricegov/utils"
)

type recordingLive struct {
	mu     sync.Mutex
	staff  []models.LiveEvent
	direct map[int64][]models.LiveEvent
}

func (l *recordingLive) BroadcastToStaff(e models.LiveEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.staff = append(l.staff, e)
}

func (l *recordingLive) SendToUser(id int64, e models.LiveEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.direct == nil {
		l.direct = map[int64][]models.LiveEvent{}
	}
	l.direct[id] = append(l.direct[id], e)
}

type recordingPush struct {
	tokens []string
}

func (p *recordingPush) Send(_ context.Context, token, _, _ string, _ map[string]string) error {
	p.tokens = append(p.tokens, token)
	return nil
}

type memStorage struct {
	keys []string
}

func (m *memStorage) Save(_ context.Context, key, _ string, _ []byte) (string, error) {
	m.keys = append(m.keys, key)
	return "https://files.test/" + key, nil
}

// world wires every service against one in-memory database.
type world struct {
	admin    models.User
	officer  models.User
	farmer   models.User
	owner    models.User
	district models.District
	other    models.District
	sku      models.SKU
	retailer models.Retailer

	live    *recordingLive
	push    *recordingPush
	storage *memStorage

	users      *UserService
	districts  *DistrictService
	skus       *SKUService
	retailers  *RetailerService
	pricing    *PricingService
	farmers    *FarmerService
	dashboard  *DashboardService
	complaints *ComplaintService
	notify     *NotificationService

	alertRepo *repositories.AlertRepository
	auditRepo *repositories.AuditRepository
}

var testNow = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	conn := testdb.New(t)

	userRepo := &repositories.UserRepository{DB: conn}
	districtRepo := &repositories.DistrictRepository{DB: conn}
	skuRepo := &repositories.SKURepository{DB: conn}
	retailerRepo := &repositories.RetailerRepository{DB: conn}
	referenceRepo := &repositories.ReferencePriceRepository{DB: conn}
	publishedRepo := &repositories.PublishedPriceRepository{DB: conn}
	w := &world{
		live:      &recordingLive{},
		push:      &recordingPush{},
		storage:   &memStorage{},
		alertRepo: &repositories.AlertRepository{DB: conn},
		auditRepo: &repositories.AuditRepository{DB: conn},
	}

	tokens, err := utils.NewManager("test-signing-key")
	require.NoError(t, err)
	w.users = &UserService{UserRepo: userRepo, TokenManager: tokens, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}
	w.districts = &DistrictService{DistrictRepo: districtRepo}
	w.skus = &SKUService{SKURepo: skuRepo}
	w.retailers = &RetailerService{RetailerRepo: retailerRepo, DistrictRepo: districtRepo}
	w.pricing = &PricingService{
		ReferenceRepo: referenceRepo,
		PublishedRepo: publishedRepo,
		AuditRepo:     w.auditRepo,
		AlertRepo:     w.alertRepo,
		RetailerRepo:  retailerRepo,
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		Live:          w.live,
		Policy:        pricing.DefaultPolicy(),
		Now:           fixedNow,
	}
	w.farmers = &FarmerService{SKURepo: skuRepo, DistrictRepo: districtRepo, ReferenceRepo: referenceRepo,
		PublishedRepo: publishedRepo, Now: fixedNow}
	w.dashboard = &DashboardService{DashboardRepo: &repositories.DashboardRepository{DB: conn}, Now: fixedNow}
	w.notify = &NotificationService{
		NotificationRepo: &repositories.NotificationRepository{DB: conn},
		UserRepo:         userRepo,
		Live:             w.live,
		Push:             w.push,
	}
	w.complaints = &ComplaintService{
		ComplaintRepo: &repositories.ComplaintRepository{DB: conn},
		UserRepo:      userRepo,
		RetailerRepo:  retailerRepo,
		SKURepo:       skuRepo,
		DistrictRepo:  districtRepo,
		ReferenceRepo: referenceRepo,
		Notifier:      w.notify,
		Storage:       w.storage,
		MaxUpload:     1 << 10,
	}

	newUser := func(email, first, role string) models.User {
		u, err := userRepo.CreateUser(ctx, models.User{Email: email, Password: "x", FirstName: first, Role: role, IsActive: true})
		require.NoError(t, err)
		return u
	}
	w.admin = newUser("admin@gov.test", "Asha", models.RoleGovAdmin)
	w.officer = newUser("officer@gov.test", "Ravi", models.RoleDistrictOfficer)
	w.farmer = newUser("farmer@test", "Kiran", models.RoleFarmer)
	w.owner = newUser("shop@test", "Meera", models.RoleRetailer)

	w.district, err = districtRepo.Create(ctx, models.District{Name: "Nashik", Code: "NSK", IsActive: true})
	require.NoError(t, err)
	w.other, err = districtRepo.Create(ctx, models.District{Name: "Pune", Code: "PUN", IsActive: true})
	require.NoError(t, err)
	w.sku, err = skuRepo.Create(ctx, models.SKU{Code: "UREA50", Name: "Urea 46-0-0", Manufacturer: "IFFCO", PackSizeKg: 50, IsActive: true})
	require.NoError(t, err)
	w.retailer, err = retailerRepo.Create(ctx, models.Retailer{UserID: w.owner.ID, LicenseNo: "LIC-001", BusinessName: "Green Agro",
		DistrictID: w.district.ID, Address: "Main road", IsActive: true})
	require.NoError(t, err)
	return w
}

func (w *world) actor(u models.User) models.Actor {
	return models.Actor{UserID: u.ID, Role: u.Role}
}

// globalReference sets a global reference price from day 1 onwards.
func (w *world) globalReference(t *testing.T, price models.Money) models.ReferencePrice {
	t.Helper()
	from := day(1)
	p, err := w.pricing.CreateReference(context.Background(), w.actor(w.admin), models.ReferencePriceInput{
		SKUID: &w.sku.ID, Price: &price, EffectiveFrom: &from,
	})
	require.NoError(t, err)
	return p
}
