package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"pricegov/internal/models"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole())
	adminMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleGovAdmin))
	manageMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleGovAdmin, models.RoleDistrictOfficer))
	staffMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleGovAdmin, models.RoleDistrictOfficer, models.RoleInspector))
	retailerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleRetailer))
	validateMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleRetailer, models.RoleGovAdmin))
	farmerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleFarmer))

	mux := pat.New()

	// Auth
	mux.Post("/api/v1/auth/register", standardMiddleware.ThenFunc(app.userHandler.Register))
	mux.Post("/api/v1/auth/login", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/api/v1/auth/token/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/api/v1/auth/logout", authMiddleware.ThenFunc(app.userHandler.Logout))
	mux.Get("/api/v1/auth/profile", authMiddleware.ThenFunc(app.userHandler.Profile))
	mux.Put("/api/v1/auth/profile", authMiddleware.ThenFunc(app.userHandler.UpdateProfile))
	mux.Get("/api/v1/auth/users", adminMiddleware.ThenFunc(app.userHandler.ListUsers))

	// Districts
	mux.Get("/api/v1/districts", authMiddleware.ThenFunc(app.districtHandler.List))
	mux.Post("/api/v1/districts", manageMiddleware.ThenFunc(app.districtHandler.Create))
	mux.Get("/api/v1/districts/tree", authMiddleware.ThenFunc(app.districtHandler.Tree))
	mux.Get("/api/v1/districts/:id/children", authMiddleware.ThenFunc(app.districtHandler.Children))
	mux.Get("/api/v1/districts/:id/deletion-check", adminMiddleware.ThenFunc(app.districtHandler.DeletionCheck))
	mux.Get("/api/v1/districts/:id", manageMiddleware.ThenFunc(app.districtHandler.Get))
	mux.Put("/api/v1/districts/:id", manageMiddleware.ThenFunc(app.districtHandler.Update))
	mux.Del("/api/v1/districts/:id", manageMiddleware.ThenFunc(app.districtHandler.Delete))

	// SKUs
	mux.Get("/api/v1/skus", authMiddleware.ThenFunc(app.skuHandler.List))
	mux.Post("/api/v1/skus", manageMiddleware.ThenFunc(app.skuHandler.Create))
	mux.Get("/api/v1/skus/:id", manageMiddleware.ThenFunc(app.skuHandler.Get))
	mux.Put("/api/v1/skus/:id", manageMiddleware.ThenFunc(app.skuHandler.Update))
	mux.Del("/api/v1/skus/:id", manageMiddleware.ThenFunc(app.skuHandler.Delete))

	// Retailers
	mux.Get("/api/v1/retailers", authMiddleware.ThenFunc(app.retailerHandler.List))
	mux.Get("/api/v1/retailers/profile", retailerMiddleware.ThenFunc(app.retailerHandler.Profile))
	mux.Put("/api/v1/retailers/profile", retailerMiddleware.ThenFunc(app.retailerHandler.UpdateProfile))
	mux.Post("/api/v1/retailers/create-profile", retailerMiddleware.ThenFunc(app.retailerHandler.CreateProfile))
	mux.Post("/api/v1/retailers/:id/verify", manageMiddleware.ThenFunc(app.retailerHandler.Verify))
	mux.Get("/api/v1/retailers/:id", manageMiddleware.ThenFunc(app.retailerHandler.Get))
	mux.Put("/api/v1/retailers/:id", manageMiddleware.ThenFunc(app.retailerHandler.Update))
	mux.Del("/api/v1/retailers/:id", manageMiddleware.ThenFunc(app.retailerHandler.Delete))

	// Reference prices
	mux.Get("/api/v1/pricing/reference-prices", authMiddleware.ThenFunc(app.pricingHandler.ListReference))
	mux.Post("/api/v1/pricing/reference-prices", adminMiddleware.ThenFunc(app.pricingHandler.CreateReference))
	mux.Get("/api/v1/pricing/reference-prices/:id", adminMiddleware.ThenFunc(app.pricingHandler.GetReference))
	mux.Put("/api/v1/pricing/reference-prices/:id", adminMiddleware.ThenFunc(app.pricingHandler.UpdateReference))
	mux.Del("/api/v1/pricing/reference-prices/:id", adminMiddleware.ThenFunc(app.pricingHandler.DeleteReference))

	// Published prices
	mux.Get("/api/v1/pricing/published-prices", authMiddleware.ThenFunc(app.pricingHandler.ListPublished))
	mux.Post("/api/v1/pricing/published-prices", retailerMiddleware.ThenFunc(app.pricingHandler.Publish))
	mux.Get("/api/v1/pricing/published-prices/:id", authMiddleware.ThenFunc(app.pricingHandler.GetPublished))
	mux.Put("/api/v1/pricing/published-prices/:id", authMiddleware.ThenFunc(app.pricingHandler.UpdatePublished))
	mux.Del("/api/v1/pricing/published-prices/:id", authMiddleware.ThenFunc(app.pricingHandler.DeletePublished))

	// Compliance
	mux.Post("/api/v1/pricing/validate", validateMiddleware.ThenFunc(app.pricingHandler.Validate))
	mux.Get("/api/v1/pricing/audit", adminMiddleware.ThenFunc(app.pricingHandler.ListAudits))
	mux.Get("/api/v1/pricing/alerts", staffMiddleware.ThenFunc(app.pricingHandler.ListAlerts))
	mux.Post("/api/v1/pricing/alerts/:id/resolve", manageMiddleware.ThenFunc(app.pricingHandler.ResolveAlert))
	mux.Get("/api/v1/pricing/admin/dashboard", adminMiddleware.ThenFunc(app.pricingHandler.AdminDashboard))
	mux.Get("/api/v1/farmer/prices", farmerMiddleware.ThenFunc(app.farmerHandler.Prices))

	// Complaints
	mux.Get("/api/v1/complaints", authMiddleware.ThenFunc(app.complaintHandler.List))
	mux.Post("/api/v1/complaints", authMiddleware.ThenFunc(app.complaintHandler.Create))
	mux.Post("/api/v1/complaints/price-violation", authMiddleware.ThenFunc(app.complaintHandler.CreatePriceViolation))
	mux.Get("/api/v1/complaints/my-complaints", authMiddleware.ThenFunc(app.complaintHandler.MyComplaints))
	mux.Get("/api/v1/complaints/admin", manageMiddleware.ThenFunc(app.complaintHandler.AdminList))
	mux.Get("/api/v1/complaints/statistics", authMiddleware.ThenFunc(app.complaintHandler.Statistics))
	mux.Put("/api/v1/complaints/:id/status", manageMiddleware.ThenFunc(app.complaintHandler.UpdateStatus))
	mux.Put("/api/v1/complaints/:id/resolve", manageMiddleware.ThenFunc(app.complaintHandler.Resolve))
	mux.Post("/api/v1/complaints/:id/assign", manageMiddleware.ThenFunc(app.complaintHandler.Assign))
	mux.Post("/api/v1/complaints/:id/evidence", authMiddleware.ThenFunc(app.complaintHandler.AddEvidence))
	mux.Get("/api/v1/complaints/:id", authMiddleware.ThenFunc(app.complaintHandler.Get))
	mux.Del("/api/v1/complaints/:id", authMiddleware.ThenFunc(app.complaintHandler.Delete))

	// Notifications
	mux.Get("/api/v1/notifications", authMiddleware.ThenFunc(app.notificationHandler.List))
	mux.Post("/api/v1/notifications/:id/read", authMiddleware.ThenFunc(app.notificationHandler.MarkRead))

	// Live feed authenticates from the query string before upgrading.
	mux.Get("/api/v1/ws", http.HandlerFunc(app.WebSocketHandler))

	if app.uploads != nil {
		mux.Get("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.uploads.Dir))))
	}

	return mux
}
