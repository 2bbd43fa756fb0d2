package handlers

import (
	"net/http"

	"pricegov/internal/models"
	"pricegov/internal/services"
)

type PricingHandler struct {
	Service   *services.PricingService
	Dashboard *services.DashboardService
}

func (h *PricingHandler) ListReference(w http.ResponseWriter, r *http.Request) {
	global := queryBool(r, "global")
	res, err := h.Service.ListReference(r.Context(), models.ReferencePriceFilter{
		SKUID:      queryInt64(r, "sku"),
		DistrictID: queryInt64(r, "district"),
		GlobalOnly: global != nil && *global,
		Search:     queryString(r, "search"),
		Page:       queryPage(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PricingHandler) GetReference(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid reference price ID")
		return
	}
	p, err := h.Service.GetReference(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PricingHandler) CreateReference(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in models.ReferencePriceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.Service.CreateReference(r.Context(), actor, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PricingHandler) UpdateReference(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid reference price ID")
		return
	}
	var in models.ReferencePriceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.Service.UpdateReference(r.Context(), actor, id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PricingHandler) DeleteReference(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid reference price ID")
		return
	}
	if err := h.Service.DeleteReference(r.Context(), actor, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PricingHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	res, err := h.Service.ListPublished(r.Context(), actor, models.PublishedPriceFilter{
		RetailerID: queryInt64(r, "retailer"),
		SKUID:      queryInt64(r, "sku"),
		DistrictID: queryInt64(r, "district"),
		Compliant:  queryBool(r, "compliant"),
		Page:       queryPage(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PricingHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid price ID")
		return
	}
	p, err := h.Service.GetPublished(r.Context(), actor, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PricingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.PublishPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Service.Publish(r.Context(), actor, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PricingHandler) UpdatePublished(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid price ID")
		return
	}
	var upd models.PublishedPriceUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	p, err := h.Service.UpdatePublished(r.Context(), actor, id, upd)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PricingHandler) DeletePublished(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid price ID")
		return
	}
	if err := h.Service.DeletePublished(r.Context(), actor, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PricingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.ValidatePriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.Service.Validate(r.Context(), actor, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PricingHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.ListAudits(r.Context(), models.AuditFilter{
		EventType:  queryString(r, "event_type"),
		SKUID:      queryInt64(r, "sku"),
		DistrictID: queryInt64(r, "district"),
		RetailerID: queryInt64(r, "retailer"),
		Compliant:  queryBool(r, "compliant"),
		Page:       queryPage(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PricingHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.ListAlerts(r.Context(), models.AlertFilter{
		Severity:   queryString(r, "severity"),
		IsResolved: queryBool(r, "is_resolved"),
		RetailerID: queryInt64(r, "retailer"),
		Page:       queryPage(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PricingHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}
	var req models.ResolveAlertRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	a, err := h.Service.ResolveAlert(r.Context(), actor, id, req.ResolutionNotes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *PricingHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dashboard.Dashboard(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
