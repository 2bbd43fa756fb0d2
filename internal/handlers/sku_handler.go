package handlers

import (
	"net/http"

	"pricegov/internal/models"
	"pricegov/internal/services"
)

type SKUHandler struct {
	Service *services.SKUService
}

func (h *SKUHandler) List(w http.ResponseWriter, r *http.Request) {
	skus, err := h.Service.List(r.Context(), models.SKUFilter{
		Search:       queryString(r, "search"),
		Manufacturer: queryString(r, "manufacturer"),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if skus == nil {
		skus = []models.SKU{}
	}
	writeJSON(w, http.StatusOK, skus)
}

func (h *SKUHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid SKU ID")
		return
	}
	sku, err := h.Service.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sku)
}

func (h *SKUHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.SKUInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sku, err := h.Service.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sku)
}

func (h *SKUHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid SKU ID")
		return
	}
	var in models.SKUInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sku, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sku)
}

func (h *SKUHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid SKU ID")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
