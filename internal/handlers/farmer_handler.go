package handlers

import (
	"net/http"

	"pricegov/internal/services"
)

type FarmerHandler struct {
	Service *services.FarmerService
}

// Prices answers GET /farmer/prices?sku=&district=.
func (h *FarmerHandler) Prices(w http.ResponseWriter, r *http.Request) {
	var skuID, districtID int64
	if v := queryInt64(r, "sku"); v != nil {
		skuID = *v
	}
	if v := queryInt64(r, "district"); v != nil {
		districtID = *v
	}

	view, err := h.Service.Prices(r.Context(), skuID, districtID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
