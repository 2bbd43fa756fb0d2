package handlers

import (
	"net/http"

	"pricegov/internal/models"
	"pricegov/internal/services"
)

type DistrictHandler struct {
	Service *services.DistrictService
}

func (h *DistrictHandler) List(w http.ResponseWriter, r *http.Request) {
	districts, err := h.Service.List(r.Context(), models.DistrictFilter{
		ParentID: queryInt64(r, "parent"),
		Search:   queryString(r, "search"),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if districts == nil {
		districts = []models.District{}
	}
	writeJSON(w, http.StatusOK, districts)
}

func (h *DistrictHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Service.Tree(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (h *DistrictHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid district ID")
		return
	}
	d, err := h.Service.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DistrictHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.DistrictInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := h.Service.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DistrictHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid district ID")
		return
	}
	var in models.DistrictInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DistrictHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid district ID")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DistrictHandler) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid district ID")
		return
	}
	kids, err := h.Service.Children(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if kids == nil {
		kids = []models.District{}
	}
	writeJSON(w, http.StatusOK, kids)
}

func (h *DistrictHandler) DeletionCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid district ID")
		return
	}
	check, err := h.Service.DeletionCheck(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}
