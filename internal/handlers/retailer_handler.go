package handlers

import (
	"net/http"

	"pricegov/internal/models"
	"pricegov/internal/services"
)

type RetailerHandler struct {
	Service *services.RetailerService
}

func (h *RetailerHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.List(r.Context(), models.RetailerFilter{
		DistrictID: queryInt64(r, "district"),
		IsVerified: queryBool(r, "is_verified"),
		Search:     queryString(r, "search"),
		Page:       queryPage(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *RetailerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid retailer ID")
		return
	}
	rt, err := h.Service.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RetailerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rt, err := h.Service.Profile(r.Context(), actor.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RetailerHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in models.RetailerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rt, err := h.Service.CreateProfile(r.Context(), actor.UserID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *RetailerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in models.RetailerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rt, err := h.Service.UpdateProfile(r.Context(), actor.UserID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RetailerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid retailer ID")
		return
	}
	var in models.RetailerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rt, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RetailerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid retailer ID")
		return
	}
	rt, err := h.Service.Verify(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RetailerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid retailer ID")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
