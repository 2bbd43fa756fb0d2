package handlers

import (
	"net/http"

	"pricegov/internal/models"
	"pricegov/internal/services"
)

type ComplaintHandler struct {
	Service *services.ComplaintService
}

func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in models.ComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.Service.File(r.Context(), actor, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ComplaintHandler) CreatePriceViolation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in models.ComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.Service.FilePriceViolation(r.Context(), actor, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func complaintFilter(r *http.Request) models.ComplaintFilter {
	return models.ComplaintFilter{
		Status:        normalizeStatus(queryString(r, "status")),
		Priority:      queryString(r, "priority"),
		ComplaintType: queryString(r, "complaint_type"),
		DistrictID:    queryInt64(r, "district"),
		SKUID:         queryInt64(r, "sku"),
		Search:        queryString(r, "search"),
		Page:          queryPage(r),
	}
}

func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	h.list(w, r, actor, complaintFilter(r))
}

func (h *ComplaintHandler) MyComplaints(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	f := complaintFilter(r)
	f.ComplainantID = &actor.UserID
	h.list(w, r, actor, f)
}

func (h *ComplaintHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	f := complaintFilter(r)
	f.AssignedToID = queryInt64(r, "assigned_to")
	h.list(w, r, actor, f)
}

func (h *ComplaintHandler) list(w http.ResponseWriter, r *http.Request, actor models.Actor, f models.ComplaintFilter) {
	res, err := h.Service.List(r.Context(), actor, f)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid complaint ID")
		return
	}
	c, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid complaint ID")
		return
	}
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid complaint ID")
		return
	}
	var req models.StatusUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Status = normalizeStatus(req.Status)
	c, err := h.Service.UpdateStatus(r.Context(), actor, id, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ComplaintHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid complaint ID")
		return
	}
	var req models.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.Service.Assign(r.Context(), actor, id, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ComplaintHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid complaint ID")
		return
	}
	var req models.ResolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.Service.Resolve(r.Context(), actor, id, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// AddEvidence accepts multipart/form-data with file, file_type and description.
func (h *ComplaintHandler) AddEvidence(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid complaint ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Service.MaxUpload+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	up := services.EvidenceUpload{
		FileType:    formValue(r.MultipartForm, "file_type"),
		Description: formValue(r.MultipartForm, "description"),
	}
	if files := collectFormFiles(r.MultipartForm, "file"); len(files) > 0 {
		data, contentType, err := readFormFile(files[0], h.Service.MaxUpload)
		if err != nil {
			handleError(w, r, err)
			return
		}
		up.FileName = uploadName(files[0])
		up.ContentType = contentType
		up.Data = data
	}

	e, err := h.Service.AddEvidence(r.Context(), actor, id, up)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *ComplaintHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.Statistics(r.Context(), actor)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
