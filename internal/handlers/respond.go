package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"pricegov/internal/models"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// decodeJSON rejects bodies that are not a single JSON value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// handleError maps service errors onto status codes. Anything unknown is a
// 500 and is logged; clients only see a generic message.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Message)
	case errors.Is(err, models.ErrNoRecord):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, models.ErrProfileMissing):
		writeError(w, http.StatusNotFound, "Retailer profile not found.")
	case errors.Is(err, models.ErrProfileExists):
		writeError(w, http.StatusBadRequest, "Retailer profile already exists.")
	case errors.Is(err, models.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "A user with this email already exists.")
	case errors.Is(err, models.ErrDuplicateCode):
		writeError(w, http.StatusBadRequest, "This code is already in use.")
	case errors.Is(err, models.ErrDuplicateLicense):
		writeError(w, http.StatusBadRequest, "A retailer with this license number already exists.")
	case errors.Is(err, models.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, models.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
	case errors.Is(err, models.ErrInactiveUser):
		writeError(w, http.StatusForbidden, "User account is disabled.")
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, models.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid status transition.")
	case errors.Is(err, models.ErrStaleStatus):
		writeError(w, http.StatusConflict, "Complaint status changed, reload and try again.")
	case isDuplicateKeyError(err):
		writeError(w, http.StatusBadRequest, "Record already exists.")
	case isForeignKeyConstraintError(err):
		writeError(w, http.StatusBadRequest, "Referenced record does not exist.")
	default:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
