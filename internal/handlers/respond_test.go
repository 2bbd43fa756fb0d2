package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"pricegov/internal/models"
)

func TestHandleErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", models.Invalid("Price must be greater than 0."), http.StatusBadRequest, "Price must be greater than 0."},
		{"not found message", &models.NotFoundError{Message: "SKU not found"}, http.StatusNotFound, "SKU not found"},
		{"wrapped no record", fmt.Errorf("load: %w", models.ErrNoRecord), http.StatusNotFound, "Not found."},
		{"missing profile", models.ErrProfileMissing, http.StatusNotFound, "Retailer profile not found."},
		{"profile exists", models.ErrProfileExists, http.StatusBadRequest, "Retailer profile already exists."},
		{"credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"inactive", models.ErrInactiveUser, http.StatusForbidden, "User account is disabled."},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, "You do not have permission to perform this action."},
		{"transition", models.ErrInvalidTransition, http.StatusConflict, "Invalid status transition."},
		{"stale", models.ErrStaleStatus, http.StatusConflict, "Complaint status changed, reload and try again."},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, http.StatusBadRequest, "Record already exists."},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452}, http.StatusBadRequest, "Referenced record does not exist."},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.msg, errorMessage(t, rec))
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?sku=12&district=abc&compliant=true&page=3&page_size=500", nil)

	if assert.NotNil(t, queryInt64(r, "sku")) {
		assert.Equal(t, int64(12), *queryInt64(r, "sku"))
	}
	assert.Nil(t, queryInt64(r, "district"))
	if assert.NotNil(t, queryBool(r, "compliant")) {
		assert.True(t, *queryBool(r, "compliant"))
	}
	assert.Equal(t, models.Page{Limit: models.MaxPageSize, Offset: 2 * models.MaxPageSize}, queryPage(r))

	r = httptest.NewRequest(http.MethodGet, "/?:id=7", nil)
	id, ok := idParam(r)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.SetPathValue("id", "-1")
	_, ok = idParam(r)
	assert.False(t, ok)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "under_review", normalizeStatus(" Under Review "))
	assert.Equal(t, "closed", normalizeStatus("closed"))
	assert.Equal(t, "", normalizeStatus(""))
}
