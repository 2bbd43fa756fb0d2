package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricegov/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seenAuth []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.AuthResponse{
			User:   models.User{ID: 4, Email: req.Email, Role: models.RoleFarmer},
			Tokens: models.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"},
		})
	})
	mux.HandleFunc("POST /api/v1/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req models.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-1", req.Refresh)
		writeJSON(w, http.StatusOK, models.Tokens{AccessToken: "access-2"})
	})
	mux.HandleFunc("GET /api/v1/farmer/prices", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = append(seenAuth, r.Header.Get("Authorization"))
		if r.URL.Query().Get("district") == "0" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Both sku and district parameters are required"})
			return
		}
		ref := models.Money(108000)
		writeJSON(w, http.StatusOK, models.FarmerPriceView{
			SKU:            models.SKU{ID: 1, Code: "UREA45"},
			ReferencePrice: &ref,
			TopRetailerPrices: []models.RetailerPriceRow{
				{RetailerName: "Kisan Kendra", Price: 109000},
			},
		})
	})
	mux.HandleFunc("PUT /api/v1/complaints/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req models.StatusUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if r.PathValue("id") != "9" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found."})
			return
		}
		writeJSON(w, http.StatusOK, models.Complaint{ID: 9, Status: req.Status})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/skus", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seenAuth
}

func TestLoginStoresTokens(t *testing.T) {
	srv, seenAuth := newServer(t)
	c := New(srv.URL+"/", srv.Client())
	ctx := context.Background()

	_, err := c.Login(ctx, "farmer@test", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, c.Tokens().AccessToken)

	res, err := c.Login(ctx, "farmer@test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.User.ID)
	assert.Equal(t, models.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}, c.Tokens())

	view, err := c.FarmerPrices(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, view.ReferencePrice)
	assert.Equal(t, "1080.00", view.ReferencePrice.String())
	assert.Equal(t, []string{"Bearer access-1"}, *seenAuth)

	tokens, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Tokens{AccessToken: "access-2", RefreshToken: "refresh-1"}, tokens)

	_, err = c.FarmerPrices(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-2", (*seenAuth)[1])

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, models.Tokens{}, c.Tokens())
	_, err = c.Refresh(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestAPIErrors(t *testing.T) {
	srv, _ := newServer(t)
	c := New(srv.URL, nil)
	ctx := context.Background()

	_, err := c.FarmerPrices(ctx, 1, 0)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Both sku and district parameters are required", apiErr.Message)
	assert.Equal(t, "pricegov: 400 Both sku and district parameters are required", err.Error())

	// non-JSON bodies are surfaced as text
	_, err = c.ListSKUs(ctx, "")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)

	_, err = c.UpdateComplaintStatus(ctx, 3, "resolved", "")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	complaint, err := c.UpdateComplaintStatus(ctx, 9, "under_review", "checking")
	require.NoError(t, err)
	assert.Equal(t, "under_review", complaint.Status)
}
