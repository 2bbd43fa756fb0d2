package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"pricegov/internal/models"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer access-1"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, models.AuthResponse{
			User:   models.User{ID: 12, Email: "kiran@farm.test", Role: models.RoleFarmer},
			Tokens: models.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"},
		})
	})
	mux.HandleFunc("GET /api/v1/farmer/prices", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Authorization header missing or invalid"})
			return
		}
		ref := models.Money(108000)
		reply(w, http.StatusOK, models.FarmerPriceView{
			SKU:            models.SKU{ID: 1, DisplayName: "Urea 46-0-0 - IFFCO (45kg)"},
			ReferencePrice: &ref,
			TopRetailerPrices: []models.RetailerPriceRow{
				{RetailerName: "Kisan Kendra", Price: 108500, EffectiveFrom: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			},
		})
	})
	mux.HandleFunc("POST /api/v1/complaints/price-violation", func(w http.ResponseWriter, r *http.Request) {
		var in models.ComplaintInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.NotNil(t, in.ReportedPrice)
		ref := models.Money(108000)
		diff := *in.ReportedPrice - ref
		reply(w, http.StatusCreated, models.Complaint{ID: 3, Title: in.Title, Status: "pending",
			ComplaintType: models.ComplaintPriceViolation, ReportedPrice: in.ReportedPrice, ReferencePrice: &ref, PriceDifference: &diff})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginThenQuery(t *testing.T) {
	srv := fakeServer(t)
	home := t.TempDir()
	t.Setenv("PRICEGOV_URL", "")

	_, err := run(t, "--home", home, "--server", srv.URL, "prices", "farmer", "--sku", "1", "--district", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authorization header missing or invalid")

	out, err := run(t, "--home", home, "--server", srv.URL, "login", "kiran@farm.test", "-p", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as kiran@farm.test (farmer)")

	raw, err := os.ReadFile(filepath.Join(home, "session.yaml"))
	require.NoError(t, err)
	var s session
	require.NoError(t, yaml.Unmarshal(raw, &s))
	assert.Equal(t, session{Server: srv.URL, Email: "kiran@farm.test", Role: models.RoleFarmer, UserID: 12,
		Access: "access-1", Refresh: "refresh-1"}, s)

	// the stored session carries the server and token
	out, err = run(t, "--home", home, "prices", "farmer", "--sku", "1", "--district", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Reference price: 1080.00")
	assert.Contains(t, out, "Kisan Kendra")
	assert.Contains(t, out, "1085.00")

	out, err = run(t, "--home", home, "complaints", "file", "--title", "Urea above MRP",
		"--description", "Charged more than printed", "--district", "2", "--price", "1200")
	require.NoError(t, err)
	assert.Contains(t, out, "Urea above MRP")
	assert.Contains(t, out, "difference: 120.00")

	out, err = run(t, "--home", home, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	_, err = os.Stat(filepath.Join(home, "session.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoginRequiresPassword(t *testing.T) {
	t.Setenv("PRICEGOV_PASSWORD", "")
	_, err := run(t, "--home", t.TempDir(), "--server", "http://127.0.0.1:1", "login", "a@b.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password required")
}

func TestPublishRejectsBadAmount(t *testing.T) {
	_, err := run(t, "--home", t.TempDir(), "--server", "http://127.0.0.1:1", "prices", "publish", "--sku", "1", "--price", "10.999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 2 decimal places")
}
