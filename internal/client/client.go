// Package client is a typed HTTP client for the pricegov REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"pricegov/internal/models"
)

const apiPrefix = "/api/v1"

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pricegov: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	Base string
	HTTP *http.Client

	mu      sync.RWMutex
	access  string
	refresh string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.access, c.refresh = access, refresh
	c.mu.Unlock()
}

func (c *Client) Tokens() models.Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.Tokens{AccessToken: c.access, RefreshToken: c.refresh}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.Base + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Tokens().AccessToken; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

func setInt(q url.Values, key string, v *int64) {
	if v != nil {
		q.Set(key, strconv.FormatInt(*v, 10))
	}
}

// Auth

func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var res models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, models.SignInRequest{Email: email, Password: password}, &res)
	if err == nil {
		c.SetTokens(res.Tokens.AccessToken, res.Tokens.RefreshToken)
	}
	return res, err
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var res models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &res)
	if err == nil {
		c.SetTokens(res.Tokens.AccessToken, res.Tokens.RefreshToken)
	}
	return res, err
}

// Refresh trades the stored refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) (models.Tokens, error) {
	cur := c.Tokens()
	if cur.RefreshToken == "" {
		return models.Tokens{}, &APIError{StatusCode: http.StatusUnauthorized, Message: "no refresh token"}
	}
	var res models.Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/token/refresh", nil, models.RefreshRequest{Refresh: cur.RefreshToken}, &res); err != nil {
		return models.Tokens{}, err
	}
	c.SetTokens(res.AccessToken, cur.RefreshToken)
	return c.Tokens(), nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.SetTokens("", "")
	return nil
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &u)
	return u, err
}

// Catalog

func (c *Client) ListDistricts(ctx context.Context, search string) ([]models.District, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var out []models.District
	err := c.do(ctx, http.MethodGet, "/districts", q, nil, &out)
	return out, err
}

func (c *Client) DistrictTree(ctx context.Context) ([]models.DistrictNode, error) {
	var out []models.DistrictNode
	err := c.do(ctx, http.MethodGet, "/districts/tree", nil, nil, &out)
	return out, err
}

func (c *Client) ListSKUs(ctx context.Context, search string) ([]models.SKU, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var out []models.SKU
	err := c.do(ctx, http.MethodGet, "/skus", q, nil, &out)
	return out, err
}

// Pricing

func (c *Client) FarmerPrices(ctx context.Context, skuID, districtID int64) (models.FarmerPriceView, error) {
	q := url.Values{}
	q.Set("sku", strconv.FormatInt(skuID, 10))
	q.Set("district", strconv.FormatInt(districtID, 10))
	var out models.FarmerPriceView
	err := c.do(ctx, http.MethodGet, "/farmer/prices", q, nil, &out)
	return out, err
}

func (c *Client) ValidatePrice(ctx context.Context, req models.ValidatePriceRequest) (models.ValidatePriceResponse, error) {
	var out models.ValidatePriceResponse
	err := c.do(ctx, http.MethodPost, "/pricing/validate", nil, req, &out)
	return out, err
}

func (c *Client) PublishPrice(ctx context.Context, req models.PublishPriceRequest) (models.PublishedPrice, error) {
	var out models.PublishedPrice
	err := c.do(ctx, http.MethodPost, "/pricing/published-prices", nil, req, &out)
	return out, err
}

// PublishedQuery filters ListPublishedPrices. Zero values are omitted.
type PublishedQuery struct {
	RetailerID *int64
	SKUID      *int64
	DistrictID *int64
	Compliant  *bool
	Page       int
}

func (c *Client) ListPublishedPrices(ctx context.Context, f PublishedQuery) (models.ListResult[models.PublishedPrice], error) {
	q := url.Values{}
	setInt(q, "retailer", f.RetailerID)
	setInt(q, "sku", f.SKUID)
	setInt(q, "district", f.DistrictID)
	if f.Compliant != nil {
		q.Set("compliant", strconv.FormatBool(*f.Compliant))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	var out models.ListResult[models.PublishedPrice]
	err := c.do(ctx, http.MethodGet, "/pricing/published-prices", q, nil, &out)
	return out, err
}

func (c *Client) CreateReferencePrice(ctx context.Context, in models.ReferencePriceInput) (models.ReferencePrice, error) {
	var out models.ReferencePrice
	err := c.do(ctx, http.MethodPost, "/pricing/reference-prices", nil, in, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var out models.Dashboard
	err := c.do(ctx, http.MethodGet, "/pricing/admin/dashboard", nil, nil, &out)
	return out, err
}

// Complaints

type ComplaintQuery struct {
	Status        string
	Priority      string
	ComplaintType string
	Search        string
	Page          int
}

func (c *Client) ListComplaints(ctx context.Context, f ComplaintQuery) (models.ListResult[models.Complaint], error) {
	q := url.Values{}
	for k, v := range map[string]string{"status": f.Status, "priority": f.Priority, "complaint_type": f.ComplaintType, "search": f.Search} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	var out models.ListResult[models.Complaint]
	err := c.do(ctx, http.MethodGet, "/complaints", q, nil, &out)
	return out, err
}

func (c *Client) FileComplaint(ctx context.Context, in models.ComplaintInput) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPost, "/complaints", nil, in, &out)
	return out, err
}

func (c *Client) FilePriceViolation(ctx context.Context, in models.ComplaintInput) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPost, "/complaints/price-violation", nil, in, &out)
	return out, err
}

func (c *Client) UpdateComplaintStatus(ctx context.Context, id int64, status, notes string) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPut, idPath("/complaints/%d/status", id), nil,
		models.StatusUpdateRequest{Status: status, Notes: notes}, &out)
	return out, err
}

func (c *Client) AssignComplaint(ctx context.Context, id, assigneeID int64) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPost, idPath("/complaints/%d/assign", id), nil,
		models.AssignRequest{AssignedTo: assigneeID}, &out)
	return out, err
}

func (c *Client) ResolveComplaint(ctx context.Context, id int64, req models.ResolveRequest) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPut, idPath("/complaints/%d/resolve", id), nil, req, &out)
	return out, err
}

func (c *Client) ComplaintStatistics(ctx context.Context) (models.ComplaintStatistics, error) {
	var out models.ComplaintStatistics
	err := c.do(ctx, http.MethodGet, "/complaints/statistics", nil, nil, &out)
	return out, err
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) (models.ListResult[models.ComplaintNotification], error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread", "true")
	}
	var out models.ListResult[models.ComplaintNotification]
	err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &out)
	return out, err
}
