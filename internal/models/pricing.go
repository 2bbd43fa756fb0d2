package models

import "time"

// Violation severities stored on published prices.
const (
	SeverityNone     = "none"
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeverityMajor    = "major"
	SeveritySevere   = "severe"
)

// Alert severities.
const (
	AlertLow      = "low"
	AlertMedium   = "medium"
	AlertHigh     = "high"
	AlertCritical = "critical"
)

const (
	AlertMarkupViolation      = "markup_violation"
	AlertPriceChange          = "price_change"
	AlertReferencePriceUpdate = "reference_price_update"
	AlertComplianceBreach     = "compliance_breach"
)

// Audit event types.
const (
	AuditPriceCreated      = "price_created"
	AuditPriceUpdated      = "price_updated"
	AuditPriceDeleted      = "price_deleted"
	AuditValidationSuccess = "validation_success"
	AuditValidationFailure = "validation_failure"
	AuditComplianceCheck   = "compliance_check"
)

type ReferencePrice struct {
	ID             int64      `json:"id"`
	SKUID          int64      `json:"sku"`
	SKUName        string     `json:"sku_name"`
	SKUCode        string     `json:"sku_code"`
	DistrictID     *int64     `json:"district"`
	DistrictName   string     `json:"district_name,omitempty"`
	Scope          string     `json:"scope"`
	IsGlobal       bool       `json:"is_global"`
	Price          Money      `json:"price"`
	EffectiveFrom  time.Time  `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`
	IsActive       bool       `json:"is_active"`
	CreatedBy      *int64     `json:"created_by"`
	CreatedByEmail string     `json:"created_by_email,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// SetScope fills the derived scope fields.
func (p *ReferencePrice) SetScope() {
	p.IsGlobal = p.DistrictID == nil
	if p.IsGlobal {
		p.Scope = "Global"
	} else {
		p.Scope = p.DistrictName
	}
}

type ReferencePriceInput struct {
	SKUID          *int64     `json:"sku"`
	DistrictID     *int64     `json:"district"`
	Price          *Money     `json:"price"`
	EffectiveFrom  *time.Time `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`
	IsActive       *bool      `json:"is_active"`
	// ClearUntil removes the end of the period.
	ClearUntil bool `json:"clear_effective_until"`
}

type ReferencePriceFilter struct {
	SKUID      *int64
	DistrictID *int64
	GlobalOnly bool
	Search     string
	Page       Page
}

type PublishedPrice struct {
	ID                    int64      `json:"id"`
	RetailerID            int64      `json:"retailer"`
	RetailerName          string     `json:"retailer_name"`
	SKUID                 int64      `json:"sku"`
	SKUName               string     `json:"sku_name"`
	SKUCode               string     `json:"sku_code"`
	DistrictID            int64      `json:"district"`
	DistrictName          string     `json:"district_name"`
	Price                 Money      `json:"price"`
	EffectiveFrom         time.Time  `json:"effective_from"`
	EffectiveUntil        *time.Time `json:"effective_until"`
	ReferencePrice        *Money     `json:"reference_price"`
	MarkupPercentage      *float64   `json:"markup_percentage"`
	Compliant             bool       `json:"compliant"`
	ViolationSeverity     string     `json:"violation_severity"`
	ValidationReason      string     `json:"validation_reason"`
	IsAutoApproved        bool       `json:"is_auto_approved"`
	AdminApprovalRequired bool       `json:"admin_approval_required"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

type PublishPriceRequest struct {
	SKUID          int64      `json:"sku_id"`
	Price          Money      `json:"price"`
	EffectiveFrom  *time.Time `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`
}

type PublishedPriceUpdate struct {
	Price          *Money     `json:"price"`
	EffectiveFrom  *time.Time `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`
	ClearUntil     bool       `json:"clear_effective_until"`
}

type PublishedPriceFilter struct {
	RetailerID *int64
	SKUID      *int64
	DistrictID *int64
	Compliant  *bool
	Page       Page
}

type ValidatePriceRequest struct {
	SKUID      int64  `json:"sku_id"`
	DistrictID *int64 `json:"district_id"`
	Price      Money  `json:"price"`
}

type ValidatePriceResponse struct {
	Valid            bool     `json:"valid"`
	AllowedMax       *Money   `json:"allowed_max"`
	Reason           string   `json:"reason"`
	ReferencePrice   *Money   `json:"reference_price"`
	MarkupPercentage *float64 `json:"markup_percentage"`
}

type PriceAudit struct {
	ID               int64     `json:"id"`
	EventType        string    `json:"event_type"`
	SKUID            int64     `json:"sku"`
	SKUName          string    `json:"sku_name"`
	DistrictID       *int64    `json:"district"`
	DistrictName     string    `json:"district_name,omitempty"`
	RetailerID       *int64    `json:"retailer"`
	RetailerName     string    `json:"retailer_name,omitempty"`
	OldPrice         *Money    `json:"old_price"`
	NewPrice         *Money    `json:"new_price"`
	ReferencePrice   *Money    `json:"reference_price"`
	MarkupPercentage *float64  `json:"markup_percentage"`
	Compliant        *bool     `json:"compliant"`
	Reason           string    `json:"reason"`
	UserID           *int64    `json:"user"`
	UserEmail        string    `json:"user_email,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type AuditFilter struct {
	EventType  string
	SKUID      *int64
	DistrictID *int64
	RetailerID *int64
	Compliant  *bool
	Page       Page
}

type PriceAlert struct {
	ID                   int64      `json:"id"`
	RetailerID           int64      `json:"retailer"`
	RetailerName         string     `json:"retailer_name"`
	PublishedPriceID     *int64     `json:"published_price"`
	ReferencePriceID     *int64     `json:"reference_price"`
	AlertType            string     `json:"alert_type"`
	Severity             string     `json:"severity"`
	Title                string     `json:"title"`
	Message              string     `json:"message"`
	MarkupPercentage     *float64   `json:"markup_percentage"`
	ReferencePriceAmount *Money     `json:"reference_price_amount"`
	RetailerPriceAmount  *Money     `json:"retailer_price_amount"`
	IsResolved           bool       `json:"is_resolved"`
	ResolvedBy           *int64     `json:"resolved_by"`
	ResolvedAt           *time.Time `json:"resolved_at"`
	ResolutionNotes      string     `json:"resolution_notes"`
	CreatedAt            time.Time  `json:"created_at"`
}

type AlertFilter struct {
	Severity   string
	IsResolved *bool
	RetailerID *int64
	Page       Page
}

// FarmerPriceView answers the farmer price query.
type FarmerPriceView struct {
	SKU               SKU                `json:"sku"`
	ReferencePrice    *Money             `json:"reference_price"`
	TopRetailerPrices []RetailerPriceRow `json:"top_retailer_prices"`
}

type RetailerPriceRow struct {
	RetailerName  string    `json:"retailer_name"`
	Price         Money     `json:"price"`
	EffectiveFrom time.Time `json:"effective_from"`
}

type ResolveAlertRequest struct {
	ResolutionNotes string `json:"resolution_notes"`
}
