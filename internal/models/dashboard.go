package models

import "time"

type Dashboard struct {
	Alerts         AlertSummary      `json:"alerts"`
	Compliance     ComplianceSummary `json:"compliance"`
	TopViolators   []Violator        `json:"top_violators"`
	RecentActivity RecentActivity    `json:"recent_activity"`
	SystemHealth   SystemHealth      `json:"system_health"`
}

type AlertSummary struct {
	TotalRecent  int            `json:"total_recent"`
	Unresolved   int            `json:"unresolved"`
	BySeverity   map[string]int `json:"by_severity"`
	RecentAlerts []AlertDigest  `json:"recent_alerts"`
}

type AlertDigest struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Severity         string    `json:"severity"`
	RetailerName     string    `json:"retailer_name"`
	MarkupPercentage *float64  `json:"markup_percentage"`
	CreatedAt        time.Time `json:"created_at"`
	IsResolved       bool      `json:"is_resolved"`
}

type ComplianceSummary struct {
	TotalPrices        int            `json:"total_prices"`
	CompliantPrices    int            `json:"compliant_prices"`
	NonCompliantPrices int            `json:"non_compliant_prices"`
	ComplianceRate     float64        `json:"compliance_rate"`
	ViolationBreakdown map[string]int `json:"violation_breakdown"`
}

type Violator struct {
	RetailerName   string `json:"retailer_name"`
	District       string `json:"district"`
	ViolationCount int    `json:"violation_count"`
}

type RecentActivity struct {
	PriceChanges24h int           `json:"price_changes_24h"`
	RecentChanges   []PriceChange `json:"recent_changes"`
}

type PriceChange struct {
	RetailerName      string    `json:"retailer_name"`
	ProductName       string    `json:"product_name"`
	Price             Money     `json:"price"`
	MarkupPercentage  *float64  `json:"markup_percentage"`
	ViolationSeverity string    `json:"violation_severity"`
	CreatedAt         time.Time `json:"created_at"`
}

type SystemHealth struct {
	ProductsWithoutRefPrices int                  `json:"products_without_ref_prices"`
	DistrictCompliance       []DistrictCompliance `json:"district_compliance"`
}

type DistrictCompliance struct {
	DistrictName    string  `json:"district_name"`
	TotalPrices     int     `json:"total_prices"`
	CompliantPrices int     `json:"compliant_prices"`
	ComplianceRate  float64 `json:"compliance_rate"`
}
