package models

import "time"

type District struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Code          string     `json:"code"`
	ParentID      *int64     `json:"parent,omitempty"`
	ParentName    string     `json:"parent_name,omitempty"`
	FullPath      string     `json:"full_path"`
	Level         int        `json:"level"`
	ChildrenCount int        `json:"children_count"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// DistrictNode is a district with its nested active children.
type DistrictNode struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Code     string         `json:"code"`
	FullPath string         `json:"full_path"`
	Level    int            `json:"level"`
	Children []DistrictNode `json:"children"`
}

type DistrictInput struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	ParentID *int64  `json:"parent"`
	IsActive *bool   `json:"is_active"`
	// ClearParent detaches the district from its parent.
	ClearParent bool `json:"clear_parent"`
}

type DistrictFilter struct {
	ParentID *int64
	Search   string
}

type DistrictUsage struct {
	Retailers       int `json:"retailers"`
	ChildDistricts  int `json:"child_districts"`
	ReferencePrices int `json:"reference_prices"`
	Complaints      int `json:"complaints"`
	PriceAudits     int `json:"price_audits"`
}

type DeletionCheck struct {
	CanDelete       bool          `json:"can_delete"`
	Reason          string        `json:"reason"`
	AffectedObjects DistrictUsage `json:"affected_objects"`
	DistrictInfo    struct {
		Name     string `json:"name"`
		Code     string `json:"code"`
		FullPath string `json:"full_path"`
	} `json:"district_info"`
}
