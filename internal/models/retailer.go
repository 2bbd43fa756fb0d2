package models

import "time"

type Retailer struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user"`
	UserEmail     string     `json:"user_email"`
	UserPhone     string     `json:"user_phone"`
	LicenseNo     string     `json:"license_no"`
	BusinessName  string     `json:"business_name"`
	DistrictID    int64      `json:"district"`
	DistrictName  string     `json:"district_name"`
	Address       string     `json:"address"`
	ContactPerson string     `json:"contact_person"`
	IsVerified    bool       `json:"is_verified"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type RetailerInput struct {
	LicenseNo     *string `json:"license_no"`
	BusinessName  *string `json:"business_name"`
	DistrictID    *int64  `json:"district"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
	IsActive      *bool   `json:"is_active"`
}

type RetailerFilter struct {
	DistrictID *int64
	IsVerified *bool
	Search     string
	Page       Page
}
