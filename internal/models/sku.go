package models

import (
	"fmt"
	"strconv"
	"time"
)

type SKU struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Manufacturer string     `json:"manufacturer"`
	PackSizeKg   float64    `json:"pack_size_kg"`
	Description  string     `json:"description,omitempty"`
	DisplayName  string     `json:"display_name"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// SKUDisplayName renders "Urea 46-0-0 - IFFCO (50kg)".
func SKUDisplayName(name, manufacturer string, packSizeKg float64) string {
	return fmt.Sprintf("%s - %s (%skg)", name, manufacturer, strconv.FormatFloat(packSizeKg, 'f', -1, 64))
}

type SKUInput struct {
	Code         *string  `json:"code"`
	Name         *string  `json:"name"`
	Manufacturer *string  `json:"manufacturer"`
	PackSizeKg   *float64 `json:"pack_size_kg"`
	Description  *string  `json:"description"`
	IsActive     *bool    `json:"is_active"`
}

type SKUFilter struct {
	Search       string
	Manufacturer string
}
