package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	RoleGovAdmin        = "gov_admin"
	RoleDistrictOfficer = "district_officer"
	RoleRetailer        = "retailer"
	RoleFarmer          = "farmer"
	RoleInspector       = "inspector"
)

// ValidRole reports whether role is one of the platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGovAdmin, RoleDistrictOfficer, RoleRetailer, RoleFarmer, RoleInspector:
		return true
	}
	return false
}

// IsGovStaff is true for government users: admins, district officers and
// inspectors.
func IsGovStaff(role string) bool {
	return role == RoleGovAdmin || role == RoleDistrictOfficer || role == RoleInspector
}

type User struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	IsActive   bool       `json:"is_active"`
	Password   string     `json:"-"`
	FCMToken   string     `json:"-"`
	DateJoined time.Time  `json:"date_joined"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// DisplayName falls back to the email when no name is set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsGovStaff() bool { return IsGovStaff(a.Role) }

// CanManage is true for gov_admin and district_officer, the roles that edit
// master data and drive complaints.
func (a Actor) CanManage() bool {
	return a.Role == RoleGovAdmin || a.Role == RoleDistrictOfficer
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh,omitempty"`
}

type Session struct {
	UserID       int64
	Role         string
	RefreshToken string
	ExpiresAt    time.Time
}

type AuthResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	FCMToken  *string `json:"fcm_token"`
}

type UserFilter struct {
	Role       string
	IsVerified *bool
	IsActive   *bool
	Search     string
	Ordering   string
	Page       Page
}
