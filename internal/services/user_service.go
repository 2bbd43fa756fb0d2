package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pricegov/internal/models"
	"pricegov/internal/repositories"
	"pricegov/utils"
)

type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// Register creates a retailer or farmer account and signs it in.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = models.RoleFarmer
	}
	switch {
	case !validEmail(req.Email):
		return models.AuthResponse{}, models.Invalid("Enter a valid email address.")
	case req.Role != models.RoleRetailer && req.Role != models.RoleFarmer:
		return models.AuthResponse{}, models.Invalid("Only retailer and farmer accounts can self-register.")
	case len(req.Password) < 8:
		return models.AuthResponse{}, models.Invalid("Password must be at least 8 characters long.")
	case req.PasswordConfirm != "" && req.PasswordConfirm != req.Password:
		return models.AuthResponse{}, models.Invalid("Passwords do not match.")
	case req.Phone != "" && !validPhone(req.Phone):
		return models.AuthResponse{}, models.Invalid(phoneHint)
	}

	if _, err := s.UserRepo.GetUserByEmail(ctx, req.Email); err == nil {
		return models.AuthResponse{}, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return models.AuthResponse{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.AuthResponse{}, err
	}
	user, err := s.UserRepo.CreateUser(ctx, models.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		Role:      req.Role,
		IsActive:  true,
	})
	if err != nil {
		return models.AuthResponse{}, err
	}
	zap.L().Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", user.Role))

	tokens, err := s.CreateSession(ctx, user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return models.AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.AuthResponse, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrUserNotFound) {
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		zap.L().Info("invalid password", zap.Int64("user_id", user.ID))
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.AuthResponse{}, models.ErrInactiveUser
	}

	tokens, err := s.CreateSession(ctx, user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return models.AuthResponse{User: user, Tokens: tokens}, nil
}

// CreateSession issues an access token and stores a fresh refresh token.
func (s *UserService) CreateSession(ctx context.Context, user models.User) (models.Tokens, error) {
	var (
		res models.Tokens
		err error
	)
	res.AccessToken, err = s.TokenManager.NewJWT(user.ID, user.Role, s.AccessTTL)
	if err != nil {
		return res, err
	}
	res.RefreshToken, err = s.TokenManager.NewRefreshToken()
	if err != nil {
		return res, err
	}

	session := models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(s.RefreshTTL).Truncate(time.Second),
	}
	if err := s.UserRepo.SetSession(ctx, user.ID, session); err != nil {
		return res, err
	}
	return res, nil
}

// Refresh trades a live refresh token for a new access token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, models.Session, error) {
	if refreshToken == "" {
		return models.Tokens{}, models.Session{}, models.ErrInvalidToken
	}
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, models.Session{}, err
	}
	if !session.ExpiresAt.After(time.Now()) {
		return models.Tokens{}, models.Session{}, models.ErrInvalidToken
	}
	access, err := s.TokenManager.NewJWT(session.UserID, session.Role, s.AccessTTL)
	if err != nil {
		return models.Tokens{}, models.Session{}, err
	}
	return models.Tokens{AccessToken: access}, session, nil
}

func (s *UserService) Logout(ctx context.Context, userID int64) error {
	return s.UserRepo.ClearSession(ctx, userID)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	return s.UserRepo.GetUserByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (models.User, error) {
	if upd.Phone != nil && *upd.Phone != "" && !validPhone(*upd.Phone) {
		return models.User{}, models.Invalid(phoneHint)
	}
	if upd.FirstName != nil {
		if err := maxLen("First name", *upd.FirstName, 150); err != nil {
			return models.User{}, err
		}
	}
	if upd.LastName != nil {
		if err := maxLen("Last name", *upd.LastName, 150); err != nil {
			return models.User{}, err
		}
	}
	return s.UserRepo.UpdateProfile(ctx, userID, upd)
}

func (s *UserService) ListUsers(ctx context.Context, f models.UserFilter) (models.ListResult[models.User], error) {
	if f.Role != "" && !models.ValidRole(f.Role) {
		return models.ListResult[models.User]{}, models.Invalid("Unknown role %q.", f.Role)
	}
	users, total, err := s.UserRepo.ListUsers(ctx, f)
	if err != nil {
		return models.ListResult[models.User]{}, err
	}
	return models.NewListResult(users, total), nil
}

// CleanExpiredSessions is run by the session cleaner.
func (s *UserService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	return s.UserRepo.ClearExpiredSessions(ctx, time.Now().UTC().Truncate(time.Second))
}

// CreateAccount creates a user of any role, including government staff that
// cannot self-register. Used by seeding.
func (s *UserService) CreateAccount(ctx context.Context, email, password, role string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case !validEmail(email):
		return models.User{}, models.Invalid("Enter a valid email address.")
	case !models.ValidRole(role):
		return models.User{}, models.Invalid("Unknown role %q.", role)
	case len(password) < 8:
		return models.User{}, models.Invalid("Password must be at least 8 characters long.")
	}
	if _, err := s.UserRepo.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	return s.UserRepo.CreateUser(ctx, models.User{
		Email:      email,
		Password:   string(hashedPassword),
		Role:       role,
		IsActive:   true,
		IsVerified: true,
	})
}
