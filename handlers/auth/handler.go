// Package auth serves sign-in, sign-up and session endpoints.
package auth

import (
	"github.com/mathwaksu-byte/MathwaV2/model"
	authutil "github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

// LocalAdmin holds the fixed credentials accepted while the local admin
// bypass is on.
type LocalAdmin struct {
	Email    string
	Password string
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	localAdmin           *LocalAdmin
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForce *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForce,
		validator:            validation.NewValidator(),
	}
}

// EnableLocalAdmin switches login to the bypass credentials.
func (h *AuthHandler) EnableLocalAdmin(admin LocalAdmin) {
	h.localAdmin = &admin
}

// TokenResponse is returned by every endpoint that signs a user in.
type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"`
	User      *model.User `json:"user"`
}

func (h *AuthHandler) issue(user *model.User) (*TokenResponse, error) {
	token, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Token:     token,
		ExpiresIn: int(h.jwtManager.Expiry().Seconds()),
		User:      user,
	}, nil
}
