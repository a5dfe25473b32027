package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	authutil "github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"gorm.io/gorm"
)

// ChangePasswordRequest represents a password change by the signed-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Me returns the authenticated user. Also mounted as /auth/verify.
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, fiber.Map{"user": user})
}

// Logout revokes the presented token.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		// bypass sessions have no token to revoke
		return response.SuccessWithMessage(c, "Successfully logged out", nil)
	}

	expiresAt := time.Now().Add(h.jwtManager.Expiry())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.blacklistService.RevokeToken(c.UserContext(), claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
		log.Errorf("revoking token %s: %v", claims.ID, err)
		return response.InternalServerError(c, "Failed to logout")
	}
	return response.SuccessWithMessage(c, "Successfully logged out", nil)
}

// ChangePassword replaces the caller's password and invalidates every token
// issued before the change.
// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil || user.ID == middleware.DevAdminID {
		return response.Forbidden(c, "Password cannot be changed for this account")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.ValidationError(c, map[string]string{"current_password": "Current password is incorrect"})
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.ValidationError(c, map[string]string{"new_password": err.Error()})
	}

	err = h.db.WithContext(c.UserContext()).Model(user).Updates(map[string]interface{}{
		"password_hash": hash,
		"token_version": gorm.Expr("token_version + 1"),
	}).Error
	if err != nil {
		log.Errorf("changing password for %s: %v", user.ID, err)
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.SuccessWithMessage(c, "Password changed, please sign in again", nil)
}
