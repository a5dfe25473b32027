package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"gorm.io/gorm"
)

// DevAdminID identifies the synthetic admin used by the local bypass.
const DevAdminID = "dev-admin"

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
	bypass           *model.User
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// EnableLocalBypass makes every request authenticate as a fixed admin
// without checking any credential. Only for local development; config
// validation refuses it in production.
func (m *AuthMiddleware) EnableLocalBypass(email string) {
	log.Warn("USE_LOCAL_ADMIN is enabled: all requests are treated as admin")
	m.bypass = DevAdmin(email)
}

// BypassEnabled reports whether the local admin bypass is active.
func (m *AuthMiddleware) BypassEnabled() bool {
	return m.bypass != nil
}

// DevAdmin builds the synthetic bypass identity.
func DevAdmin(email string) *model.User {
	return &model.User{
		Base:     model.Base{ID: DevAdminID},
		Email:    email,
		FullName: "Local Admin",
		Role:     model.RoleAdmin,
	}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := m.authenticate(c); !ok {
			return err
		}
		return c.Next()
	}
}

// RequireRole must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := GetUserRole(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin authenticates the request and admits the admin and editor
// roles.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := m.authenticate(c); !ok {
			return err
		}

		user, _ := GetUser(c)
		if user == nil || !user.IsStaff() {
			return response.Forbidden(c, "Admin access required")
		}

		return c.Next()
	}
}

// authenticate resolves the caller. When it returns false the error
// response has already been written and err is the write result.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (bool, error) {
	if m.bypass != nil {
		setIdentity(c, m.bypass, nil)
		return true, nil
	}

	tokenString, ok := BearerToken(c)
	if !ok {
		return false, response.Unauthorized(c, "Missing or invalid authorization token")
	}

	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return false, response.Unauthorized(c, "Token has expired")
		}
		return false, response.Unauthorized(c, "Invalid token")
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		log.Errorf("blacklist lookup failed: %v", err)
		return false, response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return false, response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := m.db.WithContext(c.UserContext()).First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, response.Unauthorized(c, "User not found")
		}
		log.Errorf("loading user %s: %v", claims.UserID, err)
		return false, response.InternalServerError(c, "Failed to load user")
	}

	if user.TokenVersion != claims.TokenVersion {
		return false, response.Unauthorized(c, "Token has been invalidated")
	}

	setIdentity(c, &user, claims)
	return true, nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setIdentity(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	c.Locals("user_id", user.ID)
	c.Locals("user_email", user.Email)
	c.Locals("user_role", user.Role)
	c.Locals("user", user)
	if claims != nil {
		c.Locals("claims", claims)
		c.Locals("token_jti", claims.ID)
	}
}

func GetUserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("user_id").(string)
	return id, ok && id != ""
}

func GetUserRole(c *fiber.Ctx) (string, bool) {
	role, ok := c.Locals("user_role").(string)
	return role, ok
}

func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals("user").(*model.User)
	return u, ok
}

func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals("claims").(*auth.Claims)
	return claims, ok
}
