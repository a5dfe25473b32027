package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	authutil "github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents a student registration request
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
}

func invalidCredentials(c *fiber.Ctx) error {
	return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
}

// Login signs in any account.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.login(c, false)
}

// AdminLogin signs in staff accounts only.
// POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, true)
}

func (h *AuthHandler) login(c *fiber.Ctx, staffOnly bool) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = validation.NormalizeEmail(req.Email)
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	if h.localAdmin != nil {
		return h.localLogin(c, req)
	}

	ctx := c.UserContext()
	ip := c.IP()

	if h.bruteForceProtection.IsEmailLocked(ctx, req.Email) {
		return response.TooManyRequests(c, "Account temporarily locked due to failed login attempts")
	}

	user, err := h.authenticate(c, req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.bruteForceProtection.RecordFailedAttempt(ctx, ip, req.Email)
			return invalidCredentials(c)
		}
		log.Errorf("login lookup for %s: %v", req.Email, err)
		return response.InternalServerError(c, "Failed to sign in")
	}

	if staffOnly && !user.IsStaff() {
		return response.Forbidden(c, "Admin access required")
	}

	h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip, req.Email)

	now := time.Now().UTC()
	if err := h.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		log.Warnf("recording login for %s: %v", user.ID, err)
	}

	res, err := h.issue(user)
	if err != nil {
		log.Errorf("signing token: %v", err)
		return response.InternalServerError(c, "Failed to generate access token")
	}
	return response.Success(c, res)
}

func (h *AuthHandler) authenticate(c *fiber.Ctx, req LoginRequest) (*model.User, error) {
	var user model.User
	err := h.db.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (h *AuthHandler) localLogin(c *fiber.Ctx, req LoginRequest) error {
	admin := h.localAdmin
	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(validation.NormalizeEmail(admin.Email))) == 1
	passOK := admin.Password != "" && subtle.ConstantTimeCompare([]byte(req.Password), []byte(admin.Password)) == 1
	if !emailOK || !passOK {
		return invalidCredentials(c)
	}

	res, err := h.issue(middleware.DevAdmin(admin.Email))
	if err != nil {
		log.Errorf("signing local admin token: %v", err)
		return response.InternalServerError(c, "Failed to generate access token")
	}
	return response.Success(c, res)
}

// Signup registers a student account and signs it in.
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = validation.NormalizeEmail(req.Email)
	req.FullName = validation.SanitizeString(req.FullName)
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.ValidationError(c, map[string]string{"password": err.Error()})
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         model.RoleStudent,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "User with this email already exists")
		}
		log.Errorf("signup %s: %v", req.Email, err)
		return response.InternalServerError(c, "Failed to create user")
	}

	res, err := h.issue(&user)
	if err != nil {
		log.Errorf("signing token: %v", err)
		return response.InternalServerError(c, "Failed to generate access token")
	}
	return response.CreatedWithMessage(c, "Account created successfully", res)
}
