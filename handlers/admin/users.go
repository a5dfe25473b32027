package admin

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

// CreateUserRequest represents the request body for creating a staff account
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=255"`
	Role     string `json:"role" validate:"required,oneof=admin editor"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitnil,max=255"`
	Role     *string `json:"role" validate:"omitnil,oneof=admin editor student"`
}

// ResetPasswordRequest represents the request for admin password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ListUsers retrieves accounts with pagination and filters
// GET /admin/users
func ListUsers(c *fiber.Ctx, store database.Storage) error {
	page := query.ParsePage(c, 20)
	q := store.DB().WithContext(c.UserContext()).Model(&model.User{})

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := query.LikePattern(search)
		q = q.Where("LOWER(full_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	users := make([]model.User, 0)
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page.Page, page.Limit, total))
}

// CreateUser adds a staff account
// POST /admin/users
func CreateUser(c *fiber.Ctx, store database.Storage) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = validation.NormalizeEmail(req.Email)
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.ValidationError(c, map[string]string{"password": err.Error()})
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     validation.SanitizeString(req.FullName),
		Role:         req.Role,
	}
	if err := store.DB().WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "A user with this email already exists")
		}
		log.Errorf("create user: %v", err)
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.CreatedWithMessage(c, "User created successfully", user)
}

func findUser(c *fiber.Ctx, db *gorm.DB) (*model.User, error) {
	var user model.User
	err := db.Where("id = ?", c.Params("id")).First(&user).Error
	return &user, err
}

func userError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "User not found")
	}
	return response.InternalServerError(c, "Failed to fetch user")
}

// UpdateUser changes a user's name or role. Changing the role invalidates
// the user's tokens.
// PUT /admin/users/:id
func UpdateUser(c *fiber.Ctx, store database.Storage) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	db := store.DB().WithContext(c.UserContext())
	user, err := findUser(c, db)
	if err != nil {
		return userError(c, err)
	}

	if req.Role != nil && *req.Role != user.Role {
		if self, _ := middleware.GetUserID(c); self == user.ID {
			return response.Forbidden(c, "You cannot change your own role")
		}
		user.Role = *req.Role
		user.TokenVersion++
	}
	if req.FullName != nil {
		user.FullName = validation.SanitizeString(*req.FullName)
	}

	if err := db.Save(user).Error; err != nil {
		log.Errorf("update user %s: %v", user.ID, err)
		return response.InternalServerError(c, "Failed to update user")
	}
	return response.SuccessWithMessage(c, "User updated successfully", user)
}

// ResetUserPassword sets a new password and signs the user out everywhere
// POST /admin/users/:id/reset-password
func ResetUserPassword(c *fiber.Ctx, store database.Storage) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	db := store.DB().WithContext(c.UserContext())
	user, err := findUser(c, db)
	if err != nil {
		return userError(c, err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return response.ValidationError(c, map[string]string{"new_password": err.Error()})
	}

	err = db.Model(user).Updates(map[string]interface{}{
		"password_hash": hash,
		"token_version": gorm.Expr("token_version + 1"),
	}).Error
	if err != nil {
		log.Errorf("reset password for %s: %v", user.ID, err)
		return response.InternalServerError(c, "Failed to reset password")
	}

	return response.SuccessWithMessage(c, "Password reset successfully", nil)
}

// DeleteUser removes an account other than the caller's own
// DELETE /admin/users/:id
func DeleteUser(c *fiber.Ctx, store database.Storage) error {
	db := store.DB().WithContext(c.UserContext())
	user, err := findUser(c, db)
	if err != nil {
		return userError(c, err)
	}

	if self, _ := middleware.GetUserID(c); self == user.ID {
		return response.Forbidden(c, "You cannot delete your own account")
	}

	if err := db.Delete(user).Error; err != nil {
		log.Errorf("delete user %s: %v", user.ID, err)
		return response.InternalServerError(c, "Failed to delete user")
	}
	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
