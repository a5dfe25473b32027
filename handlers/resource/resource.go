// Package resource builds the CRUD handlers shared by the simple content
// resources: a public read side filtered to active rows and an admin side
// with pagination, search and writes.
package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

// Input is a validated request body that knows how to copy itself onto an
// entity.
type Input[T any] interface {
	Apply(entity *T)
}

// Checker is implemented by update inputs that must be compared with the
// stored row before they are applied.
type Checker[T any] interface {
	Check(entity *T) FieldErrors
}

// FieldErrors is returned by hooks to reject a request with a 400 naming
// the offending fields.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Config describes one resource.
type Config[T any] struct {
	// Name is the singular display name used in messages, e.g. "FAQ".
	Name string

	// PublicKey is the column the public single-record route looks up by.
	// Defaults to "id".
	PublicKey string

	// ActiveColumn filters the public side. Empty disables the filter.
	ActiveColumn string

	// Filters maps query parameters to columns compared by equality.
	Filters map[string]string

	// Search lists columns matched by ?search on the admin list.
	Search []string

	// Order is the ORDER BY clause for lists.
	Order string

	DefaultLimit int

	// Prepare runs after the input is applied and before the row is saved.
	// Returning FieldErrors yields a 400.
	Prepare func(ctx context.Context, db *gorm.DB, entity *T) error

	// AfterDelete runs once the row is gone, outside any transaction.
	AfterDelete func(ctx context.Context, entity *T)
}

// Handler serves one resource. C is the create body and U the update body.
type Handler[T any, C Input[T], U Input[T]] struct {
	db        *gorm.DB
	validator *validation.Validator
	cfg       Config[T]
}

func New[T any, C Input[T], U Input[T]](db *gorm.DB, cfg Config[T]) *Handler[T, C, U] {
	if cfg.PublicKey == "" {
		cfg.PublicKey = "id"
	}
	if cfg.Order == "" {
		cfg.Order = "created_at DESC"
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	return &Handler[T, C, U]{
		db:        db,
		validator: validation.NewValidator(),
		cfg:       cfg,
	}
}

// DB returns the handle the resource reads and writes through.
func (h *Handler[T, C, U]) DB() *gorm.DB {
	return h.db
}

// Register mounts the routes on r. Admin routes are registered before the
// public "/:key" route so "admin" is never taken for a key.
func (h *Handler[T, C, U]) Register(r fiber.Router, admin ...fiber.Handler) {
	r.Get("/", h.ListPublic)

	group := r.Group("/admin", admin...)
	group.Get("/", h.ListAdmin)
	group.Get("/:id", h.GetAdmin)
	group.Post("/", h.Create)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)

	r.Get("/:key", h.GetPublic)
}

func (h *Handler[T, C, U]) applyFilters(c *fiber.Ctx, q *gorm.DB) *gorm.DB {
	for param, column := range h.cfg.Filters {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			q = q.Where(column+" = ?", v)
		}
	}
	return q
}

// ListPublic returns every active row matching the equality filters.
func (h *Handler[T, C, U]) ListPublic(c *fiber.Ctx) error {
	q := h.db.WithContext(c.UserContext()).Model(new(T))
	if h.cfg.ActiveColumn != "" {
		q = q.Where(h.cfg.ActiveColumn+" = ?", true)
	}
	q = h.applyFilters(c, q)

	items := make([]T, 0)
	if err := q.Order(h.cfg.Order).Find(&items).Error; err != nil {
		log.Errorf("list %s: %v", h.cfg.Name, err)
		return response.InternalServerError(c, fmt.Sprintf("Failed to fetch %s records", h.cfg.Name))
	}
	return response.List(c, items)
}

// GetPublic returns one active row by the public key.
func (h *Handler[T, C, U]) GetPublic(c *fiber.Ctx) error {
	q := h.db.WithContext(c.UserContext()).Where(h.cfg.PublicKey+" = ?", c.Params("key"))
	if h.cfg.ActiveColumn != "" {
		q = q.Where(h.cfg.ActiveColumn+" = ?", true)
	}

	var entity T
	if err := q.First(&entity).Error; err != nil {
		return h.fetchError(c, err)
	}
	return response.Success(c, entity)
}

// ListAdmin returns a page of all rows, active or not.
func (h *Handler[T, C, U]) ListAdmin(c *fiber.Ctx) error {
	page := query.ParsePage(c, h.cfg.DefaultLimit)

	q := h.db.WithContext(c.UserContext()).Model(new(T))
	q = h.applyFilters(c, q)

	if h.cfg.ActiveColumn != "" {
		if active, ok := query.ParseBool(c.Query("is_active")); ok {
			q = q.Where(h.cfg.ActiveColumn+" = ?", active)
		}
	}

	if term := strings.TrimSpace(c.Query("search")); term != "" && len(h.cfg.Search) > 0 {
		pattern := query.LikePattern(term)
		clauses := make([]string, len(h.cfg.Search))
		args := make([]interface{}, len(h.cfg.Search))
		for i, col := range h.cfg.Search {
			clauses[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
			args[i] = pattern
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Errorf("count %s: %v", h.cfg.Name, err)
		return response.InternalServerError(c, fmt.Sprintf("Failed to count %s records", h.cfg.Name))
	}

	items := make([]T, 0)
	if err := q.Order(h.cfg.Order).Limit(page.Limit).Offset(page.Offset()).Find(&items).Error; err != nil {
		log.Errorf("list %s: %v", h.cfg.Name, err)
		return response.InternalServerError(c, fmt.Sprintf("Failed to fetch %s records", h.cfg.Name))
	}

	return response.Paginated(c, items, response.CalculatePagination(page.Page, page.Limit, total))
}

// GetAdmin returns one row by id regardless of its active flag.
func (h *Handler[T, C, U]) GetAdmin(c *fiber.Ctx) error {
	var entity T
	if err := h.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&entity).Error; err != nil {
		return h.fetchError(c, err)
	}
	return response.Success(c, entity)
}

// Create validates the body, applies it to a new row and inserts it.
func (h *Handler[T, C, U]) Create(c *fiber.Ctx) error {
	var req C
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	var entity T
	req.Apply(&entity)
	return h.save(c, &entity, true)
}

// Update applies the present fields of the body to an existing row.
func (h *Handler[T, C, U]) Update(c *fiber.Ctx) error {
	var req U
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	var entity T
	if err := h.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&entity).Error; err != nil {
		return h.fetchError(c, err)
	}

	if checker, ok := any(req).(Checker[T]); ok {
		if fields := checker.Check(&entity); len(fields) > 0 {
			return response.ValidationError(c, fields)
		}
	}

	req.Apply(&entity)
	return h.save(c, &entity, false)
}

// CreateEntity runs the Prepare hook on an already built entity and inserts
// it. Handlers that accept other body formats use it.
func (h *Handler[T, C, U]) CreateEntity(c *fiber.Ctx, entity *T) error {
	return h.save(c, entity, true)
}

func (h *Handler[T, C, U]) save(c *fiber.Ctx, entity *T, create bool) error {
	ctx := c.UserContext()
	if h.cfg.Prepare != nil {
		if err := h.cfg.Prepare(ctx, h.db.WithContext(ctx), entity); err != nil {
			var fields FieldErrors
			if errors.As(err, &fields) {
				return response.ValidationError(c, fields)
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "")
			}
			log.Errorf("prepare %s: %v", h.cfg.Name, err)
			return response.InternalServerError(c, "")
		}
	}

	db := h.db.WithContext(ctx)
	var err error
	if create {
		err = db.Create(entity).Error
	} else {
		err = db.Save(entity).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, fmt.Sprintf("%s already exists", h.cfg.Name))
		}
		log.Errorf("save %s: %v", h.cfg.Name, err)
		return response.InternalServerError(c, fmt.Sprintf("Failed to save %s", h.cfg.Name))
	}

	if create {
		return response.CreatedWithMessage(c, fmt.Sprintf("%s created successfully", h.cfg.Name), entity)
	}
	return response.SuccessWithMessage(c, fmt.Sprintf("%s updated successfully", h.cfg.Name), entity)
}

// Delete removes a row, then runs AfterDelete.
func (h *Handler[T, C, U]) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var entity T
	if err := h.db.WithContext(ctx).Where("id = ?", c.Params("id")).First(&entity).Error; err != nil {
		return h.fetchError(c, err)
	}
	if err := h.db.WithContext(ctx).Delete(&entity).Error; err != nil {
		log.Errorf("delete %s: %v", h.cfg.Name, err)
		return response.InternalServerError(c, fmt.Sprintf("Failed to delete %s", h.cfg.Name))
	}

	if h.cfg.AfterDelete != nil {
		h.cfg.AfterDelete(ctx, &entity)
	}
	return response.SuccessWithMessage(c, fmt.Sprintf("%s deleted successfully", h.cfg.Name), nil)
}

func (h *Handler[T, C, U]) fetchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, fmt.Sprintf("%s not found", h.cfg.Name))
	}
	log.Errorf("fetch %s: %v", h.cfg.Name, err)
	return response.InternalServerError(c, fmt.Sprintf("Failed to fetch %s", h.cfg.Name))
}
