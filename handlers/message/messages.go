package message

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

// MessageHandler handles contact form submissions
type MessageHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	leads     *services.LeadDispatcher
}

func NewMessageHandler(db *gorm.DB, leads *services.LeadDispatcher) *MessageHandler {
	return &MessageHandler{
		db:        db,
		validator: validation.NewValidator(),
		leads:     leads,
	}
}

type CreateMessageRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=255"`
	Email   string `json:"email" form:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" form:"phone" validate:"max=30"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

type MarkReadRequest struct {
	IsRead *bool `json:"is_read"`
}

func (h *MessageHandler) store(c *fiber.Ctx, name, email, phone, body string) (*model.Message, error) {
	msg := model.Message{
		Name:    validation.SanitizeString(name),
		Email:   validation.NormalizeEmail(email),
		Phone:   validation.SanitizeString(phone),
		Message: validation.SanitizeString(body),
	}
	if err := h.db.WithContext(c.UserContext()).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = validation.SanitizeString(*f)
	}
}

// validate checks a trimmed request. The contact form also needs a phone.
func (h *MessageHandler) validate(req CreateMessageRequest, requirePhone bool) map[string]string {
	fields := h.validator.Validate(req)
	if requirePhone && req.Phone == "" {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields["phone"] = "phone is required"
	}
	return fields
}

// CreateMessage handles POST /api/messages
func (h *MessageHandler) CreateMessage(c *fiber.Ctx) error {
	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	trimAll(&req.Name, &req.Email, &req.Phone, &req.Message)
	if fields := h.validate(req, false); fields != nil {
		return response.ValidationError(c, fields)
	}

	msg, err := h.store(c, req.Name, req.Email, req.Phone, req.Message)
	if err != nil {
		log.Errorf("create message: %v", err)
		return response.InternalServerError(c, "Failed to send message")
	}
	return response.CreatedWithMessage(c, "Message sent successfully", msg)
}

// Contact handles POST /api/messages/contact
func (h *MessageHandler) Contact(c *fiber.Ctx) error {
	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	trimAll(&req.Name, &req.Email, &req.Phone, &req.Message)
	if fields := h.validate(req, true); fields != nil {
		return response.ValidationError(c, fields)
	}

	msg, err := h.store(c, req.Name, req.Email, req.Phone, req.Message)
	if err != nil {
		log.Errorf("create contact message: %v", err)
		return response.InternalServerError(c, "Failed to send message")
	}

	h.leads.Dispatch(services.ContactEvent(msg))
	return response.CreatedWithMessage(c, "Thank you for contacting us. We will get back to you soon.", msg)
}

// ListMessages handles GET /api/messages/admin
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	page := query.ParsePage(c, 20)
	q := h.db.WithContext(c.UserContext()).Model(&model.Message{})
	if read, ok := query.ParseBool(c.Query("is_read")); ok {
		q = q.Where("is_read = ?", read)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Errorf("count messages: %v", err)
		return response.InternalServerError(c, "Failed to count messages")
	}

	messages := make([]model.Message, 0)
	if err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&messages).Error; err != nil {
		log.Errorf("list messages: %v", err)
		return response.InternalServerError(c, "Failed to fetch messages")
	}

	return response.Paginated(c, messages, response.CalculatePagination(page.Page, page.Limit, total))
}

func (h *MessageHandler) find(c *fiber.Ctx) (*model.Message, error) {
	var msg model.Message
	err := h.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&msg).Error
	return &msg, err
}

func fetchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "Message not found")
	}
	log.Errorf("fetch message: %v", err)
	return response.InternalServerError(c, "Failed to fetch message")
}

// MarkRead handles PATCH /api/messages/admin/:id/read
// Setting the flag to the value it already has is a no-op.
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	var req MarkReadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	read := req.IsRead == nil || *req.IsRead

	msg, err := h.find(c)
	if err != nil {
		return fetchError(c, err)
	}

	if msg.IsRead != read {
		if err := h.db.WithContext(c.UserContext()).Model(msg).Update("is_read", read).Error; err != nil {
			log.Errorf("mark message %s: %v", msg.ID, err)
			return response.InternalServerError(c, "Failed to update message")
		}
		msg.IsRead = read
	}

	return response.SuccessWithMessage(c, "Message updated", msg)
}

// DeleteMessage handles DELETE /api/messages/admin/:id
func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	msg, err := h.find(c)
	if err != nil {
		return fetchError(c, err)
	}
	if err := h.db.WithContext(c.UserContext()).Delete(msg).Error; err != nil {
		log.Errorf("delete message %s: %v", msg.ID, err)
		return response.InternalServerError(c, "Failed to delete message")
	}
	return response.SuccessWithMessage(c, "Message deleted successfully", nil)
}
