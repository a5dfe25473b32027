package application

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
)

var errBadValue = errors.New("unrecognised value")

// FlexBool accepts JSON booleans and the strings HTML forms post for a
// checkbox ("true", "on", "1", ...).
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*b = false
	case bool:
		*b = FlexBool(v)
	case string:
		parsed, ok := query.ParseBool(v)
		if !ok && strings.TrimSpace(v) != "" {
			return errBadValue
		}
		*b = FlexBool(parsed)
	default:
		return errBadValue
	}
	return nil
}

// FlexInt accepts a JSON number or a numeric string. Null or "" leave it
// unset.
type FlexInt struct {
	Value *int
	Raw   string
}

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
	case float64:
		n.set(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		n.set(v)
	default:
		n.Raw = string(data)
	}
	return nil
}

func (n *FlexInt) set(s string) {
	s = strings.TrimSpace(s)
	n.Raw = s
	n.Value = nil
	if s == "" {
		return
	}
	if v, err := strconv.Atoi(s); err == nil {
		n.Value = &v
	}
}

// Invalid reports a value that was present but not an integer.
func (n FlexInt) Invalid() bool {
	return n.Raw != "" && n.Value == nil
}

// CreateApplicationRequest is the public apply form. Name may arrive as
// name or full_name.
type CreateApplicationRequest struct {
	Name                    string   `json:"name" validate:"max=255"`
	FullName                string   `json:"full_name" validate:"max=255"`
	Email                   string   `json:"email" validate:"required,email,max=255"`
	Phone                   string   `json:"phone" validate:"required,max=30"`
	City                    string   `json:"city" validate:"required,max=100"`
	NEETQualified           FlexBool `json:"neet_qualified"`
	PreferredUniversitySlug string   `json:"preferred_university_slug" validate:"max=160"`
	PreferredYear           FlexInt  `json:"preferred_year"`
	MarksheetURL            string   `json:"marksheet_url" validate:"omitempty,url"`
	MarksheetPath           string   `json:"marksheet_path" validate:"max=500"`
}

// parseApplication reads a JSON body or a form post.
func parseApplication(c *fiber.Ctx) (CreateApplicationRequest, error) {
	var req CreateApplicationRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return req, err
		}
	} else {
		req.Name = c.FormValue("name")
		req.FullName = c.FormValue("full_name")
		req.Email = c.FormValue("email")
		req.Phone = c.FormValue("phone")
		req.City = c.FormValue("city")
		neet, _ := query.ParseBool(c.FormValue("neet_qualified"))
		req.NEETQualified = FlexBool(neet)
		req.PreferredUniversitySlug = c.FormValue("preferred_university_slug")
		req.PreferredYear.set(c.FormValue("preferred_year"))
		req.MarksheetURL = c.FormValue("marksheet_url")
		req.MarksheetPath = c.FormValue("marksheet_path")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.FullName = validation.SanitizeString(req.FullName)
	req.Email = validation.NormalizeEmail(req.Email)
	req.Phone = validation.SanitizeString(req.Phone)
	req.City = validation.SanitizeString(req.City)
	req.PreferredUniversitySlug = strings.TrimSpace(req.PreferredUniversitySlug)
	req.MarksheetURL = strings.TrimSpace(req.MarksheetURL)
	req.MarksheetPath = strings.TrimSpace(req.MarksheetPath)
	return req, nil
}

// fieldErrors adds the checks struct tags cannot express.
func (r CreateApplicationRequest) fieldErrors(v *validation.Validator) map[string]string {
	fields := v.Validate(r)
	add := func(k, msg string) {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[k] = msg
	}
	if r.PreferredYear.Invalid() {
		add("preferred_year", "preferred_year must be an integer")
	} else if y := r.PreferredYear.Value; y != nil && (*y < 1 || *y > 6) {
		add("preferred_year", "preferred_year must be between 1 and 6")
	}
	return fields
}

func (r CreateApplicationRequest) displayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.FullName
}
