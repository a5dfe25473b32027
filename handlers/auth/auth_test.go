package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mathwaksu-byte/MathwaV2/database/dbtest"
	handler "github.com/mathwaksu-byte/MathwaV2/handlers/auth"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	auth.Cost = bcrypt.MinCost
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type tokenData struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, *handler.AuthHandler) {
	t.Helper()
	db := dbtest.New(t)
	jwt := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "mathwa-test"})
	h := handler.NewAuthHandler(db, jwt, nil)
	mw := middleware.NewAuthMiddleware(jwt, db)

	app := fiber.New()
	app.Post("/auth/login", h.Login)
	app.Post("/auth/admin/login", h.AdminLogin)
	app.Post("/auth/signup", h.Signup)
	app.Get("/auth/me", mw.Required(), h.Me)
	app.Post("/auth/logout", mw.Required(), h.Logout)
	app.Put("/auth/password", mw.Required(), h.ChangePassword)
	return app, db, h
}

func createUser(t *testing.T, db *gorm.DB, email, password, role string) model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := model.User{Email: email, PasswordHash: hash, Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, path, email, password string) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, path, "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login %s = %d", email, status)
	}
	var data tokenData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Token == "" {
		t.Fatal("login returned no token")
	}
	return data.Token
}

func TestLogin(t *testing.T) {
	app, db, _ := setup(t)
	createUser(t, db, "admin@mathwa.com", "correct-horse", model.RoleAdmin)

	token := login(t, app, "/auth/login", " Admin@Mathwa.com ", "correct-horse")

	status, env := do(t, app, http.MethodGet, "/auth/me", token, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("me = %d", status)
	}

	var stored model.User
	db.First(&stored, "email = ?", "admin@mathwa.com")
	if stored.LastLoginAt == nil {
		t.Error("last_login_at not recorded")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	app, db, _ := setup(t)
	createUser(t, db, "admin@mathwa.com", "correct-horse", model.RoleAdmin)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"unknown email", "nobody@mathwa.com", "correct-horse"},
		{"wrong password", "admin@mathwa.com", "battery-staple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"email": tt.email, "password": tt.pass})
			if status != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", status)
			}
			if env.Error == nil || env.Error.Code != "INVALID_CREDENTIALS" {
				t.Errorf("error = %+v, want INVALID_CREDENTIALS", env.Error)
			}
		})
	}
}

func TestLoginValidation(t *testing.T) {
	app, _, _ := setup(t)
	status, env := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email"})
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
}

func TestAdminLoginRejectsStudents(t *testing.T) {
	app, db, _ := setup(t)
	createUser(t, db, "student@mathwa.com", "student-pass", model.RoleStudent)
	createUser(t, db, "editor@mathwa.com", "editor-pass", model.RoleEditor)

	status, _ := do(t, app, http.MethodPost, "/auth/admin/login", "", map[string]string{"email": "student@mathwa.com", "password": "student-pass"})
	if status != http.StatusForbidden {
		t.Errorf("student admin login = %d, want 403", status)
	}
	login(t, app, "/auth/admin/login", "editor@mathwa.com", "editor-pass")
}

func TestSignup(t *testing.T) {
	app, _, _ := setup(t)
	body := map[string]string{"email": "new@student.com", "password": "long-enough", "full_name": "New Student"}

	status, env := do(t, app, http.MethodPost, "/auth/signup", "", body)
	if status != http.StatusCreated {
		t.Fatalf("signup = %d", status)
	}
	var data tokenData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.User.Role != model.RoleStudent {
		t.Errorf("role = %q, want student", data.User.Role)
	}

	status, _ = do(t, app, http.MethodPost, "/auth/signup", "", body)
	if status != http.StatusConflict {
		t.Errorf("duplicate signup = %d, want 409", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app, db, _ := setup(t)
	createUser(t, db, "admin@mathwa.com", "correct-horse", model.RoleAdmin)
	token := login(t, app, "/auth/login", "admin@mathwa.com", "correct-horse")

	if status, _ := do(t, app, http.MethodPost, "/auth/logout", token, nil); status != http.StatusOK {
		t.Fatalf("logout = %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/auth/me", token, nil); status != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", status)
	}
}

func TestChangePasswordInvalidatesTokens(t *testing.T) {
	app, db, _ := setup(t)
	createUser(t, db, "admin@mathwa.com", "correct-horse", model.RoleAdmin)
	token := login(t, app, "/auth/login", "admin@mathwa.com", "correct-horse")

	status, _ := do(t, app, http.MethodPut, "/auth/password", token, map[string]string{"current_password": "wrong-one", "new_password": "brand-new-pass"})
	if status != http.StatusBadRequest {
		t.Fatalf("wrong current password = %d, want 400", status)
	}

	status, _ = do(t, app, http.MethodPut, "/auth/password", token, map[string]string{"current_password": "correct-horse", "new_password": "brand-new-pass"})
	if status != http.StatusOK {
		t.Fatalf("change password = %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/auth/me", token, nil); status != http.StatusUnauthorized {
		t.Errorf("old token after change = %d, want 401", status)
	}
	login(t, app, "/auth/login", "admin@mathwa.com", "brand-new-pass")
}

func TestLocalAdminLogin(t *testing.T) {
	app, _, h := setup(t)
	h.EnableLocalAdmin(handler.LocalAdmin{Email: "admin@mathwa.com", Password: "local-pass"})

	login(t, app, "/auth/login", "admin@mathwa.com", "local-pass")

	status, _ := do(t, app, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@mathwa.com", "password": "guess"})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong bypass password = %d, want 401", status)
	}
}
