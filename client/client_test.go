package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/mathwaksu-byte/MathwaV2/api"
	"github.com/mathwaksu-byte/MathwaV2/client"
	"github.com/mathwaksu-byte/MathwaV2/config"
	"github.com/mathwaksu-byte/MathwaV2/database/dbtest"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/router"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"gorm.io/gorm"
)

const (
	adminEmail    = "ops@mathwa.com"
	adminPassword = "Admin@12345"
)

func newServer(t *testing.T) (*client.Client, *gorm.DB) {
	t.Helper()

	store := dbtest.Store(t)
	dir := t.TempDir()
	provider, err := storage.NewLocalProvider(dir, "http://localhost/files")
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := store.DB().Create(&model.User{Email: adminEmail, PasswordHash: hash, FullName: "Ops", Role: model.RoleAdmin}).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	leads := services.NewLeadDispatcher(time.Second)
	t.Cleanup(leads.Wait)

	app := api.NewAPIServer(":0", api.ServerConfig{}).GetEngine()
	router.SetupRoutes(app, router.Dependencies{
		Store:   store,
		Uploads: services.NewUploadService(provider, services.UploadConfig{}),
		JWT:     auth.NewJWTManager(auth.JWTConfig{Secret: "client-test", Expiry: time.Hour, Issuer: "mathwa-test"}),
		Leads:   leads,
		Config: &config.EnvironmentVariable{
			GO_ENV:            "test",
			STORAGE_DRIVER:    "local",
			STORAGE_LOCAL_DIR: dir,
		},
	})

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	return client.New(srv.URL + "/api/"), store.DB()
}

func TestLoginStoresToken(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	if _, err := c.Me(ctx); err != client.ErrNoToken {
		t.Fatalf("Me before login = %v, want ErrNoToken", err)
	}

	s, err := c.Login(ctx, adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token == "" || c.Token() != s.Token {
		t.Fatalf("token not kept: %q vs %q", s.Token, c.Token())
	}

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Email != adminEmail || me.Role != model.RoleAdmin {
		t.Errorf("me = %+v", me)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if c.Token() != "" {
		t.Errorf("token kept after logout")
	}
}

func TestLoginFailureIsAPIError(t *testing.T) {
	c, _ := newServer(t)

	_, err := c.Login(context.Background(), adminEmail, "wrong-password")
	if client.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("Login with bad password = %v", err)
	}
	apiErr, ok := err.(*client.APIError)
	if !ok || apiErr.Code != "INVALID_CREDENTIALS" {
		t.Errorf("error = %#v", err)
	}
}

func TestResourceRoundTrip(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()
	if _, err := c.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	faqs := c.FAQs()
	created, err := faqs.Create(ctx, map[string]interface{}{"question": "Is NEET required?", "answer": "Yes", "is_active": true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created without id: %+v", created)
	}

	hidden, err := faqs.Create(ctx, map[string]interface{}{"question": "Draft?", "answer": "Later", "is_active": false})
	if err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	public, err := faqs.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(public) != 1 || public[0].ID != created.ID {
		t.Errorf("public list = %+v", public)
	}

	all, page, err := faqs.AdminList(ctx, client.ListOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("AdminList: %v", err)
	}
	if len(all) != 2 || page == nil || page.Total != 2 {
		t.Errorf("admin list = %d rows, page %+v", len(all), page)
	}

	updated, err := faqs.Update(ctx, hidden.ID, map[string]interface{}{"answer": "Soon"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Answer != "Soon" || updated.Question != "Draft?" {
		t.Errorf("updated = %+v", updated)
	}

	if err := faqs.Delete(ctx, hidden.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := faqs.AdminGet(ctx, hidden.ID); client.StatusOf(err) != http.StatusNotFound {
		t.Errorf("get after delete = %v", err)
	}
}

func TestLeadsFlow(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	app, err := c.Leads().Apply(ctx, map[string]interface{}{
		"full_name": "Asha",
		"email":     "asha@example.com",
		"phone":     "9999999999",
		"city":      "Indore",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.Status != model.ApplicationPending {
		t.Errorf("status = %q", app.Status)
	}

	if _, _, err := c.Leads().Applications(ctx, client.ListOptions{}); err != client.ErrNoToken {
		t.Fatalf("Applications before login = %v", err)
	}

	if _, err := c.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	got, err := c.Leads().SetStatus(ctx, app.ID, model.ApplicationApproved, "called back")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got.Status != model.ApplicationApproved || got.Notes != "called back" {
		t.Errorf("updated application = %+v", got)
	}

	_, err = c.Leads().SetStatus(ctx, app.ID, "archived", "")
	if client.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("bad status = %v", err)
	}

	stats, err := c.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalApplications != 1 || stats.ApprovedApplications != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestUploadAndDelete(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()
	if _, err := c.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	obj, err := c.Upload(ctx, "notes.pdf", strings.NewReader("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"), storage.BucketDocuments, "brochures")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if obj.Bucket != storage.BucketDocuments || !strings.HasPrefix(obj.Path, "brochures/") {
		t.Errorf("object = %+v", obj)
	}

	if err := c.DeleteUpload(ctx, obj.Bucket, obj.Path); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}
}
