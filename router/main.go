package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mathwaksu-byte/MathwaV2/config"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/handlers"
	admin_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/admin"
	application_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/application"
	auth_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/auth"
	"github.com/mathwaksu-byte/MathwaV2/handlers/catalog"
	gallery_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/gallery"
	message_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/message"
	university_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/university"
	upload_handlers "github.com/mathwaksu-byte/MathwaV2/handlers/upload"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/utils"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/cache"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
)

// FilesPrefix is where the local storage driver's root is served.
const FilesPrefix = "/files"

// Dependencies are the clients the routes are built from. Cache and Leads
// may be nil.
type Dependencies struct {
	Store   database.Storage
	Uploads *services.UploadService
	JWT     *auth.JWTManager
	Cache   *cache.RedisCache
	Leads   *services.LeadDispatcher
	Config  *config.EnvironmentVariable
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	store := deps.Store
	db := store.DB()
	env := deps.Config

	leads := deps.Leads
	if leads == nil {
		leads = services.NewLeadDispatcher(5 * time.Second)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Cache)
	}

	authMiddleware := middleware.NewAuthMiddleware(deps.JWT, db)
	authHandler := auth_handlers.NewAuthHandler(db, deps.JWT, bruteForceProtection)
	if env.USE_LOCAL_ADMIN {
		authMiddleware.EnableLocalBypass(env.LOCAL_ADMIN_EMAIL)
		authHandler.EnableLocalAdmin(auth_handlers.LocalAdmin{
			Email:    env.LOCAL_ADMIN_EMAIL,
			Password: env.LOCAL_ADMIN_PASSWORD,
		})
	}

	universityHandler := university_handlers.NewUniversityHandler(db, deps.Uploads)
	applicationHandler := application_handlers.NewApplicationHandler(db, leads, deps.Uploads)
	messageHandler := message_handlers.NewMessageHandler(db, leads)
	galleryHandler := gallery_handlers.NewGalleryHandler(db, deps.Uploads)
	uploadHandler := upload_handlers.NewUploadHandler(deps.Uploads)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_PER_MINUTE,
		RateLimitWindow:   time.Minute,
		DisableLogger:     env.GO_ENV == "test",
	})

	if env.STORAGE_DRIVER == "local" {
		app.Static(FilesPrefix, env.STORAGE_LOCAL_DIR)
	}

	app.Get("/ping", handlers.HandlePing)

	api := app.Group("/api")
	api.Get("/health", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))
	api.Get("/ping", handlers.HandlePing)

	// admin returns the guard chain for an admin route group; writes are
	// recorded in the audit log under resource.
	admin := func(resource string) []fiber.Handler {
		return []fiber.Handler{authMiddleware.RequireAdmin(), middleware.AdminAuditLog(db, resource)}
	}
	guarded := func(resource string, h fiber.Handler) []fiber.Handler {
		return append(admin(resource), h)
	}
	withStore := func(h utils.StoreHandler) fiber.Handler {
		return utils.MakeHTTPHandleFunc(h, store)
	}

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/login", bruteForceProtection.CheckLockout(), authHandler.Login)
	authGroup.Post("/admin/login", bruteForceProtection.CheckLockout(), authHandler.AdminLogin)
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Get("/verify", authMiddleware.Required(), authHandler.Me)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Put("/password", authMiddleware.Required(), authHandler.ChangePassword)

	// Universities
	universities := api.Group("/universities")
	universities.Get("/", universityHandler.ListUniversities)

	universitiesAdmin := universities.Group("/admin", admin("universities")...)
	universitiesAdmin.Get("/all", universityHandler.AdminListUniversities)
	universitiesAdmin.Get("/:id", universityHandler.AdminGetUniversity)
	universitiesAdmin.Post("/", universityHandler.CreateUniversity)
	universitiesAdmin.Put("/:id", universityHandler.UpdateUniversity)
	universitiesAdmin.Patch("/:id/toggle", universityHandler.ToggleUniversity)
	universitiesAdmin.Delete("/:id", universityHandler.DeleteUniversity)

	universities.Get("/:slug", universityHandler.GetUniversity)
	universities.Post("/:slug/fees", guarded("universities", universityHandler.UpsertFees)...)
	universities.Delete("/:slug/fees", guarded("universities", universityHandler.DeleteFees)...)
	universities.Post("/:slug/dp", guarded("universities", universityHandler.UploadDP)...)
	universities.Delete("/:slug/dp", guarded("universities", universityHandler.DeleteDP)...)
	universities.Post("/:slug/gallery", guarded("universities", universityHandler.UploadGallery)...)
	universities.Delete("/:slug/gallery", guarded("universities", universityHandler.DeleteGallery)...)

	// Generic content resources
	catalog.Programs(db).Register(api.Group("/programs"), admin("programs")...)
	catalog.Testimonials(db).Register(api.Group("/testimonials"), admin("testimonials")...)
	catalog.FAQs(db).Register(api.Group("/faqs"), admin("faqs")...)
	catalog.Blogs(db).Register(api.Group("/blogs"), admin("blogs")...)
	catalog.Content(db).Register(api.Group("/content"), admin("content")...)
	galleryHandler.Register(api.Group("/gallery"), admin("gallery")...)

	// Leads
	applications := api.Group("/applications")
	applications.Post("/", applicationHandler.CreateApplication)
	applicationsAdmin := applications.Group("/admin", admin("applications")...)
	applicationsAdmin.Get("/", applicationHandler.ListApplications)
	applicationsAdmin.Get("/:id", applicationHandler.GetApplication)
	applicationsAdmin.Patch("/:id/status", applicationHandler.UpdateStatus)
	applicationsAdmin.Delete("/:id", applicationHandler.DeleteApplication)

	messages := api.Group("/messages")
	messages.Post("/", messageHandler.CreateMessage)
	messages.Post("/contact", messageHandler.Contact)
	messagesAdmin := messages.Group("/admin", admin("messages")...)
	messagesAdmin.Get("/", messageHandler.ListMessages)
	messagesAdmin.Patch("/:id/read", messageHandler.MarkRead)
	messagesAdmin.Delete("/:id", messageHandler.DeleteMessage)

	// Site configuration
	prices := api.Group("/prices")
	prices.Get("/", withStore(admin_handlers.GetPrices))
	pricesAdmin := prices.Group("/admin", admin("prices")...)
	pricesAdmin.Post("/", withStore(admin_handlers.CreatePrices))
	pricesAdmin.Put("/:id", withStore(admin_handlers.UpdatePrices))

	settings := api.Group("/settings")
	settings.Get("/public", withStore(admin_handlers.GetSiteSettings))
	settingsAdmin := settings.Group("/admin", admin("settings")...)
	settingsAdmin.Get("/", withStore(admin_handlers.GetSiteSettings))
	settingsAdmin.Put("/", withStore(admin_handlers.UpdateSiteSettings))

	stats := api.Group("/stats")
	stats.Get("/public", withStore(admin_handlers.GetSiteStats))
	statsAdmin := stats.Group("/admin", admin("stats")...)
	statsAdmin.Get("/", withStore(admin_handlers.GetSiteStats))
	statsAdmin.Put("/", withStore(admin_handlers.UpdateSiteStats))

	// Uploads
	uploads := api.Group("/uploads")
	uploads.Post("/marksheet", uploadHandler.UploadMarksheet)
	uploads.Post("/single", guarded("uploads", uploadHandler.UploadSingle)...)
	uploads.Post("/multiple", guarded("uploads", uploadHandler.UploadMultiple)...)
	uploads.Delete("/", guarded("uploads", uploadHandler.DeleteFile)...)

	// Back office
	backOffice := api.Group("/admin", authMiddleware.RequireAdmin())
	backOffice.Get("/dashboard", withStore(admin_handlers.GetDashboard))
	backOffice.Get("/audit-logs", withStore(admin_handlers.ListAuditLogs))
	backOffice.Get("/audit-logs/:id", withStore(admin_handlers.GetAuditLog))

	users := backOffice.Group("/users", authMiddleware.RequireRole(model.RoleAdmin), middleware.AdminAuditLog(db, "users"))
	users.Get("/", withStore(admin_handlers.ListUsers))
	users.Post("/", withStore(admin_handlers.CreateUser))
	users.Put("/:id", withStore(admin_handlers.UpdateUser))
	users.Post("/:id/reset-password", withStore(admin_handlers.ResetUserPassword))
	users.Delete("/:id", withStore(admin_handlers.DeleteUser))
}
