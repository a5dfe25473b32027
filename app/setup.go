package app

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/api"
	"github.com/mathwaksu-byte/MathwaV2/config"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/router"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/services/cron"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/auth"
	"github.com/mathwaksu-byte/MathwaV2/utils/cache"
)

const (
	leadNotifyTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}
	if err := env.Validate(); err != nil {
		return err
	}
	log.SetLevel(parseLevel(env.LOG_LEVEL))

	store, err := database.StartGORM(env)
	if err != nil {
		log.Error("Check whether Postgres is running and DATABASE_URL is correct")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Error("Failed to initialize database tables")
		return err
	}

	provider, err := NewStorageProvider(env)
	if err != nil {
		return err
	}

	jwtManager, err := newJWTManager(env)
	if err != nil {
		return err
	}

	// Redis is optional; without it brute-force protection is off
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Warnf("Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	leads := services.NewLeadDispatcher(leadNotifyTimeout, leadNotifiers(env)...)
	defer leads.Wait()

	var cronManager *cron.CronManager
	if env.CRON_ENABLED {
		cronManager = cron.NewCronManager(store.DB(), provider)
		if err := cronManager.Start(); err != nil {
			log.Warnf("Failed to start cron jobs: %v", err)
			cronManager = nil
		} else {
			defer cronManager.Stop()
		}
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), api.ServerConfig{
		ReadTimeout:  env.READ_TIMEOUT,
		WriteTimeout: env.WRITE_TIMEOUT,
		// multipart gallery uploads carry up to 20 files
		BodyLimit: int(env.MAX_FILE_SIZE) * 21,
	})

	router.SetupRoutes(server.GetEngine(), router.Dependencies{
		Store: store,
		Uploads: services.NewUploadService(provider, services.UploadConfig{
			MaxFileSize:       env.MAX_FILE_SIZE,
			AllowedTypes:      env.ALLOWED_FILE_TYPES,
			MaxImageDimension: env.IMAGE_MAX_DIMENSION,
		}),
		JWT:    jwtManager,
		Cache:  redisCache,
		Leads:  leads,
		Config: env,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infof("Received %s, shutting down", sig)
	}

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
	return nil
}

// NewStorageProvider builds the object store selected by STORAGE_DRIVER.
func NewStorageProvider(env *config.EnvironmentVariable) (storage.Provider, error) {
	switch env.STORAGE_DRIVER {
	case "s3":
		return storage.NewS3Provider(storage.S3Config{
			AccessKey: env.STORAGE_ACCESS_KEY,
			SecretKey: env.STORAGE_SECRET_KEY,
			Region:    env.STORAGE_REGION,
			Endpoint:  env.STORAGE_ENDPOINT,
			PublicURL: env.STORAGE_PUBLIC_URL,
		})
	case "local":
		base := strings.TrimRight(env.PUBLIC_BASE_URL, "/") + router.FilesPrefix
		log.Infof("Storing uploads on disk under %s", env.STORAGE_LOCAL_DIR)
		return storage.NewLocalProvider(env.STORAGE_LOCAL_DIR, base)
	}
	return nil, config.ErrUnknownStorageDriver
}

func newJWTManager(env *config.EnvironmentVariable) (*auth.JWTManager, error) {
	secret := env.JWT_SECRET
	if secret == "" {
		if !env.USE_LOCAL_ADMIN {
			return nil, config.ErrMissingJWTSecret
		}
		// bypass sessions still get signed tokens; they only live as long
		// as the process
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.New("failed to generate a JWT secret")
		}
		secret = hex.EncodeToString(buf)
	}
	return auth.NewJWTManager(auth.JWTConfig{
		Secret: secret,
		Expiry: env.JWT_EXPIRES_IN,
		Issuer: env.JWT_ISSUER,
	}), nil
}

func leadNotifiers(env *config.EnvironmentVariable) []services.LeadNotifier {
	notifiers := make([]services.LeadNotifier, 0, 2)
	if webhook := services.NewCRMWebhook(env.CRM_WEBHOOK_URL); webhook != nil {
		notifiers = append(notifiers, webhook)
	} else {
		log.Info("CRM_WEBHOOK_URL not set, lead webhook disabled")
	}
	mailer := services.NewEmailService(services.SMTPConfig{
		Host:     env.SMTP_HOST,
		Port:     env.SMTP_PORT,
		Username: env.SMTP_USERNAME,
		Password: env.SMTP_PASSWORD,
		From:     env.SMTP_FROM,
		NotifyTo: env.LEAD_NOTIFY_EMAIL,
	})
	if mailer != nil {
		notifiers = append(notifiers, mailer)
	}
	return notifiers
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	}
	return log.LevelInfo
}
