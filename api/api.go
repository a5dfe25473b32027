package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
)

// ServerConfig tunes the HTTP engine.
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string, cfg ServerConfig) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "MATHWA API",
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  2 * cfg.ReadTimeout,
			BodyLimit:    cfg.BodyLimit,
			ErrorHandler: ErrorHandler,
		}),
		listenAddress: listenAddress,
	}
}

// ErrorHandler renders errors that escape the handlers in the standard
// envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		switch e.Code {
		case fiber.StatusNotFound:
			return response.NotFound(c, "Route not found")
		case fiber.StatusRequestEntityTooLarge:
			return response.Error(c, e.Code, "Request body too large", "FILE_TOO_LARGE")
		case fiber.StatusMethodNotAllowed:
			return response.Error(c, e.Code, e.Message, "METHOD_NOT_ALLOWED")
		}
		if e.Code < fiber.StatusInternalServerError {
			return response.Error(c, e.Code, e.Message, "BAD_REQUEST")
		}
	}
	log.Errorf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return response.InternalServerError(c, "")
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info("Starting API Server")
	log.Infof("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests.
func (s *APIServer) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
