package server

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/template/html/v3"
	"github.com/google/uuid"

	"whomortality/internal/config"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
}

// New creates a new server with middleware configured. storage backs the
// rate limiter; nil keeps the limiter's counters in process memory.
func New(cfg *config.Config, storage fiber.Storage) *Server {
	// Setup template engine
	engine := html.New(cfg.ViewsDir, ".html")
	engine.Reload(cfg.IsDev())

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			} else {
				slog.Error("unhandled request error",
					"method", c.Method(),
					"path", c.Path(),
					"request_id", requestid.FromContext(c),
					"error", err,
				)
			}

			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(code).JSON(fiber.Map{
					"status": "error",
					"error":  message,
				})
			}

			return c.Status(code).Render("error", fiber.Map{
				"Title":     "Error",
				"Message":   message,
				"SiteTitle": cfg.SiteTitle,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New())

	// CORS middleware, only when at least one origin is configured
	if origins := corsOrigins(cfg); len(origins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
			MaxAge:       86400,
		}))
	}

	// Rate limiting middleware - RATE_LIMIT_MAX requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c fiber.Ctx) bool {
			switch c.Path() {
			case "/healthz", "/readyz", "/metrics":
				return true
			}
			return false
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Rate limit exceeded. Please try again later.",
			})
		},
	}))

	return &Server{
		App: app,
		Cfg: cfg,
	}
}

// corsOrigins returns the allowed origins: CORS_ORIGINS when set, else
// BASE_URL. Blank entries are dropped.
func corsOrigins(cfg *config.Config) []string {
	raw := cfg.BaseURL
	if strings.TrimSpace(cfg.CORSOrigins) != "" {
		raw = cfg.CORSOrigins
	}

	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Start starts the server with the configured address and TLS settings.
func (s *Server) Start() error {
	if !s.Cfg.TLSEnabled {
		return s.App.Listen(s.Cfg.ServerAddr)
	}

	tlsConfig, err := buildTLSConfig(s.Cfg)
	if err != nil {
		return err
	}
	if s.Cfg.IsMTLSEnabled() {
		log.Printf("Starting server with mTLS on %s", s.Cfg.ServerAddr)
	} else {
		log.Printf("Starting server with TLS on %s", s.Cfg.ServerAddr)
	}
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
		CertFile:      s.Cfg.TLSCertFile,
		CertKeyFile:   s.Cfg.TLSKeyFile,
		TLSConfigFunc: func(tc *tls.Config) { *tc = *tlsConfig },
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// buildTLSConfig requires TLS 1.2 and, when a CA file is configured, verified
// client certificates signed by it.
func buildTLSConfig(cfg *config.Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.TLSCAFile == "" {
		return tlsConfig, nil
	}

	caCert, err := os.ReadFile(cfg.TLSCAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("no certificates found in CA file %s", cfg.TLSCAFile)
	}

	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	return tlsConfig, nil
}
