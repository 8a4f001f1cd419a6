// Package schnitz is the fiber server shared by the miner and the validator status endpoint.
package schnitz

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/internal/metrics"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

const shutdownTimeout = 5 * time.Second

// NewServer creates a server exposing /health and /metrics. When verifier is
// non-nil every other route requires signed identity headers.
func NewServer(serverConfig *ServerConfig, verifier signature.SignatureVerifier) *Server {
	if serverConfig == nil {
		serverConfig = &ServerConfig{}
	}
	if serverConfig.Host == "" {
		serverConfig.Host = DefaultServerHost
	}
	if serverConfig.Port == 0 {
		serverConfig.Port = DefaultServerPort
	}
	if serverConfig.BodyLimit <= 0 {
		serverConfig.BodyLimit = DefaultBodyLimit
	}

	log.Info().
		Any("serverConfig", serverConfig).
		Bool("signature_required", verifier != nil).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	whitelistedRoutes := []string{HealthPath, MetricsPath}
	app.Use(ZstdMiddleware(whitelistedRoutes))
	if verifier != nil {
		app.Use(SignatureMiddleware(verifier, whitelistedRoutes))
	}

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.JSON(createResponse(HealthStatus{Status: "ok"}, nil))
	})
	app.Get(MetricsPath, metrics.Handler())

	return &Server{
		App:    app,
		config: serverConfig,
	}
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]any{}, err))
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr()).Msg("server listening")
		errCh <- s.App.Listen(s.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.Addr(), err)
		}
		return nil
	case <-ctx.Done():
		if err := s.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	}
}
