package schnitz

import (
	"github.com/gofiber/fiber/v2"
)

const (
	SignatureHeader string = "x-signature"
	HotkeyHeader    string = "x-hotkey"
	MessageHeader   string = "x-message"

	// Server defaults
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 50050
	DefaultBodyLimit  = 4 * 1024 * 1024 // 4MB

	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Server wraps a fiber app with the shared middleware stack.
type Server struct {
	App    *fiber.App
	config *ServerConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	BodyLimit int
}

// StdResponse represents the standardized response structure
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
