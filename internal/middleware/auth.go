package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aigcpilot/harvester/internal/logger"
)

// AuthConfig defines the config for the auth middleware
type AuthConfig struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Validator checks the presented key. Required.
	Validator func(key string) (bool, error)

	// ErrorHandler answers a rejected request.
	// Optional. Default: 401 Invalid or missing API Key
	ErrorHandler fiber.ErrorHandler

	// ContextKey stores the accepted key in the request locals.
	// Optional. Default: "apiKey"
	ContextKey string

	// Header is read when no bearer token is sent.
	// Optional. Default: "X-API-Key"
	Header string
}

// ConfigDefault is the default config
var ConfigDefault = AuthConfig{
	ErrorHandler: func(c *fiber.Ctx, err error) error {
		logger.Component("http").Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Err(err).
			Msg("Authentication failed")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or missing API Key",
		})
	},
	ContextKey: "apiKey",
	Header:     "X-API-Key",
}

// NewAuth accepts a key from "Authorization: Bearer <key>" or from the configured header.
func NewAuth(config ...AuthConfig) fiber.Handler {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
		if cfg.ErrorHandler == nil {
			cfg.ErrorHandler = ConfigDefault.ErrorHandler
		}
		if cfg.ContextKey == "" {
			cfg.ContextKey = ConfigDefault.ContextKey
		}
		if cfg.Header == "" {
			cfg.Header = ConfigDefault.Header
		}
	}
	if cfg.Validator == nil {
		panic("middleware: auth validator is required")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := presentedKey(c, cfg.Header)
		if key == "" {
			return cfg.ErrorHandler(c, errors.New("missing API key"))
		}

		valid, err := cfg.Validator(key)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}
		if !valid {
			return cfg.ErrorHandler(c, errors.New("invalid API key"))
		}

		c.Locals(cfg.ContextKey, key)
		return c.Next()
	}
}

// AdminOnly guards the admin routes with the configured admin key. An empty admin key
// rejects every request.
func AdminOnly(adminKey string) fiber.Handler {
	return NewAuth(AuthConfig{
		Validator: func(key string) (bool, error) {
			if adminKey == "" {
				return false, errors.New("admin key not configured")
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1, nil
		},
	})
}

func presentedKey(c *fiber.Ctx, header string) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(c.Get(header))
}
