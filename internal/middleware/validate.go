package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aigcpilot/harvester/internal/logger"
)

// ValidatedKey is the locals key holding the parsed body.
const ValidatedKey = "validated"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest parses the body into a fresh T per request, validates it and
// stores the pointer under ValidatedKey. An empty body validates the zero value.
func ValidateRequest[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(T)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(body); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid request body",
					"msg":   err.Error(),
				})
			}
		}

		if err := validate.Struct(body); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": fields,
			})
		}

		c.Locals(ValidatedKey, body)
		return c.Next()
	}
}

// Validated returns the body stored by ValidateRequest.
func Validated[T any](c *fiber.Ctx) *T {
	body, _ := c.Locals(ValidatedKey).(*T)
	return body
}

// ErrorHandler renders every unhandled error as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	logger.Component("http").Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
