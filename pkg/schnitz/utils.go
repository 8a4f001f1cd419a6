package schnitz

import "github.com/gofiber/fiber/v2"

// createResponse creates a StdResponse with the given body and error
func createResponse[T any](body T, err error) StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return StdResponse[T]{
			Body:  body,
			Error: &errMsg,
		}
	}
	return StdResponse[T]{
		Body:  body,
		Error: nil,
	}
}

func isWhitelisted(path string, whitelistedRoutes []string) bool {
	for _, route := range whitelistedRoutes {
		if path == route {
			return true
		}
	}
	return false
}

// Caller returns the hotkey a signed request was sent with, or "" if unsigned.
func Caller(c *fiber.Ctx) string {
	return c.Get(HotkeyHeader)
}
