package middlewares

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// CallbackAuth guards the supplier callback endpoint with the shared
// token from SUPPLIER_CALLBACK_TOKEN.
func CallbackAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := os.Getenv("SUPPLIER_CALLBACK_TOKEN")
		got := c.Get("X-Callback-Token")

		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_TOKEN",
			})
		}

		return c.Next()
	}
}
