package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth checks the operator signature derived from the master
// credentials.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Signature string `json:"signature"`
		}

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_JSON",
			})
		}

		masterCode := os.Getenv("MASTER_ADMIN_CODE")
		masterSecret := os.Getenv("MASTER_ADMIN_SECRET")

		h := hmac.New(sha256.New, []byte(masterSecret))
		h.Write([]byte(masterCode + masterSecret))
		expected := hex.EncodeToString(h.Sum(nil))

		if !hmac.Equal([]byte(body.Signature), []byte(expected)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_SIGNATURE",
			})
		}

		return c.Next()
	}
}
