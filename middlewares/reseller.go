package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"arkapulsa/database"
	"arkapulsa/models"

	"github.com/gofiber/fiber/v2"
)

// ResellerAuth verifies the HMAC-SHA256 signature of the reseller code
// keyed by the reseller's secret, and stores the reseller in locals.
func ResellerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			ResellerCode string `json:"reseller_code"`
			Signature    string `json:"signature"`
		}

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_JSON",
			})
		}

		var reseller models.Reseller
		if err := database.DB.
			Where("reseller_code = ? AND is_active = true", body.ResellerCode).
			First(&reseller).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": 0,
				"msg":    "RESELLER_NOT_FOUND",
			})
		}

		h := hmac.New(sha256.New, []byte(reseller.SecretKey))
		h.Write([]byte(reseller.ResellerCode))
		expected := hex.EncodeToString(h.Sum(nil))

		if !hmac.Equal([]byte(body.Signature), []byte(expected)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": 0,
				"msg":    "INVALID_SIGNATURE",
			})
		}

		c.Locals("reseller", reseller)
		return c.Next()
	}
}
