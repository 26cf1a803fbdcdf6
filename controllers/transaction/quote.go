package transaction

import (
	"errors"

	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
)

type QuoteRequest struct {
	ProductCode string `json:"product_code"`
}

// Quote returns the effective sell price for the calling reseller
// without creating anything.
func Quote(c *fiber.Ctx) error {
	buyer, ok := c.Locals("reseller").(models.Reseller)
	if !ok {
		return helpers.JSONError(c, "INVALID_SESSION")
	}

	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	var product models.Product
	if err := database.DB.
		Where("product_code = ? AND is_active = true", req.ProductCode).
		First(&product).Error; err != nil {
		return helpers.JSONError(c, "PRODUCT_NOT_FOUND")
	}

	quote, err := services.ComputeEffectiveSellPrice(database.DB, buyer.ID, product.ID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return helpers.JSONError(c, "PRODUCT_NOT_FOUND")
		}
		return helpers.JSONError(c, "FAILED_TO_QUOTE")
	}

	return helpers.JSONSuccess(c, "Quote", fiber.Map{
		"product_code":   product.ProductCode,
		"effective_sell": quote.EffectiveSell,
		"admin_fee":      services.AdminFee(),
	})
}
