package transaction

import (
	"errors"

	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
)

type CreateRequest struct {
	ProductCode string `json:"product_code"`
	CustomerNo  string `json:"customer_no"`
}

// Create quotes the price chain, holds the sell price on the buyer's
// saldo and opens a PENDING transaction. Dispatch to the supplier
// happens asynchronously in the pending worker.
func Create(c *fiber.Ctx) error {
	buyer, ok := c.Locals("reseller").(models.Reseller)
	if !ok {
		return helpers.JSONError(c, "INVALID_SESSION")
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.ProductCode == "" || req.CustomerNo == "" {
		return helpers.JSONError(c, "PRODUCT_CODE_AND_CUSTOMER_NO_REQUIRED")
	}

	var product models.Product
	if err := database.DB.
		Where("product_code = ? AND is_active = true", req.ProductCode).
		First(&product).Error; err != nil {
		return helpers.JSONError(c, "PRODUCT_NOT_FOUND")
	}

	trx, err := services.CreateTransaction(database.DB, buyer.ID, product.ID, req.CustomerNo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientBalance):
			return helpers.JSONError(c, "INSUFFICIENT_BALANCE")
		case errors.Is(err, services.ErrProductNotFound):
			return helpers.JSONError(c, "PRODUCT_NOT_FOUND")
		default:
			return helpers.JSONError(c, "FAILED_TO_CREATE_TRANSACTION")
		}
	}

	return helpers.JSONSuccess(c, "Transaction created", fiber.Map{
		"invoice_id":  trx.InvoiceID,
		"product":     trx.ProductCode,
		"customer_no": trx.CustomerNo,
		"sell_price":  trx.SellPrice,
		"admin_fee":   trx.AdminFee,
		"status":      trx.Status,
	})
}
