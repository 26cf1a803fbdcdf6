package transaction

import (
	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"

	"github.com/gofiber/fiber/v2"
)

type DetailRequest struct {
	InvoiceID string `json:"invoice_id"`
}

func Detail(c *fiber.Ctx) error {
	buyer, ok := c.Locals("reseller").(models.Reseller)
	if !ok {
		return helpers.JSONError(c, "INVALID_SESSION")
	}

	var req DetailRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	var trx models.Transaction
	if err := database.DB.
		Where("invoice_id = ? AND reseller_id = ?", req.InvoiceID, buyer.ID).
		First(&trx).Error; err != nil {
		return helpers.JSONError(c, "TRANSACTION_NOT_FOUND")
	}

	return helpers.JSONSuccess(c, "Transaction", fiber.Map{
		"invoice_id":    trx.InvoiceID,
		"product":       trx.ProductCode,
		"customer_no":   trx.CustomerNo,
		"sell_price":    trx.SellPrice,
		"admin_fee":     trx.AdminFee,
		"status":        trx.Status,
		"serial_number": trx.SerialNumber,
		"message":       trx.Message,
		"created_at":    trx.CreatedAt,
		"updated_at":    trx.UpdatedAt,
	})
}
