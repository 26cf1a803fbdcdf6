package callback

import (
	"arkapulsa/database"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
)

type SupplierCallbackRequest struct {
	RefID        string                `json:"ref_id"`
	SupplierRef  string                `json:"supplier_ref"`
	Status       string                `json:"status"`
	Message      string                `json:"message"`
	SerialNumber string                `json:"serial_number"`
	Price        models.FlexibleAmount `json:"price"`
	AdminFee     models.FlexibleAmount `json:"admin_fee"`
}

// SupplierCallback receives the supplier's asynchronous outcome and
// feeds it to the settlement reducer. Stale or duplicate callbacks get
// the same success response as fresh ones so the supplier stops
// retrying.
func SupplierCallback(c *fiber.Ctx) error {
	var req SupplierCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"status": 0, "msg": "INVALID_JSON"})
	}
	if req.RefID == "" {
		return c.JSON(fiber.Map{"status": 0, "msg": "REF_ID_REQUIRED"})
	}

	var trx models.Transaction
	if err := database.DB.Where("invoice_id = ?", req.RefID).First(&trx).Error; err != nil {
		return c.JSON(fiber.Map{"status": 0, "msg": "TRANSACTION_NOT_FOUND"})
	}

	result := services.SupplierResult{
		Status:       services.NormalizeSupplierStatus(req.Status),
		Message:      req.Message,
		SupplierRef:  req.SupplierRef,
		SerialNumber: req.SerialNumber,
		Price:        req.Price.MinorUnits(),
		AdminFee:     req.AdminFee.MinorUnits(),
		Raw:          c.Body(),
	}

	if err := services.ApplyOutcome(database.DB, trx.ID, result); err != nil {
		return c.JSON(fiber.Map{"status": 0, "msg": "SETTLEMENT_FAILED"})
	}

	return c.JSON(fiber.Map{"status": 1, "msg": "OK"})
}
