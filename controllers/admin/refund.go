package admin

import (
	"errors"

	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
)

type RefundRequest struct {
	InvoiceID string `json:"invoice_id"`
	Amount    *int64 `json:"amount"`
}

// Refund is the operator SUCCESS -> REFUNDED path. Commission
// claw-back runs best-effort after the buyer refund commits.
func Refund(c *fiber.Ctx) error {
	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	var trx models.Transaction
	if err := database.DB.Where("invoice_id = ?", req.InvoiceID).First(&trx).Error; err != nil {
		return helpers.JSONError(c, "TRANSACTION_NOT_FOUND")
	}

	err := services.RefundTransaction(database.DB, trx.ID, req.Amount, false)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotRefundable):
			return helpers.JSONError(c, "TRANSACTION_NOT_REFUNDABLE")
		case errors.Is(err, services.ErrInvalidRefundAmount):
			return helpers.JSONError(c, "INVALID_REFUND_AMOUNT")
		default:
			return helpers.JSONError(c, "REFUND_FAILED")
		}
	}

	return helpers.JSONSuccess(c, "Refund applied", fiber.Map{
		"invoice_id": trx.InvoiceID,
	})
}

type CancelRequest struct {
	InvoiceID string `json:"invoice_id"`
	Reason    string `json:"reason"`
}

// Cancel moves a not-yet-terminal transaction to CANCELED, refunding
// the hold.
func Cancel(c *fiber.Ctx) error {
	var req CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	var trx models.Transaction
	if err := database.DB.Where("invoice_id = ?", req.InvoiceID).First(&trx).Error; err != nil {
		return helpers.JSONError(c, "TRANSACTION_NOT_FOUND")
	}

	reason := req.Reason
	if reason == "" {
		reason = "canceled by operator"
	}

	if err := services.CancelTransaction(database.DB, trx.ID, reason); err != nil {
		return helpers.JSONError(c, "CANCEL_FAILED")
	}

	return helpers.JSONSuccess(c, "Transaction canceled", fiber.Map{
		"invoice_id": trx.InvoiceID,
	})
}
