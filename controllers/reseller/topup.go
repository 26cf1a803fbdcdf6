package reseller

import (
	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TopupRequest struct {
	ResellerCode string `json:"reseller_code"`
	Amount       int64  `json:"amount"`
	Note         string `json:"note"`
}

// TopupSaldo credits a reseller's spendable wallet through the ledger
// (operator action).
func TopupSaldo(c *fiber.Ctx) error {
	var req TopupRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if req.ResellerCode == "" || req.Amount <= 0 {
		return helpers.JSONError(c, "RESELLER_CODE_AND_VALID_AMOUNT_REQUIRED")
	}

	var target models.Reseller
	if err := database.DB.
		Where("reseller_code = ? AND is_active = true", req.ResellerCode).
		First(&target).Error; err != nil {
		return helpers.JSONError(c, "RESELLER_NOT_FOUND")
	}

	note := req.Note
	if note == "" {
		note = "Top-up via API"
	}

	var before, after int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		before, after, err = services.ApplyMutation(tx, target.ID, models.KindSaldo, req.Amount, services.MutationOpt{
			Type:          models.MutTopup,
			Source:        models.SrcManualTopup,
			Note:          note,
			AllowNegative: true,
		})
		return err
	})
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_UPDATE_BALANCE")
	}

	return helpers.JSONSuccess(c, "Top-up successful", fiber.Map{
		"reseller_code":  target.ResellerCode,
		"balance_before": before,
		"balance_after":  after,
		"note":           note,
	})
}
