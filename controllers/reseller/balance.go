package reseller

import (
	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
)

func CheckBalance(c *fiber.Ctx) error {
	reseller, ok := c.Locals("reseller").(models.Reseller)
	if !ok {
		return helpers.JSONError(c, "INVALID_SESSION")
	}

	saldo, err := services.WalletBalance(database.DB, reseller.ID, models.KindSaldo)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_READ_BALANCE")
	}
	komisi, err := services.WalletBalance(database.DB, reseller.ID, models.KindKomisi)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_READ_BALANCE")
	}
	poin, err := services.WalletBalance(database.DB, reseller.ID, models.KindPoin)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_READ_BALANCE")
	}

	return helpers.JSONSuccess(c, "Balance", fiber.Map{
		"reseller_code": reseller.ResellerCode,
		"saldo":         saldo,
		"komisi":        komisi,
		"poin":          poin,
	})
}

type MutationsRequest struct {
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
}

// ListMutations returns the newest ledger records for one wallet kind.
func ListMutations(c *fiber.Ctx) error {
	reseller, ok := c.Locals("reseller").(models.Reseller)
	if !ok {
		return helpers.JSONError(c, "INVALID_SESSION")
	}

	var req MutationsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindSaldo
	}
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var mutations []models.WalletMutation
	if err := database.DB.
		Where("reseller_id = ? AND kind = ?", reseller.ID, kind).
		Order("id DESC").
		Limit(limit).
		Find(&mutations).Error; err != nil {
		return helpers.JSONError(c, "FAILED_TO_READ_MUTATIONS")
	}

	return helpers.JSONSuccess(c, "Mutations", fiber.Map{
		"reseller_code": reseller.ResellerCode,
		"kind":          kind,
		"mutations":     mutations,
	})
}
