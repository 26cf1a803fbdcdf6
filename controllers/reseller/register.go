package reseller

import (
	"crypto/rand"
	"encoding/hex"

	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Name       string `json:"name"`
	Msisdn     string `json:"msisdn"`
	ParentCode string `json:"parent_code"`
}

func RegisterReseller(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if req.Name == "" || req.Msisdn == "" {
		return helpers.JSONError(c, "NAME_AND_MSISDN_REQUIRED")
	}

	var parentID *uint
	if req.ParentCode != "" {
		var parent models.Reseller
		if err := database.DB.
			Where("reseller_code = ? AND is_active = true", req.ParentCode).
			First(&parent).Error; err != nil {
			return helpers.JSONError(c, "PARENT_NOT_FOUND")
		}
		parentID = &parent.ID
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return helpers.JSONError(c, "FAILED_TO_GENERATE_SECRET")
	}

	reseller := models.Reseller{
		ResellerCode: helpers.GenerateResellerCode(),
		Name:         req.Name,
		Msisdn:       req.Msisdn,
		SecretKey:    hex.EncodeToString(secret),
		ParentID:     parentID,
		IsActive:     true,
	}
	if err := database.DB.Create(&reseller).Error; err != nil {
		return helpers.JSONError(c, "FAILED_TO_CREATE_RESELLER")
	}

	return helpers.JSONSuccess(c, "Reseller registered", fiber.Map{
		"reseller_code": reseller.ResellerCode,
		"secret_key":    reseller.SecretKey,
		"parent_code":   req.ParentCode,
	})
}
