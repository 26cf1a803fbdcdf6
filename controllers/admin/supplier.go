package admin

import (
	"arkapulsa/database"
	"arkapulsa/helpers"
	"arkapulsa/models"
	"arkapulsa/services"

	"github.com/gofiber/fiber/v2"
)

type UpdateSupplierRequest struct {
	SupplierCode string  `json:"supplier_code"`
	Name         *string `json:"name"`
	BaseURL      *string `json:"base_url"`
	APIKey       *string `json:"api_key"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateSupplier edits supplier config and invalidates its cache entry
// so the dispatch workers pick the change up immediately.
func UpdateSupplier(c *fiber.Ctx) error {
	var req UpdateSupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	var sup models.Supplier
	if err := database.DB.Where("supplier_code = ?", req.SupplierCode).First(&sup).Error; err != nil {
		return helpers.JSONError(c, "SUPPLIER_NOT_FOUND")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.BaseURL != nil {
		updates["base_url"] = *req.BaseURL
	}
	if req.APIKey != nil {
		updates["api_key"] = *req.APIKey
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&sup).Updates(updates).Error; err != nil {
			return helpers.JSONError(c, "FAILED_TO_UPDATE_SUPPLIER")
		}
	}

	services.InvalidateSupplier(c.UserContext(), sup.SupplierCode)

	return helpers.JSONSuccess(c, "Supplier updated", fiber.Map{
		"supplier_code": sup.SupplierCode,
	})
}
