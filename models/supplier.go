package models

import "gorm.io/gorm"

type Supplier struct {
	gorm.Model

	SupplierCode string `gorm:"uniqueIndex;size:32" json:"supplier_code"`
	Name         string `gorm:"size:64" json:"name"`
	BaseURL      string `gorm:"size:255" json:"base_url"`
	APIKey       string `gorm:"size:128" json:"-"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
