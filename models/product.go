package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model

	ProductCode string `gorm:"uniqueIndex;size:32" json:"product_code"`
	Name        string `gorm:"size:64" json:"name"`
	Category    string `gorm:"size:32;index" json:"category"`
	BasePrice   int64  `json:"base_price"`
	Margin      int64  `json:"margin"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// EffectiveBase is the platform price before any reseller markup.
func (p *Product) EffectiveBase() int64 {
	return p.BasePrice + p.Margin
}
