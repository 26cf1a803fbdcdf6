package models

import "gorm.io/gorm"

type Reseller struct {
	gorm.Model

	ResellerCode string `gorm:"uniqueIndex;size:32" json:"reseller_code"`
	Name         string `gorm:"size:64" json:"name"`
	Msisdn       string `gorm:"size:20;index" json:"msisdn"`
	SecretKey    string `gorm:"size:128" json:"-"`
	ParentID     *uint  `gorm:"index" json:"parent_id"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	Markups []ResellerMarkup `gorm:"foreignKey:ResellerID"`
}

// ResellerMarkup is the per-product markup a reseller adds for its downlines.
type ResellerMarkup struct {
	gorm.Model

	ResellerID uint  `gorm:"index:idx_reseller_product,unique" json:"reseller_id"`
	ProductID  uint  `gorm:"index:idx_reseller_product,unique" json:"product_id"`
	Amount     int64 `json:"amount"`
}

// ResellerGlobalMarkup is the product-agnostic fallback markup.
type ResellerGlobalMarkup struct {
	gorm.Model

	ResellerID uint  `gorm:"uniqueIndex" json:"reseller_id"`
	Amount     int64 `json:"amount"`
}
