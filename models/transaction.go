package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TrxPending    = "PENDING"
	TrxProcessing = "PROCESSING"
	TrxSuccess    = "SUCCESS"
	TrxFailed     = "FAILED"
	TrxCanceled   = "CANCELED"
	TrxExpired    = "EXPIRED"
	TrxRefunded   = "REFUNDED"
)

type Transaction struct {
	gorm.Model

	InvoiceID  string `gorm:"uniqueIndex;size:32" json:"invoice_id"`
	ResellerID uint   `gorm:"index" json:"reseller_id"`
	ProductID  uint   `gorm:"index" json:"product_id"`
	CustomerNo string `gorm:"size:32;index" json:"customer_no"`

	// Pricing snapshot, frozen at creation. SellPrice is the contract
	// with the buyer and is never recomputed.
	ProductCode string `gorm:"size:32" json:"product_code"`
	BasePrice   int64  `json:"base_price"`
	Margin      int64  `json:"margin"`
	SellPrice   int64  `json:"sell_price"`
	AdminFee    int64  `json:"admin_fee"`

	Status string `gorm:"size:16;index" json:"status"`

	SupplierID   *uint          `gorm:"index" json:"supplier_id"`
	SupplierRef  string         `gorm:"size:64;index" json:"supplier_ref"`
	SerialNumber string         `gorm:"size:64" json:"serial_number"`
	Message      string         `gorm:"size:255" json:"message"`

	SupplierResponse datatypes.JSON `json:"supplier_response"`
}

// IsTerminal reports whether the transaction no longer accepts
// supplier-driven updates. REFUNDED is reachable from SUCCESS only
// through the admin refund path.
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case TrxSuccess, TrxFailed, TrxCanceled, TrxExpired, TrxRefunded:
		return true
	}
	return false
}
