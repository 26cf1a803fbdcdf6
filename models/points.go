package models

import "gorm.io/gorm"

// TransactionPoint records loyalty point movement per transaction:
// award rows positive, reversal rows negative.
type TransactionPoint struct {
	gorm.Model

	TransactionID uint  `gorm:"index" json:"transaction_id"`
	ResellerID    uint  `gorm:"index" json:"reseller_id"`
	Amount        int64 `json:"amount"`
}
