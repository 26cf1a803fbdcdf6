package models

import "gorm.io/gorm"

// TransactionCommission is the per-level commission ledger scoped to
// one transaction. Payout rows are positive, reversal rows negative;
// the signed sum per (transaction, reseller, level) bucket is the
// amount still outstanding for claw-back.
type TransactionCommission struct {
	gorm.Model

	TransactionID uint  `gorm:"index" json:"transaction_id"`
	ResellerID    uint  `gorm:"index" json:"reseller_id"`
	Level         int   `json:"level"`
	Amount        int64 `json:"amount"`
}
