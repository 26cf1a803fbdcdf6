package models

import "gorm.io/gorm"

// Wallet kinds. SALDO is the spendable balance, KOMISI the commission
// override balance, POIN the loyalty point balance. One row per
// (reseller, kind).
const (
	KindSaldo  = "SALDO"
	KindKomisi = "KOMISI"
	KindPoin   = "POIN"
)

// Mutation types.
const (
	MutDebit    = "DEBIT"
	MutCredit   = "CREDIT"
	MutEarn     = "EARN"
	MutReversal = "REVERSAL"
	MutTopup    = "TOPUP"
)

// Mutation source tags.
const (
	SrcTrxHold     = "TRX_HOLD"
	SrcTrxRefund   = "TRX_REFUND"
	SrcCommission  = "TRX_COMMISSION"
	SrcPoints      = "TRX_POINTS"
	SrcManualTopup = "MANUAL_TOPUP"
)

type Wallet struct {
	gorm.Model

	ResellerID uint   `gorm:"index:idx_wallet_key,unique" json:"reseller_id"`
	Kind       string `gorm:"index:idx_wallet_key,unique;size:8" json:"kind"`
	Amount     int64  `json:"amount"`
}

// WalletMutation is the append-only ledger. Rows are never updated or
// deleted; BalanceAfter = BalanceBefore + Amount and consecutive rows
// for one wallet chain before/after values.
type WalletMutation struct {
	gorm.Model

	ResellerID    uint   `gorm:"index" json:"reseller_id"`
	Kind          string `gorm:"size:8;index" json:"kind"`
	TransactionID *uint  `gorm:"index" json:"transaction_id"`
	TrxType       string `gorm:"size:16" json:"trx_type"`
	Source        string `gorm:"size:32" json:"source"`
	Amount        int64  `json:"amount"`
	BalanceBefore int64  `json:"balance_before"`
	BalanceAfter  int64  `json:"balance_after"`
	Note          string `gorm:"size:255" json:"note"`
	RefID         string `gorm:"size:64;index" json:"ref_id"`
}
