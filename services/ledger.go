package services

import (
	"errors"

	"arkapulsa/helpers"
	"arkapulsa/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MutationOpt describes one ledger movement. Type/Source/TransactionID
// together are the caller's idempotency key (see HasMutation); the
// ledger itself is a dumb accumulator and never rejects duplicates.
type MutationOpt struct {
	TransactionID *uint
	Type          string
	Source        string
	Note          string
	RefID         string
	AllowNegative bool
}

// ApplyMutation moves delta on the (reseller, kind) wallet inside the
// caller's transaction. It locks the wallet row, enforces the zero
// floor unless AllowNegative, writes the new balance and appends
// exactly one mutation record. Returns the before/after balances.
func ApplyMutation(tx *gorm.DB, resellerID uint, kind string, delta int64, opt MutationOpt) (int64, int64, error) {
	var wallet models.Wallet
	err := lockForUpdate(tx).
		Where("reseller_id = ? AND kind = ?", resellerID, kind).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Missing row reads as zero balance.
		wallet = models.Wallet{ResellerID: resellerID, Kind: kind, Amount: 0}
		if err := tx.Create(&wallet).Error; err != nil {
			return 0, 0, err
		}
	} else if err != nil {
		return 0, 0, err
	}

	before := wallet.Amount
	after := before + delta
	if !opt.AllowNegative && after < 0 {
		return before, before, ErrInsufficientBalance
	}

	if err := tx.Model(&wallet).Update("amount", after).Error; err != nil {
		return 0, 0, err
	}

	refID := opt.RefID
	if refID == "" {
		refID = helpers.NewRefID()
	}

	mutation := models.WalletMutation{
		ResellerID:    resellerID,
		Kind:          kind,
		TransactionID: opt.TransactionID,
		TrxType:       opt.Type,
		Source:        opt.Source,
		Amount:        delta,
		BalanceBefore: before,
		BalanceAfter:  after,
		Note:          opt.Note,
		RefID:         refID,
	}
	if err := tx.Create(&mutation).Error; err != nil {
		return 0, 0, err
	}

	return before, after, nil
}

// HasMutation reports whether a mutation with the given idempotency key
// was already written for the transaction.
func HasMutation(tx *gorm.DB, transactionID uint, kind, trxType, source string) (bool, error) {
	var count int64
	err := tx.Model(&models.WalletMutation{}).
		Where("transaction_id = ? AND kind = ? AND trx_type = ? AND source = ?",
			transactionID, kind, trxType, source).
		Count(&count).Error
	return count > 0, err
}

// WalletBalance reads the current balance, zero when the row does not
// exist yet.
func WalletBalance(db *gorm.DB, resellerID uint, kind string) (int64, error) {
	var wallet models.Wallet
	err := db.Where("reseller_id = ? AND kind = ?", resellerID, kind).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Amount, nil
}

// lockForUpdate applies SELECT ... FOR UPDATE. The sqlite test dialect
// has no row locks (single writer), so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
