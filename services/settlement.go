package services

import (
	"errors"
	"fmt"

	"arkapulsa/logger"
	"arkapulsa/models"

	"gorm.io/gorm"
)

// SupplierResult is the normalized outcome of a supplier dispatch or
// callback, whatever concrete protocol produced it. Price and AdminFee
// are in minor units, zero when the supplier did not report them; they
// never change what the buyer was charged, the frozen snapshot on the
// transaction stays the contract.
type SupplierResult struct {
	Status       string // models.TrxSuccess, models.TrxFailed or models.TrxPending
	Message      string
	SupplierRef  string
	SerialNumber string
	Price        int64
	AdminFee     int64
	Raw          []byte
}

var settleableStatuses = []string{models.TrxPending, models.TrxProcessing}

// ApplyOutcome is the single settlement entry point for supplier-driven
// status changes. Transactions already in a terminal state ignore the
// update (stale or duplicate callback, logged, nil error). On SUCCESS
// the status flips first and the commission/points engines run after;
// both are idempotent, so a crash in between is repaired by the
// reconcile job re-invoking them. On FAILED the held amount is credited
// back inside the same database transaction as the status flip.
func ApplyOutcome(db *gorm.DB, transactionID uint, result SupplierResult) error {
	var trx models.Transaction
	err := db.First(&trx, transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: id %d", ErrTransactionNotFound, transactionID)
	}
	if err != nil {
		return err
	}

	if trx.IsTerminal() {
		logger.L.Infow("stale supplier update ignored",
			"invoice_id", trx.InvoiceID, "status", trx.Status, "incoming", result.Status)
		return nil
	}

	switch result.Status {
	case models.TrxPending:
		res := db.Model(&models.Transaction{}).
			Where("id = ? AND status IN ?", trx.ID, settleableStatuses).
			Updates(map[string]any{
				"status":       models.TrxProcessing,
				"supplier_ref": result.SupplierRef,
				"message":      result.Message,
			})
		return res.Error

	case models.TrxSuccess:
		updates := map[string]any{
			"status":        models.TrxSuccess,
			"supplier_ref":  result.SupplierRef,
			"serial_number": result.SerialNumber,
			"message":       result.Message,
		}
		if len(result.Raw) > 0 {
			updates["supplier_response"] = result.Raw
		}
		res := db.Model(&models.Transaction{}).
			Where("id = ? AND status IN ?", trx.ID, settleableStatuses).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			logger.L.Infow("success update lost race, ignored", "invoice_id", trx.InvoiceID)
			return nil
		}

		// The supplier-reported price is informational only, but a
		// mismatch against the frozen snapshot needs operator eyes.
		if result.Price > 0 && result.Price != trx.SellPrice {
			logger.L.Warnw("supplier price differs from frozen sell price",
				"invoice_id", trx.InvoiceID,
				"supplier_price", result.Price,
				"supplier_admin_fee", result.AdminFee,
				"sell_price", trx.SellPrice)
		}

		logger.L.Infow("transaction settled success",
			"invoice_id", trx.InvoiceID, "serial_number", result.SerialNumber)

		if err := PayOverrideToWalletForSuccessTrx(db, trx.ID); err != nil {
			return err
		}
		return AwardPointsForSuccessTrx(db, trx.ID)

	case models.TrxFailed:
		return failTransaction(db, trx.ID, models.TrxFailed, result)

	default:
		logger.L.Warnw("unknown supplier status ignored",
			"invoice_id", trx.InvoiceID, "incoming", result.Status)
		return nil
	}
}

// ExpireTransaction moves a stale PENDING/PROCESSING transaction to
// EXPIRED and refunds the hold.
func ExpireTransaction(db *gorm.DB, transactionID uint) error {
	return failTransaction(db, transactionID, models.TrxExpired,
		SupplierResult{Message: "transaction expired"})
}

// CancelTransaction moves a PENDING/PROCESSING transaction to CANCELED
// and refunds the hold.
func CancelTransaction(db *gorm.DB, transactionID uint, reason string) error {
	return failTransaction(db, transactionID, models.TrxCanceled,
		SupplierResult{Message: reason})
}

// failTransaction flips status to a failure-terminal state and credits
// back exactly the amount the hold mutation recorded, in one database
// transaction. The TRX_REFUND mutation doubles as the idempotency
// guard.
func failTransaction(db *gorm.DB, transactionID uint, status string, result SupplierResult) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var trx models.Transaction
		err := lockForUpdate(tx).First(&trx, transactionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrTransactionNotFound, transactionID)
		}
		if err != nil {
			return err
		}
		if trx.IsTerminal() {
			logger.L.Infow("stale failure update ignored",
				"invoice_id", trx.InvoiceID, "status", trx.Status)
			return nil
		}

		updates := map[string]any{
			"status":  status,
			"message": result.Message,
		}
		if result.SupplierRef != "" {
			updates["supplier_ref"] = result.SupplierRef
		}
		if len(result.Raw) > 0 {
			updates["supplier_response"] = result.Raw
		}
		if err := tx.Model(&trx).Updates(updates).Error; err != nil {
			return err
		}

		refunded, err := HasMutation(tx, trx.ID, models.KindSaldo, models.MutCredit, models.SrcTrxRefund)
		if err != nil {
			return err
		}
		if refunded {
			return nil
		}

		// Refund what was actually held, never a recomputed price.
		var hold models.WalletMutation
		err = tx.Where("transaction_id = ? AND kind = ? AND trx_type = ? AND source = ?",
			trx.ID, models.KindSaldo, models.MutDebit, models.SrcTrxHold).
			First(&hold).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.L.Warnw("no hold mutation to refund", "invoice_id", trx.InvoiceID)
			return nil
		}
		if err != nil {
			return err
		}

		_, _, err = ApplyMutation(tx, trx.ResellerID, models.KindSaldo, -hold.Amount, MutationOpt{
			TransactionID: &trx.ID,
			Type:          models.MutCredit,
			Source:        models.SrcTrxRefund,
			Note:          fmt.Sprintf("Refund %s %s", status, trx.InvoiceID),
			AllowNegative: true,
		})
		if err != nil {
			return err
		}

		logger.L.Infow("hold refunded",
			"invoice_id", trx.InvoiceID, "status", status, "amount", -hold.Amount)
		return nil
	})
}

// RefundTransaction is the admin SUCCESS -> REFUNDED path. A nil
// amount refunds sellPrice + adminFee; a given amount must stay within
// that bound. The wallet credit commits first; commission and points
// reversal run after it and their failures are logged, not propagated,
// because the buyer refund must not depend on upline bookkeeping.
func RefundTransaction(db *gorm.DB, transactionID uint, amount *int64, allowNegative bool) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var trx models.Transaction
		err := lockForUpdate(tx).First(&trx, transactionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrTransactionNotFound, transactionID)
		}
		if err != nil {
			return err
		}
		if trx.Status == models.TrxRefunded {
			logger.L.Infow("already refunded", "invoice_id", trx.InvoiceID)
			return nil
		}
		if trx.Status != models.TrxSuccess {
			return fmt.Errorf("%w: status %s", ErrTransactionNotRefundable, trx.Status)
		}

		refund := trx.SellPrice + trx.AdminFee
		if amount != nil {
			if *amount <= 0 || *amount > refund {
				return fmt.Errorf("%w: %d", ErrInvalidRefundAmount, *amount)
			}
			refund = *amount
		}

		if err := tx.Model(&trx).Update("status", models.TrxRefunded).Error; err != nil {
			return err
		}

		_, _, err = ApplyMutation(tx, trx.ResellerID, models.KindSaldo, refund, MutationOpt{
			TransactionID: &trx.ID,
			Type:          models.MutCredit,
			Source:        models.SrcTrxRefund,
			Note:          fmt.Sprintf("Refund admin %s", trx.InvoiceID),
			AllowNegative: true,
		})
		return err
	})
	if err != nil {
		return err
	}

	// Best effort from here: the refund above is already committed.
	if _, err := ReverseCommissionFromWallet(db, transactionID, nil, allowNegative); err != nil {
		logger.L.Errorw("commission reversal failed after refund",
			"trx_id", transactionID, "error", err)
	}
	if _, err := ReversePointsFromWallet(db, transactionID); err != nil {
		logger.L.Errorw("points reversal failed after refund",
			"trx_id", transactionID, "error", err)
	}
	return nil
}
