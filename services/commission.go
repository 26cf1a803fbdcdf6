package services

import (
	"errors"
	"fmt"
	"sort"

	"arkapulsa/helpers"
	"arkapulsa/logger"
	"arkapulsa/models"

	"gorm.io/gorm"
)

// PayOverrideToWalletForSuccessTrx credits each upline's commission
// wallet with its markup share for a successful transaction. The call
// is idempotent: once any payout row exists for the transaction it is
// a no-op, so crash-retry and duplicate callbacks are safe. The
// transaction row is locked before the payout-row check so that the
// callback path and the reconcile worker serialize on it instead of
// both passing the check on a stale count. All levels commit in one
// database transaction.
func PayOverrideToWalletForSuccessTrx(db *gorm.DB, transactionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var trx models.Transaction
		err := lockForUpdate(tx).First(&trx, transactionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.L.Warnw("commission payout skipped, transaction missing", "trx_id", transactionID)
			return nil
		}
		if err != nil {
			return err
		}
		if trx.Status != models.TrxSuccess {
			logger.L.Infow("commission payout skipped, transaction not success",
				"invoice_id", trx.InvoiceID, "status", trx.Status)
			return nil
		}

		var paid int64
		err = tx.Model(&models.TransactionCommission{}).
			Where("transaction_id = ? AND amount > 0", trx.ID).
			Count(&paid).Error
		if err != nil {
			return err
		}
		if paid > 0 {
			logger.L.Infow("commission already paid", "invoice_id", trx.InvoiceID)
			return nil
		}

		quote, err := resolveChainForSettlement(tx, trx.ResellerID, trx.ProductID)
		if err != nil {
			return err
		}

		refID := helpers.NewRefID()
		for _, level := range quote.Chain {
			if level.Level == 0 || level.Markup <= 0 {
				continue
			}

			// Commission credit is never blocked by a floor check.
			_, _, err := ApplyMutation(tx, level.ResellerID, models.KindKomisi, level.Markup, MutationOpt{
				TransactionID: &trx.ID,
				Type:          models.MutEarn,
				Source:        models.SrcCommission,
				Note:          fmt.Sprintf("Komisi level %d %s", level.Level, trx.InvoiceID),
				RefID:         refID,
				AllowNegative: true,
			})
			if err != nil {
				return err
			}

			row := models.TransactionCommission{
				TransactionID: trx.ID,
				ResellerID:    level.ResellerID,
				Level:         level.Level,
				Amount:        level.Markup,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

type commissionBucket struct {
	ResellerID uint
	Level      int
	Remaining  int64
}

// ReverseCommissionFromWallet claws paid commission back. A nil
// reverseAmount reverses everything still outstanding; a positive
// amount is consumed bucket by bucket, ascending by level (closest
// upline first), capped by what remains. Every consumed bucket gets a
// negative TransactionCommission row so later partial reversals keep
// composing correctly. All debits happen in one database transaction;
// with allowNegative=false a floor breach aborts the whole call.
// Returns the total amount actually reversed.
func ReverseCommissionFromWallet(db *gorm.DB, transactionID uint, reverseAmount *int64, allowNegative bool) (int64, error) {
	if reverseAmount != nil && *reverseAmount <= 0 {
		return 0, nil
	}

	var reversed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		buckets, err := loadCommissionBuckets(tx, transactionID)
		if err != nil {
			return err
		}
		if len(buckets) == 0 {
			logger.L.Infow("nothing to reverse", "trx_id", transactionID)
			return nil
		}

		var target int64
		if reverseAmount == nil {
			for _, b := range buckets {
				target += b.Remaining
			}
		} else {
			target = *reverseAmount
		}
		if target <= 0 {
			return nil
		}

		refID := helpers.NewRefID()
		need := target
		for _, bucket := range buckets {
			if need <= 0 {
				break
			}
			take := bucket.Remaining
			if take > need {
				take = need
			}

			_, _, err := ApplyMutation(tx, bucket.ResellerID, models.KindKomisi, -take, MutationOpt{
				TransactionID: &transactionID,
				Type:          models.MutReversal,
				Source:        models.SrcCommission,
				Note:          fmt.Sprintf("Reversal komisi level %d trx %d", bucket.Level, transactionID),
				RefID:         refID,
				AllowNegative: allowNegative,
			})
			if errors.Is(err, ErrInsufficientBalance) {
				return fmt.Errorf("%w: reseller %d level %d",
					ErrInsufficientCommissionBalance, bucket.ResellerID, bucket.Level)
			}
			if err != nil {
				return err
			}

			row := models.TransactionCommission{
				TransactionID: transactionID,
				ResellerID:    bucket.ResellerID,
				Level:         bucket.Level,
				Amount:        -take,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			need -= take
			reversed += take
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return reversed, nil
}

// loadCommissionBuckets nets payout and reversal rows per
// (reseller, level) and returns the buckets that still hold funds,
// ascending by level for a deterministic debit order.
func loadCommissionBuckets(tx *gorm.DB, transactionID uint) ([]commissionBucket, error) {
	var rows []models.TransactionCommission
	err := lockForUpdate(tx).
		Where("transaction_id = ?", transactionID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	type key struct {
		resellerID uint
		level      int
	}
	sums := make(map[key]int64)
	for _, row := range rows {
		sums[key{row.ResellerID, row.Level}] += row.Amount
	}

	buckets := make([]commissionBucket, 0, len(sums))
	for k, remaining := range sums {
		if remaining <= 0 {
			continue
		}
		buckets = append(buckets, commissionBucket{
			ResellerID: k.resellerID,
			Level:      k.level,
			Remaining:  remaining,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Level != buckets[j].Level {
			return buckets[i].Level < buckets[j].Level
		}
		return buckets[i].ResellerID < buckets[j].ResellerID
	})
	return buckets, nil
}
