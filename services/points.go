package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"arkapulsa/logger"
	"arkapulsa/models"

	"gorm.io/gorm"
)

// PointsRatePercent is the loyalty award rate applied to the sell
// price, from POINTS_RATE_PERCENT. Zero disables points.
func PointsRatePercent() int64 {
	rate, err := strconv.ParseInt(os.Getenv("POINTS_RATE_PERCENT"), 10, 64)
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}

// AwardPointsForSuccessTrx credits the buyer's point wallet with
// (rate * sellPrice) / 100, integer division truncating toward zero.
// Idempotent on the TransactionPoint award row, same contract as the
// commission payout, including the transaction-row lock that
// serializes concurrent award attempts ahead of the row check.
func AwardPointsForSuccessTrx(db *gorm.DB, transactionID uint) error {
	rate := PointsRatePercent()
	if rate == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var trx models.Transaction
		err := lockForUpdate(tx).First(&trx, transactionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.L.Warnw("points award skipped, transaction missing", "trx_id", transactionID)
			return nil
		}
		if err != nil {
			return err
		}
		if trx.Status != models.TrxSuccess {
			return nil
		}

		points := rate * trx.SellPrice / 100
		if points <= 0 {
			return nil
		}

		var awarded int64
		err = tx.Model(&models.TransactionPoint{}).
			Where("transaction_id = ? AND amount > 0", trx.ID).
			Count(&awarded).Error
		if err != nil {
			return err
		}
		if awarded > 0 {
			logger.L.Infow("points already awarded", "invoice_id", trx.InvoiceID)
			return nil
		}

		_, _, err = ApplyMutation(tx, trx.ResellerID, models.KindPoin, points, MutationOpt{
			TransactionID: &trx.ID,
			Type:          models.MutEarn,
			Source:        models.SrcPoints,
			Note:          fmt.Sprintf("Poin %s", trx.InvoiceID),
			AllowNegative: true,
		})
		if err != nil {
			return err
		}

		row := models.TransactionPoint{
			TransactionID: trx.ID,
			ResellerID:    trx.ResellerID,
			Amount:        points,
		}
		return tx.Create(&row).Error
	})
}

// ReversePointsFromWallet takes back whatever points are still
// outstanding for the transaction. Never drives the outstanding sum
// below zero; repeat calls are no-ops. Returns the reversed amount.
func ReversePointsFromWallet(db *gorm.DB, transactionID uint) (int64, error) {
	var reversed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var rows []models.TransactionPoint
		err := lockForUpdate(tx).
			Where("transaction_id = ?", transactionID).
			Find(&rows).Error
		if err != nil {
			return err
		}

		var remaining int64
		var resellerID uint
		for _, row := range rows {
			remaining += row.Amount
			resellerID = row.ResellerID
		}
		if remaining <= 0 {
			return nil
		}

		_, _, err = ApplyMutation(tx, resellerID, models.KindPoin, -remaining, MutationOpt{
			TransactionID: &transactionID,
			Type:          models.MutReversal,
			Source:        models.SrcPoints,
			Note:          fmt.Sprintf("Reversal poin trx %d", transactionID),
			AllowNegative: true,
		})
		if err != nil {
			return err
		}

		row := models.TransactionPoint{
			TransactionID: transactionID,
			ResellerID:    resellerID,
			Amount:        -remaining,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		reversed = remaining
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reversed, nil
}
