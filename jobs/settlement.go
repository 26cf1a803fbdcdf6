package jobs

import (
	"context"
	"os"
	"strconv"
	"time"

	"arkapulsa/database"
	"arkapulsa/logger"
	"arkapulsa/models"
	"arkapulsa/services"
)

func expireMinutes() int {
	n, err := strconv.Atoi(os.Getenv("TRX_EXPIRE_MINUTES"))
	if err != nil || n <= 0 {
		return 30
	}
	return n
}

// StartSettlementScheduler runs the three background loops: dispatch
// of PENDING transactions, expiry of stale ones and payout
// reconciliation for SUCCESS transactions (idempotent re-invocation
// repairs a crash between the status flip and the commission write).
func StartSettlementScheduler() {
	tickerDispatch := time.NewTicker(15 * time.Second)
	go func() {
		for {
			<-tickerDispatch.C
			dispatchPending()
		}
	}()

	tickerExpire := time.NewTicker(time.Minute)
	go func() {
		for {
			<-tickerExpire.C
			expireStale()
		}
	}()

	tickerReconcile := time.NewTicker(2 * time.Minute)
	go func() {
		for {
			<-tickerReconcile.C
			reconcilePayouts()
		}
	}()
}

// dispatchPending pushes PENDING transactions to the supplier. The
// status CAS to PROCESSING claims the row, so overlapping workers
// never dispatch the same transaction twice. The supplier call always
// completes (or fails) before any ledger work runs.
func dispatchPending() {
	supplierCode := os.Getenv("DEFAULT_SUPPLIER_CODE")
	if supplierCode == "" {
		return
	}

	sup, err := services.GetSupplier(context.Background(), database.DB, supplierCode)
	if err != nil {
		logger.L.Errorw("dispatch supplier lookup failed", "supplier", supplierCode, "error", err)
		return
	}

	var pending []models.Transaction
	if err := database.DB.
		Where("status = ?", models.TrxPending).
		Order("id ASC").
		Limit(50).
		Find(&pending).Error; err != nil {
		logger.L.Errorw("pending scan failed", "error", err)
		return
	}

	for i := range pending {
		trx := &pending[i]

		claim := database.DB.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", trx.ID, models.TrxPending).
			Updates(map[string]any{
				"status":      models.TrxProcessing,
				"supplier_id": sup.ID,
			})
		if claim.Error != nil || claim.RowsAffected == 0 {
			continue
		}

		result, err := services.DispatchTransaction(trx, sup)
		if err != nil {
			// Transport error: leave the row PROCESSING; a later
			// callback or the expiry loop resolves it.
			logger.L.Warnw("supplier dispatch failed",
				"invoice_id", trx.InvoiceID, "error", err)
			continue
		}

		if err := services.ApplyOutcome(database.DB, trx.ID, result); err != nil {
			logger.L.Errorw("settlement failed",
				"invoice_id", trx.InvoiceID, "error", err)
		}
	}
}

func expireStale() {
	cutoff := time.Now().Add(-time.Duration(expireMinutes()) * time.Minute)

	var stale []models.Transaction
	if err := database.DB.
		Where("status IN ? AND created_at < ?",
			[]string{models.TrxPending, models.TrxProcessing}, cutoff).
		Limit(100).
		Find(&stale).Error; err != nil {
		logger.L.Errorw("expire scan failed", "error", err)
		return
	}

	for i := range stale {
		if err := services.ExpireTransaction(database.DB, stale[i].ID); err != nil {
			logger.L.Errorw("expire failed",
				"invoice_id", stale[i].InvoiceID, "error", err)
		}
	}
}

func reconcilePayouts() {
	since := time.Now().Add(-24 * time.Hour)

	var settled []models.Transaction
	if err := database.DB.
		Where("status = ? AND updated_at > ?", models.TrxSuccess, since).
		Limit(200).
		Find(&settled).Error; err != nil {
		logger.L.Errorw("reconcile scan failed", "error", err)
		return
	}

	for i := range settled {
		trxID := settled[i].ID
		if err := services.PayOverrideToWalletForSuccessTrx(database.DB, trxID); err != nil {
			logger.L.Errorw("payout reconcile failed", "trx_id", trxID, "error", err)
		}
		if err := services.AwardPointsForSuccessTrx(database.DB, trxID); err != nil {
			logger.L.Errorw("points reconcile failed", "trx_id", trxID, "error", err)
		}
	}
}
