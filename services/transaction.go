package services

import (
	"fmt"
	"os"
	"strconv"

	"arkapulsa/helpers"
	"arkapulsa/logger"
	"arkapulsa/models"

	"gorm.io/gorm"
)

// AdminFee is the flat per-transaction fee from ADMIN_FEE, default 0.
func AdminFee() int64 {
	fee, err := strconv.ParseInt(os.Getenv("ADMIN_FEE"), 10, 64)
	if err != nil || fee < 0 {
		return 0
	}
	return fee
}

// CreateTransaction quotes the effective sell price, holds
// sellPrice + adminFee on the buyer's spendable wallet and creates the
// PENDING transaction row, all in one database transaction. The hold
// debit and the invoice row either both exist or neither does.
func CreateTransaction(db *gorm.DB, resellerID, productID uint, customerNo string) (*models.Transaction, error) {
	quote, err := ComputeEffectiveSellPrice(db, resellerID, productID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, err
	}

	trx := models.Transaction{
		InvoiceID:   helpers.GenerateInvoiceID(),
		ResellerID:  resellerID,
		ProductID:   productID,
		CustomerNo:  customerNo,
		ProductCode: product.ProductCode,
		BasePrice:   product.BasePrice,
		Margin:      product.Margin,
		SellPrice:   quote.EffectiveSell,
		AdminFee:    AdminFee(),
		Status:      models.TrxPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		hold := trx.SellPrice + trx.AdminFee
		_, _, err := ApplyMutation(tx, resellerID, models.KindSaldo, -hold, MutationOpt{
			TransactionID: &trx.ID,
			Type:          models.MutDebit,
			Source:        models.SrcTrxHold,
			Note:          fmt.Sprintf("Pembelian %s %s", product.ProductCode, trx.InvoiceID),
			AllowNegative: false,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.L.Infow("transaction created",
		"invoice_id", trx.InvoiceID, "reseller_id", resellerID,
		"product_code", product.ProductCode, "sell_price", trx.SellPrice)
	return &trx, nil
}
