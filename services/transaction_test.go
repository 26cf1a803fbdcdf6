package services

import (
	"testing"

	"arkapulsa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransactionHoldsSellPricePlusFee(t *testing.T) {
	db := newTestDB(t)
	t.Setenv("ADMIN_FEE", "250")

	upline := seedReseller(t, db, "U1", nil, true)
	buyer := seedReseller(t, db, "BUYER", upline, true)
	product := seedProduct(t, db, "PLN20", 10000, 500)
	seedMarkup(t, db, upline.ID, product.ID, 300)
	topup(t, db, buyer.ID, models.KindSaldo, 15000)

	trx, err := CreateTransaction(db, buyer.ID, product.ID, "081234567890")
	require.NoError(t, err)

	assert.NotEmpty(t, trx.InvoiceID)
	assert.Equal(t, models.TrxPending, trx.Status)
	assert.Equal(t, int64(10000), trx.BasePrice)
	assert.Equal(t, int64(500), trx.Margin)
	assert.Equal(t, int64(10800), trx.SellPrice)
	assert.Equal(t, int64(250), trx.AdminFee)

	assert.Equal(t, int64(15000-11050), balance(t, db, buyer.ID, models.KindSaldo))

	var hold models.WalletMutation
	require.NoError(t, db.Where("transaction_id = ? AND source = ?",
		trx.ID, models.SrcTrxHold).First(&hold).Error)
	assert.Equal(t, int64(-11050), hold.Amount)
	assert.Equal(t, models.MutDebit, hold.TrxType)
}

func TestCreateTransactionInsufficientBalanceRollsBack(t *testing.T) {
	db := newTestDB(t)

	buyer := seedReseller(t, db, "BUYER", nil, true)
	product := seedProduct(t, db, "PLN20", 10000, 500)
	topup(t, db, buyer.ID, models.KindSaldo, 5000)

	_, err := CreateTransaction(db, buyer.ID, product.ID, "081234567890")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// The invoice row must not survive a failed hold.
	var trxCount int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&trxCount).Error)
	assert.Equal(t, int64(0), trxCount)
	assert.Equal(t, int64(5000), balance(t, db, buyer.ID, models.KindSaldo))
}

func TestCreateTransactionUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	buyer := seedReseller(t, db, "BUYER", nil, true)

	_, err := CreateTransaction(db, buyer.ID, 9999, "081234567890")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
