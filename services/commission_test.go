package services

import (
	"math/rand"
	"sync"
	"testing"

	"arkapulsa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPayoutCreditsEachUpline(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	assert.Equal(t, int64(300), balance(t, db, sc.Upline1.ID, models.KindKomisi))
	assert.Equal(t, int64(200), balance(t, db, sc.Upline2.ID, models.KindKomisi))
	assert.Equal(t, int64(0), balance(t, db, sc.Buyer.ID, models.KindKomisi))

	var rows []models.TransactionCommission
	require.NoError(t, db.Where("transaction_id = ?", sc.Trx.ID).Order("level ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Level)
	assert.Equal(t, sc.Upline1.ID, rows[0].ResellerID)
	assert.Equal(t, int64(300), rows[0].Amount)
	assert.Equal(t, 2, rows[1].Level)
	assert.Equal(t, sc.Upline2.ID, rows[1].ResellerID)
	assert.Equal(t, int64(200), rows[1].Amount)
}

func TestPayoutIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	assert.Equal(t, int64(300), balance(t, db, sc.Upline1.ID, models.KindKomisi))
	assert.Equal(t, int64(200), balance(t, db, sc.Upline2.ID, models.KindKomisi))

	var count int64
	require.NoError(t, db.Model(&models.TransactionCommission{}).
		Where("transaction_id = ?", sc.Trx.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestConcurrentPayoutCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	// Callback path and reconcile worker racing on the same
	// transaction: the row lock ahead of the payout check must let
	// only one of them pay.
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(300), balance(t, db, sc.Upline1.ID, models.KindKomisi))
	assert.Equal(t, int64(200), balance(t, db, sc.Upline2.ID, models.KindKomisi))

	var count int64
	require.NoError(t, db.Model(&models.TransactionCommission{}).
		Where("transaction_id = ?", sc.Trx.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPayoutAfterBuyerDeactivated(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	// Deactivating the buyer after settlement must not wedge the
	// payout; the chain is still resolved from the frozen transaction.
	require.NoError(t, db.Model(sc.Buyer).Update("is_active", false).Error)

	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))
	assert.Equal(t, int64(300), balance(t, db, sc.Upline1.ID, models.KindKomisi))
	assert.Equal(t, int64(200), balance(t, db, sc.Upline2.ID, models.KindKomisi))
}

func TestPayoutSkipsNonSuccessTransaction(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)

	// Still PENDING: nothing may be paid.
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	var count int64
	require.NoError(t, db.Model(&models.TransactionCommission{}).
		Where("transaction_id = ?", sc.Trx.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, int64(0), balance(t, db, sc.Upline1.ID, models.KindKomisi))
}

func TestReversalPartialThenFull(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	partial := int64(100)
	reversed, err := ReverseCommissionFromWallet(db, sc.Trx.ID, &partial, true)
	require.NoError(t, err)
	assert.Equal(t, int64(100), reversed)

	// Level 1 is consumed first.
	assert.Equal(t, int64(200), balance(t, db, sc.Upline1.ID, models.KindKomisi))
	assert.Equal(t, int64(200), balance(t, db, sc.Upline2.ID, models.KindKomisi))

	// Full reversal takes only what is still outstanding.
	reversed, err = ReverseCommissionFromWallet(db, sc.Trx.ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, int64(400), reversed)
	assert.Equal(t, int64(0), balance(t, db, sc.Upline1.ID, models.KindKomisi))
	assert.Equal(t, int64(0), balance(t, db, sc.Upline2.ID, models.KindKomisi))

	// Nothing left: repeat is a no-op.
	reversed, err = ReverseCommissionFromWallet(db, sc.Trx.ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reversed)
}

func TestReversalRequestBeyondRemainingIsCapped(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	huge := int64(99999)
	reversed, err := ReverseCommissionFromWallet(db, sc.Trx.ID, &huge, true)
	require.NoError(t, err)
	assert.Equal(t, int64(500), reversed)
}

// Property: no sequence of partial reversals can drive any
// (reseller, level) bucket below zero.
func TestReversalNeverOverdrawsBucket(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	rng := rand.New(rand.NewSource(7))
	var total int64
	for i := 0; i < 20; i++ {
		amount := rng.Int63n(120) + 1
		reversed, err := ReverseCommissionFromWallet(db, sc.Trx.ID, &amount, true)
		require.NoError(t, err)
		total += reversed
	}
	assert.LessOrEqual(t, total, int64(500))

	var rows []models.TransactionCommission
	require.NoError(t, db.Where("transaction_id = ?", sc.Trx.ID).Find(&rows).Error)

	sums := map[uint]int64{}
	for _, row := range rows {
		sums[row.ResellerID] += row.Amount
	}
	for resellerID, sum := range sums {
		assert.GreaterOrEqual(t, sum, int64(0), "bucket for reseller %d", resellerID)
	}
}

func TestReversalFloorAbortsWholeCall(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	// Upline1 already moved its commission out.
	err := db.Transaction(func(tx *gorm.DB) error {
		_, _, err := ApplyMutation(tx, sc.Upline1.ID, models.KindKomisi, -300, MutationOpt{
			Type:   models.MutDebit,
			Source: "WITHDRAWAL",
		})
		return err
	})
	require.NoError(t, err)

	_, err = ReverseCommissionFromWallet(db, sc.Trx.ID, nil, false)
	require.ErrorIs(t, err, ErrInsufficientCommissionBalance)

	// All-or-nothing: upline2 was not touched and no reversal rows
	// were written.
	assert.Equal(t, int64(200), balance(t, db, sc.Upline2.ID, models.KindKomisi))
	var count int64
	require.NoError(t, db.Model(&models.TransactionCommission{}).
		Where("transaction_id = ? AND amount < 0", sc.Trx.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestReversalZeroOrNegativeAmountIsNoop(t *testing.T) {
	db := newTestDB(t)
	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)
	require.NoError(t, PayOverrideToWalletForSuccessTrx(db, sc.Trx.ID))

	zero := int64(0)
	reversed, err := ReverseCommissionFromWallet(db, sc.Trx.ID, &zero, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reversed)

	negative := int64(-50)
	reversed, err = ReverseCommissionFromWallet(db, sc.Trx.ID, &negative, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reversed)

	assert.Equal(t, int64(300), balance(t, db, sc.Upline1.ID, models.KindKomisi))
}
