package services

import (
	"sync"
	"testing"

	"arkapulsa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsAwardTruncatesTowardZero(t *testing.T) {
	db := newTestDB(t)
	t.Setenv("POINTS_RATE_PERCENT", "3")

	buyer := seedReseller(t, db, "BUYER", nil, true)
	product := seedProduct(t, db, "TSEL1", 111, 0)
	topup(t, db, buyer.ID, models.KindSaldo, 1000)

	trx, err := CreateTransaction(db, buyer.ID, product.ID, "0811")
	require.NoError(t, err)
	markSuccess(t, db, trx.ID)

	require.NoError(t, AwardPointsForSuccessTrx(db, trx.ID))

	// 3% of 111 is 3.33, truncated to 3.
	assert.Equal(t, int64(3), balance(t, db, buyer.ID, models.KindPoin))
}

func TestPointsAwardIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	t.Setenv("POINTS_RATE_PERCENT", "2")

	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	require.NoError(t, AwardPointsForSuccessTrx(db, sc.Trx.ID))
	require.NoError(t, AwardPointsForSuccessTrx(db, sc.Trx.ID))

	// 2% of 11000.
	assert.Equal(t, int64(220), balance(t, db, sc.Buyer.ID, models.KindPoin))

	var count int64
	require.NoError(t, db.Model(&models.TransactionPoint{}).
		Where("transaction_id = ?", sc.Trx.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConcurrentPointsAwardCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	t.Setenv("POINTS_RATE_PERCENT", "2")

	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- AwardPointsForSuccessTrx(db, sc.Trx.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(220), balance(t, db, sc.Buyer.ID, models.KindPoin))

	var count int64
	require.NoError(t, db.Model(&models.TransactionPoint{}).
		Where("transaction_id = ?", sc.Trx.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPointsDisabledWhenRateUnset(t *testing.T) {
	db := newTestDB(t)

	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)

	require.NoError(t, AwardPointsForSuccessTrx(db, sc.Trx.ID))
	assert.Equal(t, int64(0), balance(t, db, sc.Buyer.ID, models.KindPoin))
}

func TestPointsAwardSkipsNonSuccess(t *testing.T) {
	db := newTestDB(t)
	t.Setenv("POINTS_RATE_PERCENT", "2")

	sc := newChainScenario(t, db)

	require.NoError(t, AwardPointsForSuccessTrx(db, sc.Trx.ID))
	assert.Equal(t, int64(0), balance(t, db, sc.Buyer.ID, models.KindPoin))
}

func TestPointsReversalTakesBackOutstanding(t *testing.T) {
	db := newTestDB(t)
	t.Setenv("POINTS_RATE_PERCENT", "2")

	sc := newChainScenario(t, db)
	markSuccess(t, db, sc.Trx.ID)
	require.NoError(t, AwardPointsForSuccessTrx(db, sc.Trx.ID))

	reversed, err := ReversePointsFromWallet(db, sc.Trx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(220), reversed)
	assert.Equal(t, int64(0), balance(t, db, sc.Buyer.ID, models.KindPoin))

	// Repeat is a no-op.
	reversed, err = ReversePointsFromWallet(db, sc.Trx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reversed)
	assert.Equal(t, int64(0), balance(t, db, sc.Buyer.ID, models.KindPoin))
}
