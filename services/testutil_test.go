package services

import (
	"testing"

	"arkapulsa/database"
	"arkapulsa/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One pooled connection: every pooled sqlite connection to
	// ":memory:" would otherwise open its own empty database, and a
	// single connection also serializes concurrent test transactions.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedReseller(t *testing.T, db *gorm.DB, code string, parent *models.Reseller, active bool) *models.Reseller {
	t.Helper()

	reseller := &models.Reseller{
		ResellerCode: code,
		Name:         code,
		Msisdn:       "0812" + code,
		SecretKey:    "secret-" + code,
		IsActive:     active,
	}
	if parent != nil {
		reseller.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(reseller).Error)
	return reseller
}

func seedProduct(t *testing.T, db *gorm.DB, code string, base, margin int64) *models.Product {
	t.Helper()

	product := &models.Product{
		ProductCode: code,
		Name:        code,
		Category:    "PULSA",
		BasePrice:   base,
		Margin:      margin,
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedMarkup(t *testing.T, db *gorm.DB, resellerID, productID uint, amount int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.ResellerMarkup{
		ResellerID: resellerID,
		ProductID:  productID,
		Amount:     amount,
	}).Error)
}

func seedGlobalMarkup(t *testing.T, db *gorm.DB, resellerID uint, amount int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.ResellerGlobalMarkup{
		ResellerID: resellerID,
		Amount:     amount,
	}).Error)
}

func topup(t *testing.T, db *gorm.DB, resellerID uint, kind string, amount int64) {
	t.Helper()
	err := db.Transaction(func(tx *gorm.DB) error {
		_, _, err := ApplyMutation(tx, resellerID, kind, amount, MutationOpt{
			Type:          models.MutTopup,
			Source:        models.SrcManualTopup,
			Note:          "test topup",
			AllowNegative: true,
		})
		return err
	})
	require.NoError(t, err)
}

func balance(t *testing.T, db *gorm.DB, resellerID uint, kind string) int64 {
	t.Helper()
	amount, err := WalletBalance(db, resellerID, kind)
	require.NoError(t, err)
	return amount
}

// chainScenario is the standard fixture of the settlement tests:
// product 10000+500, buyer under upline1 (markup 300) under upline2
// (markup 200), buyer funded, PENDING transaction created with its
// hold in place.
type chainScenario struct {
	Buyer   *models.Reseller
	Upline1 *models.Reseller
	Upline2 *models.Reseller
	Product *models.Product
	Trx     *models.Transaction
}

func newChainScenario(t *testing.T, db *gorm.DB) *chainScenario {
	t.Helper()

	upline2 := seedReseller(t, db, "U2", nil, true)
	upline1 := seedReseller(t, db, "U1", upline2, true)
	buyer := seedReseller(t, db, "BUYER", upline1, true)
	product := seedProduct(t, db, "PLN20", 10000, 500)

	seedMarkup(t, db, upline1.ID, product.ID, 300)
	seedMarkup(t, db, upline2.ID, product.ID, 200)

	topup(t, db, buyer.ID, models.KindSaldo, 20000)

	trx, err := CreateTransaction(db, buyer.ID, product.ID, "081234567890")
	require.NoError(t, err)

	return &chainScenario{
		Buyer:   buyer,
		Upline1: upline1,
		Upline2: upline2,
		Product: product,
		Trx:     trx,
	}
}

func markSuccess(t *testing.T, db *gorm.DB, trxID uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("id = ?", trxID).
		Update("status", models.TrxSuccess).Error)
}
