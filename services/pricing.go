package services

import (
	"errors"
	"os"
	"strconv"

	"arkapulsa/models"

	"gorm.io/gorm"
)

// MaxChainDepth bounds the upline walk so a corrupted parent cycle can
// never loop forever.
const MaxChainDepth = 50

// MarkupCeiling caps any single markup, from MARKUP_CEILING, default
// 100000 minor units.
func MarkupCeiling() int64 {
	ceiling, err := strconv.ParseInt(os.Getenv("MARKUP_CEILING"), 10, 64)
	if err != nil || ceiling <= 0 {
		return 100000
	}
	return ceiling
}

// PriceLevel is one entry of the resolved price chain. Level 0 is the
// synthetic base entry (ResellerID 0, zero markup); level 1 is the
// buyer's immediate active upline, level 2 the next one up, and so on.
type PriceLevel struct {
	ResellerID uint  `json:"reseller_id"`
	Level      int   `json:"level"`
	Markup     int64 `json:"markup"`
	Cumulative int64 `json:"cumulative"`
}

type PriceQuote struct {
	ProductID     uint         `json:"product_id"`
	BasePrice     int64        `json:"base_price"`
	Margin        int64        `json:"margin"`
	EffectiveSell int64        `json:"effective_sell"`
	Chain         []PriceLevel `json:"chain"`
}

// ComputeEffectiveSellPrice walks the buyer's upline chain and adds
// each active ancestor's markup on top of the product's base price.
// The buyer's own markup is excluded; the walk stops at the first
// missing or inactive ancestor, a repeat visit, or MaxChainDepth. An
// empty chain is not an error: the buyer then pays the base price.
func ComputeEffectiveSellPrice(db *gorm.DB, resellerID, productID uint) (*PriceQuote, error) {
	var product models.Product
	err := db.Where("id = ? AND is_active = true", productID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	var buyer models.Reseller
	err = db.Where("id = ? AND is_active = true", resellerID).First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResellerNotFound
	}
	if err != nil {
		return nil, err
	}

	return buildPriceChain(db, &buyer, &product)
}

// resolveChainForSettlement rebuilds the chain for a transaction whose
// price is already frozen. Unlike the quote path it does not require
// the buyer or product to still be active: settling an existing
// transaction must not start failing because a row was deactivated
// after the sale.
func resolveChainForSettlement(db *gorm.DB, resellerID, productID uint) (*PriceQuote, error) {
	var product models.Product
	err := db.First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	var buyer models.Reseller
	err = db.First(&buyer, resellerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResellerNotFound
	}
	if err != nil {
		return nil, err
	}

	return buildPriceChain(db, &buyer, &product)
}

func buildPriceChain(db *gorm.DB, buyer *models.Reseller, product *models.Product) (*PriceQuote, error) {
	base := product.EffectiveBase()
	quote := &PriceQuote{
		ProductID:     product.ID,
		BasePrice:     product.BasePrice,
		Margin:        product.Margin,
		EffectiveSell: base,
		Chain: []PriceLevel{
			{ResellerID: 0, Level: 0, Markup: 0, Cumulative: base},
		},
	}

	visited := map[uint]bool{buyer.ID: true}
	parentID := buyer.ParentID
	level := 0

	for parentID != nil && level < MaxChainDepth {
		if visited[*parentID] {
			break
		}
		visited[*parentID] = true

		var ancestor models.Reseller
		err := db.First(&ancestor, *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !ancestor.IsActive {
			// Inactive upline cuts the chain: everyone beyond it is
			// excluded from markup and commission.
			break
		}

		markup, err := resolveMarkup(db, ancestor.ID, product.ID)
		if err != nil {
			return nil, err
		}

		level++
		quote.EffectiveSell += markup
		quote.Chain = append(quote.Chain, PriceLevel{
			ResellerID: ancestor.ID,
			Level:      level,
			Markup:     markup,
			Cumulative: quote.EffectiveSell,
		})

		parentID = ancestor.ParentID
	}

	return quote, nil
}

// resolveMarkup picks the per-product markup when present, otherwise
// the reseller's global markup, otherwise zero. The result is clamped
// to [0, MarkupCeiling] so one bad row cannot distort the whole chain.
func resolveMarkup(db *gorm.DB, resellerID, productID uint) (int64, error) {
	var markup models.ResellerMarkup
	err := db.Where("reseller_id = ? AND product_id = ?", resellerID, productID).
		First(&markup).Error
	if err == nil {
		return clampMarkup(markup.Amount), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	var global models.ResellerGlobalMarkup
	err = db.Where("reseller_id = ?", resellerID).First(&global).Error
	if err == nil {
		return clampMarkup(global.Amount), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return 0, nil
}

func clampMarkup(amount int64) int64 {
	if amount < 0 {
		return 0
	}
	if ceiling := MarkupCeiling(); amount > ceiling {
		return ceiling
	}
	return amount
}
