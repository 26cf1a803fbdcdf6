package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"arkapulsa/cache"
	"arkapulsa/logger"
	"arkapulsa/models"

	"gorm.io/gorm"
)

const supplierCacheTTL = 5 * time.Minute

var supplierCache cache.Cache = cache.NewMemoryCache()

var httpClient = &http.Client{Timeout: 30 * time.Second}

// InitSupplierCache switches the supplier config cache to redis when
// REDIS_ADDR is set; otherwise the in-process cache stays.
func InitSupplierCache() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return
	}
	supplierCache = cache.NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"), 0)
	logger.L.Infow("supplier cache on redis", "addr", addr)
}

// GetSupplier is a read-through lookup by supplier code with a bounded
// staleness window.
func GetSupplier(ctx context.Context, db *gorm.DB, code string) (*models.Supplier, error) {
	key := "supplier:" + code

	if raw, ok, err := supplierCache.Get(ctx, key); err == nil && ok {
		var sup models.Supplier
		if err := json.Unmarshal(raw, &sup); err == nil {
			return &sup, nil
		}
	}

	var sup models.Supplier
	err := db.Where("supplier_code = ? AND is_active = true", code).First(&sup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(&sup); err == nil {
		_ = supplierCache.Set(ctx, key, raw, supplierCacheTTL)
	}
	return &sup, nil
}

// InvalidateSupplier drops the cached config for a supplier. Admin
// config updates call this.
func InvalidateSupplier(ctx context.Context, code string) {
	_ = supplierCache.Invalidate(ctx, "supplier:"+code)
}

type dispatchPayload struct {
	RefID       string `json:"ref_id"`
	ProductCode string `json:"product_code"`
	CustomerNo  string `json:"customer_no"`
	APIKey      string `json:"api_key"`
}

type dispatchResponse struct {
	Status       string                `json:"status"`
	Message      string                `json:"message"`
	RefID        string                `json:"ref_id"`
	SupplierRef  string                `json:"supplier_ref"`
	SerialNumber string                `json:"serial_number"`
	Price        models.FlexibleAmount `json:"price"`
	AdminFee     models.FlexibleAmount `json:"admin_fee"`
}

// DispatchTransaction sends the order to the supplier and normalizes
// the response. It performs no ledger work: callers settle the result
// afterwards, never inside a ledger transaction.
func DispatchTransaction(trx *models.Transaction, sup *models.Supplier) (SupplierResult, error) {
	payload := dispatchPayload{
		RefID:       trx.InvoiceID,
		ProductCode: trx.ProductCode,
		CustomerNo:  trx.CustomerNo,
		APIKey:      sup.APIKey,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", sup.BaseURL+"/v1/transaction", bytes.NewBuffer(body))
	if err != nil {
		return SupplierResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return SupplierResult{}, fmt.Errorf("supplier transport: %w", err)
	}
	defer resp.Body.Close()

	var decoded dispatchResponse
	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return SupplierResult{}, fmt.Errorf("supplier response decode: %w", err)
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return SupplierResult{}, fmt.Errorf("supplier response decode: %w", err)
	}

	return SupplierResult{
		Status:       NormalizeSupplierStatus(decoded.Status),
		Message:      decoded.Message,
		SupplierRef:  firstNonEmpty(decoded.SupplierRef, decoded.RefID),
		SerialNumber: decoded.SerialNumber,
		Price:        decoded.Price.MinorUnits(),
		AdminFee:     decoded.AdminFee.MinorUnits(),
		Raw:          raw,
	}, nil
}

// NormalizeSupplierStatus maps the status spellings suppliers use onto
// the three outcomes the settlement reducer consumes.
func NormalizeSupplierStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "SUKSES", "OK", "0", "COMPLETED":
		return models.TrxSuccess
	case "FAILED", "GAGAL", "ERROR", "REJECTED":
		return models.TrxFailed
	default:
		return models.TrxPending
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
