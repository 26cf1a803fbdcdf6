package services

import "errors"

var (
	ErrProductNotFound               = errors.New("product not found")
	ErrResellerNotFound              = errors.New("reseller not found or inactive")
	ErrInsufficientBalance           = errors.New("insufficient balance")
	ErrInsufficientCommissionBalance = errors.New("insufficient commission balance")
	ErrTransactionNotFound           = errors.New("transaction not found")
	ErrTransactionNotRefundable      = errors.New("transaction not refundable")
	ErrInvalidRefundAmount           = errors.New("invalid refund amount")
	ErrSupplierNotFound              = errors.New("supplier not found or inactive")
)
