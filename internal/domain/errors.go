package domain

import "errors"

var (
	// Account errors
	ErrAccessDenied        = errors.New("access denied: incorrect password")
	ErrInvalidArgument     = errors.New("transfer requires a destination account")
	ErrRuleViolation       = errors.New("transfer rule violated")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrNegativeAmount      = errors.New("amount must not be negative")
	ErrDuplicateID         = errors.New("duplicate transaction id")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidPassword     = errors.New("invalid password")

	// Persistence errors
	ErrIO               = errors.New("ledger file i/o failed")
	ErrMismatch         = errors.New("file does not match this account (owner/bank mismatch)")
	ErrMalformedLine    = errors.New("malformed line")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDateTime  = errors.New("invalid datetime format")
	ErrUnknownOperation = errors.New("unknown operation")
)
