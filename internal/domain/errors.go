package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientTrust   = errors.New("insufficient trust score")
	ErrConflict            = errors.New("conflict")
	ErrUpstreamUnavailable = errors.New("code host unavailable")
	ErrLedgerUnavailable   = errors.New("trust ledger unavailable")
)
