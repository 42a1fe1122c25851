package model

import "errors"

// Error taxonomy for the contract lifecycle. Callers match with errors.Is;
// handlers map these onto HTTP status codes.
var (
	ErrNotFound          = errors.New("contract not found")
	ErrUnauthorized      = errors.New("caller does not match the signing party")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrValidation        = errors.New("invalid contract")
	ErrRender            = errors.New("document render failed")
	ErrExport            = errors.New("document export failed")
)
