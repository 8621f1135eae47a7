package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvoicePaid      = errors.New("invoice is already paid")
	ErrInvoiceVoid      = errors.New("invoice is void")
	ErrInvoicePublished = errors.New("invoice is already published")
)

// errNotEligible aborts an assembly transaction without surfacing an error:
// duplicate period, inactive contract, missing unit data. Callers translate
// it to a nil invoice.
var errNotEligible = errors.New("contract not eligible for billing")
