package catalog

import "errors"

var (
	ErrTierNotFound             = errors.New("catalog: tier not found")
	ErrInvalidPlanConfiguration = errors.New("catalog: invalid plan configuration")
	ErrFailedToLoadPlans        = errors.New("catalog: failed to load plans")
)
