package variant

import (
	"errors"
	"fmt"
)

// ErrNoVariants is returned when a request asks for fewer than one variant.
var ErrNoVariants = errors.New("variants count must be at least 1")

// VariantError annotates a planning failure with the batch context.
type VariantError struct {
	VariantIndex         int `json:"variantIndex"`
	VariantsCount        int `json:"variantsCount"`
	RemainingUniqueTasks int `json:"remainingUniqueTasks"`

	Err error `json:"-"`
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %d of %d (task pool %d): %v",
		e.VariantIndex+1, e.VariantsCount, e.RemainingUniqueTasks, e.Err)
}

func (e *VariantError) Unwrap() error { return e.Err }
