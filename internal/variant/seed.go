package variant

import (
	"strconv"

	"github.com/google/uuid"
)

// shuffleSuffix marks the seed stream used for presentation order.
const shuffleSuffix = ":shuffle"

// NewBaseSeed returns a fresh random base seed.
func NewBaseSeed() string {
	return uuid.NewString()
}

// VariantSeed derives the planning seed for variant index i.
func VariantSeed(base string, i int) string {
	return base + ":" + strconv.Itoa(i)
}

// ShuffleSeed derives the presentation-order seed from a variant seed.
func ShuffleSeed(variantSeed string) string {
	return variantSeed + shuffleSuffix
}
