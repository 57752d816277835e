package archive

import (
	"fmt"
	"strings"
)

// Tier is the quality tier of a stored asset variant.
type Tier uint8

const (
	TierLow    Tier = 0
	TierMedium Tier = 1
	TierHigh   Tier = 2

	// TierAny marks an index entry that serves every requested tier.
	// It is valid in the index, not in a lookup key.
	TierAny Tier = 0xFF
)

// String implements fmt.Stringer.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	case TierAny:
		return "any"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// ParseTier parses a tier name.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "low":
		return TierLow, nil
	case "medium":
		return TierMedium, nil
	case "high":
		return TierHigh, nil
	default:
		return 0, fmt.Errorf("%w: tier %q", ErrInvalidKey, s)
	}
}

// AssetKey identifies one logical asset variant. Immutable; used only
// to resolve stored byte ranges.
type AssetKey struct {
	ID   uint32
	Tier Tier
}

// String returns the canonical "id-tier" form used for pyramid output
// directories and log fields.
func (k AssetKey) String() string {
	return fmt.Sprintf("%d-%s", k.ID, k.Tier)
}

func (k AssetKey) validate() error {
	switch k.Tier {
	case TierLow, TierMedium, TierHigh:
		return nil
	default:
		return fmt.Errorf("%w: tier %d not resolvable", ErrInvalidKey, uint8(k.Tier))
	}
}

// mapKey folds a key for index lookup.
func mapKey(id uint32, tier Tier) uint64 {
	return uint64(id)<<8 | uint64(tier)
}
