package enums

import "fmt"

// AdjustmentKind classifies an entry in the inventory ledger.
type AdjustmentKind string

const (
	AdjustmentKindInitialStock     AdjustmentKind = "initial_stock"
	AdjustmentKindRestock          AdjustmentKind = "restock"
	AdjustmentKindBulkRestock      AdjustmentKind = "bulk_restock"
	AdjustmentKindManualEdit       AdjustmentKind = "manual_edit"
	AdjustmentKindOrderConsumption AdjustmentKind = "order_consumption"
	AdjustmentKindOrderReturn      AdjustmentKind = "order_return"
)

var validAdjustmentKinds = []AdjustmentKind{
	AdjustmentKindInitialStock,
	AdjustmentKindRestock,
	AdjustmentKindBulkRestock,
	AdjustmentKindManualEdit,
	AdjustmentKindOrderConsumption,
	AdjustmentKindOrderReturn,
}

// String implements fmt.Stringer.
func (k AdjustmentKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known AdjustmentKind.
func (k AdjustmentKind) IsValid() bool {
	for _, candidate := range validAdjustmentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAdjustmentKind converts raw input into an AdjustmentKind.
func ParseAdjustmentKind(value string) (AdjustmentKind, error) {
	for _, candidate := range validAdjustmentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment kind %q", value)
}
