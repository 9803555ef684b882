package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// StockLedgerEntry Tests
// ============================================================================

func TestTotalStock(t *testing.T) {
	e := &StockLedgerEntry{AvailableStock: 70, ReservedStock: 30}
	assert.Equal(t, 100, e.TotalStock())
}

func TestTotalStock_NothingReserved(t *testing.T) {
	e := &StockLedgerEntry{AvailableStock: 40, ReservedStock: 0}
	assert.Equal(t, 40, e.TotalStock())
}

func TestTotalStock_NegativeAvailable(t *testing.T) {
	// Adjustments may push available stock negative; total reflects that.
	e := &StockLedgerEntry{AvailableStock: -5, ReservedStock: 3}
	assert.Equal(t, -2, e.TotalStock())
}

func TestIsLowStock_BelowMinimum(t *testing.T) {
	e := &StockLedgerEntry{AvailableStock: 3, ReservedStock: 2, MinimumStock: 10}
	assert.True(t, e.IsLowStock())
}

func TestIsLowStock_ExactlyAtMinimum(t *testing.T) {
	e := &StockLedgerEntry{AvailableStock: 10, ReservedStock: 3, MinimumStock: 10}
	assert.True(t, e.IsLowStock())
}

func TestIsLowStock_AboveMinimum(t *testing.T) {
	e := &StockLedgerEntry{AvailableStock: 11, ReservedStock: 0, MinimumStock: 10}
	assert.False(t, e.IsLowStock())
}

func TestIsLowStock_ReservedStockDoesNotCount(t *testing.T) {
	// Reserved stock is committed to orders. A product with nearly everything
	// reserved and little left to sell is low even though the total is high.
	e := &StockLedgerEntry{AvailableStock: 5, ReservedStock: 95, MinimumStock: 10}
	assert.True(t, e.IsLowStock())
}

func TestIsLowStock_LargeReserveDoesNotMaskDepletion(t *testing.T) {
	e := &StockLedgerEntry{AvailableStock: 0, ReservedStock: 15, MinimumStock: 10}
	assert.True(t, e.IsLowStock())
}

func TestDefaultMinimumStock(t *testing.T) {
	assert.Equal(t, 10, DefaultMinimumStock)
}

// ============================================================================
// Movement Type Validation Tests
// ============================================================================

func TestValidMovementTypes_ContainsAll(t *testing.T) {
	types := ValidMovementTypes()
	expected := []string{
		MovementStockIn, MovementStockOut,
		MovementReserved, MovementReleased, MovementAdjustment,
	}
	assert.ElementsMatch(t, expected, types)
}

func TestIsValidMovementType_Valid(t *testing.T) {
	for _, mt := range ValidMovementTypes() {
		assert.True(t, IsValidMovementType(mt), "expected %q to be valid", mt)
	}
}

func TestIsValidMovementType_Invalid(t *testing.T) {
	assert.False(t, IsValidMovementType("unknown"))
	assert.False(t, IsValidMovementType(""))
	assert.False(t, IsValidMovementType("STOCK_IN"))
}

func TestStockMovement_OptionalFields(t *testing.T) {
	orderID := int64(42)
	reason := "order 42"
	m := StockMovement{
		ProductID:    7,
		MovementType: MovementReserved,
		Quantity:     3,
		OrderID:      &orderID,
		Reason:       &reason,
	}
	assert.Equal(t, int64(42), *m.OrderID)
	assert.Equal(t, "order 42", *m.Reason)

	bare := StockMovement{ProductID: 7, MovementType: MovementAdjustment, Quantity: 1}
	assert.Nil(t, bare.OrderID)
	assert.Nil(t, bare.Reason)
}
