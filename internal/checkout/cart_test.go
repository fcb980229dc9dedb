package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id int64, barcode, name, price string) domain.Product {
	return domain.Product{
		ID:      id,
		Barcode: barcode,
		Name:    name,
		Price:   decimal.RequireFromString(price),
	}
}

func TestCartMergesRepeatedScans(t *testing.T) {
	cart := NewCart()
	cola := testProduct(1, "8690000000011", "Cola", "10.50")

	require.NoError(t, cart.AddOrMerge(cola, 1))
	require.NoError(t, cart.AddOrMerge(cola, 2))
	require.NoError(t, cart.AddOrMerge(cola, 3))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].Quantity)
	assert.Equal(t, "63", lines[0].LineTotal().String())
}

func TestCartFirstScanPriceWins(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddOrMerge(testProduct(1, "8690000000011", "Cola", "10.50"), 1))

	// a re-scan after a price edit must not change the displayed line price
	repriced := testProduct(1, "8690000000011", "Cola", "12.00")
	require.NoError(t, cart.AddOrMerge(repriced, 1))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartRejectsInvalidQuantity(t *testing.T) {
	cart := NewCart()
	cola := testProduct(1, "8690000000011", "Cola", "10.50")

	err := cart.AddOrMerge(cola, 0)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	err = cart.AddOrMerge(cola, -3)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Empty(t, cart.Lines())
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddOrMerge(testProduct(1, "8690000000011", "Cola", "10.50"), 2))

	require.NoError(t, cart.SetQuantity("8690000000011", 5))
	assert.Equal(t, 5, cart.Lines()[0].Quantity)

	err := cart.SetQuantity("8690000000011", -1)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	err = cart.SetQuantity("0000000000000", 1)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))

	// zero removes the line entirely
	require.NoError(t, cart.SetQuantity("8690000000011", 0))
	assert.Empty(t, cart.Lines())
}

func TestCartRemoveKeepsScanOrder(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddOrMerge(testProduct(1, "1111111111111", "Cola", "10.00"), 1))
	require.NoError(t, cart.AddOrMerge(testProduct(2, "2222222222222", "Chips", "20.00"), 1))
	require.NoError(t, cart.AddOrMerge(testProduct(3, "3333333333333", "Gum", "5.00"), 1))

	cart.Remove("2222222222222")

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "1111111111111", lines[0].Barcode)
	assert.Equal(t, "3333333333333", lines[1].Barcode)
}

func TestCartGrandTotalSumsRoundedLineTotals(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddOrMerge(testProduct(1, "1111111111111", "Bulk nuts", "0.333"), 3))
	require.NoError(t, cart.AddOrMerge(testProduct(2, "2222222222222", "Chips", "20.00"), 1))

	// 0.333*3 = 0.999 rounds to 1.00 before summing
	assert.Equal(t, "21", cart.GrandTotal().StringFixed(0))
	assert.True(t, cart.GrandTotal().Equal(decimal.RequireFromString("21.00")))
}

func TestFinalizeForCheckout(t *testing.T) {
	cart := NewCart()

	_, err := cart.FinalizeForCheckout()
	require.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, cart.AddOrMerge(testProduct(1, "1111111111111", "Cola", "10.00"), 2))
	lines, err := cart.FinalizeForCheckout()
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// finalized lines are a copy; clearing the cart must not touch them
	cart.Clear()
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Empty(t, cart.Lines())
}
