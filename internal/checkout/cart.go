package checkout

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
)

// ErrEmptyCart is returned when a checkout is attempted with no lines.
var ErrEmptyCart = common.Validationf("cart is empty")

// CartLine is one merged entry awaiting checkout. UnitPrice is the snapshot
// taken when the item was scanned; the commit engine re-resolves the
// authoritative price by barcode at commit time.
type CartLine struct {
	ProductID int64
	Barcode   string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is the snapshot line total, rounded to 2 digits.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Cart accumulates scanned items for one checkout session, merging repeated
// scans of the same barcode into a single line. It does no I/O.
type Cart struct {
	mu    sync.Mutex
	lines map[string]*CartLine
	order []string
}

func NewCart() *Cart {
	return &Cart{lines: make(map[string]*CartLine)}
}

// AddOrMerge adds quantity of the scanned product, merging into an existing
// line for the same barcode. The price snapshot of the first scan wins.
func (c *Cart) AddOrMerge(snapshot domain.Product, quantity int) error {
	if quantity <= 0 {
		return common.Validationf("quantity must be positive, got %d", quantity)
	}
	if snapshot.Barcode == "" {
		return common.Validationf("product barcode is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[snapshot.Barcode]; ok {
		line.Quantity += quantity
		return nil
	}
	c.lines[snapshot.Barcode] = &CartLine{
		ProductID: snapshot.ID,
		Barcode:   snapshot.Barcode,
		Name:      snapshot.Name,
		UnitPrice: snapshot.Price,
		Quantity:  quantity,
	}
	c.order = append(c.order, snapshot.Barcode)
	return nil
}

// SetQuantity overwrites a line's quantity. Zero removes the line.
func (c *Cart) SetQuantity(barcode string, quantity int) error {
	if quantity < 0 {
		return common.Validationf("quantity must not be negative, got %d", quantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[barcode]
	if !ok {
		return common.Validationf("no cart line for barcode %s", barcode)
	}
	if quantity == 0 {
		c.removeLocked(barcode)
		return nil
	}
	line.Quantity = quantity
	return nil
}

func (c *Cart) Remove(barcode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(barcode)
}

func (c *Cart) removeLocked(barcode string) {
	if _, ok := c.lines[barcode]; !ok {
		return
	}
	delete(c.lines, barcode)
	for i, b := range c.order {
		if b == barcode {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[string]*CartLine)
	c.order = nil
}

// Lines returns a copy of the current lines in scan order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Cart) snapshotLocked() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, b := range c.order {
		out = append(out, *c.lines[b])
	}
	return out
}

// GrandTotal is the provisional total over snapshot prices, for display
// before commit.
func (c *Cart) GrandTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, b := range c.order {
		total = total.Add(c.lines[b].LineTotal())
	}
	return total
}

// FinalizeForCheckout returns the immutable line sequence handed to the
// commit engine. The order only affects receipt display.
func (c *Cart) FinalizeForCheckout() ([]CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return nil, ErrEmptyCart
	}
	return c.snapshotLocked(), nil
}
