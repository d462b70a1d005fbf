// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// Validation failures raised before any API call
var (
	ErrStockLimit      = api.Validation("Stock limit reached for this product")
	ErrInvalidQuantity = api.Validation("Quantity must be at least 1")
	ErrOutOfStock      = api.Validation("This product is out of stock")
	ErrItemNotFound    = &api.Error{Kind: api.KindNotFound, Message: "Cart item not found"}
)

// Cart is the cart view-state of one customer. Every mutation calls the API
// and then replaces the local items with a full re-fetch.
type Cart struct {
	client *api.Client
	lines  *Lines
	tokens api.TokenSource
	userID int64
	logger *logrus.Entry

	op    sync.Mutex // serializes mutations
	mu    sync.RWMutex
	items []Item
}

// New creates a cart for userID. Call Load before reading items.
func New(client *api.Client, tokens api.TokenSource, userID int64, logger *logrus.Logger) *Cart {
	return &Cart{
		client: client,
		lines:  NewLines(client),
		tokens: tokens,
		userID: userID,
		logger: logger.WithFields(logrus.Fields{"component": "cart", "user_id": userID}),
	}
}

// UserID returns the owner of the cart
func (c *Cart) UserID() int64 {
	return c.userID
}

// Items returns a snapshot of the local items
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

// Totals returns totals of the local items
func (c *Cart) Totals() Totals {
	return CalculateTotals(c.Items())
}

// Find returns the local item with id
func (c *Cart) Find(itemID int64) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// Load replaces local items with the API's cart
func (c *Cart) Load(ctx context.Context) ([]Item, error) {
	c.op.Lock()
	defer c.op.Unlock()
	return c.reload(ctx)
}

// Add puts qty units of product into the cart at its effective price
func (c *Cart) Add(ctx context.Context, product catalog.Product, qty int) ([]Item, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if !product.InStock() {
		return nil, ErrOutOfStock
	}

	c.op.Lock()
	defer c.op.Unlock()

	inCart := 0
	for _, item := range c.Items() {
		if item.ProductID == product.ID {
			inCart += item.Qty
		}
	}
	if inCart+qty > product.Stock {
		return nil, ErrStockLimit
	}

	if err := c.lines.Add(ctx, c.tokens, c.userID, product.ID, qty, product.EffectivePrice()); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"qty":        qty,
	}).Info("Added to cart")
	return c.reload(ctx)
}

// UpdateQuantity changes the quantity of a line. A quantity of zero or less
// removes the line; a quantity above the product stock is rejected without a call.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID int64, newQty int) ([]Item, error) {
	if newQty <= 0 {
		return c.Remove(ctx, itemID)
	}

	c.op.Lock()
	defer c.op.Unlock()

	item, ok := c.Find(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	if stock := item.Stock(); stock >= 0 && newQty > stock {
		return nil, ErrStockLimit
	}

	// Provisional values until the re-fetch below replaces them
	updated := item
	updated.Qty = newQty
	updated.Subtotal = updated.LineTotal()
	c.replace(updated)

	err := c.client.Do(ctx, c.tokens, api.Call{
		Endpoint: api.CartUpdate,
		PathArgs: []string{strconv.FormatInt(itemID, 10)},
		Body:     updateRequest{Qty: newQty, Subtotal: updated.Subtotal},
	}, nil)
	if err != nil {
		c.replace(item)
		return nil, fmt.Errorf("failed to update cart item %d: %w", itemID, err)
	}

	return c.reload(ctx)
}

// Remove deletes a line
func (c *Cart) Remove(ctx context.Context, itemID int64) ([]Item, error) {
	c.op.Lock()
	defer c.op.Unlock()

	if err := c.lines.Delete(ctx, c.tokens, itemID); err != nil {
		return nil, err
	}

	return c.reload(ctx)
}

// Clear empties the cart on the API and locally
func (c *Cart) Clear(ctx context.Context) error {
	c.op.Lock()
	defer c.op.Unlock()

	if err := c.client.Do(ctx, c.tokens, api.Call{Endpoint: api.CartClear}, nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	c.Forget()
	return nil
}

// Forget drops local items without calling the API
func (c *Cart) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Cart) reload(ctx context.Context) ([]Item, error) {
	var items []Item
	err := c.client.Do(ctx, c.tokens, api.Call{
		Endpoint: api.CartGet,
		PathArgs: []string{strconv.FormatInt(c.userID, 10)},
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return append([]Item(nil), items...), nil
}

func (c *Cart) replace(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			return
		}
	}
}

// Lines performs single cart-line calls without holding view-state
type Lines struct {
	client *api.Client
}

// NewLines creates a new cart-line client
func NewLines(client *api.Client) *Lines {
	return &Lines{client: client}
}

// Add creates a cart line for userID at unit price
func (l *Lines) Add(ctx context.Context, tokens api.TokenSource, userID, productID int64, qty int, price decimal.Decimal) error {
	req := addRequest{
		UserID:    userID,
		ProductID: productID,
		Qty:       qty,
		Price:     price,
		Subtotal:  price.Mul(decimal.NewFromInt(int64(qty))),
	}
	if err := l.client.Do(ctx, tokens, api.Call{Endpoint: api.CartAdd, Body: req}, nil); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// Delete removes a cart line
func (l *Lines) Delete(ctx context.Context, tokens api.TokenSource, itemID int64) error {
	err := l.client.Do(ctx, tokens, api.Call{
		Endpoint: api.CartDelete,
		PathArgs: []string{strconv.FormatInt(itemID, 10)},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to remove cart item %d: %w", itemID, err)
	}
	return nil
}
