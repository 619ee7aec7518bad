// Package cart is the pre-submission collection of menu items a customer picked.
package cart

import (
	"errors"

	"github.com/yeremiapane/restaurant-ordering/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotInCart   = errors.New("item not in cart")
)

// Item is a cart line. Name and Price are copied from the menu when the item is
// first added.
type Item struct {
	MenuItemID uint   `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}

func (i Item) Subtotal() int64 { return i.Price * int64(i.Quantity) }

// Cart keeps lines in insertion order.
type Cart struct {
	Items []Item `json:"items"`
}

// ItemFromMenu snapshots a menu item as a cart line with quantity 1.
func ItemFromMenu(m models.MenuItem) Item {
	return Item{MenuItemID: m.ID, Name: m.Name, Price: m.Price, Quantity: 1}
}

func (c *Cart) index(id uint) int {
	for i, it := range c.Items {
		if it.MenuItemID == id {
			return i
		}
	}
	return -1
}

// AddItem increments the line for item if present, otherwise appends it with
// quantity 1.
func (c *Cart) AddItem(item Item) {
	if i := c.index(item.MenuItemID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity of a line. Quantities below 1 are rejected and
// leave the cart untouched; use RemoveItem to drop a line.
func (c *Cart) UpdateQuantity(id uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i := c.index(id)
	if i < 0 {
		return ErrItemNotInCart
	}
	c.Items[i].Quantity = quantity
	return nil
}

// RemoveItem drops the line for id.
func (c *Cart) RemoveItem(id uint) error {
	i := c.index(id)
	if i < 0 {
		return ErrItemNotInCart
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

func (c *Cart) Clear() { c.Items = nil }

func (c Cart) Empty() bool { return len(c.Items) == 0 }

// Total is Σ price × quantity in cents.
func (c Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Subtotal()
	}
	return total
}

// OrderItems snapshots the cart as order lines.
func (c Cart) OrderItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.Price,
			Quantity:   it.Quantity,
		})
	}
	return items
}
