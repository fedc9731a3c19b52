package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

// CartState - состояние оформления заказа, выводится из содержимого корзины
type CartState string

const (
	CartStateBrowsing     CartState = "browsing"
	CartStateSlotSelected CartState = "slot_selected"
	CartStateSubmittable  CartState = "submittable"
	CartStateConfirmed    CartState = "confirmed"
)

// CartLine - позиция корзины, количество всегда >= 1
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart - корзина одного покупателя. Изменяется только через методы ниже.
type Cart struct {
	ID            string     `json:"id"`
	Lines         []CartLine `json:"lines"`
	PickupSlot    string     `json:"pickupSlot,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Add добавляет одну штуку товара. Новая позиция встаёт в конец, порядок добавления сохраняется.
func (c *Cart) Add(p *Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	})
}

// UpdateQuantity меняет количество на delta; позиция удаляется, когда количество доходит до нуля
func (c *Cart) UpdateQuantity(productID string, delta int) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		q := c.Lines[i].Quantity + delta
		if q <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
		c.Lines[i].Quantity = q
		return nil
	}
	return ErrLineNotFound
}

// Line возвращает позицию по товару
func (c *Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

func (c *Cart) SelectSlot(slot string) {
	c.PickupSlot = slot
}

func (c *Cart) SetCustomer(name, phone string) {
	c.CustomerName = name
	c.CustomerPhone = phone
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// State: Browsing -> SlotSelected -> (имя введено) -> Submittable.
// Confirmed сообщается при оформлении, после чего корзина очищается.
func (c *Cart) State() CartState {
	switch {
	case c.PickupSlot == "":
		return CartStateBrowsing
	case c.CustomerName == "" || len(c.Lines) == 0:
		return CartStateSlotSelected
	default:
		return CartStateSubmittable
	}
}

// Reset очищает корзину после передачи заказа
func (c *Cart) Reset() {
	c.Lines = nil
	c.PickupSlot = ""
	c.CustomerName = ""
	c.CustomerPhone = ""
}
