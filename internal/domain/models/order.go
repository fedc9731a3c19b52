package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus - статус заказа на панели персонала
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:  OrderStatusAccepted,
	OrderStatusAccepted: OrderStatusReady,
	OrderStatusReady:    OrderStatusCompleted,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Final - заказ выдан или отменён
func (s OrderStatus) Final() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Active - заказ показывается на табло
func (s OrderStatus) Active() bool {
	return s.Valid() && !s.Final()
}

// CanTransition: pending -> accepted -> ready -> completed, отмена из любого незавершённого
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Final() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return nextStatus[s] == to
}

// ReceiptLabel - надпись на чеке покупателя
func (s OrderStatus) ReceiptLabel() string {
	switch s {
	case OrderStatusPending:
		return "PENDING"
	case OrderStatusAccepted:
		return "PREPARING"
	case OrderStatusReady:
		return "READY FOR PICKUP"
	case OrderStatusCompleted:
		return "PICKED UP"
	case OrderStatusCancelled:
		return "CANCELLED"
	}
	return string(s)
}

// BoardLabel - надпись на табло готовности
func (s OrderStatus) BoardLabel() string {
	switch s {
	case OrderStatusPending:
		return "Waiting"
	case OrderStatusAccepted:
		return "Preparing"
	case OrderStatusReady:
		return "Ready!"
	}
	return s.ReceiptLabel()
}

// Order - заказ, переданный в WhatsApp и сохранённый для персонала
type Order struct {
	ID            string          `json:"id"` // короткий код, например "S18U"
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	PickupSlot    string          `json:"pickupSlot"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
