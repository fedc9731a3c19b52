package service

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/linemk/airbatu-shop/internal/pickup"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrShopClosed        = errors.New("shop is closed")
	ErrProductComingSoon = errors.New("product is coming soon")
	ErrSoldOut           = errors.New("product is sold out")
	ErrSlotNotOffered    = errors.New("pickup slot is not offered")
	ErrNotSubmittable    = errors.New("cart is not ready for checkout")
	ErrNameRequired      = errors.New("customer name is required")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidPasscode   = errors.New("invalid passcode")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// SlotUnavailableError несёт актуальный список слотов, чтобы клиент мог выбрать заново
type SlotUnavailableError struct {
	Slot  string
	Slots []pickup.Slot
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("pickup slot %q is not offered", e.Slot)
}

func (e *SlotUnavailableError) Is(target error) bool {
	return target == ErrSlotNotOffered
}

// Broadcaster рассылает события табло; реализуется live.Hub
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// ShopStatus - переключатель "магазин открыт", живёт в памяти процесса
type ShopStatus struct {
	open atomic.Bool
}

func NewShopStatus(open bool) *ShopStatus {
	s := &ShopStatus{}
	s.open.Store(open)
	return s
}

func (s *ShopStatus) Open() bool {
	return s.open.Load()
}

func (s *ShopStatus) SetOpen(open bool) {
	s.open.Store(open)
}

// NormalizeOrderID приводит введённый код к виду из базы: "#s18u " -> "S18U"
func NormalizeOrderID(id string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(id), "#"))
}
