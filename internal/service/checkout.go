package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/airbatu-shop/internal/config"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/live"
	"github.com/linemk/airbatu-shop/internal/pickup"
	"github.com/linemk/airbatu-shop/internal/storage"
	"github.com/linemk/airbatu-shop/internal/storage/cartstore"
)

// maxCodeAttempts - сколько раз пробуем новый код заказа при коллизии
const maxCodeAttempts = 5

// CheckoutResult - подтверждение заказа: текст и ссылка для передачи в WhatsApp
type CheckoutResult struct {
	Order      *models.Order    `json:"order"`
	Summary    string           `json:"summary"`
	HandoffURL string           `json:"handoffUrl"`
	State      models.CartState `json:"state"`
}

type CheckoutService interface {
	Checkout(ctx context.Context, cartID string) (*CheckoutResult, error)
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	carts       cartstore.Store
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	scheduler   *pickup.Scheduler
	shop        *ShopStatus
	events      Broadcaster
	shopCfg     config.ShopConfig
	newCode     func() string
}

type CheckoutOption func(*checkoutService)

// WithOrderCodes подменяет генератор кодов заказа
func WithOrderCodes(gen func() string) CheckoutOption {
	return func(s *checkoutService) { s.newCode = gen }
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	carts cartstore.Store,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	scheduler *pickup.Scheduler,
	shop *ShopStatus,
	events Broadcaster,
	shopCfg config.ShopConfig,
	opts ...CheckoutOption,
) CheckoutService {
	s := &checkoutService{
		log:         log,
		db:          db,
		carts:       carts,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		scheduler:   scheduler,
		shop:        shop,
		events:      events,
		shopCfg:     shopCfg,
		newCode:     NewOrderCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout проверяет корзину, списывает остатки и сохраняет заказ в одной транзакции,
// затем собирает текст для WhatsApp и очищает корзину.
func (s *checkoutService) Checkout(ctx context.Context, cartID string) (*CheckoutResult, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.String("cartID", cartID))

	// одна корзина оформляется не более одного раза одновременно
	release, err := s.carts.Claim(ctx, cartID)
	if err != nil {
		if errors.Is(err, cartstore.ErrClaimed) {
			logger.Warn("checkout already in progress")
			return nil, fmt.Errorf("%s: %w", op, ErrNotSubmittable)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, cartstore.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCartNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.shop.Open() {
		return nil, fmt.Errorf("%s: %w", op, ErrShopClosed)
	}
	if err := s.validate(ctx, cart); err != nil {
		logger.Warn("cart is not submittable", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var order *models.Order
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		order = orderFromCart(cart, s.newCode(), s.scheduler)
		err = s.placeOrder(ctx, order)
		if !errors.Is(err, storage.ErrOrderIDTaken) {
			break
		}
		logger.Warn("order code collision, retrying", slog.String("orderID", order.ID))
	}
	if err != nil {
		logger.Error("failed to place order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := BuildSummary(s.shopCfg.Name, order)
	result := &CheckoutResult{
		Order:      order,
		Summary:    summary,
		HandoffURL: HandoffURL(s.shopCfg.WhatsAppNumber, summary),
		State:      models.CartStateConfirmed,
	}

	// заказ уже сохранён, ошибка очистки корзины не отменяет подтверждение
	cart.Reset()
	cart.UpdatedAt = s.scheduler.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		logger.Error("failed to reset cart", slog.Any("error", err))
	}

	s.events.Broadcast(live.EventOrderCreated, boardEntry(order))
	logger.Info("order placed", slog.String("orderID", order.ID))
	return result, nil
}

// validate: имя, хотя бы одна позиция и слот из текущего списка
func (s *checkoutService) validate(ctx context.Context, cart *models.Cart) error {
	if strings.TrimSpace(cart.CustomerName) == "" {
		return ErrNameRequired
	}
	if len(cart.Lines) == 0 {
		return ErrEmptyCart
	}
	if cart.PickupSlot == "" {
		return ErrNotSubmittable
	}

	slots := s.scheduler.Slots()
	if !containsSlot(slots, pickup.Slot(cart.PickupSlot)) {
		stale := cart.PickupSlot
		// выбор слота сбрасывается, чтобы покупатель выбрал из нового списка
		cart.SelectSlot("")
		if err := s.carts.Save(ctx, cart); err != nil {
			s.log.Error("failed to clear stale slot", slog.Any("error", err))
		}
		return &SlotUnavailableError{Slot: stale, Slots: slots}
	}
	return nil
}

// placeOrder - транзакция: списание остатков и вставка заказа.
// Если что-то идет не так, транзакция откатывается.
func (s *checkoutService) placeOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, item := range order.Items {
		if err := s.productRepo.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.rollback(tx)
			if errors.Is(err, storage.ErrOutOfStock) {
				return fmt.Errorf("%s: %w", item.Name, ErrSoldOut)
			}
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		s.rollback(tx)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *checkoutService) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		s.log.Error("transaction rollback failed", slog.Any("error", err))
	}
}

func orderFromCart(cart *models.Cart, code string, scheduler *pickup.Scheduler) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return &models.Order{
		ID:            code,
		CustomerName:  strings.TrimSpace(cart.CustomerName),
		CustomerPhone: cart.CustomerPhone,
		PickupSlot:    cart.PickupSlot,
		Items:         items,
		Total:         cart.Total(),
		Status:        models.OrderStatusPending,
		CreatedAt:     scheduler.Now(),
	}
}
