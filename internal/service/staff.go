package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/airbatu-shop/internal/domain/models"
	security "github.com/linemk/airbatu-shop/internal/jwt-new"
	"github.com/linemk/airbatu-shop/internal/live"
	"github.com/linemk/airbatu-shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// StockUpdate - событие табло об изменении остатка
type StockUpdate struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

type StaffService interface {
	Login(ctx context.Context, passcode string) (string, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	ClearClosedOrders(ctx context.Context) (int64, error)
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)
	RestockAll(ctx context.Context) error
	SetShopOpen(ctx context.Context, open bool) bool
}

type StaffDeps struct {
	ProductRepo  storage.ProductStorage
	OrderRepo    storage.OrderStorage
	Shop         *ShopStatus
	Events       Broadcaster
	PasscodeHash []byte
	JWTSecret    string
	TokenTTL     time.Duration
	RestockLevel int
}

type staffService struct {
	log *slog.Logger
	StaffDeps
}

func NewStaffService(log *slog.Logger, deps StaffDeps) StaffService {
	return &staffService{log: log, StaffDeps: deps}
}

// Login сверяет код доступа с bcrypt-хэшем из конфига и выдаёт токен персонала
func (s *staffService) Login(ctx context.Context, passcode string) (string, error) {
	const op = "service.StaffService.Login"
	logger := s.log.With(slog.String("op", op))

	if err := bcrypt.CompareHashAndPassword(s.PasscodeHash, []byte(passcode)); err != nil {
		logger.Warn("invalid passcode")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidPasscode)
	}

	token, err := security.NewToken(security.StaffSubject, s.JWTSecret, s.TokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("staff logged in")
	return token, nil
}

func (s *staffService) ListOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.StaffService.ListOrders"

	orders, err := s.OrderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateOrderStatus двигает заказ по цепочке pending -> accepted -> ready -> completed или отменяет его
func (s *staffService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	const op = "service.StaffService.UpdateOrderStatus"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", id), slog.String("status", string(status)))

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, status)
	}

	order, err := s.OrderRepo.GetOrderByID(ctx, NormalizeOrderID(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !order.Status.CanTransition(status) {
		logger.Warn("invalid transition", slog.String("from", string(order.Status)))
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, ErrInvalidTransition, order.Status, status)
	}

	if err := s.OrderRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		logger.Error("failed to update status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.Status = status

	s.Events.Broadcast(live.EventOrderStatusChanged, boardEntry(order))
	logger.Info("order status updated")
	return order, nil
}

// ClearClosedOrders удаляет выданные и отменённые заказы
func (s *staffService) ClearClosedOrders(ctx context.Context) (int64, error) {
	const op = "service.StaffService.ClearClosedOrders"

	n, err := s.OrderRepo.DeleteClosedOrders(ctx)
	if err != nil {
		s.log.Error("failed to clear orders", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.Events.Broadcast(live.EventOrdersCleared, map[string]int64{"removed": n})
	s.log.Info("closed orders cleared", slog.String("op", op), slog.Int64("removed", n))
	return n, nil
}

func (s *staffService) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	const op = "service.StaffService.AdjustStock"
	logger := s.log.With(slog.String("op", op), slog.String("productID", productID), slog.Int("delta", delta))

	stock, err := s.ProductRepo.AdjustStock(ctx, productID, delta)
	if err != nil {
		logger.Error("failed to adjust stock", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.Events.Broadcast(live.EventStockChanged, []StockUpdate{{ProductID: productID, Stock: stock}})
	logger.Info("stock adjusted", slog.Int("stock", stock))
	return stock, nil
}

// RestockAll выставляет всем товарам в продаже уровень restock_level
func (s *staffService) RestockAll(ctx context.Context) error {
	const op = "service.StaffService.RestockAll"

	if err := s.ProductRepo.RestockAll(ctx, s.RestockLevel); err != nil {
		s.log.Error("failed to restock", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.ProductRepo.ListProducts(ctx)
	if err != nil {
		// остатки уже обновлены, табло подтянет их при следующем запросе
		s.log.Warn("failed to list products after restock", slog.String("op", op), slog.Any("error", err))
		return nil
	}
	updates := make([]StockUpdate, 0, len(products))
	for _, p := range products {
		if !p.ComingSoon {
			updates = append(updates, StockUpdate{ProductID: p.ID, Stock: p.Stock})
		}
	}
	s.Events.Broadcast(live.EventStockChanged, updates)
	return nil
}

func (s *staffService) SetShopOpen(ctx context.Context, open bool) bool {
	s.Shop.SetOpen(open)
	s.Events.Broadcast(live.EventShopStatusChanged, map[string]bool{"open": open})
	s.log.Info("shop status changed", slog.String("op", "service.StaffService.SetShopOpen"), slog.Bool("open", open))
	return open
}
