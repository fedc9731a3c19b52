package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/airbatu-shop/internal/config"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/storage"
)

// Receipt - чек покупателя. Номер квартиры виден только здесь.
type Receipt struct {
	*models.Order
	StatusLabel    string `json:"statusLabel"`
	PickupLocation string `json:"pickupLocation"`
	PickupUnit     string `json:"pickupUnit"`
}

// BoardEntry - строка табло готовности, без персональных данных
type BoardEntry struct {
	ID     string             `json:"id"`
	Status models.OrderStatus `json:"status"`
	Label  string             `json:"label"`
}

func boardEntry(o *models.Order) BoardEntry {
	return BoardEntry{ID: o.ID, Status: o.Status, Label: o.Status.BoardLabel()}
}

type OrderService interface {
	Receipt(ctx context.Context, id string) (*Receipt, error)
	FindByPhone(ctx context.Context, phone string) ([]*Receipt, error)
	LiveBoard(ctx context.Context) ([]BoardEntry, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	shopCfg   config.ShopConfig
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, shopCfg config.ShopConfig) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
		shopCfg:   shopCfg,
	}
}

func (s *orderService) receipt(o *models.Order) *Receipt {
	return &Receipt{
		Order:          o,
		StatusLabel:    o.Status.ReceiptLabel(),
		PickupLocation: s.shopCfg.PickupLocation,
		PickupUnit:     s.shopCfg.PickupUnit,
	}
}

func (s *orderService) Receipt(ctx context.Context, id string) (*Receipt, error) {
	const op = "service.OrderService.Receipt"

	order, err := s.orderRepo.GetOrderByID(ctx, NormalizeOrderID(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.receipt(order), nil
}

func (s *orderService) FindByPhone(ctx context.Context, phone string) ([]*Receipt, error) {
	const op = "service.OrderService.FindByPhone"
	logger := s.log.With(slog.String("op", op))

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return []*Receipt{}, nil
	}

	orders, err := s.orderRepo.FindOrdersByPhone(ctx, phone)
	if err != nil {
		logger.Error("failed to find orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	receipts := make([]*Receipt, 0, len(orders))
	for _, o := range orders {
		receipts = append(receipts, s.receipt(o))
	}
	return receipts, nil
}

func (s *orderService) LiveBoard(ctx context.Context) ([]BoardEntry, error) {
	const op = "service.OrderService.LiveBoard"

	orders, err := s.orderRepo.ListActiveOrders(ctx)
	if err != nil {
		s.log.Error("failed to list active orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]BoardEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, boardEntry(o))
	}
	return entries, nil
}
