package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/airbatu-shop/internal/config"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/pickup"
	"github.com/linemk/airbatu-shop/internal/storage"
)

// ProductView - товар витрины с признаком "закончился"
type ProductView struct {
	*models.Product
	SoldOut bool `json:"soldOut"`
}

// ShopInfo - шапка витрины: где забирать и работает ли магазин
type ShopInfo struct {
	Name           string        `json:"name"`
	PickupLocation string        `json:"pickupLocation"`
	PrivacyNote    string        `json:"privacyNote"`
	Open           bool          `json:"open"`
	OpensAt        pickup.Slot   `json:"opensAt"`
	ClosesAt       pickup.Slot   `json:"closesAt"`
	OrdersClosed   bool          `json:"ordersClosed"`
	Slots          []pickup.Slot `json:"slots"`
}

type CatalogService interface {
	ListProducts(ctx context.Context) ([]ProductView, error)
	ShopInfo(ctx context.Context) *ShopInfo
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	scheduler   *pickup.Scheduler
	shop        *ShopStatus
	shopCfg     config.ShopConfig
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage, scheduler *pickup.Scheduler, shop *ShopStatus, shopCfg config.ShopConfig) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
		scheduler:   scheduler,
		shop:        shop,
		shopCfg:     shopCfg,
	}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]ProductView, error) {
	const op = "service.CatalogService.ListProducts"
	logger := s.log.With(slog.String("op", op))

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, SoldOut: p.SoldOut()})
	}
	return views, nil
}

// ShopInfo не раскрывает номер квартиры: он есть только в чеке
func (s *catalogService) ShopInfo(ctx context.Context) *ShopInfo {
	slots := s.scheduler.Slots()
	return &ShopInfo{
		Name:           s.shopCfg.Name,
		PickupLocation: s.shopCfg.PickupLocation,
		PrivacyNote:    s.shopCfg.PrivacyNote,
		Open:           s.shop.Open(),
		OpensAt:        pickup.FormatLabel(s.scheduler.Opens()),
		ClosesAt:       pickup.FormatLabel(s.scheduler.Closes()),
		OrdersClosed:   len(slots) == 0,
		Slots:          slots,
	}
}
