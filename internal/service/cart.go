package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/pickup"
	"github.com/linemk/airbatu-shop/internal/storage"
	"github.com/linemk/airbatu-shop/internal/storage/cartstore"
	"github.com/shopspring/decimal"
)

// CartView - корзина вместе с производными полями для витрины
type CartView struct {
	*models.Cart
	Total        decimal.Decimal  `json:"total"`
	ItemCount    int              `json:"itemCount"`
	State        models.CartState `json:"state"`
	Slots        []pickup.Slot    `json:"slots"`
	OrdersClosed bool             `json:"ordersClosed"`
	ShopOpen     bool             `json:"shopOpen"`
}

type CartService interface {
	Create(ctx context.Context) (*CartView, error)
	Get(ctx context.Context, id string) (*CartView, error)
	AddItem(ctx context.Context, id, productID string) (*CartView, error)
	UpdateQuantity(ctx context.Context, id, productID string, delta int) (*CartView, error)
	SelectSlot(ctx context.Context, id, slot string) (*CartView, error)
	SetCustomer(ctx context.Context, id, name, phone string) (*CartView, error)
}

type cartService struct {
	log         *slog.Logger
	carts       cartstore.Store
	productRepo storage.ProductStorage
	scheduler   *pickup.Scheduler
	shop        *ShopStatus
}

func NewCartService(log *slog.Logger, carts cartstore.Store, productRepo storage.ProductStorage, scheduler *pickup.Scheduler, shop *ShopStatus) CartService {
	return &cartService{
		log:         log,
		carts:       carts,
		productRepo: productRepo,
		scheduler:   scheduler,
		shop:        shop,
	}
}

// view пересчитывает слоты при каждом открытии корзины
func (s *cartService) view(cart *models.Cart) *CartView {
	return newCartView(cart, s.scheduler.Slots(), s.shop.Open())
}

func newCartView(cart *models.Cart, slots []pickup.Slot, open bool) *CartView {
	return &CartView{
		Cart:         cart,
		Total:        cart.Total(),
		ItemCount:    cart.ItemCount(),
		State:        cart.State(),
		Slots:        slots,
		OrdersClosed: len(slots) == 0,
		ShopOpen:     open,
	}
}

func (s *cartService) load(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, cartstore.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = s.scheduler.Now()
	return s.carts.Save(ctx, cart)
}

func (s *cartService) Create(ctx context.Context) (*CartView, error) {
	const op = "service.CartService.Create"

	cart := &models.Cart{ID: uuid.NewString()}
	if err := s.save(ctx, cart); err != nil {
		s.log.Error("failed to save cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(cart), nil
}

func (s *cartService) Get(ctx context.Context, id string) (*CartView, error) {
	const op = "service.CartService.Get"

	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(cart), nil
}

// AddItem кладёт одну штуку товара. Магазин должен быть открыт, а товара должно хватать.
func (s *cartService) AddItem(ctx context.Context, id, productID string) (*CartView, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.String("cartID", id), slog.String("productID", productID))

	if !s.shop.Open() {
		return nil, fmt.Errorf("%s: %w", op, ErrShopClosed)
	}

	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAvailable(product, cart, 1); err != nil {
		logger.Warn("product not available", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cart.Add(product)
	if err := s.save(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(cart), nil
}

// UpdateQuantity меняет количество; уменьшение разрешено всегда, увеличение проверяет остаток
func (s *cartService) UpdateQuantity(ctx context.Context, id, productID string, delta int) (*CartView, error) {
	const op = "service.CartService.UpdateQuantity"
	logger := s.log.With(slog.String("op", op), slog.String("cartID", id), slog.String("productID", productID))

	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if delta > 0 {
		if !s.shop.Open() {
			return nil, fmt.Errorf("%s: %w", op, ErrShopClosed)
		}
		product, err := s.productRepo.GetProduct(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := checkAvailable(product, cart, delta); err != nil {
			logger.Warn("product not available", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := cart.UpdateQuantity(productID, delta); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.save(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(cart), nil
}

func (s *cartService) SelectSlot(ctx context.Context, id, slot string) (*CartView, error) {
	const op = "service.CartService.SelectSlot"

	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots := s.scheduler.Slots()
	if !containsSlot(slots, pickup.Slot(slot)) {
		return nil, fmt.Errorf("%s: %w", op, &SlotUnavailableError{Slot: slot, Slots: slots})
	}

	cart.SelectSlot(slot)
	if err := s.save(ctx, cart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return newCartView(cart, slots, s.shop.Open()), nil
}

// SetCustomer сохраняет имя и телефон. Пустое имя допустимо, но корзина тогда не готова к оформлению.
func (s *cartService) SetCustomer(ctx context.Context, id, name, phone string) (*CartView, error) {
	const op = "service.CartService.SetCustomer"

	cart, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cart.SetCustomer(strings.TrimSpace(name), strings.TrimSpace(phone))
	if err := s.save(ctx, cart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(cart), nil
}

// checkAvailable проверяет, что после добавления add штук в корзине не будет больше остатка
func checkAvailable(p *models.Product, cart *models.Cart, add int) error {
	if p.ComingSoon {
		return ErrProductComingSoon
	}
	inCart := 0
	if line, ok := cart.Line(p.ID); ok {
		inCart = line.Quantity
	}
	if p.Stock <= 0 || inCart+add > p.Stock {
		return ErrSoldOut
	}
	return nil
}

func containsSlot(slots []pickup.Slot, slot pickup.Slot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
