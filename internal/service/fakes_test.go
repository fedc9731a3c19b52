package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/linemk/airbatu-shop/internal/config"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/pickup"
	"github.com/linemk/airbatu-shop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testShopConfig() config.ShopConfig {
	return config.ShopConfig{
		Name:           "Air Batu Malaysia",
		WhatsAppNumber: "6588684732",
		PickupLocation: "131B Tengah Garden Avenue",
		PickupUnit:     "#08-318",
		Timezone:       "UTC",
		OpensAt:        "10:00",
		ClosesAt:       "21:30",
		PrepBuffer:     30 * time.Minute,
		SlotStep:       15 * time.Minute,
		RestockLevel:   99,
	}
}

// newScheduler возвращает планировщик и указатель на его "текущее время"
func newScheduler(t *testing.T, h, m int) (*pickup.Scheduler, *time.Time) {
	t.Helper()
	s, err := pickup.NewScheduler(testShopConfig())
	require.NoError(t, err)

	now := time.Date(2026, time.March, 14, h, m, 0, 0, time.UTC)
	s.WithClock(func() time.Time { return now })
	return s, &now
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
	order    []string

	// entered закрывается при первом списании, которое затем ждёт proceed
	entered  chan struct{}
	proceed  chan struct{}
	holdOnce sync.Once
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[string]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func lolly(id, name string, stock int) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString("2.00"),
		Category: models.CategoryClassic,
		Stock:    stock,
	}
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]*models.Product, 0, len(f.order))
	for _, id := range f.order {
		p := *f.products[id]
		res = append(res, &p)
	}
	return res, nil
}

func (f *fakeProductRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error {
	if f.entered != nil {
		f.holdOnce.Do(func() {
			close(f.entered)
			<-f.proceed
		})
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.ComingSoon || p.Stock < quantity {
		return storage.ErrOutOfStock
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeProductRepo) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return 0, storage.ErrProductNotFound
	}
	p.Stock = max(p.Stock+delta, 0)
	return p.Stock, nil
}

func (f *fakeProductRepo) RestockAll(ctx context.Context, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if !p.ComingSoon {
			p.Stock = level
		}
	}
	return nil
}

func (f *fakeProductRepo) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	// taken - коды, на которых CreateOrderTx вернёт коллизию
	taken map[string]bool
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	f := &fakeOrderRepo{orders: make(map[string]*models.Order), taken: make(map[string]bool)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.orders[order.ID]; exists || f.taken[order.ID] {
		return storage.ErrOrderIDTaken
	}
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) sorted(keep func(*models.Order) bool, newestFirst bool) []*models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*models.Order
	for _, o := range f.orders {
		if keep(o) {
			cp := *o
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if newestFirst {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return f.sorted(func(*models.Order) bool { return true }, true), nil
}

func (f *fakeOrderRepo) ListActiveOrders(ctx context.Context) ([]*models.Order, error) {
	return f.sorted(func(o *models.Order) bool { return o.Status.Active() }, false), nil
}

func (f *fakeOrderRepo) FindOrdersByPhone(ctx context.Context, phone string) ([]*models.Order, error) {
	return f.sorted(func(o *models.Order) bool { return o.CustomerPhone == phone }, true), nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) DeleteClosedOrders(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.orders {
		if o.Status.Final() {
			delete(f.orders, id)
			n++
		}
	}
	return n, nil
}

type event struct {
	Type string
	Data any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeBroadcaster) Broadcast(eventType string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{Type: eventType, Data: data})
}

func (f *fakeBroadcaster) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]string, 0, len(f.events))
	for _, e := range f.events {
		res = append(res, e.Type)
	}
	return res
}
