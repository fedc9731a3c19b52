package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/live"
	"github.com/linemk/airbatu-shop/internal/service"
	"github.com/linemk/airbatu-shop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type staffFixture struct {
	svc      service.StaffService
	products *fakeProductRepo
	orders   *fakeOrderRepo
	events   *fakeBroadcaster
	shop     *service.ShopStatus
}

func order(id string, status models.OrderStatus, created time.Time) *models.Order {
	return &models.Order{
		ID:           id,
		CustomerName: "Ali",
		PickupSlot:   "07:30 PM",
		Total:        decimal.RequireFromString("2.00"),
		Status:       status,
		CreatedAt:    created,
	}
}

func newStaffFixture(t *testing.T, orders ...*models.Order) *staffFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &staffFixture{
		products: newFakeProductRepo(
			lolly("watermelon", "Watermelon", 10),
			lolly("durian", "Durian", 0),
			&models.Product{ID: "sarsi", Name: "Sarsi", ComingSoon: true},
		),
		orders: newFakeOrderRepo(orders...),
		events: &fakeBroadcaster{},
		shop:   service.NewShopStatus(true),
	}
	f.svc = service.NewStaffService(testLogger(), service.StaffDeps{
		ProductRepo:  f.products,
		OrderRepo:    f.orders,
		Shop:         f.shop,
		Events:       f.events,
		PasscodeHash: hash,
		JWTSecret:    "testsecret",
		TokenTTL:     time.Hour,
		RestockLevel: 99,
	})
	return f
}

func TestStaffService_Login(t *testing.T) {
	f := newStaffFixture(t)

	tokenStr, err := f.svc.Login(context.Background(), "1234")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte("testsecret"), nil
	})
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "staff", sub)
}

func TestStaffService_LoginWrongPasscode(t *testing.T) {
	f := newStaffFixture(t)

	token, err := f.svc.Login(context.Background(), "0000")
	assert.ErrorIs(t, err, service.ErrInvalidPasscode)
	assert.Empty(t, token)
}

func TestStaffService_UpdateOrderStatus(t *testing.T) {
	now := time.Now()
	f := newStaffFixture(t, order("S18U", models.OrderStatusPending, now))
	ctx := context.Background()

	updated, err := f.svc.UpdateOrderStatus(ctx, "#s18u", models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, updated.Status)

	_, err = f.svc.UpdateOrderStatus(ctx, "S18U", models.OrderStatusCompleted)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	_, err = f.svc.UpdateOrderStatus(ctx, "S18U", "shipped")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = f.svc.UpdateOrderStatus(ctx, "NOPE", models.OrderStatusReady)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	_, err = f.svc.UpdateOrderStatus(ctx, "S18U", models.OrderStatusCancelled)
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderStatus(ctx, "S18U", models.OrderStatusPending)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	assert.Equal(t, []string{live.EventOrderStatusChanged, live.EventOrderStatusChanged}, f.events.types())
	entry, ok := f.events.events[0].Data.(service.BoardEntry)
	require.True(t, ok)
	assert.Equal(t, "Preparing", entry.Label)
}

func TestStaffService_ListAndClearOrders(t *testing.T) {
	now := time.Now()
	f := newStaffFixture(t,
		order("AAAA", models.OrderStatusCompleted, now.Add(-3*time.Minute)),
		order("BBBB", models.OrderStatusReady, now.Add(-2*time.Minute)),
		order("CCCC", models.OrderStatusCancelled, now.Add(-time.Minute)),
	)
	ctx := context.Background()

	orders, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "CCCC", orders[0].ID)

	n, err := f.svc.ClearClosedOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	orders, err = f.svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "BBBB", orders[0].ID)
	assert.Equal(t, []string{live.EventOrdersCleared}, f.events.types())
}

func TestStaffService_Stock(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	stock, err := f.svc.AdjustStock(ctx, "watermelon", -15)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	stock, err = f.svc.AdjustStock(ctx, "watermelon", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	_, err = f.svc.AdjustStock(ctx, "kopi", 1)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)

	require.NoError(t, f.svc.RestockAll(ctx))
	assert.Equal(t, 99, f.products.stock("watermelon"))
	assert.Equal(t, 99, f.products.stock("durian"))
	assert.Equal(t, 0, f.products.stock("sarsi"))

	types := f.events.types()
	require.Len(t, types, 3)
	last, ok := f.events.events[2].Data.([]service.StockUpdate)
	require.True(t, ok)
	assert.Len(t, last, 2)
}

func TestStaffService_SetShopOpen(t *testing.T) {
	f := newStaffFixture(t)

	assert.False(t, f.svc.SetShopOpen(context.Background(), false))
	assert.False(t, f.shop.Open())
	assert.True(t, f.svc.SetShopOpen(context.Background(), true))
	assert.True(t, f.shop.Open())
	assert.Equal(t, []string{live.EventShopStatusChanged, live.EventShopStatusChanged}, f.events.types())
}
