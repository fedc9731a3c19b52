package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "name", "description", "price", "category", "image", "color", "stock", "coming_soon"}

func TestListProducts_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)

	rows := sqlmock.NewRows(productCols).
		AddRow("watermelon", "Watermelon", "Sweet", "2.00", "Classic", "w.jpg", "bg-red-50", 99, false).
		AddRow("sarsi", "Sarsi", "Root beer", "2.00", "Limited", "s.jpg", "bg-slate-100", 0, true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products ORDER BY sort_order, id")).WillReturnRows(rows)

	products, err := repo.ListProducts(context.Background())
	assert.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "watermelon", products[0].ID)
	assert.True(t, decimal.RequireFromString("2").Equal(products[0].Price))
	assert.Equal(t, models.CategoryClassic, products[0].Category)
	assert.Equal(t, 99, products[0].Stock)
	assert.True(t, products[1].ComingSoon)
	assert.False(t, products[1].SoldOut(), "coming soon product is not sold out")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("durian").
		WillReturnRows(sqlmock.NewRows(productCols))

	p, err := repo.GetProduct(context.Background(), "durian")
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)

	expectedError := errors.New("db error")
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("durian").
		WillReturnError(expectedError)

	p, err := repo.GetProduct(context.Background(), "durian")
	assert.Equal(t, expectedError, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	query := regexp.QuoteMeta("UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1 AND NOT coming_soon")

	mock.ExpectBegin()
	mock.ExpectExec(query).WithArgs(2, "chocolate").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(5, "durian").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	assert.NoError(t, repo.DecrementStockTx(ctx, tx, "chocolate", 2))

	// остатка не хватает - ни одна строка не обновлена
	err = repo.DecrementStockTx(ctx, tx, "durian", 5)
	assert.ErrorIs(t, err, storage.ErrOutOfStock)

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	query := regexp.QuoteMeta("UPDATE products SET stock = GREATEST(stock + $1, 0) WHERE id = $2 RETURNING stock")

	mock.ExpectQuery(query).WithArgs(-3, "honeydew").WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(0))
	mock.ExpectQuery(query).WithArgs(1, "unknown").WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	stock, err := repo.AdjustStock(context.Background(), "honeydew", -3)
	assert.NoError(t, err)
	assert.Equal(t, 0, stock)

	_, err = repo.AdjustStock(context.Background(), "unknown", 1)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestockAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock = $1 WHERE NOT coming_soon")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 8))

	assert.NoError(t, repo.RestockAll(context.Background(), 99))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:           "S18U",
		CustomerName: "Ali",
		PickupSlot:   "06:30 PM",
		Items: []models.OrderItem{
			{ProductID: "watermelon", Name: "Watermelon", Quantity: 2, UnitPrice: decimal.RequireFromString("2.00")},
			{ProductID: "chocolate", Name: "Chocolate", Quantity: 1, UnitPrice: decimal.RequireFromString("2.00")},
		},
		Total:     decimal.RequireFromString("6.00"),
		Status:    models.OrderStatusPending,
		CreatedAt: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
	}
}

func TestCreateOrderTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(order.ID, order.CustomerName, "", order.PickupSlot, order.Total, order.Status, order.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	itemQuery := regexp.QuoteMeta("INSERT INTO order_items")
	mock.ExpectExec(itemQuery).
		WithArgs("S18U", 0, "watermelon", "Watermelon", 2, order.Items[0].UnitPrice).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(itemQuery).
		WithArgs("S18U", 1, "chocolate", "Chocolate", 1, order.Items[1].UnitPrice).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, repo.CreateOrderTx(context.Background(), tx, order))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_DuplicateID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.CreateOrderTx(context.Background(), tx, sampleOrder())
	assert.ErrorIs(t, err, storage.ErrOrderIDTaken)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

var orderCols = []string{"id", "customer_name", "customer_phone", "pickup_slot", "total", "status", "created_at"}
var itemCols = []string{"order_id", "product_id", "product_name", "quantity", "unit_price"}

func TestGetOrderByID_WithItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	created := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WithArgs("S18U").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("S18U", "Ali", "8888 1234", "06:30 PM", "6.00", "ready", created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("S18U", "watermelon", "Watermelon", 2, "2.00").
			AddRow("S18U", "chocolate", "Chocolate", 1, "2.00"))

	order, err := repo.GetOrderByID(context.Background(), "S18U")
	require.NoError(t, err)
	assert.Equal(t, "Ali", order.CustomerName)
	assert.Equal(t, models.OrderStatusReady, order.Status)
	assert.True(t, decimal.RequireFromString("6").Equal(order.Total))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Watermelon", order.Items[0].Name)
	assert.Equal(t, 1, order.Items[1].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(orderCols))

	order, err := repo.GetOrderByID(context.Background(), "NOPE")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	created := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ('pending', 'accepted', 'ready')")).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("AAAA", "Ali", "", "06:30 PM", "2.00", "pending", created).
			AddRow("BBBB", "Siti", "", "06:45 PM", "4.00", "accepted", created.Add(time.Minute)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("AAAA", "durian", "Durian", 1, "2.00").
			AddRow("BBBB", "bubblegum", "Bubblegum", 2, "2.00"))

	orders, err := repo.ListActiveOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Bubblegum", orders[1].Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrdersByPhone_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE customer_phone = $1")).
		WithArgs("8888 1234").
		WillReturnRows(sqlmock.NewRows(orderCols))

	// без заказов второй запрос за позициями не выполняется
	orders, err := repo.FindOrdersByPhone(context.Background(), "8888 1234")
	assert.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	query := regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2")
	mock.ExpectExec(query).WithArgs(models.OrderStatusAccepted, "S18U").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(models.OrderStatusAccepted, "NOPE").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateStatus(context.Background(), "S18U", models.OrderStatusAccepted))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "NOPE", models.OrderStatusAccepted), storage.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteClosedOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM orders WHERE status IN ('completed', 'cancelled')")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteClosedOrders(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
