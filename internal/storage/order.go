package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/airbatu-shop/internal/domain/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderIDTaken - короткий код заказа уже занят, нужно сгенерировать новый
	ErrOrderIDTaken = errors.New("order id already taken")
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ и его позиции в рамках транзакции.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// ListOrders возвращает все заказы, новые сверху.
	ListOrders(ctx context.Context) ([]*models.Order, error)
	// ListActiveOrders возвращает заказы, которые ещё не выданы и не отменены.
	ListActiveOrders(ctx context.Context) ([]*models.Order, error)
	FindOrdersByPhone(ctx context.Context, phone string) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	// DeleteClosedOrders удаляет выданные и отменённые заказы, возвращает их количество.
	DeleteClosedOrders(ctx context.Context) (int64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, customer_name, customer_phone, pickup_slot, total, status, created_at"

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `INSERT INTO orders (id, customer_name, customer_phone, pickup_slot, total, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		order.ID, order.CustomerName, order.CustomerPhone, order.PickupSlot, order.Total, order.Status, order.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrOrderIDTaken
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, position, product_id, product_name, quantity, unit_price)
	              VALUES ($1, $2, $3, $4, $5, $6)`
	for i, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, i, item.ProductID, item.Name, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	orders, err := r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
}

func (r *orderRepository) ListActiveOrders(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE status IN ('pending', 'accepted', 'ready') ORDER BY created_at",
	)
}

func (r *orderRepository) FindOrdersByPhone(ctx context.Context, phone string) ([]*models.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE customer_phone = $1 ORDER BY created_at DESC", phone,
	)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) DeleteClosedOrders(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE status IN ('completed', 'cancelled')")
	if err != nil {
		return 0, fmt.Errorf("failed to delete closed orders: %w", err)
	}
	return res.RowsAffected()
}

// queryOrders читает заказы, затем одним запросом подтягивает их позиции
func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[string]*models.Order)
	for rows.Next() {
		o := &models.Order{}
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.PickupSlot, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, product_name, quantity, unit_price
		 FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, position`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item models.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
