package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/airbatu-shop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("not enough stock")
)

// ProductStorage описывает методы для работы с каталогом и остатками.
type ProductStorage interface {
	// ListProducts возвращает весь каталог в порядке витрины.
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// DecrementStockTx списывает остаток в рамках транзакции оформления заказа.
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error
	// AdjustStock меняет остаток на delta, не опуская его ниже нуля, и возвращает новое значение.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
	// RestockAll выставляет остаток всем товарам в продаже.
	RestockAll(ctx context.Context, level int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, category, image, color, stock, coming_soon"

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image, &p.Color, &p.Stock, &p.ComingSoon)
	return p, err
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY sort_order, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// DecrementStockTx - условие stock >= $1 не даёт уйти в минус при параллельных заказах
func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1 AND NOT coming_soon",
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, id)
	}
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx,
		"UPDATE products SET stock = GREATEST(stock + $1, 0) WHERE id = $2 RETURNING stock",
		delta, id,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return stock, nil
}

func (r *productRepository) RestockAll(ctx context.Context, level int) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE products SET stock = $1 WHERE NOT coming_soon", level); err != nil {
		return fmt.Errorf("failed to restock products: %w", err)
	}
	return nil
}
