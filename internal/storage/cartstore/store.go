// Package cartstore хранит корзины покупателей между запросами.
package cartstore

import (
	"context"
	"errors"
	"time"

	"github.com/linemk/airbatu-shop/internal/domain/models"
)

var (
	ErrNotFound = errors.New("cart not found")
	// ErrClaimed - корзина уже оформляется другим запросом
	ErrClaimed = errors.New("cart is already being checked out")
)

// ClaimTTL ограничивает захват, если процесс упал, не отпустив корзину
const ClaimTTL = 30 * time.Second

// Store - хранилище корзин с истечением по TTL
type Store interface {
	Get(ctx context.Context, id string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	// Claim захватывает корзину на время оформления заказа.
	// Пока release не вызван, повторный Claim возвращает ErrClaimed.
	Claim(ctx context.Context, id string) (release func(), err error)
}
