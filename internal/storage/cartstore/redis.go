package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "cart:"
	claimSuffix = ":checkout"
)

// снимаем захват, только если он всё ещё наш
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisStore хранит корзины в redis, срок жизни продлевается при каждом сохранении
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

func (s *RedisStore) Save(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+cart.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Claim ставит ключ cart:<id>:checkout через SETNX с токеном владельца
func (s *RedisStore) Claim(ctx context.Context, id string) (func(), error) {
	key := keyPrefix + id + claimSuffix
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, ClaimTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim cart: %w", err)
	}
	if !ok {
		return nil, ErrClaimed
	}

	// ctx запроса может быть уже отменён, а ключ нужно снять
	releaseCtx := context.WithoutCancel(ctx)
	return func() {
		_ = releaseScript.Run(releaseCtx, s.client, []string{key}, token).Err()
	}, nil
}
