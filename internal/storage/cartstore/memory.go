package cartstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/linemk/airbatu-shop/internal/domain/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore держит корзины в памяти процесса. Корзины хранятся сериализованными,
// чтобы вызывающий код не мог изменить сохранённое состояние в обход Save.
type MemoryStore struct {
	mu     sync.Mutex
	carts  map[string]memoryEntry
	claims map[string]struct{}
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		carts:  make(map[string]memoryEntry),
		claims: make(map[string]struct{}),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Cart, error) {
	s.mu.Lock()
	entry, ok := s.carts[id]
	if ok && !s.now().Before(entry.expiresAt) {
		delete(s.carts, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	var cart models.Cart
	if err := json.Unmarshal(entry.data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *MemoryStore) Save(_ context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.claims[id]; busy {
		return nil, ErrClaimed
	}
	s.claims[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.claims, id)
			s.mu.Unlock()
		})
	}, nil
}

// Sweep удаляет просроченные корзины, возвращает их количество
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.carts {
		if !now.Before(entry.expiresAt) {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

// RunSweeper периодически чистит просроченные корзины до отмены ctx
func (s *MemoryStore) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
