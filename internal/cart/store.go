package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cartTTL bounds how long an untouched session cart survives in Redis.
const cartTTL = 7 * 24 * time.Hour

// Cart is the session-scoped shopping cart, stored as one JSON blob keyed by
// the owning user.
type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem snapshots the catalog name and unit price at the moment the item
// was added; checkout re-reads the snapshot, not the live catalog.
type CartItem struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal sums qty x unit price over the cart lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Store persists session carts.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type redisStore struct {
	kv kvStore
}

// NewRedisStore returns a cart store backed by the shared Redis client.
func NewRedisStore(kv *redis.Client) (Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisStore{kv: kv}, nil
}

func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(userID.String()))
	if err != nil {
		if redis.IsNil(err) {
			return &Cart{UserID: userID}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

func (s *redisStore) Save(ctx context.Context, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(cart.UserID.String()), string(payload), cartTTL); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(userID.String())); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
