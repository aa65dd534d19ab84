// Package cart keeps each student's cart server side in Redis, as an
// explicit key-value capability with get, set and clear operations.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/config"

	"github.com/redis/go-redis/v9"
)

const keyFormat = "cart:%d"

type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Cart struct {
	Items []Item `json:"items"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get returns the user's cart, or an empty cart when none is stored.
func (s *Store) Get(ctx context.Context, userID int64) (Cart, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{Items: []Item{}}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return Cart{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	return cart, nil
}

// Put replaces the user's cart. The TTL resets on every write, so an
// abandoned cart eventually disappears on its own.
func (s *Store) Put(ctx context.Context, userID int64, cart Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

// Clear drops the user's cart. Clearing a missing cart is a no-op.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func key(userID int64) string {
	return fmt.Sprintf(keyFormat, userID)
}
