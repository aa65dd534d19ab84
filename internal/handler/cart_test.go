package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/shubham-1706-g/Class2Canteen/internal/cart"
	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
	"github.com/shubham-1706-g/Class2Canteen/internal/handler"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCartStore struct {
	carts map[int64]cart.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[int64]cart.Cart)}
}

func (m *memCartStore) Get(_ context.Context, userID int64) (cart.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return cart.Cart{Items: []cart.Item{}}, nil
	}
	return c, nil
}

func (m *memCartStore) Put(_ context.Context, userID int64, c cart.Cart) error {
	m.carts[userID] = c
	return nil
}

func (m *memCartStore) Clear(_ context.Context, userID int64) error {
	delete(m.carts, userID)
	return nil
}

func newCartRouter(store handler.CartStore, verifier stubVerifier) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	handler.NewCartHandler(logger, store, verifier).Init(r)
	return r
}

func TestCartHandler(t *testing.T) {
	t.Parallel()

	student := entities.User{ID: 7, Role: entities.RoleStudent}
	store := newMemCartStore()
	router := newCartRouter(store, stubVerifier{user: student})

	t.Run("requires a token", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/cart", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty cart by default", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/cart", nil, "token")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	})

	t.Run("put then get", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPut, "/cart", map[string]any{
			"items": []map[string]any{{"product_id": 10, "quantity": 2}},
		}, "token")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, router, http.MethodGet, "/cart", nil, "token")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[{"product_id":10,"quantity":2}]}`, rec.Body.String())
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPut, "/cart", map[string]any{
			"items": []map[string]any{{"product_id": 10, "quantity": 0}},
		}, "token")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("clear", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodDelete, "/cart", nil, "token")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, router, http.MethodGet, "/cart", nil, "token")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	})
}
