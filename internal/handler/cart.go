package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shubham-1706-g/Class2Canteen/internal/cart"
	"github.com/shubham-1706-g/Class2Canteen/internal/middleware"
	"github.com/shubham-1706-g/Class2Canteen/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CartStore interface {
	Get(ctx context.Context, userID int64) (cart.Cart, error)
	Put(ctx context.Context, userID int64, c cart.Cart) error
	Clear(ctx context.Context, userID int64) error
}

type CartRequest struct {
	Items []CartItem `json:"items" validate:"required,dive"`
}

type CartItem struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CartHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	store    CartStore
	verifier middleware.TokenVerifier
}

func NewCartHandler(logger *slog.Logger, store CartStore, verifier middleware.TokenVerifier) *CartHandler {
	return &CartHandler{
		logger:   logger.With(slog.String("handler", "cart")),
		validate: validator.New(),
		store:    store,
		verifier: verifier,
	}
}

func (h *CartHandler) Init(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.verifier))

		r.Get("/cart", h.GetCart)
		r.Put("/cart", h.PutCart)
		r.Delete("/cart", h.ClearCart)
	})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFromContext(ctx)

	c, err := h.store.Get(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get cart", slog.Any("error", err), slog.Int64("user_id", user.ID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, c, http.StatusOK)
}

func (h *CartHandler) PutCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFromContext(ctx)

	var req CartRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	c := cart.Cart{Items: make([]cart.Item, 0, len(req.Items))}
	for _, it := range req.Items {
		c.Items = append(c.Items, cart.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	if err := h.store.Put(ctx, user.ID, c); err != nil {
		h.logger.ErrorContext(ctx, "failed to store cart", slog.Any("error", err), slog.Int64("user_id", user.ID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, c, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFromContext(ctx)

	if err := h.store.Clear(ctx, user.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to clear cart", slog.Any("error", err), slog.Int64("user_id", user.ID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
