package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
	"github.com/shubham-1706-g/Class2Canteen/internal/middleware"
	"github.com/shubham-1706-g/Class2Canteen/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Failure reasons exposed to the frontend on status updates.
const (
	reasonNotFound          = "not_found"
	reasonInvalidTransition = "invalid_transition"
	reasonConflict          = "conflict"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID, shopID int64, items []entities.NewOrderItem) (entities.Order, error)
	OrderSummary(ctx context.Context, shopID int64) (entities.OrderSummary, error)
	WeeklySummary(ctx context.Context, shopID int64) (entities.WeeklySummary, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, next entities.Status) (entities.Order, error)
	OrderHistory(ctx context.Context, shopID int64, days int) ([]entities.Order, error)
	UserOrders(ctx context.Context, userID int64) ([]entities.Order, error)
	DashboardStats(ctx context.Context, shopID int64) (entities.DashboardStats, error)
}

type OrdersHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	verifier middleware.TokenVerifier
}

func NewOrdersHandler(logger *slog.Logger, svc OrderService, verifier middleware.TokenVerifier) *OrdersHandler {
	return &OrdersHandler{
		logger:   logger.With(slog.String("handler", "orders")),
		validate: validator.New(),
		svc:      svc,
		verifier: verifier,
	}
}

func (h *OrdersHandler) Init(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/user/{user_id}", h.UserOrders)

	// Owner-facing views and the transition endpoint require an owner token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.verifier))
		r.Use(middleware.RequireOwner)

		r.Get("/orders/shop/{shop_id}/summary", h.OrderSummary)
		r.Get("/orders/shop/{shop_id}/history", h.OrderHistory)
		r.Put("/orders/{order_id}/status", h.UpdateOrderStatus)
		r.Get("/dashboard/shop/{shop_id}", h.Dashboard)
		r.Get("/dashboard/shop/{shop_id}/weekly-summary", h.WeeklySummary)
	})
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	items := make([]entities.NewOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entities.NewOrderItem{ProductID: it.ID, Quantity: it.Quantity})
	}

	order, err := h.svc.CreateOrder(ctx, req.UserID, req.ShopID, items)
	if errors.Is(err, entities.ErrProductNotFound) {
		utils.WriteError(w, "unknown product in order", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create order", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ordersCreated.Inc()
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

func (h *OrdersHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathID(r, "user_id")
	if err != nil {
		utils.WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.UserOrders(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list user orders", slog.Any("error", err), slog.Int64("user_id", userID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, ordersToJSON(orders), http.StatusOK)
}

func (h *OrdersHandler) OrderSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shopID, ok := h.shopFromPath(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.OrderSummary(ctx, shopID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build order summary", slog.Any("error", err), slog.Int64("shop_id", shopID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderSummary{
		Pending:   ordersToJSON(summary.Pending),
		Ready:     ordersToJSON(summary.Ready),
		Completed: ordersToJSON(summary.Completed),
	}, http.StatusOK)
}

func (h *OrdersHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shopID, ok := h.shopFromPath(w, r)
	if !ok {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.WriteError(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	orders, err := h.svc.OrderHistory(ctx, shopID, days)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load order history", slog.Any("error", err), slog.Int64("shop_id", shopID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, ordersToJSON(orders), http.StatusOK)
}

func (h *OrdersHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := pathID(r, "order_id")
	if err != nil {
		utils.WriteError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req StatusUpdateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	next, err := entities.ParseStatus(req.Status)
	if err != nil {
		utils.WriteError(w, "status must be one of Ready, Rejected, Completed", http.StatusBadRequest)
		return
	}

	order, err := h.svc.UpdateOrderStatus(ctx, orderID, next)
	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		orderTransitions.WithLabelValues(string(next), outcomeNotFound).Inc()
		utils.WriteErrorReason(w, "order not found", reasonNotFound, http.StatusNotFound)
		return
	case errors.Is(err, entities.ErrInvalidTransition):
		orderTransitions.WithLabelValues(string(next), outcomeRejected).Inc()
		utils.WriteErrorReason(w, "transition not allowed", reasonInvalidTransition, http.StatusConflict)
		return
	case errors.Is(err, entities.ErrTransitionConflict):
		orderTransitions.WithLabelValues(string(next), outcomeConflict).Inc()
		utils.WriteErrorReason(w, "order was modified concurrently", reasonConflict, http.StatusConflict)
		return
	case err != nil:
		orderTransitions.WithLabelValues(string(next), outcomeError).Inc()
		h.logger.ErrorContext(ctx, "failed to update order status", slog.Any("error", err), slog.Int64("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	orderTransitions.WithLabelValues(string(next), outcomeApplied).Inc()
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *OrdersHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shopID, ok := h.shopFromPath(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.DashboardStats(ctx, shopID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard stats", slog.Any("error", err), slog.Int64("shop_id", shopID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, DashboardStats{
		TotalOrdersToday:  stats.OrdersToday,
		TotalRevenueToday: dollars(stats.RevenueCents),
		RecentOrders:      ordersToJSON(stats.RecentOrders),
	}, http.StatusOK)
}

func (h *OrdersHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shopID, ok := h.shopFromPath(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.WeeklySummary(ctx, shopID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build weekly summary", slog.Any("error", err), slog.Int64("shop_id", shopID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, weeklyToJSON(summary), http.StatusOK)
}

// shopFromPath parses the shop id and checks the authenticated owner is
// asking about their own shop.
func (h *OrdersHandler) shopFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	shopID, err := pathID(r, "shop_id")
	if err != nil {
		utils.WriteError(w, "invalid shop id", http.StatusBadRequest)
		return 0, false
	}

	if user, ok := middleware.UserFromContext(r.Context()); ok && user.ShopID != shopID {
		utils.WriteError(w, "shop access denied", http.StatusForbidden)
		return 0, false
	}
	return shopID, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
