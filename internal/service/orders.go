package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
	"github.com/shubham-1706-g/Class2Canteen/pkg/trm"
	"github.com/shubham-1706-g/Class2Canteen/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// AllTimeDays is the sentinel history window meaning "no cutoff".
const AllTimeDays = 9999

const recentOrdersLimit = 3

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) (int64, error)
	SaveOrderItems(ctx context.Context, orderID int64, items []entities.NewOrderItem, prices map[int64]int64) error
	ProductPrices(ctx context.Context, productIDs []int64) (map[int64]int64, error)

	GetOrderByID(ctx context.Context, orderID int64) (entities.Order, error)
	ListShopOrders(ctx context.Context, shopID int64, statuses ...entities.Status) ([]entities.Order, error)
	ListCompletedSince(ctx context.Context, shopID int64, since time.Time) ([]entities.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]entities.Order, error)

	UpdateOrderStatus(ctx context.Context, orderID int64, from, to entities.Status) (bool, error)

	ShopStatsToday(ctx context.Context, shopID int64, dayStart time.Time) (int, int64, error)
	RecentShopOrders(ctx context.Context, shopID int64, limit int) ([]entities.Order, error)
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

type EventPublisher interface {
	OrderCreated(ctx context.Context, order entities.Order)
	OrderStatusChanged(ctx context.Context, order entities.Order, prev entities.Status)
}

type OrderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      OrderRepo
	cache     Cache
	events    EventPublisher

	// now is swappable in tests; calendar bucketing depends on it.
	now func() time.Time
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, repo OrderRepo, cache Cache, events EventPublisher) *OrderService {
	return &OrderService{
		logger:    logger.With(slog.String("service", "orders")),
		txManager: txManager,
		repo:      repo,
		cache:     cache,
		events:    events,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Tests use it to pin calendar buckets.
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateOrder places a Pending order. Line prices are resolved from the
// products table and the total recomputed server side, so the stored total
// is authoritative no matter what the client sent.
func (s *OrderService) CreateOrder(ctx context.Context, userID, shopID int64, items []entities.NewOrderItem) (entities.Order, error) {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}

	prices, err := s.repo.ProductPrices(ctx, ids)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to resolve prices: %w", err)
	}

	var total int64
	for _, it := range items {
		price, ok := prices[it.ProductID]
		if !ok {
			return entities.Order{}, fmt.Errorf("product %d: %w", it.ProductID, entities.ErrProductNotFound)
		}
		total += price * int64(it.Quantity)
	}

	order := entities.Order{
		UserID:     userID,
		ShopID:     shopID,
		TotalCents: total,
		Status:     entities.StatusPending,
		OrderDate:  s.now(),
	}

	var orderID int64
	fn := func() error {
		return s.txManager.Do(ctx, func(ctx context.Context) error {
			id, err := s.repo.CreateOrder(ctx, order)
			if err != nil {
				return err
			}
			if err := s.repo.SaveOrderItems(ctx, id, items, prices); err != nil {
				return err
			}
			orderID = id
			return nil
		})
	}

	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  5,
		Multiplier:   2,
	}
	if err := utils.Retry(cfg, fn); err != nil {
		return entities.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	created, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to load created order: %w", err)
	}

	s.events.OrderCreated(ctx, created)
	s.logger.Debug("order created", slog.Int64("order_id", created.ID), slog.Int64("shop_id", shopID))
	return created, nil
}

// OrderSummary partitions a shop's orders into pending/ready/completed
// buckets, each newest first. Rejected orders land in no bucket. An unknown
// shop and an orderless shop both yield empty buckets.
func (s *OrderService) OrderSummary(ctx context.Context, shopID int64) (entities.OrderSummary, error) {
	orders, err := s.repo.ListShopOrders(ctx, shopID,
		entities.StatusPending, entities.StatusReady, entities.StatusCompleted)
	if err != nil {
		return entities.OrderSummary{}, fmt.Errorf("failed to list shop orders: %w", err)
	}

	summary := entities.OrderSummary{
		Pending:   []entities.Order{},
		Ready:     []entities.Order{},
		Completed: []entities.Order{},
	}
	for _, o := range orders {
		switch o.Status {
		case entities.StatusPending:
			summary.Pending = append(summary.Pending, o)
		case entities.StatusReady:
			summary.Ready = append(summary.Ready, o)
		case entities.StatusCompleted:
			summary.Completed = append(summary.Completed, o)
		}
	}
	return summary, nil
}

// WeeklySummary returns seven calendar days of completed-order earnings,
// oldest first, ending today. The result is cached per shop and invalidated
// when an order completes.
func (s *OrderService) WeeklySummary(ctx context.Context, shopID int64) (entities.WeeklySummary, error) {
	key := weeklyKey(shopID)
	if data, ok := s.cache.Get(key); ok {
		var cached entities.WeeklySummary
		if err := cached.Unmarshal(data); err == nil {
			return cached, nil
		}
		s.cache.Delete(key)
	}

	now := s.now()
	start := dayStart(now).AddDate(0, 0, -6)

	orders, err := s.repo.ListCompletedSince(ctx, shopID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed orders: %w", err)
	}

	summary := buildWeekly(orders, now)
	if data, err := summary.Marshal(); err == nil {
		s.cache.Set(key, data)
	}
	return summary, nil
}

func buildWeekly(orders []entities.Order, now time.Time) entities.WeeklySummary {
	today := dayStart(now)

	earnings := make(map[time.Time]int64, 7)
	for _, o := range orders {
		if o.Status != entities.StatusCompleted {
			continue
		}
		day := dayStart(o.OrderDate.In(now.Location()))
		earnings[day] += o.TotalCents
	}

	summary := make(entities.WeeklySummary, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		summary = append(summary, entities.DailyEarnings{
			Day:           day.Weekday().String()[:3],
			Date:          day,
			EarningsCents: earnings[day],
			IsToday:       i == 0,
		})
	}
	return summary
}

// UpdateOrderStatus moves one order along the status graph. The write is a
// compare-and-set against the status observed here, so a raced double-click
// fails with ErrTransitionConflict instead of applying twice.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, next entities.Status) (entities.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if !entities.CanTransition(order.Status, next) {
		return entities.Order{}, fmt.Errorf("%s to %s: %w", order.Status, next, entities.ErrInvalidTransition)
	}

	applied, err := s.repo.UpdateOrderStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to apply transition: %w", err)
	}
	if !applied {
		if _, err := s.repo.GetOrderByID(ctx, orderID); errors.Is(err, entities.ErrOrderNotFound) {
			return entities.Order{}, entities.ErrOrderNotFound
		}
		return entities.Order{}, entities.ErrTransitionConflict
	}

	prev := order.Status
	order.Status = next

	if next == entities.StatusCompleted {
		s.cache.Delete(weeklyKey(order.ShopID))
	}

	s.events.OrderStatusChanged(ctx, order, prev)
	s.logger.Debug("order status updated",
		slog.Int64("order_id", orderID),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
	)
	return order, nil
}

// OrderHistory returns a shop's completed orders within the last days days,
// newest first. AllTimeDays disables the cutoff.
func (s *OrderService) OrderHistory(ctx context.Context, shopID int64, days int) ([]entities.Order, error) {
	completed, err := s.repo.ListCompletedSince(ctx, shopID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed orders: %w", err)
	}
	return FilterByWindow(completed, days, s.now()), nil
}

// FilterByWindow keeps completed orders placed on or after midnight of
// (today - days), preserving input order. days >= AllTimeDays means no
// cutoff.
func FilterByWindow(orders []entities.Order, days int, now time.Time) []entities.Order {
	cutoff := dayStart(now).AddDate(0, 0, -days)

	filtered := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != entities.StatusCompleted {
			continue
		}
		if days < AllTimeDays && o.OrderDate.In(now.Location()).Before(cutoff) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

func (s *OrderService) UserOrders(ctx context.Context, userID int64) ([]entities.Order, error) {
	orders, err := s.repo.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// DashboardStats gathers today's totals and the most recent orders for the
// owner landing page. The two reads are independent, so they run in
// parallel.
func (s *OrderService) DashboardStats(ctx context.Context, shopID int64) (entities.DashboardStats, error) {
	var stats entities.DashboardStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, revenue, err := s.repo.ShopStatsToday(ctx, shopID, dayStart(s.now()))
		if err != nil {
			return err
		}
		stats.OrdersToday = count
		stats.RevenueCents = revenue
		return nil
	})
	g.Go(func() error {
		recent, err := s.repo.RecentShopOrders(ctx, shopID, recentOrdersLimit)
		if err != nil {
			return err
		}
		stats.RecentOrders = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return entities.DashboardStats{}, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}

func weeklyKey(shopID int64) string {
	return fmt.Sprintf("weekly:%d", shopID)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
