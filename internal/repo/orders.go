package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

var orderColumns = []string{
	"o.id", "o.user_id", "o.shop_id", "o.total_cents", "o.status", "o.order_date",
}

// CreateOrder inserts the order row and returns its generated id. Items are
// saved separately so checkout can run both inside one transaction.
func (r *PostgresRepo) CreateOrder(ctx context.Context, o entities.Order) (int64, error) {
	query, args := r.qb.Insert("orders").
		Columns("user_id", "shop_id", "total_cents", "status", "order_date").
		Values(o.UserID, o.ShopID, o.TotalCents, string(o.Status), o.OrderDate).
		Suffix("RETURNING id").
		MustSql()

	var id int64
	if err := r.getContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return id, nil
}

func (r *PostgresRepo) SaveOrderItems(ctx context.Context, orderID int64, items []entities.NewOrderItem, prices map[int64]int64) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "quantity", "price_cents")
	for _, it := range items {
		q = q.Values(orderID, it.ProductID, it.Quantity, prices[it.ProductID])
	}

	query, args := q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetOrderByID(ctx context.Context, orderID int64) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		Columns("u.first_name", "u.last_name").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Where(sq.Eq{"o.id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	orders, err := r.attachItems(ctx, []Order{order})
	if err != nil {
		return entities.Order{}, err
	}
	return orders[0], nil
}

// ListShopOrders returns a shop's orders with the given statuses, newest
// first, with customer names and line items attached. An empty status list
// means all statuses.
func (r *PostgresRepo) ListShopOrders(ctx context.Context, shopID int64, statuses ...entities.Status) ([]entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		Columns("u.first_name", "u.last_name").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Where(sq.Eq{"o.shop_id": shopID}).
		OrderBy("o.order_date DESC")

	if len(statuses) > 0 {
		vals := make([]string, len(statuses))
		for i, s := range statuses {
			vals[i] = string(s)
		}
		q = q.Where(sq.Eq{"o.status": vals})
	}

	query, args := q.MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select shop orders: %w", err)
	}
	return r.attachItems(ctx, orders)
}

// ListCompletedSince returns a shop's completed orders on or after since,
// newest first. A zero since means no lower bound.
func (r *PostgresRepo) ListCompletedSince(ctx context.Context, shopID int64, since time.Time) ([]entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		Columns("u.first_name", "u.last_name").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Where(sq.Eq{"o.shop_id": shopID, "o.status": string(entities.StatusCompleted)}).
		OrderBy("o.order_date DESC")

	if !since.IsZero() {
		q = q.Where(sq.GtOrEq{"o.order_date": since})
	}

	query, args := q.MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select completed orders: %w", err)
	}
	return r.attachItems(ctx, orders)
}

func (r *PostgresRepo) ListUserOrders(ctx context.Context, userID int64) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		Columns("s.name AS shop_name").
		From("orders o").
		Join("shops s ON s.id = o.shop_id").
		Where(sq.Eq{"o.user_id": userID}).
		OrderBy("o.order_date DESC").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select user orders: %w", err)
	}
	return r.attachItems(ctx, orders)
}

// UpdateOrderStatus applies a compare-and-set: the row is written only if
// the current status still equals from. The caller decides what a false
// return means (gone vs raced).
func (r *PostgresRepo) UpdateOrderStatus(ctx context.Context, orderID int64, from, to entities.Status) (bool, error) {
	query, args := r.qb.Update("orders").
		Set("status", string(to)).
		Where(sq.Eq{"id": orderID, "status": string(from)}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ShopStatsToday counts a shop's orders placed since dayStart and sums
// their totals.
func (r *PostgresRepo) ShopStatsToday(ctx context.Context, shopID int64, dayStart time.Time) (int, int64, error) {
	query, args := r.qb.Select("COUNT(id) AS cnt", "COALESCE(SUM(total_cents), 0) AS revenue").
		From("orders").
		Where(sq.Eq{"shop_id": shopID}).
		Where(sq.GtOrEq{"order_date": dayStart}).
		MustSql()

	var stats struct {
		Cnt     int   `db:"cnt"`
		Revenue int64 `db:"revenue"`
	}
	if err := r.getContext(ctx, &stats, query, args...); err != nil {
		return 0, 0, fmt.Errorf("failed to get shop stats: %w", err)
	}
	return stats.Cnt, stats.Revenue, nil
}

// RecentShopOrders returns the shop's most recent orders regardless of
// status, with items attached.
func (r *PostgresRepo) RecentShopOrders(ctx context.Context, shopID int64, limit int) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		Columns("u.first_name", "u.last_name").
		From("orders o").
		Join("users u ON u.id = o.user_id").
		Where(sq.Eq{"o.shop_id": shopID}).
		OrderBy("o.order_date DESC").
		Limit(uint64(limit)).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select recent orders: %w", err)
	}
	return r.attachItems(ctx, orders)
}

// attachItems loads line items for a batch of orders in one query and zips
// them back onto the converted entities.
func (r *PostgresRepo) attachItems(ctx context.Context, orders []Order) ([]entities.Order, error) {
	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	query, args := r.qb.Select(
		"oi.order_id", "oi.product_id", "p.name AS product_name",
		"oi.quantity", "oi.price_cents", "p.image_url").
		From("order_items oi").
		Join("products p ON p.id = oi.product_id").
		Where(sq.Eq{"oi.order_id": ids}).
		OrderBy("oi.id").
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}

	itemsMap := make(map[int64][]OrderItem, len(orders))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, itemsMap[o.ID]))
	}
	return result, nil
}
