package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
	"github.com/shubham-1706-g/Class2Canteen/internal/service"
	"github.com/shubham-1706-g/Class2Canteen/pkg/trm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow anchors calendar bucketing: Wednesday, 12 March 2025, mid-day UTC.
var fixedNow = time.Date(2025, 3, 12, 14, 30, 0, 0, time.UTC)

type fakeRepo struct {
	orders map[int64]entities.Order
	prices map[int64]int64
	nextID int64

	completedSinceCalls int

	// beforeCAS runs between the read and the compare-and-set, simulating a
	// concurrent writer.
	beforeCAS func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[int64]entities.Order),
		prices: make(map[int64]int64),
		nextID: 500,
	}
}

func (f *fakeRepo) add(o entities.Order) int64 {
	f.nextID++
	o.ID = f.nextID
	f.orders[o.ID] = o
	return o.ID
}

func (f *fakeRepo) CreateOrder(_ context.Context, o entities.Order) (int64, error) {
	return f.add(o), nil
}

func (f *fakeRepo) SaveOrderItems(_ context.Context, orderID int64, items []entities.NewOrderItem, prices map[int64]int64) error {
	o := f.orders[orderID]
	for _, it := range items {
		o.Items = append(o.Items, entities.OrderItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			PriceCents: prices[it.ProductID],
		})
	}
	f.orders[orderID] = o
	return nil
}

func (f *fakeRepo) ProductPrices(_ context.Context, productIDs []int64) (map[int64]int64, error) {
	found := make(map[int64]int64)
	for _, id := range productIDs {
		if price, ok := f.prices[id]; ok {
			found[id] = price
		}
	}
	return found, nil
}

func (f *fakeRepo) GetOrderByID(_ context.Context, orderID int64) (entities.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeRepo) ListShopOrders(_ context.Context, shopID int64, statuses ...entities.Status) ([]entities.Order, error) {
	wanted := make(map[entities.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var result []entities.Order
	for _, o := range f.orders {
		if o.ShopID == shopID && wanted[o.Status] {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeRepo) ListCompletedSince(_ context.Context, shopID int64, since time.Time) ([]entities.Order, error) {
	f.completedSinceCalls++

	var result []entities.Order
	for _, o := range f.orders {
		if o.ShopID != shopID || o.Status != entities.StatusCompleted {
			continue
		}
		if !since.IsZero() && o.OrderDate.Before(since) {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func (f *fakeRepo) ListUserOrders(_ context.Context, userID int64) ([]entities.Order, error) {
	var result []entities.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeRepo) UpdateOrderStatus(_ context.Context, orderID int64, from, to entities.Status) (bool, error) {
	if f.beforeCAS != nil {
		f.beforeCAS()
	}

	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	f.orders[orderID] = o
	return true, nil
}

func (f *fakeRepo) ShopStatsToday(_ context.Context, shopID int64, dayStart time.Time) (int, int64, error) {
	var count int
	var revenue int64
	for _, o := range f.orders {
		if o.ShopID == shopID && !o.OrderDate.Before(dayStart) {
			count++
			revenue += o.TotalCents
		}
	}
	return count, revenue, nil
}

func (f *fakeRepo) RecentShopOrders(_ context.Context, shopID int64, limit int) ([]entities.Order, error) {
	var result []entities.Order
	for _, o := range f.orders {
		if o.ShopID == shopID && len(result) < limit {
			result = append(result, o)
		}
	}
	return result, nil
}

type fakeCache struct {
	data    map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value []byte) {
	c.data[key] = value
}

func (c *fakeCache) Delete(key string) {
	delete(c.data, key)
	c.deletes = append(c.deletes, key)
}

type publishedEvent struct {
	kind    string
	orderID int64
	prev    entities.Status
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) OrderCreated(_ context.Context, order entities.Order) {
	p.events = append(p.events, publishedEvent{kind: "created", orderID: order.ID})
}

func (p *fakePublisher) OrderStatusChanged(_ context.Context, order entities.Order, prev entities.Status) {
	p.events = append(p.events, publishedEvent{kind: "status_changed", orderID: order.ID, prev: prev})
}

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeTxManager struct{}

func (fakeTxManager) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return ctx, fakeTx{}, nil
}

func (m fakeTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}

func newTestService(t *testing.T, repo *fakeRepo) (*service.OrderService, *fakeCache, *fakePublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := newFakeCache()
	publisher := &fakePublisher{}

	svc := service.NewOrderService(logger, fakeTxManager{}, repo, cache, publisher)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, cache, publisher
}

func daysAgo(days int) time.Time {
	return fixedNow.AddDate(0, 0, -days)
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.prices[10] = 350
	repo.prices[11] = 125
	svc, _, publisher := newTestService(t, repo)

	order, err := svc.CreateOrder(context.Background(), 7, 1, []entities.NewOrderItem{
		{ProductID: 10, Quantity: 2},
		{ProductID: 11, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, entities.StatusPending, order.Status)
	assert.Equal(t, int64(2*350+125), order.TotalCents)
	assert.Equal(t, fixedNow, order.OrderDate)
	require.Len(t, order.Items, 2)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "created", publisher.events[0].kind)
	assert.Equal(t, order.ID, publisher.events[0].orderID)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.prices[10] = 350
	svc, _, publisher := newTestService(t, repo)

	_, err := svc.CreateOrder(context.Background(), 7, 1, []entities.NewOrderItem{
		{ProductID: 99, Quantity: 1},
	})
	assert.ErrorIs(t, err, entities.ErrProductNotFound)
	assert.Empty(t, publisher.events)
}

func TestOrderSummary(t *testing.T) {
	t.Parallel()

	t.Run("empty shop yields empty buckets", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t, newFakeRepo())
		summary, err := svc.OrderSummary(context.Background(), 1)
		require.NoError(t, err)

		assert.NotNil(t, summary.Pending)
		assert.NotNil(t, summary.Ready)
		assert.NotNil(t, summary.Completed)
		assert.Empty(t, summary.Live())
	})

	t.Run("partitions by status and drops rejected", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepo()
		pendingID := repo.add(entities.Order{ShopID: 1, Status: entities.StatusPending, OrderDate: fixedNow})
		readyID := repo.add(entities.Order{ShopID: 1, Status: entities.StatusReady, OrderDate: daysAgo(1)})
		completedID := repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(2)})
		repo.add(entities.Order{ShopID: 1, Status: entities.StatusRejected, OrderDate: fixedNow})
		repo.add(entities.Order{ShopID: 2, Status: entities.StatusPending, OrderDate: fixedNow})

		svc, _, _ := newTestService(t, repo)
		summary, err := svc.OrderSummary(context.Background(), 1)
		require.NoError(t, err)

		require.Len(t, summary.Pending, 1)
		assert.Equal(t, pendingID, summary.Pending[0].ID)
		require.Len(t, summary.Ready, 1)
		assert.Equal(t, readyID, summary.Ready[0].ID)
		require.Len(t, summary.Completed, 1)
		assert.Equal(t, completedID, summary.Completed[0].ID)

		live := summary.Live()
		require.Len(t, live, 2)
		assert.Equal(t, pendingID, live[0].ID)
		assert.Equal(t, readyID, live[1].ID)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	statuses := []entities.Status{
		entities.StatusPending,
		entities.StatusReady,
		entities.StatusRejected,
		entities.StatusCompleted,
	}
	targets := []entities.Status{
		entities.StatusReady,
		entities.StatusRejected,
		entities.StatusCompleted,
	}

	for _, from := range statuses {
		for _, to := range targets {
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				t.Parallel()

				repo := newFakeRepo()
				id := repo.add(entities.Order{ShopID: 1, Status: from, OrderDate: fixedNow})
				svc, _, publisher := newTestService(t, repo)

				updated, err := svc.UpdateOrderStatus(context.Background(), id, to)
				if !entities.CanTransition(from, to) {
					assert.ErrorIs(t, err, entities.ErrInvalidTransition)
					assert.Equal(t, from, repo.orders[id].Status)
					assert.Empty(t, publisher.events)
					return
				}

				require.NoError(t, err)
				assert.Equal(t, to, updated.Status)
				assert.Equal(t, to, repo.orders[id].Status)

				require.Len(t, publisher.events, 1)
				assert.Equal(t, "status_changed", publisher.events[0].kind)
				assert.Equal(t, from, publisher.events[0].prev)
			})
		}
	}
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, newFakeRepo())
	_, err := svc.UpdateOrderStatus(context.Background(), 42, entities.StatusReady)
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)
}

func TestUpdateOrderStatusRace(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	id := repo.add(entities.Order{ShopID: 1, Status: entities.StatusPending, OrderDate: fixedNow})

	// A concurrent writer rejects the order between our read and our write.
	repo.beforeCAS = func() {
		o := repo.orders[id]
		o.Status = entities.StatusRejected
		repo.orders[id] = o
	}

	svc, _, publisher := newTestService(t, repo)
	_, err := svc.UpdateOrderStatus(context.Background(), id, entities.StatusReady)
	assert.ErrorIs(t, err, entities.ErrTransitionConflict)
	assert.Equal(t, entities.StatusRejected, repo.orders[id].Status)
	assert.Empty(t, publisher.events)
}

func TestCompletionInvalidatesWeeklyCache(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	id := repo.add(entities.Order{ShopID: 3, Status: entities.StatusReady, OrderDate: fixedNow, TotalCents: 1000})
	svc, cache, _ := newTestService(t, repo)

	// Prime the cache, then complete the order.
	_, err := svc.WeeklySummary(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, cache.data, 1)

	_, err = svc.UpdateOrderStatus(context.Background(), id, entities.StatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, cache.data)

	// The next summary sees the completed order.
	summary, err := svc.WeeklySummary(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), summary[6].EarningsCents)
}

func TestWeeklySummary(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: fixedNow, TotalCents: 1000})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(3), TotalCents: 2000})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(3), TotalCents: 500})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(6), TotalCents: 3000})
	// Outside the window and wrong statuses contribute nothing.
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(7), TotalCents: 9999})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusPending, OrderDate: fixedNow, TotalCents: 9999})
	repo.add(entities.Order{ShopID: 2, Status: entities.StatusCompleted, OrderDate: fixedNow, TotalCents: 9999})

	svc, _, _ := newTestService(t, repo)
	summary, err := svc.WeeklySummary(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summary, 7)

	// Oldest first, ending today; 12 March 2025 is a Wednesday.
	assert.Equal(t, "Thu", summary[0].Day)
	assert.Equal(t, "Wed", summary[6].Day)
	for i, d := range summary {
		assert.Equal(t, i == 6, d.IsToday, "entry %d", i)
	}

	assert.Equal(t, int64(3000), summary[0].EarningsCents)
	assert.Equal(t, int64(2500), summary[3].EarningsCents)
	assert.Equal(t, int64(1000), summary[6].EarningsCents)
	assert.Equal(t, int64(0), summary[1].EarningsCents)

	assert.Equal(t, int64(3000), summary.MaxEarnings())
}

func TestWeeklySummaryCached(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: fixedNow, TotalCents: 1000})
	svc, _, _ := newTestService(t, repo)

	first, err := svc.WeeklySummary(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.WeeklySummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.completedSinceCalls)
}

func TestOrderHistory(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	todayID := repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: fixedNow})
	weekID := repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(5)})
	oldID := repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(40)})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusPending, OrderDate: fixedNow})

	svc, _, _ := newTestService(t, repo)

	ids := func(orders []entities.Order) []int64 {
		result := make([]int64, 0, len(orders))
		for _, o := range orders {
			result = append(result, o.ID)
		}
		return result
	}

	week, err := svc.OrderHistory(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{todayID, weekID}, ids(week))

	month, err := svc.OrderHistory(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{todayID, weekID}, ids(month))

	all, err := svc.OrderHistory(context.Background(), 1, service.AllTimeDays)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{todayID, weekID, oldID}, ids(all))
}

func TestFilterByWindow(t *testing.T) {
	t.Parallel()

	orders := []entities.Order{
		{ID: 1, Status: entities.StatusCompleted, OrderDate: fixedNow},
		{ID: 2, Status: entities.StatusCompleted, OrderDate: daysAgo(6)},
		{ID: 3, Status: entities.StatusCompleted, OrderDate: daysAgo(8)},
		{ID: 4, Status: entities.StatusPending, OrderDate: fixedNow},
	}

	testCases := []struct {
		name string
		days int
		want []int64
	}{
		{name: "one day", days: 1, want: []int64{1}},
		{name: "one week", days: 7, want: []int64{1, 2}},
		{name: "one month", days: 30, want: []int64{1, 2, 3}},
		{name: "all time", days: service.AllTimeDays, want: []int64{1, 2, 3}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			filtered := service.FilterByWindow(orders, tc.days, fixedNow)
			got := make([]int64, 0, len(filtered))
			for _, o := range filtered {
				got = append(got, o.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDashboardStats(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: fixedNow, TotalCents: 750})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusPending, OrderDate: fixedNow, TotalCents: 250})
	repo.add(entities.Order{ShopID: 1, Status: entities.StatusCompleted, OrderDate: daysAgo(1), TotalCents: 9999})

	svc, _, _ := newTestService(t, repo)
	stats, err := svc.DashboardStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.OrdersToday)
	assert.Equal(t, int64(1000), stats.RevenueCents)
	assert.NotEmpty(t, stats.RecentOrders)
}

// Walks an order through its whole life the way the owner screen drives it.
func TestOrderLifecycle(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.prices[10] = 450
	svc, _, publisher := newTestService(t, repo)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 7, 1, []entities.NewOrderItem{{ProductID: 10, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, order.Status)

	summary, err := svc.OrderSummary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summary.Pending, 1)

	order, err = svc.UpdateOrderStatus(ctx, order.ID, entities.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReady, order.Status)

	order, err = svc.UpdateOrderStatus(ctx, order.ID, entities.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, order.Status)

	// Terminal: nothing moves it again.
	_, err = svc.UpdateOrderStatus(ctx, order.ID, entities.StatusReady)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	summary, err = svc.OrderSummary(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, summary.Pending)
	require.Len(t, summary.Completed, 1)
	assert.Equal(t, int64(900), summary.Completed[0].TotalCents)

	history, err := svc.OrderHistory(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)

	assert.Len(t, publisher.events, 3)
}
