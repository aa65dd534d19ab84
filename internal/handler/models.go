package handler

import (
	"math"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
)

// Prices travel as decimal dollars on the wire and as integer cents inside.

func dollars(cents int64) float64 {
	return float64(cents) / 100
}

func toCents(d float64) int64 {
	return int64(math.Round(d * 100))
}

// Order is the wire form of an order as the storefront pages expect it.
type Order struct {
	OrderID    int64       `json:"order_id"`
	TotalPrice float64     `json:"total_price"`
	Status     string      `json:"status"`
	OrderDate  time.Time   `json:"order_date"`
	FirstName  string      `json:"first_name,omitempty"`
	LastName   string      `json:"last_name,omitempty"`
	ShopName   string      `json:"shop_name,omitempty"`
	Items      []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	PricePerItem float64 `json:"price_per_item"`
	ImageURL     string  `json:"image_url,omitempty"`
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			PricePerItem: dollars(it.PriceCents),
			ImageURL:     it.ImageURL,
		})
	}

	return Order{
		OrderID:    o.ID,
		TotalPrice: dollars(o.TotalCents),
		Status:     string(o.Status),
		OrderDate:  o.OrderDate,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		ShopName:   o.ShopName,
		Items:      items,
	}
}

func ordersToJSON(orders []entities.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderEntityToJSON(o))
	}
	return result
}

// OrderSummary carries the three buckets the owner's orders page renders.
type OrderSummary struct {
	Pending   []Order `json:"pending"`
	Ready     []Order `json:"ready"`
	Completed []Order `json:"completed"`
}

// WeeklyEntry is one bar of the weekly earnings chart.
type WeeklyEntry struct {
	Day      string  `json:"day"`
	Date     string  `json:"date"`
	Earnings float64 `json:"earnings"`
	IsToday  bool    `json:"is_today"`
}

func weeklyToJSON(summary entities.WeeklySummary) []WeeklyEntry {
	result := make([]WeeklyEntry, 0, len(summary))
	for _, d := range summary {
		result = append(result, WeeklyEntry{
			Day:      d.Day,
			Date:     d.Date.Format(time.DateOnly),
			Earnings: dollars(d.EarningsCents),
			IsToday:  d.IsToday,
		})
	}
	return result
}

type DashboardStats struct {
	TotalOrdersToday  int     `json:"total_orders_today"`
	TotalRevenueToday float64 `json:"total_revenue_today"`
	RecentOrders      []Order `json:"recent_orders"`
}

type CreateOrderItem struct {
	ID       int64 `json:"id" validate:"required"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	UserID int64             `json:"user_id" validate:"required"`
	ShopID int64             `json:"shop_id" validate:"required"`
	Items  []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
}

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ShopID    int64  `json:"shop_id,omitempty"`
}

func UserEntityToJSON(u entities.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ShopID:    u.ShopID,
	}
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Shop struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ShopUpdateRequest struct {
	Name string `json:"name" validate:"required"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	CategoryID  int64   `json:"category_id"`
	ShopID      int64   `json:"shop_id"`
}

func ProductEntityToJSON(p entities.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       dollars(p.PriceCents),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		ShopID:      p.ShopID,
	}
}

type ProductCreateRequest struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	CategoryID  int64   `json:"category_id" validate:"required"`
	ShopID      int64   `json:"shop_id" validate:"required"`
}

type ProductUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	CategoryID  *int64   `json:"category_id,omitempty"`
}
