package repo

import (
	"database/sql"
	"time"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
)

type Order struct {
	ID         int64          `db:"id"`
	UserID     int64          `db:"user_id"`
	ShopID     int64          `db:"shop_id"`
	TotalCents int64          `db:"total_cents"`
	Status     string         `db:"status"`
	OrderDate  time.Time      `db:"order_date"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	ShopName   sql.NullString `db:"shop_name"`
}

type OrderItem struct {
	OrderID     int64          `db:"order_id"`
	ProductID   int64          `db:"product_id"`
	ProductName string         `db:"product_name"`
	Quantity    int            `db:"quantity"`
	PriceCents  int64          `db:"price_cents"`
	ImageURL    sql.NullString `db:"image_url"`
}

type User struct {
	ID           int64          `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Role         string         `db:"role"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	ShopID       sql.NullInt64  `db:"shop_id"`
}

type Shop struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Product struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	PriceCents  int64          `db:"price_cents"`
	Description sql.NullString `db:"description"`
	ImageURL    sql.NullString `db:"image_url"`
	CategoryID  int64          `db:"category_id"`
	ShopID      int64          `db:"shop_id"`
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:         o.ID,
		UserID:     o.UserID,
		ShopID:     o.ShopID,
		TotalCents: o.TotalCents,
		Status:     entities.Status(o.Status),
		OrderDate:  o.OrderDate,
		FirstName:  nullStringToString(o.FirstName),
		LastName:   nullStringToString(o.LastName),
		ShopName:   nullStringToString(o.ShopName),
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		PriceCents:  i.PriceCents,
		ImageURL:    nullStringToString(i.ImageURL),
	}
}

func UserToEntity(u User) entities.User {
	return entities.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		FirstName:    nullStringToString(u.FirstName),
		LastName:     nullStringToString(u.LastName),
		ShopID:       nullInt64ToInt64(u.ShopID),
	}
}

func ProductToEntity(p Product) entities.Product {
	return entities.Product{
		ID:          p.ID,
		Name:        p.Name,
		PriceCents:  p.PriceCents,
		Description: nullStringToString(p.Description),
		ImageURL:    nullStringToString(p.ImageURL),
		CategoryID:  p.CategoryID,
		ShopID:      p.ShopID,
	}
}
