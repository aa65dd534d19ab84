package entities

import (
	"errors"
	"time"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTransitionConflict = errors.New("order changed concurrently")
)

type Order struct {
	ID         int64
	UserID     int64
	ShopID     int64
	TotalCents int64
	Status     Status
	OrderDate  time.Time

	// Denormalized for rendering: customer name on owner-facing reads,
	// shop name on student-facing reads.
	FirstName string
	LastName  string
	ShopName  string

	Items []OrderItem
}

type OrderItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
	PriceCents  int64
	ImageURL    string
}

// NewOrderItem is the checkout input: a product reference and a quantity.
// The price is resolved server side.
type NewOrderItem struct {
	ProductID int64
	Quantity  int
}
