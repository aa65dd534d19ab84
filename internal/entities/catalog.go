package entities

import "errors"

var (
	ErrShopNotFound    = errors.New("shop not found")
	ErrShopNameTaken   = errors.New("shop name already taken")
	ErrProductNotFound = errors.New("product not found")
)

type Shop struct {
	ID   int64
	Name string
}

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID          int64
	Name        string
	PriceCents  int64
	Description string
	ImageURL    string
	CategoryID  int64
	ShopID      int64
}

// ProductUpdate carries a partial product update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	PriceCents  *int64
	Description *string
	ImageURL    *string
	CategoryID  *int64
}

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	ShopID     int64
	CategoryID int64
}
