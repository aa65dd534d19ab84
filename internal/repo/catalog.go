package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

func (r *PostgresRepo) ListShops(ctx context.Context) ([]entities.Shop, error) {
	query, args := r.qb.Select("id", "name").From("shops").OrderBy("id").MustSql()

	var shops []Shop
	if err := r.selectContext(ctx, &shops, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select shops: %w", err)
	}

	result := make([]entities.Shop, 0, len(shops))
	for _, s := range shops {
		result = append(result, entities.Shop{ID: s.ID, Name: s.Name})
	}
	return result, nil
}

func (r *PostgresRepo) RenameShop(ctx context.Context, shopID int64, name string) (entities.Shop, error) {
	query, args := r.qb.Update("shops").
		Set("name", name).
		Where(sq.Eq{"id": shopID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return entities.Shop{}, entities.ErrShopNameTaken
	}
	if err != nil {
		return entities.Shop{}, fmt.Errorf("failed to rename shop: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entities.Shop{}, entities.ErrShopNotFound
	}

	return entities.Shop{ID: shopID, Name: name}, nil
}

func (r *PostgresRepo) ListCategories(ctx context.Context) ([]entities.Category, error) {
	query, args := r.qb.Select("id", "name").From("categories").OrderBy("id").MustSql()

	var categories []Category
	if err := r.selectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}

	result := make([]entities.Category, 0, len(categories))
	for _, c := range categories {
		result = append(result, entities.Category{ID: c.ID, Name: c.Name})
	}
	return result, nil
}

func (r *PostgresRepo) ListProducts(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error) {
	q := r.qb.Select("id", "name", "price_cents", "description", "image_url", "category_id", "shop_id").
		From("products").
		OrderBy("id")

	if filter.ShopID != 0 {
		q = q.Where(sq.Eq{"shop_id": filter.ShopID})
	}
	if filter.CategoryID != 0 {
		q = q.Where(sq.Eq{"category_id": filter.CategoryID})
	}

	query, args := q.MustSql()

	var products []Product
	if err := r.selectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}

	result := make([]entities.Product, 0, len(products))
	for _, p := range products {
		result = append(result, ProductToEntity(p))
	}
	return result, nil
}

func (r *PostgresRepo) GetProductByID(ctx context.Context, productID int64) (entities.Product, error) {
	query, args := r.qb.Select("id", "name", "price_cents", "description", "image_url", "category_id", "shop_id").
		From("products").
		Where(sq.Eq{"id": productID}).
		MustSql()

	var product Product
	err := r.getContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return ProductToEntity(product), nil
}

func (r *PostgresRepo) CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	query, args := r.qb.Insert("products").
		Columns("name", "price_cents", "description", "image_url", "category_id", "shop_id").
		Values(p.Name, p.PriceCents, nullString(p.Description), nullString(p.ImageURL), p.CategoryID, p.ShopID).
		Suffix("RETURNING id").
		MustSql()

	var id int64
	if err := r.getContext(ctx, &id, query, args...); err != nil {
		return entities.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	p.ID = id
	return p, nil
}

// UpdateProduct applies the non-nil fields of upd and returns the fresh row.
func (r *PostgresRepo) UpdateProduct(ctx context.Context, productID int64, upd entities.ProductUpdate) (entities.Product, error) {
	q := r.qb.Update("products").Where(sq.Eq{"id": productID})

	changed := false
	if upd.Name != nil {
		q = q.Set("name", *upd.Name)
		changed = true
	}
	if upd.PriceCents != nil {
		q = q.Set("price_cents", *upd.PriceCents)
		changed = true
	}
	if upd.Description != nil {
		q = q.Set("description", nullString(*upd.Description))
		changed = true
	}
	if upd.ImageURL != nil {
		q = q.Set("image_url", nullString(*upd.ImageURL))
		changed = true
	}
	if upd.CategoryID != nil {
		q = q.Set("category_id", *upd.CategoryID)
		changed = true
	}

	if changed {
		query, args := q.MustSql()
		res, err := r.execContext(ctx, query, args...)
		if err != nil {
			return entities.Product{}, fmt.Errorf("failed to update product: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return entities.Product{}, entities.ErrProductNotFound
		}
	}

	return r.GetProductByID(ctx, productID)
}

// ProductPrices resolves current prices for the given product ids. Checkout
// uses it so line prices are never trusted from the client.
func (r *PostgresRepo) ProductPrices(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	if len(productIDs) == 0 {
		return map[int64]int64{}, nil
	}

	query, args := r.qb.Select("id", "price_cents").
		From("products").
		Where(sq.Eq{"id": productIDs}).
		MustSql()

	var rows []struct {
		ID         int64 `db:"id"`
		PriceCents int64 `db:"price_cents"`
	}
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select product prices: %w", err)
	}

	prices := make(map[int64]int64, len(rows))
	for _, row := range rows {
		prices[row.ID] = row.PriceCents
	}
	return prices, nil
}
