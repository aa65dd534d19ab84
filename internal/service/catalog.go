package service

import (
	"context"
	"log/slog"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
)

type CatalogRepo interface {
	ListShops(ctx context.Context) ([]entities.Shop, error)
	RenameShop(ctx context.Context, shopID int64, name string) (entities.Shop, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
	ListProducts(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error)
	GetProductByID(ctx context.Context, productID int64) (entities.Product, error)
	CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error)
	UpdateProduct(ctx context.Context, productID int64, upd entities.ProductUpdate) (entities.Product, error)
}

// CatalogService is a thin pass-through; the catalog has no derived logic.
type CatalogService struct {
	logger *slog.Logger
	repo   CatalogRepo
}

func NewCatalogService(logger *slog.Logger, repo CatalogRepo) *CatalogService {
	return &CatalogService{
		logger: logger.With(slog.String("service", "catalog")),
		repo:   repo,
	}
}

func (s *CatalogService) Shops(ctx context.Context) ([]entities.Shop, error) {
	return s.repo.ListShops(ctx)
}

func (s *CatalogService) RenameShop(ctx context.Context, shopID int64, name string) (entities.Shop, error) {
	shop, err := s.repo.RenameShop(ctx, shopID, name)
	if err != nil {
		return entities.Shop{}, err
	}
	s.logger.Debug("shop renamed", slog.Int64("shop_id", shopID), slog.String("name", name))
	return shop, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]entities.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) Products(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *CatalogService) Product(ctx context.Context, productID int64) (entities.Product, error) {
	return s.repo.GetProductByID(ctx, productID)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	product, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return entities.Product{}, err
	}
	s.logger.Debug("product created", slog.Int64("product_id", product.ID), slog.Int64("shop_id", product.ShopID))
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID int64, upd entities.ProductUpdate) (entities.Product, error) {
	return s.repo.UpdateProduct(ctx, productID, upd)
}
