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

type CatalogService interface {
	Shops(ctx context.Context) ([]entities.Shop, error)
	RenameShop(ctx context.Context, shopID int64, name string) (entities.Shop, error)
	Categories(ctx context.Context) ([]entities.Category, error)
	Products(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error)
	Product(ctx context.Context, productID int64) (entities.Product, error)
	CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error)
	UpdateProduct(ctx context.Context, productID int64, upd entities.ProductUpdate) (entities.Product, error)
}

type CatalogHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      CatalogService
	verifier middleware.TokenVerifier
}

func NewCatalogHandler(logger *slog.Logger, svc CatalogService, verifier middleware.TokenVerifier) *CatalogHandler {
	return &CatalogHandler{
		logger:   logger.With(slog.String("handler", "catalog")),
		validate: validator.New(),
		svc:      svc,
		verifier: verifier,
	}
}

func (h *CatalogHandler) Init(r chi.Router) {
	r.Get("/shops", h.ListShops)
	r.Get("/categories", h.ListCategories)
	r.Get("/products", h.ListProducts)
	r.Get("/products/{product_id}", h.GetProduct)

	// Catalog writes are owner-only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.verifier))
		r.Use(middleware.RequireOwner)

		r.Put("/shops/{shop_id}", h.RenameShop)
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{product_id}", h.UpdateProduct)
	})
}

func (h *CatalogHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shops, err := h.svc.Shops(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list shops", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	result := make([]Shop, 0, len(shops))
	for _, s := range shops {
		result = append(result, Shop{ID: s.ID, Name: s.Name})
	}
	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *CatalogHandler) RenameShop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shopID, err := pathID(r, "shop_id")
	if err != nil {
		utils.WriteError(w, "invalid shop id", http.StatusBadRequest)
		return
	}
	if user, ok := middleware.UserFromContext(ctx); !ok || user.ShopID != shopID {
		utils.WriteError(w, "shop access denied", http.StatusForbidden)
		return
	}

	var req ShopUpdateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	shop, err := h.svc.RenameShop(ctx, shopID, req.Name)
	switch {
	case errors.Is(err, entities.ErrShopNotFound):
		utils.WriteError(w, "shop not found", http.StatusNotFound)
		return
	case errors.Is(err, entities.ErrShopNameTaken):
		utils.WriteError(w, "shop name already taken", http.StatusConflict)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to rename shop", slog.Any("error", err), slog.Int64("shop_id", shopID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, Shop{ID: shop.ID, Name: shop.Name}, http.StatusOK)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.svc.Categories(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list categories", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	result := make([]Category, 0, len(categories))
	for _, c := range categories {
		result = append(result, Category{ID: c.ID, Name: c.Name})
	}
	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter entities.ProductFilter
	if raw := r.URL.Query().Get("shop_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.WriteError(w, "invalid shop_id filter", http.StatusBadRequest)
			return
		}
		filter.ShopID = id
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.WriteError(w, "invalid category_id filter", http.StatusBadRequest)
			return
		}
		filter.CategoryID = id
	}

	products, err := h.svc.Products(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	result := make([]Product, 0, len(products))
	for _, p := range products {
		result = append(result, ProductEntityToJSON(p))
	}
	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := pathID(r, "product_id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Product(ctx, productID)
	if errors.Is(err, entities.ErrProductNotFound) {
		utils.WriteError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product", slog.Any("error", err), slog.Int64("product_id", productID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, ProductEntityToJSON(product), http.StatusOK)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProductCreateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}
	if user, ok := middleware.UserFromContext(ctx); !ok || user.ShopID != req.ShopID {
		utils.WriteError(w, "shop access denied", http.StatusForbidden)
		return
	}

	product, err := h.svc.CreateProduct(ctx, entities.Product{
		Name:        req.Name,
		PriceCents:  toCents(req.Price),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		ShopID:      req.ShopID,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create product", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, ProductEntityToJSON(product), http.StatusCreated)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := pathID(r, "product_id")
	if err != nil {
		utils.WriteError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req ProductUpdateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	// The product must belong to the caller's shop.
	existing, err := h.svc.Product(ctx, productID)
	if errors.Is(err, entities.ErrProductNotFound) {
		utils.WriteError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product", slog.Any("error", err), slog.Int64("product_id", productID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if user, ok := middleware.UserFromContext(ctx); !ok || user.ShopID != existing.ShopID {
		utils.WriteError(w, "shop access denied", http.StatusForbidden)
		return
	}

	upd := entities.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if req.Price != nil {
		cents := toCents(*req.Price)
		upd.PriceCents = &cents
	}

	product, err := h.svc.UpdateProduct(ctx, productID, upd)
	if errors.Is(err, entities.ErrProductNotFound) {
		utils.WriteError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update product", slog.Any("error", err), slog.Int64("product_id", productID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, ProductEntityToJSON(product), http.StatusOK)
}
