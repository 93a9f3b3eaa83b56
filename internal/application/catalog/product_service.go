package catalog

import (
	"context"

	"github.com/google/uuid"
	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService manages product master data. Stock quantities and landed
// cost never change here; those belong to the stock ledger.
type ProductService struct {
	scope  appledger.TransactionScope
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(scope appledger.TransactionScope, logger *zap.Logger) *ProductService {
	return &ProductService{scope: scope, logger: logger}
}

// CreateProduct creates a new product with a unique SKU
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	var dto ProductDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		exists, err := repos.Products().ExistsBySKU(ctx, req.SKU)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
		}

		product, err := catalog.NewProduct(req.SKU, req.Name, req.SellingPrice)
		if err != nil {
			return err
		}
		if req.WeightKg != nil {
			if err := product.SetWeight(*req.WeightKg); err != nil {
				return err
			}
		}
		if err := product.SetReorderLevel(req.ReorderLevel); err != nil {
			return err
		}
		product.Location = req.Location

		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		dto = ToProductDTO(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", dto.ID.String()),
		zap.String("sku", dto.SKU))

	return &dto, nil
}

// GetProduct fetches a single product
func (s *ProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	var dto *ProductDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		d := ToProductDTO(product)
		dto = &d
		return nil
	})
	return dto, err
}

// GetProductBySKU fetches a single product by SKU
func (s *ProductService) GetProductBySKU(ctx context.Context, sku string) (*ProductDTO, error) {
	var dto *ProductDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		product, err := repos.Products().FindBySKU(ctx, sku)
		if err != nil {
			return err
		}
		d := ToProductDTO(product)
		dto = &d
		return nil
	})
	return dto, err
}

// ListProducts returns products matching the filter along with the total count
func (s *ProductService) ListProducts(ctx context.Context, filter shared.Filter) ([]ProductDTO, int64, error) {
	var dtos []ProductDTO
	var total int64
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		products, err := repos.Products().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err = repos.Products().Count(ctx, filter)
		if err != nil {
			return err
		}
		dtos = make([]ProductDTO, 0, len(products))
		for idx := range products {
			dtos = append(dtos, ToProductDTO(&products[idx]))
		}
		return nil
	})
	return dtos, total, err
}

// ListBelowReorderLevel returns products whose stock has fallen below their
// replenishment threshold
func (s *ProductService) ListBelowReorderLevel(ctx context.Context, filter shared.Filter) ([]ProductDTO, error) {
	var dtos []ProductDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		products, err := repos.Products().FindBelowReorderLevel(ctx, filter)
		if err != nil {
			return err
		}
		dtos = make([]ProductDTO, 0, len(products))
		for idx := range products {
			dtos = append(dtos, ToProductDTO(&products[idx]))
		}
		return nil
	})
	return dtos, err
}

// UpdateProduct updates product master data fields that are present in the request
func (s *ProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	var dto ProductDTO
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			if *req.Name == "" {
				return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
			}
			product.Name = *req.Name
		}
		if req.SellingPrice != nil {
			if req.SellingPrice.IsNegative() {
				return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
			}
			product.SellingPrice = *req.SellingPrice
		}
		if req.WeightKg != nil {
			if err := product.SetWeight(*req.WeightKg); err != nil {
				return err
			}
		}
		if req.ReorderLevel != nil {
			if err := product.SetReorderLevel(*req.ReorderLevel); err != nil {
				return err
			}
		}
		if req.Location != nil {
			product.Location = *req.Location
		}

		if err := repos.Products().SaveWithLock(ctx, product); err != nil {
			return err
		}
		dto = ToProductDTO(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// DeleteProduct deletes a product. Products with stock on hand or any
// movement history are protected; delete their movements first.
func (s *ProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos appledger.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if product.CurrentStock > 0 {
			return shared.NewDomainError("INVALID_STATE", "Cannot delete a product with stock on hand")
		}
		count, err := repos.Movements().CountByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError("INVALID_STATE", "Cannot delete a product with movement history")
		}
		return repos.Products().Delete(ctx, productID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.String("product_id", productID.String()))
	return nil
}
