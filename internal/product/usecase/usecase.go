package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-store-service/internal/inventory"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/search"
	"github.com/fekuna/omnipos-store-service/internal/product"
	"github.com/fekuna/omnipos-store-service/internal/product/dto"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"go.uber.org/zap"
)

const indexName = "products"

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"description": { "type": "text" },
			"categoryId": { "type": "keyword" },
			"price": { "type": "double" },
			"quantity": { "type": "long" },
			"createdAt": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo      product.Repository
	ledger    inventory.Ledger
	tx        store.Transactor
	es        *search.Client
	indexOnce sync.Once
	logger    logger.ZapLogger
}

// NewProductUseCase wires the catalog. es may be nil, in which case search runs against
// the store only.
func NewProductUseCase(repo product.Repository, ledger inventory.Ledger, tx store.Transactor, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Quantity:    input.Quantity,
		CategoryID:  input.CategoryID,
		AlertLimit:  input.ResolvedAlertLimit(),
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), p.ID)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	if filters == nil {
		filters = &dto.ProductFilters{}
	}

	if filters.Query != "" && uc.es != nil {
		products, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, nil
		}
		uc.logger.Error("ES search failed, falling back to store", zap.Error(err))
	}

	var (
		products []model.Product
		err      error
	)
	if filters.CategoryID != "" {
		products, err = uc.repo.FindByCategory(ctx, filters.CategoryID)
	} else {
		products, err = uc.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return applyFilters(products, filters), nil
}

// searchElastic ranks with the search index and reads the current records from the
// store, so stock levels are never stale.
func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	res, err := uc.es.Search(ctx, indexName, buildSearchQuery(filters))
	if err != nil {
		return nil, err
	}

	all, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Product, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		p, ok := byID[hit.ID]
		if !ok {
			continue
		}
		if filters.InStock && p.Quantity <= 0 {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func buildSearchQuery(filters *dto.ProductFilters) map[string]interface{} {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.Query),
				"fields": []string{"name^3", "description"},
			},
		},
	}
	if filters.CategoryID != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"categoryId": filters.CategoryID},
		})
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"size": 100,
	}
}

// applyFilters matches the name case-insensitively by substring.
func applyFilters(products []model.Product, filters *dto.ProductFilters) []model.Product {
	query := strings.ToLower(strings.TrimSpace(filters.Query))
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if filters.CategoryID != "" && p.CategoryID != filters.CategoryID {
			continue
		}
		if filters.InStock && p.Quantity <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}

		p.Name = input.Name
		p.Price = input.Price
		p.Description = input.Description
		p.ImageURL = input.ImageURL
		p.CategoryID = input.CategoryID
		p.AlertLimit = input.AlertLimit
		if err := uc.repo.Update(ctx, p); err != nil {
			return err
		}

		if input.Quantity != nil {
			if err := uc.ledger.AdjustQuantity(ctx, p.ID, *input.Quantity-p.Quantity); err != nil {
				return err
			}
		}

		updated, err = uc.repo.FindByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), updated.ID)

	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	removed, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.String("product_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := uc.ledger.AdjustQuantity(ctx, input.ProductID, input.Delta); err != nil {
		return nil, err
	}
	p, err := uc.repo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), p.ID)

	return p, nil
}

// syncToElastic re-reads the product so the index holds the committed state.
func (uc *productUseCase) syncToElastic(ctx context.Context, id string) {
	if uc.es == nil {
		return
	}
	uc.indexOnce.Do(func() {
		if err := uc.es.CreateIndex(ctx, indexName, indexMapping); err != nil {
			uc.logger.Warn("failed to create product index", zap.Error(err))
		}
	})

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.logger.Warn("product vanished before indexing", zap.String("product_id", id), zap.Error(err))
		return
	}
	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", id), zap.Error(err))
	}
}
