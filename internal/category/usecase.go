package category

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/category/dto"
	"github.com/fekuna/omnipos-store-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	// DeleteCategory leaves products that reference the category untouched.
	DeleteCategory(ctx context.Context, id string) error
}
