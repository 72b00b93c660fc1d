package usecase

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/category"
	"github.com/fekuna/omnipos-store-service/internal/category/dto"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	cat := &model.Category{Name: input.Name}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	cat, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	cat.Name = input.Name
	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	removed, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		uc.logger.Debug("Category already gone", zap.String("category_id", id))
	}
	return nil
}
