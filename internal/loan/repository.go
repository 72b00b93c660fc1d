package loan

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, loan *model.BottleLoan) error
	FindByID(ctx context.Context, id string) (*model.BottleLoan, error)
	FindAll(ctx context.Context) ([]model.BottleLoan, error)
	Delete(ctx context.Context, id string) (bool, error)
}
