package dto

import "github.com/fekuna/omnipos-store-service/internal/pkg/validator"

type CreateCategoryInput struct {
	Name string `json:"name"`
}

func (in *CreateCategoryInput) Validate() error {
	return validator.Required("name", in.Name)
}

type UpdateCategoryInput struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

func (in *UpdateCategoryInput) Validate() error {
	return validator.Required("name", in.Name)
}
