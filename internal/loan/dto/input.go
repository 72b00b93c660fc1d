package dto

import (
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	DebtorName      string          `json:"debtorName"`
	BottleType      string          `json:"bottleType"`
	GuaranteeAmount decimal.Decimal `json:"guaranteeAmount"`
}

func (in *CreateLoanInput) Validate() error {
	return validator.First(
		validator.Required("debtorName", in.DebtorName),
		validator.Required("bottleType", in.BottleType),
		validator.NonNegativeAmount("guaranteeAmount", in.GuaranteeAmount),
	)
}
