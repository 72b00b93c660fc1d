package dto

import (
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordSaleInput struct {
	ProductID   string
	ProductName string
	CategoryID  string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

type SellInput struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

func (in *SellInput) Validate() error {
	return validator.First(
		validator.Required("productId", in.ProductID),
		validator.Positive("quantity", in.Quantity),
	)
}

type Range string

const (
	RangeAll   Range = ""
	RangeToday Range = "today"
	RangeWeek  Range = "week"
)

func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case RangeAll, RangeToday, RangeWeek:
		return r, nil
	default:
		return "", validator.New("range", "must be today or week")
	}
}
