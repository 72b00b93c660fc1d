package model

import "github.com/shopspring/decimal"

type BottleLoan struct {
	BaseModel
	DebtorName      string          `json:"debtorName"`
	BottleType      string          `json:"bottleType"`
	GuaranteeAmount decimal.Decimal `json:"guaranteeAmount"`
}
