package loan

import (
	"context"

	"github.com/fekuna/omnipos-store-service/internal/loan/dto"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/shopspring/decimal"
)

type ReturnResult struct {
	Returned bool `json:"returned"`
	// Loan is the removed loan, so the operator knows which guarantee to hand back.
	Loan *model.BottleLoan `json:"loan,omitempty"`
}

type LoanList struct {
	Loans          []model.BottleLoan `json:"loans"`
	TotalGuarantee decimal.Decimal    `json:"totalGuarantee"`
}

type UseCase interface {
	CreateLoan(ctx context.Context, input *dto.CreateLoanInput) (*model.BottleLoan, error)
	// MarkReturned deletes the loan. An unknown id is not an error.
	MarkReturned(ctx context.Context, id string) (*ReturnResult, error)
	ListLoans(ctx context.Context) (*LoanList, error)
}
