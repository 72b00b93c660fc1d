package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/loan/dto"
	"github.com/fekuna/omnipos-store-service/internal/loan/repository"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/pkg/validator"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/fekuna/omnipos-store-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	rec := &events.Recorder{}
	uc := NewLoanUseCase(repository.NewDocumentRepository(s), s, rec, logger.NewNop())

	products := store.NewCollection[model.Product](s, store.Products)
	pid, err := products.Create(ctx, &model.Product{Name: "Coca Cola 2L", Price: decimal.NewFromInt(12), Quantity: 4})
	require.NoError(t, err)

	l, err := uc.CreateLoan(ctx, &dto.CreateLoanInput{
		DebtorName:      " Doña Rosa ",
		BottleType:      "Coca Cola 2L retornable",
		GuaranteeAmount: decimal.RequireFromString("7.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Doña Rosa", l.DebtorName)

	list, err := uc.ListLoans(ctx)
	require.NoError(t, err)
	require.Len(t, list.Loans, 1)
	assert.Equal(t, "7.50", list.TotalGuarantee.StringFixed(2))

	res, err := uc.MarkReturned(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, res.Returned)
	assert.Equal(t, l.ID, res.Loan.ID)

	list, err = uc.ListLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Loans)
	assert.True(t, list.TotalGuarantee.IsZero())

	p, err := products.Get(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Quantity)

	sales, err := s.List(ctx, store.Sales)
	require.NoError(t, err)
	assert.Empty(t, sales)

	res, err = uc.MarkReturned(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, res.Returned)
	assert.Nil(t, res.Loan)

	assert.Equal(t, []string{events.LoanCreated, events.LoanReturned}, rec.Types())
}

func TestCreateLoanValidation(t *testing.T) {
	s := memory.New()
	uc := NewLoanUseCase(repository.NewDocumentRepository(s), s, events.NewNop(), logger.NewNop())

	tests := []struct {
		name  string
		input dto.CreateLoanInput
		field string
	}{
		{"missing debtor", dto.CreateLoanInput{BottleType: "2L"}, "debtorName"},
		{"missing bottle", dto.CreateLoanInput{DebtorName: "Rosa"}, "bottleType"},
		{"negative guarantee", dto.CreateLoanInput{DebtorName: "Rosa", BottleType: "2L", GuaranteeAmount: decimal.NewFromInt(-1)}, "guaranteeAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateLoan(context.Background(), &tt.input)
			var verr *validator.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
