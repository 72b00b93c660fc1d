package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-store-service/internal/events"
	"github.com/fekuna/omnipos-store-service/internal/loan"
	"github.com/fekuna/omnipos-store-service/internal/loan/dto"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"go.uber.org/zap"
)

type loanUseCase struct {
	repo      loan.Repository
	tx        store.Transactor
	publisher events.Publisher
	logger    logger.ZapLogger
}

func NewLoanUseCase(repo loan.Repository, tx store.Transactor, publisher events.Publisher, log logger.ZapLogger) loan.UseCase {
	return &loanUseCase{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *loanUseCase) CreateLoan(ctx context.Context, input *dto.CreateLoanInput) (*model.BottleLoan, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	l := &model.BottleLoan{
		DebtorName:      strings.TrimSpace(input.DebtorName),
		BottleType:      strings.TrimSpace(input.BottleType),
		GuaranteeAmount: input.GuaranteeAmount,
	}
	if err := uc.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	uc.logger.Info("Bottle loan created", zap.String("loan_id", l.ID), zap.String("debtor", l.DebtorName))
	uc.publisher.Publish(ctx, events.LoanCreated, l.ID, l)
	return l, nil
}

func (uc *loanUseCase) MarkReturned(ctx context.Context, id string) (*loan.ReturnResult, error) {
	result := &loan.ReturnResult{}
	err := uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		l, err := uc.repo.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		removed, err := uc.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		result.Returned = removed
		if removed {
			result.Loan = l
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Returned {
		uc.logger.Info("Bottle loan returned",
			zap.String("loan_id", id),
			zap.String("guarantee", result.Loan.GuaranteeAmount.StringFixed(2)),
		)
		uc.publisher.Publish(ctx, events.LoanReturned, id, result.Loan)
	}
	return result, nil
}

func (uc *loanUseCase) ListLoans(ctx context.Context) (*loan.LoanList, error) {
	loans, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &loan.LoanList{Loans: loans, TotalGuarantee: report.TotalGuarantee(loans)}, nil
}
