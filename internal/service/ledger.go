package service

import (
	"context"
	"math/big"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"
	"agentforge-backend/internal/repository"
	"agentforge-backend/internal/utils"
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	submitter  *ledger.Submitter
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, submitter *ledger.Submitter) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo, submitter: submitter}
}

func (s *ledgerService) GetBalance(ctx context.Context, account string) (*big.Int, error) {
	return s.ledgerRepo.GetBalance(ctx, account)
}

// Deposit credits an account asynchronously. Non-positive amounts are
// rejected before broadcast.
func (s *ledgerService) Deposit(ctx context.Context, account string, amount *big.Int) (*domain.TxReceipt, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	type depositPayload struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
	}
	payload := depositPayload{Account: account, Amount: amount.String()}

	receipt := s.submitter.Submit("deposit", payload, func(opCtx context.Context, _ string) (ledger.Result, error) {
		description := "Deposit of " + utils.FormatSei(amount) + " SEI"
		if _, err := s.ledgerRepo.Deposit(opCtx, account, amount, description); err != nil {
			return ledger.Result{}, err
		}
		return ledger.Result{}, nil
	})
	return receipt, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, account string, page, pageSize int32) ([]domain.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ledgerRepo.ListEntries(ctx, account, page, pageSize)
}

func (s *ledgerService) GetSummary(ctx context.Context, account string) (*domain.LedgerSummary, error) {
	return s.ledgerRepo.GetSummary(ctx, account)
}
