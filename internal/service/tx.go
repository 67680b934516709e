package service

import (
	"context"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"
)

type txService struct {
	submitter *ledger.Submitter
}

func NewTxService(submitter *ledger.Submitter) TxService {
	return &txService{submitter: submitter}
}

func (s *txService) GetReceipt(hash string) (*domain.TxReceipt, error) {
	return s.submitter.Receipt(hash)
}

// WaitForReceipt blocks until the transaction settles or the caller's
// context expires. An abandoned wait does not cancel the write.
func (s *txService) WaitForReceipt(ctx context.Context, hash string) (*domain.TxReceipt, error) {
	return s.submitter.Wait(ctx, hash)
}
