package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Result carries the id of whatever resource a confirmed write produced.
type Result struct {
	AgentID  *int64
	RentalID *int64
}

// Operation is the backend write a transaction wraps. It must re-validate
// its own preconditions; the submitter only tracks its outcome. The
// transaction hash is passed in so the write can record which broadcast
// produced it.
type Operation func(ctx context.Context, txHash string) (Result, error)

// Submitter models the write path of a ledger-backed client: every mutation
// is broadcast once, observed as pending, and settles to confirmed or
// failed. A settled transaction never changes again, a pending one is never
// re-broadcast by the submitter, and callers can stop waiting but cannot
// cancel what was already submitted.
type Submitter struct {
	mu       sync.RWMutex
	receipts map[string]*trackedTx
	timeout  time.Duration
}

type trackedTx struct {
	receipt domain.TxReceipt
	done    chan struct{}
}

func NewSubmitter(opTimeout time.Duration) *Submitter {
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}
	return &Submitter{
		receipts: make(map[string]*trackedTx),
		timeout:  opTimeout,
	}
}

// HashPayload derives the transaction hash: keccak-256 over the operation
// name, the JSON payload and a fresh nonce, so resubmitting the same request
// is a distinct transaction with a distinct hash.
func HashPayload(operation string, payload any) string {
	body, _ := json.Marshal(payload)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(operation))
	h.Write(body)
	h.Write([]byte(uuid.NewString()))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Submit broadcasts a write and returns its pending receipt immediately.
// The operation runs detached from the caller's context: once broadcast it
// cannot be cancelled, only abandoned.
func (s *Submitter) Submit(operation string, payload any, op Operation) *domain.TxReceipt {
	tx := &trackedTx{
		receipt: domain.TxReceipt{
			Hash:        HashPayload(operation, payload),
			Operation:   operation,
			Status:      domain.TxStatusPending,
			SubmittedOn: time.Now(),
		},
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.receipts[tx.receipt.Hash] = tx
	s.mu.Unlock()

	logger.TxSubmitted(operation, tx.receipt.Hash)

	go s.execute(tx, op)

	receipt := tx.receipt
	return &receipt
}

func (s *Submitter) execute(tx *trackedTx, op Operation) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := op(ctx, tx.receipt.Hash)
	now := time.Now()

	s.mu.Lock()
	tx.receipt.ResolvedOn = &now
	if err != nil {
		tx.receipt.Status = domain.TxStatusFailed
		tx.receipt.Error = err.Error()
	} else {
		tx.receipt.Status = domain.TxStatusConfirmed
		tx.receipt.AgentID = result.AgentID
		tx.receipt.RentalID = result.RentalID
	}
	s.mu.Unlock()
	close(tx.done)

	logger.TxResolved(tx.receipt.Operation, tx.receipt.Hash, err)
}

// Receipt returns a snapshot of the transaction's current state.
func (s *Submitter) Receipt(hash string) (*domain.TxReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.receipts[hash]
	if !ok {
		return nil, domain.ErrTxNotFound
	}
	receipt := tx.receipt
	return &receipt, nil
}

// Wait blocks until the transaction settles or the context ends. A context
// error only means the caller stopped waiting; the transaction itself keeps
// running to its outcome.
func (s *Submitter) Wait(ctx context.Context, hash string) (*domain.TxReceipt, error) {
	s.mu.RLock()
	tx, ok := s.receipts[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTxNotFound
	}

	select {
	case <-tx.done:
		return s.Receipt(hash)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Prune drops settled receipts older than the given age and returns how
// many were removed. Pending receipts are never pruned.
func (s *Submitter) Prune(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for hash, tx := range s.receipts {
		if tx.receipt.Settled() && tx.receipt.ResolvedOn.Before(cutoff) {
			delete(s.receipts, hash)
			removed++
		}
	}
	return removed
}
