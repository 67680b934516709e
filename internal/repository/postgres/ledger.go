package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetBalance(ctx context.Context, account string) (*big.Int, error) {
	var balance string
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM ledger_entries WHERE account = $1`,
		account).Scan(&balance)
	if err != nil {
		return nil, err
	}
	return parseWei(balance)
}

// Deposit credits an account. This is the internal-ledger stand-in for a
// wallet funding the marketplace; the chain-backed deployment replaces it
// with value attached to transactions.
func (r *ledgerRepository) Deposit(ctx context.Context, account string, amount *big.Int, description string) (*domain.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive, got %s", amount.String())
	}

	entry := &domain.LedgerEntry{
		Account:     account,
		Amount:      amount,
		Type:        domain.EntryTypeDeposit,
		Description: description,
		CreatedOn:   time.Now(),
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (account, amount, type, description, created_on)
		 VALUES ($1, $2::numeric, $3, $4, $5) RETURNING id`,
		entry.Account, amount.String(), entry.Type, entry.Description, entry.CreatedOn).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("insert deposit: %w", err)
	}
	return entry, nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, account string, page, pageSize int32) ([]domain.LedgerEntry, int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE account = $1`, account).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account, amount::text, type, agent_id, rental_id, description, created_on
		 FROM ledger_entries WHERE account = $1
		 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`,
		account, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var amount string
		var agentID, rentalID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Account, &amount, &e.Type, &agentID, &rentalID, &e.Description, &e.CreatedOn); err != nil {
			return nil, 0, err
		}
		if e.Amount, err = parseWei(amount); err != nil {
			return nil, 0, err
		}
		if agentID.Valid {
			e.AgentID = &agentID.Int64
		}
		if rentalID.Valid {
			e.RentalID = &rentalID.Int64
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}

func (r *ledgerRepository) GetSummary(ctx context.Context, account string) (*domain.LedgerSummary, error) {
	var balance, credits, debits string
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text,
		        COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0)::text,
		        COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0)::text,
		        COUNT(*)
		 FROM ledger_entries WHERE account = $1`,
		account).Scan(&balance, &credits, &debits, &count)
	if err != nil {
		return nil, err
	}

	summary := &domain.LedgerSummary{Account: account, EntryCount: count}
	if summary.Balance, err = parseWei(balance); err != nil {
		return nil, err
	}
	if summary.TotalCredits, err = parseWei(credits); err != nil {
		return nil, err
	}
	if summary.TotalDebits, err = parseWei(debits); err != nil {
		return nil, err
	}
	return summary, nil
}
