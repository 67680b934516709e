package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/repository"
	"agentforge-backend/internal/utils"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, agent_id, renter, start_time, end_time,
	duration_days, amount_paid::text, rated, status, tx_hash, created_on`

func scanRental(row interface{ Scan(dest ...any) error }) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var amount string
	err := row.Scan(&rt.ID, &rt.AgentID, &rt.Renter, &rt.StartTime, &rt.EndTime,
		&rt.DurationDays, &amount, &rt.Rated, &rt.Status, &rt.TxHash, &rt.CreatedOn)
	if err != nil {
		return nil, err
	}
	if rt.AmountPaid, err = parseWei(amount); err != nil {
		return nil, err
	}
	return rt, nil
}

// Rent re-validates every precondition under a row lock on the agent, so a
// deactivation or competing rental racing this call loses cleanly. The
// payment split and aggregate bump commit with the rental row or not at all.
func (r *rentalRepository) Rent(ctx context.Context, p repository.RentAgentParams) (*domain.Rental, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rent tx: %w", err)
	}
	defer tx.Rollback()

	var creator, price string
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT creator, rental_price_per_day::text, is_active FROM agents WHERE id = $1 FOR UPDATE`,
		p.AgentID).Scan(&creator, &price, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock agent: %w", err)
	}
	if !isActive {
		return nil, domain.ErrAgentInactive
	}
	pricePerDay, err := parseWei(price)
	if err != nil {
		return nil, err
	}

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE agent_id = $1 AND renter = $2 AND end_time > $3`,
		p.AgentID, p.Renter, p.StartTime).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check overlapping rental: %w", err)
	}
	if existing > 0 {
		return nil, domain.ErrAlreadyRented
	}

	amount := utils.RentalCost(pricePerDay, p.DurationDays)

	var balanceStr string
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM ledger_entries WHERE account = $1`,
		p.Renter).Scan(&balanceStr)
	if err != nil {
		return nil, fmt.Errorf("read renter balance: %w", err)
	}
	balance, err := parseWei(balanceStr)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: rental costs %s wei, balance is %s wei",
			domain.ErrPaymentFailed, amount.String(), balance.String())
	}

	now := time.Now()
	rental := &domain.Rental{
		AgentID:      p.AgentID,
		Renter:       p.Renter,
		StartTime:    p.StartTime,
		EndTime:      p.StartTime + int64(p.DurationDays)*domain.SecondsPerDay,
		DurationDays: p.DurationDays,
		AmountPaid:   amount,
		Status:       domain.RentalStatusActive,
		TxHash:       p.TxHash,
		CreatedOn:    now,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO rentals (agent_id, renter, start_time, end_time, duration_days,
		    amount_paid, rated, status, tx_hash, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6::numeric, FALSE, $7, $8, $9)
		 RETURNING id`,
		rental.AgentID, rental.Renter, rental.StartTime, rental.EndTime,
		rental.DurationDays, rental.AmountPaid.String(), rental.Status,
		rental.TxHash, now).Scan(&rental.ID)
	if err != nil {
		return nil, fmt.Errorf("insert rental: %w", err)
	}

	fee, creatorShare := utils.SplitPayment(amount, p.PlatformFeeBps)
	debit := new(big.Int).Neg(amount)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (account, amount, type, agent_id, rental_id, description, created_on) VALUES
		 ($1, $2::numeric, $3, $10, $11, $12, $13),
		 ($4, $5::numeric, $6, $10, $11, $12, $13),
		 ($7, $8::numeric, $9, $10, $11, $12, $13)`,
		p.Renter, debit.String(), domain.EntryTypeRentalDebit,
		creator, creatorShare.String(), domain.EntryTypeCreatorCredit,
		p.TreasuryAccount, fee.String(), domain.EntryTypePlatformFee,
		p.AgentID, rental.ID,
		fmt.Sprintf("rental of agent %d for %d day(s)", p.AgentID, p.DurationDays), now)
	if err != nil {
		return nil, fmt.Errorf("record rental payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE agents
		 SET total_rentals = total_rentals + 1,
		     total_earnings = total_earnings + $1::numeric,
		     updated_on = $2
		 WHERE id = $3`,
		amount.String(), now, p.AgentID)
	if err != nil {
		return nil, fmt.Errorf("update agent aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rent tx: %w", err)
	}
	return rental, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
	return scanRental(row)
}

// GetLatestForPair returns the most recent rental for (agent, renter), or
// nil when the renter never held one.
func (r *rentalRepository) GetLatestForPair(ctx context.Context, agentID int64, renter string) (*domain.Rental, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals
		 WHERE agent_id = $1 AND renter = $2
		 ORDER BY start_time DESC, id DESC LIMIT 1`,
		agentID, renter)
	rental, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rental, err
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renter string) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals WHERE renter = $1 ORDER BY start_time DESC`,
		renter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListAgentIDsByRenter(ctx context.Context, renter string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT agent_id FROM rentals WHERE renter = $1 ORDER BY agent_id`,
		renter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkExpired is sweep bookkeeping; access control never reads the status
// column, so a late sweep cannot extend anyone's access.
func (r *rentalRepository) MarkExpired(ctx context.Context, now int64) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx,
		`UPDATE rentals SET status = $1
		 WHERE status = $2 AND end_time <= $3
		 RETURNING `+rentalColumns,
		domain.RentalStatusExpired, domain.RentalStatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListExpiredUnrated(ctx context.Context, expiredAfter, expiredBefore int64) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+rentalColumns+` FROM rentals
		 WHERE rated = FALSE AND end_time > $1 AND end_time <= $2
		 ORDER BY end_time`,
		expiredAfter, expiredBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	var rentals []domain.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rental)
	}
	return rentals, rows.Err()
}
