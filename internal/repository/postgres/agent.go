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

	"github.com/lib/pq"
)

type agentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) repository.AgentRepository {
	return &agentRepository{db: db}
}

const agentColumns = `id, creator, name, category, avatar, traits, expertise,
	rental_price_per_day::text, is_active, total_rentals, total_earnings::text,
	rating_sum, rating_count, created_on, updated_on`

func scanAgent(row interface{ Scan(dest ...any) error }) (*domain.Agent, error) {
	a := &domain.Agent{}
	var price, earnings string
	err := row.Scan(&a.ID, &a.Creator, &a.Name, &a.Category, &a.Avatar,
		pq.Array(&a.Traits), pq.Array(&a.Expertise), &price, &a.IsActive,
		&a.TotalRentals, &earnings, &a.RatingSum, &a.RatingCount,
		&a.CreatedOn, &a.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if a.RentalPricePerDay, err = parseWei(price); err != nil {
		return nil, err
	}
	if a.TotalEarnings, err = parseWei(earnings); err != nil {
		return nil, err
	}
	return a, nil
}

// Create charges the fixed creation fee and registers the agent in one
// transaction. The fee moves from the creator's ledger account to the
// treasury; an insufficient balance aborts the whole operation.
func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent, creationFee *big.Int, treasury string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create agent tx: %w", err)
	}
	defer tx.Rollback()

	var balance string
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM ledger_entries WHERE account = $1`,
		agent.Creator).Scan(&balance)
	if err != nil {
		return fmt.Errorf("read creator balance: %w", err)
	}
	bal, err := parseWei(balance)
	if err != nil {
		return err
	}
	if bal.Cmp(creationFee) < 0 {
		return fmt.Errorf("%w: creation fee requires %s wei, balance is %s wei",
			domain.ErrPaymentFailed, creationFee.String(), bal.String())
	}

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO agents (creator, name, category, avatar, traits, expertise,
		    rental_price_per_day, is_active, total_rentals, total_earnings,
		    rating_sum, rating_count, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, TRUE, 0, 0, 0, 0, $8, $8)
		 RETURNING id`,
		agent.Creator, agent.Name, agent.Category, agent.Avatar,
		pq.Array(agent.Traits), pq.Array(agent.Expertise),
		agent.RentalPricePerDay.String(), now).Scan(&agent.ID)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}

	debit := new(big.Int).Neg(creationFee)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (account, amount, type, agent_id, description, created_on)
		 VALUES ($1, $2::numeric, $3, $4, $5, $6), ($7, $8::numeric, $3, $4, $5, $6)`,
		agent.Creator, debit.String(), domain.EntryTypeCreationFee, agent.ID,
		fmt.Sprintf("creation fee for agent %q", agent.Name), now,
		treasury, creationFee.String())
	if err != nil {
		return fmt.Errorf("record creation fee: %w", err)
	}

	agent.IsActive = true
	agent.TotalEarnings = big.NewInt(0)
	agent.CreatedOn = now
	agent.UpdatedOn = now
	return tx.Commit()
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAgentNotFound
	}
	return agent, err
}

func (r *agentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count)
	return count, err
}

func (r *agentRepository) List(ctx context.Context, activeOnly bool, page, pageSize int32) ([]domain.Agent, int64, error) {
	where := ""
	if activeOnly {
		where = " WHERE is_active"
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`+where).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM agents`+where+` ORDER BY id LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, 0, err
		}
		agents = append(agents, *agent)
	}
	return agents, count, rows.Err()
}

func (r *agentRepository) ListIDsByCreator(ctx context.Context, creator string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM agents WHERE creator = $1 ORDER BY id`, creator)
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

func (r *agentRepository) UpdateMetadata(ctx context.Context, id int64, category string, traits, expertise []string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agents SET category = $1, traits = $2, expertise = $3, updated_on = $4 WHERE id = $5`,
		category, pq.Array(traits), pq.Array(expertise), time.Now(), id)
	if err != nil {
		return err
	}
	return checkAgentUpdated(res)
}

func (r *agentRepository) UpdatePrice(ctx context.Context, id int64, price *big.Int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agents SET rental_price_per_day = $1::numeric, updated_on = $2 WHERE id = $3`,
		price.String(), time.Now(), id)
	if err != nil {
		return err
	}
	return checkAgentUpdated(res)
}

func (r *agentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE agents SET is_active = $1, updated_on = $2 WHERE id = $3`,
		active, time.Now(), id)
	if err != nil {
		return err
	}
	return checkAgentUpdated(res)
}

func checkAgentUpdated(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}
