package postgres

import (
	"context"
	"math/big"
	"testing"
	"time"

	"agentforge-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creator", "name", "category", "avatar", "traits", "expertise",
		"rental_price_per_day", "is_active", "total_rentals", "total_earnings",
		"rating_sum", "rating_count", "created_on", "updated_on",
	})
}

func TestAgentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgentRepository(db)
	ctx := context.Background()
	fee := big.NewInt(500_000_000_000_000_000)
	treasury := "0x00000000000000000000000000000000000000fe"

	t.Run("Success", func(t *testing.T) {
		agent := &domain.Agent{
			Creator:           "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Name:              "Atlas",
			Category:          "Research",
			Traits:            []string{"meticulous"},
			Expertise:         []string{"literature review"},
			RentalPricePerDay: big.NewInt(1_000_000_000_000_000_000),
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)::text FROM ledger_entries`).
			WithArgs(agent.Creator).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("2000000000000000000"))
		mock.ExpectQuery("INSERT INTO agents").
			WithArgs(agent.Creator, agent.Name, agent.Category, agent.Avatar,
				pq.Array(agent.Traits), pq.Array(agent.Expertise),
				"1000000000000000000", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs(agent.Creator, "-500000000000000000", string(domain.EntryTypeCreationFee),
				int64(1), sqlmock.AnyArg(), sqlmock.AnyArg(),
				treasury, "500000000000000000").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := repo.Create(ctx, agent, fee, treasury)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), agent.ID)
		assert.True(t, agent.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		agent := &domain.Agent{
			Creator:           "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Name:              "Atlas",
			RentalPricePerDay: big.NewInt(1),
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)::text FROM ledger_entries`).
			WithArgs(agent.Creator).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0"))
		mock.ExpectRollback()

		err := repo.Create(ctx, agent, fee, treasury)
		assert.ErrorIs(t, err, domain.ErrPaymentFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAgentRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := agentRows().AddRow(
			1, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "Atlas", "Research", "",
			pq.StringArray{"meticulous"}, pq.StringArray{"literature review"},
			"1000000000000000000", true, 3, "3000000000000000000", 13, 3, now, now)

		mock.ExpectQuery(`SELECT (.+) FROM agents WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(rows)

		agent, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Atlas", agent.Name)
		assert.Equal(t, "1000000000000000000", agent.RentalPricePerDay.String())
		assert.Equal(t, int64(3), agent.TotalRentals)
		assert.InDelta(t, 4.33, agent.AverageRating(), 0.01)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM agents WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(agentRows())

		agent, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrAgentNotFound)
		assert.Nil(t, agent)
	})
}

func TestAgentRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgentRepository(db)
	ctx := context.Background()

	t.Run("ActiveOnly", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM agents WHERE is_active`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM agents WHERE is_active ORDER BY id`).
			WithArgs(int32(20), int32(0)).
			WillReturnRows(agentRows().AddRow(
				1, "0xbb", "Atlas", "Research", "", pq.StringArray{}, pq.StringArray{},
				"1000000000000000000", true, 0, "0", 0, 0, now, now))

		agents, total, err := repo.List(ctx, true, 1, 20)
		require.NoError(t, err)
		assert.Len(t, agents, 1)
		assert.Equal(t, int64(1), total)
	})
}

func TestAgentRepository_SetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE agents SET is_active").
			WithArgs(false, sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetActive(ctx, 1, false))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE agents SET is_active").
			WithArgs(true, sqlmock.AnyArg(), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetActive(ctx, 99, true), domain.ErrAgentNotFound)
	})
}
