package postgres

import (
	"context"
	"testing"
	"time"

	"agentforge-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRatingRepository_Rate verifies the one-transaction rating flow: the
// latest unrated rental is consumed and the agent aggregates absorb the
// score atomically.
func TestRatingRepository_Rate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRatingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rentals`).
			WithArgs(int64(1), testRenter).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectExec(`UPDATE rentals SET rated = TRUE`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO ratings").
			WithArgs(int64(1), int64(42), testRenter, int32(5), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`UPDATE agents`).
			WithArgs(int32(5), sqlmock.AnyArg(), int64(1)).
			WillReturnRows(agentRows().AddRow(
				1, testCreator, "Atlas", "Research", "",
				pq.StringArray{}, pq.StringArray{},
				"1000000000000000000", true, 3, "3000000000000000000", 14, 3, now, now))
		mock.ExpectCommit()

		agent, rating, err := repo.Rate(ctx, 1, testRenter, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(7), rating.ID)
		assert.Equal(t, int64(42), rating.RentalID)
		assert.Equal(t, int64(14), agent.RatingSum)
		assert.Equal(t, int64(3), agent.RatingCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoEligibleRental", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rentals`).
			WithArgs(int64(1), testRenter).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, _, err := repo.Rate(ctx, 1, testRenter, 4)
		assert.ErrorIs(t, err, domain.ErrNoEligibleRental)
	})
}

func TestRatingRepository_ListByAgent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRatingRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ratings`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT id, agent_id, rental_id, rater, score, created_on FROM ratings`).
		WithArgs(int64(1), int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "agent_id", "rental_id", "rater", "score", "created_on"}).
			AddRow(2, 1, 43, testRenter, 4, time.Now()).
			AddRow(1, 1, 42, testRenter, 5, time.Now()))

	ratings, total, err := repo.ListByAgent(ctx, 1, 1, 20)
	require.NoError(t, err)
	assert.Len(t, ratings, 2)
	assert.Equal(t, int64(2), total)
}
