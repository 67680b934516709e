package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/repository"
)

type ratingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

// Rate locks the renter's most recent unrated rental for the agent, flips
// its rated flag and folds the score into the agent aggregates. Expired
// rentals stay eligible; only a missing or already-rated rental fails.
func (r *ratingRepository) Rate(ctx context.Context, agentID int64, rater string, score int32) (*domain.Agent, *domain.Rating, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin rate tx: %w", err)
	}
	defer tx.Rollback()

	var rentalID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM rentals
		 WHERE agent_id = $1 AND renter = $2 AND rated = FALSE
		 ORDER BY start_time DESC, id DESC LIMIT 1
		 FOR UPDATE`,
		agentID, rater).Scan(&rentalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrNoEligibleRental
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lock rental for rating: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rentals SET rated = TRUE WHERE id = $1`, rentalID); err != nil {
		return nil, nil, fmt.Errorf("mark rental rated: %w", err)
	}

	now := time.Now()
	rating := &domain.Rating{
		AgentID:   agentID,
		RentalID:  rentalID,
		Rater:     rater,
		Score:     score,
		CreatedOn: now,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO ratings (agent_id, rental_id, rater, score, created_on)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		agentID, rentalID, rater, score, now).Scan(&rating.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("insert rating: %w", err)
	}

	row := tx.QueryRowContext(ctx,
		`UPDATE agents
		 SET rating_sum = rating_sum + $1, rating_count = rating_count + 1, updated_on = $2
		 WHERE id = $3
		 RETURNING `+agentColumns,
		score, now, agentID)
	agent, err := scanAgent(row)
	if err != nil {
		return nil, nil, fmt.Errorf("update agent rating aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit rate tx: %w", err)
	}
	return agent, rating, nil
}

func (r *ratingRepository) ListByAgent(ctx context.Context, agentID int64, page, pageSize int32) ([]domain.Rating, int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE agent_id = $1`, agentID).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, agent_id, rental_id, rater, score, created_on FROM ratings
		 WHERE agent_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`,
		agentID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.ID, &rt.AgentID, &rt.RentalID, &rt.Rater, &rt.Score, &rt.CreatedOn); err != nil {
			return nil, 0, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, count, rows.Err()
}
