package postgres

import (
	"database/sql"
	"fmt"
	"math/big"

	"agentforge-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AgentRepository
	repository.RentalRepository
	repository.RatingRepository
	repository.LedgerRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:               db,
		AgentRepository:  NewAgentRepository(db),
		RentalRepository: NewRentalRepository(db),
		RatingRepository: NewRatingRepository(db),
		LedgerRepository: NewLedgerRepository(db),
	}
}

// parseWei converts a NUMERIC(78,0) column scanned as text into a big.Int.
func parseWei(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	wei, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid wei value in database: %q", s)
	}
	return wei, nil
}
