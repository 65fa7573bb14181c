package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMapping(ctx context.Context, payee string) (string, error) {
	query := `
		SELECT cost_center
		FROM cost_center_mappings
		WHERE $1 ILIKE '%' || payee_pattern || '%'
		ORDER BY LENGTH(payee_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var costCenter string

	err := s.db.QueryRowContext(ctx, query, payee).Scan(&costCenter)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", fmt.Errorf("finding mapping: %w", err)
	}

	return costCenter, nil
}

func (s *Store) CreateMapping(ctx context.Context, payeePattern, costCenter string) error {
	query := `
		INSERT INTO cost_center_mappings (payee_pattern, cost_center, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, payeePattern, costCenter)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
