package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectBoxColumns = `
	b.id, b.custodian, b.external_id, b.concept, b.initial_amount, b.opened_at,
	b.state, b.consolidated_at, b.document_ref, b.version, b.created_at, b.updated_at
`

// scanBox reads a box row in selectBoxColumns order.
func scanBox(s scanner) (*cashbox.Box, error) {
	var box cashbox.Box

	var stateStr string

	var documentRef sql.NullString

	if err := s.Scan(
		&box.ID, &box.Custodian, &box.ExternalID, &box.Concept, &box.InitialAmount, &box.OpenedAt,
		&stateStr, &box.ConsolidatedAt, &documentRef, &box.Version, &box.CreatedAt, &box.UpdatedAt,
	); err != nil {
		return nil, err
	}

	box.State = cashbox.State(stateStr)
	box.DocumentRef = documentRef.String

	return &box, nil
}

func (s *Store) CreateBox(ctx context.Context, box *cashbox.Box) error {
	query := `
		INSERT INTO petty_cash_boxes (custodian, external_id, concept, initial_amount, opened_at, state, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW())
		RETURNING id, version, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		box.Custodian,
		box.ExternalID,
		box.Concept,
		box.InitialAmount,
		box.OpenedAt,
		box.State,
	).Scan(&box.ID, &box.Version, &box.CreatedAt)
	if err != nil {
		// The partial unique index on active states rejects a second
		// open/consolidating box.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return cashbox.ErrActiveBoxExists
		}

		return fmt.Errorf("creating box: %w", err)
	}

	return nil
}

func (s *Store) GetBox(ctx context.Context, id uuid.UUID) (*cashbox.Box, error) {
	query := `SELECT ` + selectBoxColumns + `
		FROM petty_cash_boxes b
		WHERE b.id = $1`

	box, err := scanBox(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cashbox.ErrNotFound
		}

		return nil, fmt.Errorf("getting box: %w", err)
	}

	return box, nil
}

func (s *Store) FindActiveBox(ctx context.Context) (*cashbox.Box, error) {
	query := `SELECT ` + selectBoxColumns + `
		FROM petty_cash_boxes b
		WHERE b.state IN ('open', 'consolidating')`

	box, err := scanBox(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cashbox.ErrNoActiveBox
		}

		return nil, fmt.Errorf("finding active box: %w", err)
	}

	return box, nil
}

func (s *Store) ListBoxes(ctx context.Context) ([]*cashbox.Box, error) {
	query := `SELECT ` + selectBoxColumns + `
		FROM petty_cash_boxes b
		ORDER BY b.opened_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing boxes: %w", err)
	}
	defer rows.Close()

	var boxes []*cashbox.Box

	for rows.Next() {
		box, err := scanBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning box: %w", err)
		}

		boxes = append(boxes, box)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating box rows: %w", err)
	}

	return boxes, nil
}

// UpdateBoxIfVersion applies the update only if the box still carries the
// expected version, bumping the version on success. A stale version yields
// ErrConcurrentModification.
func (s *Store) UpdateBoxIfVersion(ctx context.Context, id uuid.UUID, expectedVersion int64, update cashbox.BoxUpdate) (*cashbox.Box, error) {
	query := `
		UPDATE petty_cash_boxes b
		SET state = $1,
		    consolidated_at = COALESCE($2, b.consolidated_at),
		    document_ref = COALESCE($3, b.document_ref),
		    version = b.version + 1,
		    updated_at = NOW()
		WHERE b.id = $4 AND b.version = $5
		RETURNING ` + selectBoxColumns

	box, err := scanBox(s.db.QueryRowContext(ctx, query,
		update.State,
		update.ConsolidatedAt,
		update.DocumentRef,
		id,
		expectedVersion,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := s.GetBox(ctx, id); getErr != nil {
				return nil, getErr
			}

			return nil, cashbox.ErrConcurrentModification
		}

		return nil, fmt.Errorf("updating box: %w", err)
	}

	return box, nil
}

// CreateExpense appends an expense inside one database transaction that also
// bumps the box version. The version bump only matches an open box at the
// expected version, which is what serializes registration against both
// concurrent registrations and the consolidation freeze.
func (s *Store) CreateExpense(ctx context.Context, e *cashbox.Expense, expectedBoxVersion int64) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	bumpQuery := `
		UPDATE petty_cash_boxes
		SET version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND state = 'open'
		RETURNING version
	`

	var newVersion int64
	if err := dbTx.QueryRowContext(ctx, bumpQuery, e.BoxID, expectedBoxVersion).Scan(&newVersion); err != nil {
		if err == sql.ErrNoRows {
			return s.expenseConflict(ctx, e.BoxID)
		}

		return fmt.Errorf("bumping box version: %w", err)
	}

	insertQuery := `
		INSERT INTO expenses (box_id, date, payee, external_id, concept, cost_center, amount, voucher_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, insertQuery,
		e.BoxID,
		e.Date,
		e.Payee,
		e.ExternalID,
		e.Concept,
		e.CostCenter,
		e.Amount,
		e.VoucherRef,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing expense: %w", err)
	}

	return nil
}

// expenseConflict turns a failed conditional append into the precise reason.
func (s *Store) expenseConflict(ctx context.Context, boxID uuid.UUID) error {
	box, err := s.GetBox(ctx, boxID)
	if err != nil {
		return err
	}

	switch box.State {
	case cashbox.StateConsolidating:
		return cashbox.ErrBoxFrozen
	case cashbox.StateConsolidated:
		return cashbox.ErrNotOpen
	default:
		return cashbox.ErrConcurrentModification
	}
}

func (s *Store) ListExpenses(ctx context.Context, boxID uuid.UUID) ([]*cashbox.Expense, error) {
	query := `
		SELECT id, box_id, date, payee, external_id, concept, cost_center, amount, voucher_ref, created_at
		FROM expenses
		WHERE box_id = $1
		ORDER BY date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, boxID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*cashbox.Expense

	for rows.Next() {
		var e cashbox.Expense
		if err := rows.Scan(
			&e.ID, &e.BoxID, &e.Date, &e.Payee, &e.ExternalID, &e.Concept,
			&e.CostCenter, &e.Amount, &e.VoucherRef, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return expenses, nil
}
