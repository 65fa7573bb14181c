package cashbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/pettycash/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=cashbox
type Repository interface {
	// CreateBox persists a new box. Returns ErrActiveBoxExists when another
	// box is still open or consolidating.
	CreateBox(ctx context.Context, box *Box) error
	GetBox(ctx context.Context, id uuid.UUID) (*Box, error)
	// FindActiveBox returns the box in state open or consolidating.
	// Returns ErrNoActiveBox when there is none.
	FindActiveBox(ctx context.Context) (*Box, error)
	ListBoxes(ctx context.Context) ([]*Box, error)

	// CreateExpense appends an expense conditional on the owning box still
	// being open and at the expected version. Every successful append bumps
	// the box version, serializing registration against consolidation.
	CreateExpense(ctx context.Context, e *Expense, expectedBoxVersion int64) error
	ListExpenses(ctx context.Context, boxID uuid.UUID) ([]*Expense, error)
}

// Service manages box periods and expense registration.
type Service struct {
	repo    Repository
	hardCap int64
}

func NewService(repo Repository, hardCap int64) *Service {
	return &Service{repo: repo, hardCap: hardCap}
}

type OpenBoxParams struct {
	Custodian     string
	ExternalID    string
	Concept       string
	InitialAmount int64
	OpenedAt      time.Time
}

// OpenBox starts a new fund period. At most one box may be open or
// consolidating at a time.
func (s *Service) OpenBox(ctx context.Context, params OpenBoxParams) (*Box, error) {
	if strings.TrimSpace(params.Custodian) == "" {
		return nil, ErrMissingCustodian
	}

	if params.InitialAmount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	_, err := s.repo.FindActiveBox(ctx)
	if err == nil {
		return nil, ErrActiveBoxExists
	}

	if !errors.Is(err, ErrNoActiveBox) {
		return nil, fmt.Errorf("checking for active box: %w", err)
	}

	openedAt := params.OpenedAt
	if openedAt.IsZero() {
		openedAt = time.Now()
	}

	box := &Box{
		Custodian:     params.Custodian,
		ExternalID:    params.ExternalID,
		Concept:       params.Concept,
		InitialAmount: params.InitialAmount,
		OpenedAt:      openedAt,
		State:         StateOpen,
	}
	if err := s.repo.CreateBox(ctx, box); err != nil {
		return nil, err
	}

	return box, nil
}

// CurrentBox returns the box currently open or consolidating.
func (s *Service) CurrentBox(ctx context.Context) (*Box, error) {
	return s.repo.FindActiveBox(ctx)
}

func (s *Service) GetBox(ctx context.Context, id uuid.UUID) (*Box, error) {
	return s.repo.GetBox(ctx, id)
}

func (s *Service) ListBoxes(ctx context.Context) ([]*Box, error) {
	return s.repo.ListBoxes(ctx)
}

func (s *Service) Expenses(ctx context.Context, boxID uuid.UUID) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, boxID)
}

type RegisterExpenseParams struct {
	Date       time.Time
	Payee      string
	ExternalID string
	Concept    string
	CostCenter string
	Amount     int64
	VoucherRef string
}

// RegisterExpense appends an expense to the currently open box. The append is
// conditional on the box version observed during validation, so a concurrent
// registration or freeze makes this fail with ErrConcurrentModification and
// the caller must retry against fresh state.
func (s *Service) RegisterExpense(ctx context.Context, params RegisterExpenseParams) (*Expense, error) {
	box, err := s.repo.FindActiveBox(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListExpenses(ctx, box.ID)
	if err != nil {
		return nil, fmt.Errorf("loading expenses: %w", err)
	}

	if err := ValidateNewExpense(box, expenses, params.Amount, s.hardCap); err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	expense := &Expense{
		BoxID:      box.ID,
		Date:       date,
		Payee:      params.Payee,
		ExternalID: params.ExternalID,
		Concept:    params.Concept,
		CostCenter: params.CostCenter,
		Amount:     params.Amount,
		VoucherRef: params.VoucherRef,
	}
	if err := s.repo.CreateExpense(ctx, expense, box.Version); err != nil {
		return nil, err
	}

	metrics.ExpensesRegistered.Inc()

	return expense, nil
}

// Summary pairs a box with its derived balance figures.
type Summary struct {
	Box              *Box
	TotalSpent       int64
	AvailableBalance int64
	ConsumedRatio    float64
}

func (s *Service) Summarize(ctx context.Context, box *Box) (*Summary, error) {
	expenses, err := s.repo.ListExpenses(ctx, box.ID)
	if err != nil {
		return nil, fmt.Errorf("loading expenses: %w", err)
	}

	return &Summary{
		Box:              box,
		TotalSpent:       totalSpent(expenses),
		AvailableBalance: AvailableBalance(box, expenses),
		ConsumedRatio:    ConsumedRatio(box, expenses),
	}, nil
}
