package cashbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

const hardCap = 500_000_000

func TestService_OpenBox(t *testing.T) {
	type testCase struct {
		name      string
		params    cashbox.OpenBoxParams
		setupMock func(m *cashbox.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: cashbox.OpenBoxParams{
				Custodian:     "Maria Perez",
				ExternalID:    "52123456",
				Concept:       "Office petty cash",
				InitialAmount: 200_000_000,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().FindActiveBox(gomock.Any()).Return(nil, cashbox.ErrNoActiveBox)
				m.EXPECT().
					CreateBox(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, box *cashbox.Box) error {
						box.ID = uuid.New()
						box.Version = 1
						box.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "ActiveBoxExists",
			params: cashbox.OpenBoxParams{
				Custodian:     "Maria Perez",
				InitialAmount: 200_000_000,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().
					FindActiveBox(gomock.Any()).
					Return(&cashbox.Box{ID: uuid.New(), State: cashbox.StateOpen}, nil)
			},
			wantErr: cashbox.ErrActiveBoxExists,
		},
		{
			name: "ConsolidatingBoxCountsAsActive",
			params: cashbox.OpenBoxParams{
				Custodian:     "Maria Perez",
				InitialAmount: 200_000_000,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().
					FindActiveBox(gomock.Any()).
					Return(&cashbox.Box{ID: uuid.New(), State: cashbox.StateConsolidating}, nil)
			},
			wantErr: cashbox.ErrActiveBoxExists,
		},
		{
			name: "NonPositiveAmount",
			params: cashbox.OpenBoxParams{
				Custodian:     "Maria Perez",
				InitialAmount: 0,
			},
			wantErr: cashbox.ErrNonPositiveAmount,
		},
		{
			name: "MissingCustodian",
			params: cashbox.OpenBoxParams{
				Custodian:     "  ",
				InitialAmount: 200_000_000,
			},
			wantErr: cashbox.ErrMissingCustodian,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := cashbox.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := cashbox.NewService(repo, hardCap)
			got, err := svc.OpenBox(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, cashbox.StateOpen, got.State)
			assert.False(t, got.OpenedAt.IsZero())
		})
	}
}

func TestService_CurrentBox(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashbox.NewMockRepository(ctrl)
	svc := cashbox.NewService(repo, hardCap)

	active := &cashbox.Box{ID: uuid.New(), State: cashbox.StateOpen}
	repo.EXPECT().FindActiveBox(gomock.Any()).Return(active, nil)

	got, err := svc.CurrentBox(context.Background())
	require.NoError(t, err)
	assert.Equal(t, active, got)

	repo.EXPECT().FindActiveBox(gomock.Any()).Return(nil, cashbox.ErrNoActiveBox)

	_, err = svc.CurrentBox(context.Background())
	assert.ErrorIs(t, err, cashbox.ErrNoActiveBox)
}

func TestService_RegisterExpense(t *testing.T) {
	boxID := uuid.New()

	open := func(version int64) *cashbox.Box {
		return &cashbox.Box{
			ID:            boxID,
			Custodian:     "Maria Perez",
			InitialAmount: 200_000_000,
			State:         cashbox.StateOpen,
			Version:       version,
		}
	}

	type testCase struct {
		name      string
		params    cashbox.RegisterExpenseParams
		setupMock func(m *cashbox.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: cashbox.RegisterExpenseParams{
				Payee:  "Taxi Libre",
				Amount: 140_000_000,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().FindActiveBox(gomock.Any()).Return(open(3), nil)
				m.EXPECT().ListExpenses(gomock.Any(), boxID).Return(nil, nil)
				m.EXPECT().
					CreateExpense(gomock.Any(), gomock.Any(), int64(3)).
					DoAndReturn(func(_ context.Context, e *cashbox.Expense, _ int64) error {
						e.ID = uuid.New()
						e.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "NoOpenBox",
			params: cashbox.RegisterExpenseParams{
				Payee:  "Taxi Libre",
				Amount: 100,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().FindActiveBox(gomock.Any()).Return(nil, cashbox.ErrNoActiveBox)
			},
			wantErr: cashbox.ErrNoActiveBox,
		},
		{
			name: "FrozenBox",
			params: cashbox.RegisterExpenseParams{
				Payee:  "Taxi Libre",
				Amount: 100,
			},
			setupMock: func(m *cashbox.MockRepository) {
				frozen := open(3)
				frozen.State = cashbox.StateConsolidating
				m.EXPECT().FindActiveBox(gomock.Any()).Return(frozen, nil)
				m.EXPECT().ListExpenses(gomock.Any(), boxID).Return(nil, nil)
			},
			wantErr: cashbox.ErrBoxFrozen,
		},
		{
			name: "InsufficientBalance",
			params: cashbox.RegisterExpenseParams{
				Payee:  "Papeleria Central",
				Amount: 70_000_000,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().FindActiveBox(gomock.Any()).Return(open(4), nil)
				m.EXPECT().
					ListExpenses(gomock.Any(), boxID).
					Return([]*cashbox.Expense{{Amount: 140_000_000}}, nil)
			},
			wantErr: cashbox.ErrInsufficientBalance,
		},
		{
			name: "ConcurrentModification",
			params: cashbox.RegisterExpenseParams{
				Payee:  "Papeleria Central",
				Amount: 60_000_000,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().FindActiveBox(gomock.Any()).Return(open(4), nil)
				m.EXPECT().
					ListExpenses(gomock.Any(), boxID).
					Return([]*cashbox.Expense{{Amount: 140_000_000}}, nil)
				m.EXPECT().
					CreateExpense(gomock.Any(), gomock.Any(), int64(4)).
					Return(cashbox.ErrConcurrentModification)
			},
			wantErr: cashbox.ErrConcurrentModification,
		},
		{
			name: "RepoError",
			params: cashbox.RegisterExpenseParams{
				Payee:  "Taxi Libre",
				Amount: 100,
			},
			setupMock: func(m *cashbox.MockRepository) {
				m.EXPECT().FindActiveBox(gomock.Any()).Return(open(1), nil)
				m.EXPECT().ListExpenses(gomock.Any(), boxID).Return(nil, errors.New("db error"))
			},
			wantErr: nil, // wrapped db error, checked generically below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := cashbox.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := cashbox.NewService(repo, hardCap)
			got, err := svc.RegisterExpense(context.Background(), tt.params)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.name == "RepoError":
				assert.Error(t, err)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, boxID, got.BoxID)
				assert.NotEmpty(t, got.ID)
				assert.False(t, got.Date.IsZero())
			}
		})
	}
}

// The documented spending sequence: 2,000,000 opened, 1,400,000 spent,
// 700,000 rejected, 600,000 accepted down to zero.
func TestService_RegisterExpense_SpendDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashbox.NewMockRepository(ctrl)
	svc := cashbox.NewService(repo, hardCap)

	boxID := uuid.New()
	version := int64(1)

	var recorded []*cashbox.Expense

	box := func() *cashbox.Box {
		return &cashbox.Box{
			ID:            boxID,
			InitialAmount: 200_000_000,
			State:         cashbox.StateOpen,
			Version:       version,
		}
	}

	repo.EXPECT().FindActiveBox(gomock.Any()).DoAndReturn(func(context.Context) (*cashbox.Box, error) {
		return box(), nil
	}).Times(3)
	repo.EXPECT().ListExpenses(gomock.Any(), boxID).DoAndReturn(func(context.Context, uuid.UUID) ([]*cashbox.Expense, error) {
		return recorded, nil
	}).Times(3)
	repo.EXPECT().CreateExpense(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *cashbox.Expense, expectedVersion int64) error {
			require.Equal(t, version, expectedVersion)
			e.ID = uuid.New()
			recorded = append(recorded, e)
			version++
			return nil
		}).Times(2)

	_, err := svc.RegisterExpense(context.Background(), cashbox.RegisterExpenseParams{Payee: "A", Amount: 140_000_000})
	require.NoError(t, err)

	_, err = svc.RegisterExpense(context.Background(), cashbox.RegisterExpenseParams{Payee: "B", Amount: 70_000_000})
	assert.ErrorIs(t, err, cashbox.ErrInsufficientBalance)

	_, err = svc.RegisterExpense(context.Background(), cashbox.RegisterExpenseParams{Payee: "C", Amount: 60_000_000})
	require.NoError(t, err)

	assert.Equal(t, int64(0), cashbox.AvailableBalance(box(), recorded))
}

func TestService_Summarize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashbox.NewMockRepository(ctrl)
	svc := cashbox.NewService(repo, hardCap)

	box := &cashbox.Box{ID: uuid.New(), InitialAmount: 200_000_000, State: cashbox.StateOpen}
	repo.EXPECT().
		ListExpenses(gomock.Any(), box.ID).
		Return([]*cashbox.Expense{{Amount: 140_000_000}, {Amount: 40_000_000}}, nil)

	summary, err := svc.Summarize(context.Background(), box)
	require.NoError(t, err)
	assert.Equal(t, int64(180_000_000), summary.TotalSpent)
	assert.Equal(t, int64(20_000_000), summary.AvailableBalance)
	assert.InDelta(t, 0.9, summary.ConsumedRatio, 1e-9)
}
