package cashbox_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/pettycash/internal/cashbox"
)

func openBox(initialAmount int64) *cashbox.Box {
	return &cashbox.Box{
		Custodian:     "Maria Perez",
		InitialAmount: initialAmount,
		State:         cashbox.StateOpen,
	}
}

func expenses(amounts ...int64) []*cashbox.Expense {
	list := make([]*cashbox.Expense, len(amounts))
	for i, a := range amounts {
		list[i] = &cashbox.Expense{Amount: a}
	}

	return list
}

func TestAvailableBalance(t *testing.T) {
	tests := []struct {
		name     string
		box      *cashbox.Box
		expenses []*cashbox.Expense
		want     int64
	}{
		{
			name: "NoExpenses",
			box:  openBox(200_000_000),
			want: 200_000_000,
		},
		{
			name:     "PartiallyConsumed",
			box:      openBox(200_000_000),
			expenses: expenses(140_000_000),
			want:     60_000_000,
		},
		{
			name:     "FullyConsumed",
			box:      openBox(200_000_000),
			expenses: expenses(140_000_000, 60_000_000),
			want:     0,
		},
		{
			name:     "Deficit",
			box:      openBox(100_000_000),
			expenses: expenses(80_000_000, 50_000_000),
			want:     -30_000_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cashbox.AvailableBalance(tt.box, tt.expenses))
		})
	}
}

func TestConsumedRatio(t *testing.T) {
	box := openBox(200_000_000)

	assert.InDelta(t, 0.0, cashbox.ConsumedRatio(box, nil), 1e-9)
	assert.InDelta(t, 0.7, cashbox.ConsumedRatio(box, expenses(140_000_000)), 1e-9)
	assert.InDelta(t, 1.0, cashbox.ConsumedRatio(box, expenses(140_000_000, 60_000_000)), 1e-9)
}

func TestValidateNewExpense(t *testing.T) {
	const hardCap = 500_000_000

	tests := []struct {
		name     string
		box      *cashbox.Box
		expenses []*cashbox.Expense
		amount   int64
		wantErr  error
	}{
		{
			name:   "OkWithinBalance",
			box:    openBox(200_000_000),
			amount: 140_000_000,
		},
		{
			name:     "OkExactRemainder",
			box:      openBox(200_000_000),
			expenses: expenses(140_000_000),
			amount:   60_000_000,
		},
		{
			name:     "InsufficientBalance",
			box:      openBox(200_000_000),
			expenses: expenses(140_000_000),
			amount:   70_000_000,
			wantErr:  cashbox.ErrInsufficientBalance,
		},
		{
			name:    "ZeroAmount",
			box:     openBox(200_000_000),
			amount:  0,
			wantErr: cashbox.ErrNonPositiveAmount,
		},
		{
			name:    "NegativeAmount",
			box:     openBox(200_000_000),
			amount:  -100,
			wantErr: cashbox.ErrNonPositiveAmount,
		},
		{
			name:    "ExceedsHardCap",
			box:     openBox(1_000_000_000),
			amount:  hardCap + 1,
			wantErr: cashbox.ErrExceedsHardCap,
		},
		{
			name: "FrozenBox",
			box: &cashbox.Box{
				InitialAmount: 200_000_000,
				State:         cashbox.StateConsolidating,
			},
			amount:  100,
			wantErr: cashbox.ErrBoxFrozen,
		},
		{
			name: "ConsolidatedBox",
			box: &cashbox.Box{
				InitialAmount: 200_000_000,
				State:         cashbox.StateConsolidated,
			},
			amount:  100,
			wantErr: cashbox.ErrNotOpen,
		},
		{
			name:     "DeficitBlocksSmallAmount",
			box:      openBox(100_000_000),
			expenses: expenses(80_000_000, 50_000_000),
			amount:   1,
			wantErr:  cashbox.ErrAlreadyInDeficit,
		},
		{
			name:     "DeficitBlocksLargeAmount",
			box:      openBox(100_000_000),
			expenses: expenses(80_000_000, 50_000_000),
			amount:   400_000_000,
			wantErr:  cashbox.ErrAlreadyInDeficit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cashbox.ValidateNewExpense(tt.box, tt.expenses, tt.amount, hardCap)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestValidateNewExpense_HardCapDisabled(t *testing.T) {
	box := openBox(1_000_000_000)

	assert.NoError(t, cashbox.ValidateNewExpense(box, nil, 900_000_000, 0))
}
