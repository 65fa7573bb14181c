package importcsv_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/pettycash/internal/cashbox"
	"github.com/opsdesk/pettycash/internal/importcsv"
)

type fakeRegistrar struct {
	registered []cashbox.RegisterExpenseParams
	failAfter  int // reject rows once this many have been admitted
	failWith   error
}

func (f *fakeRegistrar) RegisterExpense(_ context.Context, params cashbox.RegisterExpenseParams) (*cashbox.Expense, error) {
	if f.failWith != nil && len(f.registered) >= f.failAfter {
		return nil, f.failWith
	}

	f.registered = append(f.registered, params)

	return &cashbox.Expense{
		ID:         uuid.New(),
		Date:       params.Date,
		Payee:      params.Payee,
		CostCenter: params.CostCenter,
		Amount:     params.Amount,
	}, nil
}

type fakeSuggester struct {
	mappings map[string]string
}

func (f *fakeSuggester) Suggest(_ context.Context, payee string) (string, error) {
	if cc, ok := f.mappings[payee]; ok {
		return cc, nil
	}

	return "", cashbox.ErrNotFound
}

const importInput = "date;payee;concept;cost_center;amount\n" +
	"2026-03-05;Taxi Libre;Airport run;;450,00\n" +
	"2026-03-06;Papeleria Central;Paper;OFFICE;1.200,00\n" +
	"2026-03-07;Cafeteria;Coffee;;125,50\n"

func TestService_Import(t *testing.T) {
	registrar := &fakeRegistrar{}
	suggester := &fakeSuggester{mappings: map[string]string{"Taxi Libre": "TRANSPORT"}}

	svc := importcsv.NewService(registrar, suggester)

	result, err := svc.Import(context.Background(), strings.NewReader(importInput))
	require.NoError(t, err)
	require.Nil(t, result.Failed)
	require.Len(t, result.Registered, 3)

	// A learned mapping fills the gap; an explicit cost center is kept; an
	// unknown payee stays blank.
	assert.Equal(t, "TRANSPORT", registrar.registered[0].CostCenter)
	assert.Equal(t, "OFFICE", registrar.registered[1].CostCenter)
	assert.Empty(t, registrar.registered[2].CostCenter)
}

func TestService_Import_StopsAtFirstRejectedRow(t *testing.T) {
	registrar := &fakeRegistrar{failAfter: 1, failWith: cashbox.ErrInsufficientBalance}

	svc := importcsv.NewService(registrar, nil)

	result, err := svc.Import(context.Background(), strings.NewReader(importInput))
	require.NoError(t, err)

	// The first row stands; the second is reported with its file row number.
	require.Len(t, result.Registered, 1)
	require.NotNil(t, result.Failed)
	assert.Equal(t, 3, result.Failed.Row)
	assert.ErrorIs(t, result.Failed, cashbox.ErrInsufficientBalance)
}

func TestService_Import_ParseErrorRegistersNothing(t *testing.T) {
	registrar := &fakeRegistrar{}

	svc := importcsv.NewService(registrar, nil)

	_, err := svc.Import(context.Background(), strings.NewReader("date;payee\n2026-03-05;Taxi\n"))
	require.Error(t, err)
	assert.Empty(t, registrar.registered)
}
