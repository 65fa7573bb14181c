package cashbox

// AvailableBalance returns the amount still available in the box.
// It may be negative when historical data already put the box in deficit.
func AvailableBalance(box *Box, expenses []*Expense) int64 {
	return box.InitialAmount - totalSpent(expenses)
}

// ConsumedRatio returns the fraction of the initial amount already spent.
func ConsumedRatio(box *Box, expenses []*Expense) float64 {
	if box.InitialAmount <= 0 {
		return 0
	}

	return float64(totalSpent(expenses)) / float64(box.InitialAmount)
}

// ValidateNewExpense decides whether an expense of the given amount may be
// registered against the box. hardCap is an absolute per-expense ceiling
// guarding against data-entry errors; zero disables it.
//
// Checks run in order: box state, amount sign, hard cap, existing deficit,
// remaining balance.
func ValidateNewExpense(box *Box, expenses []*Expense, amount, hardCap int64) error {
	switch box.State {
	case StateOpen:
	case StateConsolidating:
		return ErrBoxFrozen
	case StateConsolidated:
		return ErrNotOpen
	default:
		return ErrNotOpen
	}

	if amount <= 0 {
		return ErrNonPositiveAmount
	}

	if hardCap > 0 && amount > hardCap {
		return ErrExceedsHardCap
	}

	balance := AvailableBalance(box, expenses)
	if balance < 0 {
		return ErrAlreadyInDeficit
	}

	if amount > balance {
		return ErrInsufficientBalance
	}

	return nil
}

func totalSpent(expenses []*Expense) int64 {
	var total int64
	for _, e := range expenses {
		total += e.Amount
	}

	return total
}
