package cashbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a petty cash box.
// Transitions are monotonic: open -> consolidating -> consolidated.
type State string

const (
	StateOpen          State = "open"
	StateConsolidating State = "consolidating"
	StateConsolidated  State = "consolidated"
)

var (
	ErrNotFound               = errors.New("box not found")
	ErrNoActiveBox            = errors.New("no open petty cash box")
	ErrActiveBoxExists        = errors.New("an open or consolidating box already exists")
	ErrMissingCustodian       = errors.New("custodian is required")
	ErrNonPositiveAmount      = errors.New("amount must be positive")
	ErrExceedsHardCap         = errors.New("amount exceeds the per-expense cap")
	ErrNotOpen                = errors.New("box is not open")
	ErrBoxFrozen              = errors.New("box is frozen for consolidation")
	ErrAlreadyInDeficit       = errors.New("box is in deficit and must be consolidated")
	ErrInsufficientBalance    = errors.New("amount exceeds available balance")
	ErrConcurrentModification = errors.New("box was modified concurrently")
)

// Box represents one petty cash fund period under a custodian.
type Box struct {
	ID             uuid.UUID
	Custodian      string
	ExternalID     string
	Concept        string
	InitialAmount  int64 // Amount in cents
	OpenedAt       time.Time
	State          State
	ConsolidatedAt *time.Time
	DocumentRef    string // Set only once the box is consolidated
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Expense represents a single disbursement against a box. Expenses are
// immutable once created.
type Expense struct {
	ID         uuid.UUID
	BoxID      uuid.UUID
	Date       time.Time
	Payee      string
	ExternalID string
	Concept    string
	CostCenter string
	Amount     int64 // Amount in cents
	VoucherRef string
	CreatedAt  time.Time
}

// BoxUpdate carries the mutable box fields for a conditional write.
// Nil pointer fields are left untouched.
type BoxUpdate struct {
	State          State
	ConsolidatedAt *time.Time
	DocumentRef    *string
}
