package consolidation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/pettycash/internal/cashbox"
	"github.com/opsdesk/pettycash/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=consolidation
type Repository interface {
	GetBox(ctx context.Context, id uuid.UUID) (*cashbox.Box, error)
	FindActiveBox(ctx context.Context) (*cashbox.Box, error)
	UpdateBoxIfVersion(ctx context.Context, id uuid.UUID, expectedVersion int64, update cashbox.BoxUpdate) (*cashbox.Box, error)
	ListExpenses(ctx context.Context, boxID uuid.UUID) ([]*cashbox.Expense, error)
}

// Renderer turns a frozen box and its expenses into settlement document bytes.
type Renderer interface {
	Render(ctx context.Context, box *cashbox.Box, expenses []*cashbox.Expense, totals Totals) ([]byte, error)
}

// Archive stores document bytes under a path and returns a stable reference.
type Archive interface {
	Put(ctx context.Context, data []byte, path string) (string, error)
}

// Notifier delivers the settlement summary. Failures are logged, never
// escalated.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, body, attachmentRef string) error
}

// Service drives the open -> consolidating -> consolidated state machine.
type Service struct {
	repo          Repository
	renderer      Renderer
	archive       Archive
	notifier      Notifier
	recipients    []string
	notifyTimeout time.Duration
}

func NewService(repo Repository, renderer Renderer, archive Archive, notifier Notifier, recipients []string, notifyTimeout time.Duration) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}

	return &Service{
		repo:          repo,
		renderer:      renderer,
		archive:       archive,
		notifier:      notifier,
		recipients:    recipients,
		notifyTimeout: notifyTimeout,
	}
}

// Consolidate closes out the box period. A box already consolidated returns
// its existing document reference so retries after a dropped response never
// double-archive. A box found consolidating (a previous attempt failed after
// the freeze) is resumed from the snapshot step; it is never reverted to open,
// because new expenses must not be admitted against settlement numbers that
// were already computed once.
func (s *Service) Consolidate(ctx context.Context, boxID uuid.UUID) (*Result, error) {
	box, err := s.repo.GetBox(ctx, boxID)
	if err != nil {
		return nil, err
	}

	switch box.State {
	case cashbox.StateConsolidated:
		expenses, err := s.repo.ListExpenses(ctx, box.ID)
		if err != nil {
			return nil, fmt.Errorf("loading expenses: %w", err)
		}

		metrics.Consolidations.WithLabelValues(metrics.OutcomeAlreadyClosed).Inc()

		return &Result{
			Box:                 box,
			Totals:              computeTotals(box, expenses),
			DocumentRef:         box.DocumentRef,
			AlreadyConsolidated: true,
		}, nil

	case cashbox.StateOpen:
		// Freeze point: once this write lands, expense registration
		// fails with ErrBoxFrozen.
		box, err = s.repo.UpdateBoxIfVersion(ctx, box.ID, box.Version, cashbox.BoxUpdate{
			State: cashbox.StateConsolidating,
		})
		if err != nil {
			if errors.Is(err, cashbox.ErrConcurrentModification) {
				metrics.Consolidations.WithLabelValues(metrics.OutcomeConflict).Inc()
			}

			return nil, err
		}

	case cashbox.StateConsolidating:
		// Resuming a previous attempt that failed after the freeze.
	}

	expenses, err := s.repo.ListExpenses(ctx, box.ID)
	if err != nil {
		return nil, fmt.Errorf("loading expense snapshot: %w", err)
	}

	totals := computeTotals(box, expenses)

	data, err := s.renderer.Render(ctx, box, expenses, totals)
	if err != nil {
		metrics.Consolidations.WithLabelValues(metrics.OutcomeRenderFailed).Inc()
		return nil, fmt.Errorf("%w: %v", ErrDocumentGeneration, err)
	}

	ref, err := s.archive.Put(ctx, data, SettlementPath(box))
	if err != nil {
		metrics.Consolidations.WithLabelValues(metrics.OutcomeArchiveFailed).Inc()
		return nil, fmt.Errorf("%w: %v", ErrArchivePersist, err)
	}

	now := time.Now()

	box, err = s.repo.UpdateBoxIfVersion(ctx, box.ID, box.Version, cashbox.BoxUpdate{
		State:          cashbox.StateConsolidated,
		ConsolidatedAt: &now,
		DocumentRef:    &ref,
	})
	if err != nil {
		return nil, fmt.Errorf("committing consolidation: %w", err)
	}

	metrics.Consolidations.WithLabelValues(metrics.OutcomeConsolidated).Inc()

	s.notify(ctx, box, totals, ref)

	return &Result{Box: box, Totals: totals, DocumentRef: ref}, nil
}

// Status reports whether the active box is stuck mid-consolidation.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	box, err := s.repo.FindActiveBox(ctx)
	if err != nil {
		if errors.Is(err, cashbox.ErrNoActiveBox) {
			return &Status{}, nil
		}

		return nil, err
	}

	return &Status{
		ActiveBox:  box,
		Incomplete: box.State == cashbox.StateConsolidating && box.DocumentRef == "",
	}, nil
}

// notify sends the settlement summary on a best-effort basis. The outcome of
// the consolidation is already decided when this runs.
func (s *Service) notify(ctx context.Context, box *cashbox.Box, totals Totals, ref string) {
	if s.notifier == nil || len(s.recipients) == 0 {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	subject := fmt.Sprintf("Petty cash consolidated: %s", SettlementPeriod(box))
	body := fmt.Sprintf(
		"Custodian: %s\nInitial amount: %.2f\nTotal legalized: %.2f\nBalance to return: %.2f\nCustodian owes: %.2f\nDocument: %s\n",
		box.Custodian,
		float64(box.InitialAmount)/100.0,
		float64(totals.TotalLegalized)/100.0,
		float64(totals.BalanceToReturn)/100.0,
		float64(totals.CustodianOwes)/100.0,
		ref,
	)

	if err := s.notifier.Send(nctx, s.recipients, subject, body, ref); err != nil {
		slog.Error("settlement notification failed", "box_id", box.ID, "error", err)
	}
}

// SettlementPeriod names the fund period after the month the box was opened.
func SettlementPeriod(box *cashbox.Box) string {
	return fmt.Sprintf("%s %d", box.OpenedAt.Month(), box.OpenedAt.Year())
}

// SettlementPath is the deterministic archive path for a box's settlement
// document, derived from its period so retries land on the same object.
func SettlementPath(box *cashbox.Box) string {
	month := strings.ToLower(box.OpenedAt.Month().String())
	return fmt.Sprintf("%s_%d_pettycash.pdf", month, box.OpenedAt.Year())
}
