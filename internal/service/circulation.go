package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"library-backend/internal/models"
	"library-backend/internal/repository"

	"go.uber.org/zap"
)

// Availability is the answer to "can this serial be reserved right now",
// with the issue title attached when it can.
type Availability struct {
	Available bool   `json:"status"`
	Title     string `json:"title,omitempty"`
}

// CirculationLedger owns holding and reservation state transitions. The
// uniqueness invariants (one live holding per serial, one active
// reservation per member and per holding) are enforced by partial unique
// indexes in storage; the pre-checks here exist to return precise errors,
// not to be the guard.
type CirculationLedger interface {
	CreateHolding(serial string, issueID int64) (*models.Holding, error)
	IsAvailable(serial string) (*Availability, error)
	HoldingsForIssue(issueID int64) ([]models.Holding, error)
	RemoveHolding(serial, reason string, actorID int64) (*models.RemovalRecord, error)

	CreateReservation(roleClass models.RoleClass, uniqueID, serial string, durationDays int) (*models.Reservation, error)
	Receive(reservationID int64) (*models.Reservation, error)
	ListReservations() ([]models.ReservationDetail, error)
	ListOverdue() ([]models.ReservationDetail, error)
}

type circulationLedger struct {
	holdings     repository.HoldingRepository
	reservations repository.ReservationRepository
	issues       repository.IssueRepository
	directory    MembershipDirectory
	logger       *zap.Logger
	now          func() time.Time
}

func NewCirculationLedger(
	holdings repository.HoldingRepository,
	reservations repository.ReservationRepository,
	issues repository.IssueRepository,
	directory MembershipDirectory,
	logger *zap.Logger,
) CirculationLedger {
	return &circulationLedger{
		holdings:     holdings,
		reservations: reservations,
		issues:       issues,
		directory:    directory,
		logger:       logger,
		now:          time.Now,
	}
}

func (l *circulationLedger) CreateHolding(serial string, issueID int64) (*models.Holding, error) {
	if strings.TrimSpace(serial) == "" {
		return nil, fmt.Errorf("%w: invalid serial no", ErrValidation)
	}

	if _, err := l.issues.GetByID(issueID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: issue does not exist", ErrValidation)
		}
		return nil, fmt.Errorf("failed to check issue: %w", err)
	}

	holding := &models.Holding{SerialNo: serial, IssueID: issueID}
	if err := l.holdings.Create(holding); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: serial no already exists", ErrConflict)
		}
		l.logger.Error("Failed to create holding", zap.Error(err))
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}
	return holding, nil
}

// IsAvailable is false when the holding is missing, removed, or out on an
// active reservation.
func (l *circulationLedger) IsAvailable(serial string) (*Availability, error) {
	holding, err := l.holdings.GetBySerial(serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Availability{Available: false}, nil
		}
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}

	if _, err := l.reservations.GetActiveByHolding(holding.ID); err == nil {
		return &Availability{Available: false}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to query active reservation: %w", err)
	}

	issue, err := l.issues.GetByID(holding.IssueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue: %w", err)
	}
	return &Availability{Available: true, Title: issue.Title}, nil
}

func (l *circulationLedger) HoldingsForIssue(issueID int64) ([]models.Holding, error) {
	holdings, err := l.holdings.ListByIssue(issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

func (l *circulationLedger) RemoveHolding(serial, reason string, actorID int64) (*models.RemovalRecord, error) {
	if err := ValidateRemoval(models.RemovalSubjectHolding, reason); err != nil {
		return nil, err
	}

	record, err := l.holdings.Remove(serial, reason, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: holding does not exist", ErrNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: holding already removed", ErrConflict)
		}
		l.logger.Error("Failed to remove holding", zap.Error(err))
		return nil, fmt.Errorf("failed to remove holding: %w", err)
	}

	l.logger.Info("Holding removed", zap.String("serial_no", serial), zap.Int64("actor_id", actorID))
	return record, nil
}

// CreateReservation runs the eligibility checks in order, each with its
// own failure, then inserts. The insert is the one path that takes a
// holding from available to unavailable; the partial unique indexes make
// sure two concurrent attempts cannot both get through.
func (l *circulationLedger) CreateReservation(roleClass models.RoleClass, uniqueID, serial string, durationDays int) (*models.Reservation, error) {
	if durationDays <= 0 {
		return nil, fmt.Errorf("%w: duration is required", ErrValidation)
	}

	member, err := l.directory.Resolve(roleClass, uniqueID)
	if err != nil {
		return nil, err
	}
	if member.Ref.IsRemoved {
		return nil, fmt.Errorf("%w: member has been suspended", ErrForbidden)
	}

	if _, err := l.reservations.GetActiveByMember(member.Ref.ID); err == nil {
		return nil, fmt.Errorf("%w: member already has a reservation", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check member reservations: %w", err)
	}

	holding, err := l.holdings.GetBySerial(serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: holding not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}

	now := l.now()
	reservation := &models.Reservation{
		MemberID:   member.Ref.ID,
		HoldingID:  holding.ID,
		ReservedAt: now,
		DueDate:    now.AddDate(0, 0, durationDays),
	}
	if err := l.reservations.Create(reservation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: holding or member already has an active reservation", ErrConflict)
		}
		l.logger.Error("Failed to create reservation", zap.Error(err))
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	l.logger.Info("Reservation created",
		zap.Int64("member_id", member.Ref.ID),
		zap.String("serial_no", serial),
		zap.Time("due_date", reservation.DueDate))
	return reservation, nil
}

// Receive marks a reservation returned. Receiving twice is a conflict,
// not a silent re-stamp of received_at.
func (l *circulationLedger) Receive(reservationID int64) (*models.Reservation, error) {
	reservation, err := l.reservations.Receive(reservationID)
	if err == nil {
		return reservation, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		l.logger.Error("Failed to receive reservation", zap.Error(err))
		return nil, fmt.Errorf("failed to receive reservation: %w", err)
	}

	// The conditional update matched nothing: absent or already received.
	if _, err := l.reservations.GetByID(reservationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: reservation not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}
	return nil, fmt.Errorf("%w: reservation already received", ErrConflict)
}

func (l *circulationLedger) ListReservations() ([]models.ReservationDetail, error) {
	details, err := l.reservations.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return details, nil
}

func (l *circulationLedger) ListOverdue() ([]models.ReservationDetail, error) {
	details, err := l.reservations.ListOverdue()
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue reservations: %w", err)
	}
	return details, nil
}
