package service

import (
	"errors"
	"fmt"
	"strings"

	"library-backend/internal/models"
	"library-backend/internal/repository"

	"go.uber.org/zap"
)

// RemovalAudit owns the append-only soft-removal trail. The transactional
// removal flows (Ban, RemoveHolding) write their records inside the same
// transaction as the state flip and share this service's validation;
// Record is the standalone append used when the state flip has already
// happened out of band.
type RemovalAudit interface {
	Record(subjectType models.RemovalSubject, subjectID int64, reason string, actorID int64) (*models.RemovalRecord, error)
	List(subjectType models.RemovalSubject) ([]models.RemovalRecord, error)
}

type removalAudit struct {
	removals repository.RemovalRepository
	members  repository.MemberRepository
	holdings repository.HoldingRepository
	logger   *zap.Logger
}

func NewRemovalAudit(
	removals repository.RemovalRepository,
	members repository.MemberRepository,
	holdings repository.HoldingRepository,
	logger *zap.Logger,
) RemovalAudit {
	return &removalAudit{removals: removals, members: members, holdings: holdings, logger: logger}
}

// ValidateRemoval is the shared precondition for every removal: a known
// subject type and a non-empty reason.
func ValidateRemoval(subjectType models.RemovalSubject, reason string) error {
	if !subjectType.Valid() {
		return fmt.Errorf("%w: unknown removal subject", ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrValidation)
	}
	return nil
}

// Record appends one removal record. It fails only on an empty reason or
// an absent subject.
func (a *removalAudit) Record(subjectType models.RemovalSubject, subjectID int64, reason string, actorID int64) (*models.RemovalRecord, error) {
	if err := ValidateRemoval(subjectType, reason); err != nil {
		return nil, err
	}
	if err := a.subjectExists(subjectType, subjectID); err != nil {
		return nil, err
	}

	record := &models.RemovalRecord{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Reason:      reason,
		RemovedBy:   actorID,
	}
	if err := a.removals.Insert(record); err != nil {
		a.logger.Error("Failed to append removal record", zap.Error(err))
		return nil, fmt.Errorf("failed to append removal record: %w", err)
	}
	return record, nil
}

func (a *removalAudit) subjectExists(subjectType models.RemovalSubject, subjectID int64) error {
	var err error
	switch subjectType {
	case models.RemovalSubjectMember:
		_, err = a.members.GetRefByID(subjectID)
	case models.RemovalSubjectHolding:
		_, err = a.holdings.GetByID(subjectID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: removal subject does not exist", ErrNotFound)
		}
		return fmt.Errorf("failed to check removal subject: %w", err)
	}
	return nil
}

func (a *removalAudit) List(subjectType models.RemovalSubject) ([]models.RemovalRecord, error) {
	if !subjectType.Valid() {
		return nil, fmt.Errorf("%w: unknown removal subject", ErrValidation)
	}
	records, err := a.removals.List(subjectType)
	if err != nil {
		a.logger.Error("Failed to list removal records", zap.Error(err))
		return nil, fmt.Errorf("failed to list removal records: %w", err)
	}
	return records, nil
}
