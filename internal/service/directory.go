package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"library-backend/internal/models"
	"library-backend/internal/repository"

	"go.uber.org/zap"
)

var mobilePattern = regexp.MustCompile(`^(?:7|0|(?:\+94))[0-9]{9,10}$`)

// MembershipDirectory resolves member identity across the three disjoint
// identity classes and owns registration, suspension status, and banning.
type MembershipDirectory interface {
	Resolve(roleClass models.RoleClass, uniqueID string) (*models.MemberProfile, error)
	IsSuspended(memberID int64) (bool, error)
	Register(input models.RegisterMemberInput) (*models.MemberProfile, error)
	Ban(memberID int64, reason string, actorID int64) (*models.RemovalRecord, error)
	List() ([]models.MemberProfile, error)
}

type membershipDirectory struct {
	members repository.MemberRepository
	logger  *zap.Logger
}

func NewMembershipDirectory(members repository.MemberRepository, logger *zap.Logger) MembershipDirectory {
	return &membershipDirectory{members: members, logger: logger}
}

// Resolve looks up the members index row, then the profile table the role
// class selects. Either miss is a NotFound.
func (d *membershipDirectory) Resolve(roleClass models.RoleClass, uniqueID string) (*models.MemberProfile, error) {
	if !roleClass.Valid() {
		return nil, fmt.Errorf("%w: invalid role class", ErrValidation)
	}

	ref, err := d.members.GetRef(roleClass, uniqueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}

	profile, err := d.members.GetProfile(ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve member profile: %w", err)
	}
	return profile, nil
}

func (d *membershipDirectory) IsSuspended(memberID int64) (bool, error) {
	ref, err := d.members.GetRefByID(memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return false, fmt.Errorf("failed to query member: %w", err)
	}
	return ref.IsRemoved, nil
}

func (d *membershipDirectory) Register(input models.RegisterMemberInput) (*models.MemberProfile, error) {
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	if _, err := d.members.GetRef(input.RoleClass, input.UniqueID); err == nil {
		return nil, fmt.Errorf("%w: member already exists", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	profile, err := d.members.Register(input)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: member already exists", ErrConflict)
		}
		d.logger.Error("Failed to register member", zap.Error(err))
		return nil, fmt.Errorf("failed to register member: %w", err)
	}

	d.logger.Info("Member registered",
		zap.String("unique_id", profile.Ref.UniqueID),
		zap.String("role_class", profile.Ref.RoleClass.String()))
	return profile, nil
}

func validateRegistration(input models.RegisterMemberInput) error {
	if !input.RoleClass.Valid() {
		return fmt.Errorf("%w: invalid position", ErrValidation)
	}
	if strings.TrimSpace(input.UniqueID) == "" {
		return fmt.Errorf("%w: index is required", ErrValidation)
	}
	if len(strings.TrimSpace(input.Name)) < 3 {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !mobilePattern.MatchString(input.Mobile) {
		return fmt.Errorf("%w: invalid mobile number", ErrValidation)
	}

	switch input.RoleClass {
	case models.RoleStudent:
		// Grade and class are mandatory for students, optional for teachers.
		if input.Grade == nil || input.Class == nil {
			return fmt.Errorf("%w: grade and class are required for students", ErrValidation)
		}
	case models.RoleStaff:
		if input.StaffRoleID == nil {
			return fmt.Errorf("%w: staff role is required", ErrValidation)
		}
	}
	return nil
}

// Ban suspends a member. The index flip and the removal record are
// written as one transaction by the repository.
func (d *membershipDirectory) Ban(memberID int64, reason string, actorID int64) (*models.RemovalRecord, error) {
	if err := ValidateRemoval(models.RemovalSubjectMember, reason); err != nil {
		return nil, err
	}

	record, err := d.members.Ban(memberID, reason, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: member already removed", ErrConflict)
		}
		d.logger.Error("Failed to ban member", zap.Error(err))
		return nil, fmt.Errorf("failed to ban member: %w", err)
	}

	d.logger.Info("Member banned", zap.Int64("member_id", memberID), zap.Int64("actor_id", actorID))
	return record, nil
}

func (d *membershipDirectory) List() ([]models.MemberProfile, error) {
	members, err := d.members.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
