package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// MemberRepository owns the members index and the three profile tables
// behind it. Registration and banning are transactional: an index row must
// never exist without its profile row, and a ban must never happen without
// its removal record.
type MemberRepository interface {
	GetRef(roleClass models.RoleClass, uniqueID string) (*models.MemberRef, error)
	GetRefByID(id int64) (*models.MemberRef, error)
	GetProfile(ref *models.MemberRef) (*models.MemberProfile, error)
	Register(input models.RegisterMemberInput) (*models.MemberProfile, error)
	Ban(memberID int64, reason string, actorID int64) (*models.RemovalRecord, error)
	List() ([]models.MemberProfile, error)
}

type memberRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewMemberRepository(db *sqlx.DB, log *logrus.Logger) MemberRepository {
	return &memberRepository{db: db, log: log}
}

func (r *memberRepository) GetRef(roleClass models.RoleClass, uniqueID string) (*models.MemberRef, error) {
	var ref models.MemberRef
	query := `SELECT id, unique_id, role_class, is_removed FROM members
	          WHERE role_class = $1 AND unique_id = $2`
	err := r.db.Get(&ref, query, roleClass, uniqueID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query members index: %w", err)
	}
	return &ref, nil
}

func (r *memberRepository) GetRefByID(id int64) (*models.MemberRef, error) {
	var ref models.MemberRef
	query := `SELECT id, unique_id, role_class, is_removed FROM members WHERE id = $1`
	err := r.db.Get(&ref, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query members index: %w", err)
	}
	return &ref, nil
}

// profileQuery selects the flattened profile columns from the table the
// role class points at, keyed by the member's unique id.
func profileQuery(roleClass models.RoleClass) (string, error) {
	switch roleClass {
	case models.RoleStudent:
		return `SELECT name, mobile, joined_at, grade, class, NULL::bigint AS staff_role_id
		        FROM students WHERE registration_no = $1`, nil
	case models.RoleTeacher:
		return `SELECT name, mobile, joined_at, grade, class, NULL::bigint AS staff_role_id
		        FROM teachers WHERE nic = $1`, nil
	case models.RoleStaff:
		return `SELECT name, mobile, joined_at, NULL::text AS grade, NULL::text AS class, staff_role_id
		        FROM staff WHERE nic = $1`, nil
	default:
		return "", fmt.Errorf("unknown role class %d", roleClass)
	}
}

func (r *memberRepository) GetProfile(ref *models.MemberRef) (*models.MemberProfile, error) {
	query, err := profileQuery(ref.RoleClass)
	if err != nil {
		return nil, err
	}

	profile := models.MemberProfile{Ref: *ref}
	err = r.db.Get(&profile, query, ref.UniqueID)
	if err != nil {
		if isNoRows(err) {
			// Index row without a profile row violates the schema contract.
			r.log.Errorf("members index %d has no %s profile", ref.ID, ref.RoleClass)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s profile: %w", ref.RoleClass, err)
	}
	return &profile, nil
}

func (r *memberRepository) Register(input models.RegisterMemberInput) (*models.MemberProfile, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	profile := models.MemberProfile{
		Name:        input.Name,
		Mobile:      input.Mobile,
		Grade:       input.Grade,
		Class:       input.Class,
		StaffRoleID: input.StaffRoleID,
	}

	switch input.RoleClass {
	case models.RoleStudent:
		err = tx.QueryRowx(
			`INSERT INTO students (registration_no, name, grade, class, mobile, joined_at)
			 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING joined_at`,
			input.UniqueID, input.Name, input.Grade, input.Class, input.Mobile,
		).Scan(&profile.JoinedAt)
	case models.RoleTeacher:
		err = tx.QueryRowx(
			`INSERT INTO teachers (nic, name, grade, class, mobile, joined_at)
			 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING joined_at`,
			input.UniqueID, input.Name, input.Grade, input.Class, input.Mobile,
		).Scan(&profile.JoinedAt)
	case models.RoleStaff:
		err = tx.QueryRowx(
			`INSERT INTO staff (nic, name, mobile, joined_at, staff_role_id)
			 VALUES ($1, $2, $3, NOW(), $4) RETURNING joined_at`,
			input.UniqueID, input.Name, input.Mobile, input.StaffRoleID,
		).Scan(&profile.JoinedAt)
	default:
		return nil, fmt.Errorf("unknown role class %d", input.RoleClass)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create %s profile: %w", input.RoleClass, err)
	}

	ref := models.MemberRef{UniqueID: input.UniqueID, RoleClass: input.RoleClass}
	err = tx.QueryRowx(
		`INSERT INTO members (unique_id, role_class) VALUES ($1, $2) RETURNING id`,
		input.UniqueID, input.RoleClass,
	).Scan(&ref.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create members index row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit member registration: %w", err)
	}

	profile.Ref = ref
	return &profile, nil
}

// Ban flips is_removed and appends the removal record in one transaction.
// Returns ErrNotFound if the member is absent and ErrDuplicate if it was
// already removed.
func (r *memberRepository) Ban(memberID int64, reason string, actorID int64) (*models.RemovalRecord, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ref models.MemberRef
	err = tx.Get(&ref,
		`SELECT id, unique_id, role_class, is_removed FROM members WHERE id = $1 FOR UPDATE`,
		memberID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock members index row: %w", err)
	}
	if ref.IsRemoved {
		return nil, ErrDuplicate
	}

	if _, err := tx.Exec(`UPDATE members SET is_removed = TRUE WHERE id = $1`, memberID); err != nil {
		return nil, fmt.Errorf("failed to mark member removed: %w", err)
	}

	record, err := insertRemovalTx(tx, models.RemovalSubjectMember, memberID, reason, actorID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit member ban: %w", err)
	}
	return record, nil
}

func (r *memberRepository) List() ([]models.MemberProfile, error) {
	query := `
	SELECT m.id, m.unique_id, m.role_class, m.is_removed,
	       p.name, p.mobile, p.joined_at, p.grade, p.class, p.staff_role_id
	FROM members m
	JOIN LATERAL (
		SELECT s.name, s.mobile, s.joined_at, s.grade, s.class, NULL::bigint AS staff_role_id
		FROM students s WHERE m.role_class = 1 AND s.registration_no = m.unique_id
		UNION ALL
		SELECT t.name, t.mobile, t.joined_at, t.grade, t.class, NULL::bigint
		FROM teachers t WHERE m.role_class = 2 AND t.nic = m.unique_id
		UNION ALL
		SELECT st.name, st.mobile, st.joined_at, NULL::text, NULL::text, st.staff_role_id
		FROM staff st WHERE m.role_class = 3 AND st.nic = m.unique_id
	) p ON TRUE
	ORDER BY m.id`

	rows, err := r.db.Queryx(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.MemberProfile
	for rows.Next() {
		var p models.MemberProfile
		err := rows.Scan(
			&p.Ref.ID, &p.Ref.UniqueID, &p.Ref.RoleClass, &p.Ref.IsRemoved,
			&p.Name, &p.Mobile, &p.JoinedAt, &p.Grade, &p.Class, &p.StaffRoleID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, p)
	}
	return members, rows.Err()
}
