package models

import (
	"fmt"
	"time"
)

// RoleClass selects which of the three profile tables backs a member.
type RoleClass int

const (
	RoleStudent RoleClass = 1
	RoleTeacher RoleClass = 2
	RoleStaff   RoleClass = 3
)

// Valid reports whether the role class maps to a profile table.
func (rc RoleClass) Valid() bool {
	return rc >= RoleStudent && rc <= RoleStaff
}

func (rc RoleClass) String() string {
	switch rc {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	case RoleStaff:
		return "staff"
	default:
		return fmt.Sprintf("role(%d)", int(rc))
	}
}

// MemberRef is the canonical cross-reference row in the members index.
// unique_id is unique within a role class; exactly one profile row exists
// in the table selected by RoleClass.
type MemberRef struct {
	ID        int64     `db:"id" json:"id"`
	UniqueID  string    `db:"unique_id" json:"unique_id"`
	RoleClass RoleClass `db:"role_class" json:"role_class"`
	IsRemoved bool      `db:"is_removed" json:"is_removed"`
}

// MemberProfile is the resolved view of a member: the common identity
// projection plus the role-specific payload, flattened with nullable
// fields for the parts only some role classes carry.
type MemberProfile struct {
	Ref MemberRef `json:"ref"`

	Name     string    `db:"name" json:"name"`
	Mobile   string    `db:"mobile" json:"mobile"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`

	// Grade and Class are mandatory for students, optional for teachers.
	Grade *string `db:"grade" json:"grade,omitempty"`
	Class *string `db:"class" json:"class,omitempty"`

	// StaffRoleID is set for staff members only.
	StaffRoleID *int64 `db:"staff_role_id" json:"staff_role_id,omitempty"`
}

// RegisterMemberInput carries the fields needed to create a member profile.
type RegisterMemberInput struct {
	RoleClass   RoleClass
	UniqueID    string
	Name        string
	Mobile      string
	Grade       *string
	Class       *string
	StaffRoleID *int64
}
