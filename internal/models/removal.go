package models

import "time"

// RemovalSubject partitions the removal-records table by what was removed.
type RemovalSubject string

const (
	RemovalSubjectHolding RemovalSubject = "holding"
	RemovalSubjectMember  RemovalSubject = "member"
)

// Valid reports whether the subject type is one of the known partitions.
func (s RemovalSubject) Valid() bool {
	return s == RemovalSubjectHolding || s == RemovalSubjectMember
}

// RemovalRecord is one append-only entry in the soft-removal audit trail.
// Exactly one record exists per removed subject.
type RemovalRecord struct {
	ID          int64          `db:"id" json:"id"`
	SubjectType RemovalSubject `db:"subject_type" json:"subject_type"`
	SubjectID   int64          `db:"subject_id" json:"subject_id"`
	Reason      string         `db:"reason" json:"reason"`
	RemovedBy   int64          `db:"removed_by" json:"removed_by"`
	RemovedAt   time.Time      `db:"removed_at" json:"removed_at"`
}
