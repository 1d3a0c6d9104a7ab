package models

import "time"

// Reservation is an active or historical loan of a holding to a member.
type Reservation struct {
	ID         int64      `db:"id" json:"id"`
	MemberID   int64      `db:"member_id" json:"member_id"`
	HoldingID  int64      `db:"holding_id" json:"holding_id"`
	ReservedAt time.Time  `db:"reserved_at" json:"reserved_at"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	IsReceived bool       `db:"is_received" json:"is_received"`
	ReceivedAt *time.Time `db:"received_at" json:"received_at,omitempty"`
}

// Active reports whether the holding is still out with the member.
func (r *Reservation) Active() bool {
	return !r.IsReceived
}

// OverdueAt is the single definition of the overdue predicate: the loan is
// unreturned and its due date has passed. Overdue is derived at read time,
// never stored.
func (r *Reservation) OverdueAt(now time.Time) bool {
	return !r.IsReceived && !r.DueDate.After(now)
}

// ReservationDetail is a reservation enriched with display data from the
// members index and the catalog, used by listing endpoints.
type ReservationDetail struct {
	Reservation

	MemberName      string    `db:"member_name" json:"member_name"`
	MemberUniqueID  string    `db:"member_unique_id" json:"member_unique_id"`
	MemberRoleClass RoleClass `db:"member_role_class" json:"member_role_class"`
	HoldingSerialNo string    `db:"holding_serial_no" json:"holding_serial_no"`
	IssueTitle      string    `db:"issue_title" json:"issue_title"`
	AuthorName      string    `db:"author_name" json:"author_name"`
}
