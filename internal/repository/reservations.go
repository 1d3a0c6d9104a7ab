package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ReservationRepository interface {
	Create(reservation *models.Reservation) error
	GetByID(id int64) (*models.Reservation, error)
	GetActiveByMember(memberID int64) (*models.Reservation, error)
	GetActiveByHolding(holdingID int64) (*models.Reservation, error)
	Receive(id int64) (*models.Reservation, error)
	List() ([]models.ReservationDetail, error)
	ListOverdue() ([]models.ReservationDetail, error)
}

type reservationRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewReservationRepository(db *sqlx.DB, log *logrus.Logger) ReservationRepository {
	return &reservationRepository{db: db, log: log}
}

// Create inserts a new reservation. The partial unique indexes on
// (member_id) and (holding_id) where NOT is_received are the real
// guard against double booking; concurrent inserts for the same member
// or holding make exactly one winner and the rest get ErrDuplicate.
func (r *reservationRepository) Create(reservation *models.Reservation) error {
	query := `INSERT INTO reservations (member_id, holding_id, reserved_at, due_date)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowx(query,
		reservation.MemberID, reservation.HoldingID,
		reservation.ReservedAt, reservation.DueDate,
	).Scan(&reservation.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *reservationRepository) GetByID(id int64) (*models.Reservation, error) {
	var res models.Reservation
	query := `SELECT id, member_id, holding_id, reserved_at, due_date, is_received, received_at
	          FROM reservations WHERE id = $1`
	err := r.db.Get(&res, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}
	return &res, nil
}

func (r *reservationRepository) GetActiveByMember(memberID int64) (*models.Reservation, error) {
	return r.getActive(`member_id`, memberID)
}

func (r *reservationRepository) GetActiveByHolding(holdingID int64) (*models.Reservation, error) {
	return r.getActive(`holding_id`, holdingID)
}

func (r *reservationRepository) getActive(column string, id int64) (*models.Reservation, error) {
	var res models.Reservation
	query := fmt.Sprintf(
		`SELECT id, member_id, holding_id, reserved_at, due_date, is_received, received_at
		 FROM reservations WHERE %s = $1 AND NOT is_received`, column)
	err := r.db.Get(&res, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query active reservation: %w", err)
	}
	return &res, nil
}

// Receive stamps received_at in a single conditional UPDATE, so a second
// receive of the same reservation cannot re-apply the write. The caller
// distinguishes "absent" from "already received" via GetByID.
func (r *reservationRepository) Receive(id int64) (*models.Reservation, error) {
	var res models.Reservation
	query := `UPDATE reservations SET is_received = TRUE, received_at = NOW()
	          WHERE id = $1 AND NOT is_received
	          RETURNING id, member_id, holding_id, reserved_at, due_date, is_received, received_at`
	err := r.db.Get(&res, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to receive reservation: %w", err)
	}
	return &res, nil
}

const reservationDetailQuery = `
SELECT r.id, r.member_id, r.holding_id, r.reserved_at, r.due_date, r.is_received, r.received_at,
       p.name AS member_name, m.unique_id AS member_unique_id, m.role_class AS member_role_class,
       h.serial_no AS holding_serial_no, i.title AS issue_title, a.name AS author_name
FROM reservations r
JOIN members m ON m.id = r.member_id
JOIN LATERAL (
	SELECT s.name FROM students s WHERE m.role_class = 1 AND s.registration_no = m.unique_id
	UNION ALL
	SELECT t.name FROM teachers t WHERE m.role_class = 2 AND t.nic = m.unique_id
	UNION ALL
	SELECT st.name FROM staff st WHERE m.role_class = 3 AND st.nic = m.unique_id
) p ON TRUE
JOIN holdings h ON h.id = r.holding_id
JOIN issues i ON i.id = h.issue_id
JOIN authors a ON a.id = i.author_id`

func (r *reservationRepository) List() ([]models.ReservationDetail, error) {
	var details []models.ReservationDetail
	query := reservationDetailQuery + ` ORDER BY r.reserved_at DESC`
	if err := r.db.Select(&details, query); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return details, nil
}

// ListOverdue recomputes the overdue set on every call; overdue is never
// stored, only derived from is_received and due_date.
func (r *reservationRepository) ListOverdue() ([]models.ReservationDetail, error) {
	var details []models.ReservationDetail
	query := reservationDetailQuery +
		` WHERE NOT r.is_received AND r.due_date <= NOW() ORDER BY r.due_date ASC`
	if err := r.db.Select(&details, query); err != nil {
		return nil, fmt.Errorf("failed to list overdue reservations: %w", err)
	}
	return details, nil
}
