package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type HoldingRepository interface {
	Create(holding *models.Holding) error
	GetByID(id int64) (*models.Holding, error)
	GetBySerial(serial string) (*models.Holding, error)
	ListByIssue(issueID int64) ([]models.Holding, error)
	Remove(serial string, reason string, actorID int64) (*models.RemovalRecord, error)
}

type holdingRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewHoldingRepository(db *sqlx.DB, log *logrus.Logger) HoldingRepository {
	return &holdingRepository{db: db, log: log}
}

// Create inserts a new holding. The partial unique index on serial_no
// (live holdings only) is what actually enforces serial uniqueness; a
// removed holding's serial may be reused.
func (r *holdingRepository) Create(holding *models.Holding) error {
	query := `INSERT INTO holdings (serial_no, issue_id, reserved_at)
	          VALUES ($1, $2, NOW()) RETURNING id, reserved_at`
	err := r.db.QueryRowx(query, holding.SerialNo, holding.IssueID).
		Scan(&holding.ID, &holding.ReservedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

func (r *holdingRepository) GetByID(id int64) (*models.Holding, error) {
	var holding models.Holding
	query := `SELECT id, serial_no, issue_id, is_removed, reserved_at
	          FROM holdings WHERE id = $1`
	err := r.db.Get(&holding, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}
	return &holding, nil
}

func (r *holdingRepository) GetBySerial(serial string) (*models.Holding, error) {
	var holding models.Holding
	query := `SELECT id, serial_no, issue_id, is_removed, reserved_at
	          FROM holdings WHERE serial_no = $1 AND NOT is_removed`
	err := r.db.Get(&holding, query, serial)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}
	return &holding, nil
}

func (r *holdingRepository) ListByIssue(issueID int64) ([]models.Holding, error) {
	var holdings []models.Holding
	query := `SELECT id, serial_no, issue_id, is_removed, reserved_at
	          FROM holdings WHERE issue_id = $1 ORDER BY id`
	if err := r.db.Select(&holdings, query, issueID); err != nil {
		return nil, fmt.Errorf("failed to list holdings for issue: %w", err)
	}
	return holdings, nil
}

// Remove flips is_removed and appends the removal record in one
// transaction. ErrNotFound if no holding carries the serial, ErrDuplicate
// if it was already removed.
func (r *holdingRepository) Remove(serial string, reason string, actorID int64) (*models.RemovalRecord, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var holding models.Holding
	err = tx.Get(&holding,
		`SELECT id, serial_no, issue_id, is_removed, reserved_at
		 FROM holdings WHERE serial_no = $1
		 ORDER BY is_removed ASC LIMIT 1
		 FOR UPDATE`,
		serial)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock holding: %w", err)
	}
	if holding.IsRemoved {
		return nil, ErrDuplicate
	}

	if _, err := tx.Exec(`UPDATE holdings SET is_removed = TRUE WHERE id = $1`, holding.ID); err != nil {
		return nil, fmt.Errorf("failed to mark holding removed: %w", err)
	}

	record, err := insertRemovalTx(tx, models.RemovalSubjectHolding, holding.ID, reason, actorID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit holding removal: %w", err)
	}
	return record, nil
}
