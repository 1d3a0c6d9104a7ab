package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// RemovalRepository reads the append-only removal audit trail. Writes go
// through insertRemovalTx so they always share a transaction with the
// state flip that caused them.
type RemovalRepository interface {
	Insert(record *models.RemovalRecord) error
	List(subjectType models.RemovalSubject) ([]models.RemovalRecord, error)
	GetBySubject(subjectType models.RemovalSubject, subjectID int64) (*models.RemovalRecord, error)
}

type removalRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewRemovalRepository(db *sqlx.DB, log *logrus.Logger) RemovalRepository {
	return &removalRepository{db: db, log: log}
}

// insertRemovalTx appends one removal record inside the caller's
// transaction. Both Ban and Remove route through here.
func insertRemovalTx(tx *sqlx.Tx, subjectType models.RemovalSubject, subjectID int64, reason string, actorID int64) (*models.RemovalRecord, error) {
	record := models.RemovalRecord{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Reason:      reason,
		RemovedBy:   actorID,
	}
	err := tx.QueryRowx(
		`INSERT INTO removal_records (subject_type, subject_id, reason, removed_by, removed_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, removed_at`,
		subjectType, subjectID, reason, actorID,
	).Scan(&record.ID, &record.RemovedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append removal record: %w", err)
	}
	return &record, nil
}

// Insert appends a record outside of any larger transaction.
func (r *removalRepository) Insert(record *models.RemovalRecord) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := insertRemovalTx(tx, record.SubjectType, record.SubjectID, record.Reason, record.RemovedBy)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal record: %w", err)
	}
	*record = *inserted
	return nil
}

func (r *removalRepository) List(subjectType models.RemovalSubject) ([]models.RemovalRecord, error) {
	var records []models.RemovalRecord
	query := `SELECT id, subject_type, subject_id, reason, removed_by, removed_at
	          FROM removal_records WHERE subject_type = $1 ORDER BY removed_at DESC`
	if err := r.db.Select(&records, query, subjectType); err != nil {
		return nil, fmt.Errorf("failed to list removal records: %w", err)
	}
	return records, nil
}

func (r *removalRepository) GetBySubject(subjectType models.RemovalSubject, subjectID int64) (*models.RemovalRecord, error) {
	var record models.RemovalRecord
	query := `SELECT id, subject_type, subject_id, reason, removed_by, removed_at
	          FROM removal_records WHERE subject_type = $1 AND subject_id = $2`
	err := r.db.Get(&record, query, subjectType, subjectID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query removal record: %w", err)
	}
	return &record, nil
}
