package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

// AccessRepository appends door-audit records for the downstream access
// system. Read paths live in that system, not here.
type AccessRepository struct {
	db *sqlx.DB
}

// NewAccessRepository constructs an AccessRepository.
func NewAccessRepository(db *sqlx.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// Insert appends one access record.
func (r *AccessRepository) Insert(ctx context.Context, record *models.AccessRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO records (id, student_id, student_name, door, timestamp, record_type, type_code, justified)
        VALUES (:id, :student_id, :student_name, :door, :timestamp, :record_type, :type_code, :justified)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert access record: %w", err)
	}
	return nil
}
