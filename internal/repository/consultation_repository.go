package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

// ConsultationRepository appends and reads consultation history.
type ConsultationRepository struct {
	db *sqlx.DB
}

// NewConsultationRepository constructs a ConsultationRepository.
func NewConsultationRepository(db *sqlx.DB) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

// Insert appends one consultation record.
func (r *ConsultationRepository) Insert(ctx context.Context, record *models.ConsultationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO consultation_history (id, student_id, student_name, prefect_id, prefect_email, consultation_type, timestamp, details)
        VALUES (:id, :student_id, :student_name, :prefect_id, :prefect_email, :consultation_type, :timestamp, :details)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

// ListByStudentAndPrefect returns a prefect's own consultations of one
// student, newest first, capped at limit.
func (r *ConsultationRepository) ListByStudentAndPrefect(ctx context.Context, boleta, prefectID string, limit int) ([]models.ConsultationRecord, error) {
	const query = `SELECT id, student_id, student_name, prefect_id, prefect_email, consultation_type, timestamp, details
        FROM consultation_history
        WHERE student_id = $1 AND prefect_id = $2
        ORDER BY timestamp DESC LIMIT $3`
	var records []models.ConsultationRecord
	if err := r.db.SelectContext(ctx, &records, query, boleta, prefectID, limit); err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	return records, nil
}
