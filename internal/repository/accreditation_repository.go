package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

// AccreditationRepository reads accredited-subject records.
type AccreditationRepository struct {
	db *sqlx.DB
}

// NewAccreditationRepository constructs an AccreditationRepository.
func NewAccreditationRepository(db *sqlx.DB) *AccreditationRepository {
	return &AccreditationRepository{db: db}
}

// ListByStudent returns the subjects a student has accredited.
func (r *AccreditationRepository) ListByStudent(ctx context.Context, boleta string) ([]models.AccreditedSubject, error) {
	const query = `SELECT student_id, subject, accredited_at
        FROM accredited_subjects WHERE student_id = $1`
	var subjects []models.AccreditedSubject
	if err := r.db.SelectContext(ctx, &subjects, query, boleta); err != nil {
		return nil, fmt.Errorf("list accredited subjects: %w", err)
	}
	return subjects, nil
}
