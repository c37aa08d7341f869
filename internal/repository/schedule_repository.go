package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

// ScheduleRepository reads group class sessions.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByGroup returns every class session for a group.
func (r *ScheduleRepository) ListByGroup(ctx context.Context, groupID string) ([]models.ClassSession, error) {
	const query = `SELECT id, group_id, day, start_time, end_time, subject
        FROM group_schedules WHERE group_id = $1`
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, groupID); err != nil {
		return nil, fmt.Errorf("list group sessions: %w", err)
	}
	return sessions, nil
}
