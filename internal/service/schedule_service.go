package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

type scheduleRepository interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.ClassSession, error)
}

// ScheduleService turns flat class sessions into the weekly grid the app
// renders.
type ScheduleService struct {
	repo        scheduleRepository
	strictSlots bool
	logger      *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, strictSlots bool, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, strictSlots: strictSlots, logger: logger}
}

// Weekly fetches a group's sessions and organizes them into grid rows.
func (s *ScheduleService) Weekly(ctx context.Context, groupID string) ([]models.ScheduleRow, error) {
	sessions, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch group schedule")
	}
	if s.strictSlots {
		return OrganizeStrict(sessions)
	}
	return Organize(sessions), nil
}

// Organize groups sessions by time range into rows with one slot per
// business day. Sessions sharing a (day, range) slot overwrite each other,
// last write wins.
func Organize(sessions []models.ClassSession) []models.ScheduleRow {
	rows := map[string]*models.ScheduleRow{}
	keys := make([]string, 0, len(sessions))

	for _, session := range sessions {
		slot := slotFor(session.Day)
		if slot == nil {
			continue
		}
		key := session.StartTime + "-" + session.EndTime
		row, ok := rows[key]
		if !ok {
			row = &models.ScheduleRow{
				Time: key,
				Lun:  models.EmptySlot,
				Mar:  models.EmptySlot,
				Mie:  models.EmptySlot,
				Jue:  models.EmptySlot,
				Vie:  models.EmptySlot,
			}
			rows[key] = row
			keys = append(keys, key)
		}
		*slot(row) = session.Subject
	}

	sort.Strings(keys)

	out := make([]models.ScheduleRow, 0, len(keys))
	for _, key := range keys {
		out = append(out, *rows[key])
	}
	return out
}

// OrganizeStrict behaves like Organize but rejects two sessions landing on
// the same (day, time range) slot.
func OrganizeStrict(sessions []models.ClassSession) ([]models.ScheduleRow, error) {
	seen := map[string]string{}
	for _, session := range sessions {
		if slotFor(session.Day) == nil {
			continue
		}
		key := session.Day + "|" + session.StartTime + "-" + session.EndTime
		if prev, ok := seen[key]; ok && prev != session.Subject {
			err := fmt.Errorf("conflicting sessions %q and %q on %s %s-%s",
				prev, session.Subject, session.Day, session.StartTime, session.EndTime)
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "schedule slot conflict")
		}
		seen[key] = session.Subject
	}
	return Organize(sessions), nil
}

// slotFor maps a source day name to the matching grid column, or nil for
// days outside the Monday-to-Friday grid.
func slotFor(day string) func(*models.ScheduleRow) *string {
	switch day {
	case "lunes":
		return func(r *models.ScheduleRow) *string { return &r.Lun }
	case "martes":
		return func(r *models.ScheduleRow) *string { return &r.Mar }
	case "miércoles":
		return func(r *models.ScheduleRow) *string { return &r.Mie }
	case "jueves":
		return func(r *models.ScheduleRow) *string { return &r.Jue }
	case "viernes":
		return func(r *models.ScheduleRow) *string { return &r.Vie }
	default:
		return nil
	}
}
