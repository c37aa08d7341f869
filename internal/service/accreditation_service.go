package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

type accreditationRepository interface {
	ListByStudent(ctx context.Context, boleta string) ([]models.AccreditedSubject, error)
}

// AccreditationService reads a student's accredited subjects. Accreditation
// data is advisory; fetch failures degrade to an empty list so a lookup
// never fails on it.
type AccreditationService struct {
	repo   accreditationRepository
	logger *zap.Logger
}

// NewAccreditationService constructs an AccreditationService.
func NewAccreditationService(repo accreditationRepository, logger *zap.Logger) *AccreditationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccreditationService{repo: repo, logger: logger}
}

// ListByStudent returns the student's accredited subjects, or an empty
// slice when the fetch fails.
func (s *AccreditationService) ListByStudent(ctx context.Context, boleta string) []models.AccreditedSubject {
	subjects, err := s.repo.ListByStudent(ctx, boleta)
	if err != nil {
		s.logger.Warn("failed to fetch accredited subjects",
			zap.String("boleta", boleta), zap.Error(err))
		return []models.AccreditedSubject{}
	}
	if subjects == nil {
		return []models.AccreditedSubject{}
	}
	return subjects
}
