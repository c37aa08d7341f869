package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

type consultationRepository interface {
	Insert(ctx context.Context, record *models.ConsultationRecord) error
	ListByStudentAndPrefect(ctx context.Context, boleta, prefectID string, limit int) ([]models.ConsultationRecord, error)
}

type accessRepository interface {
	Insert(ctx context.Context, record *models.AccessRecord) error
}

// ConsultationConfig tunes consultation logging.
type ConsultationConfig struct {
	// HistoryLimit caps history queries.
	HistoryLimit int
	// StrictAuth rejects unauthenticated writes instead of skipping them.
	StrictAuth bool
}

// ConsultationService appends lookup audit records and reads them back.
// Every recorded lookup produces two independent writes: the consultation
// entry and the door-audit access entry.
type ConsultationService struct {
	consultations consultationRepository
	access        accessRepository
	config        ConsultationConfig
	logger        *zap.Logger
}

// NewConsultationService constructs a ConsultationService.
func NewConsultationService(consultations consultationRepository, access accessRepository, config ConsultationConfig, logger *zap.Logger) *ConsultationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 20
	}
	return &ConsultationService{consultations: consultations, access: access, config: config, logger: logger}
}

// Record appends a consultation entry and the matching access entry for a
// completed lookup. A nil session skips the write unless strict auth is on.
// No deduplication: scanning the same student twice records twice.
func (s *ConsultationService) Record(ctx context.Context, session *models.JWTClaims, student *models.Student, kind models.ConsultationType) error {
	if session == nil {
		if s.config.StrictAuth {
			return appErrors.Clone(appErrors.ErrUnauthorized, "consultation requires an authenticated prefect")
		}
		s.logger.Warn("skipping consultation record without prefect session",
			zap.String("boleta", student.Boleta))
		return nil
	}

	consultation := &models.ConsultationRecord{
		StudentID:    student.Boleta,
		StudentName:  student.Name,
		PrefectID:    session.PrefectID,
		PrefectEmail: session.Email,
		Type:         kind,
		Details:      kind.Detail(),
	}
	if err := s.consultations.Insert(ctx, consultation); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record consultation")
	}

	access := &models.AccessRecord{
		StudentID:   student.Boleta,
		StudentName: student.Name,
		Door:        models.AccessDoorMobileApp,
		RecordType:  models.AccessRecordTypeConsulta,
		TypeCode:    models.AccessRecordTypeCode,
		Justified:   false,
	}
	if err := s.access.Insert(ctx, access); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record access entry")
	}

	return nil
}

// History returns the session prefect's most recent consultations of one
// student, newest first.
func (s *ConsultationService) History(ctx context.Context, session *models.JWTClaims, boleta string) ([]models.ConsultationRecord, error) {
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "history requires an authenticated prefect")
	}

	records, err := s.consultations.ListByStudentAndPrefect(ctx, boleta, session.PrefectID, s.config.HistoryLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch consultation history")
	}
	if records == nil {
		records = []models.ConsultationRecord{}
	}
	return records, nil
}
