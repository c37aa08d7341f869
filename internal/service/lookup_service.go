package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	"github.com/cecyt9/prefect-gate-api/internal/qr"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

// CooldownStore tracks per-prefect scan throttling state.
type CooldownStore interface {
	Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Lookup trigger and outcome labels for metrics.
const (
	lookupTriggerScan   = "scan"
	lookupTriggerManual = "manual"

	lookupOutcomeOK             = "ok"
	lookupOutcomeNotFound       = "not_found"
	lookupOutcomeInvalidPayload = "invalid_payload"
	lookupOutcomeCooldown       = "cooldown"
	lookupOutcomeError          = "error"
)

// LookupConfig tunes the scan pipeline.
type LookupConfig struct {
	// ScanCooldown is the window after a completed scan during which
	// further scans from the same prefect are rejected.
	ScanCooldown time.Duration
	// NotFoundCooldown replaces ScanCooldown when the scan resolved to
	// no student, so the prefect can retry sooner.
	NotFoundCooldown time.Duration
}

// LookupService orchestrates a full gate lookup: identifier extraction,
// per-prefect scan throttling, the directory fetch, the schedule and
// accreditation fan-out, and the consultation audit write.
type LookupService struct {
	students       *StudentService
	schedules      *ScheduleService
	accreditations *AccreditationService
	consultations  *ConsultationService
	cooldowns      CooldownStore
	metrics        *MetricsService
	config         LookupConfig
	logger         *zap.Logger
}

// NewLookupService constructs a LookupService.
func NewLookupService(
	students *StudentService,
	schedules *ScheduleService,
	accreditations *AccreditationService,
	consultations *ConsultationService,
	cooldowns CooldownStore,
	metrics *MetricsService,
	config LookupConfig,
	logger *zap.Logger,
) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ScanCooldown <= 0 {
		config.ScanCooldown = 2 * time.Second
	}
	if config.NotFoundCooldown <= 0 {
		config.NotFoundCooldown = time.Second
	}
	return &LookupService{
		students:       students,
		schedules:      schedules,
		accreditations: accreditations,
		consultations:  consultations,
		cooldowns:      cooldowns,
		metrics:        metrics,
		config:         config,
		logger:         logger,
	}
}

// Scan resolves a scanned QR payload into a full lookup result. Scans
// repeating the previous payload or arriving inside the cooldown window are
// rejected without touching the directory.
func (s *LookupService) Scan(ctx context.Context, session *models.JWTClaims, payload string) (*models.LookupResult, error) {
	prefect := prefectKey(session)
	lastKey := "scan:last:" + prefect
	cooldownKey := "scan:cooldown:" + prefect

	// Without a session there is no identity to scope the cooldown to, and a
	// shared window would let independent devices throttle each other.
	throttle := s.cooldowns != nil && prefect != ""

	if throttle {
		last, err := s.cooldowns.GetString(ctx, lastKey)
		if err != nil {
			s.logger.Warn("failed to read last scan payload", zap.Error(err))
		} else if last != "" && last == payload {
			s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeCooldown)
			return nil, appErrors.Clone(appErrors.ErrScanCooldown, "payload already scanned")
		}

		claimed, err := s.cooldowns.Claim(ctx, cooldownKey, "1", s.config.ScanCooldown)
		if err != nil {
			s.logger.Warn("failed to claim scan cooldown", zap.Error(err))
		} else if !claimed {
			s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeCooldown)
			return nil, appErrors.Clone(appErrors.ErrScanCooldown, "")
		}

		if err := s.cooldowns.SetString(ctx, lastKey, payload, s.config.ScanCooldown); err != nil {
			s.logger.Warn("failed to store last scan payload", zap.Error(err))
		}
	}

	boleta, err := qr.ExtractBoleta(payload)
	if err != nil {
		if throttle {
			s.shortenCooldown(ctx, cooldownKey)
		}
		s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeInvalidPayload)
		return nil, err
	}

	result, err := s.lookup(ctx, boleta)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			if throttle {
				s.shortenCooldown(ctx, cooldownKey)
			}
			s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeNotFound)
		} else {
			s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeError)
		}
		return nil, err
	}

	if err := s.consultations.Record(ctx, session, result.Student, models.ConsultationQRScan); err != nil {
		s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeError)
		return nil, err
	}

	s.metrics.RecordLookup(lookupTriggerScan, lookupOutcomeOK)
	return result, nil
}

// Select resolves a boleta chosen from search results. Manual selections
// carry no cooldown.
func (s *LookupService) Select(ctx context.Context, session *models.JWTClaims, boleta string) (*models.LookupResult, error) {
	result, err := s.lookup(ctx, boleta)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			s.metrics.RecordLookup(lookupTriggerManual, lookupOutcomeNotFound)
		} else {
			s.metrics.RecordLookup(lookupTriggerManual, lookupOutcomeError)
		}
		return nil, err
	}

	if err := s.consultations.Record(ctx, session, result.Student, models.ConsultationManualSearch); err != nil {
		s.metrics.RecordLookup(lookupTriggerManual, lookupOutcomeError)
		return nil, err
	}

	s.metrics.RecordLookup(lookupTriggerManual, lookupOutcomeOK)
	return result, nil
}

// lookup fetches the student, then the schedule and accreditations
// concurrently. A schedule failure fails the lookup; accreditation
// failures degrade to an empty list inside AccreditationService.
func (s *LookupService) lookup(ctx context.Context, boleta string) (*models.LookupResult, error) {
	student, err := s.students.Get(ctx, boleta)
	if err != nil {
		return nil, err
	}

	var (
		wg          sync.WaitGroup
		schedule    []models.ScheduleRow
		scheduleErr error
		accredited  []models.AccreditedSubject
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		schedule, scheduleErr = s.schedules.Weekly(ctx, student.GroupID)
	}()
	go func() {
		defer wg.Done()
		accredited = s.accreditations.ListByStudent(ctx, boleta)
	}()
	wg.Wait()

	if scheduleErr != nil {
		return nil, scheduleErr
	}

	return &models.LookupResult{
		Student:    student,
		Schedule:   schedule,
		Accredited: accredited,
	}, nil
}

func (s *LookupService) shortenCooldown(ctx context.Context, key string) {
	if s.cooldowns == nil {
		return
	}
	if err := s.cooldowns.Expire(ctx, key, s.config.NotFoundCooldown); err != nil {
		s.logger.Warn("failed to shorten scan cooldown", zap.Error(err))
	}
}

// prefectKey returns the throttling identity of a session, or "" when the
// scan carries no session.
func prefectKey(session *models.JWTClaims) string {
	if session == nil {
		return ""
	}
	return session.PrefectID
}
