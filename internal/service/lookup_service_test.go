package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

type fakeCooldownStore struct {
	values   map[string]string
	claimed  map[string]bool
	ttls     map[string]time.Duration
	denyNext bool
}

func newFakeCooldownStore() *fakeCooldownStore {
	return &fakeCooldownStore{
		values:  map[string]string{},
		claimed: map[string]bool{},
		ttls:    map[string]time.Duration{},
	}
}

func (f *fakeCooldownStore) Claim(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if f.denyNext || f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	f.values[key] = value
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeCooldownStore) GetString(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeCooldownStore) SetString(_ context.Context, key, value string, ttl time.Duration) error {
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCooldownStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

type lookupFixture struct {
	service       *LookupService
	students      *stubStudentRepo
	schedules     *stubScheduleRepo
	consultations *stubConsultationRepo
	access        *stubAccessRepo
	cooldowns     *fakeCooldownStore
}

type stubAccreditationRepo struct {
	subjects []models.AccreditedSubject
	err      error
}

func (s *stubAccreditationRepo) ListByStudent(_ context.Context, _ string) ([]models.AccreditedSubject, error) {
	return s.subjects, s.err
}

func newLookupFixture(t *testing.T) *lookupFixture {
	t.Helper()

	students := &stubStudentRepo{student: testStudent()}
	schedules := &stubScheduleRepo{sessions: []models.ClassSession{
		{GroupID: "3IM1", Day: "lunes", StartTime: "07:00", EndTime: "08:30", Subject: "Física"},
	}}
	consultations := &stubConsultationRepo{}
	access := &stubAccessRepo{}
	cooldowns := newFakeCooldownStore()

	config := LookupConfig{ScanCooldown: 2 * time.Second, NotFoundCooldown: time.Second}

	svc := NewLookupService(
		NewStudentService(students, nil, StudentConfig{}, nil),
		NewScheduleService(schedules, false, nil),
		NewAccreditationService(&stubAccreditationRepo{subjects: []models.AccreditedSubject{{Subject: "Inglés I"}}}, nil),
		NewConsultationService(consultations, access, ConsultationConfig{}, nil),
		cooldowns,
		nil,
		config,
		nil,
	)

	return &lookupFixture{
		service:       svc,
		students:      students,
		schedules:     schedules,
		consultations: consultations,
		access:        access,
		cooldowns:     cooldowns,
	}
}

func TestLookupScanHappyPath(t *testing.T) {
	f := newLookupFixture(t)

	result, err := f.service.Scan(context.Background(), testSession(), "https://servicios.dae.ipn.mx/vcred/?boleta=2024090001")
	require.NoError(t, err)
	require.NotNil(t, result.Student)
	assert.Equal(t, "2024090001", result.Student.Boleta)
	require.Len(t, result.Schedule, 1)
	assert.Equal(t, "Física", result.Schedule[0].Lun)
	require.Len(t, result.Accredited, 1)

	require.Len(t, f.consultations.inserted, 1)
	assert.Equal(t, models.ConsultationQRScan, f.consultations.inserted[0].Type)
	require.Len(t, f.access.inserted, 1)
}

func TestLookupScanRejectedDuringCooldown(t *testing.T) {
	f := newLookupFixture(t)

	_, err := f.service.Scan(context.Background(), testSession(), "2024090001")
	require.NoError(t, err)

	_, err = f.service.Scan(context.Background(), testSession(), "2024090002")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrScanCooldown))
	assert.Len(t, f.consultations.inserted, 1)
}

func TestLookupScanRejectsRepeatedPayload(t *testing.T) {
	f := newLookupFixture(t)
	f.cooldowns.values["scan:last:prefect-1"] = "2024090001"

	_, err := f.service.Scan(context.Background(), testSession(), "2024090001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrScanCooldown))
	assert.Empty(t, f.consultations.inserted)
}

func TestLookupScanInvalidPayload(t *testing.T) {
	f := newLookupFixture(t)

	_, err := f.service.Scan(context.Background(), testSession(), "no digits here")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidPayload))
	assert.Empty(t, f.consultations.inserted)
	// The cooldown shrinks so the prefect can rescan quickly.
	assert.Equal(t, time.Second, f.cooldowns.ttls["scan:cooldown:prefect-1"])
}

func TestLookupScanStudentNotFoundShortensCooldown(t *testing.T) {
	f := newLookupFixture(t)
	f.students.student = nil
	f.students.findErr = sql.ErrNoRows

	_, err := f.service.Scan(context.Background(), testSession(), "9999999999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, time.Second, f.cooldowns.ttls["scan:cooldown:prefect-1"])
	assert.Empty(t, f.consultations.inserted)
}

func TestLookupScanWithoutSessionSkipsCooldown(t *testing.T) {
	f := newLookupFixture(t)

	for i := 0; i < 3; i++ {
		result, err := f.service.Scan(context.Background(), nil, "2024090001")
		require.NoError(t, err)
		require.NotNil(t, result.Student)
	}

	// No session means no identity to throttle, so nothing reaches the store.
	assert.Empty(t, f.cooldowns.claimed)
	assert.Empty(t, f.cooldowns.values)
}

func TestLookupScanScheduleFailureFailsLookup(t *testing.T) {
	f := newLookupFixture(t)
	f.schedules.err = errors.New("connection refused")

	_, err := f.service.Scan(context.Background(), testSession(), "2024090001")
	require.Error(t, err)
	assert.Empty(t, f.consultations.inserted)
}

func TestLookupSelectSkipsCooldown(t *testing.T) {
	f := newLookupFixture(t)

	for i := 0; i < 3; i++ {
		result, err := f.service.Select(context.Background(), testSession(), "2024090001")
		require.NoError(t, err)
		require.NotNil(t, result.Student)
	}

	require.Len(t, f.consultations.inserted, 3)
	assert.Equal(t, models.ConsultationManualSearch, f.consultations.inserted[0].Type)
	assert.Equal(t, "Consulta manual", f.consultations.inserted[0].Details)
}

func TestLookupAccreditationFailureDegradesToEmpty(t *testing.T) {
	students := &stubStudentRepo{student: testStudent()}
	schedules := &stubScheduleRepo{}
	consultations := &stubConsultationRepo{}

	svc := NewLookupService(
		NewStudentService(students, nil, StudentConfig{}, nil),
		NewScheduleService(schedules, false, nil),
		NewAccreditationService(&stubAccreditationRepo{err: errors.New("connection refused")}, nil),
		NewConsultationService(consultations, &stubAccessRepo{}, ConsultationConfig{}, nil),
		newFakeCooldownStore(),
		nil,
		LookupConfig{},
		nil,
	)

	result, err := svc.Select(context.Background(), testSession(), "2024090001")
	require.NoError(t, err)
	assert.NotNil(t, result.Accredited)
	assert.Empty(t, result.Accredited)
}
