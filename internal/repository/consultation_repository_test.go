package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

func TestConsultationRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewConsultationRepository(db)

	mock.ExpectExec("INSERT INTO consultation_history").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.ConsultationRecord{
		StudentID:    "2024090001",
		StudentName:  "María López",
		PrefectID:    "prefect-1",
		PrefectEmail: "prefecto@cecyt9.ipn.mx",
		Type:         models.ConsultationQRScan,
		Details:      models.ConsultationQRScan.Detail(),
	}
	err := repo.Insert(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultationRepositoryListByStudentAndPrefect(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewConsultationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "student_name", "prefect_id", "prefect_email", "consultation_type", "timestamp", "details"}).
		AddRow("c2", "2024090001", "María López", "prefect-1", "prefecto@cecyt9.ipn.mx", "manual_search", time.Now(), "Consulta manual").
		AddRow("c1", "2024090001", "María López", "prefect-1", "prefecto@cecyt9.ipn.mx", "qr_scan", time.Now().Add(-time.Hour), "Consulta por QR")
	mock.ExpectQuery("SELECT (.+) FROM consultation_history\\s+WHERE student_id = \\$1 AND prefect_id = \\$2\\s+ORDER BY timestamp DESC LIMIT \\$3").
		WithArgs("2024090001", "prefect-1", 20).
		WillReturnRows(rows)

	records, err := repo.ListByStudentAndPrefect(context.Background(), "2024090001", "prefect-1", 20)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c2", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAccessRepository(db)

	mock.ExpectExec("INSERT INTO records").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AccessRecord{
		StudentID:   "2024090001",
		StudentName: "María López",
		Door:        models.AccessDoorMobileApp,
		RecordType:  models.AccessRecordTypeConsulta,
		TypeCode:    models.AccessRecordTypeCode,
		Justified:   false,
	}
	err := repo.Insert(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
