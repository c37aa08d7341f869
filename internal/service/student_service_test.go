package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

type stubStudentRepo struct {
	student     *models.Student
	findErr     error
	results     []models.Student
	searchErr   error
	searchCalls int
	lastTerm    string
	lastLimit   int
}

func (s *stubStudentRepo) FindByBoleta(_ context.Context, boleta string) (*models.Student, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.student, nil
}

func (s *stubStudentRepo) Search(_ context.Context, term string, limit int) ([]models.Student, error) {
	s.searchCalls++
	s.lastTerm = term
	s.lastLimit = limit
	return s.results, s.searchErr
}

func newStudentService(repo *stubStudentRepo) *StudentService {
	return NewStudentService(repo, nil, StudentConfig{SearchMinLength: 2, SearchMaxResults: 20}, nil)
}

func TestStudentServiceGet(t *testing.T) {
	repo := &stubStudentRepo{student: &models.Student{Boleta: "2024090001", Name: "María López"}}
	svc := newStudentService(repo)

	student, err := svc.Get(context.Background(), "2024090001")
	require.NoError(t, err)
	assert.Equal(t, "María López", student.Name)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	repo := &stubStudentRepo{findErr: sql.ErrNoRows}
	svc := newStudentService(repo)

	_, err := svc.Get(context.Background(), "0000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceSearchShortTermSkipsDirectory(t *testing.T) {
	repo := &stubStudentRepo{}
	svc := newStudentService(repo)

	for _, term := range []string{"", " ", "a", " a "} {
		students, err := svc.Search(context.Background(), term)
		require.NoError(t, err)
		assert.Empty(t, students)
	}
	assert.Zero(t, repo.searchCalls)
}

func TestStudentServiceSearchNormalizesTerm(t *testing.T) {
	repo := &stubStudentRepo{results: []models.Student{{Boleta: "2024090001"}}}
	svc := newStudentService(repo)

	students, err := svc.Search(context.Background(), "  MARÍA  ")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "maría", repo.lastTerm)
	assert.Equal(t, 20, repo.lastLimit)
}

func TestStudentServiceSearchEmptyResultIsNotNil(t *testing.T) {
	repo := &stubStudentRepo{results: nil}
	svc := newStudentService(repo)

	students, err := svc.Search(context.Background(), "zz")
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentServiceSearchRepositoryError(t *testing.T) {
	repo := &stubStudentRepo{searchErr: errors.New("connection refused")}
	svc := newStudentService(repo)

	_, err := svc.Search(context.Background(), "maría")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
