package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

type studentRepository interface {
	FindByBoleta(ctx context.Context, boleta string) (*models.Student, error)
	Search(ctx context.Context, term string, limit int) ([]models.Student, error)
}

// StudentConfig tunes directory searches.
type StudentConfig struct {
	SearchMinLength  int
	SearchMaxResults int
	SearchCacheTTL   time.Duration
}

// StudentService reads the registrar's student directory.
type StudentService struct {
	repo   studentRepository
	cache  *CacheService
	config StudentConfig
	logger *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, cache *CacheService, config StudentConfig, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SearchMinLength <= 0 {
		config.SearchMinLength = 2
	}
	if config.SearchMaxResults <= 0 {
		config.SearchMaxResults = 20
	}
	return &StudentService{repo: repo, cache: cache, config: config, logger: logger}
}

// Get fetches one student by boleta.
func (s *StudentService) Get(ctx context.Context, boleta string) (*models.Student, error) {
	student, err := s.repo.FindByBoleta(ctx, boleta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Search matches students whose name or boleta contains the term. Terms
// shorter than the configured minimum resolve to an empty slice without
// touching the directory; repeated terms within the cache window are served
// from cache to absorb keystroke bursts.
func (s *StudentService) Search(ctx context.Context, term string) ([]models.Student, error) {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if utf8.RuneCountInString(normalized) < s.config.SearchMinLength {
		return []models.Student{}, nil
	}

	cacheKey := "search:" + normalized
	if s.cache.Enabled() {
		var cached []models.Student
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	students, err := s.repo.Search(ctx, normalized, s.config.SearchMaxResults)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	if students == nil {
		students = []models.Student{}
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, students, s.config.SearchCacheTTL); err != nil {
			s.logger.Warn("failed to cache search results", zap.String("term", normalized), zap.Error(err))
		}
	}

	return students, nil
}
