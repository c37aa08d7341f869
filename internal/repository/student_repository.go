package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cecyt9/prefect-gate-api/internal/models"
)

// StudentRepository reads the student directory. The directory is owned by
// the registrar; this service never writes to it.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "boleta, name, group_id, career, academic_status, blocked, delays, missing_credentials, open_door, created_at"

// FindByBoleta performs a point lookup by boleta. Returns sql.ErrNoRows when
// no record exists so callers can distinguish absence from transport failure.
func (r *StudentRepository) FindByBoleta(ctx context.Context, boleta string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE boleta = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, boleta); err != nil {
		return nil, err
	}
	return &student, nil
}

// Search matches students whose name contains the term (case-insensitive) or
// whose boleta contains it verbatim, in directory insertion order, capped at
// limit.
func (r *StudentRepository) Search(ctx context.Context, term string, limit int) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE name ILIKE $1 OR boleta LIKE $2
        ORDER BY created_at ASC LIMIT $3`, studentColumns)

	pattern := "%" + escapeLike(term) + "%"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return students, nil
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
