package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cecyt9/prefect-gate-api/internal/models"
	"github.com/cecyt9/prefect-gate-api/pkg/response"
)

// StudentService reads the student directory.
type StudentService interface {
	Get(ctx context.Context, boleta string) (*models.Student, error)
	Search(ctx context.Context, term string) ([]models.Student, error)
}

// StudentHandler exposes directory endpoints.
type StudentHandler struct {
	students StudentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Search godoc
// @Summary Search students
// @Description Match students by partial name or boleta
// @Tags Students
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) Search(c *gin.Context) {
	students, err := h.students.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param boleta path string true "Boleta"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{boleta} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("boleta"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
