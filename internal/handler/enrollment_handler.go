package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/export"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments with student and plan info
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, err := h.enrollments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Create godoc
// @Summary Enroll a student into a plan
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.StoreEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.StoreEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	enrollment, err := h.enrollments.Store(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Update godoc
// @Summary Update an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentRequest true "Partial enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrEnrollmentNotFound)
		return
	}
	var req service.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Delete godoc
// @Summary Delete an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.JSON(c, http.StatusOK, gin.H{"error": appErrors.ErrEnrollmentNotFound.Message})
		return
	}
	result, err := h.enrollments.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export the enrollment listing as CSV or PDF
// @Tags Enrollments
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	enrollments, err := h.enrollments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	table := export.Table{
		Title:   "Enrollments",
		Headers: []string{"ID", "Student", "Email", "Plan", "Start", "End", "Price"},
	}
	for _, e := range enrollments {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", e.ID),
			e.StudentName,
			e.StudentEmail,
			e.PlanTitle,
			e.StartDate.Format("2006-01-02"),
			e.EndDate.Format("2006-01-02"),
			e.Price.StringFixed(2),
		})
	}

	filename := fmt.Sprintf("enrollments-%s", time.Now().UTC().Format("20060102"))
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := export.PDF(table)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := export.CSV(table)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}
