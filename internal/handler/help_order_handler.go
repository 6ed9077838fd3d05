package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// HelpOrderHandler exposes help order (student Q&A) endpoints.
type HelpOrderHandler struct {
	helpOrders *service.HelpOrderService
}

// NewHelpOrderHandler constructs HelpOrderHandler.
func NewHelpOrderHandler(helpOrders *service.HelpOrderService) *HelpOrderHandler {
	return &HelpOrderHandler{helpOrders: helpOrders}
}

// Answer godoc
// @Summary Answer a help order
// @Tags HelpOrders
// @Accept json
// @Produce json
// @Param id path string true "Help order ID"
// @Param payload body service.AnswerHelpOrderRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Router /help-orders/{id}/answer [post]
func (h *HelpOrderHandler) Answer(c *gin.Context) {
	var req service.AnswerHelpOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	order, err := h.helpOrders.Answer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order)
}

// ListOpen godoc
// @Summary List a student's unanswered help orders
// @Tags HelpOrders
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/help-orders/open [get]
func (h *HelpOrderHandler) ListOpen(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrStudentNotFound)
		return
	}
	orders, err := h.helpOrders.ListOpen(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders)
}

// ListByStudent godoc
// @Summary List every help order of a student
// @Tags HelpOrders
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/help-orders [get]
func (h *HelpOrderHandler) ListByStudent(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrStudentNotFound)
		return
	}
	orders, err := h.helpOrders.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders)
}

// Create godoc
// @Summary Open a help order for a student
// @Tags HelpOrders
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.CreateHelpOrderRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/help-orders [post]
func (h *HelpOrderHandler) Create(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrStudentNotFound)
		return
	}
	var req service.CreateHelpOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	order, err := h.helpOrders.CreateQuestion(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}
