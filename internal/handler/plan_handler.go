package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// PlanHandler exposes plan endpoints.
type PlanHandler struct {
	plans *service.PlanService
}

// NewPlanHandler constructs PlanHandler.
func NewPlanHandler(plans *service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// List godoc
// @Summary List plans
// @Tags Plans
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans)
}

// Create godoc
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body service.PlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Router /plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Update godoc
// @Summary Update a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path int true "Plan ID"
// @Param payload body service.PlanRequest true "Plan payload"
// @Success 200 {object} response.Envelope
// @Router /plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrPlanNotFound)
		return
	}
	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Delete godoc
// @Summary Delete a plan
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 204 "No Content"
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrPlanNotFound)
		return
	}
	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
