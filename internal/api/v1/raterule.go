package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mariiahub/taxcore/internal/api/dto"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/service"
	"github.com/mariiahub/taxcore/internal/types"
)

type RateRuleHandler struct {
	service service.RateRuleService
	logger  *logger.Logger
}

func NewRateRuleHandler(service service.RateRuleService, logger *logger.Logger) *RateRuleHandler {
	return &RateRuleHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a rate rule
// @Tags Rate Rules
// @Accept json
// @Produce json
// @Param rate_rule body dto.CreateRateRuleRequest true "Rate rule to create"
// @Success 201 {object} dto.RateRuleResponse
// @Router /rules [post]
func (h *RateRuleHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a rate rule
// @Tags Rate Rules
// @Produce json
// @Param id path string true "Rate rule ID"
// @Success 200 {object} dto.RateRuleResponse
// @Router /rules/{id} [get]
func (h *RateRuleHandler) GetRule(c *gin.Context) {
	resp, err := h.service.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List rate rules
// @Tags Rate Rules
// @Produce json
// @Param filter query types.RateRuleFilter true "Filter"
// @Success 200 {object} dto.ListRateRulesResponse
// @Router /rules [get]
func (h *RateRuleHandler) ListRules(c *gin.Context) {
	var filter types.RateRuleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListRules(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update a rate rule
// @Tags Rate Rules
// @Accept json
// @Produce json
// @Param id path string true "Rate rule ID"
// @Param rate_rule body dto.UpdateRateRuleRequest true "Fields to update"
// @Success 200 {object} dto.RateRuleResponse
// @Router /rules/{id} [put]
func (h *RateRuleHandler) UpdateRule(c *gin.Context) {
	var req dto.UpdateRateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Deactivate a rate rule
// @Tags Rate Rules
// @Produce json
// @Param id path string true "Rate rule ID"
// @Success 204
// @Router /rules/{id} [delete]
func (h *RateRuleHandler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
