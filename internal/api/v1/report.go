package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mariiahub/taxcore/internal/api/dto"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/service"
)

type ReportHandler struct {
	service service.ReportService
	logger  *logger.Logger
}

func NewReportHandler(service service.ReportService, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Aggregate a reporting period
// @Tags Reports
// @Accept json
// @Produce json
// @Param period body dto.AggregatePeriodRequest true "Period to aggregate"
// @Success 200 {object} dto.AggregatePeriodResponse
// @Router /reports/aggregate [post]
func (h *ReportHandler) AggregatePeriod(c *gin.Context) {
	var req dto.AggregatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Aggregate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Download a period's export payload
// @Tags Reports
// @Produce xml
// @Param period body dto.AggregatePeriodRequest true "Period to export"
// @Router /reports/export [post]
func (h *ReportHandler) ExportPeriod(c *gin.Context) {
	var req dto.AggregatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Aggregate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=tax_register.xml")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", resp.Payload)
}
