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

type CorrectionHandler struct {
	service service.CorrectionService
	logger  *logger.Logger
}

func NewCorrectionHandler(service service.CorrectionService, logger *logger.Logger) *CorrectionHandler {
	return &CorrectionHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Issue a correction against an invoice
// @Tags Corrections
// @Accept json
// @Produce json
// @Param correction body dto.CorrectInvoiceRequest true "Correction to issue"
// @Success 201 {object} dto.CorrectionResponse
// @Router /corrections [post]
func (h *CorrectionHandler) CorrectInvoice(c *gin.Context) {
	var req dto.CorrectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CorrectInvoice(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a correction
// @Tags Corrections
// @Produce json
// @Param id path string true "Correction ID"
// @Success 200 {object} dto.CorrectionResponse
// @Router /corrections/{id} [get]
func (h *CorrectionHandler) GetCorrection(c *gin.Context) {
	resp, err := h.service.GetCorrection(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List corrections
// @Tags Corrections
// @Produce json
// @Param filter query types.CorrectionFilter true "Filter"
// @Success 200 {object} dto.ListCorrectionsResponse
// @Router /corrections [get]
func (h *CorrectionHandler) ListCorrections(c *gin.Context) {
	var filter types.CorrectionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListCorrections(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
