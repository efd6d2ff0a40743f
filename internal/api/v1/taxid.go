package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mariiahub/taxcore/internal/api/dto"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/service"
)

type TaxIdentifierHandler struct {
	service service.TaxIdentifierService
	logger  *logger.Logger
}

func NewTaxIdentifierHandler(service service.TaxIdentifierService, logger *logger.Logger) *TaxIdentifierHandler {
	return &TaxIdentifierHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Validate a tax identifier
// @Tags Tax Identifiers
// @Accept json
// @Produce json
// @Param identifier body dto.ValidateIdentifierRequest true "Identifier to validate"
// @Success 200 {object} dto.ValidateIdentifierResponse
// @Router /identifiers/validate [post]
func (h *TaxIdentifierHandler) ValidateIdentifier(c *gin.Context) {
	var req dto.ValidateIdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	identifier, err := h.service.Validate(c.Request.Context(), req.Identifier, req.AllowRemote)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.ValidateIdentifierResponse{TaxIdentifier: identifier})
}
