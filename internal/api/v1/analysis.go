package v1

import (
	"net/http"

	"github.com/complysense/complysense/internal/api/dto"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	service service.AnalysisService
	logger  *logger.Logger
}

func NewAnalysisHandler(service service.AnalysisService, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Analyze an upload
// @Description Score the invoices of a stored upload against the readiness rules and questionnaire answers
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Analysis request"
// @Success 200 {object} dto.AnalyzeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Analyze(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
