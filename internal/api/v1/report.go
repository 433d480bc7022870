package v1

import (
	"net/http"

	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/service"
	"github.com/gin-gonic/gin"
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

// @Summary Get a report
// @Description Fetch a stored report by id or RPT- short code
// @Tags Reports
// @Produce json
// @Param reportId path string true "Report ID or short code"
// @Success 200 {object} report.Report
// @Failure 404 {object} ierr.ErrorResponse
// @Router /report/{reportId} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	rec, err := h.service.GetReport(c.Request.Context(), c.Param("reportId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rec.Report)
}
