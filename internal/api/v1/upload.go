package v1

import (
	"io"
	"net/http"
	"strings"

	"github.com/complysense/complysense/internal/api/dto"
	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/service"
	"github.com/complysense/complysense/internal/types"
	"github.com/gin-gonic/gin"
)

const uploadFileField = "file"

type UploadHandler struct {
	service service.UploadService
	config  *config.Configuration
	logger  *logger.Logger
}

func NewUploadHandler(service service.UploadService, config *config.Configuration, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		config:  config,
		logger:  logger,
	}
}

// @Summary Upload invoices
// @Description Store a JSON or CSV invoice export, sent as a multipart file or as pasted text
// @Tags Uploads
// @Accept multipart/form-data,json
// @Produce json
// @Param file formData file false "Invoice export"
// @Param request body dto.CreateTextUploadRequest false "Pasted invoice text"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) CreateUpload(c *gin.Context) {
	var (
		req *dto.CreateUploadRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.readFile(c)
	} else {
		req, err = h.readText(c)
	}
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.CreateUpload(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UploadHandler) readFile(c *gin.Context) (*dto.CreateUploadRequest, error) {
	fh, err := c.FormFile(uploadFileField)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("File is empty.").
			Mark(ierr.ErrValidation)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("File could not be read").
			Mark(ierr.ErrValidation)
	}
	defer f.Close()

	// one extra byte lets validation see that the limit was exceeded
	content, err := io.ReadAll(io.LimitReader(f, h.config.Analysis.MaxUploadBytes+1))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("File could not be read").
			Mark(ierr.ErrValidation)
	}

	return &dto.CreateUploadRequest{
		Filename:    fh.Filename,
		Source:      types.UploadSourceFile,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func (h *UploadHandler) readText(c *gin.Context) (*dto.CreateUploadRequest, error) {
	var body dto.CreateTextUploadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Debugw("failed to bind text upload", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Text content is missing.").
			Mark(ierr.ErrValidation)
	}
	return dto.NewTextUploadRequest(&body), nil
}
