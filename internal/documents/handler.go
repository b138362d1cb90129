package documents

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-api/internal/llm"
	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/server/middleware"
	"docextract-api/internal/shared/server/respond"
)

// formOverhead leaves room for the text fields around the file part.
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/extract", h.extract)
}

func (h *Handler) extract(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverhead)
	}

	provider, err := llm.ParseProvider(c.PostForm("provider"))
	if err != nil {
		respond.Fail(c, apperr.Wrap(apperr.KindInvalidInput, "Invalid provider", err))
		return
	}

	req := ExtractionRequest{
		FileURL:  strings.TrimSpace(c.PostForm("fileUrl")),
		Provider: provider,
		Mobile:   c.PostForm("mobile"),
		Tenant:   c.PostForm("tenant"),
		Trace: Trace{
			RequestID: middleware.RequestIDFromContext(c),
			DeviceID:  c.GetHeader("x-device-id"),
		},
	}

	image, fileName, err := h.readUpload(c)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	req.Image = image
	req.FileName = fileName

	resp, err := h.Svc.Extract(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, resp)
}

// readUpload returns nil bytes when no file part was sent.
func (h *Handler) readUpload(c *gin.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", apperr.InvalidInput(fileTooLargeMessage)
		}
		return nil, "", apperr.Wrap(apperr.KindInvalidInput, "Unable to read uploaded file", err)
	}
	if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
		return nil, "", apperr.InvalidInput(fileTooLargeMessage)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInvalidInput, "Unable to read uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInvalidInput, "Unable to read uploaded file", err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, fileHeader.Filename, nil
}
