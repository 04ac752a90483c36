package contracts

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the contracts service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches contract routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contracts", h.submit)
	rg.GET("/contracts/:id", h.get)
	rg.GET("/contracts", h.list)
}

type submitRequest struct {
	FileName      string `json:"fileName"`
	ContentBase64 string `json:"contentBase64"`
	ContentType   string `json:"contentType"`
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileName, contentType, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	contract, err := h.Svc.Submit(c.Request.Context(), fileName, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported content type", []map[string]string{
				{"field": "contentType", "issue": "unsupported"},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to store contract", nil)
		}
		return
	}

	c.Set("contractId", contract.ID)
	respond.JSON(c, http.StatusCreated, gin.H{
		"id":     contract.ID,
		"status": contract.Status,
	})
}

// readUpload accepts either a multipart file upload or a JSON body carrying
// base64 content. Responds with a validation error and returns ok=false on
// malformed input.
func (h *Handler) readUpload(c *gin.Context) (fileName, contentType string, data []byte, ok bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
			return "", "", nil, false
		}
		file, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return "", "", nil, false
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return "", "", nil, false
		}
		declared := fileHeader.Header.Get("Content-Type")
		if v := c.PostForm("contentType"); v != "" {
			declared = v
		}
		return fileHeader.Filename, declared, raw, true
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return "", "", nil, false
	}
	if strings.TrimSpace(req.ContentBase64) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentBase64 is required", nil)
		return "", "", nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentBase64 is not valid base64", nil)
		return "", "", nil, false
	}
	return req.FileName, req.ContentType, raw, true
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contract id is required", nil)
		return
	}
	c.Set("contractId", id)

	contract, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "contract not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to fetch contract", nil)
		}
		return
	}

	respond.OK(c, ToResponse(contract))
}

func (h *Handler) list(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}
	status := strings.TrimSpace(c.Query("status"))

	result, err := h.Svc.List(c.Request.Context(), limit, status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to list contracts", nil)
		}
		return
	}

	records := make([]ContractResponse, 0, len(result.Records))
	for _, contract := range result.Records {
		records = append(records, ToResponse(contract))
	}

	respond.OK(c, ListResponse{
		Records: records,
		Summary: result.Summary,
		Pagination: Pagination{
			Limit:   result.Limit,
			HasMore: result.HasMore,
		},
	})
}
