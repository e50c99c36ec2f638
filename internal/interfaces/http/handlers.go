package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/container"
	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
	"github.com/garyjia/mrsl-intake/internal/domain/entity"
	"github.com/garyjia/mrsl-intake/internal/export"
	"github.com/garyjia/mrsl-intake/internal/intake"
)

// Version is reported by the health check
var Version = "dev"

// Handlers contains the JSON API handlers
type Handlers struct {
	session        service.Session
	notifications  service.NotificationService
	exporter       *export.Writer
	maxUploadBytes int64
	health         HealthReporter
	logger         *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	session service.Session,
	notifications service.NotificationService,
	exporter *export.Writer,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		session:        session,
		notifications:  notifications,
		exporter:       exporter,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string                               `json:"status"`
	Timestamp  string                               `json:"timestamp"`
	Version    string                               `json:"version"`
	Components map[string]container.ComponentHealth `json:"components,omitempty"`
}

// SessionResponse is the session snapshot plus its rendered form
type SessionResponse struct {
	service.Snapshot
	Fields []FieldResponse `json:"fields,omitempty"`
}

// FieldResponse represents one review form control
type FieldResponse struct {
	Key         string           `json:"key"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Kind        string           `json:"kind"`
	Value       *string          `json:"value"`
	Options     []OptionResponse `json:"options,omitempty"`
}

// OptionResponse represents one class code choice
type OptionResponse struct {
	Value        string `json:"value"`
	Label        string `json:"label"`
	Selected     bool   `json:"selected,omitempty"`
	Unrecognized bool   `json:"unrecognized,omitempty"`
}

// EditRequest is the body of PATCH /api/v1/session/record
type EditRequest struct {
	Field string  `json:"field" binding:"required"`
	Value *string `json:"value"`
}

func toSessionResponse(snap service.Snapshot) SessionResponse {
	resp := SessionResponse{Snapshot: snap}
	if !snap.HasRecord() {
		return resp
	}
	for _, f := range snap.Form().Fields() {
		field := FieldResponse{
			Key:         f.Key.String(),
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Kind:        string(f.Kind),
		}
		if !f.Null {
			v := f.Value
			field.Value = &v
		}
		for _, o := range f.Options {
			field.Options = append(field.Options, OptionResponse(o))
		}
		resp.Fields = append(resp.Fields, field)
	}
	return resp
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		h.logger.Info("Request rejected", zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// HealthCheck handles GET /health.
// An unhealthy component degrades the status but the endpoint still answers 200.
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}
	if h.health != nil {
		status := h.health.Health()
		resp.Components = status.Components
		if !status.Overall {
			resp.Status = "degraded"
		}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// GetSession handles GET /api/v1/session
func (h *Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: toSessionResponse(h.session.Snapshot())})
}

// ClearSession handles DELETE /api/v1/session
func (h *Handlers) ClearSession(c *gin.Context) {
	snap := h.session.Clear(c.Request.Context())
	c.JSON(http.StatusOK, Response{Success: true, Data: toSessionResponse(snap)})
}

// UploadFile handles POST /api/v1/session/file.
// The multipart field "document" carries the PDF; "source" is picker or drop.
func (h *Handlers) UploadFile(c *gin.Context) {
	upload, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		h.fail(c, err)
		return
	}

	// extraction outlives a client that disconnects mid-request
	snap, err := h.session.SelectFile(context.WithoutCancel(c.Request.Context()), upload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toSessionResponse(snap)})
}

// EditRecord handles PATCH /api/v1/session/record
func (h *Handlers) EditRecord(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	value := ""
	if req.Value != nil {
		value = *req.Value
	}
	snap, err := h.session.Edit(c.Request.Context(), req.Field, value)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toSessionResponse(snap)})
}

// Submit handles POST /api/v1/session/submit
func (h *Handlers) Submit(c *gin.Context) {
	snap, err := h.session.Submit(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toSessionResponse(snap)})
}

// ExportXLSX handles GET /api/v1/session/export.xlsx
func (h *Handlers) ExportXLSX(c *gin.Context) {
	snap := h.session.Snapshot()
	if !snap.HasRecord() || snap.File == nil {
		h.fail(c, service.ErrNoRecord)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteRecord(&buf, *snap.Record, snap.File.Name, time.Now()); err != nil {
		h.fail(c, err)
		return
	}

	name := strings.TrimSuffix(snap.File.Name, filepath.Ext(snap.File.Name)) + ".xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// ListClassCodes handles GET /api/v1/class-codes
func (h *Handlers) ListClassCodes(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: classcode.All()})
}

// DrainNotifications handles GET /api/v1/notifications
func (h *Handlers) DrainNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.notifications.Drain()})
}

// LatestNotification handles GET /api/v1/notifications/latest.
// It does not consume the pending queue.
func (h *Handlers) LatestNotification(c *gin.Context) {
	n, ok := h.notifications.Latest()
	if !ok {
		c.JSON(http.StatusOK, Response{Success: true})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: n})
}

// readUpload reads the "document" part of a multipart form
func readUpload(c *gin.Context, maxBytes int64) (service.Upload, error) {
	header, err := c.FormFile("document")
	if err != nil {
		return service.Upload{}, fmt.Errorf("%w: missing document: %v", errBadRequest, err)
	}
	content, err := readPart(header, maxBytes)
	if err != nil {
		return service.Upload{}, err
	}
	return service.Upload{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Content:   content,
		Source:    intake.ParseSource(c.PostForm("source")),
	}, nil
}

func readPart(header *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", intake.ErrTooLarge, header.Size, maxBytes)
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return content, nil
}

// reviewValues collects the posted field values of the review form
func reviewValues(c *gin.Context) map[string]string {
	values := make(map[string]string)
	for _, f := range entity.Fields {
		if v, ok := c.GetPostForm(f.String()); ok {
			values[f.String()] = v
		}
	}
	return values
}
