package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/domain/event"
	"github.com/garyjia/mrsl-intake/internal/review"
)

var templateFuncs = template.FuncMap{
	"toastClass": func(level event.Level) string {
		switch level {
		case event.LevelSuccess:
			return "toast toast-success"
		case event.LevelError:
			return "toast toast-error"
		default:
			return "toast"
		}
	},
}

// Pages serves the HTML front end
type Pages struct {
	session        service.Session
	notifications  service.NotificationService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewPages creates the HTML handlers
func NewPages(session service.Session, notifications service.NotificationService, maxUploadBytes int64, logger *zap.Logger) *Pages {
	return &Pages{
		session:        session,
		notifications:  notifications,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type pageData struct {
	Snapshot  service.Snapshot
	Fields    []review.Field
	Toasts    []service.Notification
	MaxUpload string
}

// Index handles GET /
func (p *Pages) Index(c *gin.Context) {
	snap := p.session.Snapshot()
	data := pageData{
		Snapshot:  snap,
		Toasts:    p.notifications.Drain(),
		MaxUpload: fmt.Sprintf("%.0f MB", float64(p.maxUploadBytes)/(1024*1024)),
	}
	if snap.HasRecord() {
		data.Fields = snap.Form().Fields()
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// Upload handles POST /upload from the file picker
func (p *Pages) Upload(c *gin.Context) {
	upload, err := readUpload(c, p.maxUploadBytes)
	if err != nil {
		p.logger.Info("Upload rejected", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	// extraction failures reach the user through the notification feed
	if _, err := p.session.SelectFile(context.WithoutCancel(c.Request.Context()), upload); err != nil {
		p.logger.Info("File selection did not complete", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Review handles POST /review: saves edits, and submits when action=submit
func (p *Pages) Review(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	if values := reviewValues(c); len(values) > 0 {
		if _, err := p.session.EditAll(ctx, values); err != nil {
			p.logger.Info("Edit rejected", zap.Error(err))
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
	}

	if c.PostForm("action") == "submit" {
		if _, err := p.session.Submit(ctx); err != nil {
			p.logger.Info("Submission did not complete", zap.Error(err))
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Clear handles POST /clear
func (p *Pages) Clear(c *gin.Context) {
	p.session.Clear(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}
