package httpapi

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/service"
)

// Handler exposes the job service over HTTP.
type Handler struct {
	svc       *service.Service
	maxUpload int64
	name      string
	version   string
}

// Options configure the router.
type Options struct {
	Name           string
	Version        string
	MaxUploadBytes int64
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc *service.Service, log *logrus.Logger, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	h := &Handler{svc: svc, maxUpload: opts.MaxUploadBytes, name: opts.Name, version: opts.Version}
	router.GET("/health", h.Health)
	router.POST("/upload", h.Upload)
	router.GET("/all-analyses", h.List)
	router.GET("/fetch-analysis/:id", h.Get)
	router.DELETE("/delete-file/:id", h.Delete)
	router.GET("/fetch-audio/:id", h.Audio)
	return router
}

// jobSummary is one row of the job listing.
type jobSummary struct {
	ID         string      `json:"task_id"`
	FileName   string      `json:"file_name"`
	Status     jobs.Status `json:"status"`
	UploadedAt time.Time   `json:"uploaded_at"`
	Duration   *float64    `json:"duration,omitempty"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "name": h.name, "version": h.version})
}

// Upload accepts a multipart "file" and starts a job for it.
func (h *Handler) Upload(c *gin.Context) {
	if h.maxUpload > 0 {
		if c.Request.ContentLength > h.maxUpload {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit", "kind": jobs.KindValidation})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit", "kind": jobs.KindValidation})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "kind": jobs.KindValidation})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".wav") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .wav uploads are supported", "kind": jobs.KindValidation})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.fail(c, jobs.E(jobs.KindIO, "upload", err))
		return
	}
	defer f.Close()

	job, err := h.svc.Submit(header.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"task_id":   job.ID,
		"file_name": job.FileName,
		"status":    job.Status,
		"message":   "file uploaded, analysis started",
	})
}

func (h *Handler) List(c *gin.Context) {
	all := h.svc.List()
	out := make([]jobSummary, 0, len(all))
	for _, j := range all {
		out = append(out, jobSummary{
			ID:         j.ID,
			FileName:   j.FileName,
			Status:     j.Status,
			UploadedAt: j.CreatedAt,
			Duration:   j.Duration,
		})
	}
	c.JSON(http.StatusOK, gin.H{"analyses": out})
}

func (h *Handler) Get(c *gin.Context) {
	job, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": id, "message": "analysis deleted"})
}

// Audio streams the original upload; range requests are honoured.
func (h *Handler) Audio(c *gin.Context) {
	f, job, err := h.svc.Audio(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "audio/wav")
	http.ServeContent(c.Writer, c.Request, job.FileName, job.CreatedAt, f)
}

// fail writes err as JSON with a status derived from its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := jobs.KindOf(err)
	_ = c.Error(err)
	c.JSON(statusFor(kind), gin.H{"error": err.Error(), "kind": kind})
}

func statusFor(kind jobs.Kind) int {
	switch kind {
	case jobs.KindNotFound:
		return http.StatusNotFound
	case jobs.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
