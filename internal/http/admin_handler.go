package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/repository"
	"thrivingcare-api/internal/service"
)

var validApplicationStatuses = map[string]bool{
	domain.ApplicationStatusNew:       true,
	domain.ApplicationStatusVetting:   true,
	domain.ApplicationStatusSubmitted: true,
	domain.ApplicationStatusOffer:     true,
	domain.ApplicationStatusPlaced:    true,
	domain.ApplicationStatusRejected:  true,
}

// AdminHandler mantiene dependencias para el panel de administracion.
type AdminHandler struct {
	logger       *zap.Logger
	jobs         repository.JobRepository
	candidates   repository.CandidateRepository
	applications repository.ApplicationRepository
	analytics    *service.AnalyticsService
}

func NewAdminHandler(
	logger *zap.Logger,
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	applications repository.ApplicationRepository,
	analytics *service.AnalyticsService,
) *AdminHandler {
	return &AdminHandler{
		logger:       logger,
		jobs:         jobs,
		candidates:   candidates,
		applications: applications,
		analytics:    analytics,
	}
}

type jobRequest struct {
	Title       string  `json:"title" binding:"required"`
	Discipline  string  `json:"discipline" binding:"required"`
	Specialty   string  `json:"specialty"`
	City        string  `json:"city" binding:"required"`
	State       string  `json:"state" binding:"required"`
	WeeklyGross int     `json:"weekly_gross" binding:"required"`
	HourlyRate  float64 `json:"hourly_rate"`
	Active      *bool   `json:"active"`
	Enriched    *bool   `json:"enriched"`
}

// CreateJob maneja POST /admin/jobs.
func (h *AdminHandler) CreateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	now := time.Now().UTC()
	job := domain.Job{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Discipline:  req.Discipline,
		Specialty:   req.Specialty,
		City:        req.City,
		State:       req.State,
		WeeklyGross: req.WeeklyGross,
		HourlyRate:  req.HourlyRate,
		Active:      true,
		Enriched:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Active != nil {
		job.Active = *req.Active
	}
	if req.Enriched != nil {
		job.Enriched = *req.Enriched
	}

	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		h.logger.Error("create job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create job"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// ListJobs maneja GET /admin/jobs: incluye posiciones desactivadas.
func (h *AdminHandler) ListJobs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	jobs, total, err := h.jobs.List(c.Request.Context(), domain.JobFilter{
		IncludeInactive: true,
		Specialty:       c.Query("specialty"),
		Location:        c.Query("location"),
		Page:            page,
		PerPage:         perPage,
	})
	if err != nil {
		h.logger.Error("admin list jobs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list jobs"})
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total})
}

// UpdateJob maneja PUT /admin/jobs/:id.
func (h *AdminHandler) UpdateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.logger.Error("get job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update job"})
		return
	}

	job.Title = req.Title
	job.Discipline = req.Discipline
	job.Specialty = req.Specialty
	job.City = req.City
	job.State = req.State
	job.WeeklyGross = req.WeeklyGross
	job.HourlyRate = req.HourlyRate
	if req.Active != nil {
		job.Active = *req.Active
	}
	if req.Enriched != nil {
		job.Enriched = *req.Enriched
	}

	if err := h.jobs.Update(c.Request.Context(), job); err != nil {
		h.logger.Error("update job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// DeactivateJob maneja DELETE /admin/jobs/:id (baja logica).
func (h *AdminHandler) DeactivateJob(c *gin.Context) {
	err := h.jobs.Deactivate(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.logger.Error("deactivate job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListCandidates maneja GET /admin/candidates.
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	candidates, err := h.candidates.List(c.Request.Context(), c.Query("vetting_status"), limit, offset)
	if err != nil {
		h.logger.Error("list candidates failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list candidates"})
		return
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// GetCandidate maneja GET /admin/candidates/:id, con sus aplicaciones.
func (h *AdminHandler) GetCandidate(c *gin.Context) {
	cand, err := h.candidates.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrCandidateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}
	if err != nil {
		h.logger.Error("get candidate failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get candidate"})
		return
	}

	apps, err := h.applications.ListByCandidate(c.Request.Context(), cand.ID)
	if err != nil {
		h.logger.Error("list applications failed", zap.Error(err))
		apps = nil
	}
	c.JSON(http.StatusOK, gin.H{"candidate": cand, "applications": apps})
}

// CreateApplication maneja POST /admin/applications: abre una aplicacion a
// mano para un candidato ya existente.
func (h *AdminHandler) CreateApplication(c *gin.Context) {
	var req struct {
		CandidateID string  `json:"candidate_id" binding:"required"`
		JobID       *string `json:"job_id"`
		Status      string  `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Status == "" {
		req.Status = domain.ApplicationStatusNew
	}
	if !validApplicationStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	cand, err := h.candidates.GetByID(c.Request.Context(), req.CandidateID)
	if errors.Is(err, repository.ErrCandidateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}
	if err != nil {
		h.logger.Error("candidate lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create application"})
		return
	}

	if req.JobID != nil {
		if _, err := h.jobs.GetByID(c.Request.Context(), *req.JobID); err != nil {
			if errors.Is(err, repository.ErrJobNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
				return
			}
			h.logger.Error("job lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create application"})
			return
		}
	}

	now := time.Now().UTC()
	app := domain.Application{
		ID:            uuid.NewString(),
		CandidateID:   cand.ID,
		JobID:         req.JobID,
		Status:        req.Status,
		VettingStatus: cand.VettingStatus,
		VettingStep:   cand.VettingStep,
		Answers:       map[string]string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.applications.Create(c.Request.Context(), app); err != nil {
		h.logger.Error("create application failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create application"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// UpdateApplicationStatus maneja PUT /admin/applications/:id/status.
func (h *AdminHandler) UpdateApplicationStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validApplicationStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	err := h.applications.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if errors.Is(err, repository.ErrApplicationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}
	if err != nil {
		h.logger.Error("update application status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update application"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Analytics maneja GET /admin/analytics.
func (h *AdminHandler) Analytics(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		h.logger.Error("analytics failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build analytics"})
		return
	}
	c.JSON(http.StatusOK, overview)
}
