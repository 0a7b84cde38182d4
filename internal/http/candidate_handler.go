package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thrivingcare-api/internal/repository"
	"thrivingcare-api/internal/service"
	"thrivingcare-api/internal/storage"
)

const maxResumeBytes = 5 * 1024 * 1024

var allowedResumeTypes = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// CandidateHandler mantiene dependencias para altas y resumes.
type CandidateHandler struct {
	logger     *zap.Logger
	intake     *service.IntakeService
	candidates repository.CandidateRepository
	store      storage.Store
	limiter    service.RateLimiter
}

func NewCandidateHandler(
	logger *zap.Logger,
	intake *service.IntakeService,
	candidates repository.CandidateRepository,
	store storage.Store,
	limiter service.RateLimiter,
) *CandidateHandler {
	return &CandidateHandler{
		logger:     logger,
		intake:     intake,
		candidates: candidates,
		store:      store,
		limiter:    limiter,
	}
}

// CreateCandidate maneja POST /api/candidates (alta desde el sitio).
func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	var req struct {
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName" binding:"required"`
		Discipline  string `json:"discipline" binding:"required"`
		Specialty   string `json:"specialty" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Phone       string `json:"phone" binding:"required"`
		HomeAddress string `json:"homeAddress" binding:"required"`
		Source      string `json:"source"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid candidate intake", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many signups, try again later"})
		return
	}

	cand, err := h.intake.CreateCandidate(c.Request.Context(), service.IntakeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Discipline:  req.Discipline,
		Specialty:   req.Specialty,
		Email:       req.Email,
		Phone:       req.Phone,
		HomeAddress: req.HomeAddress,
		Source:      req.Source,
	})
	if errors.Is(err, service.ErrPhoneInUse) {
		c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		return
	}
	if errors.Is(err, service.ErrIntakeInvalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err != nil {
		h.logger.Error("create candidate failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create candidate"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      cand.ID,
		"message": "Welcome! We'll start matching you to positions right away.",
		"status":  "success",
	})
}

// QuickApply maneja POST /api/jobs/:id/apply.
func (h *CandidateHandler) QuickApply(c *gin.Context) {
	var req struct {
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName"`
		Discipline  string `json:"discipline"`
		Specialty   string `json:"specialty"`
		Email       string `json:"email" binding:"required,email"`
		Phone       string `json:"phone" binding:"required"`
		HomeAddress string `json:"homeAddress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cand, err := h.intake.QuickApply(c.Request.Context(), service.IntakeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Discipline:  req.Discipline,
		Specialty:   req.Specialty,
		Email:       req.Email,
		Phone:       req.Phone,
		HomeAddress: req.HomeAddress,
	}, c.Param("id"))
	if errors.Is(err, repository.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.logger.Error("quick apply failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"candidate_id": cand.ID, "status": "success"})
}

// UploadResume maneja POST /api/candidates/:id/resume (multipart).
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	candidateID := c.Param("id")
	if _, err := h.candidates.GetByID(c.Request.Context(), candidateID); err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
			return
		}
		h.logger.Error("resume lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload resume"})
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume file is required"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedResumeTypes[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type, upload PDF or Word document"})
		return
	}
	if fileHeader.Size > maxResumeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large, maximum size is 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("resume open failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload resume"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil {
		h.logger.Error("resume read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload resume"})
		return
	}
	if len(content) > maxResumeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large, maximum size is 5MB"})
		return
	}

	name := fmt.Sprintf("candidate_%s_%s.%s", candidateID, time.Now().UTC().Format("20060102_150405"), ext)
	url, err := h.store.Save(c.Request.Context(), name, content)
	if err != nil {
		h.logger.Error("resume store failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload resume"})
		return
	}

	if err := h.candidates.SetResumeURL(c.Request.Context(), candidateID, url); err != nil {
		h.logger.Error("resume url update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not upload resume"})
		return
	}

	h.logger.Info("resume uploaded",
		zap.String("candidate_id", candidateID),
		zap.String("url", url),
		zap.String("filename", strings.TrimSpace(fileHeader.Filename)),
	)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Resume uploaded successfully", "url": url})
}
