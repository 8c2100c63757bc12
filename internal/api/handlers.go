package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"truthteller/internal/model"
	"truthteller/internal/pipeline"
	"truthteller/internal/repository"
	"truthteller/internal/storage"
	"truthteller/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler owns the HTTP surface. One pipeline instance serves all requests;
// per-run state is namespaced inside the pipeline itself.
type Handler struct {
	pipeline        *pipeline.Pipeline
	store           *storage.VideoStore
	repo            repository.PredictionRepository
	defaultLanguage string
}

func NewHandler(p *pipeline.Pipeline, store *storage.VideoStore, repo repository.PredictionRepository, defaultLanguage string) *Handler {
	return &Handler{
		pipeline:        p,
		store:           store,
		repo:            repo,
		defaultLanguage: defaultLanguage,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Health check
	r.GET("/health", h.healthCheck)

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/predict", h.predictUpload)
		v1.POST("/predict/link", h.predictLink)
		v1.GET("/predictions", h.listPredictions)
		v1.GET("/predictions/:prediction_id", h.getPrediction)
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "truthteller-backend",
	})
}

// predictUpload runs the full pipeline on an uploaded video file.
func (h *Handler) predictUpload(c *gin.Context) {
	log.Printf("[Predict] Upload request, Content-Type: %s", c.GetHeader("Content-Type"))

	file, err := c.FormFile("video")
	if err != nil {
		log.Printf("[Predict] FormFile error: %v", err)
		// Try alternative field names
		if file, err = c.FormFile("file"); err != nil {
			utils.Error(c, http.StatusBadRequest, "video file is required")
			return
		}
	}

	language := c.PostForm("language")
	if language == "" {
		language = h.defaultLanguage
	}

	videoPath, err := h.store.Save(file)
	if err != nil {
		log.Printf("[Predict] Failed to save upload: %v", err)
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ref := model.MediaReference{
		Source:   model.SourceLocal,
		Locator:  videoPath,
		Language: language,
		Title:    file.Filename,
	}
	h.runPipeline(c, ref)
}

// LinkRequest is the body of a remote-video prediction request.
type LinkRequest struct {
	URL      string `json:"url" binding:"required"`
	Language string `json:"language"`
}

// predictLink runs the full pipeline on a remote video link.
func (h *Handler) predictLink(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "url is required")
		return
	}

	language := req.Language
	if language == "" {
		language = h.defaultLanguage
	}

	log.Printf("[Predict] Link request: %s (language=%s)", req.URL, language)
	ref := model.MediaReference{
		Source:   model.SourceRemote,
		Locator:  req.URL,
		Language: language,
	}
	h.runPipeline(c, ref)
}

func (h *Handler) runPipeline(c *gin.Context, ref model.MediaReference) {
	result, err := h.pipeline.Run(c.Request.Context(), ref)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"message":           "Truth classification successful",
		"filename":          result.Filename,
		"finalStatements":   result.Distribution,
		"predicted_results": result.Results,
	})
}

// respondPipelineError maps a stage failure to an HTTP response. Clients see
// the category's generic message; the full cause stays in server logs.
func (h *Handler) respondPipelineError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		utils.Error(c, http.StatusGatewayTimeout, "Processing took too long and was aborted")
		return
	}
	serr, ok := pipeline.AsStageError(err)
	if !ok {
		utils.Error(c, http.StatusInternalServerError, "Pipeline failed")
		return
	}
	status := http.StatusInternalServerError
	if serr.Category == pipeline.CategoryAcquisition {
		status = http.StatusBadRequest
	}
	utils.Error(c, status, serr.Message())
}

// getPrediction returns one persisted run record.
func (h *Handler) getPrediction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("prediction_id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid prediction id")
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, http.StatusNotFound, "prediction not found")
		return
	}
	utils.Success(c, gin.H{"prediction": record})
}

// listPredictions returns recent run records, newest first.
func (h *Handler) listPredictions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.Printf("[Predictions] List error: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to list predictions")
		return
	}
	utils.Success(c, gin.H{
		"predictions": records,
		"count":       len(records),
	})
}
