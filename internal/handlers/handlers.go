package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/judi-api/internal/model"
)

const (
	indexTemplate = "index.html"

	msgMissingText      = "Input JSON harus berisi key 'text'"
	msgMissingInputText = "Form harus berisi field 'input_text'"
	msgPredictionFailed = "Prediksi gagal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Predictor classifies a single text.
type Predictor interface {
	Predict(ctx context.Context, text string) (*model.PredictionResult, error)
}

type Handler struct {
	predictor Predictor
	log       *zap.Logger
	timeout   time.Duration
	ready     atomic.Bool
}

// NewHandler builds the HTTP handlers. A zero timeout leaves the request
// context untouched. /ready reports 503 until SetReady(true).
func NewHandler(predictor Predictor, log *zap.Logger, timeout time.Duration) *Handler {
	return &Handler{
		predictor: predictor,
		log:       log,
		timeout:   timeout,
	}
}

type pageData struct {
	InputText  string
	Prediction string
	Confidence float64
	Error      string
}

type errorResponse struct {
	Error string `json:"error"`
}

// Index handles GET /
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, pageData{})
}

// PredictForm handles POST /predict
func (h *Handler) PredictForm(c *gin.Context) {
	text, ok := c.GetPostForm("input_text")
	if !ok {
		c.HTML(http.StatusBadRequest, indexTemplate, pageData{Error: msgMissingInputText})
		return
	}

	result, err := h.predict(c, text)
	if err != nil {
		c.HTML(http.StatusInternalServerError, indexTemplate, pageData{
			InputText: text,
			Error:     msgPredictionFailed,
		})
		return
	}

	c.HTML(http.StatusOK, indexTemplate, pageData{
		InputText:  text,
		Prediction: result.Classification,
		Confidence: result.ConfidenceScore,
	})
}

// PredictAPI handles POST /api/predict
func (h *Handler) PredictAPI(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgMissingText})
		return
	}

	result, err := h.predict(c, *req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgPredictionFailed})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) predict(c *gin.Context, text string) (*model.PredictionResult, error) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.predictor.Predict(ctx, text)
	if err != nil {
		h.log.Error("Prediction failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("text_length", len(text)),
			zap.Error(err),
		)
		return nil, err
	}

	h.log.Debug("Prediction completed",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("classification", result.Classification),
		zap.Float64("confidence", result.ConfidenceScore),
	)
	return result, nil
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	if h.predictor == nil {
		c.JSON(http.StatusServiceUnavailable, HealthStatus{
			Status:     "unhealthy",
			Components: map[string]string{"model": "not loaded"},
		})
		return
	}

	c.JSON(http.StatusOK, HealthStatus{
		Status:     "healthy",
		Components: map[string]string{"model": "loaded"},
	})
}

// SetReady flips what /ready reports. The server sets it once it is
// listening and clears it when shutdown begins.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Ready handles GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if h.predictor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "model not loaded"})
		return
	}
	if !h.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "not serving"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
