package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/internal/services"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// HealthChecker is implemented by reading sources backed by a database
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	dataset *models.Dataset
	window  *services.WindowService
	profile models.DwellingProfile
	health  HealthChecker
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler. health may be nil when
// the dataset was read from files.
func NewDashboardHandler(
	dataset *models.Dataset,
	window *services.WindowService,
	profile models.DwellingProfile,
	health HealthChecker,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dataset: dataset,
		window:  window,
		profile: profile,
		health:  health,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// observe records the request duration of endpoint once the handler returns
func (h *DashboardHandler) observe(endpoint string) func() {
	startTime := time.Now()
	return func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}
}

// GetDwelling handles GET /api/dwelling
func (h *DashboardHandler) GetDwelling(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/dwelling")()

	h.metrics.RecordAPIRequest("/api/dwelling", "GET", "200")
	h.sendJSON(w, h.profile, http.StatusOK)
}

// ListPanels handles GET /api/panels
func (h *DashboardHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/panels")()

	h.metrics.RecordAPIRequest("/api/panels", "GET", "200")
	h.sendJSON(w, panelDescriptors, http.StatusOK)
}

// GetPanel handles GET /api/panels/{panel}
func (h *DashboardHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/panels/{panel}")()

	id := mux.Vars(r)["panel"]
	panel, ok := buildPanel(h.dataset, id)
	if !ok {
		h.metrics.RecordAPIError("not_found", "/api/panels/{panel}")
		h.sendError(w, r, "/api/panels/{panel}", "unknown panel "+strconv.Quote(id), http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest("/api/panels/{panel}", "GET", "200")
	h.sendJSON(w, panel, http.StatusOK)
}

// GetSeries handles GET /api/series/{source}
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/series/{source}")()

	source := mux.Vars(r)["source"]
	series, ok := h.dataset.Series(source)
	if !ok {
		h.metrics.RecordAPIError("not_found", "/api/series/{source}")
		h.sendError(w, r, "/api/series/{source}", "unknown source "+strconv.Quote(source)+", expected indoor, outdoor or electricity", http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest("/api/series/{source}", "GET", "200")
	h.sendJSON(w, seriesResponse(source, series), http.StatusOK)
}

// GetHeatmap handles GET /api/heatmap, optionally narrowed to one day with ?day=
func (h *DashboardHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/heatmap")()

	if key := r.URL.Query().Get("day"); key != "" {
		day, ok := h.dataset.Heatmap.Day(key)
		if !ok {
			h.metrics.RecordAPIError("not_found", "/api/heatmap")
			h.sendError(w, r, "/api/heatmap", "unknown day "+strconv.Quote(key), http.StatusNotFound)
			return
		}
		h.metrics.RecordAPIRequest("/api/heatmap", "GET", "200")
		h.sendJSON(w, day, http.StatusOK)
		return
	}

	h.metrics.RecordAPIRequest("/api/heatmap", "GET", "200")
	h.sendJSON(w, h.dataset.Heatmap, http.StatusOK)
}

// GetSlider handles GET /api/slider
func (h *DashboardHandler) GetSlider(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/slider")()

	h.metrics.RecordAPIRequest("/api/slider", "GET", "200")
	h.sendJSON(w, h.window.Slider(), http.StatusOK)
}

// GetWindow handles GET /api/window?low=&high=
func (h *DashboardHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("/api/window")()

	low, err := strconv.Atoi(r.URL.Query().Get("low"))
	if err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/window")
		h.sendError(w, r, "/api/window", "low must be an integer slider position", http.StatusBadRequest)
		return
	}

	high, err := strconv.Atoi(r.URL.Query().Get("high"))
	if err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/window")
		h.sendError(w, r, "/api/window", "high must be an integer slider position", http.StatusBadRequest)
		return
	}

	state, err := h.window.Resolve(ctx, low, high)
	if err != nil {
		if errors.Is(err, services.ErrSliderOutOfRange) {
			h.metrics.RecordAPIError("bad_request", "/api/window")
			h.sendError(w, r, "/api/window", err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error(ctx, "[API_GET_WINDOW_ERROR] Failed to resolve slider", logging.Fields{
			"low":  low,
			"high": high,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/window")
		h.sendError(w, r, "/api/window", "failed to resolve window", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/window", "GET", "200")
	h.sendJSON(w, state, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":              "healthy",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"loaded_at":           h.dataset.LoadedAt.Format(time.RFC3339),
		"electricity_buckets": h.dataset.Electricity.Len(),
		"heatmap_days":        h.dataset.Heatmap.Len(),
	}

	code := http.StatusOK
	if h.health != nil {
		if err := h.health.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Database unreachable", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "unhealthy"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(context.Background(), "[API_ENCODE_ERROR] Failed to encode response", logging.Fields{}, err)
	}
}

// sendError sends an error response, counted under the route template endpoint
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dwelling", h.GetDwelling).Methods("GET")
	router.HandleFunc("/api/panels", h.ListPanels).Methods("GET")
	router.HandleFunc("/api/panels/{panel}", h.GetPanel).Methods("GET")
	router.HandleFunc("/api/series/{source}", h.GetSeries).Methods("GET")
	router.HandleFunc("/api/heatmap", h.GetHeatmap).Methods("GET")
	router.HandleFunc("/api/slider", h.GetSlider).Methods("GET")
	router.HandleFunc("/api/window", h.GetWindow).Methods("GET")
	router.HandleFunc(docsPath, h.SwaggerUI).Methods("GET")
	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
