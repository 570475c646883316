package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"housevalue/ml"
)

// Handler serves the prediction form and API. It holds the pipeline handle built at
// startup; nothing here is package-level state.
type Handler struct {
	predictor ml.Predictor
	model     ml.PipelineInfo
	logger    *zap.Logger
}

// Dependencies are the startup-constructed services the handlers use.
type Dependencies struct {
	Predictor ml.Predictor
	Model     ml.PipelineInfo
	Logger    *zap.Logger
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Predictor == nil {
		return nil, errors.New("predictor is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{predictor: deps.Predictor, model: deps.Model, logger: logger}, nil
}

func (h *Handler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.HandleFunc("POST /api/predict", h.handlePredictAPI)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model", h.handleModelInfo)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type modelInfoResponse struct {
	ml.PipelineInfo
	RegisteredTransforms []string `json:"registered_transforms"`
}

func (h *Handler) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, modelInfoResponse{
		PipelineInfo:         h.model,
		RegisteredTransforms: ml.RegisteredTransforms(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
