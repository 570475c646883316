package http

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"housevalue/ml"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Fields         []formField
	Options        []selectOption
	ProximityError string
	ShowInput      bool
	Errors         []string
	Warnings       []string
	Formatted      string
	InputRows      []inputRow
	ModelName      string
	RegressorType  string
	Transform      string
}

func (h *Handler) newPage(record ml.HousingRecord) pageData {
	return pageData{
		Fields:        newFormFields(record),
		Options:       newSelectOptions(record.OceanProximity),
		ModelName:     h.model.Name,
		RegressorType: h.model.RegressorType,
		Transform:     h.model.FeatureTransform,
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, h.newPage(ml.DefaultHousingRecord()))
}

func (h *Handler) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	record, fieldErrors, raw := parseRecordForm(r.PostForm)
	page := h.newPage(record)
	page.ShowInput = r.PostForm.Get("show_input") != ""
	for i := range page.Fields {
		page.Fields[i].Value = raw[page.Fields[i].Name]
	}

	if len(fieldErrors) == 0 {
		warnings, err := ml.ValidateRecord(record)
		for _, warning := range warnings {
			page.Warnings = append(page.Warnings, warning.Message)
		}
		var validationErr *ml.ValidationError
		if errors.As(err, &validationErr) {
			for _, issue := range validationErr.Issues {
				fieldErrors[issue.Field] = issue.Message
			}
		}
	}
	if len(fieldErrors) > 0 {
		for i := range page.Fields {
			page.Fields[i].Error = fieldErrors[page.Fields[i].Name]
		}
		page.ProximityError = fieldErrors[ml.ColumnOceanProximity]
		page.Warnings = nil
		page.Errors = []string{"Please correct the highlighted inputs."}
		h.renderPage(w, r, http.StatusBadRequest, page)
		return
	}

	h.logWarnings(r, page.Warnings)
	prediction, err := h.predictor.Predict(r.Context(), record)
	if err != nil {
		h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		page.Errors = []string{"Prediction failed. Please try again later."}
		h.renderPage(w, r, http.StatusInternalServerError, page)
		return
	}

	page.Formatted = FormatCurrency(prediction)
	if page.ShowInput {
		page.InputRows = inputTable(record)
	}
	h.renderPage(w, r, http.StatusOK, page)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, page); err != nil {
		h.logger.Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	}
}

// predictRequest uses pointers so absent fields can be told apart from zeros.
type predictRequest struct {
	Longitude        *float64 `json:"longitude"`
	Latitude         *float64 `json:"latitude"`
	HousingMedianAge *float64 `json:"housing_median_age"`
	TotalRooms       *float64 `json:"total_rooms"`
	TotalBedrooms    *float64 `json:"total_bedrooms"`
	Population       *float64 `json:"population"`
	Households       *float64 `json:"households"`
	MedianIncome     *float64 `json:"median_income"`
	OceanProximity   *string  `json:"ocean_proximity"`
}

func (req predictRequest) record() (ml.HousingRecord, []ml.Issue) {
	var record ml.HousingRecord
	var issues []ml.Issue
	numeric := []struct {
		column string
		src    *float64
		dst    *float64
	}{
		{ml.ColumnLongitude, req.Longitude, &record.Longitude},
		{ml.ColumnLatitude, req.Latitude, &record.Latitude},
		{ml.ColumnHousingMedianAge, req.HousingMedianAge, &record.HousingMedianAge},
		{ml.ColumnTotalRooms, req.TotalRooms, &record.TotalRooms},
		{ml.ColumnTotalBedrooms, req.TotalBedrooms, &record.TotalBedrooms},
		{ml.ColumnPopulation, req.Population, &record.Population},
		{ml.ColumnHouseholds, req.Households, &record.Households},
		{ml.ColumnMedianIncome, req.MedianIncome, &record.MedianIncome},
	}
	for _, field := range numeric {
		if field.src == nil {
			issues = append(issues, missingIssue(field.column))
			continue
		}
		*field.dst = *field.src
	}
	if req.OceanProximity == nil {
		issues = append(issues, missingIssue(ml.ColumnOceanProximity))
	} else {
		record.OceanProximity = ml.OceanProximity(*req.OceanProximity)
	}
	return record, issues
}

func missingIssue(column string) ml.Issue {
	return ml.Issue{Field: column, Severity: ml.SeverityError, Message: column + " is required"}
}

type predictResponse struct {
	Prediction float64            `json:"prediction"`
	Formatted  string             `json:"formatted"`
	Warnings   []string           `json:"warnings"`
	Features   ml.AugmentedRecord `json:"features"`
}

type errorResponse struct {
	Error  string     `json:"error"`
	Issues []ml.Issue `json:"issues,omitempty"`
}

func (h *Handler) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	record, issues := req.record()
	if len(issues) > 0 {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "missing fields", Issues: issues})
		return
	}
	warnings, err := ml.ValidateRecord(record)
	var validationErr *ml.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid record", Issues: validationErr.Issues})
		return
	}

	messages := make([]string, 0, len(warnings))
	for _, warning := range warnings {
		messages = append(messages, warning.Message)
	}
	h.logWarnings(r, messages)

	prediction, err := h.predictor.Predict(r.Context(), record)
	if err != nil {
		h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
		return
	}

	respondJSON(w, http.StatusOK, predictResponse{
		Prediction: prediction,
		Formatted:  FormatCurrency(prediction),
		Warnings:   messages,
		Features:   ml.DeriveFeatures(record),
	})
}

func (h *Handler) logWarnings(r *http.Request, warnings []string) {
	for _, warning := range warnings {
		h.logger.Warn("input sanity check", zap.String("request_id", GetRequestID(r.Context())), zap.String("warning", warning))
	}
}
