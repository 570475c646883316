package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"housevalue/ml"
)

func defaultFormValues() url.Values {
	r := ml.DefaultHousingRecord()
	return url.Values{
		"longitude":          {strconv.FormatFloat(r.Longitude, 'f', -1, 64)},
		"latitude":           {strconv.FormatFloat(r.Latitude, 'f', -1, 64)},
		"housing_median_age": {"41"},
		"total_rooms":        {"880"},
		"total_bedrooms":     {"129"},
		"population":         {"322"},
		"households":         {"126"},
		"median_income":      {"8.3252"},
		"ocean_proximity":    {"NEAR BAY"},
	}
}

func postForm(handler http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func parseDocument(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestIndexRendersForm(t *testing.T) {
	handler := newTestServer(t, &fakePredictor{}, ml.PipelineInfo{Name: "test"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	doc := parseDocument(t, w)

	if n := doc.Find(`#input_form input[type="number"]`).Length(); n != 8 {
		t.Fatalf("expected 8 numeric inputs, got %d", n)
	}
	if n := doc.Find("#input_form select#ocean_proximity").Length(); n != 1 {
		t.Fatalf("expected the ocean proximity dropdown, got %d", n)
	}
	var options []string
	doc.Find("#ocean_proximity option").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		options = append(options, value)
	})
	if strings.Join(options, "|") != "<1H OCEAN|INLAND|ISLAND|NEAR BAY|NEAR OCEAN" {
		t.Fatalf("unexpected options: %v", options)
	}

	longitude := doc.Find("input#longitude")
	if min, _ := longitude.Attr("min"); min != "-124.5" {
		t.Fatalf("unexpected longitude min %q", min)
	}
	if max, _ := longitude.Attr("max"); max != "-114.1" {
		t.Fatalf("unexpected longitude max %q", max)
	}
	if value, _ := longitude.Attr("value"); value != "-119.4179" {
		t.Fatalf("unexpected longitude default %q", value)
	}
	if min, _ := doc.Find("input#households").Attr("min"); min != "1" {
		t.Fatalf("unexpected households min %q", min)
	}
	if _, ok := doc.Find("input#population").Attr("max"); ok {
		t.Fatal("population should have no max")
	}
	if doc.Find("input#show_input[type=checkbox]").Length() != 1 {
		t.Fatal("expected show input checkbox")
	}
	if doc.Find("#prediction").Length() != 0 {
		t.Fatal("no prediction expected before submit")
	}
}

func TestPredictFormRendersCurrency(t *testing.T) {
	predictor := &fakePredictor{value: 452600.4}
	handler := newTestServer(t, predictor, ml.PipelineInfo{Name: "test"})

	w := postForm(handler, defaultFormValues())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	doc := parseDocument(t, w)
	if got := doc.Find("#prediction").Text(); got != "$452,600" {
		t.Fatalf("unexpected prediction text %q", got)
	}
	if doc.Find("#input_table").Length() != 0 {
		t.Fatal("input table should be hidden unless requested")
	}
	if predictor.calls != 1 {
		t.Fatalf("expected one prediction, got %d", predictor.calls)
	}
	if predictor.records[0].OceanProximity != ml.OceanNearBay {
		t.Fatalf("unexpected record: %+v", predictor.records[0])
	}
}

func TestPredictFormShowsInputTable(t *testing.T) {
	handler := newTestServer(t, &fakePredictor{value: 1000}, ml.PipelineInfo{})
	values := defaultFormValues()
	values.Set("show_input", "1")

	doc := parseDocument(t, postForm(handler, values))
	var headers []string
	doc.Find("#input_table th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	if strings.Join(headers, ",") != strings.Join(ml.InputColumns(), ",") {
		t.Fatalf("unexpected headers: %v", headers)
	}
	if cell := doc.Find("#input_table td").Eq(8).Text(); cell != "NEAR BAY" {
		t.Fatalf("unexpected ocean_proximity cell %q", cell)
	}
	if _, ok := doc.Find("input#show_input").Attr("checked"); !ok {
		t.Fatal("checkbox should stay checked")
	}
}

func TestPredictFormBedroomsWarningDoesNotBlock(t *testing.T) {
	predictor := &fakePredictor{value: 250000}
	handler := newTestServer(t, predictor, ml.PipelineInfo{})
	values := defaultFormValues()
	values.Set("total_bedrooms", "900")

	w := postForm(handler, values)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	doc := parseDocument(t, w)
	if got := strings.TrimSpace(doc.Find(".warning").Text()); got != ml.BedroomsWarning {
		t.Fatalf("unexpected warning %q", got)
	}
	if doc.Find("#prediction").Text() != "$250,000" {
		t.Fatal("prediction should still be shown")
	}
}

func TestPredictFormRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"longitude", "-130"},
		{"latitude", "45"},
		{"households", "0"},
		{"median_income", "abc"},
		{"population", ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			predictor := &fakePredictor{value: 1}
			handler := newTestServer(t, predictor, ml.PipelineInfo{})
			values := defaultFormValues()
			values.Set(tt.field, tt.value)

			w := postForm(handler, values)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if predictor.calls != 0 {
				t.Fatal("predictor must not be called for invalid input")
			}
			doc := parseDocument(t, w)
			if doc.Find(`.field-error[data-field="` + tt.field + `"]`).Length() != 1 {
				t.Fatalf("expected an error next to %s", tt.field)
			}
			if value, _ := doc.Find("input#" + tt.field).Attr("value"); value != tt.value {
				t.Fatalf("expected submitted value to be kept, got %q", value)
			}
		})
	}
}

func TestPredictFormPredictionFailure(t *testing.T) {
	handler := newTestServer(t, &fakePredictor{err: errors.New("boom")}, ml.PipelineInfo{})
	w := postForm(handler, defaultFormValues())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Fatal("internal error details must not be rendered")
	}
}

func postJSON(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestPredictAPIEndToEnd(t *testing.T) {
	pipeline := loadShippedPipeline(t)
	cached, err := ml.NewCachedPredictor(pipeline, 16)
	if err != nil {
		t.Fatal(err)
	}
	handler := newTestServer(t, cached, pipeline.Info())

	payload, _ := json.Marshal(ml.DefaultHousingRecord())
	w := postJSON(handler, string(payload))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Prediction float64            `json:"prediction"`
		Formatted  string             `json:"formatted"`
		Warnings   []string           `json:"warnings"`
		Features   ml.AugmentedRecord `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if response.Prediction < 0 {
		t.Fatalf("expected non-negative prediction, got %v", response.Prediction)
	}
	if !currencyPattern.MatchString(response.Formatted) {
		t.Fatalf("unexpected formatted value %q", response.Formatted)
	}
	if response.Formatted != FormatCurrency(response.Prediction) {
		t.Fatalf("formatted %q does not match prediction %v", response.Formatted, response.Prediction)
	}
	if !response.Features.RoomsPerHousehold.Valid || response.Features.RoomsPerHousehold.Float64 < 6.98 || response.Features.RoomsPerHousehold.Float64 > 6.99 {
		t.Fatalf("unexpected derived features: %+v", response.Features)
	}
	if len(response.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", response.Warnings)
	}
}

func TestPredictAPIRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"longitude":`},
		{"unknown field", `{"longitude":-119,"colour":"red"}`},
		{"missing fields", `{"longitude":-119.4}`},
		{"longitude out of range", `{"longitude":-100,"latitude":36,"housing_median_age":1,"total_rooms":1,"total_bedrooms":1,"population":1,"households":1,"median_income":1,"ocean_proximity":"INLAND"}`},
		{"unknown category", `{"longitude":-119,"latitude":36,"housing_median_age":1,"total_rooms":1,"total_bedrooms":1,"population":1,"households":1,"median_income":1,"ocean_proximity":"BEACH"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := &fakePredictor{value: 1}
			handler := newTestServer(t, predictor, ml.PipelineInfo{})
			w := postJSON(handler, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if predictor.calls != 0 {
				t.Fatal("predictor must not be called for invalid input")
			}
		})
	}
}

func TestPredictAPIWarning(t *testing.T) {
	predictor := &fakePredictor{value: 123456}
	handler := newTestServer(t, predictor, ml.PipelineInfo{})
	body := `{"longitude":-119,"latitude":36,"housing_median_age":1,"total_rooms":10,"total_bedrooms":20,"population":1,"households":1,"median_income":1,"ocean_proximity":"INLAND"}`

	w := postJSON(handler, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	warnings := response["warnings"].([]interface{})
	if len(warnings) != 1 || warnings[0] != ml.BedroomsWarning {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if response["formatted"] != "$123,456" {
		t.Fatalf("unexpected formatted value: %v", response["formatted"])
	}
}
