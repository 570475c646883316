package ml

import (
	"errors"
	"math"
	"testing"
)

func TestValidateRecordAcceptsDefaults(t *testing.T) {
	warnings, err := ValidateRecord(DefaultHousingRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestValidateRecordRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HousingRecord)
		field  string
	}{
		{"longitude too low", func(r *HousingRecord) { r.Longitude = -124.6 }, ColumnLongitude},
		{"longitude too high", func(r *HousingRecord) { r.Longitude = -114.0 }, ColumnLongitude},
		{"latitude too low", func(r *HousingRecord) { r.Latitude = 32.4 }, ColumnLatitude},
		{"latitude too high", func(r *HousingRecord) { r.Latitude = 42.2 }, ColumnLatitude},
		{"negative age", func(r *HousingRecord) { r.HousingMedianAge = -1 }, ColumnHousingMedianAge},
		{"zero households", func(r *HousingRecord) { r.Households = 0 }, ColumnHouseholds},
		{"negative income", func(r *HousingRecord) { r.MedianIncome = -0.1 }, ColumnMedianIncome},
		{"nan rooms", func(r *HousingRecord) { r.TotalRooms = math.NaN() }, ColumnTotalRooms},
		{"unknown ocean proximity", func(r *HousingRecord) { r.OceanProximity = "COAST" }, ColumnOceanProximity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := DefaultHousingRecord()
			tt.mutate(&record)
			_, err := ValidateRecord(record)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(validationErr.Issues) != 1 || validationErr.Issues[0].Field != tt.field {
				t.Fatalf("expected one issue on %s, got %+v", tt.field, validationErr.Issues)
			}
			if validationErr.Issues[0].Rule == "" {
				t.Fatalf("expected issue to name its rule, got %+v", validationErr.Issues[0])
			}
		})
	}
}

func TestValidateRecordRejectsOverflowingRatio(t *testing.T) {
	tests := []struct {
		name     string
		rooms    float64
		bedrooms float64
	}{
		{"huge bedrooms", 0.5, 1e308},
		{"tiny rooms", 1e-320, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := DefaultHousingRecord()
			record.TotalRooms = tt.rooms
			record.TotalBedrooms = tt.bedrooms
			_, err := ValidateRecord(record)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			issue := validationErr.Issues[0]
			if len(validationErr.Issues) != 1 || issue.Field != ColumnTotalBedrooms || issue.Rule != (ratioRule{}).Name() {
				t.Fatalf("expected one finite_ratios issue, got %+v", validationErr.Issues)
			}
		})
	}
}

func TestValidateRecordBoundsAreInclusive(t *testing.T) {
	record := DefaultHousingRecord()
	record.Longitude = LongitudeMin
	record.Latitude = LatitudeMax
	record.Households = 1
	record.TotalRooms = 0
	if _, err := ValidateRecord(record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRecordBedroomsWarning(t *testing.T) {
	record := DefaultHousingRecord()
	record.TotalBedrooms = record.TotalRooms + 1
	warnings, err := ValidateRecord(record)
	if err != nil {
		t.Fatalf("warning must not block: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Message != BedroomsWarning || warnings[0].Rule != "bedrooms_vs_rooms" {
		t.Fatalf("expected bedrooms warning, got %+v", warnings)
	}

	record.TotalRooms = 0
	warnings, err = ValidateRecord(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warning when total_rooms is 0, got %+v", warnings)
	}
}
