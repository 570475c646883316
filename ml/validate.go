package ml

import (
	"fmt"
	"math"
	"strings"
)

const (
	LongitudeMin = -124.5
	LongitudeMax = -114.1
	LatitudeMin  = 32.5
	LatitudeMax  = 42.1
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Field    string   `json:"field"`
	Rule     string   `json:"rule,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ValidationError carries every blocking issue found in a record.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		messages[i] = issue.Message
	}
	return "invalid record: " + strings.Join(messages, "; ")
}

type ValidationRule interface {
	Name() string
	Check(r HousingRecord) []Issue
}

// FieldBound is the accepted interval of a numeric input column. Max is +Inf when the
// column has no upper bound.
type FieldBound struct {
	Column string
	Min    float64
	Max    float64
}

func (b FieldBound) Bounded() bool {
	return !math.IsInf(b.Max, 1)
}

func FieldBounds() []FieldBound {
	unbounded := math.Inf(1)
	return []FieldBound{
		{Column: ColumnLongitude, Min: LongitudeMin, Max: LongitudeMax},
		{Column: ColumnLatitude, Min: LatitudeMin, Max: LatitudeMax},
		{Column: ColumnHousingMedianAge, Min: 0, Max: unbounded},
		{Column: ColumnTotalRooms, Min: 0, Max: unbounded},
		{Column: ColumnTotalBedrooms, Min: 0, Max: unbounded},
		{Column: ColumnPopulation, Min: 0, Max: unbounded},
		{Column: ColumnHouseholds, Min: 1, Max: unbounded},
		{Column: ColumnMedianIncome, Min: 0, Max: unbounded},
	}
}

type rangeRule struct {
	bound FieldBound
}

func (r rangeRule) Name() string {
	return "range_" + r.bound.Column
}

func (r rangeRule) Check(record HousingRecord) []Issue {
	value, _ := AugmentedRecord{HousingRecord: record}.Column(r.bound.Column)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return []Issue{{Field: r.bound.Column, Severity: SeverityError, Message: fmt.Sprintf("%s must be a finite number", r.bound.Column)}}
	}
	if value < r.bound.Min {
		return []Issue{{Field: r.bound.Column, Severity: SeverityError, Message: fmt.Sprintf("%s must be at least %g", r.bound.Column, r.bound.Min)}}
	}
	if r.bound.Bounded() && value > r.bound.Max {
		return []Issue{{Field: r.bound.Column, Severity: SeverityError, Message: fmt.Sprintf("%s must be at most %g", r.bound.Column, r.bound.Max)}}
	}
	return nil
}

type oceanProximityRule struct{}

func (oceanProximityRule) Name() string {
	return "ocean_proximity"
}

func (oceanProximityRule) Check(record HousingRecord) []Issue {
	if record.OceanProximity.Valid() {
		return nil
	}
	return []Issue{{
		Field:    ColumnOceanProximity,
		Severity: SeverityError,
		Message:  fmt.Sprintf("ocean_proximity %q is not one of the known categories", record.OceanProximity),
	}}
}

// BedroomsWarning is shown when bedrooms outnumber rooms. It never blocks a prediction.
const BedroomsWarning = "Total Bedrooms is greater than Total Rooms. Please double-check your inputs."

type bedroomsRule struct{}

func (bedroomsRule) Name() string {
	return "bedrooms_vs_rooms"
}

func (bedroomsRule) Check(record HousingRecord) []Issue {
	if record.TotalBedrooms > record.TotalRooms && record.TotalRooms > 0 {
		return []Issue{{Field: ColumnTotalBedrooms, Severity: SeverityWarning, Message: BedroomsWarning}}
	}
	return nil
}

// ratioRule rejects records whose bedrooms_per_room would overflow float64. The other
// two ratios divide by households, which is at least 1.
type ratioRule struct{}

func (ratioRule) Name() string {
	return "finite_ratios"
}

func (ratioRule) Check(record HousingRecord) []Issue {
	if record.TotalRooms == 0 || !isFinite(record.TotalRooms) || !isFinite(record.TotalBedrooms) {
		return nil
	}
	ratio := record.TotalBedrooms / record.TotalRooms
	if isFinite(ratio) {
		return nil
	}
	return []Issue{{
		Field:    ColumnTotalBedrooms,
		Severity: SeverityError,
		Message:  "total_bedrooms is too large relative to total_rooms",
	}}
}

func DefaultRules() []ValidationRule {
	rules := make([]ValidationRule, 0, len(FieldBounds())+3)
	for _, bound := range FieldBounds() {
		rules = append(rules, rangeRule{bound: bound})
	}
	rules = append(rules, oceanProximityRule{}, ratioRule{}, bedroomsRule{})
	return rules
}

// ValidateRecord applies DefaultRules. Warnings are returned even when err is nil;
// err is a *ValidationError when any rule reports an error.
func ValidateRecord(record HousingRecord) ([]Issue, error) {
	return ValidateWith(record, DefaultRules())
}

func ValidateWith(record HousingRecord, rules []ValidationRule) ([]Issue, error) {
	var warnings []Issue
	var blocking []Issue
	for _, rule := range rules {
		for _, issue := range rule.Check(record) {
			issue.Rule = rule.Name()
			if issue.Severity == SeverityWarning {
				warnings = append(warnings, issue)
			} else {
				blocking = append(blocking, issue)
			}
		}
	}
	if len(blocking) > 0 {
		return warnings, &ValidationError{Issues: blocking}
	}
	return warnings, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
