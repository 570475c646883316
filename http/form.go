package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"housevalue/ml"
)

// formField is one numeric input on the prediction form.
type formField struct {
	Name   string
	Label  string
	Min    string
	Max    string
	Step   string
	Value  string
	Error  string
	digits int
}

type selectOption struct {
	Value    string
	Selected bool
}

var fieldLabels = map[string]string{
	ml.ColumnLongitude:        "Longitude",
	ml.ColumnLatitude:         "Latitude",
	ml.ColumnHousingMedianAge: "Housing Median Age",
	ml.ColumnTotalRooms:       "Total Rooms",
	ml.ColumnTotalBedrooms:    "Total Bedrooms",
	ml.ColumnPopulation:       "Population",
	ml.ColumnHouseholds:       "Households",
	ml.ColumnMedianIncome:     "Median Income",
	ml.ColumnOceanProximity:   "Ocean Proximity",
}

// fourDecimals are shown and stepped at 0.0001.
var fourDecimals = map[string]bool{
	ml.ColumnLongitude:    true,
	ml.ColumnLatitude:     true,
	ml.ColumnMedianIncome: true,
}

func newFormFields(record ml.HousingRecord) []formField {
	augmented := ml.AugmentedRecord{HousingRecord: record}
	fields := make([]formField, 0, len(ml.FieldBounds()))
	for _, bound := range ml.FieldBounds() {
		field := formField{
			Name:  bound.Column,
			Label: fieldLabels[bound.Column],
			Min:   strconv.FormatFloat(bound.Min, 'f', -1, 64),
			Step:  "any",
		}
		if bound.Bounded() {
			field.Max = strconv.FormatFloat(bound.Max, 'f', -1, 64)
		}
		field.digits = -1
		if fourDecimals[bound.Column] {
			field.Step = "0.0001"
			field.digits = 4
		}
		value, _ := augmented.Column(bound.Column)
		field.Value = strconv.FormatFloat(value, 'f', field.digits, 64)
		fields = append(fields, field)
	}
	return fields
}

func newSelectOptions(selected ml.OceanProximity) []selectOption {
	options := make([]selectOption, 0, len(ml.OceanProximities()))
	for _, o := range ml.OceanProximities() {
		options = append(options, selectOption{Value: string(o), Selected: o == selected})
	}
	return options
}

// parseRecordForm reads the nine inputs. Field errors are keyed by column; raw holds
// what the user typed so the form can be re-rendered unchanged.
func parseRecordForm(values url.Values) (ml.HousingRecord, map[string]string, map[string]string) {
	var record ml.HousingRecord
	fieldErrors := make(map[string]string)
	raw := make(map[string]string)

	targets := map[string]*float64{
		ml.ColumnLongitude:        &record.Longitude,
		ml.ColumnLatitude:         &record.Latitude,
		ml.ColumnHousingMedianAge: &record.HousingMedianAge,
		ml.ColumnTotalRooms:       &record.TotalRooms,
		ml.ColumnTotalBedrooms:    &record.TotalBedrooms,
		ml.ColumnPopulation:       &record.Population,
		ml.ColumnHouseholds:       &record.Households,
		ml.ColumnMedianIncome:     &record.MedianIncome,
	}
	for column, target := range targets {
		text := strings.TrimSpace(values.Get(column))
		raw[column] = text
		if text == "" {
			fieldErrors[column] = fmt.Sprintf("%s is required", fieldLabels[column])
			continue
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			fieldErrors[column] = fmt.Sprintf("%s must be a number", fieldLabels[column])
			continue
		}
		*target = value
	}

	proximity := strings.TrimSpace(values.Get(ml.ColumnOceanProximity))
	raw[ml.ColumnOceanProximity] = proximity
	record.OceanProximity = ml.OceanProximity(proximity)
	if proximity == "" {
		fieldErrors[ml.ColumnOceanProximity] = "Ocean Proximity is required"
	}
	return record, fieldErrors, raw
}

// inputRow is one column of the echoed input table.
type inputRow struct {
	Column string
	Value  string
}

func inputTable(record ml.HousingRecord) []inputRow {
	augmented := ml.AugmentedRecord{HousingRecord: record}
	rows := make([]inputRow, 0, len(ml.InputColumns()))
	for _, column := range ml.InputColumns() {
		if column == ml.ColumnOceanProximity {
			rows = append(rows, inputRow{Column: column, Value: string(record.OceanProximity)})
			continue
		}
		value, _ := augmented.Column(column)
		rows = append(rows, inputRow{Column: column, Value: strconv.FormatFloat(value, 'f', -1, 64)})
	}
	return rows
}
