package ml

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

type OceanProximity string

const (
	OceanUnderOneHour OceanProximity = "<1H OCEAN"
	OceanInland       OceanProximity = "INLAND"
	OceanIsland       OceanProximity = "ISLAND"
	OceanNearBay      OceanProximity = "NEAR BAY"
	OceanNearOcean    OceanProximity = "NEAR OCEAN"
)

func OceanProximities() []OceanProximity {
	return []OceanProximity{
		OceanUnderOneHour,
		OceanInland,
		OceanIsland,
		OceanNearBay,
		OceanNearOcean,
	}
}

func (o OceanProximity) Valid() bool {
	for _, known := range OceanProximities() {
		if o == known {
			return true
		}
	}
	return false
}

// HousingRecord is one block group as entered on the form. It is comparable so it can
// key the prediction cache.
type HousingRecord struct {
	Longitude        float64        `json:"longitude"`
	Latitude         float64        `json:"latitude"`
	HousingMedianAge float64        `json:"housing_median_age"`
	TotalRooms       float64        `json:"total_rooms"`
	TotalBedrooms    float64        `json:"total_bedrooms"`
	Population       float64        `json:"population"`
	Households       float64        `json:"households"`
	MedianIncome     float64        `json:"median_income"`
	OceanProximity   OceanProximity `json:"ocean_proximity"`
}

func DefaultHousingRecord() HousingRecord {
	return HousingRecord{
		Longitude:        -119.4179,
		Latitude:         36.7783,
		HousingMedianAge: 41,
		TotalRooms:       880,
		TotalBedrooms:    129,
		Population:       322,
		Households:       126,
		MedianIncome:     8.3252,
		OceanProximity:   OceanUnderOneHour,
	}
}

const (
	ColumnLongitude              = "longitude"
	ColumnLatitude               = "latitude"
	ColumnHousingMedianAge       = "housing_median_age"
	ColumnTotalRooms             = "total_rooms"
	ColumnTotalBedrooms          = "total_bedrooms"
	ColumnPopulation             = "population"
	ColumnHouseholds             = "households"
	ColumnMedianIncome           = "median_income"
	ColumnOceanProximity         = "ocean_proximity"
	ColumnRoomsPerHousehold      = "rooms_per_household"
	ColumnPopulationPerHousehold = "population_per_household"
	ColumnBedroomsPerRoom        = "bedrooms_per_room"
)

// InputColumns lists the raw record columns in training order.
func InputColumns() []string {
	return []string{
		ColumnLongitude,
		ColumnLatitude,
		ColumnHousingMedianAge,
		ColumnTotalRooms,
		ColumnTotalBedrooms,
		ColumnPopulation,
		ColumnHouseholds,
		ColumnMedianIncome,
		ColumnOceanProximity,
	}
}

func DerivedColumns() []string {
	return []string{
		ColumnRoomsPerHousehold,
		ColumnPopulationPerHousehold,
		ColumnBedroomsPerRoom,
	}
}

// AugmentedColumns is the schema the regression pipeline is trained on.
func AugmentedColumns() []string {
	return append(InputColumns(), DerivedColumns()...)
}

// NullFloat is a float that may be missing. A missing value marshals to JSON null and
// becomes NaN inside a feature vector.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

func NewNullFloat(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

func (n NullFloat) Value() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = NewNullFloat(v)
	return nil
}

// AugmentedRecord is a HousingRecord plus the derived ratio columns.
type AugmentedRecord struct {
	HousingRecord
	RoomsPerHousehold      NullFloat `json:"rooms_per_household"`
	PopulationPerHousehold NullFloat `json:"population_per_household"`
	BedroomsPerRoom        NullFloat `json:"bedrooms_per_room"`
}

// Column returns the numeric value stored under name, NaN for a missing derived value.
// ok is false for unknown or non-numeric columns.
func (a AugmentedRecord) Column(name string) (float64, bool) {
	switch name {
	case ColumnLongitude:
		return a.Longitude, true
	case ColumnLatitude:
		return a.Latitude, true
	case ColumnHousingMedianAge:
		return a.HousingMedianAge, true
	case ColumnTotalRooms:
		return a.TotalRooms, true
	case ColumnTotalBedrooms:
		return a.TotalBedrooms, true
	case ColumnPopulation:
		return a.Population, true
	case ColumnHouseholds:
		return a.Households, true
	case ColumnMedianIncome:
		return a.MedianIncome, true
	case ColumnRoomsPerHousehold:
		return a.RoomsPerHousehold.Value(), true
	case ColumnPopulationPerHousehold:
		return a.PopulationPerHousehold.Value(), true
	case ColumnBedroomsPerRoom:
		return a.BedroomsPerRoom.Value(), true
	default:
		return 0, false
	}
}
