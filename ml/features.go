package ml

import "math"

// ExtraFeaturesTransformKey is the registry key stored in pipeline artifacts that were
// trained on AddExtraFeatures output.
const ExtraFeaturesTransformKey = "add_extra_features@v1"

func init() {
	if err := RegisterTransform(ExtraFeaturesTransformKey, AddExtraFeatures); err != nil {
		panic(err)
	}
}

// DeriveFeatures returns a copy of r with the three ratio columns filled in.
// A zero households or total_rooms leaves the dependent ratios missing, as does a
// quotient that overflows float64.
func DeriveFeatures(r HousingRecord) AugmentedRecord {
	augmented := AugmentedRecord{HousingRecord: r}
	augmented.RoomsPerHousehold = safeRatio(r.TotalRooms, r.Households)
	augmented.PopulationPerHousehold = safeRatio(r.Population, r.Households)
	augmented.BedroomsPerRoom = safeRatio(r.TotalBedrooms, r.TotalRooms)
	return augmented
}

// AddExtraFeatures is the batch form of DeriveFeatures.
func AddExtraFeatures(records []HousingRecord) []AugmentedRecord {
	augmented := make([]AugmentedRecord, len(records))
	for i, r := range records {
		augmented[i] = DeriveFeatures(r)
	}
	return augmented
}

func safeRatio(numerator, denominator float64) NullFloat {
	if denominator == 0 {
		return NullFloat{}
	}
	ratio := numerator / denominator
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return NullFloat{}
	}
	return NewNullFloat(ratio)
}
