package domain

import "math"

// RainyThreshold is the daily precipitation (mm) a day must exceed to count as Wet.
const RainyThreshold = 0.1

// PrecipitationState is the wet/dry label of a day.
type PrecipitationState string

const (
	Wet PrecipitationState = "wet"
	Dry PrecipitationState = "dry"
)

// ClassifyPrecipitation applies the strict > 0.1 mm rule. Missing values are Dry.
func ClassifyPrecipitation(mm float64) PrecipitationState {
	if !math.IsNaN(mm) && mm > RainyThreshold {
		return Wet
	}
	return Dry
}
