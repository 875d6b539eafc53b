package sgp4

import (
	"fmt"
)

// SatelliteDecayedError is returned when the SGP4 model predicts the satellite has decayed.
type SatelliteDecayedError struct {
	Tsince float64 // Time since epoch in minutes when decay was detected
	Radius float64 // Final orbital radius in Earth Radii that triggered decay
}

// Error returns the error message for SatelliteDecayedError.
func (e *SatelliteDecayedError) Error() string {
	return fmt.Sprintf("SGP4: satellite has decayed (at tsince %.2f min, final orbital radius %.4f < 1.0 Earth radii)", e.Tsince, e.Radius)
}

// SGP4ModelLimitsErrorReason defines the specific reason for the model limit violation.
type SGP4ModelLimitsErrorReason string

const (
	ReasonEccentricityTooHigh     SGP4ModelLimitsErrorReason = "mean eccentricity >= 1.0"
	ReasonMeanMotionNotPositive   SGP4ModelLimitsErrorReason = "mean motion <= 0"
	ReasonSemiLatusRectumNegative SGP4ModelLimitsErrorReason = "semi-latus rectum (pl) negative"
)

// SGP4ModelLimitsError is returned when SGP4 internal mathematical limits are exceeded,
// often due to extreme orbital parameters (e.g., high drag).
type SGP4ModelLimitsError struct {
	Tsince  float64                    // Time since epoch in minutes when the limit was hit
	Reason  SGP4ModelLimitsErrorReason // The specific limit that was violated
	Value   float64                    // The value that caused the limit violation
	Message string                     // Additional message if any
}

// Error returns the error message for SGP4ModelLimitsError.
func (e *SGP4ModelLimitsError) Error() string {
	return fmt.Sprintf("SGP4 model limits exceeded at tsince %.2f min: %s (value: %.6e). %s", e.Tsince, e.Reason, e.Value, e.Message)
}

// SGPError defines a custom error type for SGP4 related errors.
type SGPError struct {
	msg string
}

func (e *SGPError) Error() string {
	return e.msg
}

// ErrUnknownGravityModel is returned by GravityModel for an unrecognized preset name.
type ErrUnknownGravityModel struct {
	Name string
}

func (e ErrUnknownGravityModel) Error() string {
	return fmt.Sprintf("sgp4: unknown gravity model %q (want wgs72 or wgs84)", e.Name)
}

// CheckElements inspects the mean elements and position radius returned by a
// propagation and reports whether the result is physically meaningful.
// The propagator itself never fails; callers that care about decayed or
// degenerate orbits opt in here. radius is in Earth radii.
func CheckElements(tsince float64, el MeanElements, radius float64) error {
	if el.MeanMotion <= 0 {
		return &SGP4ModelLimitsError{Tsince: tsince, Reason: ReasonMeanMotionNotPositive, Value: el.MeanMotion}
	}
	if el.Eccentricity >= 1.0 {
		return &SGP4ModelLimitsError{
			Tsince:  tsince,
			Reason:  ReasonEccentricityTooHigh,
			Value:   el.Eccentricity,
			Message: "drag or lunar-solar terms drove the orbit open",
		}
	}
	if pl := el.SemiMajorAxis * (1.0 - el.Eccentricity*el.Eccentricity); pl < 0.0 {
		return &SGP4ModelLimitsError{Tsince: tsince, Reason: ReasonSemiLatusRectumNegative, Value: pl}
	}
	if radius < 1.0 {
		return &SatelliteDecayedError{Tsince: tsince, Radius: radius}
	}
	return nil
}
