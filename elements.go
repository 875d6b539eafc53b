package sgp4

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Elements are the mean elements at epoch, in the units SGP4 works with.
// They usually come from a TLE or an OMM, see (*TLE).Elements.
type Elements struct {
	Epoch        float64 // Julian Day, UTC
	MeanMotion   float64 // Kozai mean motion (rad/min)
	Eccentricity float64 // [0, 1)
	Inclination  float64 // rad
	RAAN         float64 // Right ascension of ascending node (rad)
	ArgOfPerigee float64 // rad
	MeanAnomaly  float64 // rad
	Bstar        float64 // Drag term (1/earth radii)
}

// elementsFromTLEUnits builds Elements from the units element sets are
// published in: degrees and revolutions per day.
func elementsFromTLEUnits(epoch, revsPerDay, ecc, incl, raan, argp, ma, bstar float64) (Elements, error) {
	if revsPerDay <= 0 {
		return Elements{}, &SGPError{msg: "mean motion must be positive"}
	}
	if ecc < 0 || ecc >= 1 {
		return Elements{}, &SGPError{msg: "eccentricity must be in [0, 1)"}
	}
	if incl < 0 || incl > 180 {
		return Elements{}, &SGPError{msg: "inclination must be in [0, 180] degrees"}
	}
	return Elements{
		Epoch:        epoch,
		MeanMotion:   RevsPerDayToRadPerMin(revsPerDay),
		Eccentricity: ecc,
		Inclination:  incl * deg2rad,
		RAAN:         raan * deg2rad,
		ArgOfPerigee: argp * deg2rad,
		MeanAnomaly:  ma * deg2rad,
		Bstar:        bstar,
	}, nil
}

// Geostationary reports whether the elements look like a station-kept
// geostationary object: about one sidereal revolution per day, inclination
// under 5 degrees and eccentricity under 0.05.
func (el Elements) Geostationary() bool {
	const (
		siderealRevsPerDay = 1.0027379093509
		revsTolerance      = 0.05
		maxInclination     = 5.0 * deg2rad
		maxEccentricity    = 0.05
	)
	revs := el.MeanMotion * minutesPerDay / twoPi
	if math.Abs(revs-siderealRevsPerDay) > revsTolerance {
		return false
	}
	return el.Inclination <= maxInclination && el.Eccentricity <= maxEccentricity
}

// MeanElements are the mean elements after the secular and, for deep-space
// orbits, lunar-solar periodic updates of the last propagation.
type MeanElements struct {
	SemiMajorAxis float64 // earth radii
	MeanMotion    float64 // rad/min
	Eccentricity  float64
	Inclination   float64 // rad
	RAAN          float64 // rad
	ArgOfPerigee  float64 // rad
	MeanAnomaly   float64 // rad
}

// Vector is a cartesian triple in the TEME working frame.
type Vector struct {
	X, Y, Z float64
}

// Norm returns the euclidean length of v.
func (v Vector) Norm() float64 {
	return floats.Norm(v.Slice(), 2)
}

// Slice returns v as a three element slice.
func (v Vector) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Scale returns v multiplied by k.
func (v Vector) Scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Period returns the orbital period in minutes for the mean motion n (rad/min).
func Period(n float64) float64 {
	return twoPi / n
}

// RevsPerDayToRadPerMin converts a TLE mean motion to rad/min.
func RevsPerDayToRadPerMin(revs float64) float64 {
	return revs / (minutesPerDay / twoPi)
}
