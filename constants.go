package sgp4

import (
	"math"
	"strings"
)

// Mathematical and physical constants
const (
	twoPi         = 2 * math.Pi
	deg2rad       = math.Pi / 180.0
	minutesPerDay = 1440.0
	x2o3          = 2.0 / 3.0
)

// Near-earth model thresholds
const (
	deepSpacePeriod   = 225.0 // minutes, at or above uses SDP4
	simplePerigee     = 220.0 // km, below drops the higher order drag terms
	densityPerigee    = 156.0 // km, below adjusts s and qoms2t
	lowDensityPerigee = 98.0  // km, below pins s to 20 km
	minEccentricity   = 1.0e-6
	cosInclGuard      = 1.5e-12 // 1+cos(i) floor for xlcof
)

// GravitationalConstants parameterizes the Earth model used by SGP4.
type GravitationalConstants struct {
	EquatorialRadius float64 // km
	SqrtGM           float64 // ke, sqrt(GM) in earth radii^1.5 per minute
	J2               float64
	J3               float64
	J4               float64
}

// J3OverJ2 is the J3/J2 ratio used by the long period terms.
func (g GravitationalConstants) J3OverJ2() float64 {
	return g.J3 / g.J2
}

// velocityFactor converts earth radii per (1/ke) minute to km/s.
func (g GravitationalConstants) velocityFactor() float64 {
	return g.EquatorialRadius * g.SqrtGM / 60.0
}

func newGravity(radius, mu, j2, j3, j4 float64) GravitationalConstants {
	return GravitationalConstants{
		EquatorialRadius: radius,
		SqrtGM:           60.0 / math.Sqrt(radius*radius*radius/mu),
		J2:               j2,
		J3:               j3,
		J4:               j4,
	}
}

var (
	wgs72 = newGravity(6378.135, 398600.8, 0.001082616, -0.00000253881, -0.00000165597)
	wgs84 = newGravity(6378.137, 398600.5, 0.00108262998905, -0.00000253215306, -0.00000161098761)
)

// WGS72 returns the constants the reference SGP4 test vectors were produced with.
func WGS72() GravitationalConstants { return wgs72 }

// WGS84 returns the WGS-84 aligned constants.
func WGS84() GravitationalConstants { return wgs84 }

// GravityModel looks up a preset by name ("wgs72" or "wgs84", case insensitive).
func GravityModel(name string) (GravitationalConstants, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wgs72", "wgs-72":
		return wgs72, nil
	case "wgs84", "wgs-84":
		return wgs84, nil
	}
	return GravitationalConstants{}, ErrUnknownGravityModel{Name: name}
}
