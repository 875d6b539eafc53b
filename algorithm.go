package sgp4

import "fmt"

// Algorithm is the SGP4 variant selected at initialization.
type Algorithm int

const (
	// NearEarth is the full SGP4 model, period < 225 min and perigee >= 220 km.
	NearEarth Algorithm = iota
	// NearEarthLowPerigee drops C5, D2..D4 and the delta omega / delta M terms.
	NearEarthLowPerigee
	// DeepSpace is SDP4, period >= 225 min.
	DeepSpace
)

func (a Algorithm) String() string {
	switch a {
	case NearEarth:
		return "sgp4"
	case NearEarthLowPerigee:
		return "sgp4-lowper"
	case DeepSpace:
		return "sdp4"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// truncated reports whether the variant uses the simplified drag series.
func (a Algorithm) truncated() bool {
	switch a {
	case NearEarth:
		return false
	case NearEarthLowPerigee, DeepSpace:
		return true
	}
	panic(fmt.Sprintf("sgp4: unknown algorithm %d", int(a)))
}

// selectAlgorithm classifies an orbit from its recovered period (min) and
// perigee altitude (km).
func selectAlgorithm(period, perigee float64) Algorithm {
	if period >= deepSpacePeriod {
		return DeepSpace
	}
	if perigee >= simplePerigee {
		return NearEarth
	}
	return NearEarthLowPerigee
}

// Resonance is the deep-space geopotential resonance class.
type Resonance int

const (
	ResonanceNone Resonance = iota
	// ResonanceSynchronous is the 24h (geosynchronous) band.
	ResonanceSynchronous
	// ResonanceHalfDay is the 12h band for eccentric (e >= 0.5) orbits.
	ResonanceHalfDay
)

func (r Resonance) String() string {
	switch r {
	case ResonanceNone:
		return "none"
	case ResonanceSynchronous:
		return "24h"
	case ResonanceHalfDay:
		return "12h"
	}
	return fmt.Sprintf("Resonance(%d)", int(r))
}
