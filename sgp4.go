package sgp4

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// Eci is a propagated state in the TEME frame.
type Eci struct {
	DateTime time.Time
	Position Vector // km
	Velocity Vector // km/s
}

// Propagate advances the propagator to t minutes from epoch (negative t
// propagates backward) and returns the TEME position in km and velocity in
// km/s. It never fails: a decayed or degenerate orbit yields meaningless or
// NaN values, see CheckElements.
//
// Deep-space resonant orbits keep an integrator checkpoint between calls, so
// propagating in increasing |t| order on one side of epoch is cheapest.
func (p *Propagator) Propagate(t float64) (position, velocity Vector) {
	el := p.secular(t)
	am := el.SemiMajorAxis
	nm := el.MeanMotion

	ep := el.Eccentricity
	xincp := el.Inclination
	nodep := el.RAAN
	argpp := el.ArgOfPerigee
	mp := el.MeanAnomaly
	sinip := math.Sin(xincp)
	cosip := math.Cos(xincp)
	x3thm1, x1mth2, x7thm1 := p.x3thm1, p.x1mth2, p.x7thm1
	xlcof, aycof := p.xlcof, p.aycof

	if p.ds != nil {
		ep, xincp, nodep, argpp, mp = p.ds.periodics(t, ep, xincp, nodep, argpp, mp)
		if xincp < 0.0 {
			xincp = -xincp
			nodep = nodep + math.Pi
			argpp = argpp - math.Pi
		}
		if ep < minEccentricity {
			ep = minEccentricity
		}
		sinip = math.Sin(xincp)
		cosip = math.Cos(xincp)
		xlcof, aycof = longPeriodCoefficients(p.grav.J3OverJ2(), sinip, cosip)
		cosisq := cosip * cosip
		x3thm1 = 3.0*cosisq - 1.0
		x1mth2 = 1.0 - cosisq
		x7thm1 = 7.0*cosisq - 1.0
	}

	p.t = t
	p.current = MeanElements{
		SemiMajorAxis: am,
		MeanMotion:    nm,
		Eccentricity:  ep,
		Inclination:   xincp,
		RAAN:          nodep,
		ArgOfPerigee:  argpp,
		MeanAnomaly:   mp,
	}

	// Long period periodics
	axnl := ep * math.Cos(argpp)
	temp := 1.0 / (am * (1.0 - ep*ep))
	aynl := ep*math.Sin(argpp) + temp*aycof
	xl := mp + argpp + nodep + temp*xlcof*axnl

	u := math.Mod(xl-nodep, twoPi)
	kep := solveKepler(u, axnl, aynl)
	p.stats.Propagations++
	p.stats.KeplerIterations += kep.iterations
	if !kep.converged {
		p.stats.KeplerCapHits++
		p.logger.Debug("kepler solve hit iteration cap", "tsince", t, "ecc", ep, "iterations", kep.iterations)
	}
	sineo1 := kep.sin
	coseo1 := kep.cos

	// Short period preliminary quantities
	ecose := axnl*coseo1 + aynl*sineo1
	esine := axnl*sineo1 - aynl*coseo1
	el2 := axnl*axnl + aynl*aynl
	pl := am * (1.0 - el2)
	rl := am * (1.0 - ecose)
	rdotl := math.Sqrt(am) * esine / rl
	rvdotl := math.Sqrt(pl) / rl
	betal := math.Sqrt(1.0 - el2)
	temp = esine / (1.0 + betal)
	sinu := am / rl * (sineo1 - aynl - axnl*temp)
	cosu := am / rl * (coseo1 - axnl + aynl*temp)
	su := math.Atan2(sinu, cosu)
	sin2u := (cosu + cosu) * sinu
	cos2u := 1.0 - 2.0*sinu*sinu
	temp = 1.0 / pl
	temp1 := 0.5 * p.grav.J2 * temp
	temp2 := temp1 * temp

	// Short period periodics
	ke := p.grav.SqrtGM
	mrt := rl*(1.0-1.5*temp2*betal*x3thm1) + 0.5*temp1*x1mth2*cos2u
	su = su - 0.25*temp2*x7thm1*sin2u
	xnode := nodep + 1.5*temp2*cosip*sin2u
	xinc := xincp + 1.5*temp2*cosip*sinip*cos2u
	mvt := rdotl - nm*temp1*x1mth2*sin2u/ke
	rvdot := rvdotl + nm*temp1*(x1mth2*cos2u+1.5*x3thm1)/ke

	// Orientation vectors
	sinsu := math.Sin(su)
	cossu := math.Cos(su)
	snod := math.Sin(xnode)
	cnod := math.Cos(xnode)
	sini := math.Sin(xinc)
	cosi := math.Cos(xinc)
	xmx := -snod * cosi
	xmy := cnod * cosi
	ux := xmx*sinsu + cnod*cossu
	uy := xmy*sinsu + snod*cossu
	uz := sini * sinsu
	vx := xmx*cossu - cnod*sinsu
	vy := xmy*cossu - snod*sinsu
	vz := sini * cossu

	re := p.grav.EquatorialRadius
	vkmpersec := p.grav.velocityFactor()
	position = Vector{X: mrt * ux, Y: mrt * uy, Z: mrt * uz}.Scale(re)
	velocity = Vector{
		X: mvt*ux + rvdot*vx,
		Y: mvt*uy + rvdot*vy,
		Z: mvt*uz + rvdot*vz,
	}.Scale(vkmpersec)
	return position, velocity
}

// PropagateChecked propagates like Propagate and validates the result with
// CheckElements.
func (p *Propagator) PropagateChecked(t float64) (Vector, Vector, error) {
	pos, vel := p.Propagate(t)
	if err := CheckElements(t, p.current, pos.Norm()/p.grav.EquatorialRadius); err != nil {
		return pos, vel, err
	}
	return pos, vel, nil
}

// FindPosition propagates the TLE to the given time offset (tsince) in
// minutes with the WGS72 model.
func (tle *TLE) FindPosition(tsince float64) (Eci, error) {
	p, err := tle.NewPropagator()
	if err != nil {
		return Eci{}, errors.Wrap(err, "SGP4 propagation error during initialization")
	}
	pos, vel, err := p.PropagateChecked(tsince)
	if err != nil {
		return Eci{}, err
	}
	return Eci{
		DateTime: tle.EpochTime().Add(time.Duration(tsince * float64(time.Minute))),
		Position: pos,
		Velocity: vel,
	}, nil
}

// FindPositionAtTime propagates the TLE to a specific absolute time.
func (tle *TLE) FindPositionAtTime(t time.Time) (Eci, error) {
	tsince := t.Sub(tle.EpochTime()).Minutes()
	return tle.FindPosition(tsince)
}
