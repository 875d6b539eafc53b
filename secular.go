package sgp4

import "math"

// secular applies the secular gravity and drag updates to the epoch elements
// at t minutes, plus the deep-space secular and resonance terms when present.
// Angles in the result are reduced with a C style fmod, eccentricity is
// floored at minEccentricity.
func (p *Propagator) secular(t float64) MeanElements {
	el := p.el0

	xmdf := el.MeanAnomaly + p.xmdot*t
	argpdf := el.ArgOfPerigee + p.omgdot*t
	nodedf := el.RAAN + p.xnodot*t
	argpm := argpdf
	mm := xmdf
	t2 := t * t
	nodem := nodedf + p.xnodcf*t2
	tempa := 1.0 - p.c1*t
	tempe := el.Bstar * p.c4 * t
	templ := p.t2cof * t2

	if !p.algorithm.truncated() {
		delomg := p.omgcof * t
		delmtemp := 1.0 + p.eta*math.Cos(xmdf)
		delm := p.xmcof * (delmtemp*delmtemp*delmtemp - p.delmo)
		temp := delomg + delm
		mm = xmdf + temp
		argpm = argpdf - temp
		t3 := t2 * t
		t4 := t3 * t
		tempa = tempa - p.d2*t2 - p.d3*t3 - p.d4*t4
		tempe = tempe + el.Bstar*p.c5*(math.Sin(mm)-p.sinmo)
		templ = templ + p.t3cof*t3 + t4*(p.t4cof+t*p.t5cof)
	}

	nm := p.n0
	em := el.Eccentricity
	inclm := el.Inclination
	if p.ds != nil {
		em, inclm, nodem, argpm, mm, nm = p.deepSecular(t, em, inclm, nodem, argpm, mm)
	}

	ke := p.grav.SqrtGM
	am := math.Pow(ke/nm, x2o3) * tempa * tempa
	nm = ke / math.Pow(am, 1.5)
	em = em - tempe
	if em < minEccentricity {
		em = minEccentricity
	}
	mm = mm + p.n0*templ
	xlm := mm + argpm + nodem
	nodem = math.Mod(nodem, twoPi)
	argpm = math.Mod(argpm, twoPi)
	xlm = math.Mod(xlm, twoPi)
	mm = math.Mod(xlm-argpm-nodem, twoPi)

	return MeanElements{
		SemiMajorAxis: am,
		MeanMotion:    nm,
		Eccentricity:  em,
		Inclination:   inclm,
		RAAN:          nodem,
		ArgOfPerigee:  argpm,
		MeanAnomaly:   mm,
	}
}

// deepSecular adds the lunar-solar secular drift and, for resonant orbits,
// replaces mean motion and mean anomaly with the integrated values.
func (p *Propagator) deepSecular(t, em, inclm, nodem, argpm, mm float64) (float64, float64, float64, float64, float64, float64) {
	ds := p.ds
	em += ds.dedt * t
	inclm += ds.didt * t
	argpm += ds.domdt * t
	nodem += ds.dnodt * t
	mm += ds.dmdt * t
	nm := p.n0

	if ds.irez == ResonanceNone {
		return em, inclm, nodem, argpm, mm, nm
	}

	theta := math.Mod(ds.gsto+t*rptim, twoPi)
	xn, xl := p.integrate(t)
	switch ds.irez {
	case ResonanceSynchronous:
		mm = xl - nodem - argpm + theta
	case ResonanceHalfDay:
		mm = xl - 2.0*nodem + 2.0*theta
	}
	dndt := xn - p.n0
	nm = p.n0 + dndt
	return em, inclm, nodem, argpm, mm, nm
}

// integrate advances the resonance integrator from its checkpoint to t with
// fixed 720 minute Euler-Maclaurin steps and returns the resonant mean motion
// and mean longitude at t. The checkpoint only moves toward t, it restarts
// from epoch when t is on the other side of epoch or closer to it.
func (p *Propagator) integrate(t float64) (xn, xl float64) {
	ds := p.ds
	if ds.atime == 0.0 || t*ds.atime <= 0.0 || math.Abs(t) < math.Abs(ds.atime) {
		ds.reset(p.n0)
		p.stats.IntegratorResets++
	}

	delt := stepp
	if t <= 0.0 {
		delt = -stepp
	}

	var ft float64
	for {
		ds.xldot, ds.xndt, ds.xnddt = ds.derivatives()
		if math.Abs(t-ds.atime) < stepp {
			ft = t - ds.atime
			break
		}
		ds.xli = ds.xli + ds.xldot*delt + ds.xndt*step2
		ds.xni = ds.xni + ds.xndt*delt + ds.xnddt*step2
		ds.atime = ds.atime + delt
		p.stats.IntegratorSteps++
	}

	xn = ds.xni + ds.xndt*ft + ds.xnddt*ft*ft*0.5
	xl = ds.xli + ds.xldot*ft + ds.xndt*ft*ft*0.5
	return xn, xl
}
