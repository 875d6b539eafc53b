package sgp4

import (
	"log/slog"
	"math"
)

// Propagator holds the SGP4/SDP4 state of one object. The derived constants
// are fixed at New; the current elements and the resonance integrator are
// updated by every Propagate call, so a Propagator must not be shared between
// goroutines without external locking. Use Clone to hand a copy to another one.
type Propagator struct {
	grav   GravitationalConstants
	logger *slog.Logger

	epoch float64  // Julian Day
	el0   Elements // elements at epoch, Kozai mean motion

	// Recovered ("un-Kozai") mean motion and semi-major axis
	n0 float64
	a0 float64

	algorithm Algorithm

	cosio, sinio   float64
	x3thm1, x1mth2 float64
	x7thm1         float64

	eta                        float64
	c1, c4, c5                 float64
	d2, d3, d4                 float64
	t2cof, t3cof, t4cof, t5cof float64

	// Secular rates
	xmdot, omgdot, xnodot, xnodcf float64

	omgcof, xmcof float64
	delmo, sinmo  float64
	xlcof, aycof  float64

	ds *deepSpace

	t       float64
	current MeanElements
	stats   Stats
}

// Stats counts the work done by a Propagator since New.
type Stats struct {
	Propagations     int
	IntegratorSteps  int // 720 min resonance integration steps
	IntegratorResets int // restarts of the resonance integrator from epoch
	KeplerIterations int
	KeplerCapHits    int // Kepler solves that stopped at the iteration cap
}

// New initializes a propagator from mean elements at epoch. Inputs are not
// validated: eccentricity must be in [0, 1) and mean motion positive.
func New(el Elements, opts ...Option) *Propagator {
	p := &Propagator{
		grav:   wgs72,
		logger: discardLogger,
		epoch:  el.Epoch,
		el0:    el,
	}
	for _, opt := range opts {
		opt(p)
	}

	g := p.grav
	ke := g.SqrtGM
	j2 := g.J2
	j3oj2 := g.J3OverJ2()
	j4 := g.J4
	re := g.EquatorialRadius

	ecc := el.Eccentricity
	eccsq := ecc * ecc
	omeosq := 1.0 - eccsq
	rteosq := math.Sqrt(omeosq)
	p.cosio = math.Cos(el.Inclination)
	p.sinio = math.Sin(el.Inclination)
	cosio2 := p.cosio * p.cosio

	// Recover original mean motion (n0) and semimajor axis (a0) from the
	// Kozai mean motion with two Brouwer corrections.
	ak := math.Pow(ke/el.MeanMotion, x2o3)
	d1 := 0.75 * j2 * (3.0*cosio2 - 1.0) / (rteosq * omeosq)
	del := d1 / (ak * ak)
	adel := ak * (1.0 - del*del - del*(1.0/3.0+134.0*del*del/81.0))
	del = d1 / (adel * adel)
	p.n0 = el.MeanMotion / (1.0 + del)
	p.a0 = math.Pow(ke/p.n0, x2o3)

	po := p.a0 * omeosq
	posq := po * po
	rp := p.a0 * (1.0 - ecc)
	perigee := (rp - 1.0) * re // km
	period := Period(p.n0)
	p.algorithm = selectAlgorithm(period, perigee)

	p.x3thm1 = 3.0*cosio2 - 1.0
	p.x1mth2 = 1.0 - cosio2
	p.x7thm1 = 7.0*cosio2 - 1.0
	x1m5th := 1.0 - 5.0*cosio2

	// Density function parameters, altered for perigee below 156 km
	s4 := 78.0/re + 1.0
	qoms24 := math.Pow((120.0-78.0)/re, 4)
	if perigee < densityPerigee {
		sfour := perigee - 78.0
		if perigee < lowDensityPerigee {
			sfour = 20.0
		}
		qoms24 = math.Pow((120.0-sfour)/re, 4)
		s4 = sfour/re + 1.0
	}

	pinvsq := 1.0 / posq
	tsi := 1.0 / (p.a0 - s4)
	p.eta = p.a0 * ecc * tsi
	etasq := p.eta * p.eta
	eeta := ecc * p.eta
	psisq := math.Abs(1.0 - etasq)
	coef := qoms24 * math.Pow(tsi, 4)
	coef1 := coef / math.Pow(psisq, 3.5)

	c2 := coef1 * p.n0 * (p.a0*(1.0+1.5*etasq+eeta*(4.0+etasq)) +
		0.375*j2*tsi/psisq*p.x3thm1*(8.0+3.0*etasq*(8.0+etasq)))
	p.c1 = el.Bstar * c2

	var c3 float64
	if ecc > 1.0e-4 {
		c3 = -2.0 * coef * tsi * j3oj2 * p.n0 * p.sinio / ecc
	}

	p.c4 = 2.0 * p.n0 * coef1 * p.a0 * omeosq *
		(p.eta*(2.0+0.5*etasq) + ecc*(0.5+2.0*etasq) -
			j2*tsi/(p.a0*psisq)*
				(-3.0*p.x3thm1*(1.0-2.0*eeta+etasq*(1.5-0.5*eeta))+
					0.75*p.x1mth2*(2.0*etasq-eeta*(1.0+etasq))*math.Cos(2.0*el.ArgOfPerigee)))
	p.c5 = 2.0 * coef1 * p.a0 * omeosq * (1.0 + 2.75*(etasq+eeta) + eeta*etasq)

	cosio4 := cosio2 * cosio2
	temp1 := 1.5 * j2 * pinvsq * p.n0
	temp2 := 0.5 * temp1 * j2 * pinvsq
	temp3 := -0.46875 * j4 * pinvsq * pinvsq * p.n0

	p.xmdot = p.n0 + 0.5*temp1*rteosq*p.x3thm1 +
		0.0625*temp2*rteosq*(13.0-78.0*cosio2+137.0*cosio4)
	p.omgdot = -0.5*temp1*x1m5th +
		0.0625*temp2*(7.0-114.0*cosio2+395.0*cosio4) +
		temp3*(3.0-36.0*cosio2+49.0*cosio4)
	xhdot1 := -temp1 * p.cosio
	p.xnodot = xhdot1 + (0.5*temp2*(4.0-19.0*cosio2)+
		2.0*temp3*(3.0-7.0*cosio2))*p.cosio

	p.omgcof = el.Bstar * c3 * math.Cos(el.ArgOfPerigee)
	if ecc > 1.0e-4 {
		p.xmcof = -x2o3 * coef * el.Bstar / eeta
	}
	p.xnodcf = 3.5 * omeosq * xhdot1 * p.c1
	p.t2cof = 1.5 * p.c1

	p.xlcof, p.aycof = longPeriodCoefficients(j3oj2, p.sinio, p.cosio)

	delmotemp := 1.0 + p.eta*math.Cos(el.MeanAnomaly)
	p.delmo = delmotemp * delmotemp * delmotemp
	p.sinmo = math.Sin(el.MeanAnomaly)

	switch p.algorithm {
	case DeepSpace:
		p.ds = newDeepSpace(p, eccsq)
	case NearEarth:
		c1sq := p.c1 * p.c1
		p.d2 = 4.0 * p.a0 * tsi * c1sq
		temp := p.d2 * tsi * p.c1 / 3.0
		p.d3 = (17.0*p.a0 + s4) * temp
		p.d4 = 0.5 * temp * p.a0 * tsi * (221.0*p.a0 + 31.0*s4) * p.c1
		p.t3cof = p.d2 + 2.0*c1sq
		p.t4cof = 0.25 * (3.0*p.d3 + p.c1*(12.0*p.d2+10.0*c1sq))
		p.t5cof = 0.2 * (3.0*p.d4 + 12.0*p.c1*p.d3 + 6.0*p.d2*p.d2 +
			15.0*c1sq*(2.0*p.d2+c1sq))
	case NearEarthLowPerigee:
	default:
		panic("sgp4: unknown algorithm " + p.algorithm.String())
	}

	p.current = MeanElements{
		SemiMajorAxis: p.a0,
		MeanMotion:    p.n0,
		Eccentricity:  ecc,
		Inclination:   el.Inclination,
		RAAN:          el.RAAN,
		ArgOfPerigee:  el.ArgOfPerigee,
		MeanAnomaly:   el.MeanAnomaly,
	}

	p.logger.Debug("sgp4 initialized",
		"algorithm", p.algorithm.String(),
		"resonance", p.Resonance().String(),
		"period_min", period,
		"perigee_km", perigee,
	)
	return p
}

// longPeriodCoefficients returns xlcof and aycof for the long period terms
// of the Kepler solve.
func longPeriodCoefficients(j3oj2, sinio, cosio float64) (xlcof, aycof float64) {
	den := 1.0 + cosio
	if math.Abs(cosio+1.0) <= cosInclGuard {
		den = cosInclGuard
	}
	xlcof = -0.25 * j3oj2 * sinio * (3.0 + 5.0*cosio) / den
	aycof = -0.5 * j3oj2 * sinio
	return xlcof, aycof
}

// Algorithm returns the variant selected at initialization.
func (p *Propagator) Algorithm() Algorithm { return p.algorithm }

// Resonance returns the deep-space resonance class, ResonanceNone for near-earth orbits.
func (p *Propagator) Resonance() Resonance {
	if p.ds == nil {
		return ResonanceNone
	}
	return p.ds.irez
}

// Epoch returns the element epoch as a Julian Day.
func (p *Propagator) Epoch() float64 { return p.epoch }

// Time returns the minutes since epoch of the last propagation.
func (p *Propagator) Time() float64 { return p.t }

// Elements returns the mean elements of the last propagation (epoch values
// before the first call).
func (p *Propagator) Elements() MeanElements { return p.current }

// InitialElements returns the elements the propagator was built from.
func (p *Propagator) InitialElements() Elements { return p.el0 }

// Gravity returns the Earth model in use.
func (p *Propagator) Gravity() GravitationalConstants { return p.grav }

// Stats returns the work counters.
func (p *Propagator) Stats() Stats { return p.stats }

// Clone returns an independent copy, including the resonance integrator checkpoint.
func (p *Propagator) Clone() *Propagator {
	c := *p
	if p.ds != nil {
		ds := *p.ds
		c.ds = &ds
	}
	return &c
}
