package sgp4

import "math"

// Solar and lunar perturbation constants
const (
	zes    = 0.01675      // solar eccentricity
	zel    = 0.05490      // lunar eccentricity
	c1ss   = 2.9864797e-6 // solar perturbation coefficient
	c1l    = 4.7968065e-7 // lunar perturbation coefficient
	zsinis = 0.39785416
	zcosis = 0.91744867
	zcosgs = 0.1945905
	zsings = -0.98088458
	zns    = 1.19459e-5   // solar mean motion (rad/min)
	znl    = 1.5835218e-4 // lunar mean motion (rad/min)

	// Days between JD 2415020.0 (1900 Jan 0.5) and the element epoch drive
	// the lunar and solar mean arguments.
	jd1900 = 2415020.0
)

// Geopotential resonance constants
const (
	q22    = 1.7891679e-6
	q31    = 2.1460748e-6
	q33    = 2.2123015e-7
	root22 = 1.7891679e-6
	root32 = 3.7393792e-7
	root44 = 7.3636953e-9
	root52 = 1.1428639e-7
	root54 = 2.1765803e-9
	rptim  = 4.37526908801129966e-3 // earth rotation rate (rad/min)

	fasx2 = 0.13130908
	fasx4 = 2.8843198
	fasx6 = 0.37448087
	g22   = 5.7686396
	g32   = 0.95240898
	g44   = 1.8014998
	g52   = 1.0508330
	g54   = 4.4108898

	stepp = 720.0              // resonance integration step (min)
	step2 = stepp * stepp / 2.0 // 259200
)

// Resonance bands and inclination thresholds. These reproduce the reference
// SDP4 branches exactly and must not be rounded.
const (
	syncBandLow        = 0.0034906585 // rad/min, ~30 h period
	syncBandHigh       = 0.0052359877 // rad/min, ~20 h period
	halfDayBandLow     = 8.26e-3      // rad/min
	halfDayBandHigh    = 9.24e-3      // rad/min
	halfDayMinEcc      = 0.5
	lowInclination     = 5.2359877e-2 // 3 deg, node terms dropped below
	lyddaneInclination = 0.2          // rad, Lyddane form below
	sinInclEpsilon     = 1.0e-12
)

// thirdBody holds the periodic amplitudes of the Sun or the Moon acting on
// one orbit, plus the body's mean anomaly at epoch, mean motion and eccentricity.
type thirdBody struct {
	e2, e3        float64
	i2, i3        float64
	l2, l3, l4    float64
	gh2, gh3, gh4 float64
	h2, h3        float64

	zmo, zn, ze float64
}

// at evaluates the periodic corrections to e, i, L, omega+h*cos(i) and h at t minutes.
func (b *thirdBody) at(t float64) (pe, pinc, pl, pgh, ph float64) {
	zm := b.zmo + b.zn*t
	zf := zm + 2.0*b.ze*math.Sin(zm)
	sinzf := math.Sin(zf)
	f2 := 0.5*sinzf*sinzf - 0.25
	f3 := -0.5 * sinzf * math.Cos(zf)
	pe = b.e2*f2 + b.e3*f3
	pinc = b.i2*f2 + b.i3*f3
	pl = b.l2*f2 + b.l3*f3 + b.l4*sinzf
	pgh = b.gh2*f2 + b.gh3*f3 + b.gh4*sinzf
	ph = b.h2*f2 + b.h3*f3
	return
}

// orbitGeometry is the part of the orbit the third-body terms depend on.
type orbitGeometry struct {
	em, emsq, betasq, rtemsq float64
	sinim, cosim             float64
	sinomm, cosomm           float64
	nm                       float64
}

// bodyTerms are the intermediate s and z coefficients of one perturbing body.
type bodyTerms struct {
	s1, s2, s3, s4, s5, s6, s7 float64
	z1, z2, z3                 float64
	z11, z12, z13              float64
	z21, z22, z23              float64
	z31, z32, z33              float64
}

// terms projects one perturbing body, given its perturbation coefficient and
// orbit orientation (argument g, inclination i, node h), onto the orbit.
func (o orbitGeometry) terms(cc, zcosg, zsing, zcosi, zsini, zcosh, zsinh float64) bodyTerms {
	a1 := zcosg*zcosh + zsing*zcosi*zsinh
	a3 := -zsing*zcosh + zcosg*zcosi*zsinh
	a7 := -zcosg*zsinh + zsing*zcosi*zcosh
	a8 := zsing * zsini
	a9 := zsing*zsinh + zcosg*zcosi*zcosh
	a10 := zcosg * zsini
	a2 := o.cosim*a7 + o.sinim*a8
	a4 := o.cosim*a9 + o.sinim*a10
	a5 := -o.sinim*a7 + o.cosim*a8
	a6 := -o.sinim*a9 + o.cosim*a10

	x1 := a1*o.cosomm + a2*o.sinomm
	x2 := a3*o.cosomm + a4*o.sinomm
	x3 := -a1*o.sinomm + a2*o.cosomm
	x4 := -a3*o.sinomm + a4*o.cosomm
	x5 := a5 * o.sinomm
	x6 := a6 * o.sinomm
	x7 := a5 * o.cosomm
	x8 := a6 * o.cosomm

	emsq := o.emsq
	var b bodyTerms
	b.z31 = 12.0*x1*x1 - 3.0*x3*x3
	b.z32 = 24.0*x1*x2 - 6.0*x3*x4
	b.z33 = 12.0*x2*x2 - 3.0*x4*x4
	b.z1 = 3.0*(a1*a1+a2*a2) + b.z31*emsq
	b.z2 = 6.0*(a1*a3+a2*a4) + b.z32*emsq
	b.z3 = 3.0*(a3*a3+a4*a4) + b.z33*emsq
	b.z11 = -6.0*a1*a5 + emsq*(-24.0*x1*x7-6.0*x3*x5)
	b.z12 = -6.0*(a1*a6+a3*a5) + emsq*(-24.0*(x2*x7+x1*x8)-6.0*(x3*x6+x4*x5))
	b.z13 = -6.0*a3*a6 + emsq*(-24.0*x2*x8-6.0*x4*x6)
	b.z21 = 6.0*a2*a5 + emsq*(24.0*x1*x5-6.0*x3*x7)
	b.z22 = 6.0*(a4*a5+a2*a6) + emsq*(24.0*(x2*x5+x1*x6)-6.0*(x4*x7+x3*x8))
	b.z23 = 6.0*a4*a6 + emsq*(24.0*x2*x6-6.0*x4*x8)
	b.z1 = b.z1 + b.z1 + o.betasq*b.z31
	b.z2 = b.z2 + b.z2 + o.betasq*b.z32
	b.z3 = b.z3 + b.z3 + o.betasq*b.z33
	b.s3 = cc * (1.0 / o.nm)
	b.s2 = -0.5 * b.s3 / o.rtemsq
	b.s4 = b.s3 * o.rtemsq
	b.s1 = -15.0 * o.em * b.s4
	b.s5 = x1*x3 + x2*x4
	b.s6 = x2*x3 + x1*x4
	b.s7 = x2*x4 - x1*x3
	return b
}

// periodic turns the s and z coefficients into periodic amplitudes.
func (b bodyTerms) periodic(emsq, ze, zn, zmo float64) thirdBody {
	return thirdBody{
		e2:  2.0 * b.s1 * b.s6,
		e3:  2.0 * b.s1 * b.s7,
		i2:  2.0 * b.s2 * b.z12,
		i3:  2.0 * b.s2 * (b.z13 - b.z11),
		l2:  -2.0 * b.s3 * b.z2,
		l3:  -2.0 * b.s3 * (b.z3 - b.z1),
		l4:  -2.0 * b.s3 * (-21.0 - 9.0*emsq) * ze,
		gh2: 2.0 * b.s4 * b.z32,
		gh3: 2.0 * b.s4 * (b.z33 - b.z31),
		gh4: -18.0 * b.s4 * ze,
		h2:  -2.0 * b.s2 * b.z22,
		h3:  -2.0 * b.s2 * (b.z23 - b.z21),
		zmo: zmo,
		zn:  zn,
		ze:  ze,
	}
}

// deepSpace is the SDP4 state: lunar-solar secular rates and periodic
// amplitudes, the resonance class with its coefficients, and the resonance
// integrator checkpoint.
type deepSpace struct {
	gsto float64 // GMST at epoch (rad)

	sun, moon thirdBody

	dedt, didt, dmdt, domdt, dnodt float64

	irez Resonance

	// 24h resonance
	del1, del2, del3 float64
	// 12h resonance
	d2201, d2211, d3210, d3222, d4410 float64
	d4422, d5220, d5232, d5421, d5433 float64

	xfact, xlamo float64

	// Integrator checkpoint
	atime, xli, xni    float64
	xldot, xndt, xnddt float64

	// Epoch argument of perigee and its rate, for the 12h terms
	argpo, argpdot float64
}

func newDeepSpace(p *Propagator, eccsq float64) *deepSpace {
	el := p.el0
	ds := &deepSpace{
		gsto:    greenwichSiderealTime(p.epoch),
		argpo:   el.ArgOfPerigee,
		argpdot: p.omgdot,
	}

	orb := orbitGeometry{
		em:     el.Eccentricity,
		emsq:   eccsq,
		betasq: 1.0 - eccsq,
		sinim:  p.sinio,
		cosim:  p.cosio,
		sinomm: math.Sin(el.ArgOfPerigee),
		cosomm: math.Cos(el.ArgOfPerigee),
		nm:     p.n0,
	}
	orb.rtemsq = math.Sqrt(orb.betasq)
	snodm := math.Sin(el.RAAN)
	cnodm := math.Cos(el.RAAN)

	// Lunar orbit geometry at epoch
	day := p.epoch - jd1900
	xnodce := math.Mod(4.5236020-9.2422029e-4*day, twoPi)
	stem := math.Sin(xnodce)
	ctem := math.Cos(xnodce)
	zcosil := 0.91375164 - 0.03568096*ctem
	zsinil := math.Sqrt(1.0 - zcosil*zcosil)
	zsinhl := 0.089683511 * stem / zsinil
	zcoshl := math.Sqrt(1.0 - zsinhl*zsinhl)
	gam := 5.8351514 + 0.0019443680*day
	zx := 0.39785416 * stem / zsinil
	zy := zcoshl*ctem + 0.91744867*zsinhl*stem
	zx = math.Atan2(zx, zy)
	zx = gam + zx - xnodce
	zcosgl := math.Cos(zx)
	zsingl := math.Sin(zx)

	sun := orb.terms(c1ss, zcosgs, zsings, zcosis, zsinis, cnodm, snodm)
	moon := orb.terms(c1l, zcosgl, zsingl, zcosil, zsinil,
		zcoshl*cnodm+zsinhl*snodm, snodm*zcoshl-cnodm*zsinhl)

	ds.sun = sun.periodic(eccsq, zes, zns, math.Mod(6.2565837+0.017201977*day, twoPi))
	ds.moon = moon.periodic(eccsq, zel, znl, math.Mod(4.7199672+0.22997150*day-gam, twoPi))

	ds.secularRates(orb, sun, moon, el.Inclination)
	ds.initResonance(p, orb)
	return ds
}

// secularRates computes the lunar-solar secular drift of e, i, M, omega and node.
func (ds *deepSpace) secularRates(orb orbitGeometry, sun, moon bodyTerms, incl float64) {
	emsq := orb.emsq
	cosim := orb.cosim
	sinim := orb.sinim
	if math.Abs(sinim) < sinInclEpsilon {
		sinim = math.Copysign(sinInclEpsilon, sinim)
	}
	polar := incl < lowInclination || incl > math.Pi-lowInclination

	ses := sun.s1 * zns * sun.s5
	sis := sun.s2 * zns * (sun.z11 + sun.z13)
	sls := -zns * sun.s3 * (sun.z1 + sun.z3 - 14.0 - 6.0*emsq)
	sghs := sun.s4 * zns * (sun.z31 + sun.z33 - 6.0)
	shs := -zns * sun.s2 * (sun.z21 + sun.z23)
	if polar {
		shs = 0.0
	}
	shs = shs / sinim
	sgs := sghs - cosim*shs

	ds.dedt = ses + moon.s1*znl*moon.s5
	ds.didt = sis + moon.s2*znl*(moon.z11+moon.z13)
	ds.dmdt = sls - znl*moon.s3*(moon.z1+moon.z3-14.0-6.0*emsq)
	sghl := moon.s4 * znl * (moon.z31 + moon.z33 - 6.0)
	shll := -znl * moon.s2 * (moon.z21 + moon.z23)
	if polar {
		shll = 0.0
	}
	ds.domdt = sgs + sghl
	ds.dnodt = shs
	ds.domdt = ds.domdt - cosim/sinim*shll
	ds.dnodt = ds.dnodt + shll/sinim
}

// classifyResonance returns the resonance class for a recovered mean motion
// (rad/min) and eccentricity.
func classifyResonance(nm, em float64) Resonance {
	switch {
	case nm > syncBandLow && nm < syncBandHigh:
		return ResonanceSynchronous
	case nm >= halfDayBandLow && nm <= halfDayBandHigh && em >= halfDayMinEcc:
		return ResonanceHalfDay
	}
	return ResonanceNone
}

// initResonance classifies the resonance and seeds the integrator.
func (ds *deepSpace) initResonance(p *Propagator, orb orbitGeometry) {
	nm := p.n0
	em := orb.em
	ds.irez = classifyResonance(nm, em)
	if ds.irez == ResonanceNone {
		return
	}

	el := p.el0
	theta := math.Mod(ds.gsto, twoPi)
	sinim := orb.sinim
	cosim := orb.cosim
	emsq := orb.emsq
	aonv := math.Pow(nm/p.grav.SqrtGM, x2o3)

	switch ds.irez {
	case ResonanceHalfDay:
		cosisq := cosim * cosim
		eoc := em * emsq
		g201 := -0.306 - (em-0.64)*0.440

		var g211, g310, g322, g410, g422, g520, g521, g532, g533 float64
		if em <= 0.65 {
			g211 = 3.616 - 13.2470*em + 16.2900*emsq
			g310 = -19.302 + 117.3900*em - 228.4190*emsq + 156.5910*eoc
			g322 = -18.9068 + 109.7927*em - 214.6334*emsq + 146.5816*eoc
			g410 = -41.122 + 242.6940*em - 471.0940*emsq + 313.9530*eoc
			g422 = -146.407 + 841.8800*em - 1629.014*emsq + 1083.4350*eoc
			g520 = -532.114 + 3017.977*em - 5740.032*emsq + 3708.2760*eoc
		} else {
			g211 = -72.099 + 331.819*em - 508.738*emsq + 266.724*eoc
			g310 = -346.844 + 1582.851*em - 2415.925*emsq + 1246.113*eoc
			g322 = -342.585 + 1554.908*em - 2366.899*emsq + 1215.972*eoc
			g410 = -1052.797 + 4758.686*em - 7193.992*emsq + 3651.957*eoc
			g422 = -3581.690 + 16178.110*em - 24462.770*emsq + 12422.520*eoc
			if em > 0.715 {
				g520 = -5149.66 + 29936.92*em - 54087.36*emsq + 31324.56*eoc
			} else {
				g520 = 1464.74 - 4664.75*em + 3763.64*emsq
			}
		}
		if em < 0.7 {
			g533 = -919.22770 + 4988.6100*em - 9064.7700*emsq + 5542.21*eoc
			g521 = -822.71072 + 4568.6173*em - 8491.4146*emsq + 5337.524*eoc
			g532 = -853.66600 + 4690.2500*em - 8624.7700*emsq + 5341.4*eoc
		} else {
			g533 = -37995.780 + 161616.52*em - 229838.20*emsq + 109377.94*eoc
			g521 = -51752.104 + 218913.95*em - 309468.16*emsq + 146349.42*eoc
			g532 = -40023.880 + 170470.89*em - 242699.48*emsq + 115605.82*eoc
		}

		sini2 := sinim * sinim
		f220 := 0.75 * (1.0 + 2.0*cosim + cosisq)
		f221 := 1.5 * sini2
		f321 := 1.875 * sinim * (1.0 - 2.0*cosim - 3.0*cosisq)
		f322 := -1.875 * sinim * (1.0 + 2.0*cosim - 3.0*cosisq)
		f441 := 35.0 * sini2 * f220
		f442 := 39.3750 * sini2 * sini2
		f522 := 9.84375 * sinim * (sini2*(1.0-2.0*cosim-5.0*cosisq) +
			0.33333333*(-2.0+4.0*cosim+6.0*cosisq))
		f523 := sinim * (4.92187512*sini2*(-2.0-4.0*cosim+10.0*cosisq) +
			6.56250012*(1.0+2.0*cosim-3.0*cosisq))
		f542 := 29.53125 * sinim * (2.0 - 8.0*cosim + cosisq*(-12.0+8.0*cosim+10.0*cosisq))
		f543 := 29.53125 * sinim * (-2.0 - 8.0*cosim + cosisq*(12.0+8.0*cosim-10.0*cosisq))

		xno2 := nm * nm
		ainv2 := aonv * aonv
		temp1 := 3.0 * xno2 * ainv2
		temp := temp1 * root22
		ds.d2201 = temp * f220 * g201
		ds.d2211 = temp * f221 * g211
		temp1 = temp1 * aonv
		temp = temp1 * root32
		ds.d3210 = temp * f321 * g310
		ds.d3222 = temp * f322 * g322
		temp1 = temp1 * aonv
		temp = 2.0 * temp1 * root44
		ds.d4410 = temp * f441 * g410
		ds.d4422 = temp * f442 * g422
		temp1 = temp1 * aonv
		temp = temp1 * root52
		ds.d5220 = temp * f522 * g520
		ds.d5232 = temp * f523 * g532
		temp = 2.0 * temp1 * root54
		ds.d5421 = temp * f542 * g521
		ds.d5433 = temp * f543 * g533

		ds.xlamo = math.Mod(el.MeanAnomaly+el.RAAN+el.RAAN-theta-theta, twoPi)
		ds.xfact = p.xmdot + ds.dmdt + 2.0*(p.xnodot+ds.dnodt-rptim) - p.n0

	case ResonanceSynchronous:
		g200 := 1.0 + emsq*(-2.5+0.8125*emsq)
		g310 := 1.0 + 2.0*emsq
		g300 := 1.0 + emsq*(-6.0+6.60937*emsq)
		f220 := 0.75 * (1.0 + cosim) * (1.0 + cosim)
		f311 := 0.9375*sinim*sinim*(1.0+3.0*cosim) - 0.75*(1.0+cosim)
		f330 := 1.0 + cosim
		f330 = 1.875 * f330 * f330 * f330
		ds.del1 = 3.0 * nm * nm * aonv * aonv
		ds.del2 = 2.0 * ds.del1 * f220 * g200 * q22
		ds.del3 = 3.0 * ds.del1 * f330 * g300 * q33 * aonv
		ds.del1 = ds.del1 * f311 * g310 * q31 * aonv

		xpidot := p.omgdot + p.xnodot
		ds.xlamo = math.Mod(el.MeanAnomaly+el.RAAN+el.ArgOfPerigee-theta, twoPi)
		ds.xfact = p.xmdot + xpidot - rptim + ds.dmdt + ds.domdt + ds.dnodt - p.n0
	}

	ds.reset(p.n0)
}

// reset puts the integrator back at epoch.
func (ds *deepSpace) reset(n0 float64) {
	ds.atime = 0.0
	ds.xni = n0
	ds.xli = ds.xlamo
	ds.xldot, ds.xndt, ds.xnddt = ds.derivatives()
}

// derivatives evaluates the resonance equations at the checkpoint: the mean
// longitude rate, the mean motion rate and its time derivative.
func (ds *deepSpace) derivatives() (xldot, xndt, xnddt float64) {
	xli := ds.xli
	xldot = ds.xni + ds.xfact
	switch ds.irez {
	case ResonanceSynchronous:
		xndt = ds.del1*math.Sin(xli-fasx2) + ds.del2*math.Sin(2.0*(xli-fasx4)) +
			ds.del3*math.Sin(3.0*(xli-fasx6))
		xnddt = ds.del1*math.Cos(xli-fasx2) + 2.0*ds.del2*math.Cos(2.0*(xli-fasx4)) +
			3.0*ds.del3*math.Cos(3.0*(xli-fasx6))
		xnddt = xnddt * xldot
	case ResonanceHalfDay:
		xomi := ds.argpo + ds.argpdot*ds.atime
		x2omi := xomi + xomi
		x2li := xli + xli
		xndt = ds.d2201*math.Sin(x2omi+xli-g22) + ds.d2211*math.Sin(xli-g22) +
			ds.d3210*math.Sin(xomi+xli-g32) + ds.d3222*math.Sin(-xomi+xli-g32) +
			ds.d4410*math.Sin(x2omi+x2li-g44) + ds.d4422*math.Sin(x2li-g44) +
			ds.d5220*math.Sin(xomi+xli-g52) + ds.d5232*math.Sin(-xomi+xli-g52) +
			ds.d5421*math.Sin(xomi+x2li-g54) + ds.d5433*math.Sin(-xomi+x2li-g54)
		xnddt = ds.d2201*math.Cos(x2omi+xli-g22) + ds.d2211*math.Cos(xli-g22) +
			ds.d3210*math.Cos(xomi+xli-g32) + ds.d3222*math.Cos(-xomi+xli-g32) +
			ds.d5220*math.Cos(xomi+xli-g52) + ds.d5232*math.Cos(-xomi+xli-g52) +
			2.0*(ds.d4410*math.Cos(x2omi+x2li-g44)+ds.d4422*math.Cos(x2li-g44)+
				ds.d5421*math.Cos(xomi+x2li-g54)+ds.d5433*math.Cos(-xomi+x2li-g54))
		xnddt = xnddt * xldot
	case ResonanceNone:
	default:
		panic("sgp4: unknown resonance " + ds.irez.String())
	}
	return
}
