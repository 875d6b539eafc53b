package sgp4

import (
	"bytes"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

// degElements builds Elements from TLE style units.
func degElements(epoch, revsPerDay, ecc, incl, raan, argp, ma, bstar float64) Elements {
	return Elements{
		Epoch:        epoch,
		MeanMotion:   RevsPerDayToRadPerMin(revsPerDay),
		Eccentricity: ecc,
		Inclination:  incl * deg2rad,
		RAAN:         raan * deg2rad,
		ArgOfPerigee: argp * deg2rad,
		MeanAnomaly:  ma * deg2rad,
		Bstar:        bstar,
	}
}

// 88888, the SGP4 example of Spacetrack Report #3. Its 198 km perigee takes
// the truncated drag path.
var leoElements = degElements(2444514.48708465, 16.05824518, 0.0086731, 72.8435, 115.9689, 52.6988, 110.5714, 0.66816e-4)

// 00005, Vanguard 1.
var vanguardElements = degElements(2451723.28495062, 10.82419157, 0.1859667, 34.2682, 348.7242, 331.7664, 19.3264, 0.28098e-4)

// 11801, the SDP4 example of Spacetrack Report #3.
var highEccElements = degElements(2444468.79629788, 2.28537848, 0.7318036, 46.7916, 230.4354, 47.4722, 10.4117, 0.14311e-1)

// 28626, a station-kept geostationary satellite.
var geoReferenceElements = degElements(2453911.96683397, 1.00270176, 0.0000335, 0.0019, 286.9433, 13.7918, 55.6504, 0.1e-3)

// Molniya 3-8 (08195), 12h resonant.
var molniyaElements = degElements(2453911.83215444, 2.00491383, 0.6877146, 64.1586, 279.0717, 264.7651, 20.2257, 0.11873e-3)

// A geostationary slot, 24h resonant and below the Lyddane inclination.
var geoElements = degElements(2460700.5, 1.00272693, 0.0002, 0.05, 80.0, 270.0, 10.0, 0)

// GPS like, 12h period but too circular for the 12h resonance.
var gpsElements = degElements(2460700.5, 2.00563, 0.01, 55.0, 120.0, 30.0, 200.0, 0)

// vectorAlmostEqual compares componentwise with an absolute tolerance.
func vectorAlmostEqual(t *testing.T, want, got Vector, tol float64) bool {
	t.Helper()
	w, g := want.Slice(), got.Slice()
	for i := range w {
		if !scalar.EqualWithinAbs(w[i], g[i], tol) {
			t.Errorf("vector mismatch: want %+v, got %+v (tol %g)", want, got, tol)
			return false
		}
	}
	return true
}

// angleDiff returns a-b wrapped to (-pi, pi].
func angleDiff(a, b float64) float64 {
	return math.Remainder(a-b, twoPi)
}

type referenceState struct {
	tsince float64
	pos    Vector
	vel    Vector
}

// Verification states from the SGP4 test set of Vallado et al. (AIAA
// 2006-6753), WGS72. A zero velocity tolerance skips the velocity check.
func TestPropagateReferenceVectors(t *testing.T) {
	tests := []struct {
		name      string
		el        Elements
		algorithm Algorithm
		resonance Resonance
		posTol    float64 // km
		velTol    float64 // km/s
		states    []referenceState
	}{
		{
			name:      "88888 low perigee",
			el:        leoElements,
			algorithm: NearEarthLowPerigee,
			posTol:    1e-5,
			velTol:    1e-7,
			states: []referenceState{
				{0, Vector{2328.96975262, -5995.22051338, 1719.97297192}, Vector{2.912073281, -0.983417956, -7.090816210}},
				{360, Vector{2456.10706533, -6071.93855503, 1222.89768554}, Vector{2.679390040, -0.448290811, -7.228792155}},
				{720, Vector{2567.56229695, -6112.50383922, 713.96374435}, Vector{2.440245751, 0.098109002, -7.319959258}},
				{1080, Vector{2663.09066539, -6115.48259294, 196.39625849}, Vector{2.196119056, 0.652415093, -7.362824296}},
				{1440, Vector{2742.55541509, -6079.67039712, -326.38574417}, Vector{1.948505338, 1.211060149, -7.356195153}},
			},
		},
		{
			name:      "00005 full drag terms",
			el:        vanguardElements,
			algorithm: NearEarth,
			posTol:    1e-5,
			velTol:    1e-7,
			states: []referenceState{
				{0, Vector{7022.46529266, -1400.08296755, 0.03995155}, Vector{1.893841015, 6.405893759, 4.534807250}},
				{360, Vector{-7154.03120202, -3783.17682504, -3536.19412294}, Vector{4.741887409, -4.151817765, -2.093935425}},
				{720, Vector{-7134.59340119, 6531.68641334, 3260.27186483}, Vector{-4.113793027, -2.911922039, -2.557327851}},
				{1080, Vector{5568.53901181, 4492.06992591, 3863.87641983}, Vector{-4.209106476, 5.159719888, 2.744852980}},
				{1440, Vector{-938.55923943, -6268.18748831, -4294.02924751}, Vector{7.536105209, -0.427127707, 0.989878080}},
			},
		},
		{
			name:      "08195 12h resonance",
			el:        molniyaElements,
			algorithm: DeepSpace,
			resonance: ResonanceHalfDay,
			posTol:    1e-5,
			states: []referenceState{
				{0, Vector{2349.89483350, -14785.93811562, 0.02119378}, Vector{}},
			},
		},
		{
			name:      "28626 24h resonance, Lyddane",
			el:        geoReferenceElements,
			algorithm: DeepSpace,
			resonance: ResonanceSynchronous,
			posTol:    1e-3,
			velTol:    1e-6,
			states: []referenceState{
				{0, Vector{42080.71852213, -2646.86387436, 0.81851294}, Vector{0.193105177, 3.068688251, 0.000438449}},
			},
		},
		{
			name:      "11801 non-resonant, high eccentricity",
			el:        highEccElements,
			algorithm: DeepSpace,
			resonance: ResonanceNone,
			posTol:    5e-2,
			states: []referenceState{
				{0, Vector{7473.37102491, 428.94748312, 5828.74846783}, Vector{}},
				{720, Vector{-3305.22148694, 32410.84323331, -24697.16974954}, Vector{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.el)
			require.Equal(t, tt.algorithm, p.Algorithm())
			require.Equal(t, tt.resonance, p.Resonance())

			for _, st := range tt.states {
				pos, vel := p.Propagate(st.tsince)
				vectorAlmostEqual(t, st.pos, pos, tt.posTol)
				if tt.velTol > 0 {
					vectorAlmostEqual(t, st.vel, vel, tt.velTol)
				}
				assert.Equal(t, st.tsince, p.Time())
			}
			assert.Equal(t, len(tt.states), p.Stats().Propagations)
		})
	}
}

func TestPropagateEpochReproducesElements(t *testing.T) {
	for name, el := range map[string]Elements{
		"leo":     leoElements,
		"molniya": molniyaElements,
		"geo":     geoElements,
		"gps":     gpsElements,
	} {
		t.Run(name, func(t *testing.T) {
			p := New(el)
			m := p.secular(0)
			assert.InDelta(t, 0, angleDiff(m.MeanAnomaly, el.MeanAnomaly), 1e-12)
			assert.InDelta(t, 0, angleDiff(m.ArgOfPerigee, el.ArgOfPerigee), 1e-12)
			assert.InDelta(t, 0, angleDiff(m.RAAN, el.RAAN), 1e-12)
			assert.InDelta(t, el.Eccentricity, m.Eccentricity, 1e-15)
			assert.InDelta(t, el.Inclination, m.Inclination, 1e-15)
		})
	}
}

func TestPropagateEccentricityFloor(t *testing.T) {
	circular := leoElements
	circular.Eccentricity = 0
	circular.Bstar = 0.01

	for name, el := range map[string]Elements{"circular": circular, "geo": geoElements} {
		t.Run(name, func(t *testing.T) {
			p := New(el)
			for ts := -1440.0; ts <= 1440; ts += 120 {
				pos, vel := p.Propagate(ts)
				assert.GreaterOrEqual(t, p.Elements().Eccentricity, minEccentricity)
				assert.False(t, math.IsNaN(pos.Norm()), "position at %v", ts)
				assert.False(t, math.IsNaN(vel.Norm()), "velocity at %v", ts)
			}
		})
	}
}

func TestPropagateLowPerigee(t *testing.T) {
	el := degElements(2460700.5, 16.4, 0.001, 51.6, 10, 20, 30, 0.0005)
	p := New(el)
	require.Equal(t, NearEarthLowPerigee, p.Algorithm())

	pos, vel, err := p.PropagateChecked(10)
	require.NoError(t, err)
	assert.InDelta(t, 6378.135+170, pos.Norm(), 60)
	assert.InDelta(t, 7.8, vel.Norm(), 0.2)
}

func TestPropagateMolniya(t *testing.T) {
	p := New(molniyaElements)
	require.Equal(t, DeepSpace, p.Algorithm())
	require.Equal(t, ResonanceHalfDay, p.Resonance())

	for ts := 0.0; ts <= 5*minutesPerDay; ts += 30 {
		pos, vel, err := p.PropagateChecked(ts)
		require.NoError(t, err, "tsince %v", ts)
		r := pos.Norm()
		assert.Greater(t, r, 7000.0, "tsince %v", ts)
		assert.Less(t, r, 48000.0, "tsince %v", ts)
		assert.Less(t, vel.Norm(), 11.0, "tsince %v", ts)
	}
	assert.Positive(t, p.Stats().IntegratorSteps)
}

func TestResonanceIntegratorCheckpoint(t *testing.T) {
	incremental := New(molniyaElements)
	for ts := 0.0; ts < 2880; ts += 60 {
		incremental.Propagate(ts)
	}
	posInc, velInc := incremental.Propagate(2880)

	direct := New(molniyaElements)
	posDir, velDir := direct.Propagate(2880)

	assert.Equal(t, posDir, posInc)
	assert.Equal(t, velDir, velInc)
	stats := direct.Stats()
	assert.Equal(t, 1, stats.Propagations)
	assert.Equal(t, 4, stats.IntegratorSteps)
	assert.Equal(t, 1, stats.IntegratorResets)
	assert.InDelta(t, 5, stats.KeplerIterations, 5)
	assert.Equal(t, 4, incremental.Stats().IntegratorSteps)
}

func TestResonanceIntegratorRestart(t *testing.T) {
	tests := []struct {
		name  string
		first float64
		then  float64
	}{
		{"backward across epoch", 2880, -1440},
		{"closer to epoch", 2880, 1500},
		{"forward across epoch", -2000, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(molniyaElements)
			p.Propagate(tt.first)
			resets := p.Stats().IntegratorResets
			pos, vel := p.Propagate(tt.then)
			assert.Equal(t, resets+1, p.Stats().IntegratorResets)

			fresh := New(molniyaElements)
			wantPos, wantVel := fresh.Propagate(tt.then)
			assert.Equal(t, wantPos, pos)
			assert.Equal(t, wantVel, vel)
		})
	}
}

func TestPropagateGeostationary(t *testing.T) {
	p := New(geoElements)
	require.Equal(t, DeepSpace, p.Algorithm())
	require.Equal(t, ResonanceSynchronous, p.Resonance())

	const geoRadius = 42164.0
	for ts := 0.0; ts <= 10*minutesPerDay; ts += 180 {
		pos, vel := p.Propagate(ts)
		assert.InDelta(t, geoRadius, pos.Norm(), 200, "tsince %v", ts)
		assert.InDelta(t, 3.07, vel.Norm(), 0.05, "tsince %v", ts)
		assert.Less(t, p.Elements().Inclination, lyddaneInclination)
	}
}

func TestPropagateZeroInclination(t *testing.T) {
	el := geoElements
	el.Inclination = 0
	p := New(el)
	for ts := -720.0; ts <= 2880; ts += 360 {
		pos, vel := p.Propagate(ts)
		for _, v := range append(pos.Slice(), vel.Slice()...) {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "tsince %v", ts)
		}
		assert.GreaterOrEqual(t, p.Elements().Inclination, 0.0)
	}
}

func TestPropagateNonResonantDeepSpace(t *testing.T) {
	p := New(gpsElements)
	require.Equal(t, DeepSpace, p.Algorithm())
	require.Equal(t, ResonanceNone, p.Resonance())

	pos, _ := p.Propagate(1440)
	assert.InDelta(t, 26560, pos.Norm(), 400)
	assert.Zero(t, p.Stats().IntegratorSteps)
	assert.Zero(t, p.Stats().IntegratorResets)
}

func TestPropagateWGS84(t *testing.T) {
	p72 := New(leoElements)
	p84 := New(leoElements, WithGravity(WGS84()))
	assert.Equal(t, wgs84, p84.Gravity())

	pos72, _ := p72.Propagate(360)
	pos84, _ := p84.Propagate(360)
	assert.NotEqual(t, pos72, pos84)
	assert.InDelta(t, pos72.Norm(), pos84.Norm(), 5)
}

func TestClone(t *testing.T) {
	p := New(molniyaElements)
	p.Propagate(1440)
	c := p.Clone()

	p.Propagate(4320)
	pos, vel := c.Propagate(2160)

	fresh := New(molniyaElements)
	fresh.Propagate(1440)
	wantPos, wantVel := fresh.Propagate(2160)
	assert.Equal(t, wantPos, pos)
	assert.Equal(t, wantVel, vel)
	assert.Equal(t, 4320.0, p.Time())
	assert.Equal(t, 2160.0, c.Time())
}

func TestPeriod(t *testing.T) {
	p := New(leoElements)
	assert.InDelta(t, 1440/16.05824518, Period(p.InitialElements().MeanMotion), 1e-9)
	assert.Less(t, Period(p.Elements().MeanMotion), float64(deepSpacePeriod))
	assert.GreaterOrEqual(t, Period(New(molniyaElements).Elements().MeanMotion), float64(deepSpacePeriod))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(molniyaElements, WithLogger(logger))
	assert.Contains(t, buf.String(), "sgp4 initialized")
	assert.Contains(t, buf.String(), "algorithm=sdp4")
	assert.Contains(t, buf.String(), "resonance=12h")

	p := New(leoElements, WithLogger(nil))
	assert.Equal(t, discardLogger, p.logger)
}

func TestFindPositionAtTime(t *testing.T) {
	tle, err := ParseTLE(`ISS (ZARYA)
1 25544U 98067A   25146.54650260  .00010397  00000+0  19155-3 0  9999
2 25544  51.6382  54.2937 0002241 147.4648 271.6158 15.49752720511807`)
	require.NoError(t, err)

	at := tle.EpochTime().Add(90 * time.Minute)
	eci, err := tle.FindPositionAtTime(at)
	require.NoError(t, err)
	assert.WithinDuration(t, at, eci.DateTime, time.Microsecond)

	eci90, err := tle.FindPosition(90)
	require.NoError(t, err)
	vectorAlmostEqual(t, eci90.Position, eci.Position, 1e-6)
	assert.InDelta(t, 6378.135+420, eci.Position.Norm(), 30)
}
