package sgp4

import "math"

// greenwichSiderealTime returns the IAU-82 Greenwich mean sidereal time in
// radians, [0, 2pi), for a UT1 Julian Day.
func greenwichSiderealTime(jdut1 float64) float64 {
	tut1 := (jdut1 - 2451545.0) / 36525.0
	temp := -6.2e-6*tut1*tut1*tut1 + 0.093104*tut1*tut1 +
		(876600.0*3600+8640184.812866)*tut1 + 67310.54841 // seconds
	temp = math.Mod(temp*deg2rad/240.0, twoPi) // 360/86400 = 1/240, to deg, to rad
	if temp < 0.0 {
		temp += twoPi
	}
	return temp
}
