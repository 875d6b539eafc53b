package sgp4

import "math"

// periodics applies the lunar-solar periodic corrections at t minutes. Below
// 0.2 rad of perturbed inclination the node and perigee corrections are
// applied in Lyddane form to avoid the sin(i) singularity.
func (ds *deepSpace) periodics(t, ep, inclp, nodep, argpp, mp float64) (float64, float64, float64, float64, float64) {
	sse, ssi, ssl, ssgh, ssh := ds.sun.at(t)
	sle, sli, sll, slgh, slh := ds.moon.at(t)

	pe := sse + sle
	pinc := ssi + sli
	pl := ssl + sll
	pgh := ssgh + slgh
	ph := ssh + slh

	inclp = inclp + pinc
	ep = ep + pe
	sinip := math.Sin(inclp)
	cosip := math.Cos(inclp)

	if inclp >= lyddaneInclination {
		ph = ph / sinip
		pgh = pgh - cosip*ph
		argpp = argpp + pgh
		nodep = nodep + ph
		mp = mp + pl
		return ep, inclp, nodep, argpp, mp
	}

	sinop := math.Sin(nodep)
	cosop := math.Cos(nodep)
	alfdp := sinip * sinop
	betdp := sinip * cosop
	dalf := ph*cosop + pinc*cosip*sinop
	dbet := -ph*sinop + pinc*cosip*cosop
	alfdp = alfdp + dalf
	betdp = betdp + dbet
	nodep = math.Mod(nodep, twoPi)
	xls := mp + argpp + cosip*nodep
	dls := pl + pgh - pinc*nodep*sinip
	xls = xls + dls
	xnoh := nodep
	nodep = math.Atan2(alfdp, betdp)
	if math.Abs(xnoh-nodep) > math.Pi {
		if nodep < xnoh {
			nodep = nodep + twoPi
		} else {
			nodep = nodep - twoPi
		}
	}
	mp = mp + pl
	argpp = xls - mp - cosip*nodep
	return ep, inclp, nodep, argpp, mp
}
