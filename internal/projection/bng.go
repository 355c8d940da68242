// Package projection converts British National Grid coordinates (EPSG:27700)
// to WGS84 longitude/latitude (EPSG:4326) and back.
//
// The grid is a Transverse Mercator projection of the OSGB36 datum on the
// Airy 1830 ellipsoid. Moving to WGS84 goes through geocentric cartesian
// coordinates and a seven-parameter Helmert transformation, which is good to
// a few metres across Great Britain. Grid-shift refinements such as OSTN15
// are not applied.
package projection

import "math"

// EPSG codes of the fixed source and target reference systems.
const (
	SourceEPSG = 27700
	TargetEPSG = 4326
)

const (
	arcSecond = math.Pi / (180 * 3600)

	// Convergence limits for the iterative steps.
	meridianTol  = 1e-8  // metres, inverse Transverse Mercator
	geodeticTol  = 1e-13 // radians, cartesian to geodetic
	gridTol      = 1e-7  // metres, FromLonLat refinement
	maxIteration = 20
)

type ellipsoid struct {
	a, b float64
	e2   float64
}

func newEllipsoid(a, b float64) ellipsoid {
	return ellipsoid{a: a, b: b, e2: (a*a - b*b) / (a * a)}
}

type helmert struct {
	tx, ty, tz float64 // metres
	rx, ry, rz float64 // radians
	s          float64 // scale, unitless
}

func (h helmert) apply(x, y, z float64) (float64, float64, float64) {
	s1 := 1 + h.s
	return h.tx + s1*x - h.rz*y + h.ry*z,
		h.ty + h.rz*x + s1*y - h.rx*z,
		h.tz - h.ry*x + h.rx*y + s1*z
}

func (h helmert) reverse() helmert {
	return helmert{-h.tx, -h.ty, -h.tz, -h.rx, -h.ry, -h.rz, -h.s}
}

// BritishNationalGrid is the fixed EPSG:27700 <-> EPSG:4326 transformer.
// It only holds precomputed constants, so one value can be shared by any
// number of goroutines.
type BritishNationalGrid struct {
	airy  ellipsoid
	wgs84 ellipsoid

	// National Grid projection constants.
	f0     float64
	lat0   float64
	lon0   float64
	e0, n0 float64
	n      float64
	aF0    float64
	bF0    float64

	toWGS84   helmert
	fromWGS84 helmert
}

// NewBritishNationalGrid builds the transformer. Build it once and share it.
func NewBritishNationalGrid() *BritishNationalGrid {
	airy := newEllipsoid(6377563.396, 6356256.909)
	wgs84 := newEllipsoid(6378137.000, 6356752.314245)

	g := &BritishNationalGrid{
		airy:  airy,
		wgs84: wgs84,
		f0:    0.9996012717,
		lat0:  49 * math.Pi / 180,
		lon0:  -2 * math.Pi / 180,
		e0:    400000,
		n0:    -100000,
		toWGS84: helmert{
			tx: 446.448, ty: -125.157, tz: 542.060,
			rx: 0.1502 * arcSecond, ry: 0.2470 * arcSecond, rz: 0.8421 * arcSecond,
			s: -20.4894e-6,
		},
	}
	g.n = (airy.a - airy.b) / (airy.a + airy.b)
	g.aF0 = airy.a * g.f0
	g.bF0 = airy.b * g.f0
	g.fromWGS84 = g.toWGS84.reverse()
	return g
}

// EPSG returns the source and target codes.
func (g *BritishNationalGrid) EPSG() (source, target int) {
	return SourceEPSG, TargetEPSG
}

// ToLonLat converts an easting/northing in metres to WGS84 degrees. The
// result is in (x, y) axis order: longitude first.
func (g *BritishNationalGrid) ToLonLat(easting, northing float64) (lon, lat float64) {
	phi, lambda := g.gridToOSGB36(easting, northing)
	x, y, z := toCartesian(g.airy, phi, lambda, 0)
	x, y, z = g.toWGS84.apply(x, y, z)
	phi, lambda, _ = toGeodetic(g.wgs84, x, y, z)
	return lambda * 180 / math.Pi, phi * 180 / math.Pi
}

// FromLonLat converts WGS84 degrees to easting/northing in metres. It is
// the exact inverse of ToLonLat: a first estimate from the reverse Helmert
// chain is refined with Newton steps against ToLonLat.
func (g *BritishNationalGrid) FromLonLat(lon, lat float64) (easting, northing float64) {
	x, y, z := toCartesian(g.wgs84, lat*math.Pi/180, lon*math.Pi/180, 0)
	x, y, z = g.fromWGS84.apply(x, y, z)
	phi, lambda, _ := toGeodetic(g.airy, x, y, z)
	easting, northing = g.osgb36ToGrid(phi, lambda)

	const step = 1.0 // metres, finite difference for the Jacobian
	for i := 0; i < maxIteration; i++ {
		gotLon, gotLat := g.ToLonLat(easting, northing)
		dLon, dLat := lon-gotLon, lat-gotLat

		lonE, latE := g.ToLonLat(easting+step, northing)
		lonN, latN := g.ToLonLat(easting, northing+step)
		j11, j12 := (lonE-gotLon)/step, (lonN-gotLon)/step
		j21, j22 := (latE-gotLat)/step, (latN-gotLat)/step

		det := j11*j22 - j12*j21
		if det == 0 {
			break
		}
		dE := (j22*dLon - j12*dLat) / det
		dN := (j11*dLat - j21*dLon) / det
		easting += dE
		northing += dN

		if math.Abs(dE) < gridTol && math.Abs(dN) < gridTol {
			break
		}
	}
	return easting, northing
}

// meridionalArc is the developed meridian distance from lat0 to phi, times F0.
func (g *BritishNationalGrid) meridionalArc(phi float64) float64 {
	n := g.n
	n2, n3 := n*n, n*n*n
	dPhi := phi - g.lat0
	sPhi := phi + g.lat0

	ma := (1 + n + 5.0/4*n2 + 5.0/4*n3) * dPhi
	mb := (3*n + 3*n2 + 21.0/8*n3) * math.Sin(dPhi) * math.Cos(sPhi)
	mc := (15.0/8*n2 + 15.0/8*n3) * math.Sin(2*dPhi) * math.Cos(2*sPhi)
	md := 35.0 / 24 * n3 * math.Sin(3*dPhi) * math.Cos(3*sPhi)
	return g.bF0 * (ma - mb + mc - md)
}

// radii returns the transverse (nu) and meridional (rho) radii of curvature
// scaled by F0, and eta squared.
func (g *BritishNationalGrid) radii(phi float64) (nu, rho, eta2 float64) {
	sin := math.Sin(phi)
	w := 1 - g.airy.e2*sin*sin
	nu = g.aF0 / math.Sqrt(w)
	rho = g.aF0 * (1 - g.airy.e2) / math.Pow(w, 1.5)
	eta2 = nu/rho - 1
	return nu, rho, eta2
}

func (g *BritishNationalGrid) osgb36ToGrid(phi, lambda float64) (easting, northing float64) {
	sin, cos := math.Sin(phi), math.Cos(phi)
	cos3, cos5 := cos*cos*cos, cos*cos*cos*cos*cos
	tan2 := math.Tan(phi) * math.Tan(phi)
	tan4 := tan2 * tan2
	nu, rho, eta2 := g.radii(phi)

	i := g.meridionalArc(phi) + g.n0
	ii := nu / 2 * sin * cos
	iii := nu / 24 * sin * cos3 * (5 - tan2 + 9*eta2)
	iiia := nu / 720 * sin * cos5 * (61 - 58*tan2 + tan4)
	iv := nu * cos
	v := nu / 6 * cos3 * (nu/rho - tan2)
	vi := nu / 120 * cos5 * (5 - 18*tan2 + tan4 + 14*eta2 - 58*tan2*eta2)

	dl := lambda - g.lon0
	dl2 := dl * dl
	northing = i + ii*dl2 + iii*dl2*dl2 + iiia*dl2*dl2*dl2
	easting = g.e0 + iv*dl + v*dl2*dl + vi*dl2*dl2*dl
	return easting, northing
}

func (g *BritishNationalGrid) gridToOSGB36(easting, northing float64) (phi, lambda float64) {
	phi = (northing-g.n0)/g.aF0 + g.lat0
	for i := 0; i < maxIteration; i++ {
		residual := northing - g.n0 - g.meridionalArc(phi)
		if math.Abs(residual) < meridianTol {
			break
		}
		phi += residual / g.aF0
	}

	nu, rho, eta2 := g.radii(phi)
	tan := math.Tan(phi)
	tan2 := tan * tan
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2
	sec := 1 / math.Cos(phi)
	nu3 := nu * nu * nu
	nu5 := nu3 * nu * nu
	nu7 := nu5 * nu * nu

	vii := tan / (2 * rho * nu)
	viii := tan / (24 * rho * nu3) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tan / (720 * rho * nu5) * (61 + 90*tan2 + 45*tan4)
	x := sec / nu
	xi := sec / (6 * nu3) * (nu/rho + 2*tan2)
	xii := sec / (120 * nu5) * (5 + 28*tan2 + 24*tan4)
	xiia := sec / (5040 * nu7) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	de := easting - g.e0
	de2 := de * de
	lat := phi - vii*de2 + viii*de2*de2 - ix*de2*de2*de2
	lambda = g.lon0 + x*de - xi*de2*de + xii*de2*de2*de - xiia*de2*de2*de2*de
	return lat, lambda
}

func toCartesian(el ellipsoid, phi, lambda, h float64) (x, y, z float64) {
	sin := math.Sin(phi)
	nu := el.a / math.Sqrt(1-el.e2*sin*sin)
	x = (nu + h) * math.Cos(phi) * math.Cos(lambda)
	y = (nu + h) * math.Cos(phi) * math.Sin(lambda)
	z = ((1-el.e2)*nu + h) * sin
	return x, y, z
}

func toGeodetic(el ellipsoid, x, y, z float64) (phi, lambda, h float64) {
	p := math.Hypot(x, y)
	lambda = math.Atan2(y, x)
	phi = math.Atan2(z, p*(1-el.e2))

	var nu float64
	for i := 0; i < maxIteration; i++ {
		sin := math.Sin(phi)
		nu = el.a / math.Sqrt(1-el.e2*sin*sin)
		next := math.Atan2(z+el.e2*nu*sin, p)
		done := math.Abs(next-phi) < geodeticTol
		phi = next
		if done {
			break
		}
	}

	h = p/math.Cos(phi) - nu
	return phi, lambda, h
}
