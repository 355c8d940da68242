package projection

import (
	"math"
	"sync"
	"testing"
)

func dms(deg, min, sec float64) float64 {
	return deg + min/60 + sec/3600
}

func TestTransverseMercatorMatchesOSWorkedExample(t *testing.T) {
	g := NewBritishNationalGrid()

	// Ordnance Survey, "A guide to coordinate systems in Great Britain", annex C.
	phi := dms(52, 39, 27.2531) * math.Pi / 180
	lambda := dms(1, 43, 4.5177) * math.Pi / 180

	e, n := g.osgb36ToGrid(phi, lambda)
	if math.Abs(e-651409.903) > 1e-3 {
		t.Fatalf("expected easting 651409.903, got %.4f", e)
	}
	if math.Abs(n-313177.270) > 1e-3 {
		t.Fatalf("expected northing 313177.270, got %.4f", n)
	}

	gotPhi, gotLambda := g.gridToOSGB36(651409.903, 313177.270)
	const arcSecTol = 1e-3 * arcSecond
	if math.Abs(gotPhi-phi) > arcSecTol {
		t.Fatalf("expected latitude %v, got %v", phi, gotPhi)
	}
	if math.Abs(gotLambda-lambda) > arcSecTol {
		t.Fatalf("expected longitude %v, got %v", lambda, gotLambda)
	}
}

func TestToLonLatAppliesDatumShift(t *testing.T) {
	g := NewBritishNationalGrid()

	lon, lat := g.ToLonLat(651409.903, 313177.270)

	// OS Transverse Mercator, Airy 1830 cartesian and OSGB36 -> WGS84 Helmert
	// evaluated independently with the published constants.
	const wantLat, wantLon = 52.657979, 1.716052
	if math.Abs(lat-wantLat) > 1e-6 || math.Abs(lon-wantLon) > 1e-6 {
		t.Fatalf("expected (lat %v, lon %v), got (lat %v, lon %v)", wantLat, wantLon, lat, lon)
	}

	osgbLat := dms(52, 39, 27.2531)
	osgbLon := dms(1, 43, 4.5177)
	if math.Abs(lat-osgbLat) < 1e-4 && math.Abs(lon-osgbLon) < 1e-4 {
		t.Fatalf("expected a datum shift away from OSGB36, got (lat %v, lon %v)", lat, lon)
	}
}

func TestTrueOriginIsNearFortyNineNorthTwoWest(t *testing.T) {
	g := NewBritishNationalGrid()

	lon, lat := g.ToLonLat(400000, -100000)
	if math.Abs(lat-49) > 0.01 || math.Abs(lon+2) > 0.01 {
		t.Fatalf("unexpected true origin (lat %v, lon %v)", lat, lon)
	}
}

func TestGridRoundTrip(t *testing.T) {
	g := NewBritishNationalGrid()

	points := [][2]float64{
		{400000, 300000},
		{400025, 299975},
		{530000, 180000},
		{651409.903, 313177.270},
		{100000, 900000},
		{325000, 673000},
		{0.5, 0.5},
	}

	for _, pt := range points {
		lon, lat := g.ToLonLat(pt[0], pt[1])
		e, n := g.FromLonLat(lon, lat)
		if math.Abs(e-pt[0]) > 1e-4 || math.Abs(n-pt[1]) > 1e-4 {
			t.Fatalf("round trip of %v gave (%.6f, %.6f)", pt, e, n)
		}
	}
}

func TestSharedAcrossGoroutines(t *testing.T) {
	g := NewBritishNationalGrid()
	wantLon, wantLat := g.ToLonLat(530000, 180000)

	var wg sync.WaitGroup
	errs := make(chan [2]float64, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lon, lat := g.ToLonLat(530000, 180000)
			if lon != wantLon || lat != wantLat {
				errs <- [2]float64{lon, lat}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Fatalf("concurrent result %v differs from (%v, %v)", got, wantLon, wantLat)
	}
}

func TestEPSG(t *testing.T) {
	src, dst := NewBritishNationalGrid().EPSG()
	if src != 27700 || dst != 4326 {
		t.Fatalf("unexpected EPSG pair %d -> %d", src, dst)
	}
}
