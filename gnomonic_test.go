package geoproj_test

import (
	"math"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/openspatial/geoproj"
)

const sphereRadius = 6371000.0

// sphericalGnomonic is the textbook closed form of the gnomonic projection
// on a sphere.
func sphericalGnomonic(origin, target s2.LatLng) (x, y float64) {
	sp1, cp1 := math.Sincos(origin.Lat.Radians())
	sp2, cp2 := math.Sincos(target.Lat.Radians())
	sdl, cdl := math.Sincos((target.Lng - origin.Lng).Radians())
	cosc := sp1*sp2 + cp1*cp2*cdl
	x = sphereRadius * cp2 * sdl / cosc
	y = sphereRadius * (cp1*sp2 - sp1*cp2*cdl) / cosc
	return x, y
}

// lonDiff is the angular difference of two longitudes in degrees; targets
// built by offsetting an origin can land outside [-180, 180) while the
// reverse projection reports normalized longitudes.
func lonDiff(a, b float64) float64 {
	return math.Abs(math.Remainder(a-b, 360))
}

func testOrigins() []s2.LatLng {
	return []s2.LatLng{
		s2.LatLngFromDegrees(0, 0),
		s2.LatLngFromDegrees(48.20849, 16.37208),
		s2.LatLngFromDegrees(-35.3, 149.12),
		s2.LatLngFromDegrees(64.15, -21.94),
	}
}

func TestGnomonicSphereClosedForm(t *testing.T) {
	sph, err := geoproj.NewSphere(sphereRadius)
	if err != nil {
		t.Fatalf("error creating sphere engine: %s", err)
	}
	proj := geoproj.NewGnomonic(sph)

	for _, origin := range testOrigins() {
		for _, dLat := range []float64{-30, -5, 0.25, 20} {
			for _, dLon := range []float64{-40, -1, 0.5, 35} {
				lat := origin.Lat.Degrees() + dLat
				if math.Abs(lat) > 89 {
					continue
				}
				target := s2.LatLngFromDegrees(lat, origin.Lng.Degrees()+dLon)
				c := proj.Forward(origin, target)
				wantX, wantY := sphericalGnomonic(origin, target)
				tol := 1e-8 * (math.Hypot(wantX, wantY) + sphereRadius)
				if math.Abs(c.X-wantX) > tol || math.Abs(c.Y-wantY) > tol {
					t.Errorf("%v -> %v: got (%f, %f), expected (%f, %f)",
						origin, target, c.X, c.Y, wantX, wantY)
				}
			}
		}
	}
}

func TestGnomonicForwardOrigin(t *testing.T) {
	sph, _ := geoproj.NewSphere(sphereRadius)
	engines := map[string]geoproj.Engine{
		"sphere":    sph,
		"ellipsoid": geoproj.DefaultEllipsoid,
	}
	for name, eng := range engines {
		proj := geoproj.NewGnomonic(eng)
		origin := s2.LatLngFromDegrees(37.7, -122.4)
		c := proj.Forward(origin, origin)
		if c.X != 0 || c.Y != 0 {
			t.Errorf("%s: expected (0, 0) at the origin, got (%v, %v)", name, c.X, c.Y)
		}
		if math.Abs(c.Scale-1) > 1e-9 {
			t.Errorf("%s: expected scale 1 at the origin, got %v", name, c.Scale)
		}
	}
}

func TestGnomonicSphereRoundTrip(t *testing.T) {
	sph, _ := geoproj.NewSphere(sphereRadius)
	proj := geoproj.NewGnomonic(sph)

	for _, origin := range testOrigins() {
		for _, dLat := range []float64{-60, -20, -0.5, 0.01, 15, 45} {
			for _, dLon := range []float64{-70, -10, 0.25, 30, 65} {
				lat := origin.Lat.Degrees() + dLat
				if math.Abs(lat) > 89 {
					continue
				}
				target := s2.LatLngFromDegrees(lat, origin.Lng.Degrees()+dLon)
				c := proj.Forward(origin, target)
				if !(c.Scale > 0.05) {
					// outside (or too close to) the horizon circle
					continue
				}
				got, rc := proj.Reverse(origin, c.X, c.Y)
				const tol = 1e-8
				if math.Abs(got.Lat.Degrees()-target.Lat.Degrees()) > tol ||
					lonDiff(got.Lng.Degrees(), target.Lng.Degrees()) > tol {
					t.Errorf("%v -> (%f, %f): recovered %v, expected %v",
						origin, c.X, c.Y, got, target)
				}
				if math.Abs(rc.Azimuth-c.Azimuth) > 1e-6 || math.Abs(rc.Scale-c.Scale) > 1e-9 {
					t.Errorf("%v -> %v: azimuth/scale mismatch: (%v, %v) vs (%v, %v)",
						origin, target, rc.Azimuth, rc.Scale, c.Azimuth, c.Scale)
				}
			}
		}
	}
}

func TestGnomonicEllipsoidRoundTrip(t *testing.T) {
	proj := geoproj.DefaultGnomonic

	for _, origin := range testOrigins() {
		for _, dLat := range []float64{-25, -2, 0.5, 18} {
			for _, dLon := range []float64{-30, -0.75, 5, 40} {
				lat := origin.Lat.Degrees() + dLat
				if math.Abs(lat) > 89 {
					continue
				}
				target := s2.LatLngFromDegrees(lat, origin.Lng.Degrees()+dLon)
				c := proj.Forward(origin, target)
				if !(c.Scale > 0.1) {
					continue
				}
				got, _ := proj.Reverse(origin, c.X, c.Y)
				// the differenced engine carries a little more noise
				// than an analytic one
				const tol = 1e-6
				if math.Abs(got.Lat.Degrees()-target.Lat.Degrees()) > tol ||
					lonDiff(got.Lng.Degrees(), target.Lng.Degrees()) > tol {
					t.Errorf("%v -> (%f, %f): recovered %v, expected %v",
						origin, c.X, c.Y, got, target)
				}
			}
		}
	}
}

func TestGnomonicUndefinedRegion(t *testing.T) {
	sph, _ := geoproj.NewSphere(sphereRadius)
	proj := geoproj.NewGnomonic(sph)
	origin := s2.LatLngFromDegrees(0, 0)

	c := proj.Forward(origin, s2.LatLngFromDegrees(0, 120))
	if !math.IsNaN(c.X) || !math.IsNaN(c.Y) {
		t.Errorf("expected NaN coordinates beyond the horizon, got (%v, %v)", c.X, c.Y)
	}
	if math.Abs(c.Scale-math.Cos(120*math.Pi/180)) > 1e-12 {
		t.Errorf("expected scale cos(120), got %v", c.Scale)
	}
	if math.Abs(c.Azimuth-90) > 1e-9 {
		t.Errorf("expected azimuth 90, got %v", c.Azimuth)
	}
}

func TestGnomonicNonConvergence(t *testing.T) {
	origin := s2.LatLngFromDegrees(0, 0)
	target := s2.LatLngFromDegrees(30, 40)
	c := geoproj.DefaultGnomonic.Forward(origin, target)

	starved := geoproj.NewGnomonic(geoproj.DefaultEllipsoid)
	starved.MaxIterations = 1
	ll, rc := starved.Reverse(origin, c.X, c.Y)
	if ll.IsValid() || !math.IsNaN(rc.Azimuth) || !math.IsNaN(rc.Scale) {
		t.Errorf("expected an all-NaN payload with a starved iteration cap, got %v %v", ll, rc)
	}

	// the same inversion succeeds with the default cap
	ll, _ = geoproj.DefaultGnomonic.Reverse(origin, c.X, c.Y)
	if !ll.IsValid() {
		t.Errorf("expected the default cap to converge, got %v", ll)
	}
}
