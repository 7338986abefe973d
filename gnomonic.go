package geoproj

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Gnomonic is an ellipsoidal generalization of the gnomonic projection,
// built on a geodesic Engine. The planar radius from the projection origin
// equals the reduced length divided by the geodesic scale, which reproduces
// the classical great-circles-as-straight-lines property of the spherical
// gnomonic.
//
// The projection is azimuthal about an origin supplied per call; a
// projected (x, y) is only meaningful together with the origin that
// produced it.
type Gnomonic struct {
	eng Engine
	a   float64

	// MaxIterations caps the Newton iteration in Reverse. The default of
	// 10 is ample inside the region where the projection is invertible.
	MaxIterations int
	// Tolerance is the convergence tolerance of Reverse, relative to the
	// equatorial radius. The default is 0.01*sqrt(machine epsilon).
	Tolerance float64
}

// NewGnomonic constructs a gnomonic projection on the given engine.
func NewGnomonic(eng Engine) *Gnomonic {
	eps := math.Nextafter(1, 2) - 1
	return &Gnomonic{
		eng:           eng,
		a:             eng.EquatorialRadius(),
		MaxIterations: 10,
		Tolerance:     0.01 * math.Sqrt(eps),
	}
}

// GnomonicCoord holds planar gnomonic coordinates together with the forward
// azimuth and the geodesic scale at the projected point. X and Y are in the
// units of the engine's equatorial radius; Scale governs invertibility and
// a non-positive Scale means the point lies beyond the region where the
// projection is defined.
type GnomonicCoord struct {
	X, Y    float64
	Azimuth float64 // forward azimuth at the target point, degrees
	Scale   float64 // geodesic scale rk at the target point
}

// Forward projects target into the plane about origin.
//
// When the geodesic scale at the target is not positive the projection is
// undefined there and X and Y are NaN, with Azimuth and Scale still set as
// computed. This is a value-level signal, not an error: targets beyond
// roughly a quarter meridian from the origin are simply outside the
// projection's domain.
func (g *Gnomonic) Forward(origin, target s2.LatLng) GnomonicCoord {
	inv := g.eng.Inverse(
		origin.Lat.Degrees(), origin.Lng.Degrees(),
		target.Lat.Degrees(), target.Lng.Degrees(), CapStandard)
	c := GnomonicCoord{Azimuth: inv.Azimuth, Scale: inv.Scale}
	if !(inv.Scale > 0) {
		c.X, c.Y = math.NaN(), math.NaN()
		return c
	}
	rho := inv.ReducedLength / inv.Scale
	sa, ca := math.Sincos(inv.StartAzimuth * degree)
	c.X, c.Y = rho*sa, rho*ca
	return c
}

// reversePhase tracks the convergence protocol of Reverse. Detecting the
// tolerance and finishing are deliberately separate steps: the residual is
// checked before the line is advanced, so the position belonging to the
// accepted step has to be fetched on one further pass.
type reversePhase int

const (
	phaseIterating reversePhase = iota
	phaseOneMoreStep
	phaseDone
)

// Reverse inverts the projection: it recovers the geodetic point whose
// forward projection about origin is (x, y). The returned GnomonicCoord
// echoes x and y and carries the forward azimuth and geodesic scale at the
// recovered point.
//
// If the iteration cap is exhausted before the tolerance is met, the
// inversion failed and the returned point and the Azimuth/Scale fields are
// all NaN. That is the normal outcome for (x, y) far outside the well-posed
// region, not an exceptional condition; s2.LatLng.IsValid reports it.
func (g *Gnomonic) Reverse(origin s2.LatLng, x, y float64) (s2.LatLng, GnomonicCoord) {
	lat0, lon0 := origin.Lat.Degrees(), origin.Lng.Degrees()
	azi0 := math.Atan2(x, y) / degree
	rho := math.Hypot(x, y)
	// the small-rho correspondence between planar radius and arc length
	// makes this seed exact on a sphere and close elsewhere
	s := g.a * math.Atan(rho/g.a)
	little := rho <= g.a
	if !little {
		// near the antipodal region 1/rho is the better-conditioned
		// unknown
		rho = 1 / rho
	}

	line := g.eng.Line(lat0, lon0, azi0, CapStandard)
	var pos Position
	phase := phaseIterating
	for count := 0; count < g.MaxIterations; count++ {
		pos = line.Position(s)
		if phase == phaseOneMoreStep {
			phase = phaseDone
			break
		}
		var ds float64
		if little {
			// solve rho(s) = rho with d(m/M)/ds = 1/M^2
			ds = (pos.ReducedLength/pos.Scale - rho) * pos.Scale * pos.Scale
		} else {
			// solve 1/rho(s) = 1/rho with d(M/m)/ds = -1/m^2
			ds = (rho - pos.Scale/pos.ReducedLength) * pos.ReducedLength * pos.ReducedLength
		}
		s -= ds
		if !(math.Abs(ds) >= g.Tolerance*g.a) {
			phase = phaseOneMoreStep
		}
	}
	if phase == phaseIterating {
		nan := math.NaN()
		return s2.LatLng{Lat: s1.Angle(nan), Lng: s1.Angle(nan)},
			GnomonicCoord{X: x, Y: y, Azimuth: nan, Scale: nan}
	}
	return s2.LatLngFromDegrees(pos.Lat, pos.Lon),
		GnomonicCoord{X: x, Y: y, Azimuth: pos.Azimuth, Scale: pos.Scale}
}
