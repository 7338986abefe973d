// Package geoproj converts geodetic coordinates to and from planar gnomonic
// projection coordinates and World Geographic Reference System (georef)
// strings.
package geoproj

import (
	"errors"
	"math"

	"github.com/tidwall/geodesic"
)

const degree = math.Pi / 180

// Caps selects the quantities an Engine is asked to compute. Engines are
// free to compute more than requested; they must not compute less.
type Caps uint32

const (
	// CapAzimuth requests the forward azimuths at the end points.
	CapAzimuth Caps = 1 << iota
	// CapReducedLength requests the reduced length m12.
	CapReducedLength
	// CapGeodesicScale requests the geodesic scale M12.
	CapGeodesicScale

	// CapStandard is everything the gnomonic projection needs.
	CapStandard = CapAzimuth | CapReducedLength | CapGeodesicScale
)

// InverseSolution is the solution of the inverse geodesic problem between
// two points. Azimuths are in degrees, the reduced length is in the units of
// the engine's equatorial radius and the geodesic scale is dimensionless.
type InverseSolution struct {
	StartAzimuth  float64 // forward azimuth at the first point
	Azimuth       float64 // forward azimuth at the second point
	ReducedLength float64 // m12
	Scale         float64 // M12
}

// Position is a point along a geodesic line, with the reduced length and
// geodesic scale accumulated from the start of the line.
type Position struct {
	Lat           float64 // degrees
	Lon           float64 // degrees
	Azimuth       float64 // forward azimuth, degrees
	ReducedLength float64 // m12 from the line start
	Scale         float64 // M12 from the line start
}

// Engine solves geodesic problems on a reference surface. The gnomonic
// projection consumes this contract; implementations must be safe for
// concurrent use.
type Engine interface {
	// EquatorialRadius returns the equatorial radius a of the surface.
	EquatorialRadius() float64
	// Inverse solves the inverse problem between (lat1, lon1) and
	// (lat2, lon2), all in degrees.
	Inverse(lat1, lon1, lat2, lon2 float64, caps Caps) InverseSolution
	// Line constructs a geodesic line from (lat1, lon1) with forward
	// azimuth azi1 degrees.
	Line(lat1, lon1, azi1 float64, caps Caps) Line
}

// Line is a geodesic line that can be stepped to any distance from its
// starting point.
type Line interface {
	// Position returns the point at distance s (same units as the
	// equatorial radius, negative allowed) along the line.
	Position(s float64) Position
}

// angNormalize reduces a longitude to [-180, 180).
func angNormalize(lon float64) float64 {
	lon = math.Remainder(lon, 360)
	if lon == 180 {
		lon = -180
	}
	return lon
}

// wrap180 reduces an angle to [-180, 180].
func wrap180(degs float64) float64 {
	if degs < -180 || degs > 180 {
		degs = math.Mod(degs, 360)
		if degs < -180 {
			degs += 360
		} else if degs > 180 {
			degs -= 360
		}
	}
	return degs
}

// Sphere is a great-circle geodesic engine. The reduced length and geodesic
// scale have closed forms on a sphere (m = R sin(s/R), M = cos(s/R)), so
// this engine is exact and cheap; it is also the natural choice when the
// flattening is negligible for the application.
type Sphere struct {
	r float64
}

// NewSphere constructs a spherical engine with the given radius.
func NewSphere(radius float64) (*Sphere, error) {
	if radius <= 0 {
		return nil, errors.New("radius must be greater than zero")
	}
	return &Sphere{r: radius}, nil
}

// EquatorialRadius returns the sphere radius.
func (s *Sphere) EquatorialRadius() float64 { return s.r }

// Inverse solves the inverse great-circle problem.
func (s *Sphere) Inverse(lat1, lon1, lat2, lon2 float64, _ Caps) InverseSolution {
	sp1, cp1 := math.Sincos(lat1 * degree)
	sp2, cp2 := math.Sincos(lat2 * degree)
	sdl, cdl := math.Sincos((lon2 - lon1) * degree)

	// spherical triangle relations; robust for small and near-antipodal
	// separations alike
	x := cp1*sp2 - sp1*cp2*cdl
	y := cp2 * sdl
	sigma := math.Atan2(math.Hypot(x, y), sp1*sp2+cp1*cp2*cdl)
	ssig, csig := math.Sincos(sigma)

	return InverseSolution{
		StartAzimuth:  math.Atan2(y, x) / degree,
		Azimuth:       math.Atan2(cp1*sdl, -sp1*cp2+cp1*sp2*cdl) / degree,
		ReducedLength: s.r * ssig,
		Scale:         csig,
	}
}

// Line constructs a great-circle line.
func (s *Sphere) Line(lat1, lon1, azi1 float64, _ Caps) Line {
	l := &sphereLine{r: s.r, lam1: lon1 * degree}
	l.sp1, l.cp1 = math.Sincos(lat1 * degree)
	l.sa1, l.ca1 = math.Sincos(azi1 * degree)
	return l
}

type sphereLine struct {
	r        float64
	sp1, cp1 float64
	lam1     float64
	sa1, ca1 float64
}

func (l *sphereLine) Position(s float64) Position {
	sigma := s / l.r
	ssig, csig := math.Sincos(sigma)

	sp2 := l.sp1*csig + l.cp1*ssig*l.ca1
	if sp2 > 1 {
		sp2 = 1
	} else if sp2 < -1 {
		sp2 = -1
	}
	lat2 := math.Asin(sp2) / degree
	lam2 := l.lam1 + math.Atan2(l.sa1*ssig*l.cp1, csig-l.sp1*sp2)
	// forward azimuth at the point: atan2(sin a1 cos p1, cos p1 cos sig
	// cos a1 - sin p1 sin sig), both scaled by the common 1/cos(p2)
	azi2 := math.Atan2(l.sa1*l.cp1, l.cp1*csig*l.ca1-l.sp1*ssig) / degree

	return Position{
		Lat:           lat2,
		Lon:           wrap180(lam2 / degree),
		Azimuth:       azi2,
		ReducedLength: l.r * ssig,
		Scale:         csig,
	}
}

// Ellipsoid is a geodesic engine for an oblate ellipsoid, backed by the
// geodesic solver of github.com/tidwall/geodesic. The solver's public
// interface stops at distances and azimuths, so the reduced length and
// geodesic scale are recovered by symmetric differencing of neighboring
// geodesics:
//
//   - m12 is the separation rate of two geodesics leaving the start point
//     with azimuths azi1 +/- da;
//   - M12 is the separation ratio of two geodesics started h off-track on
//     either side with the azimuth parallel-transported along the offset.
//
// The differencing steps are chosen so the recovered quantities carry a
// relative error of order 1e-9, well below the gnomonic iteration tolerance.
type Ellipsoid struct {
	g *geodesic.Ellipsoid
	a float64
}

// aziStep is the half-width, in degrees, of the azimuth perturbation used
// to difference the reduced length.
const aziStep = 2e-3

// offsetFrac is the perpendicular offset used to difference the geodesic
// scale, as a fraction of the equatorial radius.
const offsetFrac = 1e-6

// NewEllipsoid constructs an ellipsoidal engine with the given equatorial
// radius and flattening.
func NewEllipsoid(radius, flattening float64) (*Ellipsoid, error) {
	if radius <= 0 {
		return nil, errors.New("equatorial radius must be greater than zero")
	}
	if flattening < 0 || flattening >= 1 {
		return nil, errors.New("flattening must be in [0, 1)")
	}
	return &Ellipsoid{g: geodesic.NewEllipsoid(radius, flattening), a: radius}, nil
}

// EquatorialRadius returns the equatorial radius a.
func (e *Ellipsoid) EquatorialRadius() float64 { return e.a }

// Inverse solves the inverse geodesic problem.
func (e *Ellipsoid) Inverse(lat1, lon1, lat2, lon2 float64, caps Caps) InverseSolution {
	var s12, azi1, azi2 float64
	e.g.Inverse(lat1, lon1, lat2, lon2, &s12, &azi1, &azi2)
	sol := InverseSolution{StartAzimuth: azi1, Azimuth: azi2}
	if caps&CapReducedLength != 0 {
		sol.ReducedLength = e.reducedLength(lat1, lon1, azi1, s12)
	}
	if caps&CapGeodesicScale != 0 {
		sol.Scale = e.geodesicScale(lat1, lon1, azi1, s12, azi2)
	}
	return sol
}

// Line constructs a geodesic line.
func (e *Ellipsoid) Line(lat1, lon1, azi1 float64, caps Caps) Line {
	return &ellipsoidLine{e: e, lat1: lat1, lon1: lon1, azi1: azi1, caps: caps}
}

type ellipsoidLine struct {
	e                *Ellipsoid
	lat1, lon1, azi1 float64
	caps             Caps
}

func (l *ellipsoidLine) Position(s float64) Position {
	var lat2, lon2, azi2 float64
	l.e.g.Direct(l.lat1, l.lon1, l.azi1, s, &lat2, &lon2, &azi2)
	pos := Position{Lat: lat2, Lon: lon2, Azimuth: azi2}
	if l.caps&CapReducedLength != 0 {
		pos.ReducedLength = l.e.reducedLength(l.lat1, l.lon1, l.azi1, s)
	}
	if l.caps&CapGeodesicScale != 0 {
		pos.Scale = l.e.geodesicScale(l.lat1, l.lon1, l.azi1, s, azi2)
	}
	return pos
}

// reducedLength differences the end points of two geodesics launched with
// perturbed azimuths. The separation grows as m12 per radian of azimuth.
func (e *Ellipsoid) reducedLength(lat1, lon1, azi1, s float64) float64 {
	var latp, lonp, latm, lonm float64
	e.g.Direct(lat1, lon1, azi1+aziStep, s, &latp, &lonp, nil)
	e.g.Direct(lat1, lon1, azi1-aziStep, s, &latm, &lonm, nil)
	var chord float64
	e.g.Inverse(latm, lonm, latp, lonp, &chord, nil, nil)
	m := chord / (2 * aziStep * degree)
	if s < 0 {
		m = -m
	}
	return m
}

// geodesicScale differences the end points of two geodesics started
// perpendicular offsets to either side of the start point. The transported
// azimuth keeps a right angle with the offset geodesic, which makes the
// initial separation rate zero; the end separation over the initial one is
// M12. The sign follows from which side of the base line the images land on.
func (e *Ellipsoid) geodesicScale(lat1, lon1, azi1, s, azi2 float64) float64 {
	h := offsetFrac * e.a

	var latl, lonl, azil float64
	e.g.Direct(lat1, lon1, azi1+90, h, &latl, &lonl, &azil)
	var latp, lonp float64
	e.g.Direct(latl, lonl, azil-90, s, &latp, &lonp, nil)

	e.g.Direct(lat1, lon1, azi1-90, h, &latl, &lonl, &azil)
	var latm, lonm float64
	e.g.Direct(latl, lonl, azil+90, s, &latm, &lonm, nil)

	var sep, bearing float64
	e.g.Inverse(latm, lonm, latp, lonp, &sep, &bearing, nil)
	scale := sep / (2 * h)
	// bearing from the minus-side image to the plus-side image should sit
	// 90 degrees left-to-right of the line azimuth; the opposite means the
	// images have crossed and the scale is negative
	if math.Cos((bearing-(azi2+90))*degree) < 0 {
		scale = -scale
	}
	return scale
}
