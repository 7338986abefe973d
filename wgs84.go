package geoproj

import "fmt"

// DefaultEllipsoid is the WGS84 ellipsoid geodesic engine.
var DefaultEllipsoid *Ellipsoid

// DefaultGnomonic is a WGS84 ellipsoid based gnomonic projection.
var DefaultGnomonic *Gnomonic

func init() {
	const semiMajorAxis = 6378137
	const flattening = 1 / 298.257223563
	var err error
	DefaultEllipsoid, err = NewEllipsoid(semiMajorAxis, flattening)
	if err != nil {
		panic(fmt.Sprintf("error constructing WGS84 geodesic engine: %s", err))
	}
	DefaultGnomonic = NewGnomonic(DefaultEllipsoid)
}
