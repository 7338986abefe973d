// Package config handles configuration loading for the command line tools.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openspatial/geoproj"
)

const wgs84SemiMajorAxis = 6378137
const wgs84Flattening = 1 / 298.257223563

// Config represents the site configuration file structure.
type Config struct {
	Ellipsoid Ellipsoid `yaml:"ellipsoid,omitempty"`
	Origin    *Point    `yaml:"origin,omitempty"`
}

// Ellipsoid selects the reference surface. A zero value means WGS84.
type Ellipsoid struct {
	Radius     float64 `yaml:"radius,omitempty"`
	Flattening float64 `yaml:"flattening,omitempty"`
	Sphere     bool    `yaml:"sphere,omitempty"`
}

// Point is a geodetic point in degrees.
type Point struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Engine constructs the geodesic engine the configuration describes.
func (e Ellipsoid) Engine() (geoproj.Engine, error) {
	radius := e.Radius
	if radius == 0 {
		radius = wgs84SemiMajorAxis
	}
	if e.Sphere {
		return geoproj.NewSphere(radius)
	}
	flattening := e.Flattening
	if e.Radius == 0 && flattening == 0 {
		flattening = wgs84Flattening
	}
	return geoproj.NewEllipsoid(radius, flattening)
}
