package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openspatial/geoproj"
	"github.com/openspatial/geoproj/internal/config"
	"github.com/openspatial/geoproj/internal/logger"

	"github.com/golang/geo/s2"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to site configuration file"`
	Origin     string `short:"o" long:"origin"  env:"ORIGIN"      description:"Projection origin as lat,lon in degrees"`
	Reverse    bool   `short:"r" long:"reverse" description:"Convert planar x y pairs back to latitude and longitude"`

	Args struct {
		Inputs []string `positional-arg-name:"input"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	proj := geoproj.DefaultGnomonic
	var origin *s2.LatLng
	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		eng, err := cfg.Ellipsoid.Engine()
		if err != nil {
			log.Fatal().Err(err).Msg("Bad ellipsoid configuration")
		}
		proj = geoproj.NewGnomonic(eng)
		if cfg.Origin != nil {
			ll := s2.LatLngFromDegrees(cfg.Origin.Lat, cfg.Origin.Lon)
			origin = &ll
		}
	}
	if opts.Origin != "" {
		ll, err := parseOrigin(opts.Origin)
		if err != nil {
			log.Fatal().Err(err).Str("origin", opts.Origin).Msg("Bad origin")
		}
		origin = &ll
	}
	if origin == nil {
		log.Fatal().Msg("A projection origin is required, via --origin or the configuration file")
	}

	inputs := opts.Args.Inputs
	if len(inputs) == 0 {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			inputs = append(inputs, strings.Fields(sc.Text())...)
		}
		if err := sc.Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to read standard input")
		}
	}
	if len(inputs)%2 != 0 {
		log.Fatal().Int("count", len(inputs)).Msg("Input must be pairs of numbers")
	}

	ok := true
	for i := 0; i < len(inputs); i += 2 {
		u, err := strconv.ParseFloat(inputs[i], 64)
		if err != nil {
			log.Error().Err(err).Str("input", inputs[i]).Msg("Bad number")
			ok = false
			continue
		}
		v, err := strconv.ParseFloat(inputs[i+1], 64)
		if err != nil {
			log.Error().Err(err).Str("input", inputs[i+1]).Msg("Bad number")
			ok = false
			continue
		}
		if opts.Reverse {
			ll, c := proj.Reverse(*origin, u, v)
			fmt.Printf("%.10f %.10f %.10f %.8f\n",
				ll.Lat.Degrees(), ll.Lng.Degrees(), c.Azimuth, c.Scale)
		} else {
			c := proj.Forward(*origin, s2.LatLngFromDegrees(u, v))
			fmt.Printf("%.3f %.3f %.10f %.8f\n", c.X, c.Y, c.Azimuth, c.Scale)
		}
	}
	if !ok {
		os.Exit(1)
	}
}

func parseOrigin(s string) (s2.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return s2.LatLng{}, fmt.Errorf("origin %q must be lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return s2.LatLng{}, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return s2.LatLng{}, err
	}
	return s2.LatLngFromDegrees(lat, lon), nil
}
