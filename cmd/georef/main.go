package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openspatial/geoproj"
	"github.com/openspatial/geoproj/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Precision int  `short:"p" long:"precision" env:"GEOREF_PRECISION" default:"2" description:"Encoding precision in [-1, 11]"`
	Reverse   bool `short:"r" long:"reverse"   description:"Decode georef strings to latitude and longitude"`
	Center    bool `short:"c" long:"center"    description:"Decode to the cell center instead of the south-west corner"`

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

	ok := true
	if opts.Reverse {
		for _, code := range inputs {
			lat, lon, prec, err := geoproj.FromGeoref(code, opts.Center)
			if err != nil {
				log.Error().Err(err).Str("input", code).Msg("Decoding failed")
				ok = false
				continue
			}
			fmt.Printf("%.10f %.10f %d\n", lat, lon, prec)
		}
	} else {
		if len(inputs)%2 != 0 {
			log.Fatal().Int("count", len(inputs)).Msg("Encoding needs latitude longitude pairs")
		}
		for i := 0; i < len(inputs); i += 2 {
			lat, err := strconv.ParseFloat(inputs[i], 64)
			if err != nil {
				log.Error().Err(err).Str("input", inputs[i]).Msg("Bad latitude")
				ok = false
				continue
			}
			lon, err := strconv.ParseFloat(inputs[i+1], 64)
			if err != nil {
				log.Error().Err(err).Str("input", inputs[i+1]).Msg("Bad longitude")
				ok = false
				continue
			}
			code, err := geoproj.ToGeoref(lat, lon, opts.Precision)
			if err != nil {
				log.Error().Err(err).
					Float64("lat", lat).
					Float64("lon", lon).
					Msg("Encoding failed")
				ok = false
				continue
			}
			fmt.Println(code)
		}
	}
	if !ok {
		os.Exit(1)
	}
}
