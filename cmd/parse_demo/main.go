// README: Parses a transcript from the arguments (or stdin) and prints the fields and tokens as JSON.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"tripintake/internal/config"
	"tripintake/internal/logging"
	"tripintake/internal/modules/tripparse"
)

func main() {
	trace := flag.Bool("trace", false, "log every parser event to stderr")
	tuning := flag.String("config", "", "parser tuning YAML file")
	flag.Parse()

	logger := logging.New(os.Stderr, "debug", true)

	pc, err := config.LoadParserConfig(*tuning)
	if err != nil {
		logger.Fatal().Err(err).Msg("parser config")
	}

	transcript := strings.Join(flag.Args(), " ")
	if transcript == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal().Err(err).Msg("read stdin")
		}
		transcript = string(data)
	}

	opts := []tripparse.Option{
		tripparse.WithPolicy(pc.Policy()),
		tripparse.WithLocation(pc.Location()),
	}
	if *trace {
		opts = append(opts, tripparse.WithObserver(tripparse.LogObserver(logger)))
	}
	parser := tripparse.New(opts...)

	analysis := parser.Analyze(transcript, tripparse.Context{})
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		logger.Fatal().Err(err).Msg("encode")
	}
}
