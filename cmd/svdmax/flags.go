package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/svdmax/internal/logger"
)

var (
	weightsPath  string
	weightTensor string
	biasTensor   string
	vocab        int64
	dim          int64
	seed         int64
	previewRank  int64
	budget       int64
	logLevel     string
	logFormat    string
	debug        bool
)

func weightFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "weights",
			Aliases:     []string{"w"},
			Usage:       "path to a .safetensors file (omit for random weights)",
			Destination: &weightsPath,
		},
		&cli.StringFlag{
			Name:        "weight-tensor",
			Usage:       "name of the projection weight tensor",
			Value:       "output.weight",
			Destination: &weightTensor,
		},
		&cli.StringFlag{
			Name:        "bias-tensor",
			Usage:       "name of the optional bias tensor",
			Destination: &biasTensor,
		},
		&cli.Int64Flag{
			Name:        "vocab",
			Aliases:     []string{"V"},
			Usage:       "vocabulary size for random weights",
			Value:       32000,
			Destination: &vocab,
		},
		&cli.Int64Flag{
			Name:        "dim",
			Aliases:     []string{"D"},
			Usage:       "hidden dimension for random weights",
			Value:       768,
			Destination: &dim,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "seed for random weights and inputs",
			Value:       42,
			Destination: &seed,
		},
	}
}

func paramFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "preview-rank",
			Aliases:     []string{"W"},
			Usage:       "preview rank (0 = ceil(D/5))",
			Destination: &previewRank,
		},
		&cli.Int64Flag{
			Name:        "budget",
			Aliases:     []string{"N"},
			Usage:       "correction budget (0 = ceil(V/10))",
			Destination: &budget,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func buildLogger() logger.Logger {
	level := logLevel
	if debug {
		level = "debug"
	}
	return logger.Setup(os.Stderr, logFormat, level)
}
