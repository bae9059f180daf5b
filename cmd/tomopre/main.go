package main

import (
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"tomopre/pkg/center"
	"tomopre/pkg/config"
	"tomopre/pkg/phase"
	"tomopre/pkg/recon"
	"tomopre/pkg/rings"
	"tomopre/pkg/tomo"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Raw float64 projection stack file")
	projections := flag.Int("projections", 0, "Projection-axis extent of the input stack")
	slices := flag.Int("slices", 0, "Slice-axis extent of the input stack")
	pixels := flag.Int("pixels", 0, "Pixel-axis extent of the input stack")
	whitePath := flag.String("white", "", "Raw float64 white-field frame file (optional)")
	whiteCount := flag.Int("white-count", 1, "Number of frames in the white-field file")
	outputPath := flag.String("output", "preprocessed.raw", "Output stack filename")
	configPath := flag.String("config", "tomopre.yaml", "Configuration file")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})

	// Validate inputs
	if *inputPath == "" || *projections < 1 || *slices < 1 || *pixels < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}
	if *verbose || cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	logger.Info("reading projection stack", "file", *inputPath,
		"projections", *projections, "slices", *slices, "pixels", *pixels)
	stack, err := tomo.ReadRawFile(*inputPath, *projections, *slices, *pixels)
	if err != nil {
		logger.Fatal("failed to read stack", "err", err)
	}

	start := time.Now()

	// Stage 1: white-field normalization.
	if *whitePath != "" {
		white, err := tomo.ReadRawFrames(*whitePath, *whiteCount, *slices, *pixels)
		if err != nil {
			logger.Fatal("failed to read white frames", "err", err)
		}
		stack.White = white

		var cutoff *float64
		if cfg.Normalize.Cutoff > 0 {
			cutoff = &cfg.Normalize.Cutoff
		}
		logger.Info("normalizing data", "whiteFrames", *whiteCount)
		if err := stack.Normalize(cutoff); err != nil {
			logger.Fatal("normalization failed", "err", err)
		}
	}

	// Stage 2: median filtering.
	logger.Info("applying median filter", "axis", cfg.Median.Axis,
		"size", [2]int{cfg.Median.SizeRows, cfg.Median.SizeCols})
	if err := stack.MedianFilter(tomo.Axis(cfg.Median.Axis), cfg.Median.SizeRows, cfg.Median.SizeCols); err != nil {
		logger.Fatal("median filter failed", "err", err)
	}

	// Stage 3: optional Fresnel phase retrieval.
	if cfg.Phase.Enabled {
		err := phase.Retrieve(stack, phase.Options{
			PixelSize: cfg.Phase.PixelSize,
			Dist:      cfg.Phase.Dist,
			Energy:    cfg.Phase.Energy,
			Alpha:     cfg.Phase.Alpha,
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal("phase retrieval failed", "err", err)
		}
	}

	// Stage 4: rotation center search.
	searchOpts := center.DefaultOptions()
	searchOpts.SliceIndex = cfg.Center.Slice
	searchOpts.Tol = cfg.Center.Tol
	searchOpts.FilterSigma = cfg.Center.FilterSigma
	searchOpts.MaxIterations = cfg.Center.MaxIterations
	searchOpts.Logger = logger
	optimalCenter, err := center.Optimize(recon.NewFBP(), stack, searchOpts)
	if err != nil {
		logger.Fatal("center search failed", "err", err)
	}

	// Stage 5: ring artifact suppression.
	err = rings.Remove(stack, rings.Options{
		Level:   cfg.Rings.Level,
		Wavelet: cfg.Rings.Wavelet,
		Sigma:   cfg.Rings.Sigma,
		Workers: cfg.Rings.Workers,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("ring suppression failed", "err", err)
	}

	if err := stack.WriteRawFile(*outputPath); err != nil {
		logger.Fatal("failed to write output stack", "err", err)
	}

	logger.Info("preprocessing completed",
		"center", optimalCenter,
		"output", *outputPath,
		"elapsed", time.Since(start).Round(time.Millisecond))
}
