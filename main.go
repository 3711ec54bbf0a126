package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"pptracker/lib"
)

const configPath = "config.json"

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pptracker [calibrate]")
	}
	flag.Parse()
	calibrate := flag.NArg() > 0 && flag.Arg(0) == "calibrate"

	level := slog.LevelInfo
	if calibrate {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	if err := run(calibrate, logger); err != nil {
		logger.Error("pptracker failed", "error", err)
		os.Exit(1)
	}
}

func run(calibrate bool, logger *slog.Logger) error {
	params, status, err := lib.LoadParams(configPath)
	switch status {
	case lib.LoadOK:
		logger.Info("loaded calibration", "path", configPath, "params", params.String())
	case lib.LoadMissing:
		logger.Debug("no calibration file, using defaults", "path", configPath)
	case lib.LoadUnreadable:
		logger.Warn("cannot read calibration, using defaults", "path", configPath, "error", err)
	default:
		logger.Warn("ignoring malformed calibration, using defaults", "path", configPath, "error", err)
	}
	store := lib.NewParamStore(params)

	reporter, err := openReporter(logger)
	if err != nil {
		return err
	}
	if reporter != nil {
		defer reporter.Close()
	}

	config := lib.DefaultTrackerConfig()
	config.Calibrate = calibrate

	tracker, err := lib.OpenBallTracker(config, store, reporter, logger)
	if err != nil {
		return err
	}
	defer tracker.Close()

	// Ctrl+C stops the loop the same way the quit key does, so calibration is still saved
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("signal received, shutting down")
		tracker.Stop()
	}()

	logger.Info("tracking started, press q or ESC to quit", "calibrate", calibrate)
	runErr := tracker.Run()

	if err := lib.SaveParams(configPath, tracker.Params()); err != nil {
		return err
	}
	logger.Info("saved calibration", "path", configPath, "params", tracker.Params().String())
	return runErr
}

// openReporter opens the serial reporter named by PPTRACKER_SERIAL_PORT, if any
func openReporter(logger *slog.Logger) (*lib.PositionReporter, error) {
	portName := os.Getenv("PPTRACKER_SERIAL_PORT")
	if portName == "" {
		return nil, nil
	}

	baudRate := lib.DefaultBaudRate
	if s := os.Getenv("PPTRACKER_SERIAL_BAUD"); s != "" {
		b, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid PPTRACKER_SERIAL_BAUD %q", s)
		}
		baudRate = b
	}

	reporter, err := lib.OpenSerialReporter(portName, baudRate)
	if err != nil {
		if ports, perr := lib.AvailablePorts(); perr == nil {
			logger.Error("serial port unavailable", "port", portName, "available", ports)
		}
		return nil, err
	}
	logger.Info("reporting positions over serial", "port", portName, "baud", baudRate)
	return reporter, nil
}
