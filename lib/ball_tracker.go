package lib

import (
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrCaptureFailed is returned by Run when the frame source stops producing frames
var ErrCaptureFailed = errors.New("capture failed")

const keyEscape = 27

// FrameSource supplies BGR frames. *gocv.VideoCapture satisfies it.
type FrameSource interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// TrackerConfig holds configuration for the capture loop
type TrackerConfig struct {
	CameraID           int
	WindowName         string
	ControlsWindowName string
	ShowWindow         bool
	Calibrate          bool // show the mask instead of the camera image
	MarkerSize         int
	KeyDelay           int // milliseconds passed to WaitKey
	MaxReadFailures    int // consecutive failed reads before giving up, 0 = never
	ReadRetryDelay     time.Duration
}

// DefaultTrackerConfig returns the configuration used by the command
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CameraID:           0,
		WindowName:         "pptracker",
		ControlsWindowName: "Controls",
		ShowWindow:         true,
		Calibrate:          false,
		MarkerSize:         20,
		KeyDelay:           1,
		MaxReadFailures:    100,
		ReadRetryDelay:     10 * time.Millisecond,
	}
}

// BallTracker pulls frames, runs the detector on them and shows the result.
// Run must be called from the main goroutine when ShowWindow is set.
type BallTracker struct {
	Config   TrackerConfig
	source   FrameSource
	window   *gocv.Window
	controls *ControlPanel
	detector *BallDetector
	store    *ParamStore
	reporter *PositionReporter
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
	stopped  bool
	stopChan chan struct{}
}

// OpenBallTracker opens the configured camera and builds a tracker around it
func OpenBallTracker(config TrackerConfig, store *ParamStore, reporter *PositionReporter, logger *slog.Logger) (*BallTracker, error) {
	webcam, err := gocv.OpenVideoCapture(config.CameraID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open camera %d", config.CameraID)
	}
	return NewBallTracker(config, webcam, store, reporter, logger), nil
}

// NewBallTracker builds a tracker reading from source. reporter may be nil.
func NewBallTracker(config TrackerConfig, source FrameSource, store *ParamStore, reporter *PositionReporter, logger *slog.Logger) *BallTracker {
	if logger == nil {
		logger = slog.Default()
	}

	bt := &BallTracker{
		Config:   config,
		source:   source,
		detector: NewBallDetector(),
		store:    store,
		reporter: reporter,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	// Only create windows if explicitly requested
	if config.ShowWindow {
		bt.window = gocv.NewWindow(config.WindowName)
		bt.controls = NewControlPanel(gocv.NewWindow(config.ControlsWindowName), store)
	}
	return bt
}

// Params returns the current calibration
func (bt *BallTracker) Params() Params {
	return bt.store.Snapshot()
}

// Run processes frames until a quit key, Stop, or a dead frame source
func (bt *BallTracker) Run() error {
	bt.mu.Lock()
	if bt.running {
		bt.mu.Unlock()
		return errors.New("tracker is already running")
	}
	bt.running = true
	bt.mu.Unlock()

	defer func() {
		bt.mu.Lock()
		bt.running = false
		bt.mu.Unlock()
	}()

	img := gocv.NewMat()
	defer img.Close()

	failures := 0
	for {
		select {
		case <-bt.stopChan:
			return nil
		default:
		}

		if ok := bt.source.Read(&img); !ok || img.Empty() {
			failures++
			if bt.Config.MaxReadFailures > 0 && failures >= bt.Config.MaxReadFailures {
				return errors.Wrapf(ErrCaptureFailed, "%d consecutive reads returned no frame", failures)
			}
			bt.logger.Debug("no frame from source", "failures", failures)
			time.Sleep(bt.Config.ReadRetryDelay)
			continue
		}
		failures = 0

		if bt.processFrame(img) {
			bt.logger.Info("quit requested")
			return nil
		}
	}
}

// processFrame handles a single valid frame and reports whether the user asked to quit
func (bt *BallTracker) processFrame(img gocv.Mat) bool {
	if bt.controls != nil && bt.controls.Sync() {
		bt.logger.Debug("calibration changed", "params", bt.store.Snapshot().String())
	}

	params := bt.store.Snapshot()
	res := bt.detector.Detect(img, params)
	defer res.Close()

	if res.Found {
		bt.logger.Debug("found the target", "x", res.X, "y", res.Y, "area", res.Area)
	}

	if bt.reporter != nil {
		if err := bt.reporter.Report(res); err != nil {
			bt.logger.Warn("position report failed", "error", err)
		}
	}

	if bt.window == nil {
		return false
	}

	display := renderFrame(img, res, bt.Config.Calibrate, bt.Config.MarkerSize)
	defer display.Close()

	bt.window.IMShow(display)
	return isQuitKey(bt.window.WaitKey(bt.Config.KeyDelay))
}

// Stop makes Run return after the current frame. Safe to call from any goroutine.
func (bt *BallTracker) Stop() {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	if bt.stopped {
		return
	}
	bt.stopped = true
	close(bt.stopChan)
}

// Close releases all resources
func (bt *BallTracker) Close() {
	bt.Stop()

	if bt.source != nil {
		bt.source.Close()
	}

	if bt.window != nil {
		bt.window.Close()
	}

	if bt.controls != nil {
		bt.controls.Close()
	}

	bt.detector.Close()
}

// renderFrame returns the image to display: the camera frame, or the mask in
// calibration mode, with the marker drawn when the ball was found
func renderFrame(frame gocv.Mat, res DetectionResult, calibrate bool, markerSize int) gocv.Mat {
	var display gocv.Mat
	if calibrate {
		display = res.Mask.Clone()
	} else {
		display = frame.Clone()
	}

	if res.Found {
		DrawMarker(&display, res.X, res.Y, markerSize)
	}
	return display
}

// DrawMarker outlines a size x size white square with its top-left corner at (x, y)
func DrawMarker(img *gocv.Mat, x, y, size int) {
	white := color.RGBA{255, 255, 255, 0}
	gocv.RectangleWithParams(img, image.Rect(x, y, x+size, y+size), white, 1, gocv.Line8, 0)
}

func isQuitKey(key int) bool {
	key &= 0xFF
	return key == keyEscape || key == 'q'
}
