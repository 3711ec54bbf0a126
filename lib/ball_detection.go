package lib

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	// MinBallArea is the mask area, in pixels, the ball must exceed to count as found
	MinBallArea = 10000.0

	// MorphKernelSize is the side of the square structuring element
	MorphKernelSize = 5
)

// DetectionResult is the outcome of one frame
type DetectionResult struct {
	Found bool
	X     int // valid only when Found
	Y     int // valid only when Found
	Area  float64

	// Mask is the cleaned binary mask, kept for calibration display.
	// The caller owns it and must Close it.
	Mask gocv.Mat
}

// Close releases the mask
func (r *DetectionResult) Close() {
	r.Mask.Close()
}

// BallDetector segments a single colored ball by HSV range and reports its centroid.
// It keeps no state between frames other than its structuring element.
type BallDetector struct {
	kernel gocv.Mat
}

// NewBallDetector creates a detector with a flat 5x5 structuring element
func NewBallDetector() *BallDetector {
	return &BallDetector{
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(MorphKernelSize, MorphKernelSize)),
	}
}

// Close releases the structuring element
func (bd *BallDetector) Close() {
	bd.kernel.Close()
}

// Detect runs the pipeline on a BGR frame. Neither frame nor params are modified.
// The frame must be a valid capture; empty frames are the caller's problem.
func (bd *BallDetector) Detect(frame gocv.Mat, params Params) DetectionResult {
	hsvImg := gocv.NewMat()
	defer hsvImg.Close()

	mask := gocv.NewMat()

	gocv.CvtColor(frame, &hsvImg, gocv.ColorBGRToHSV)
	gocv.InRangeWithScalar(hsvImg, params.Lower(), params.Upper(), &mask)

	// Knock out speckle, then close small holes. The order matters.
	gocv.Erode(mask, &mask, bd.kernel)
	gocv.Dilate(mask, &mask, bd.kernel)
	gocv.Dilate(mask, &mask, bd.kernel)
	gocv.Erode(mask, &mask, bd.kernel)

	moments := gocv.Moments(mask, true)
	m00 := moments["m00"]
	found, x, y := centroidFromMoments(m00, moments["m10"], moments["m01"])

	return DetectionResult{
		Found: found,
		X:     x,
		Y:     y,
		Area:  m00,
		Mask:  mask,
	}
}

// centroidFromMoments applies the area gate and truncates the centroid
func centroidFromMoments(m00, m10, m01 float64) (bool, int, int) {
	if m00 > MinBallArea {
		return true, int(m10 / m00), int(m01 / m00)
	}
	return false, 0, 0
}
