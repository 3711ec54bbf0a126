package lib

import (
	"gocv.io/x/gocv"
)

// ControlPanel exposes one trackbar per calibration field.
// gocv trackbars have no callbacks, so Sync polls them from the display loop
// and forwards only the sliders that moved since the previous poll.
type ControlPanel struct {
	window *gocv.Window
	bars   [numFields]*gocv.Trackbar
	last   [numFields]int
	store  *ParamStore
}

// NewControlPanel adds the six trackbars to window, positioned from the store
func NewControlPanel(window *gocv.Window, store *ParamStore) *ControlPanel {
	cp := &ControlPanel{
		window: window,
		store:  store,
	}

	current := store.Snapshot()
	for _, f := range Fields {
		bar := window.CreateTrackbar(f.Label(), f.Max())
		bar.SetPos(current.Get(f))
		cp.bars[f] = bar
		// highgui clamps out of range values, so seed from what the bar actually shows
		cp.last[f] = bar.GetPos()
	}
	return cp
}

// Sync forwards moved trackbars into the store and reports whether anything changed
func (cp *ControlPanel) Sync() bool {
	var positions [numFields]int
	for _, f := range Fields {
		positions[f] = cp.bars[f].GetPos()
	}
	return applyPositions(cp.store, &cp.last, positions)
}

// Close destroys the controls window
func (cp *ControlPanel) Close() {
	cp.window.Close()
}

// applyPositions writes each field whose position differs from last into the
// store and records the new positions. Unmoved bars leave the store alone.
func applyPositions(store *ParamStore, last *[numFields]int, positions [numFields]int) bool {
	changed := false
	for _, f := range Fields {
		if positions[f] == last[f] {
			continue
		}
		last[f] = positions[f]
		if store.SetField(f, positions[f]) {
			changed = true
		}
	}
	return changed
}
