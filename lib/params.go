package lib

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Field identifies one of the six calibration values
type Field int

const (
	FieldLowH Field = iota
	FieldLowS
	FieldLowV
	FieldHighH
	FieldHighS
	FieldHighV

	numFields = 6
)

const (
	MaxHue        = 179
	MaxSaturation = 255
	MaxValue      = 255
)

// Fields lists every calibration field in trackbar order
var Fields = [numFields]Field{FieldLowH, FieldLowS, FieldLowV, FieldHighH, FieldHighS, FieldHighV}

var fieldNames = [numFields]string{"lowH", "lowS", "lowV", "highH", "highS", "highV"}

// String returns the key used for the field in the config file
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Label returns the trackbar caption for the field
func (f Field) Label() string {
	switch f {
	case FieldLowH:
		return "LowH"
	case FieldLowS:
		return "LowS"
	case FieldLowV:
		return "LowV"
	case FieldHighH:
		return "HighH"
	case FieldHighS:
		return "HighS"
	case FieldHighV:
		return "HighV"
	}
	return f.String()
}

// Max returns the largest value the UI offers for the field.
// It is not enforced by Set.
func (f Field) Max() int {
	switch f {
	case FieldLowH, FieldHighH:
		return MaxHue
	case FieldLowS, FieldHighS:
		return MaxSaturation
	default:
		return MaxValue
	}
}

// ParseField maps a config key ("lowH") or trackbar label ("LowH") to its Field
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if name == f.String() || name == f.Label() {
			return f, nil
		}
	}
	return 0, errors.Errorf("unknown calibration field %q", name)
}

// Params is the HSV range used to segment the ball
type Params struct {
	LowH  int `json:"lowH"`
	LowS  int `json:"lowS"`
	LowV  int `json:"lowV"`
	HighH int `json:"highH"`
	HighS int `json:"highS"`
	HighV int `json:"highV"`
}

// DefaultParams returns the full HSV range, which matches every pixel
func DefaultParams() Params {
	return Params{
		LowH:  0,
		LowS:  0,
		LowV:  0,
		HighH: MaxHue,
		HighS: MaxSaturation,
		HighV: MaxValue,
	}
}

// Get returns the value of a single field
func (p Params) Get(f Field) int {
	switch f {
	case FieldLowH:
		return p.LowH
	case FieldLowS:
		return p.LowS
	case FieldLowV:
		return p.LowV
	case FieldHighH:
		return p.HighH
	case FieldHighS:
		return p.HighS
	case FieldHighV:
		return p.HighV
	}
	return 0
}

// Set updates exactly one field. Values are stored as given, out of range or not.
func (p *Params) Set(f Field, v int) {
	switch f {
	case FieldLowH:
		p.LowH = v
	case FieldLowS:
		p.LowS = v
	case FieldLowV:
		p.LowV = v
	case FieldHighH:
		p.HighH = v
	case FieldHighS:
		p.HighS = v
	case FieldHighV:
		p.HighV = v
	}
}

// Lower returns the lower HSV bound for thresholding
func (p Params) Lower() gocv.Scalar {
	return gocv.NewScalar(float64(p.LowH), float64(p.LowS), float64(p.LowV), 0)
}

// Upper returns the upper HSV bound for thresholding
func (p Params) Upper() gocv.Scalar {
	return gocv.NewScalar(float64(p.HighH), float64(p.HighS), float64(p.HighV), 0)
}

func (p Params) String() string {
	return fmt.Sprintf("Low=(%d, %d, %d) High=(%d, %d, %d)", p.LowH, p.LowS, p.LowV, p.HighH, p.HighS, p.HighV)
}

// ParamStore holds the session's calibration. The UI side writes single
// fields while the detection side takes whole snapshots, so a frame never
// sees half of an update.
type ParamStore struct {
	mu     sync.RWMutex
	params Params
}

// NewParamStore creates a store seeded with p
func NewParamStore(p Params) *ParamStore {
	return &ParamStore{params: p}
}

// Snapshot returns a copy of all six fields taken together
func (s *ParamStore) Snapshot() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetField updates one field and reports whether the value changed
func (s *ParamStore) SetField(f Field, v int) bool {
	if f < 0 || f >= numFields {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.params.Get(f) == v {
		return false
	}
	s.params.Set(f, v)
	return true
}

// SetByName is SetField keyed by config key or trackbar label
func (s *ParamStore) SetByName(name string, v int) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}
	s.SetField(f, v)
	return nil
}
