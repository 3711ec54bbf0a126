package lib

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

const DefaultBaudRate = 115200

// PositionReporter writes one line per frame describing the detection:
//
//	FOUND <x> <y>
//	LOST
type PositionReporter struct {
	w    io.Writer
	port serial.Port
}

// NewPositionReporter reports to any writer
func NewPositionReporter(w io.Writer) *PositionReporter {
	return &PositionReporter{w: w}
}

// OpenSerialReporter opens portName as 8N1 at baudRate and reports to it
func OpenSerialReporter(portName string, baudRate int) (*PositionReporter, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", portName)
	}
	return &PositionReporter{w: port, port: port}, nil
}

// AvailablePorts lists serial ports, for error messages
func AvailablePorts() ([]string, error) {
	return serial.GetPortsList()
}

// Report writes the line for res
func (r *PositionReporter) Report(res DetectionResult) error {
	var err error
	if res.Found {
		_, err = fmt.Fprintf(r.w, "FOUND %d %d\n", res.X, res.Y)
	} else {
		_, err = io.WriteString(r.w, "LOST\n")
	}
	return errors.Wrap(err, "failed to report position")
}

// Close closes the serial port if the reporter owns one
func (r *PositionReporter) Close() error {
	if r.port != nil {
		return r.port.Close()
	}
	return nil
}
