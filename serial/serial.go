// Package serial transmits readings one byte at a time over a fixed format
// UART line.
package serial

import (
	"io"

	"humitemp/errcode"
)

// Parity of the line.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// Config is the line format. The firmware uses Default unchanged.
type Config struct {
	BaudRate    uint32
	DataBits    uint8
	StopBits    uint8
	Parity      Parity
	FlowControl bool
}

// Default is 115200 baud, 8N1, no flow control.
func Default() Config {
	return Config{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: ParityNone}
}

// Validate rejects formats the ports cannot produce.
func (c Config) Validate() error {
	switch {
	case c.BaudRate == 0:
		return &errcode.E{C: errcode.InvalidParams, Op: "serial.config", Msg: "baud rate is zero"}
	case c.DataBits < 5 || c.DataBits > 9:
		return &errcode.E{C: errcode.InvalidParams, Op: "serial.config", Msg: "data bits out of range"}
	case c.StopBits != 1 && c.StopBits != 2:
		return &errcode.E{C: errcode.InvalidParams, Op: "serial.config", Msg: "stop bits must be 1 or 2"}
	case c.Parity > ParityOdd:
		return &errcode.E{C: errcode.InvalidParams, Op: "serial.config", Msg: "unknown parity"}
	}
	return nil
}

// Port sends one byte, waiting until the transmitter can take it.
type Port interface {
	WriteByte(b byte) error
}

// Transmit sends p byte by byte, stopping at the first failure.
func Transmit(port Port, p []byte) error {
	for _, b := range p {
		if err := port.WriteByte(b); err != nil {
			return errcode.Wrap(errcode.MapDriverErr(err), "serial.transmit", err)
		}
	}
	return nil
}

// WriterPort adapts an io.Writer (a tty, a file, stdout) to a Port.
type WriterPort struct {
	W   io.Writer
	one [1]byte
}

func NewWriterPort(w io.Writer) *WriterPort { return &WriterPort{W: w} }

func (p *WriterPort) WriteByte(b byte) error {
	p.one[0] = b
	_, err := p.W.Write(p.one[:])
	return err
}
