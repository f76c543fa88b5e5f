//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"os"

	"humitemp/errcode"
	"humitemp/serial"

	"golang.org/x/sys/unix"
)

var baudRates = map[uint32]uint32{
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

// openSerial opens path for readings. "" writes to stdout. A character
// device is switched to raw mode with the configured line format; a regular
// file is appended to as is.
func openSerial(path string, sc serial.Config) (serial.Port, func() error, error) {
	if path == "" {
		return serial.NewWriterPort(os.Stdout), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|unix.O_NOCTTY, 0o644)
	if err != nil {
		return nil, nil, errcode.Wrap(errcode.BusFault, "platform.serial_open", err)
	}
	fi, err := f.Stat()
	if err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		err = setLineFormat(int(f.Fd()), sc)
	}
	if err != nil {
		_ = f.Close()
		return nil, nil, errcode.Wrap(errcode.BusFault, "platform.serial_format", err)
	}
	return serial.NewWriterPort(f), f.Close, nil
}

func setLineFormat(fd int, sc serial.Config) error {
	speed, ok := baudRates[sc.BaudRate]
	if !ok {
		return &errcode.E{C: errcode.Unsupported, Op: "platform.serial_format", Msg: "baud rate"}
	}
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	t.Cflag &^= unix.CBAUD | unix.CSIZE | unix.CSTOPB | unix.PARENB | unix.PARODD | unix.CRTSCTS
	t.Cflag |= speed | unix.CREAD | unix.CLOCAL
	switch sc.DataBits {
	case 5:
		t.Cflag |= unix.CS5
	case 6:
		t.Cflag |= unix.CS6
	case 7:
		t.Cflag |= unix.CS7
	default:
		t.Cflag |= unix.CS8
	}
	if sc.StopBits == 2 {
		t.Cflag |= unix.CSTOPB
	}
	switch sc.Parity {
	case serial.ParityEven:
		t.Cflag |= unix.PARENB
	case serial.ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
	}
	if sc.FlowControl {
		t.Cflag |= unix.CRTSCTS
	}
	t.Ispeed, t.Ospeed = speed, speed
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
