// Package logx is the logging front end shared by MCU and host builds.
//
// On RP2 targets records go to the builtin print/println (no fmt, no
// allocations beyond the attribute slice). On host builds they go through
// log/slog with a tint handler. Call sites are identical on both:
//
//	logx.Info("sched", "measured", logx.Int("temp_mc", t), logx.Uint("rh_mpct", rh))
package logx

// Level orders records; values match log/slog.
type Level int8

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch {
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel accepts debug, info, warn/warning and error.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug, true
	case "info", "INFO", "":
		return LevelInfo, true
	case "warn", "warning", "WARN":
		return LevelWarn, true
	case "error", "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

type attrKind uint8

const (
	kindStr attrKind = iota
	kindInt
	kindUint
	kindBool
)

// Attr is one key/value pair of a record.
type Attr struct {
	Key  string
	kind attrKind
	s    string
	i    int64
	u    uint64
	b    bool
}

func Str(k, v string) Attr         { return Attr{Key: k, kind: kindStr, s: v} }
func Int(k string, v int64) Attr   { return Attr{Key: k, kind: kindInt, i: v} }
func Uint(k string, v uint64) Attr { return Attr{Key: k, kind: kindUint, u: v} }
func Bool(k string, v bool) Attr   { return Attr{Key: k, kind: kindBool, b: v} }

// Err records err under "err"; a nil error is recorded as "<nil>".
func Err(err error) Attr {
	if err == nil {
		return Str("err", "<nil>")
	}
	return Str("err", err.Error())
}

var minLevel = LevelInfo

// SetLevel drops records below l.
func SetLevel(l Level) { minLevel = l }

func Enabled(l Level) bool { return l >= minLevel }

func Debug(tag, msg string, attrs ...Attr) { log(LevelDebug, tag, msg, attrs) }
func Info(tag, msg string, attrs ...Attr)  { log(LevelInfo, tag, msg, attrs) }
func Warn(tag, msg string, attrs ...Attr)  { log(LevelWarn, tag, msg, attrs) }
func Error(tag, msg string, attrs ...Attr) { log(LevelError, tag, msg, attrs) }

func log(l Level, tag, msg string, attrs []Attr) {
	if !Enabled(l) {
		return
	}
	emit(l, tag, msg, attrs)
}
