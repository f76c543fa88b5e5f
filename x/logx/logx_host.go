//go:build !(rp2040 || rp2350)

package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

var logger = newLogger(os.Stderr, LevelDebug, false)

// levelVar gates at the slog layer as well so Configure can be called once
// while SetLevel stays cheap.
var levelVar slog.LevelVar

func newLogger(w io.Writer, l Level, noColor bool) *slog.Logger {
	levelVar.Set(slog.Level(l))
	h := tint.NewHandler(w, &tint.Options{
		Level:      &levelVar,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return slog.New(h)
}

// Configure replaces the host handler. Records below l are dropped.
func Configure(w io.Writer, l Level, noColor bool) {
	SetLevel(l)
	logger = newLogger(w, l, noColor)
}

func emit(l Level, tag, msg string, attrs []Attr) {
	out := make([]slog.Attr, 0, len(attrs)+1)
	out = append(out, slog.String("tag", tag))
	for _, a := range attrs {
		switch a.kind {
		case kindInt:
			out = append(out, slog.Int64(a.Key, a.i))
		case kindUint:
			out = append(out, slog.Uint64(a.Key, a.u))
		case kindBool:
			out = append(out, slog.Bool(a.Key, a.b))
		default:
			out = append(out, slog.String(a.Key, a.s))
		}
	}
	logger.LogAttrs(context.Background(), slog.Level(l), msg, out...)
}
