//go:build !(rp2040 || rp2350)

// Command humitemp-host runs the humidity/temperature firmware on a Linux
// board through periph.io, or fully simulated on any host.
//
// Configuration is layered: built-in defaults, then --config (YAML), then
// the HUMITEMP_* environment (optionally loaded from --env-file), then
// flags given on the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"humitemp/app"
	"humitemp/config"
	"humitemp/errcode"
	"humitemp/platform"
	"humitemp/scheduler"
	"humitemp/x/logx"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	envFile    string
	sim        bool
	period     time.Duration
	sensor     string
	addr       uint16
	i2c        string
	serial     string
	display    string
	iio        string
	suppress   string
	statsHz    uint32
	logLevel   string
	noColor    bool
}

func newRootCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "humitemp-host",
		Short:        "Poll a humidity/temperature sensor and stream readings",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, level, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			l, ok := logx.ParseLevel(level)
			if !ok {
				return &errcode.E{C: errcode.InvalidParams, Op: "host.flags", Msg: "log level " + level}
			}
			logx.Configure(os.Stderr, l, o.noColor)
			return run(cmd.Context(), cfg)
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML configuration file")
	f.StringVar(&o.envFile, "env-file", ".env", "environment file with HUMITEMP_* settings")
	f.BoolVar(&o.sim, "sim", def.Host.Sim, "simulate every peripheral")
	f.DurationVar(&o.period, "period", def.UpdatePeriod, "measurement period")
	f.StringVar(&o.sensor, "sensor", def.Sensor.Model, "sensor model (si7021, aht20, shtc3)")
	f.Uint16Var(&o.addr, "addr", 0, "sensor I2C address (0: model default)")
	f.StringVar(&o.i2c, "i2c", def.I2C.ID, "periph I2C bus name")
	f.StringVar(&o.serial, "serial", "", "tty or file for readings (default stdout)")
	f.StringVar(&o.display, "display", def.Display.Kind, "display kind (lcd, console, none)")
	f.StringVar(&o.iio, "iio", def.Host.IIODevice, "IIO ADC sysfs directory")
	f.StringVar(&o.suppress, "suppress", def.Suppress.String(), "redraw suppression (unchanged, legacy, never)")
	f.Uint32Var(&o.statsHz, "stats-hz", 0, "log loop counters at this rate (0: off)")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored logs")
	return cmd
}

// resolve builds the configuration from defaults, file, environment and
// the flags that were set explicitly.
func (o *options) resolve(cmd *cobra.Command) (config.Config, string, error) {
	cfg := config.Default()
	level := ""
	f := cmd.Flags()

	if err := loadEnv(o.envFile, f.Changed("env-file")); err != nil {
		return cfg, "", errcode.Wrap(errcode.InvalidParams, "host.env_file", err)
	}
	path := o.configPath
	if !f.Changed("config") {
		if v := os.Getenv(envConfig); v != "" {
			path = v
		}
	}
	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return cfg, "", err
		}
		if level, err = fc.apply(&cfg); err != nil {
			return cfg, "", err
		}
	}
	envLevel, err := applyEnv(&cfg)
	if err != nil {
		return cfg, "", err
	}
	setStr(&level, envLevel)

	if f.Changed("sim") {
		cfg.Host.Sim = o.sim
	}
	if f.Changed("period") {
		cfg.UpdatePeriod = o.period
	}
	if f.Changed("sensor") {
		cfg.Sensor.Model = o.sensor
	}
	if f.Changed("addr") {
		cfg.Sensor.Addr = o.addr
	}
	if f.Changed("i2c") {
		cfg.I2C.ID = o.i2c
	}
	if f.Changed("serial") {
		cfg.Host.SerialPath = o.serial
	}
	if f.Changed("display") {
		cfg.Display.Kind = o.display
	}
	if f.Changed("iio") {
		cfg.Host.IIODevice = o.iio
	}
	if f.Changed("suppress") {
		m, ok := scheduler.ParseSuppressMode(o.suppress)
		if !ok {
			return cfg, "", &errcode.E{C: errcode.InvalidParams, Op: "host.flags", Msg: "suppress " + o.suppress}
		}
		cfg.Suppress = m
	}
	if f.Changed("stats-hz") {
		cfg.StatsHz = o.statsHz
	}
	if f.Changed("log-level") || level == "" {
		level = o.logLevel
	}
	return cfg, level, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	b, err := platform.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logx.Warn("main", "close board", logx.Err(err))
		}
	}()
	logx.Info("main", "running",
		logx.Str("board", b.Name),
		logx.Str("sensor", cfg.Sensor.Model),
		logx.Bool("sim", cfg.Host.Sim))
	return app.Run(ctx, cfg, b)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logx.Error("main", "exit", logx.Err(err))
		stop()
		os.Exit(1)
	}
}
