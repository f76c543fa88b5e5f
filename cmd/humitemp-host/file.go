//go:build !(rp2040 || rp2350)

package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"humitemp/config"
	"humitemp/errcode"
	"humitemp/scheduler"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML layout of --config. Absent keys keep the defaults.
type fileConfig struct {
	Period   string `yaml:"period"`
	Sim      *bool  `yaml:"sim"`
	Sensor   string `yaml:"sensor"`
	Addr     uint16 `yaml:"addr"`
	I2C      string `yaml:"i2c"`
	Serial   string `yaml:"serial"`
	IIO      string `yaml:"iio"`
	Suppress string `yaml:"suppress"`
	StatsHz  uint32 `yaml:"stats_hz"`
	LogLevel string `yaml:"log_level"`
	Display  struct {
		Kind string `yaml:"kind"`
		Addr uint16 `yaml:"addr"`
	} `yaml:"display"`
	Pins struct {
		LED          *int `yaml:"led"`
		SensorEnable *int `yaml:"sensor_enable"`
		UARTTX       *int `yaml:"uart_tx"`
		UARTRX       *int `yaml:"uart_rx"`
	} `yaml:"pins"`
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, &errcode.E{C: errcode.InvalidParams, Op: "host.config", Msg: path, Err: err}
	}
	return fc, nil
}

// apply overlays fc on cfg and returns the log level it names, if any.
func (fc *fileConfig) apply(cfg *config.Config) (string, error) {
	if fc.Period != "" {
		d, err := time.ParseDuration(fc.Period)
		if err != nil {
			return "", &errcode.E{C: errcode.InvalidParams, Op: "host.config", Msg: "period", Err: err}
		}
		cfg.UpdatePeriod = d
	}
	if fc.Sim != nil {
		cfg.Host.Sim = *fc.Sim
	}
	setStr(&cfg.Sensor.Model, fc.Sensor)
	if fc.Addr != 0 {
		cfg.Sensor.Addr = fc.Addr
	}
	setStr(&cfg.I2C.ID, fc.I2C)
	setStr(&cfg.Host.SerialPath, fc.Serial)
	setStr(&cfg.Host.IIODevice, fc.IIO)
	if fc.Suppress != "" {
		m, ok := scheduler.ParseSuppressMode(fc.Suppress)
		if !ok {
			return "", &errcode.E{C: errcode.InvalidParams, Op: "host.config", Msg: "suppress " + fc.Suppress}
		}
		cfg.Suppress = m
	}
	if fc.StatsHz != 0 {
		cfg.StatsHz = fc.StatsHz
	}
	setStr(&cfg.Display.Kind, fc.Display.Kind)
	if fc.Display.Addr != 0 {
		cfg.Display.Addr = fc.Display.Addr
	}
	setInt(&cfg.Pins.LED, fc.Pins.LED)
	setInt(&cfg.Pins.SensorEnable, fc.Pins.SensorEnable)
	setInt(&cfg.UART.TX, fc.Pins.UARTTX)
	setInt(&cfg.UART.RX, fc.Pins.UARTRX)
	return fc.LogLevel, nil
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Environment keys read after loading the env file.
const (
	envConfig   = "HUMITEMP_CONFIG"
	envSerial   = "HUMITEMP_SERIAL"
	envSim      = "HUMITEMP_SIM"
	envLogLevel = "HUMITEMP_LOG_LEVEL"
)

// loadEnv loads path into the process environment. A missing file is not
// an error unless it was asked for explicitly.
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// applyEnv overlays the HUMITEMP_* variables and returns the log level
// they name, if any.
func applyEnv(cfg *config.Config) (string, error) {
	setStr(&cfg.Host.SerialPath, os.Getenv(envSerial))
	if v := os.Getenv(envSim); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", &errcode.E{C: errcode.InvalidParams, Op: "host.env", Msg: envSim, Err: err}
		}
		cfg.Host.Sim = b
	}
	return os.Getenv(envLogLevel), nil
}
