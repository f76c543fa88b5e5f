//go:build !(rp2040 || rp2350)

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"humitemp/config"
	"humitemp/errcode"
	"humitemp/scheduler"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFileConfig(t *testing.T) {
	p := writeTemp(t, "humitemp.yaml", `
period: 5s
sim: false
sensor: aht20
i2c: "1"
serial: /dev/ttyS0
suppress: legacy
log_level: debug
display:
  kind: lcd
  addr: 0x3f
pins:
  led: 17
  sensor_enable: 27
`)
	fc, err := readFile(p)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	level, err := fc.apply(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if level != "debug" {
		t.Errorf("level = %q", level)
	}
	if cfg.UpdatePeriod != 5*time.Second || cfg.Host.Sim || cfg.Sensor.Model != "aht20" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.I2C.ID != "1" || cfg.Host.SerialPath != "/dev/ttyS0" || cfg.Suppress != scheduler.SuppressLegacyOffset {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Display.Kind != config.DisplayLCD || cfg.Display.Addr != 0x3f {
		t.Errorf("display = %+v", cfg.Display)
	}
	if cfg.Pins.LED != 17 || cfg.Pins.SensorEnable != 27 || cfg.UART.TX != config.NoPin {
		t.Errorf("pins = %+v uart = %+v", cfg.Pins, cfg.UART)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestFileConfigRejectsUnknownKeys(t *testing.T) {
	p := writeTemp(t, "bad.yaml", "perod: 5s\n")
	if _, err := readFile(p); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v", err)
	}
}

func TestFileConfigEmpty(t *testing.T) {
	p := writeTemp(t, "empty.yaml", "")
	fc, err := readFile(p)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if _, err := fc.apply(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.UpdatePeriod != 2*time.Second {
		t.Fatalf("period = %v", cfg.UpdatePeriod)
	}
}

func TestFileConfigBadValues(t *testing.T) {
	for _, body := range []string{"period: soon\n", "suppress: sometimes\n"} {
		fc, err := readFile(writeTemp(t, "c.yaml", body))
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.Default()
		if _, err := fc.apply(&cfg); errcode.Of(err) != errcode.InvalidParams {
			t.Errorf("%q: err = %v", body, err)
		}
	}
}

func TestEnvLayer(t *testing.T) {
	p := writeTemp(t, ".env", "HUMITEMP_SERIAL=/tmp/readings\nHUMITEMP_SIM=false\nHUMITEMP_LOG_LEVEL=warn\n")
	t.Setenv(envSerial, "")
	t.Setenv(envSim, "")
	t.Setenv(envLogLevel, "")
	os.Unsetenv(envSerial)
	os.Unsetenv(envSim)
	os.Unsetenv(envLogLevel)

	if err := loadEnv(p, true); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	level, err := applyEnv(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host.SerialPath != "/tmp/readings" || cfg.Host.Sim || level != "warn" {
		t.Fatalf("cfg.Host = %+v level = %q", cfg.Host, level)
	}
}

func TestLoadEnvMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.env")
	if err := loadEnv(missing, false); err != nil {
		t.Fatalf("implicit missing env file: %v", err)
	}
	if err := loadEnv(missing, true); err == nil {
		t.Fatal("explicit missing env file accepted")
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	for _, k := range []string{envConfig, envSerial, envSim, envLogLevel} {
		t.Setenv(k, "")
	}
	envFile := writeTemp(t, "empty.env", "")
	cfgFile := writeTemp(t, "c.yaml", "period: 5s\nsuppress: legacy\nlog_level: warn\n")

	cmd := newRootCommand()
	args := []string{"--env-file", envFile, "--config", cfgFile, "--suppress", "never", "--stats-hz", "1"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	var o options
	o.envFile, o.configPath, o.suppress, o.statsHz, o.logLevel = envFile, cfgFile, "never", 1, "info"
	cfg, level, err := o.resolve(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UpdatePeriod != 5*time.Second {
		t.Errorf("period = %v, want the file value", cfg.UpdatePeriod)
	}
	if cfg.Suppress != scheduler.SuppressNever {
		t.Errorf("suppress = %v, want the flag value", cfg.Suppress)
	}
	if cfg.StatsHz != 1 {
		t.Errorf("stats = %d", cfg.StatsHz)
	}
	if level != "warn" {
		t.Errorf("level = %q, want the file value", level)
	}
}

func TestResolveExplicitEnvFileMissing(t *testing.T) {
	cmd := newRootCommand()
	missing := filepath.Join(t.TempDir(), "x.env")
	if err := cmd.ParseFlags([]string{"--env-file", missing}); err != nil {
		t.Fatal(err)
	}
	o := options{envFile: missing}
	if _, _, err := o.resolve(cmd); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v", err)
	}
}
