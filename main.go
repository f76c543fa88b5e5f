// Firmware entry: brings up the board from the built-in configuration and
// runs the measurement loop forever.
package main

import (
	"context"
	"time"

	"humitemp/app"
	"humitemp/config"
	"humitemp/platform"
	"humitemp/x/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		halt(err)
	}
	b, err := platform.Open(cfg)
	if err != nil {
		halt(err)
	}
	halt(app.Run(context.Background(), cfg, b))
}

// halt parks the firmware. Nothing restarts it but a reset.
func halt(err error) {
	if err != nil {
		logx.Error("main", "halted", logx.Err(err))
	}
	for {
		time.Sleep(time.Hour)
	}
}
