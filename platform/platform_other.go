//go:build !linux && !(rp2040 || rp2350)

package platform

import (
	"os"

	"humitemp/config"
	"humitemp/errcode"
)

// Open only supports simulation here.
func Open(cfg config.Config) (*Board, error) {
	if !cfg.Host.Sim {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "platform.open", Msg: "hardware access needs linux"}
	}
	return &OpenSim(cfg, os.Stdout, os.Stderr).Board, nil
}
