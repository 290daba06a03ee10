package main

import (
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/stmrt/tinystm"
)

// fileConfig mirrors the subset of stm.Config a config file may tune,
// plus the workload knobs that only make sense for this harness.
// The json tags give the on-disk keys; the file is standard
// JSON with comments and trailing commas (hujson), matching the config
// format this pack's CLI tools use.
type fileConfig struct {
	LockArrayLogSize int    `json:"lock_array_log_size,omitempty"`
	LockShiftExtra   int    `json:"lock_shift_extra,omitempty"`
	RWSetSize        int    `json:"rw_set_size,omitempty"`
	Accounts         int    `json:"accounts,omitempty"`
	Goroutines       int    `json:"goroutines,omitempty"`
	TransfersEach    int    `json:"transfers_each,omitempty"`
	ReportPath       string `json:"report_path,omitempty"`
}

// loadFileConfig reads a hujson (JSON-with-comments) config file. A
// missing path is not an error: the harness simply runs with whatever
// flags/defaults it already has.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("reading config %s: %w", path, err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return fc, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := hujson.Unmarshal(std, &fc); err != nil {
		return fc, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return fc, nil
}

// applyTo overlays non-zero file settings onto an engine Config. Flag
// values applied after this call win, matching this pack's own
// defaults-then-file-then-flags precedence.
func (fc fileConfig) applyTo(cfg *stm.Config) {
	if fc.LockArrayLogSize != 0 {
		cfg.LockArrayLogSize = fc.LockArrayLogSize
	}
	if fc.LockShiftExtra != 0 {
		cfg.LockShiftExtra = fc.LockShiftExtra
	}
	if fc.RWSetSize != 0 {
		cfg.RWSetSize = fc.RWSetSize
	}
}
