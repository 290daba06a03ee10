package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"
)

// runReport is the end-of-run snapshot written to disk. Balances lets a
// caller confirm conservation (every transfer workload must leave the
// sum of all accounts unchanged) without re-running the workload.
type runReport struct {
	Accounts       int               `json:"accounts"`
	Goroutines     int               `json:"goroutines"`
	TransfersEach  int               `json:"transfers_each"`
	TotalCommitted uint64            `json:"total_committed"`
	TotalAborted   uint64            `json:"total_aborted"`
	AbortsByReason map[string]uint64 `json:"aborts_by_reason"`
	FinalBalances  []uint64          `json:"final_balances"`
	ConservedSum   uint64            `json:"conserved_sum"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
}

// writeReport durably writes the report to path: atomic.WriteFile
// writes to a temp file in the same directory and renames it into
// place, so a reader never observes a partially-written report even if
// the process is killed mid-write.
func writeReport(path string, r runReport) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
