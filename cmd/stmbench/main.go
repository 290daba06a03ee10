// Command stmbench runs a concurrent bank-transfer workload against a
// stm.Engine and reports commit/abort statistics, exercising the
// runtime under real goroutine contention as a standalone, tunable
// harness rather than a fixed unit test.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/stmrt/tinystm"
	"github.com/stmrt/tinystm/internal/elog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("stmbench", flag.ContinueOnError)

	configPath := flags.String("config", "", "path to a hujson config file (flags override it)")
	reportPath := flags.String("report", "stmbench-report.json", "path to write the end-of-run JSON report")
	accounts := flags.Int("accounts", 10, "number of accounts in the workload")
	goroutines := flags.Int("goroutines", 24, "number of concurrent workload goroutines")
	transfersEach := flags.Int("transfers", 5000, "transfer attempts per goroutine")
	lockArrayLogSize := flags.Int("lock-array-log-size", 0, "override the engine's lock table size (2^n); 0 keeps the default")
	logLevel := flags.String("log-level", "info", "logrus level: trace, debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	fc, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if fc.Accounts != 0 && !flags.Changed("accounts") {
		*accounts = fc.Accounts
	}
	if fc.Goroutines != 0 && !flags.Changed("goroutines") {
		*goroutines = fc.Goroutines
	}
	if fc.TransfersEach != 0 && !flags.Changed("transfers") {
		*transfersEach = fc.TransfersEach
	}
	if fc.ReportPath != "" && !flags.Changed("report") {
		*reportPath = fc.ReportPath
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger.SetLevel(level)

	cfg := stm.DefaultConfig()
	fc.applyTo(&cfg)
	if *lockArrayLogSize != 0 {
		cfg.LockArrayLogSize = *lockArrayLogSize
	}

	engine := stm.New(cfg)
	engine.Logger = elog.NewLogrus(logger)
	engine.Init()
	defer engine.Exit()

	var abortsTotal atomic.Uint64
	var abortMu sync.Mutex
	abortsByReason := make(map[string]uint64)
	engine.Register(stm.Callbacks{
		OnAbort: func(tx *stm.Txn, reason stm.AbortReason, arg any) {
			abortsTotal.Add(1)
			abortMu.Lock()
			abortsByReason[reason.String()]++
			abortMu.Unlock()
		},
	})

	const startingBalance = 1000
	workload := newBankTransferWorkload(engine, *accounts, *goroutines, *transfersEach, startingBalance)

	logger.WithFields(logrus.Fields{
		"accounts":       *accounts,
		"goroutines":     *goroutines,
		"transfers_each": *transfersEach,
	}).Info("starting bank-transfer workload")

	start := time.Now()
	balances := workload.run()
	elapsed := time.Since(start)

	var sum uint64
	for _, b := range balances {
		sum += b
	}
	wantSum := uint64(*accounts) * startingBalance

	logger.WithFields(logrus.Fields{
		"committed": workload.committed.Load(),
		"aborted":   abortsTotal.Load(),
		"elapsed":   elapsed,
	}).Info("workload finished")

	if sum != wantSum {
		logger.WithFields(logrus.Fields{"want": wantSum, "got": sum}).
			Error("conservation check failed: the sum of all balances drifted")
		return 1
	}

	report := runReport{
		Accounts:       *accounts,
		Goroutines:     *goroutines,
		TransfersEach:  *transfersEach,
		TotalCommitted: workload.committed.Load(),
		TotalAborted:   abortsTotal.Load(),
		AbortsByReason: abortsByReason,
		FinalBalances:  balances,
		ConservedSum:   sum,
		ElapsedSeconds: elapsed.Seconds(),
	}
	if err := writeReport(*reportPath, report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
