// Command xroute converts held currencies into a target currency along the
// best-rate route and prints the applied exchanges.
//
// Usage:
//
//	xroute --config config.yaml --target ETH --amount 10
//	xroute --config config.yaml --wizard
//	xroute --config config.yaml --history
package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vadiminshakov/xroute/config"
	"github.com/vadiminshakov/xroute/internal/services"
	"github.com/vadiminshakov/xroute/internal/setup"
	"github.com/vadiminshakov/xroute/internal/storage/exchangejournal"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.History {
		if err := printHistory(cfg.JournalDir); err != nil {
			logger.Fatal("failed to read exchange journal", zap.Error(err))
		}
		return
	}

	if cfg.Wizard {
		if err := setup.RunTUI(&cfg); err != nil {
			logger.Fatal("wizard failed", zap.Error(err))
		}
	}

	ledger, err := cfg.Ledger()
	if err != nil {
		logger.Fatal("failed to build ledger", zap.Error(err))
	}

	opts := []services.ExchangerOption{services.WithDivisionPrecision(cfg.DivisionPrecision)}
	var journal *exchangejournal.WALStore
	if cfg.JournalDir != "" {
		journal, err = exchangejournal.NewWALStore(cfg.JournalDir)
		if err != nil {
			logger.Fatal("failed to open exchange journal", zap.Error(err))
		}
		defer journal.Close()
		opts = append(opts, services.WithJournal(journal))
	}

	exchanges, err := services.NewExchanger(logger, opts...).Exchange(ledger, cfg.Rates, cfg.Fee, cfg.Target, cfg.Amount)
	if err != nil {
		logger.Fatal("exchange failed",
			zap.String("target", cfg.Target),
			zap.String("amount", cfg.Amount.String()),
			zap.Error(err))
	}

	if journal != nil {
		logger.Info("exchange journal updated",
			zap.String("dir", cfg.JournalDir),
			zap.Uint64("index", journal.CurrentIndex()))
	}

	fmt.Println(setup.RenderExchanges(exchanges, ledger.Snapshot()))
}

func printHistory(dir string) error {
	journal, err := exchangejournal.NewWALStore(dir)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.RecordsAfter(0)
	if err != nil {
		return err
	}
	fmt.Print(setup.RenderHistory(entries))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid 'log_level' %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
