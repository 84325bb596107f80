package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLength/internal/config"
	"github.com/OpenTraceLab/OpenTraceLength/internal/logging"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/board/jsonboard"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/board/kicad"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/trace"
)

// strategyNames overrides engine.strategies when set.
var strategyNames []string

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&strategyNames, "strategies", nil,
		"connectivity strategies in priority order (exact, tolerant)")
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if len(strategyNames) > 0 {
		cfg.Engine.Strategies = strategyNames
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging, os.Stderr)
}

// loadBoard picks the loader by file extension.
func loadBoard(path string) (*board.Board, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kicad_pcb":
		return kicad.ParseFile(path)
	default:
		return jsonboard.LoadFile(path)
	}
}

// openSession loads the board at path and wires a session from the config.
func openSession(path string) (*trace.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	b, err := loadBoard(path)
	if err != nil {
		return nil, fmt.Errorf("error loading board: %w", err)
	}
	logger.Debug("board loaded", "path", path, "name", b.Name)

	strategies, err := cfg.BuildStrategies()
	if err != nil {
		return nil, err
	}
	return trace.NewSession(b, trace.SessionOptions{
		Strategies:  strategies,
		CacheGraphs: cfg.Engine.CacheGraphs,
		Workers:     cfg.Analysis.Workers,
		Logger:      logger,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const rule = "─────────────────────────────────────────────────────────"
