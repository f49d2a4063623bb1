package main

import (
	"log/slog"
	"os"

	"github.com/yifanzh/studyclock/adapter/cli"
	"github.com/yifanzh/studyclock/pkg/config"
	"github.com/yifanzh/studyclock/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.FilePath = cfg.LogFile
	logCfg.ServiceVersion = cli.Version
	if cfg.IsProduction() {
		logCfg.AddSource = true
	}
	logger := observability.NewLogger(logCfg)

	cli.SetConfig(cfg)
	cli.SetLogger(logger)
	cli.Execute()
}
