// Package main は乗客生存データセットの前処理コマンド。
//
// RAW_PATH のCSVを読み込み、OUT_DIR に titanic_processed.csv と feature_columns.txt を書き出す。
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/titanicprep/config"
	"github.com/YuminosukeSato/titanicprep/pkg/log"
	"github.com/YuminosukeSato/titanicprep/runner"
)

func main() {
	if err := run(os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		log.NewZerologLogger(stderr, log.LevelInfo).Error("Invalid configuration", err)
		return err
	}
	level, _ := cfg.Level()
	logger := log.NewZerologLogger(stderr, level)
	restore := logger.InstallWarnings()
	defer restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx, *cfg, logger)
	if err != nil {
		logger.Error("Preprocessing failed", err, log.PathKey, cfg.InputPath)
		return err
	}

	fmt.Fprintf(stdout, "Saved: %s\n", res.ProcessedPath)
	fmt.Fprintf(stdout, "Saved: %s\n", res.ManifestPath)
	if res.PolicyPath != "" {
		fmt.Fprintf(stdout, "Saved: %s\n", res.PolicyPath)
	}
	fmt.Fprintf(stdout, "Shape: (%d, %d)\n", res.Rows, res.Cols)
	return nil
}
