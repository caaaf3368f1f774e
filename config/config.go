// Package config は実行時設定を .env と環境変数から読み込む。
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/YuminosukeSato/titanicprep/pkg/log"
)

// 既定値
const (
	DefaultInputPath = "titanic_raw/titanic.csv"
	DefaultOutputDir = "preprocessing/titanic_preprocessing"
	DefaultLogLevel  = "info"
)

// Config は一回の前処理実行の設定
type Config struct {
	InputPath  string // RAW_PATH
	OutputDir  string // OUT_DIR
	LogLevel   string // LOG_LEVEL (debug, info, warn, error)
	SavePolicy bool   // SAVE_POLICY=1 で学習済み統計量も保存する
}

// Default は既定値の設定を返す
func Default() Config {
	return Config{
		InputPath: DefaultInputPath,
		OutputDir: DefaultOutputDir,
		LogLevel:  DefaultLogLevel,
	}
}

// Load はカレントディレクトリの .env (あれば) を読み、環境変数から Config を作る
//
// 既に設定されている環境変数は .env より優先される。
//
// 戻り値:
//   - error: LOG_LEVEL が不正な場合は ValidationError
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("RAW_PATH")); v != "" {
		cfg.InputPath = v
	}
	if v := strings.TrimSpace(os.Getenv("OUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	save := strings.TrimSpace(os.Getenv("SAVE_POLICY"))
	cfg.SavePolicy = save == "1" || strings.EqualFold(save, "true")

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level は LogLevel を log.Level に変換する
func (c Config) Level() (log.Level, error) {
	return log.ParseLevel(c.LogLevel)
}
