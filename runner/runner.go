// Package runner は入力CSVの読み込みから成果物の書き出しまでを一回分実行する。
package runner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/titanicprep/config"
	"github.com/YuminosukeSato/titanicprep/core/model"
	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
	"github.com/YuminosukeSato/titanicprep/pkg/log"
	"github.com/YuminosukeSato/titanicprep/preprocessing"
)

// 出力ファイル名
const (
	ProcessedFile = "titanic_processed.csv"
	ManifestFile  = "feature_columns.txt"
	PolicyFile    = "preprocess_policy.gob"
)

// Result は一回の実行で書き出した成果物
type Result struct {
	RunID         string
	ProcessedPath string
	ManifestPath  string
	PolicyPath    string // SavePolicy が無効なら空

	// Rows, Cols は処理済みCSVの形状 (Cols は目的変数を含む)
	Rows int
	Cols int
}

// Run は cfg.InputPath を読み込み、前処理結果を cfg.OutputDir に書き出す
//
// 出力は全て揃ってから所定の名前に置き換わる。途中で失敗した場合は何も残さず、
// 変換に失敗した場合は出力ディレクトリも作成しない。
//
// 戻り値:
//   - *Result: 書き出したパスと形状
//   - error: 入力がない場合は MissingInputError、列構成が不正な場合は SchemaError、
//     パニックは PanicError に変換される
func Run(ctx context.Context, cfg config.Config, logger log.Logger) (res *Result, err error) {
	s := &stage{dir: cfg.OutputDir}
	defer func() {
		if err != nil {
			s.discard()
		}
	}()
	defer errors.Recover(&err, "runner.Run")

	runID := uuid.New().String()
	logger = logger.With(log.RunIDKey, runID, log.ComponentKey, "runner")
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := dataset.LoadCSV(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, cfg.InputPath,
		log.SamplesKey, table.Rows(),
		log.FeaturesKey, table.Cols(),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pre := preprocessing.NewPreprocessor(preprocessing.WithLogger(logger))
	processed, err := pre.FitTransform(table)
	if err != nil {
		return nil, err
	}

	var policy *preprocessing.Policy
	if cfg.SavePolicy {
		if policy, err = pre.Policy(); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", cfg.OutputDir)
	}

	res = &Result{
		RunID: runID,
		Rows:  processed.Rows(),
		Cols:  processed.Cols(),
	}
	if res.ProcessedPath, err = s.write(ProcessedFile, processed.WriteCSV); err != nil {
		return nil, err
	}
	if res.ManifestPath, err = s.write(ManifestFile, processed.WriteManifest); err != nil {
		return nil, err
	}
	if policy != nil {
		if res.PolicyPath, err = s.write(PolicyFile, func(w io.Writer) error {
			return model.SaveModelToWriter(policy, w)
		}); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.commit(); err != nil {
		return nil, err
	}

	logger.Info("Artifacts written",
		log.OperationKey, log.OperationWrite,
		log.PathKey, cfg.OutputDir,
		log.SamplesKey, res.Rows,
		log.FeaturesKey, res.Cols-1,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// stage は出力ディレクトリ内の一時ファイルを管理する
type stage struct {
	dir     string
	pending []staged
}

type staged struct {
	tmp, final string
}

// write は一時ファイルに書き出し、置き換え先のパスを返す
func (s *stage) write(name string, fill func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", errors.Wrapf(err, "stage %s", name)
	}
	final := filepath.Join(s.dir, name)
	s.pending = append(s.pending, staged{tmp: f.Name(), final: final})

	if err := fill(f); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "write %s", name)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", name)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return "", errors.Wrapf(err, "chmod %s", name)
	}
	return final, nil
}

// commit は一時ファイルを所定の名前に置き換える
func (s *stage) commit() error {
	for i, p := range s.pending {
		if err := os.Rename(p.tmp, p.final); err != nil {
			s.pending = s.pending[i:]
			return errors.Wrapf(err, "commit %s", p.final)
		}
	}
	s.pending = nil
	return nil
}

// discard は置き換え前の一時ファイルを削除する
func (s *stage) discard() {
	for _, p := range s.pending {
		_ = os.Remove(p.tmp)
	}
	s.pending = nil
}
