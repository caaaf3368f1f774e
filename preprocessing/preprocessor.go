// Package preprocessing は乗客生存データセットを学習用の数値特徴量行列に変換する。
//
// Preprocessor は目的変数を分離し、識別子的な列を除外したうえで、数値列を
// 中央値補完 → 標準化、カテゴリ列を最頻値補完 → ワンホット展開して連結する。
// 統計量は入力テーブル全体から一度だけ学習し、同じテーブルに適用する (fit_transform)。
// 学習済みの統計量は Policy として取り出し、新しいデータに再適用できる。
package preprocessing

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/titanicprep/core/model"
	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
	"github.com/YuminosukeSato/titanicprep/pkg/log"
)

// DefaultTarget は目的変数の列名
const DefaultTarget = "Survived"

// DefaultDropColumns は変換前に無条件で除外する識別子的な列
var DefaultDropColumns = []string{"Name", "Ticket", "Cabin"}

// Option はPreprocessorを設定する関数
type Option func(*Preprocessor)

// WithTarget は目的変数の列名を設定する
func WithTarget(name string) Option {
	return func(p *Preprocessor) {
		p.target = name
	}
}

// WithDropColumns は除外する列を設定する
func WithDropColumns(names ...string) Option {
	return func(p *Preprocessor) {
		p.dropColumns = append([]string(nil), names...)
	}
}

// WithLogger はロガーを設定する
func WithLogger(l log.Logger) Option {
	return func(p *Preprocessor) {
		p.logger = l
	}
}

// Preprocessor は列ごとの変換パイプライン
// (scikit-learnの ColumnTransformer + Pipeline 相当)
type Preprocessor struct {
	model.BaseEstimator

	target      string
	dropColumns []string
	logger      log.Logger

	partition          ColumnPartition
	numericImputer     *SimpleImputer
	scaler             *StandardScaler
	categoricalImputer *CategoricalImputer
	encoder            *OneHotEncoder
	featureNames       []string
}

// NewPreprocessor は新しいPreprocessorを作成する
//
// 使用例:
//
//	pre := preprocessing.NewPreprocessor(preprocessing.WithLogger(logger))
//	processed, err := pre.FitTransform(table)
func NewPreprocessor(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		target:      DefaultTarget,
		dropColumns: append([]string(nil), DefaultDropColumns...),
		logger:      log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(log.ModelNameKey, "Preprocessor", log.ComponentKey, "preprocessing")
	return p
}

// Target は目的変数の列名を返す
func (p *Preprocessor) Target() string { return p.target }

// Partition は学習時の列分類を返す
func (p *Preprocessor) Partition() ColumnPartition { return p.partition }

// FeatureNames は出力特徴量名を出力順で返す
func (p *Preprocessor) FeatureNames() []string {
	return append([]string(nil), p.featureNames...)
}

// Fit は入力テーブルから補完値・平均・標準偏差・カテゴリを学習する
//
// 戻り値:
//   - error: 目的変数がない場合は SchemaError、行がない場合は ModelError
func (p *Preprocessor) Fit(t *dataset.Table) error {
	if !t.Has(p.target) {
		return errors.NewSchemaError(p.target, "required target column missing")
	}
	if t.Rows() == 0 {
		return errors.NewModelError("Preprocessor.Fit", "empty data", errors.ErrEmptyData)
	}
	p.Reset()

	features := t.Drop(p.target).Drop(p.dropColumns...)
	p.partition = Partition(features)
	p.numericImputer, p.scaler = nil, nil
	p.categoricalImputer, p.encoder = nil, nil

	var numericNames, categoricalNames []string

	if len(p.partition.Numeric) > 0 {
		X, err := numericMatrix(features, p.partition.Numeric)
		if err != nil {
			return err
		}
		p.numericImputer = NewSimpleImputer(StrategyMedian)
		filled, err := p.numericImputer.FitTransform(X)
		if err != nil {
			return err
		}
		warnEmpty(p.partition.Numeric, p.numericImputer.Empty, StrategyMedian)
		if numericNames, err = p.numericImputer.FeatureNamesOut(p.partition.Numeric); err != nil {
			return err
		}
		if filled != nil {
			p.scaler = NewStandardScalerDefault()
			if err := p.scaler.Fit(filled); err != nil {
				return err
			}
		}
	}

	if len(p.partition.Categorical) > 0 {
		cols, err := categoricalColumns(features, p.partition.Categorical)
		if err != nil {
			return err
		}
		p.categoricalImputer = NewCategoricalImputer()
		filled, err := p.categoricalImputer.FitTransform(cols)
		if err != nil {
			return err
		}
		warnEmpty(p.partition.Categorical, p.categoricalImputer.Empty, StrategyMostFrequent)
		kept, err := p.categoricalImputer.FeatureNamesOut(p.partition.Categorical)
		if err != nil {
			return err
		}
		if len(filled) > 0 {
			p.encoder = NewOneHotEncoder()
			if err := p.encoder.Fit(filled); err != nil {
				return err
			}
			if categoricalNames, err = p.encoder.FeatureNamesOut(kept); err != nil {
				return err
			}
		}
	}

	p.featureNames = append(numericNames, categoricalNames...)
	p.SetFitted()

	p.logger.Debug("Preprocessor fitted",
		log.OperationKey, log.OperationFit,
		log.TargetKey, p.target,
		log.DroppedColumnsKey, presentColumns(t, p.dropColumns),
		log.NumericColumnsKey, p.partition.Numeric,
		log.CategoricalColumnsKey, p.partition.Categorical,
		log.SamplesKey, t.Rows(),
		log.FeaturesKey, len(p.featureNames),
	)
	return nil
}

// Transform は学習済みの統計量を入力テーブルに適用する
//
// 学習時に見なかったカテゴリは全て0の指示変数になる。
//
// 戻り値:
//   - *ProcessedTable: 目的変数と特徴量行列
//   - error: 未学習なら NotFittedError、目的変数や学習済みの列がない・型が違う場合は SchemaError
func (p *Preprocessor) Transform(t *dataset.Table) (*ProcessedTable, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Preprocessor", "Transform")
	}
	target, ok := t.Column(p.target)
	if !ok {
		return nil, errors.NewSchemaError(p.target, "required target column missing")
	}
	rows := t.Rows()

	var numericBlock, categoricalBlock mat.Matrix

	if p.numericImputer != nil {
		X, err := numericMatrix(t, p.partition.Numeric)
		if err != nil {
			return nil, err
		}
		filled, err := p.numericImputer.Transform(X)
		if err != nil {
			return nil, err
		}
		if filled != nil && p.scaler != nil {
			if numericBlock, err = p.scaler.Transform(filled); err != nil {
				return nil, err
			}
		}
	}

	if p.categoricalImputer != nil {
		cols, err := categoricalColumns(t, p.partition.Categorical)
		if err != nil {
			return nil, err
		}
		filled, err := p.categoricalImputer.Transform(cols)
		if err != nil {
			return nil, err
		}
		if p.encoder != nil {
			indicators, err := p.encoder.Transform(filled)
			if err != nil {
				return nil, err
			}
			if indicators != nil {
				categoricalBlock = indicators
			}
		}
	}

	features := concatColumns(rows, numericBlock, categoricalBlock)
	if features != nil {
		r, c := features.Dims()
		if c != len(p.featureNames) {
			return nil, errors.NewDimensionError("Preprocessor.Transform", len(p.featureNames), c, 1)
		}
		if err := errors.CheckMatrix("Preprocessor.Transform", features, r, c); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("Preprocessor applied",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, rows,
		log.FeaturesKey, len(p.featureNames),
	)
	return &ProcessedTable{
		Target:       target,
		Features:     features,
		FeatureNames: p.FeatureNames(),
	}, nil
}

// FitTransform は同じテーブルで学習と変換を行う
func (p *Preprocessor) FitTransform(t *dataset.Table) (*ProcessedTable, error) {
	start := time.Now()
	if err := p.Fit(t); err != nil {
		return nil, err
	}
	out, err := p.Transform(t)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Preprocessing completed",
		log.OperationKey, log.OperationFitTransform,
		log.SamplesKey, out.Rows(),
		log.FeaturesKey, len(out.FeatureNames),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

func numericMatrix(t *dataset.Table, names []string) (*mat.Dense, error) {
	rows := t.Rows()
	if rows == 0 {
		return nil, errors.NewModelError("Preprocessor", "empty data", errors.ErrEmptyData)
	}
	X := mat.NewDense(rows, len(names), nil)
	for j, name := range names {
		values, err := numericValues(t, name)
		if err != nil {
			return nil, err
		}
		X.SetCol(j, values)
	}
	return X, nil
}

func categoricalColumns(t *dataset.Table, names []string) ([]dataset.Column, error) {
	cols := make([]dataset.Column, len(names))
	for j, name := range names {
		col, err := categoricalValues(t, name)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return cols, nil
}

// concatColumns は行数の等しいブロックを列方向に連結する。ブロックが全てnilならnil。
func concatColumns(rows int, blocks ...mat.Matrix) *mat.Dense {
	width := 0
	for _, b := range blocks {
		if b != nil {
			_, c := b.Dims()
			width += c
		}
	}
	if rows == 0 || width == 0 {
		return nil
	}

	out := mat.NewDense(rows, width, nil)
	offset := 0
	for _, b := range blocks {
		if b == nil {
			continue
		}
		_, c := b.Dims()
		out.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(b)
		offset += c
	}
	return out
}

func warnEmpty(names []string, empty []bool, strategy string) {
	for j, e := range empty {
		if e {
			errors.Warn(errors.NewEmptyFeatureWarning(names[j], strategy))
		}
	}
}

func presentColumns(t *dataset.Table, names []string) []string {
	var present []string
	for _, n := range names {
		if t.Has(n) {
			present = append(present, n)
		}
	}
	return present
}
