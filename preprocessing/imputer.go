package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/titanicprep/core/model"
	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// 補完戦略
const (
	StrategyMedian       = "median"
	StrategyMean         = "mean"
	StrategyMostFrequent = "most_frequent"
)

// SimpleImputer はscikit-learn互換の数値列の欠損値補完器
// NaN を欠損とみなし、列ごとの統計量で置き換える。
//
// 観測値が一つもない列は統計量を計算できないため、Transformの出力から除外される
// (scikit-learnの keep_empty_features=False と同じ)。
type SimpleImputer struct {
	model.BaseEstimator

	// Strategy は補完に使う統計量 ("median" または "mean")
	Strategy string

	// Statistics は各列の補完値。観測値のない列は NaN
	Statistics []float64

	// Empty は観測値が一つもない列
	Empty []bool

	// NFeatures は入力の特徴量数
	NFeatures int
}

var (
	_ model.Transformer  = (*SimpleImputer)(nil)
	_ model.FeatureNamer = (*SimpleImputer)(nil)
)

// NewSimpleImputer は新しいSimpleImputerを作成する
//
// 使用例:
//
//	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)
//	XFilled, err := imputer.FitTransform(X)
func NewSimpleImputer(strategy string) *SimpleImputer {
	return &SimpleImputer{Strategy: strategy}
}

// Fit は各列の非欠損値から補完値を計算する
func (s *SimpleImputer) Fit(X mat.Matrix) error {
	if s.Strategy != StrategyMedian && s.Strategy != StrategyMean {
		return errors.NewValidationError("strategy", "must be median or mean", s.Strategy)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Statistics = make([]float64, c)
	s.Empty = make([]bool, c)

	observed := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		observed = observed[:0]
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			s.Statistics[j] = math.NaN()
			s.Empty[j] = true
			continue
		}
		switch s.Strategy {
		case StrategyMedian:
			s.Statistics[j] = median(observed)
		case StrategyMean:
			s.Statistics[j] = stat.Mean(observed, nil)
		}
	}

	s.SetFitted()
	return nil
}

// Transform は欠損値を補完値で置き換え、観測値のない列を除いた行列を返す
//
// 全ての列が除外された場合は nil を返す。
func (s *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.Transform", s.NFeatures, c, 1)
	}

	kept := s.keptColumns()
	if len(kept) == 0 || r == 0 {
		return nil, nil
	}

	result := mat.NewDense(r, len(kept), nil)
	for out, j := range kept {
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = s.Statistics[j]
			}
			result.Set(i, out, v)
		}
	}
	return result, nil
}

// FitTransform は学習と変換を同じデータで行う
func (s *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// FeatureNamesOut は観測値のない列を除いた列名を返す
func (s *SimpleImputer) FeatureNamesOut(input []string) ([]string, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "FeatureNamesOut")
	}
	if len(input) != s.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.FeatureNamesOut", s.NFeatures, len(input), 1)
	}
	names := make([]string, 0, len(input))
	for _, j := range s.keptColumns() {
		names = append(names, input[j])
	}
	return names, nil
}

func (s *SimpleImputer) keptColumns() []int {
	kept := make([]int, 0, len(s.Empty))
	for j, empty := range s.Empty {
		if !empty {
			kept = append(kept, j)
		}
	}
	return kept
}

// String は補完器の文字列表現を返す
func (s *SimpleImputer) String() string {
	return fmt.Sprintf("SimpleImputer(strategy=%s)", s.Strategy)
}

// median は値の中央値を返す。偶数個の場合は中央2値の平均。
// 引数のスライスは並べ替えられる。
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// CategoricalImputer はカテゴリ列の欠損値を最頻値で補完する
//
// 最頻値が複数ある場合は辞書順で最小のカテゴリを選ぶ。
// これはOneHotEncoderのカテゴリ順序とも一致する。
type CategoricalImputer struct {
	model.BaseEstimator

	// Statistics は各列の最頻値。観測値のない列は空文字列
	Statistics []string

	// Empty は観測値が一つもない列
	Empty []bool

	// NFeatures は入力の列数
	NFeatures int
}

// NewCategoricalImputer は新しいCategoricalImputerを作成する
func NewCategoricalImputer() *CategoricalImputer {
	return &CategoricalImputer{}
}

// Fit は各列の最頻値を計算する
func (c *CategoricalImputer) Fit(columns []dataset.Column) error {
	if len(columns) == 0 {
		return errors.NewModelError("CategoricalImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	c.NFeatures = len(columns)
	c.Statistics = make([]string, len(columns))
	c.Empty = make([]bool, len(columns))

	for j, col := range columns {
		mode, ok := mostFrequent(col)
		c.Statistics[j] = mode
		c.Empty[j] = !ok
	}

	c.SetFitted()
	return nil
}

// Transform は欠損値を最頻値で置き換える
//
// 戻り値は列優先の文字列行列 (X[j][i] が j列目 i行目)。観測値のない列は除外される。
func (c *CategoricalImputer) Transform(columns []dataset.Column) ([][]string, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("CategoricalImputer", "Transform")
	}
	if len(columns) != c.NFeatures {
		return nil, errors.NewDimensionError("CategoricalImputer.Transform", c.NFeatures, len(columns), 1)
	}

	out := make([][]string, 0, len(columns))
	for j, col := range columns {
		if c.Empty[j] {
			continue
		}
		values := make([]string, col.Len())
		for i := range values {
			if col.IsMissing(i) {
				values[i] = c.Statistics[j]
			} else {
				values[i] = col.Categories[i]
			}
		}
		out = append(out, values)
	}
	return out, nil
}

// FitTransform は学習と変換を同じデータで行う
func (c *CategoricalImputer) FitTransform(columns []dataset.Column) ([][]string, error) {
	if err := c.Fit(columns); err != nil {
		return nil, err
	}
	return c.Transform(columns)
}

// FeatureNamesOut は観測値のない列を除いた列名を返す
func (c *CategoricalImputer) FeatureNamesOut(input []string) ([]string, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("CategoricalImputer", "FeatureNamesOut")
	}
	if len(input) != c.NFeatures {
		return nil, errors.NewDimensionError("CategoricalImputer.FeatureNamesOut", c.NFeatures, len(input), 1)
	}
	names := make([]string, 0, len(input))
	for j, name := range input {
		if !c.Empty[j] {
			names = append(names, name)
		}
	}
	return names, nil
}

// mostFrequent は非欠損値の最頻値を返す。観測値がなければ ok=false。
func mostFrequent(col dataset.Column) (mode string, ok bool) {
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			counts[col.Categories[i]]++
		}
	}
	best := -1
	for value, n := range counts {
		if n > best || (n == best && value < mode) {
			mode, best = value, n
		}
	}
	return mode, best > 0
}
