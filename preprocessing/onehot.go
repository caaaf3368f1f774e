package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/titanicprep/core/model"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// OneHotEncoder はscikit-learn互換のワンホットエンコーダ
// (handle_unknown="ignore", sparse_output=False 相当)
//
// 各列の観測カテゴリごとに指示変数を1列作る。カテゴリは辞書順に並ぶ。
// 学習時に現れなかったカテゴリはその列の指示変数が全て0になる。
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories は各入力列のカテゴリ（辞書順）
	Categories [][]string

	// NFeatures は入力の列数
	NFeatures int

	index []map[string]int
}

var _ model.FeatureNamer = (*OneHotEncoder)(nil)

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewOneHotEncoder()
//	indicators, err := enc.FitTransform([][]string{{"male", "female", "male"}})
//	names, _ := enc.FeatureNamesOut([]string{"Sex"}) // ["Sex_female", "Sex_male"]
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit は各列のカテゴリを学習する
//
// パラメータ:
//   - X: 列優先の文字列行列 (X[j][i] が j列目 i行目)。欠損は補完済みであること
func (o *OneHotEncoder) Fit(X [][]string) error {
	if len(X) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	categories := make([][]string, len(X))
	for j, col := range X {
		seen := make(map[string]struct{})
		for _, v := range col {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				categories[j] = append(categories[j], v)
			}
		}
		sort.Strings(categories[j])
	}

	o.Categories = categories
	o.NFeatures = len(X)
	o.buildIndex()
	o.SetFitted()
	return nil
}

func (o *OneHotEncoder) buildIndex() {
	o.index = make([]map[string]int, len(o.Categories))
	for j, cats := range o.Categories {
		o.index[j] = make(map[string]int, len(cats))
		for k, cat := range cats {
			o.index[j][cat] = k
		}
	}
}

// NOutputs は変換後の列数を返す
func (o *OneHotEncoder) NOutputs() int {
	n := 0
	for _, cats := range o.Categories {
		n += len(cats)
	}
	return n
}

// Transform は各列を指示変数の行列に展開する
//
// 出力列は入力列の順、各入力列内ではカテゴリの順。行数0または出力列0の場合は nil を返す。
func (o *OneHotEncoder) Transform(X [][]string) (*mat.Dense, error) {
	if !o.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(X) != o.NFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", o.NFeatures, len(X), 1)
	}
	rows := len(X[0])
	for _, col := range X[1:] {
		if len(col) != rows {
			return nil, errors.NewDimensionError("OneHotEncoder.Transform", rows, len(col), 0)
		}
	}

	width := o.NOutputs()
	if rows == 0 || width == 0 {
		return nil, nil
	}

	result := mat.NewDense(rows, width, nil)
	offset := 0
	for j, col := range X {
		for i, v := range col {
			if k, ok := o.index[j][v]; ok {
				result.Set(i, offset+k, 1)
			}
		}
		offset += len(o.Categories[j])
	}
	return result, nil
}

// FitTransform は学習と変換を同じデータで行う
func (o *OneHotEncoder) FitTransform(X [][]string) (*mat.Dense, error) {
	if err := o.Fit(X); err != nil {
		return nil, err
	}
	return o.Transform(X)
}

// FeatureNamesOut は "<列名>_<カテゴリ>" 形式の出力特徴量名を返す
func (o *OneHotEncoder) FeatureNamesOut(input []string) ([]string, error) {
	if !o.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "FeatureNamesOut")
	}
	if len(input) != o.NFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.FeatureNamesOut", o.NFeatures, len(input), 1)
	}
	names := make([]string, 0, o.NOutputs())
	for j, cats := range o.Categories {
		for _, cat := range cats {
			names = append(names, input[j]+"_"+cat)
		}
	}
	return names, nil
}

// String はエンコーダの文字列表現を返す
func (o *OneHotEncoder) String() string {
	if !o.IsFitted() {
		return "OneHotEncoder(handle_unknown=ignore)"
	}
	return fmt.Sprintf("OneHotEncoder(handle_unknown=ignore, n_features=%d, n_outputs=%d)", o.NFeatures, o.NOutputs())
}
