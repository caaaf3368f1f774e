package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// ColumnPartition は特徴量列を数値列とカテゴリ列に分けた結果
// 2つの集合は互いに素で、合わせると全ての特徴量列になる。順序は元のテーブルの列順。
type ColumnPartition struct {
	Numeric     []string
	Categorical []string
}

// Partition は列の宣言型だけを見て特徴量列を分類する
// 値の解析や欠損の有無は分類に影響しない。
func Partition(t *dataset.Table) ColumnPartition {
	var p ColumnPartition
	for _, c := range t.Columns() {
		if c.Kind == dataset.Numeric {
			p.Numeric = append(p.Numeric, c.Name)
		} else {
			p.Categorical = append(p.Categorical, c.Name)
		}
	}
	return p
}

// numericValues は数値ブランチに渡す値を返す
// 全て欠損の列は読み込み時の型に関わらず数値の欠損列として受け付ける。
func numericValues(t *dataset.Table, name string) ([]float64, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.NewSchemaError(name, "fitted feature column missing")
	}
	if col.Kind == dataset.Numeric {
		return col.Numbers, nil
	}
	if !allMissing(col) {
		return nil, errors.NewSchemaError(name, "expected numeric column, got "+col.Kind.String())
	}
	values := make([]float64, col.Len())
	for i := range values {
		values[i] = math.NaN()
	}
	return values, nil
}

// categoricalValues はカテゴリブランチに渡す列を返す
func categoricalValues(t *dataset.Table, name string) (dataset.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return dataset.Column{}, errors.NewSchemaError(name, "fitted feature column missing")
	}
	if col.Kind == dataset.Categorical {
		return col, nil
	}
	if !allMissing(col) {
		return dataset.Column{}, errors.NewSchemaError(name, "expected categorical column, got "+col.Kind.String())
	}
	missing := make([]bool, col.Len())
	for i := range missing {
		missing[i] = true
	}
	return dataset.CategoricalColumn(name, make([]string, col.Len()), missing), nil
}

func allMissing(col dataset.Column) bool {
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			return false
		}
	}
	return true
}
