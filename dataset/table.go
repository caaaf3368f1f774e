// Package dataset は前処理の入力となる型付きテーブルを提供する。
//
// 各列は読み込み時に数値列(Numeric)かカテゴリ列(Categorical)に分類され、
// 以後その宣言型だけを見て処理が振り分けられる。テーブルは読み込み後は読み取り専用で、
// 列の削除などの操作は常に新しいTableを返す。
package dataset

import (
	"math"

	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// Kind は列の宣言型
type Kind int

const (
	// Numeric は全ての観測値が数値の列
	Numeric Kind = iota
	// Categorical は数値以外(文字列・真偽値)を含む列
	Categorical
)

// String はKindの文字列表現を返す
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column は名前付きの型付き列
//
// 数値列では Numbers の NaN が欠損を表す。カテゴリ列では Missing[i] が true の要素が欠損。
// records には読み込んだ元の文字列が入り、目的変数をそのまま書き戻すために使う。
type Column struct {
	Name       string
	Kind       Kind
	Numbers    []float64
	Categories []string
	Missing    []bool

	records []string
}

// NumericColumn は数値列を作成する。NaNは欠損として扱う。
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Numbers: values}
}

// CategoricalColumn はカテゴリ列を作成する。missingがnilの場合は欠損なし。
func CategoricalColumn(name string, values []string, missing []bool) Column {
	if missing == nil {
		missing = make([]bool, len(values))
	}
	return Column{Name: name, Kind: Categorical, Categories: values, Missing: missing}
}

// Len は列の行数を返す
func (c Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Numbers)
	}
	return len(c.Categories)
}

// IsMissing はi行目が欠損かどうかを返す
func (c Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Numbers[i])
	}
	return c.Missing[i]
}

// Text はi行目の値を出力用の文字列で返す。欠損は空文字列。
// CSVから読み込んだ列は元の表記をそのまま返す。
func (c Column) Text(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.records != nil {
		return c.records[i]
	}
	if c.Kind == Numeric {
		return FormatFloat(c.Numbers[i])
	}
	return c.Categories[i]
}

// Table は同じ行数を持つ列の順序付き集合
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable は列からテーブルを作成する
//
// 戻り値:
//   - *Table: 新しいテーブル
//   - error: 列の長さが揃っていない、列名が重複している、または欠損マスクの長さが不正な場合
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, errors.NewDimensionError("dataset.NewTable("+c.Name+")", t.rows, c.Len(), 0)
		}
		if c.Kind == Categorical && len(c.Missing) != len(c.Categories) {
			return nil, errors.NewDimensionError("dataset.NewTable("+c.Name+")", len(c.Categories), len(c.Missing), 0)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewSchemaError(c.Name, "duplicate column name")
		}
		t.index[c.Name] = i
		t.columns[i] = c
	}
	return t, nil
}

// Rows は行数を返す
func (t *Table) Rows() int { return t.rows }

// Cols は列数を返す
func (t *Table) Cols() int { return len(t.columns) }

// Names は列名を元の順序で返す
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns は列のコピーを元の順序で返す
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has は列が存在するかどうかを返す
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column は名前で列を取得する
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Drop は指定された列を除いた新しいテーブルを返す。存在しない列名は無視する。
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := &Table{index: make(map[string]int, len(t.columns)), rows: t.rows}
	for _, c := range t.columns {
		if _, ok := drop[c.Name]; ok {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out
}
