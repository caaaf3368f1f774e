package dataset

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// MissingTokens はCSVのセルを欠損とみなす表記の一覧
var MissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null", "<nil>",
}

// ReadCSV はヘッダ付きCSVを読み込み、型推論済みのテーブルを返す
//
// 列の型は値から一度だけ推論される。欠損以外の値が全て整数または浮動小数点なら Numeric、
// それ以外(文字列・真偽値、全て欠損の列を含む)は Categorical になる。
// 真偽値の列は "True" / "False" に揃える。各セルの元の表記は Column.Text で取り出せる。
//
// 戻り値:
//   - *Table: 読み込んだテーブル
//   - error: CSVとして解釈できない場合
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.NewModelError("dataset.ReadCSV", "malformed csv", err)
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "malformed csv", errors.ErrEmptyData)
	}

	df := dataframe.LoadRecords(records, dataframe.NaNValues(MissingTokens))
	if df.Err != nil {
		return nil, errors.NewModelError("dataset.ReadCSV", "malformed csv", df.Err)
	}

	names := df.Names()
	columns := make([]Column, 0, len(names))
	for j, name := range names {
		raw := make([]string, len(records)-1)
		for i := range raw {
			raw[i] = records[i+1][j]
		}
		columns = append(columns, fromSeries(name, df.Col(name), raw))
	}
	return NewTable(columns...)
}

func fromSeries(name string, s series.Series, raw []string) Column {
	missing := s.IsNaN()

	var c Column
	switch s.Type() {
	case series.Int, series.Float:
		c = NumericColumn(name, s.Float())
	default:
		records := s.Records()
		values := make([]string, len(records))
		for i, v := range records {
			if missing[i] {
				continue
			}
			values[i] = v
			if s.Type() == series.Bool {
				values[i] = boolCategory(v)
			}
		}
		c = CategoricalColumn(name, values, missing)
	}
	c.records = raw
	return c
}

func boolCategory(v string) string {
	switch v {
	case "true":
		return "True"
	case "false":
		return "False"
	}
	return v
}

// LoadCSV はパスからCSVを読み込む
//
// 戻り値:
//   - *Table: 読み込んだテーブル
//   - error: ファイルが存在しない場合は MissingInputError、読み込みに失敗した場合はラップしたエラー
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError(path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}
