package preprocessing

import (
	"bufio"
	"encoding/csv"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// ProcessedTable は変換結果
// 目的変数(変更なし)と、特徴量名の順に並んだ特徴量行列を持つ。
type ProcessedTable struct {
	// Target は入力の目的変数列
	Target dataset.Column

	// Features は rows × len(FeatureNames) の行列。特徴量が0列の場合は nil
	Features *mat.Dense

	// FeatureNames は出力特徴量名（目的変数を除く）
	FeatureNames []string
}

// Rows は行数を返す
func (p *ProcessedTable) Rows() int { return p.Target.Len() }

// Cols は目的変数を含む列数を返す
func (p *ProcessedTable) Cols() int { return 1 + len(p.FeatureNames) }

// Header は出力CSVのヘッダ（目的変数 + 特徴量名）を返す
func (p *ProcessedTable) Header() []string {
	return append([]string{p.Target.Name}, p.FeatureNames...)
}

// Feature は特徴量名に対応する列の値を返す
func (p *ProcessedTable) Feature(name string) ([]float64, bool) {
	for j, n := range p.FeatureNames {
		if n == name {
			return mat.Col(nil, j, p.Features), true
		}
	}
	return nil, false
}

// WriteCSV は処理済みテーブルをCSVで書き出す
// 目的変数は入力の表記のまま、特徴量は dataset.FormatFloat で書式化する。
func (p *ProcessedTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(p.Header()); err != nil {
		return errors.Wrap(err, "write header")
	}

	record := make([]string, p.Cols())
	for i := 0; i < p.Rows(); i++ {
		record[0] = p.Target.Text(i)
		for j := range p.FeatureNames {
			record[j+1] = dataset.FormatFloat(p.Features.At(i, j))
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteManifest は特徴量名を1行に1つずつ書き出す
func (p *ProcessedTable) WriteManifest(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range p.FeatureNames {
		if _, err := bw.WriteString(name + "\n"); err != nil {
			return errors.Wrap(err, "write manifest")
		}
	}
	return errors.Wrap(bw.Flush(), "flush manifest")
}
