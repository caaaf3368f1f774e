package preprocessing

import (
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// Policy は学習済みの変換統計量
// エクスポートされたフィールドのみで構成され、gobでそのまま保存できる。
//
// 使用例:
//
//	policy, _ := pre.Policy()
//	_ = model.SaveModel(policy, "preprocess_policy.gob")
//	...
//	var loaded preprocessing.Policy
//	_ = model.LoadModel(&loaded, "preprocess_policy.gob")
//	replay, _ := preprocessing.NewPreprocessorFromPolicy(&loaded)
type Policy struct {
	Target      string
	DropColumns []string

	NumericColumns     []string
	CategoricalColumns []string

	// 数値列: 中央値 (観測値のない列は NaN) と、残った列の平均・スケール
	Medians      []float64
	NumericEmpty []bool
	Means        []float64
	Scales       []float64

	// カテゴリ列: 最頻値と、残った列のカテゴリ語彙
	Modes            []string
	CategoricalEmpty []bool
	Categories       [][]string

	FeatureNames []string
}

// Policy は学習済みの統計量を取り出す
func (p *Preprocessor) Policy() (*Policy, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Preprocessor", "Policy")
	}
	out := &Policy{
		Target:             p.target,
		DropColumns:        append([]string(nil), p.dropColumns...),
		NumericColumns:     append([]string(nil), p.partition.Numeric...),
		CategoricalColumns: append([]string(nil), p.partition.Categorical...),
		FeatureNames:       p.FeatureNames(),
	}
	if p.numericImputer != nil {
		out.Medians = append([]float64(nil), p.numericImputer.Statistics...)
		out.NumericEmpty = append([]bool(nil), p.numericImputer.Empty...)
	}
	if p.scaler != nil {
		out.Means = append([]float64(nil), p.scaler.Mean...)
		out.Scales = append([]float64(nil), p.scaler.Scale...)
	}
	if p.categoricalImputer != nil {
		out.Modes = append([]string(nil), p.categoricalImputer.Statistics...)
		out.CategoricalEmpty = append([]bool(nil), p.categoricalImputer.Empty...)
	}
	if p.encoder != nil {
		for _, cats := range p.encoder.Categories {
			out.Categories = append(out.Categories, append([]string(nil), cats...))
		}
	}
	return out, nil
}

// NewPreprocessorFromPolicy は保存された統計量から学習済みのPreprocessorを復元する
// optsはロガーなど学習結果に影響しない設定にのみ使う。
func NewPreprocessorFromPolicy(policy *Policy, opts ...Option) (*Preprocessor, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	all := make([]Option, 0, len(opts)+2)
	all = append(all, opts...)
	all = append(all, WithTarget(policy.Target), WithDropColumns(policy.DropColumns...))
	p := NewPreprocessor(all...)
	p.partition = ColumnPartition{
		Numeric:     append([]string(nil), policy.NumericColumns...),
		Categorical: append([]string(nil), policy.CategoricalColumns...),
	}

	if len(policy.NumericColumns) > 0 {
		p.numericImputer = &SimpleImputer{
			Strategy:   StrategyMedian,
			Statistics: append([]float64(nil), policy.Medians...),
			Empty:      append([]bool(nil), policy.NumericEmpty...),
			NFeatures:  len(policy.NumericColumns),
		}
		p.numericImputer.SetFitted()
		if len(policy.Means) > 0 {
			p.scaler = NewStandardScalerDefault()
			p.scaler.Mean = append([]float64(nil), policy.Means...)
			p.scaler.Scale = append([]float64(nil), policy.Scales...)
			p.scaler.NFeatures = len(policy.Means)
			p.scaler.SetFitted()
		}
	}

	if len(policy.CategoricalColumns) > 0 {
		p.categoricalImputer = &CategoricalImputer{
			Statistics: append([]string(nil), policy.Modes...),
			Empty:      append([]bool(nil), policy.CategoricalEmpty...),
			NFeatures:  len(policy.CategoricalColumns),
		}
		p.categoricalImputer.SetFitted()
		if len(policy.Categories) > 0 {
			p.encoder = &OneHotEncoder{NFeatures: len(policy.Categories)}
			for _, cats := range policy.Categories {
				p.encoder.Categories = append(p.encoder.Categories, append([]string(nil), cats...))
			}
			p.encoder.buildIndex()
			p.encoder.SetFitted()
		}
	}

	p.featureNames = append([]string(nil), policy.FeatureNames...)
	p.SetFitted()
	return p, nil
}

func (policy *Policy) validate() error {
	if policy.Target == "" {
		return errors.NewValidationError("Target", "must not be empty", policy.Target)
	}
	nNum, nCat := len(policy.NumericColumns), len(policy.CategoricalColumns)
	if len(policy.Medians) != nNum || len(policy.NumericEmpty) != nNum {
		return errors.NewValidationError("Medians", "must have one entry per numeric column", len(policy.Medians))
	}
	if len(policy.Means) != len(policy.Scales) || len(policy.Means) != countKept(policy.NumericEmpty) {
		return errors.NewValidationError("Means", "must have one entry per observed numeric column", len(policy.Means))
	}
	if len(policy.Modes) != nCat || len(policy.CategoricalEmpty) != nCat {
		return errors.NewValidationError("Modes", "must have one entry per categorical column", len(policy.Modes))
	}
	if len(policy.Categories) != countKept(policy.CategoricalEmpty) {
		return errors.NewValidationError("Categories", "must have one vocabulary per observed categorical column", len(policy.Categories))
	}
	width := len(policy.Means)
	for _, cats := range policy.Categories {
		width += len(cats)
	}
	if width != len(policy.FeatureNames) {
		return errors.NewValidationError("FeatureNames", "must match the encoded width", len(policy.FeatureNames))
	}
	return nil
}

func countKept(empty []bool) int {
	n := 0
	for _, e := range empty {
		if !e {
			n++
		}
	}
	return n
}
