package model

import "gonum.org/v1/gonum/mat"

// Transformer は数値行列を変換するインターフェース
// 欠損値は NaN で表す
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer は変換を元に戻せるTransformer
type InverseTransformer interface {
	Transformer

	// InverseTransform は変換後のデータを元のスケールに戻す
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// FeatureNamer は変換後の特徴量名を返す
type FeatureNamer interface {
	// FeatureNamesOut は入力列名に対応する出力特徴量名を返す
	FeatureNamesOut(input []string) ([]string, error)
}
