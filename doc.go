// Package titanicprep は乗客生存データセット (Kaggle Titanic の train.csv 形式) を
// モデル学習用の数値特徴量行列に変換する前処理モジュールです。
//
// # 構成
//
//   - dataset: 型付きテーブルとCSV読み込み
//   - preprocessing: 補完・標準化・ワンホット展開と Preprocessor
//   - config: .env と環境変数からの設定読み込み
//   - runner: 読み込みから成果物の書き出しまで
//   - cmd/titanicprep: コマンド
//
// # 使用例
//
//	table, err := dataset.LoadCSV("titanic_raw/titanic.csv")
//	if err != nil {
//	    return err
//	}
//	processed, err := preprocessing.NewPreprocessor().FitTransform(table)
//	if err != nil {
//	    return err
//	}
//	// processed.Header() == ["Survived", "PassengerId", ..., "Embarked_S"]
//
// コマンドとしては RAW_PATH と OUT_DIR を指定して実行します:
//
//	RAW_PATH=titanic_raw/titanic.csv OUT_DIR=out go run ./cmd/titanicprep
package titanicprep
