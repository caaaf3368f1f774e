package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

// SaveModel は学習済みの状態をgobでファイルに保存する
//
// パラメータ:
//   - model: 保存する値（エクスポートされたフィールドのみ保存される）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	policy, _ := pre.Policy()
//	err := model.SaveModel(policy, "preprocess_policy.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}

	if err := SaveModelToWriter(model, file); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "failed to close %s", filename)
}

// LoadModel はファイルから状態を読み込む
//
// 使用例:
//
//	var policy preprocessing.Policy
//	err := model.LoadModel(&policy, "preprocess_policy.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter は状態をio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerから状態を読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
