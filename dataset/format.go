package dataset

import (
	"math"
	"strconv"
)

// FormatFloat は浮動小数点を出力用の文字列に変換する
//
// 整数値は "1.0" のように小数点以下1桁、それ以外は往復可能な最短表記。
// 絶対値が 1e-4 未満または 1e16 以上の場合は指数表記 ("1e-05") を使う。
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
