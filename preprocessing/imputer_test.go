package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
)

func TestSimpleImputerMedian(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd count", []float64{22, nan, 38, 26}, 26},
		{"even count", []float64{22, nan, 38}, 30},
		{"single value", []float64{nan, 5, nan}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X := mat.NewDense(len(tt.values), 1, append([]float64(nil), tt.values...))

			imp := NewSimpleImputer(StrategyMedian)
			out, err := imp.FitTransform(X)
			require.NoError(t, err)

			assert.Equal(t, tt.want, imp.Statistics[0])
			for i, v := range tt.values {
				if math.IsNaN(v) {
					assert.Equal(t, tt.want, out.At(i, 0))
				} else {
					assert.Equal(t, v, out.At(i, 0))
				}
			}
		})
	}
}

func TestSimpleImputerMean(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, math.NaN(), 4})

	imp := NewSimpleImputer(StrategyMean)
	out, err := imp.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, 2.5, out.At(1, 0))
}

func TestSimpleImputerDropsEmptyColumns(t *testing.T) {
	nan := math.NaN()
	X := mat.NewDense(2, 3, []float64{
		1, nan, 3,
		nan, nan, 5,
	})

	imp := NewSimpleImputer(StrategyMedian)
	out, err := imp.FitTransform(X)
	require.NoError(t, err)

	_, c := out.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, []bool{false, true, false}, imp.Empty)

	names, err := imp.FeatureNamesOut([]string{"Age", "Deck", "Fare"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Fare"}, names)

	assert.Equal(t, 1.0, out.At(1, 0))
	assert.Equal(t, 5.0, out.At(1, 1))
}

func TestSimpleImputerInvalidStrategy(t *testing.T) {
	imp := NewSimpleImputer("constant")
	err := imp.Fit(mat.NewDense(1, 1, []float64{1}))

	var vErr *errors.ValidationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &vErr))
}

func TestCategoricalImputerMode(t *testing.T) {
	embarked := dataset.CategoricalColumn("Embarked",
		[]string{"S", "C", "", "S", "Q"},
		[]bool{false, false, true, false, false},
	)

	imp := NewCategoricalImputer()
	out, err := imp.FitTransform([]dataset.Column{embarked})
	require.NoError(t, err)

	assert.Equal(t, "S", imp.Statistics[0])
	assert.Equal(t, []string{"S", "C", "S", "S", "Q"}, out[0])
}

func TestCategoricalImputerTieBreak(t *testing.T) {
	// "b" と "a" が同数: 辞書順で小さい "a" を選ぶ
	col := dataset.CategoricalColumn("c",
		[]string{"b", "a", "", "b", "a"},
		[]bool{false, false, true, false, false},
	)

	for i := 0; i < 20; i++ {
		imp := NewCategoricalImputer()
		require.NoError(t, imp.Fit([]dataset.Column{col}))
		require.Equal(t, "a", imp.Statistics[0])
	}
}

func TestCategoricalImputerEmptyColumn(t *testing.T) {
	empty := dataset.CategoricalColumn("Deck", []string{"", ""}, []bool{true, true})
	sex := dataset.CategoricalColumn("Sex", []string{"male", "female"}, nil)

	imp := NewCategoricalImputer()
	out, err := imp.FitTransform([]dataset.Column{empty, sex})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"male", "female"}, out[0])

	names, err := imp.FeatureNamesOut([]string{"Deck", "Sex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sex"}, names)
}

func TestCategoricalImputerNotFitted(t *testing.T) {
	_, err := NewCategoricalImputer().Transform(nil)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}
