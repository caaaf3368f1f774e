package preprocessing

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/titanicprep/core/model"
	"github.com/YuminosukeSato/titanicprep/dataset"
	"github.com/YuminosukeSato/titanicprep/pkg/errors"
	"github.com/YuminosukeSato/titanicprep/pkg/log"
)

const titanicSample = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,,S
2,1,1,"Cumings, Mrs. John Bradley (Florence Briggs Thayer)",female,38,1,0,PC 17599,71.2833,C85,C
3,1,3,"Heikkinen, Miss. Laina",female,26,0,0,STON/O2. 3101282,7.925,,S
4,1,1,"Futrelle, Mrs. Jacques Heath (Lily May Peel)",female,35,1,0,113803,53.1,C123,S
5,0,3,"Allen, Mr. William Henry",male,35,0,0,373450,8.05,,S
6,0,3,"Moran, Mr. James",male,,0,0,330877,8.4583,,Q
7,0,1,"McCarthy, Mr. Timothy J",male,54,0,0,17463,51.8625,E46,S
8,0,3,"Palsson, Master. Gosta Leonard",male,2,3,1,349909,21.075,,S
9,1,3,"Johnson, Mrs. Oscar W (Elisabeth Vilhelmina Berg)",female,27,0,2,347742,11.1333,,S
10,1,2,"Nasser, Mrs. Nicholas (Adele Achem)",female,14,1,0,237736,30.0708,,C
11,1,3,"Sandstrom, Miss. Marguerite Rut",female,4,1,1,PP 9549,16.7,G6,
12,1,1,"Bonnell, Miss. Elizabeth",female,58,0,0,113783,26.55,C103,S
`

func readTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	table, err := dataset.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return table
}

func scenarioTable(t *testing.T) *dataset.Table {
	return readTable(t, "Survived,Age,Sex\n1,22,male\n0,,female\n1,38,male\n")
}

func TestPreprocessorScenario(t *testing.T) {
	out, err := NewPreprocessor().FitTransform(scenarioTable(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Survived", "Age", "Sex_female", "Sex_male"}, out.Header())
	assert.Equal(t, 3, out.Rows())
	assert.Equal(t, 4, out.Cols())

	// Age: 欠損は中央値30で補完されてから標準化される
	std := math.Sqrt(128.0 / 3.0)
	age, ok := out.Feature("Age")
	require.True(t, ok)
	assert.InDelta(t, -8/std, age[0], 1e-12)
	assert.InDelta(t, 0.0, age[1], 1e-12)
	assert.InDelta(t, 8/std, age[2], 1e-12)

	female, _ := out.Feature("Sex_female")
	male, _ := out.Feature("Sex_male")
	assert.Equal(t, []float64{0, 1, 0}, female)
	assert.Equal(t, []float64{1, 0, 1}, male)

	var buf bytes.Buffer
	require.NoError(t, out.WriteCSV(&buf))
	want := "Survived,Age,Sex_female,Sex_male\n" +
		"1," + dataset.FormatFloat(-8/std) + ",0.0,1.0\n" +
		"0,0.0,1.0,0.0\n" +
		"1," + dataset.FormatFloat(8/std) + ",0.0,1.0\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, out.WriteManifest(&buf))
	assert.Equal(t, "Age\nSex_female\nSex_male\n", buf.String())
}

func TestPreprocessorMissingTarget(t *testing.T) {
	table := readTable(t, "Age,Sex\n22,male\n")

	_, err := NewPreprocessor().FitTransform(table)
	require.Error(t, err)

	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Survived", schemaErr.Column)
	assert.Equal(t, "required target column missing", schemaErr.Reason)
}

func TestPreprocessorTitanicSample(t *testing.T) {
	table := readTable(t, titanicSample)

	pre := NewPreprocessor()
	out, err := pre.FitTransform(table)
	require.NoError(t, err)

	// 行数と行順が保たれる
	require.Equal(t, table.Rows(), out.Rows())
	wantTarget := []string{"0", "1", "1", "1", "0", "0", "0", "0", "1", "1", "1", "1"}
	for i, want := range wantTarget {
		assert.Equal(t, want, out.Target.Text(i), "row %d", i)
	}
	assert.Equal(t, "Survived", out.Header()[0])

	assert.Equal(t, []string{"PassengerId", "Pclass", "Age", "SibSp", "Parch", "Fare"}, pre.Partition().Numeric)
	assert.Equal(t, []string{"Sex", "Embarked"}, pre.Partition().Categorical)
	assert.Equal(t, []string{
		"PassengerId", "Pclass", "Age", "SibSp", "Parch", "Fare",
		"Sex_female", "Sex_male",
		"Embarked_C", "Embarked_Q", "Embarked_S",
	}, out.FeatureNames)

	for _, name := range pre.Partition().Numeric {
		col, ok := out.Feature(name)
		require.True(t, ok, name)
		mean, variance := stat.PopMeanVariance(col, nil)
		assert.InDelta(t, 0.0, mean, 1e-9, name)
		assert.InDelta(t, 1.0, math.Sqrt(variance), 1e-9, name)
	}

	// Embarked の欠損は最頻値 S で補完される
	embarkedS, _ := out.Feature("Embarked_S")
	assert.Equal(t, 1.0, embarkedS[10])

	groups := map[string][]string{
		"Sex":      {"Sex_female", "Sex_male"},
		"Embarked": {"Embarked_C", "Embarked_Q", "Embarked_S"},
	}
	for source, names := range groups {
		for i := 0; i < out.Rows(); i++ {
			sum := 0.0
			for _, n := range names {
				col, _ := out.Feature(n)
				sum += col[i]
			}
			assert.Equal(t, 1.0, sum, "%s row %d", source, i)
		}
	}

	for _, dropped := range DefaultDropColumns {
		for _, n := range out.FeatureNames {
			assert.False(t, strings.HasPrefix(n, dropped), n)
		}
	}
}

func TestPreprocessorWritesTargetVerbatim(t *testing.T) {
	table := readTable(t, "Survived,Sex\n0.1234567891,male\n1.0,female\n,male\n")

	out, err := NewPreprocessor().FitTransform(table)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, out.WriteCSV(&buf))
	assert.Equal(t, "Survived,Sex_female,Sex_male\n"+
		"0.1234567891,0.0,1.0\n"+
		"1.0,1.0,0.0\n"+
		",0.0,1.0\n", buf.String())
}

func TestPreprocessorDeterministic(t *testing.T) {
	render := func() string {
		out, err := NewPreprocessor().FitTransform(readTable(t, titanicSample))
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, out.WriteCSV(&buf))
		require.NoError(t, out.WriteManifest(&buf))
		return buf.String()
	}
	assert.Equal(t, render(), render())
}

func TestPreprocessorEmptyFeature(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	table := readTable(t, "Survived,Age,Deck,Sex\n1,22,,male\n0,30,,female\n")

	out, err := NewPreprocessor().FitTransform(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"Age", "Sex_female", "Sex_male"}, out.FeatureNames)
	require.Len(t, warnings, 1)
	var w *errors.EmptyFeatureWarning
	require.True(t, errors.As(warnings[0], &w))
	assert.Equal(t, "Deck", w.Column)
}

func TestPreprocessorOptions(t *testing.T) {
	table := readTable(t, "Label,Name,Fare\n1,a,1.5\n0,b,2.5\n")

	pre := NewPreprocessor(WithTarget("Label"), WithDropColumns())
	out, err := pre.FitTransform(table)
	require.NoError(t, err)

	assert.Equal(t, "Label", pre.Target())
	assert.Equal(t, []string{"Fare", "Name_a", "Name_b"}, out.FeatureNames)
}

func TestPreprocessorTransformUnseenCategory(t *testing.T) {
	pre := NewPreprocessor()
	_, err := pre.FitTransform(scenarioTable(t))
	require.NoError(t, err)

	fresh := readTable(t, "Survived,Age,Sex,Name\n0,30,unknown,x\n1,,female,y\n")
	out, err := pre.Transform(fresh)
	require.NoError(t, err)

	female, _ := out.Feature("Sex_female")
	male, _ := out.Feature("Sex_male")
	assert.Equal(t, []float64{0, 1}, female)
	assert.Equal(t, []float64{0, 0}, male)

	// 学習時の中央値30で補完され、学習時の平均30で0になる
	age, _ := out.Feature("Age")
	assert.InDelta(t, 0.0, age[1], 1e-12)
}

func TestPreprocessorTransformErrors(t *testing.T) {
	_, err := NewPreprocessor().Transform(scenarioTable(t))
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	pre := NewPreprocessor()
	_, err = pre.FitTransform(scenarioTable(t))
	require.NoError(t, err)

	var schemaErr *errors.SchemaError

	_, err = pre.Transform(readTable(t, "Survived,Sex\n1,male\n"))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Age", schemaErr.Column)

	_, err = pre.Transform(readTable(t, "Survived,Age,Sex\n1,young,male\n"))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Age", schemaErr.Column)

	_, err = pre.Transform(readTable(t, "Survived,Age,Sex\n1,20,1\n"))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Sex", schemaErr.Column)
}

func TestPolicyRoundTrip(t *testing.T) {
	pre := NewPreprocessor()
	original, err := pre.FitTransform(readTable(t, titanicSample))
	require.NoError(t, err)

	policy, err := pre.Policy()
	require.NoError(t, err)
	assert.Equal(t, original.FeatureNames, policy.FeatureNames)
	assert.Equal(t, []string{"female", "male"}, policy.Categories[0])

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(policy, &buf))
	var loaded Policy
	require.NoError(t, model.LoadModelFromReader(&loaded, &buf))

	replay, err := NewPreprocessorFromPolicy(&loaded, WithLogger(log.NewNopLogger()))
	require.NoError(t, err)

	again, err := replay.Transform(readTable(t, titanicSample))
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, original.WriteCSV(&a))
	require.NoError(t, again.WriteCSV(&b))
	assert.Equal(t, a.String(), b.String())
}

func TestPolicyValidation(t *testing.T) {
	_, err := NewPreprocessor().Policy()
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	_, err = NewPreprocessorFromPolicy(&Policy{Target: "Survived", NumericColumns: []string{"Age"}})
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestPreprocessorLogsCompletion(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	_, err := NewPreprocessor(WithLogger(logger)).FitTransform(scenarioTable(t))
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Preprocessing completed"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationFitTransform))
	assert.True(t, logger.ContainsField(log.SamplesKey, 3.0))
	assert.True(t, logger.ContainsField(log.FeaturesKey, 3.0))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "Preprocessor"))
}
