// Package log defines standard attribute keys for preprocessing runs.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "io.path") so records can be filtered consistently.

package log

// Operation Context
const (
	// ModelNameKey identifies the transformer emitting the record.
	// Examples: "Preprocessor", "StandardScaler", "OneHotEncoder"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "load", "write"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "preprocessing", "runner"
	ComponentKey = "ml.component"

	// RunIDKey carries the identifier of one driver invocation.
	RunIDKey = "run.id"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// NumericColumnsKey lists the columns routed to the numeric branch.
	NumericColumnsKey = "data.numeric_columns"

	// CategoricalColumnsKey lists the columns routed to the categorical branch.
	CategoricalColumnsKey = "data.categorical_columns"

	// DroppedColumnsKey lists the identifier-like columns removed before fitting.
	DroppedColumnsKey = "data.dropped_columns"

	// TargetKey names the target column.
	TargetKey = "data.target"
)

// I/O and Performance
const (
	// PathKey records a file or directory path touched by the operation.
	PathKey = "io.path"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error Context
const (
	// ErrorDetailKey holds the structured fields of a typed error.
	ErrorDetailKey = "error.detail"
)

// Standard attribute value constants.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationLoad         = "load"
	OperationWrite        = "write"
)
